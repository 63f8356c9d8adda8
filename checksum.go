package etherdfs

import "math/bits"

// checksum computes the rolling-rotate additive integrity sum used to
// protect an EtherDFS frame's payload: for every byte, rotate the running
// 16-bit accumulator right by one bit, then add the byte.
//
// There is no ecosystem library for this exact rotate-and-add variant of
// the BSD checksum, so it is implemented directly against math/bits.
func checksum(b []byte) uint16 {
	var sum uint16
	for _, c := range b {
		sum = bits.RotateLeft16(sum, -1) + uint16(c)
	}
	return sum
}
