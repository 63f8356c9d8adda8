package etherdfs

import (
	"encoding/binary"
	"net"

	"github.com/mdlayher/ethernet"
)

// Fixed byte offsets within a send or receive frame buffer. Offsets 0..13
// are the Ethernet header; 14..53 are reserved padding; the remainder is
// the EtherDFS header and payload.
const (
	offDstMAC     = 0
	offSrcMAC     = 6
	offEtherType  = 12
	offFrameLen   = 52
	offChecksum   = 54
	offProtoVer   = 56
	offSeq        = 57
	offDrive      = 58
	offOp         = 59
	offPayload    = HeaderSize
	checksumFlag  = 0x80
	versionMask   = 0x7F
)

// sendFrame is the single, process-wide send buffer. Callers fill its
// payload area through Transport.Payload, and Transport.Request then
// writes the header and checksum under its own mutex, since only one
// request may ever be in flight at a time.
type sendFrame struct {
	buf [FrameSize]byte
}

// payload returns the writable payload area of the send frame, sized to n
// bytes starting at offset 60. It panics if n does not fit, which would
// indicate a marshaling bug in one of the ops_*.go files rather than a
// recoverable runtime condition.
func (f *sendFrame) payload(n int) []byte {
	if offPayload+n > FrameSize {
		panic("etherdfs: payload exceeds frame size")
	}
	return f.buf[offPayload : offPayload+n]
}

// prepareHeader fills in every header field except the checksum, which the
// caller computes afterward once payload bytes have been written.
func (f *sendFrame) prepareHeader(dst, src net.HardwareAddr, checksumEnabled bool, seq, drive uint8, op Op, totalLen int) {
	copy(f.buf[offDstMAC:offDstMAC+6], dst)
	copy(f.buf[offSrcMAC:offSrcMAC+6], src)
	binary.BigEndian.PutUint16(f.buf[offEtherType:offEtherType+2], uint16(EtherType))

	binary.LittleEndian.PutUint16(f.buf[offFrameLen:offFrameLen+2], uint16(totalLen))

	v := Version & versionMask
	if checksumEnabled {
		v |= checksumFlag
	}
	f.buf[offProtoVer] = v
	f.buf[offSeq] = seq
	f.buf[offDrive] = drive
	f.buf[offOp] = uint8(op)
}

// writeChecksum computes and stores the BSD-style checksum over
// buf[56:totalLen], if the checksum-enabled bit is set in the protocol
// version byte.
func (f *sendFrame) writeChecksum(totalLen int) {
	if f.buf[offProtoVer]&checksumFlag == 0 {
		return
	}
	sum := checksum(f.buf[offProtoVer:totalLen])
	binary.LittleEndian.PutUint16(f.buf[offChecksum:offChecksum+2], sum)
}

// marshalEthernet wraps totalLen bytes of the send buffer in an Ethernet II
// frame using github.com/mdlayher/ethernet.
func (f *sendFrame) marshalEthernet(totalLen int) ([]byte, error) {
	frame := &ethernet.Frame{
		Destination: net.HardwareAddr(append([]byte(nil), f.buf[offDstMAC:offDstMAC+6]...)),
		Source:      net.HardwareAddr(append([]byte(nil), f.buf[offSrcMAC:offSrcMAC+6]...)),
		EtherType:   EtherType,
		Payload:     f.buf[offEtherType+2 : totalLen],
	}
	return frame.MarshalBinary()
}

// replyView is a read-only decoding of a candidate reply frame, used by
// Transport.Request to validate and interpret it.
type replyView struct {
	raw []byte
}

func (r replyView) len() int { return len(r.raw) }

func (r replyView) dstMAC() net.HardwareAddr { return net.HardwareAddr(r.raw[offDstMAC : offDstMAC+6]) }
func (r replyView) srcMAC() net.HardwareAddr { return net.HardwareAddr(r.raw[offSrcMAC : offSrcMAC+6]) }

func (r replyView) etherType() uint16 {
	return binary.BigEndian.Uint16(r.raw[offEtherType : offEtherType+2])
}

func (r replyView) announcedLen() int {
	return int(binary.LittleEndian.Uint16(r.raw[offFrameLen : offFrameLen+2]))
}

func (r replyView) checksumEnabled() bool { return r.raw[offProtoVer]&checksumFlag != 0 }

func (r replyView) seq() uint8 { return r.raw[offSeq] }

// ax returns the reply's protocol-level result word: low byte at offset
// 58, high byte at offset 59.
func (r replyView) ax() uint16 {
	return uint16(r.raw[offDrive]) | uint16(r.raw[offOp])<<8
}

func (r replyView) storedChecksum() uint16 {
	return binary.LittleEndian.Uint16(r.raw[offChecksum : offChecksum+2])
}

// payload returns the reply's payload, i.e. everything from offset 60 up
// to the announced frame length.
func (r replyView) payload() []byte {
	n := r.announcedLen()
	if n > len(r.raw) {
		n = len(r.raw)
	}
	if n < offPayload {
		return nil
	}
	return r.raw[offPayload:n]
}
