package etherdfs

import "encoding/binary"

// SeekFromEnd computes a new absolute file position offset bytes from the
// end of the file. It returns the server-computed absolute position but,
// unlike every other position-affecting operation, does not update
// f.FilePos itself: DOS applies SKFMEND's result to the SFT only after
// also validating it against the file's other bookkeeping, which lives
// outside this package.
func (e *Engine) SeekFromEnd(f *OpenFile, offset int32) (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	remote, err := e.remoteDrive(f.drive())
	if err != nil {
		return 0, dosErr(DOSErrFileNotFound)
	}

	payload := e.Transport.Payload(6)
	binary.LittleEndian.PutUint16(payload[0:2], uint16(uint32(offset)))
	binary.LittleEndian.PutUint16(payload[2:4], uint16(uint32(offset)>>16))
	binary.LittleEndian.PutUint16(payload[4:6], f.FileID)

	reply, ax, rqErr := e.Transport.Request(OpSeekFromEnd, remote, 6, false)
	if rqErr != nil {
		return 0, dosErr(DOSErrFileNotFound)
	}
	if len(reply) != 4 {
		return 0, dosErrForShape(ax)
	}
	if ax != 0 {
		return 0, dosErr(ax)
	}

	lo := binary.LittleEndian.Uint16(reply[0:2])
	hi := binary.LittleEndian.Uint16(reply[2:4])
	return uint32(hi)<<16 | uint32(lo), nil
}

// Unknown2D answers the undocumented AL=2Dh subfunction used only by
// MS-DOS 4.01, whose purpose was never published. It produces no wire
// traffic and always reports AX=2, matching MSCDEX's own behavior for the
// same call.
func (e *Engine) Unknown2D() uint16 {
	return DOSErrFileNotFound
}
