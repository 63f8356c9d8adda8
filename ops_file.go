package etherdfs

import "encoding/binary"

// CloseFile decrements f's handle count and, if it was the caller's last
// reference, still notifies the server unconditionally: the wire protocol
// has no concept of reference counting, so every CLSFIL call reaches the
// remote side regardless of the count. Only a zero-length reply's AX is
// treated as an error; any other outcome (including a network error) is
// silently accepted. This asymmetric handling is intentional and applies
// only to this one operation.
func (e *Engine) CloseFile(f *OpenFile) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if f.HandleCount > 0 {
		f.HandleCount--
	}

	remote, err := e.remoteDrive(f.drive())
	if err != nil {
		return nil
	}

	payload := e.Transport.Payload(2)
	binary.LittleEndian.PutUint16(payload, f.FileID)

	reply, ax, err := e.Transport.Request(OpCloseFile, remote, 2, false)
	if err != nil {
		return nil
	}
	if len(reply) == 0 && ax != 0 {
		return dosErr(ax)
	}
	return nil
}

// CommitFile is a local no-op: the server has nothing to flush that it
// hasn't already applied on the last WriteFile.
func (e *Engine) CommitFile() error {
	return nil
}

// ReadFile fills buf from f's current position, chunking the transfer into
// frame-sized requests. It returns the number of bytes actually copied
// into buf, which may be less than len(buf) on EOF. f.FilePos is advanced
// by exactly that amount.
func (e *Engine) ReadFile(f *OpenFile, buf []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !f.readAllowed() {
		return 0, dosErr(DOSErrAccessDenied)
	}
	if len(buf) == 0 {
		return 0, nil
	}

	remote, err := e.remoteDrive(f.drive())
	if err != nil {
		return 0, dosErr(DOSErrFileNotFound)
	}

	total := 0
	for total < len(buf) {
		chunklen := len(buf) - total
		if chunklen > MaxPayload {
			chunklen = MaxPayload
		}

		payload := e.Transport.Payload(8)
		binary.LittleEndian.PutUint32(payload[0:4], f.FilePos)
		binary.LittleEndian.PutUint16(payload[4:6], f.FileID)
		binary.LittleEndian.PutUint16(payload[6:8], uint16(chunklen))

		reply, ax, rqErr := e.Transport.Request(OpReadFile, remote, 8, false)
		if rqErr != nil {
			return total, dosErr(DOSErrFileNotFound)
		}
		if ax != 0 {
			return total, dosErr(ax)
		}

		n := copy(buf[total:total+chunklen], reply)
		total += n
		f.FilePos += uint32(n)
		if n < chunklen || total == len(buf) {
			break
		}
	}
	return total, nil
}

// WriteFile writes data starting at f's current position, chunking the
// transfer into frame-sized requests. Unlike ReadFile, at least one frame
// is always sent even when data is empty, because an empty write means
// "truncate at the current position" on the wire. It returns the number of
// bytes the server actually accepted; f.FilePos and f.FileSize are updated
// to match.
func (e *Engine) WriteFile(f *OpenFile, data []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !f.writeAllowed() {
		return 0, dosErr(DOSErrAccessDenied)
	}

	remote, err := e.remoteDrive(f.drive())
	if err != nil {
		return 0, dosErr(DOSErrFileNotFound)
	}

	const maxChunk = MaxPayload - 6
	written := 0
	bytesLeft := len(data)

	for {
		chunklen := bytesLeft
		if chunklen > maxChunk {
			chunklen = maxChunk
		}

		payload := e.Transport.Payload(6 + chunklen)
		binary.LittleEndian.PutUint32(payload[0:4], f.FilePos)
		binary.LittleEndian.PutUint16(payload[4:6], f.FileID)
		copy(payload[6:], data[written:written+chunklen])

		reply, ax, rqErr := e.Transport.Request(OpWriteFile, remote, 6+chunklen, false)
		if rqErr != nil {
			return written, dosErr(DOSErrFileNotFound)
		}
		if ax != 0 || len(reply) != 2 {
			return written, dosErrForShape(ax)
		}

		n := int(binary.LittleEndian.Uint16(reply))
		written += n
		bytesLeft -= n
		f.FilePos += uint32(n)
		if f.FilePos > f.FileSize {
			f.FileSize = f.FilePos
		}

		if n != chunklen {
			break
		}
		if bytesLeft <= 0 {
			break
		}
	}
	return written, nil
}

// LockFile implements the AL_LOCKFIL entry point, which serves both lock
// (bl==0) and unlock (bl==1) requests by adding bl to the base opcode.
// records must be a multiple of 8 bytes, one lock range descriptor per 8
// bytes; an invalid bl fails locally with error 2.
//
// This surfaces a non-zero AX verbatim; the reply's payload length is not
// checked. Some legacy redirectors instead fold every non-empty or erroring
// reply into a flat error 2 here; that quirk is deliberately not
// reproduced, since nothing about lock/unlock calls for an exception to
// the general reply-interpretation rule every other operation follows.
func (e *Engine) LockFile(f *OpenFile, bl uint8, records []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if bl > 1 {
		return dosErr(DOSErrFileNotFound)
	}

	remote, err := e.remoteDrive(f.drive())
	if err != nil {
		return dosErr(DOSErrFileNotFound)
	}

	count := len(records) / 8
	total := 4 + len(records)
	payload := e.Transport.Payload(total)
	binary.LittleEndian.PutUint16(payload[0:2], uint16(count))
	binary.LittleEndian.PutUint16(payload[2:4], f.FileID)
	copy(payload[4:], records)

	_, ax, rqErr := e.Transport.Request(OpLockFile+Op(bl), remote, total, false)
	if rqErr != nil {
		return dosErr(DOSErrFileNotFound)
	}
	if ax != 0 {
		return dosErr(ax)
	}
	return nil
}

// UnlockFile implements the AL_UNLOCKFIL entry point as its own redirector
// subfunction (opcode 0x0B), distinct from the bl==1 case of LockFile.
// This direct entry point is not expected to be used by DOS 4 and later,
// and it always fails with error 2 without producing any wire traffic.
func (e *Engine) UnlockFile() error {
	return dosErr(DOSErrFileNotFound)
}
