package etherdfs

import "encoding/binary"

// DiskSpace queries free/total space for the drive mounted at local. Unlike
// every other operation, the reply's AX word itself carries data (sectors
// per cluster), not an error code: a network error or a reply whose payload
// isn't exactly 6 bytes both fail locally with error 2.
func (e *Engine) DiskSpace(local int) (sectorsPerCluster, totalClusters, bytesPerSector, freeClusters uint16, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	remote, rerr := e.remoteDrive(local)
	if rerr != nil {
		return 0, 0, 0, 0, dosErr(DOSErrFileNotFound)
	}

	e.Transport.Payload(0)
	reply, ax, rqErr := e.Transport.Request(OpDiskSpace, remote, 0, false)
	if rqErr != nil {
		return 0, 0, 0, 0, dosErr(DOSErrFileNotFound)
	}
	if len(reply) != 6 {
		return 0, 0, 0, 0, dosErr(DOSErrFileNotFound)
	}

	sectorsPerCluster = ax
	totalClusters = binary.LittleEndian.Uint16(reply[0:2])
	bytesPerSector = binary.LittleEndian.Uint16(reply[2:4])
	freeClusters = binary.LittleEndian.Uint16(reply[4:6])
	return sectorsPerCluster, totalClusters, bytesPerSector, freeClusters, nil
}

// SetAttr sets the DOS attribute byte of the file named by path.
func (e *Engine) SetAttr(local int, path string, attr uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tail, err := StripDrive(path)
	if err != nil {
		return dosErr(DOSErrFileNotFound)
	}

	remote, rerr := e.remoteDrive(local)
	if rerr != nil {
		return dosErr(DOSErrFileNotFound)
	}

	total := 1 + len(tail)
	payload := e.Transport.Payload(total)
	payload[0] = attr
	copy(payload[1:], tail)

	_, ax, rqErr := e.Transport.Request(OpSetAttr, remote, total, false)
	if rqErr != nil {
		return dosErr(DOSErrFileNotFound)
	}
	if ax != 0 {
		return dosErr(ax)
	}
	return nil
}

// GetAttr returns the timestamp, size, and attribute byte of the file
// named by path, decoding the server's fixed 9-byte reply.
func (e *Engine) GetAttr(local int, path string) (fileTime, fileDate uint16, fileSize uint32, attr uint8, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tail, terr := StripDrive(path)
	if terr != nil {
		return 0, 0, 0, 0, dosErr(DOSErrFileNotFound)
	}

	remote, rerr := e.remoteDrive(local)
	if rerr != nil {
		return 0, 0, 0, 0, dosErr(DOSErrFileNotFound)
	}

	copy(e.Transport.Payload(len(tail)), tail)
	reply, ax, rqErr := e.Transport.Request(OpGetAttr, remote, len(tail), false)
	if rqErr != nil {
		return 0, 0, 0, 0, dosErr(DOSErrFileNotFound)
	}
	if len(reply) != 9 {
		return 0, 0, 0, 0, dosErrForShape(ax)
	}
	if ax != 0 {
		return 0, 0, 0, 0, dosErr(ax)
	}

	fileTime = binary.LittleEndian.Uint16(reply[0:2])
	fileDate = binary.LittleEndian.Uint16(reply[2:4])
	sizeLo := binary.LittleEndian.Uint16(reply[4:6])
	sizeHi := binary.LittleEndian.Uint16(reply[6:8])
	fileSize = uint32(sizeHi)<<16 | uint32(sizeLo)
	attr = reply[8]
	return fileTime, fileDate, fileSize, attr, nil
}

// Rename moves oldPath to newPath. Both paths must name the same drive
// letter, or ErrCrossDrive is returned without any wire traffic; newPath
// must not contain a wildcard.
func (e *Engine) Rename(local int, oldPath, newPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(oldPath) == 0 || len(newPath) == 0 || oldPath[0] != newPath[0] {
		return ErrCrossDrive
	}
	oldTail, err := StripDrive(oldPath)
	if err != nil || len(oldTail) < 2 {
		return dosErr(DOSErrFileNotFound)
	}

	newTail, err := StripDrive(newPath)
	if err != nil {
		return dosErr(DOSErrPathNotFound)
	}
	newLen, ok := LenIfNoWildcards(newTail)
	if !ok || newLen < 2 {
		return dosErr(DOSErrPathNotFound)
	}

	remote, err := e.remoteDrive(local)
	if err != nil {
		return dosErr(DOSErrFileNotFound)
	}

	total := 1 + len(oldTail) + len(newTail)
	payload := e.Transport.Payload(total)
	payload[0] = uint8(len(oldTail))
	copy(payload[1:], oldTail)
	copy(payload[1+len(oldTail):], newTail)

	_, ax, rqErr := e.Transport.Request(OpRename, remote, total, false)
	if rqErr != nil {
		return dosErr(DOSErrFileNotFound)
	}
	if ax != 0 {
		return dosErr(ax)
	}
	return nil
}

// Delete removes the file named by path. The reply must carry no payload
// and a zero AX; anything else, including a network error, fails with the
// peer's (or a synthesized) error code.
func (e *Engine) Delete(local int, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tail, err := StripDrive(path)
	if err != nil {
		return dosErr(DOSErrFileNotFound)
	}

	remote, rerr := e.remoteDrive(local)
	if rerr != nil {
		return dosErr(DOSErrFileNotFound)
	}

	copy(e.Transport.Payload(len(tail)), tail)
	reply, ax, rqErr := e.Transport.Request(OpDelete, remote, len(tail), false)
	if rqErr != nil {
		return dosErr(DOSErrFileNotFound)
	}
	if len(reply) != 0 {
		return dosErrForShape(ax)
	}
	if ax != 0 {
		return dosErr(ax)
	}
	return nil
}
