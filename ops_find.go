package etherdfs

import "encoding/binary"

// FindFirst starts a directory scan for path (which may contain
// wildcards) restricted to files matching searchAttr. A network error
// fails with "file not found" (2); any other failure surfaces the peer's
// AX.
func (e *Engine) FindFirst(local int, path string, searchAttr uint8) (*ScanCursor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tail, err := StripDrive(path)
	if err != nil {
		return nil, dosErr(DOSErrFileNotFound)
	}

	remote, rerr := e.remoteDrive(local)
	if rerr != nil {
		return nil, dosErr(DOSErrFileNotFound)
	}

	total := 1 + len(tail)
	payload := e.Transport.Payload(total)
	payload[0] = searchAttr
	copy(payload[1:], tail)

	reply, ax, rqErr := e.Transport.Request(OpFindFirst, remote, total, false)
	if rqErr != nil {
		return nil, dosErr(DOSErrFileNotFound)
	}
	if len(reply) != 24 {
		return nil, dosErrForShape(ax)
	}
	if ax != 0 {
		return nil, dosErr(ax)
	}

	cur := &ScanCursor{
		DriveByte:  uint8(local) | 0x80,
		Template:   FCBName(tail),
		SearchAttr: searchAttr,
	}
	decodeFoundFile(reply, cur)
	return cur, nil
}

// FindNext resumes a scan previously started by FindFirst, replaying
// cur's template and cursor state. A network error fails with "no more
// files" (18), a different fallback than FindFirst uses.
func (e *Engine) FindNext(cur *ScanCursor) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	local := cur.drive()
	remote, err := e.remoteDrive(local)
	if err != nil {
		return dosErr(DOSErrNoMoreFiles)
	}

	total := 5 + 11
	payload := e.Transport.Payload(total)
	binary.LittleEndian.PutUint16(payload[0:2], cur.ParentID)
	binary.LittleEndian.PutUint16(payload[2:4], cur.DirEntry)
	payload[4] = cur.SearchAttr
	copy(payload[5:], cur.Template[:])

	reply, ax, rqErr := e.Transport.Request(OpFindNext, remote, total, false)
	if rqErr != nil {
		return dosErr(DOSErrNoMoreFiles)
	}
	if len(reply) != 24 {
		return dosErrForShape(ax)
	}
	if ax != 0 {
		return dosErr(ax)
	}

	decodeFoundFile(reply, cur)
	return nil
}

// decodeFoundFile unpacks the 24-byte FINDFIRST/FINDNEXT reply shared by
// both operations into cur's found-entry area and cursor state.
func decodeFoundFile(reply []byte, cur *ScanCursor) {
	cur.Found.Attr = reply[0]
	copy(cur.Found.Name[:], reply[1:12])
	cur.Found.Time = binary.LittleEndian.Uint16(reply[12:14])
	cur.Found.Date = binary.LittleEndian.Uint16(reply[14:16])
	cur.Found.StartClstr = 0
	cur.Found.Size = binary.LittleEndian.Uint32(reply[16:20])
	cur.ParentID = binary.LittleEndian.Uint16(reply[20:22])
	cur.DirEntry = binary.LittleEndian.Uint16(reply[22:24])
}
