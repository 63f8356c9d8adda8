package etherdfs

import "encoding/binary"

// openLike implements the shared wire contract of OPEN, CREATE, and
// SPECIAL OPEN: the payload is a fixed six-byte header (a caller-supplied
// stack word, and the special-open action/mode pair, both zero outside of
// SpecialOpen) followed by the path tail; the path must contain no
// wildcard. The 25-byte reply is decoded into a fresh OpenFile, and, for
// SpecialOpen only, an extra reply word is returned in the second result.
func (e *Engine) openLike(local int, op Op, path string, stackWord, spopAction, spopMode uint16) (*OpenFile, uint16, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fullLen, ok := LenIfNoWildcards(path)
	if !ok || fullLen < 2 {
		return nil, 0, dosErr(DOSErrPathNotFound)
	}
	tail, err := StripDrive(path)
	if err != nil {
		return nil, 0, dosErr(DOSErrPathNotFound)
	}

	remote, rerr := e.remoteDrive(local)
	if rerr != nil {
		return nil, 0, dosErr(DOSErrPathNotFound)
	}

	total := 6 + len(tail)
	payload := e.Transport.Payload(total)
	binary.LittleEndian.PutUint16(payload[0:2], stackWord)
	binary.LittleEndian.PutUint16(payload[2:4], spopAction)
	binary.LittleEndian.PutUint16(payload[4:6], spopMode)
	copy(payload[6:], tail)

	reply, ax, rqErr := e.Transport.Request(op, remote, total, false)
	if rqErr != nil {
		return nil, 0, dosErr(DOSErrFileNotFound)
	}
	if len(reply) != 25 {
		return nil, 0, dosErrForShape(ax)
	}
	if ax != 0 {
		return nil, 0, dosErr(ax)
	}

	f := &OpenFile{Drive: local}
	f.FileAttr = reply[0]
	copy(f.Name[:], reply[1:12])
	f.FileTime = binary.LittleEndian.Uint32(reply[12:16])
	f.FileSize = binary.LittleEndian.Uint32(reply[16:20])
	f.FileID = binary.LittleEndian.Uint16(reply[20:22])
	spopReturn := binary.LittleEndian.Uint16(reply[22:24])
	f.OpenMode = uint16(reply[24])
	f.DevInfoWord = devInfoNetwork | devInfoUnwritten | uint16(local)
	f.FilePos = 0

	return f, spopReturn, nil
}

// Open opens an existing file for the access mode encoded in stackWord.
func (e *Engine) Open(local int, path string, stackWord uint16) (*OpenFile, error) {
	f, _, err := e.openLike(local, OpOpen, path, stackWord, 0, 0)
	return f, err
}

// Create creates (or truncates) a file for the access mode encoded in
// stackWord.
func (e *Engine) Create(local int, path string, stackWord uint16) (*OpenFile, error) {
	f, _, err := e.openLike(local, OpCreate, path, stackWord, 0, 0)
	return f, err
}

// SpecialOpen implements DOS's Extended Open/Create (AL=2Eh): action and
// mode carry the extended open semantics, and the server's extra reply
// word is returned verbatim for the caller to place in CX.
func (e *Engine) SpecialOpen(local int, path string, stackWord, action, mode uint16) (*OpenFile, uint16, error) {
	return e.openLike(local, OpSpecialOpen, path, stackWord, action, mode)
}
