package etherdfs

// FoundFile is the 32-byte "found entry" area populated by FindFirst and
// FindNext.
type FoundFile struct {
	Name       [11]byte
	Attr       uint8
	Time       uint16
	Date       uint16
	StartClstr uint16
	Size       uint32
}

// ScanCursor is the host-owned, engine-updated directory scan cursor: a
// 21-byte control block plus the 32-byte found-entry area, modeled here as
// a plain struct rather than a fixed-offset DOS DTA view, for the same
// reason OpenFile is a plain struct.
type ScanCursor struct {
	// DriveByte carries the local drive ordinal in its low 5 bits, with
	// bit 7 set to mark it a network drive.
	DriveByte uint8

	// Template is the 11-byte FCB-style search template captured at
	// FindFirst time and replayed on every FindNext.
	Template [11]byte

	// SearchAttr is the attribute mask supplied to FindFirst.
	SearchAttr uint8

	// ParentID and DirEntry are opaque cursor state returned by the
	// server and echoed back on the next FindNext call.
	ParentID uint16
	DirEntry uint16

	// Found holds the most recently matched directory entry.
	Found FoundFile
}

// drive returns the local drive ordinal encoded in the low 5 bits of
// DriveByte, the routing source FindNext uses.
func (c *ScanCursor) drive() int { return int(c.DriveByte & 0x1F) }
