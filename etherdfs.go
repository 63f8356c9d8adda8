// Package etherdfs implements the client-side protocol engine of EtherDFS,
// a network redirector that exposes a remote directory as a local drive
// letter over raw Ethernet, without IP or TCP.
//
// A single Engine binds one or more local drive letters to a single remote
// server, identified by its MAC address. Filesystem-shaped calls made
// against a mapped letter (open, read, write, close, directory enumeration,
// attribute and space queries, rename, delete, record locking, seek from
// end) are translated into small request frames carried directly in
// Ethernet frames using EtherType 0xF5ED (wire bytes ED F5), and the
// matching reply is decoded back into host-visible state.
//
// Host-OS hooking (trampolining a redirector interrupt into these calls)
// and the packet-driver shim (raw frame send/receive) are treated as
// external collaborators; this package defines the LinkDriver interface for
// the latter and leaves the former entirely up to the caller.
package etherdfs

import "github.com/mdlayher/ethernet"

const (
	// Version is the EtherDFS wire protocol version implemented by this
	// package. It occupies the low 7 bits of the version/flags byte at
	// offset 56 of every frame.
	Version uint8 = 3

	// EtherType is the registered EtherType used to carry EtherDFS frames,
	// conceptually 0xF5ED. It is declared here as 0xEDF5 so that a
	// standard big-endian uint16 marshal (github.com/mdlayher/ethernet's
	// EtherType encoding, and this package's own frame.go accessors)
	// produces the wire bytes ED F5 at offsets 12-13, matching what every
	// EtherDFS server expects on the wire.
	EtherType ethernet.EtherType = 0xEDF5

	// FrameSize is the maximum size, in bytes, of a send or receive frame
	// buffer, headers included. It accommodates payloads up to MaxPayload
	// (1030) bytes.
	FrameSize = 1090

	// HeaderSize is the number of bytes preceding the payload in every
	// frame: Ethernet header, padding, checksum, and the EtherDFS header
	// proper (see frame.go for the exact layout).
	HeaderSize = 60

	// MaxPayload is the largest payload that fits in a single frame.
	MaxPayload = FrameSize - HeaderSize

	// UnmappedDrive is the sentinel value stored for a local drive letter
	// that has no remote mapping.
	UnmappedDrive uint8 = 0xFF

	// NumDrives is the number of drive letter ordinals (A..Z).
	NumDrives = 26
)

// An Op is a request opcode, carried in the AL subfunction byte of the
// wire header (offset 59 on send). Values match the DOS redirector
// subfunctions this engine mirrors.
type Op uint8

// Supported operations. Names follow the AL_* enumeration of the original
// implementation.
const (
	OpInstallCheck Op = 0x00
	OpRmDir        Op = 0x01
	OpMkDir        Op = 0x03
	OpChDir        Op = 0x05
	OpCloseFile    Op = 0x06
	OpCommitFile   Op = 0x07
	OpReadFile     Op = 0x08
	OpWriteFile    Op = 0x09
	OpLockFile     Op = 0x0A
	OpUnlockFile   Op = 0x0B
	OpDiskSpace    Op = 0x0C
	OpSetAttr      Op = 0x0E
	OpGetAttr      Op = 0x0F
	OpRename       Op = 0x11
	OpDelete       Op = 0x13
	OpOpen         Op = 0x16
	OpCreate       Op = 0x17
	OpFindFirst    Op = 0x1B
	OpFindNext     Op = 0x1C
	OpSeekFromEnd  Op = 0x21
	OpUnknown2D    Op = 0x2D
	OpSpecialOpen  Op = 0x2E
)

func (o Op) String() string {
	switch o {
	case OpInstallCheck:
		return "InstallCheck"
	case OpRmDir:
		return "RmDir"
	case OpMkDir:
		return "MkDir"
	case OpChDir:
		return "ChDir"
	case OpCloseFile:
		return "CloseFile"
	case OpCommitFile:
		return "CommitFile"
	case OpReadFile:
		return "ReadFile"
	case OpWriteFile:
		return "WriteFile"
	case OpLockFile:
		return "LockFile"
	case OpUnlockFile:
		return "UnlockFile"
	case OpDiskSpace:
		return "DiskSpace"
	case OpSetAttr:
		return "SetAttr"
	case OpGetAttr:
		return "GetAttr"
	case OpRename:
		return "Rename"
	case OpDelete:
		return "Delete"
	case OpOpen:
		return "Open"
	case OpCreate:
		return "Create"
	case OpFindFirst:
		return "FindFirst"
	case OpFindNext:
		return "FindNext"
	case OpSeekFromEnd:
		return "SeekFromEnd"
	case OpUnknown2D:
		return "Unknown2D"
	case OpSpecialOpen:
		return "SpecialOpen"
	default:
		return "Unknown"
	}
}
