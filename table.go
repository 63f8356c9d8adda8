package etherdfs

import (
	"errors"
	"net"
)

// ErrUnmapped is returned when an operation is requested against a local
// drive letter that has no remote mapping.
var ErrUnmapped = errors.New("etherdfs: drive not mapped")

// ErrDriveInUse is returned by Map when the local letter already has a
// mapping: a letter may appear in at most one mapping.
var ErrDriveInUse = errors.New("etherdfs: drive already mapped")

// ErrInvalidDrive is returned for a drive ordinal outside 0..25.
var ErrInvalidDrive = errors.New("etherdfs: invalid drive ordinal")

// DriveTable is the per-drive-letter mapping state: an array indexed by
// local-letter ordinal, each entry either "unmapped" or holding a remote
// letter ordinal. All mapped letters share a single remote peer MAC and a
// single local MAC.
type DriveTable struct {
	remote   [NumDrives]uint8
	localMAC net.HardwareAddr
	peerMAC  net.HardwareAddr
}

// NewDriveTable returns a table with every letter unmapped.
func NewDriveTable() *DriveTable {
	t := &DriveTable{}
	for i := range t.remote {
		t.remote[i] = UnmappedDrive
	}
	return t
}

// Map binds local drive ordinal local to remote drive ordinal remote. It
// fails if either ordinal is out of range or local is already mapped.
func (t *DriveTable) Map(local, remote int) error {
	if !validOrdinal(local) || !validOrdinal(remote) {
		return ErrInvalidDrive
	}
	if t.remote[local] != UnmappedDrive {
		return ErrDriveInUse
	}
	t.remote[local] = uint8(remote)
	return nil
}

// Unmap clears any mapping for local.
func (t *DriveTable) Unmap(local int) error {
	if !validOrdinal(local) {
		return ErrInvalidDrive
	}
	t.remote[local] = UnmappedDrive
	return nil
}

// Remote returns the remote drive ordinal mapped to local, and whether
// local is mapped at all.
func (t *DriveTable) Remote(local int) (uint8, bool) {
	if !validOrdinal(local) || t.remote[local] == UnmappedDrive {
		return 0, false
	}
	return t.remote[local], true
}

// Mapped reports whether local carries a mapping.
func (t *DriveTable) Mapped(local int) bool {
	_, ok := t.Remote(local)
	return ok
}

// FirstMapped returns the ordinal of the first mapped local drive, used by
// Discovery to pick a drive to probe. ok is false if nothing is mapped.
func (t *DriveTable) FirstMapped() (local int, ok bool) {
	for i, r := range t.remote {
		if r != UnmappedDrive {
			return i, true
		}
	}
	return 0, false
}

// LocalMAC returns the engine's own hardware address.
func (t *DriveTable) LocalMAC() net.HardwareAddr { return t.localMAC }

// SetLocalMAC sets the engine's own hardware address.
func (t *DriveTable) SetLocalMAC(mac net.HardwareAddr) { t.localMAC = mac }

// PeerMAC returns the remote server's hardware address, shared by every
// mapped drive.
func (t *DriveTable) PeerMAC() net.HardwareAddr { return t.peerMAC }

// SetPeerMAC sets the remote server's hardware address.
func (t *DriveTable) SetPeerMAC(mac net.HardwareAddr) { t.peerMAC = mac }

func validOrdinal(d int) bool { return d >= 0 && d < NumDrives }

// DriveOrdinal translates a drive letter (upper or lower case) into its
// 0-based ordinal (A=0 .. Z=25).
func DriveOrdinal(letter byte) int {
	switch {
	case letter >= 'a' && letter <= 'z':
		return int(letter - 'a')
	case letter >= 'A' && letter <= 'Z':
		return int(letter - 'A')
	default:
		return -1
	}
}
