package etherdfs

import (
	"errors"
	"net"
)

// ErrNoServerFound is returned by Discovery.Run when no reply arrives to
// the broadcast probe.
var ErrNoServerFound = errors.New("etherdfs: no server found")

// broadcastMAC is the Ethernet broadcast address, used to seed a
// Discovery probe before the real peer MAC is known.
var broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// Discovery implements auto-discovery mode: with no configured server MAC,
// probe the network with a DISKSPACE query addressed to the broadcast MAC,
// against the first drive letter the caller intends to map, and adopt
// whichever host replies first as the permanent peer.
type Discovery struct {
	Transport *Transport
	Table     *DriveTable
}

// NewDiscovery builds a Discovery bound to t and table.
func NewDiscovery(t *Transport, table *DriveTable) *Discovery {
	return &Discovery{Transport: t, Table: table}
}

// Run broadcasts a DISKSPACE probe against the first mapped drive and
// blocks until a server answers or the transport's retry budget is
// exhausted. On success, the reply's source MAC becomes the transport's
// and drive table's permanent peer MAC.
func (d *Discovery) Run() (net.HardwareAddr, error) {
	local, ok := d.Table.FirstMapped()
	if !ok {
		return nil, errors.New("etherdfs: no drive mapped, nothing to probe")
	}
	remote, ok := d.Table.Remote(local)
	if !ok {
		return nil, errors.New("etherdfs: no drive mapped, nothing to probe")
	}

	d.Transport.PeerMAC = broadcastMAC

	_, _, err := d.Transport.Request(OpDiskSpace, remote, 0, true)
	if err != nil {
		return nil, ErrNoServerFound
	}

	d.Table.SetPeerMAC(d.Transport.PeerMAC)
	return d.Transport.PeerMAC, nil
}
