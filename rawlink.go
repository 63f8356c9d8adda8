package etherdfs

import (
	"net"

	"github.com/mdlayher/raw"
)

// RawLinkDriver is the production LinkDriver, built directly on
// github.com/mdlayher/raw. It opens a raw AF_PACKET-style socket filtered
// to EtherType and feeds every received frame into an Inbox using the
// two-phase Prepare/Commit protocol, exactly as a packet driver's receive
// callback would.
type RawLinkDriver struct {
	iface *net.Interface
	conn  net.PacketConn
	inbox *Inbox
	done  chan struct{}
}

// NewRawLinkDriver opens a raw packet socket on iface and starts a
// goroutine delivering incoming EtherDFS frames into inbox. The goroutine
// plays the role of the packet driver's receive interrupt: it only ever
// touches inbox, never any Engine or DriveTable state.
func NewRawLinkDriver(iface *net.Interface, inbox *Inbox) (*RawLinkDriver, error) {
	conn, err := raw.ListenPacket(iface, uint16(EtherType), nil)
	if err != nil {
		return nil, err
	}

	d := &RawLinkDriver{
		iface: iface,
		conn:  conn,
		inbox: inbox,
		done:  make(chan struct{}),
	}
	go d.receiveLoop()
	return d, nil
}

// Send implements LinkDriver.
func (d *RawLinkDriver) Send(frame []byte) error {
	dst := net.HardwareAddr(frame[offDstMAC : offDstMAC+6])
	_, err := d.conn.WriteTo(frame, &raw.Addr{HardwareAddr: dst})
	return err
}

// Close implements LinkDriver.
func (d *RawLinkDriver) Close() error {
	select {
	case <-d.done:
		return nil // already closed
	default:
	}
	close(d.done)
	return d.conn.Close()
}

// receiveLoop reads raw frames off the socket and hands each one to the
// inbox using the same Prepare (phase 1) / Commit (phase 2) split a real
// packet driver callback would use, even though on a modern OS the whole
// frame is available in one ReadFrom call.
func (d *RawLinkDriver) receiveLoop() {
	buf := make([]byte, FrameSize)
	for {
		n, _, err := d.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-d.done:
				return
			default:
				continue
			}
		}

		dst, ok := d.inbox.Prepare(n)
		if !ok {
			continue // no buffer available or frame too large: drop
		}
		copy(dst, buf[:n])
		d.inbox.Commit()
	}
}
