package etherdfs

import (
	"net"
	"testing"
	"time"

	"github.com/mdlayher/raw"
)

// fakePacketConn is a minimal net.PacketConn double that only records the
// address passed to WriteTo, so RawLinkDriver.Send can be tested without
// an actual raw socket.
type fakePacketConn struct {
	writtenTo net.Addr
}

func (c *fakePacketConn) ReadFrom(p []byte) (int, net.Addr, error) { return 0, nil, nil }
func (c *fakePacketConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	c.writtenTo = addr
	return len(p), nil
}
func (c *fakePacketConn) Close() error                       { return nil }
func (c *fakePacketConn) LocalAddr() net.Addr                { return nil }
func (c *fakePacketConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakePacketConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakePacketConn) SetWriteDeadline(t time.Time) error { return nil }

// TestRawLinkDriverSendTargetsFrameDestination checks that Send addresses
// the raw socket write at the frame's own destination MAC, not the local
// interface's address: the kernel routes on the sockaddr, not the frame
// bytes, so the two must agree or every frame loops back onto the sender.
func TestRawLinkDriverSendTargetsFrameDestination(t *testing.T) {
	localIface := &net.Interface{HardwareAddr: net.HardwareAddr{0, 1, 2, 3, 4, 5}}
	conn := &fakePacketConn{}
	d := &RawLinkDriver{iface: localIface, conn: conn}

	peerMAC := net.HardwareAddr{6, 7, 8, 9, 10, 11}
	frame := make([]byte, offPayload)
	copy(frame[offDstMAC:offDstMAC+6], peerMAC)
	copy(frame[offSrcMAC:offSrcMAC+6], localIface.HardwareAddr)

	if err := d.Send(frame); err != nil {
		t.Fatalf("Send: %v", err)
	}

	addr, ok := conn.writtenTo.(*raw.Addr)
	if !ok {
		t.Fatalf("WriteTo addr = %#v, want *raw.Addr", conn.writtenTo)
	}
	if addr.HardwareAddr.String() != peerMAC.String() {
		t.Errorf("WriteTo addr = %s, want peer MAC %s", addr.HardwareAddr, peerMAC)
	}
}
