package etherdfs

import (
	"encoding/binary"
	"net"
	"testing"
	"time"
)

// fakeLinkDriver captures every frame handed to Send and, if reply is
// non-nil, immediately delivers it into the bound inbox, simulating a
// server that answers on the same tick.
type fakeLinkDriver struct {
	inbox   *Inbox
	sent    [][]byte
	reply   func(sent []byte) []byte
	sendErr error
	closed  bool
}

func (d *fakeLinkDriver) Send(frame []byte) error {
	d.sent = append(d.sent, append([]byte(nil), frame...))
	if d.sendErr != nil {
		return d.sendErr
	}
	if d.reply != nil {
		if r := d.reply(frame); r != nil {
			dst, ok := d.inbox.Prepare(len(r))
			if ok {
				copy(dst, r)
				d.inbox.Commit()
			}
		}
	}
	return nil
}

func (d *fakeLinkDriver) Close() error {
	d.closed = true
	return nil
}

// fakeTickSource advances by one on every read, so a Transport waiting for
// a reply that never arrives times out after a couple of poll iterations
// instead of requiring a real ~100ms wall-clock wait.
type fakeTickSource struct{ n uint64 }

func (f *fakeTickSource) Now() uint64 {
	f.n++
	return f.n
}

var (
	testLocalMAC = net.HardwareAddr{0, 1, 2, 3, 4, 5}
	testPeerMAC  = net.HardwareAddr{6, 7, 8, 9, 10, 11}
)

// buildReply constructs a valid reply frame echoing seq back with the
// given AX word and payload, matching the wire layout in frame.go.
func buildReply(seq uint8, ax uint16, payload []byte, checksumEnabled bool) []byte {
	total := offPayload + len(payload)
	buf := make([]byte, total)
	copy(buf[offDstMAC:offDstMAC+6], testLocalMAC)
	copy(buf[offSrcMAC:offSrcMAC+6], testPeerMAC)
	binary.BigEndian.PutUint16(buf[offEtherType:offEtherType+2], uint16(EtherType))
	binary.LittleEndian.PutUint16(buf[offFrameLen:offFrameLen+2], uint16(total))

	v := Version & versionMask
	if checksumEnabled {
		v |= checksumFlag
	}
	buf[offProtoVer] = v
	buf[offSeq] = seq
	buf[offDrive] = uint8(ax)
	buf[offOp] = uint8(ax >> 8)
	copy(buf[offPayload:], payload)

	if checksumEnabled {
		sum := checksum(buf[offProtoVer:total])
		binary.LittleEndian.PutUint16(buf[offChecksum:offChecksum+2], sum)
	}
	return buf
}

func newTestTransport(driver *fakeLinkDriver) *Transport {
	inbox := &Inbox{}
	driver.inbox = inbox
	tr := NewTransport(driver, inbox, testLocalMAC)
	tr.PeerMAC = testPeerMAC
	tr.clock = &fakeTickSource{}
	tr.AttemptTimeout = time.Hour // never trip the wall-clock deadline in tests
	return tr
}

func TestTransportRequestSuccess(t *testing.T) {
	driver := &fakeLinkDriver{}
	tr := newTestTransport(driver)

	driver.reply = func(sent []byte) []byte {
		seq := sent[offSeq]
		return buildReply(seq, 0, []byte("hello"), true)
	}

	payload, ax, err := tr.Request(OpInstallCheck, 3, 0, false)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if ax != 0 {
		t.Errorf("ax = %#x, want 0", ax)
	}
	if string(payload) != "hello" {
		t.Errorf("payload = %q, want %q", payload, "hello")
	}
	if len(driver.sent) != 1 {
		t.Errorf("sent %d frames, want 1", len(driver.sent))
	}
}

func TestTransportRequestSurfacesAX(t *testing.T) {
	driver := &fakeLinkDriver{}
	tr := newTestTransport(driver)

	driver.reply = func(sent []byte) []byte {
		return buildReply(sent[offSeq], 2, nil, true)
	}

	_, ax, err := tr.Request(OpDelete, 0, 0, false)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if ax != 2 {
		t.Errorf("ax = %d, want 2", ax)
	}
}

func TestTransportRejectsBadChecksum(t *testing.T) {
	driver := &fakeLinkDriver{}
	tr := newTestTransport(driver)
	tr.MaxAttempts = 2

	driver.reply = func(sent []byte) []byte {
		reply := buildReply(sent[offSeq], 0, []byte("x"), true)
		reply[offChecksum] ^= 0xFF // corrupt
		return reply
	}

	_, _, err := tr.Request(OpInstallCheck, 0, 0, false)
	if err != ErrNetwork {
		t.Fatalf("err = %v, want ErrNetwork (bad checksum should be dropped and retried)", err)
	}
	if len(driver.sent) != 2 {
		t.Errorf("sent %d frames, want %d (one per attempt)", len(driver.sent), tr.MaxAttempts)
	}
}

func TestTransportRejectsWrongSeq(t *testing.T) {
	driver := &fakeLinkDriver{}
	tr := newTestTransport(driver)
	tr.MaxAttempts = 1

	driver.reply = func(sent []byte) []byte {
		return buildReply(sent[offSeq]+1, 0, nil, true)
	}

	_, _, err := tr.Request(OpInstallCheck, 0, 0, false)
	if err != ErrNetwork {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestTransportNetworkErrorAfterAllAttempts(t *testing.T) {
	driver := &fakeLinkDriver{}
	tr := newTestTransport(driver)
	tr.MaxAttempts = 3
	// no reply configured: every attempt times out

	_, _, err := tr.Request(OpInstallCheck, 0, 0, false)
	if err != ErrNetwork {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if len(driver.sent) != 3 {
		t.Errorf("sent %d frames, want 3", len(driver.sent))
	}
}

func TestTransportSingleFlight(t *testing.T) {
	driver := &fakeLinkDriver{}
	tr := newTestTransport(driver)

	driver.reply = func(sent []byte) []byte {
		return buildReply(sent[offSeq], 0, nil, true)
	}

	done := make(chan struct{})
	go func() {
		tr.Request(OpInstallCheck, 0, 0, false)
		close(done)
	}()
	<-done

	// A second, sequential call must also succeed cleanly: the mutex
	// serializes requests rather than deadlocking or corrupting state.
	if _, _, err := tr.Request(OpInstallCheck, 0, 0, false); err != nil {
		t.Fatalf("second Request: %v", err)
	}
}
