package etherdfs

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// Transport error taxonomy. Transport.Request itself only ever returns
// ErrNetwork (apart from an oversize-payload error): it hands back a
// non-zero AX as a value with a nil error and does not check reply
// lengths. ErrPeer and ErrLength are the kinds asHostError interprets.
var (
	// ErrNetwork indicates no valid reply was received after MaxAttempts
	// tries.
	ErrNetwork = errors.New("etherdfs: network error")

	// ErrPeer indicates the server replied with a non-zero AX word. The
	// value is carried by a *PeerError.
	ErrPeer = errors.New("etherdfs: peer error")

	// ErrLength indicates a reply's payload length did not match the
	// fixed size expected for the operation that was sent.
	ErrLength = errors.New("etherdfs: unexpected reply length")
)

// PeerError wraps ErrPeer with the AX value the server returned.
type PeerError struct {
	AX uint16
}

func (e *PeerError) Error() string   { return fmt.Sprintf("etherdfs: peer error, ax=%#x", e.AX) }
func (e *PeerError) Unwrap() error   { return ErrPeer }

// TickSource abstracts the ~55ms wall-clock tick a request poll loop uses
// while waiting for a reply. Production code uses realTickSource; tests
// inject a fake one so they don't have to sleep in real time.
type TickSource interface {
	// Now returns a monotonically increasing tick count; a difference of
	// 2 or more between two reads means the attempt has timed out.
	Now() uint64
}

type realTickSource struct{ start time.Time }

func newRealTickSource() *realTickSource { return &realTickSource{start: time.Now()} }

func (r *realTickSource) Now() uint64 {
	return uint64(time.Since(r.start) / (55 * time.Millisecond))
}

// Transport implements the request/response engine: it builds a request
// frame, emits it via a LinkDriver, and waits for a matching reply with
// retry and timeout, validating every candidate reply before accepting it.
//
// Only one request can be in flight at a time (mu enforces this) — the
// engine this transport serves is never reentered, so nothing ever needs
// to queue a second request behind the first.
type Transport struct {
	mu sync.Mutex

	driver LinkDriver
	inbox  *Inbox
	clock  TickSource

	ChecksumEnabled bool
	LocalMAC        net.HardwareAddr
	PeerMAC         net.HardwareAddr

	// MaxAttempts and AttemptTimeout default to 5 attempts of ~100ms each
	// but are overridable for testing.
	MaxAttempts    int
	AttemptTimeout time.Duration

	send sendFrame
	seq  uint8
}

// NewTransport builds a Transport bound to driver and inbox, using default
// retry/timeout parameters and a real wall-clock tick source.
func NewTransport(driver LinkDriver, inbox *Inbox, local net.HardwareAddr) *Transport {
	return &Transport{
		driver:          driver,
		inbox:           inbox,
		clock:           newRealTickSource(),
		ChecksumEnabled: true,
		LocalMAC:        local,
		PeerMAC:         make(net.HardwareAddr, 6),
		MaxAttempts:     5,
		AttemptTimeout:  100 * time.Millisecond,
	}
}

// Request builds and sends one request frame, retrying up to MaxAttempts
// times until a valid matching reply arrives. payload must already be
// placed via Payload(payloadLen) before calling Request. It returns the
// reply's payload slice and its AX word, or ErrNetwork when no valid reply
// arrived within MaxAttempts attempts.
//
// If updatePeerMAC is true (used only for discovery), any reply passing
// every other validation check is accepted regardless of its source MAC,
// and PeerMAC is updated to that source afterward.
func (t *Transport) Request(op Op, drive uint8, payloadLen int, updatePeerMAC bool) ([]byte, uint16, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	totalLen := offPayload + payloadLen
	if totalLen > FrameSize {
		return nil, 0, fmt.Errorf("etherdfs: payload of %d bytes does not fit in a frame", payloadLen)
	}
	if totalLen < offPayload {
		totalLen = offPayload
	}

	t.seq++
	t.send.prepareHeader(t.PeerMAC, t.LocalMAC, t.ChecksumEnabled, t.seq, drive, op, totalLen)
	t.send.writeChecksum(totalLen)

	frame, err := t.send.marshalEthernet(totalLen)
	if err != nil {
		return nil, 0, err
	}

	for attempt := 0; attempt < t.MaxAttempts; attempt++ {
		t.inbox.Reset()

		if err := t.driver.Send(frame); err != nil {
			continue
		}

		reply, ax, ok := t.waitForReply(t.seq, updatePeerMAC)
		if ok {
			if updatePeerMAC {
				t.PeerMAC = append(net.HardwareAddr(nil), reply.raw[offSrcMAC:offSrcMAC+6]...)
			}
			return reply.payload(), ax, nil
		}
	}

	return nil, 0, ErrNetwork
}

// Payload returns the writable region of the send frame's payload, for a
// caller (an ops_*.go function) to fill in before calling Request.
func (t *Transport) Payload(n int) []byte {
	return t.send.payload(n)
}

// waitForReply polls the inbox until a valid reply for seq arrives or the
// attempt's timeout elapses.
func (t *Transport) waitForReply(seq uint8, updatePeerMAC bool) (replyView, uint16, bool) {
	deadline := time.Now().Add(t.AttemptTimeout)
	startTick := t.clock.Now()

	for {
		if n, ready := t.inbox.Ready(); ready {
			view := replyView{raw: t.inbox.Bytes(n)}
			if ax, ok := t.validate(view, seq, updatePeerMAC); ok {
				return view, ax, true
			}
			// invalid candidate: drop it and keep waiting
			t.inbox.Reset()
		}

		if time.Now().After(deadline) {
			return replyView{}, 0, false
		}
		if t.clock.Now()-startTick >= 2 {
			return replyView{}, 0, false
		}
		time.Sleep(time.Millisecond)
	}
}

// validate checks every precondition a candidate reply must satisfy before
// it can be accepted.
func (t *Transport) validate(view replyView, seq uint8, updatePeerMAC bool) (uint16, bool) {
	if view.len() < offPayload {
		return 0, false
	}
	if !macEqual(view.dstMAC(), t.LocalMAC) {
		return 0, false
	}
	if !updatePeerMAC && !macEqual(view.srcMAC(), t.PeerMAC) {
		return 0, false
	}
	if view.etherType() != uint16(EtherType) {
		return 0, false
	}
	if view.seq() != seq {
		return 0, false
	}
	announced := view.announcedLen()
	if announced < offPayload || announced > view.len() {
		return 0, false
	}
	if t.ChecksumEnabled {
		want := checksum(view.raw[offProtoVer:announced])
		if want != view.storedChecksum() {
			return 0, false
		}
	}
	return view.ax(), true
}

func macEqual(a, b net.HardwareAddr) bool {
	if len(a) != 6 || len(b) != 6 {
		return false
	}
	for i := 0; i < 6; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
