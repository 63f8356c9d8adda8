package etherdfs

import "sync/atomic"

// LinkDriver is the packet-driver shim: this package only defines the
// interface it needs and the single-slot inbox protocol used to hand
// received frames back to the engine. RawLinkDriver (rawlink.go) is the
// production implementation, built on github.com/mdlayher/raw.
type LinkDriver interface {
	// Send emits frame best-effort; no delivery confirmation is expected
	// or waited for.
	Send(frame []byte) error

	// Close releases any resources held by the driver (packet handles,
	// sockets, goroutines).
	Close() error
}

// inboxState values: a signed length where 0 means empty, negative means
// "reserved by driver, fill in progress", and positive means "ready".
const (
	inboxEmpty = 0
)

// Inbox is the single, process-wide receive buffer. It is implemented as a
// lock-free pair of an atomic length word and a byte buffer, because there
// is never more than one producer (the link driver's receive callback) and
// one consumer (the transport's poll loop) — no locks are needed.
type Inbox struct {
	length int32 // atomic; see inboxState doc above
	buf    [FrameSize]byte
}

// Prepare is phase 1 of the driver's two-call receive protocol: the
// driver asks for a buffer of n bytes. Prepare returns
// the buffer and true iff n fits within FrameSize and the inbox is
// currently empty; otherwise it signals "drop" by returning false, and the
// driver must not call Commit afterward.
func (in *Inbox) Prepare(n int) ([]byte, bool) {
	if n < 0 || n > FrameSize {
		return nil, false
	}
	if !atomic.CompareAndSwapInt32(&in.length, inboxEmpty, int32(-n)) {
		return nil, false
	}
	return in.buf[:n], true
}

// Commit is phase 2 of the driver's two-call receive protocol: the frame
// has been copied into the buffer returned by Prepare, and the inbox
// transitions from "reserved" to "ready".
func (in *Inbox) Commit() {
	n := atomic.LoadInt32(&in.length)
	if n < 0 {
		atomic.StoreInt32(&in.length, -n)
	}
}

// Ready reports whether the inbox currently holds a complete frame, and
// its length if so.
func (in *Inbox) Ready() (int, bool) {
	n := atomic.LoadInt32(&in.length)
	if n > 0 {
		return int(n), true
	}
	return 0, false
}

// Reset marks the inbox empty. The transport calls this before
// transmitting each request attempt and after discarding an invalid
// candidate reply; an accepted reply stays in place until the next
// request resets it.
func (in *Inbox) Reset() {
	atomic.StoreInt32(&in.length, inboxEmpty)
}

// Bytes returns a view of the current buffer contents up to length n. The
// caller must have already observed Ready() to know n is valid; the slice
// aliases the inbox's internal storage and must not be retained past the
// next Reset/Prepare.
func (in *Inbox) Bytes(n int) []byte {
	return in.buf[:n]
}
