package etherdfs

import (
	"errors"
	"fmt"
)

// Host-visible DOS error codes surfaced by dispatcher operations.
const (
	DOSErrFileNotFound       = 2
	DOSErrPathNotFound       = 3
	DOSErrAccessDenied       = 5
	DOSErrCannotRemoveCurDir = 16
	DOSErrNoMoreFiles        = 18
)

// DOSError wraps a host-visible numeric error code, the way a redirector
// call would surface AX on failure. Local validation failures and peer
// errors are both reported through DOSError so callers can inspect the
// exact code without string matching.
type DOSError struct {
	Code uint16
}

func (e *DOSError) Error() string { return fmt.Sprintf("etherdfs: dos error %d", e.Code) }

// dosErr is a convenience constructor.
func dosErr(code uint16) error { return &DOSError{Code: code} }

// dosErrForShape builds the error for a reply that failed its fixed-length
// check: the peer's AX is surfaced verbatim unless AX was itself zero, in
// which case a shape violation with no reported error still has to become
// something a caller can act on, so it falls back to "file not found".
func dosErrForShape(ax uint16) error {
	if ax == 0 {
		ax = DOSErrFileNotFound
	}
	return dosErr(ax)
}

// ErrCrossDrive is returned by Rename when the source and destination
// paths name different drive letters.
var ErrCrossDrive = errors.New("etherdfs: cross-drive rename not allowed")

// asHostError maps a Transport error (network/peer/length) onto the
// host-visible error code an operation should surface: transport failures
// become a generic "file not found" style code except where an operation
// documents a different mapping (e.g. FindNext -> no-more-files); peer
// errors surface the AX value verbatim; shape errors surface AX, or the
// fallback code if AX was itself zero.
func asHostError(err error, ax uint16, networkFallback uint16) error {
	var peerErr *PeerError
	switch {
	case errors.As(err, &peerErr):
		return dosErr(peerErr.AX)
	case errors.Is(err, ErrNetwork):
		return dosErr(uint16(networkFallback))
	case errors.Is(err, ErrLength):
		if ax != 0 {
			return dosErr(ax)
		}
		return dosErr(uint16(networkFallback))
	default:
		return err
	}
}
