package etherdfs

import (
	"errors"
	"net"

	"github.com/sirupsen/logrus"
)

// Errors returned by Manager.Install and Manager.Unload.
var (
	ErrUnsupportedKernel  = errors.New("etherdfs: kernel version too old")
	ErrRedirectorRefused  = errors.New("etherdfs: kernel refuses redirector installation")
	ErrAlreadyLoaded      = errors.New("etherdfs: already loaded")
	ErrNoFreeMultiplex    = errors.New("etherdfs: no free multiplex id")
	ErrNotLoaded          = errors.New("etherdfs: not loaded")
	ErrNotTopmostHandler  = errors.New("etherdfs: no longer the topmost handler, cannot unload")
	ErrDriveAlreadyActive = errors.New("etherdfs: target drive is already active")
)

// Host abstracts the DOS kernel calls a redirector installer issues
// directly (INT 21h AX=3306h, INT 2Fh AX=1100h, the multiplex-id scan, and
// per-drive CDS access). Host-OS hooking is out of scope for this package;
// Manager only ever calls through this interface, so a caller supplies the
// real mechanism and tests supply a fake.
type Host interface {
	// KernelVersion reports the running kernel's major version, or
	// ok=false if it could not be determined at all.
	KernelVersion() (major int, ok bool)

	// RedirectorInstallAllowed reports whether the kernel currently
	// permits installing a network redirector (INT 2Fh AX=1100h).
	RedirectorInstallAllowed() bool

	// ClaimMultiplexID scans for a free INT 2Fh multiplex id and claims
	// it, or reports alreadyLoaded=true if an EtherDFS instance already
	// owns one.
	ClaimMultiplexID() (id int, alreadyLoaded bool, err error)

	// ReleaseMultiplexID relinquishes a previously claimed multiplex id.
	ReleaseMultiplexID(id int) error

	// ClearDriveCDS clears the Current Directory Structure entry for the
	// given local drive ordinal, the step that hands the drive letter
	// back to DOS on unload.
	ClearDriveCDS(local int) error
}

// Manager sequences installation and removal of an EtherDFS mount against
// a Host and the LinkDriver/DriveTable pair that back a Transport. It
// carries an injected logger rather than printing directly.
type Manager struct {
	Host      Host
	Transport *Transport
	Table     *DriveTable
	Log       *logrus.Logger

	multiplexID int
	installed   bool
}

// NewManager builds a Manager. If log is nil, a default logrus.Logger at
// InfoLevel is used.
func NewManager(host Host, t *Transport, table *DriveTable, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	return &Manager{Host: host, Transport: t, Table: table, Log: log}
}

// Install performs the sequence a redirector installer follows: kernel
// version check, redirector permission check, and multiplex slot claim. Per-drive
// activity checks and the packet-driver bring-up are the caller's
// responsibility (LinkDriver construction happens before NewTransport, and
// drive activity is a host-OS concern this package does not model).
func (m *Manager) Install() error {
	major, ok := m.Host.KernelVersion()
	if !ok || major < 5 {
		return ErrUnsupportedKernel
	}
	if !m.Host.RedirectorInstallAllowed() {
		return ErrRedirectorRefused
	}

	id, alreadyLoaded, err := m.Host.ClaimMultiplexID()
	if err != nil {
		return err
	}
	if alreadyLoaded {
		return ErrAlreadyLoaded
	}
	if id == 0 {
		return ErrNoFreeMultiplex
	}

	m.multiplexID = id
	m.installed = true
	m.Log.WithField("multiplex_id", id).Info("etherdfs installed")
	return nil
}

// Unload reverses Install: it releases the multiplex id, clears every
// mapped drive's CDS, and closes the underlying LinkDriver. The
// topmost-handler check, shared-data retrieval, and previous-handler
// restoration a full unload requires are folded into
// Host.ReleaseMultiplexID, since they are DOS-specific mechanics this
// package does not model directly.
func (m *Manager) Unload() error {
	if !m.installed {
		return ErrNotLoaded
	}

	if err := m.Host.ReleaseMultiplexID(m.multiplexID); err != nil {
		return err
	}

	for local := 0; local < NumDrives; local++ {
		if !m.Table.Mapped(local) {
			continue
		}
		if err := m.Host.ClearDriveCDS(local); err != nil {
			m.Log.WithError(err).WithField("drive", local).Warn("failed to clear drive CDS")
		}
		m.Table.Unmap(local)
	}

	m.installed = false
	m.Log.Info("etherdfs unloaded")
	return m.Close()
}

// Close releases the LinkDriver bound to the Manager's Transport. It is
// safe to call even if Unload already ran.
func (m *Manager) Close() error {
	return m.Transport.driver.Close()
}

// LocalMAC returns the local hardware address the Transport was
// constructed with.
func (m *Manager) LocalMAC() net.HardwareAddr {
	return m.Transport.LocalMAC
}
