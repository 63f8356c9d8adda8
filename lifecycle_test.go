package etherdfs

import "testing"

// fakeHost is a Host test double letting lifecycle tests script each
// kernel-facing call independently.
type fakeHost struct {
	major         int
	verOK         bool
	installOK     bool
	claimID       int
	alreadyLoaded bool
	claimErr      error
	releaseErr    error
	clearErr      error

	released  []int
	cleared   []int
}

func (h *fakeHost) KernelVersion() (int, bool) { return h.major, h.verOK }
func (h *fakeHost) RedirectorInstallAllowed() bool { return h.installOK }

func (h *fakeHost) ClaimMultiplexID() (int, bool, error) {
	return h.claimID, h.alreadyLoaded, h.claimErr
}

func (h *fakeHost) ReleaseMultiplexID(id int) error {
	h.released = append(h.released, id)
	return h.releaseErr
}

func (h *fakeHost) ClearDriveCDS(local int) error {
	h.cleared = append(h.cleared, local)
	return h.clearErr
}

func goodHost() *fakeHost {
	return &fakeHost{major: 6, verOK: true, installOK: true, claimID: 3}
}

func newTestManager(host Host) (*Manager, *DriveTable) {
	driver := &fakeLinkDriver{}
	tr := newTestTransport(driver)
	table := NewDriveTable()
	return NewManager(host, tr, table, nil), table
}

func TestManagerInstallSuccess(t *testing.T) {
	m, _ := newTestManager(goodHost())
	if err := m.Install(); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if m.multiplexID != 3 {
		t.Errorf("multiplexID = %d, want 3", m.multiplexID)
	}
}

func TestManagerInstallUnsupportedKernel(t *testing.T) {
	host := goodHost()
	host.major = 4
	m, _ := newTestManager(host)
	if err := m.Install(); err != ErrUnsupportedKernel {
		t.Fatalf("err = %v, want ErrUnsupportedKernel", err)
	}
}

func TestManagerInstallKernelVersionUnknown(t *testing.T) {
	host := goodHost()
	host.verOK = false
	m, _ := newTestManager(host)
	if err := m.Install(); err != ErrUnsupportedKernel {
		t.Fatalf("err = %v, want ErrUnsupportedKernel", err)
	}
}

func TestManagerInstallRedirectorRefused(t *testing.T) {
	host := goodHost()
	host.installOK = false
	m, _ := newTestManager(host)
	if err := m.Install(); err != ErrRedirectorRefused {
		t.Fatalf("err = %v, want ErrRedirectorRefused", err)
	}
}

func TestManagerInstallAlreadyLoaded(t *testing.T) {
	host := goodHost()
	host.alreadyLoaded = true
	m, _ := newTestManager(host)
	if err := m.Install(); err != ErrAlreadyLoaded {
		t.Fatalf("err = %v, want ErrAlreadyLoaded", err)
	}
}

func TestManagerInstallNoFreeMultiplex(t *testing.T) {
	host := goodHost()
	host.claimID = 0
	m, _ := newTestManager(host)
	if err := m.Install(); err != ErrNoFreeMultiplex {
		t.Fatalf("err = %v, want ErrNoFreeMultiplex", err)
	}
}

func TestManagerUnloadNotLoaded(t *testing.T) {
	m, _ := newTestManager(goodHost())
	if err := m.Unload(); err != ErrNotLoaded {
		t.Fatalf("err = %v, want ErrNotLoaded", err)
	}
}

func TestManagerUnloadClearsMappedDrivesAndCloses(t *testing.T) {
	host := goodHost()
	m, table := newTestManager(host)

	if err := m.Install(); err != nil {
		t.Fatalf("Install: %v", err)
	}
	table.Map(2, 0)
	table.Map(5, 1)

	if err := m.Unload(); err != nil {
		t.Fatalf("Unload: %v", err)
	}

	if len(host.released) != 1 || host.released[0] != 3 {
		t.Errorf("released = %v, want [3]", host.released)
	}
	if len(host.cleared) != 2 {
		t.Errorf("cleared %d drives, want 2", len(host.cleared))
	}
	if table.Mapped(2) || table.Mapped(5) {
		t.Error("drives still mapped after Unload")
	}

	driver := m.Transport.driver.(*fakeLinkDriver)
	if !driver.closed {
		t.Error("Unload did not close the underlying link driver")
	}

	// A second Unload must fail cleanly rather than double-release.
	if err := m.Unload(); err != ErrNotLoaded {
		t.Fatalf("second Unload: err = %v, want ErrNotLoaded", err)
	}
}
