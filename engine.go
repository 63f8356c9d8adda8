package etherdfs

import "sync"

// Engine is the operation dispatcher: it owns a Transport and a
// DriveTable, and exposes one method per supported operation. Every method
// marshals its arguments into the transport's send buffer at offset 60,
// invokes Transport.Request, and interprets the reply.
//
// Engine serializes calls with an internal mutex: the dispatcher must
// never be reentered, since it runs entirely inside the host's
// redirector-interrupt call.
type Engine struct {
	mu sync.Mutex

	Transport *Transport
	Table     *DriveTable
}

// NewEngine builds an Engine around an already-constructed Transport and
// DriveTable.
func NewEngine(t *Transport, table *DriveTable) *Engine {
	return &Engine{Transport: t, Table: table}
}

// remoteDrive resolves a local drive ordinal to the remote ordinal the
// server expects on the wire, or ErrUnmapped if local carries no mapping.
func (e *Engine) remoteDrive(local int) (uint8, error) {
	remote, ok := e.Table.Remote(local)
	if !ok {
		return 0, ErrUnmapped
	}
	return remote, nil
}

// CallSource names where a host call's affected drive ordinal comes from
// when routing an incoming host call.
type CallSource int

const (
	// SourceFileHandle: low 6 bits of the SFT's dev_info_word (CLSFIL,
	// CMMTFIL, READFIL, WRITEFIL, LOCKFIL, UNLOCKFIL, SKFMEND, UNKNOWN_2D).
	SourceFileHandle CallSource = iota
	// SourceScanCursor: low 5 bits of the cursor's drive byte (FINDNEXT).
	SourceScanCursor
	// SourcePathArgument: drive letter at index 0 of the first filename
	// argument (SETATTR, GETATTR, DELETE, OPEN, CREATE, SPOPEN, MKDIR,
	// RMDIR, CHDIR, RENAME).
	SourcePathArgument
	// SourceCurrentDir: drive letter at index 0 of the current-directory
	// structure (DISKSPACE, FINDFIRST, and any other default case).
	SourceCurrentDir
)

// CallContext carries whichever value CallSource names, so RouteDrive can
// compute the affected local drive ordinal without needing real DOS
// memory. Only the field matching Source needs to be set.
type CallContext struct {
	Source CallSource

	// OpenFile is set when Source == SourceFileHandle.
	OpenFile *OpenFile
	// Cursor is set when Source == SourceScanCursor.
	Cursor *ScanCursor
	// Path is set when Source is SourcePathArgument or SourceCurrentDir;
	// its first byte must be a drive letter.
	Path string
}

// RouteDrive implements the call-routing table: given a call's
// context, it returns the local drive ordinal the call is meant for, and
// whether that ordinal is mapped at all. A false result means the call is
// "not for us" and must be chained to any previous handler unchanged.
func RouteDrive(table *DriveTable, ctx CallContext) (local int, ok bool) {
	switch ctx.Source {
	case SourceFileHandle:
		if ctx.OpenFile == nil {
			return 0, false
		}
		local = ctx.OpenFile.drive()
	case SourceScanCursor:
		if ctx.Cursor == nil {
			return 0, false
		}
		local = ctx.Cursor.drive()
	case SourcePathArgument, SourceCurrentDir:
		if len(ctx.Path) == 0 {
			return 0, false
		}
		local = DriveOrdinal(ctx.Path[0])
	default:
		return 0, false
	}

	if local < 0 || local >= NumDrives {
		return 0, false
	}
	if !table.Mapped(local) {
		return 0, false
	}
	return local, true
}
