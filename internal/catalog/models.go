package catalog

import "time"

// Entry statuses. An entry moves from Unknown toward Verified as metadata,
// hashes and catalog matches accumulate; Corrupt and Error are terminal for
// a given file version and re-examined when the file changes on disk.
const (
	StatusUnknown    = "UNKNOWN"
	StatusKnown      = "KNOWN"
	StatusVerified   = "VERIFIED"
	StatusCorrupt    = "CORRUPT"
	StatusError      = "ERROR"
	StatusCompressed = "COMPRESSED"
)

// Entry is one indexed file. Path is the primary key and always absolute.
// ModTime is seconds since the epoch with sub-second precision, matching
// what the dirty check compares against.
type Entry struct {
	Path      string
	System    string
	Size      int64
	ModTime   float64
	Status    string
	Serial    string
	Title     string
	CRC32     string
	MD5       string
	SHA1      string
	MatchName string
	DatName   string
	Extra     map[string]string
	Error     string
	UpdatedAt time.Time
}

// HasHashes reports whether at least one digest has been computed.
func (e *Entry) HasHashes() bool {
	return e.CRC32 != "" || e.MD5 != "" || e.SHA1 != ""
}

// Action kinds recorded in the append-only log.
const (
	ActionQuarantine = "quarantine"
	ActionRestore    = "restore"
	ActionDelete     = "delete"
	ActionRename     = "rename"
	ActionConvert    = "convert"
)

// Action is one destructive operation applied to a library file, recorded
// before the filesystem change so an interrupted run still leaves a trace.
type Action struct {
	ID        int64
	SessionID string
	Kind      string
	Path      string
	Detail    string
	CreatedAt time.Time
}
