package config

const (
	defaultLibraryDir     = "~/roms"
	defaultDatsDir        = "~/.local/share/ludex/dats"
	defaultDatabasePath   = "~/.local/share/ludex/library.db"
	defaultLogDir         = "~/.local/share/ludex/logs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultQueueDepth     = 256
	defaultToolTimeoutSec = 600
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir:   defaultLibraryDir,
			DatsDir:      defaultDatsDir,
			DatabasePath: defaultDatabasePath,
			LogDir:       defaultLogDir,
		},
		Scan: Scan{
			QueueDepth: defaultQueueDepth,
		},
		Tools: Tools{
			TimeoutSeconds: defaultToolTimeoutSec,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
