package config

const (
	defaultLibraryRoot = "~/music"
	defaultDataDir     = "~/.local/share/tonearm"
	defaultLogDir      = "~/.local/share/tonearm/logs"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryRoot: defaultLibraryRoot,
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
		},
		Scan: Scan{
			FollowSymlinks: false,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
