package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool `toml:"enabled"`
	UseConsoleWriter bool
}

// RollingFile configures one lumberjack rotated log file.
type RollingFile struct {
	Name       string `toml:"name"`
	MaxSize    int    `toml:"maxSize"` // megabytes
	MaxBackups int    `toml:"maxBackups"`
	MaxAge     int    `toml:"maxAge"` // days
	Compress   bool   `toml:"compress"`
}

// LogFile implements a file based logger with one file per level group.
type LogFile struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	Access RollingFile `toml:"access"`
	Error  RollingFile `toml:"error"`
	Info   RollingFile `toml:"info"`
	Trace  RollingFile `toml:"trace"`
	Warn   RollingFile `toml:"warn"`
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.

	// EnableAccessLogToConsole writes the fiber access log to the console.
	// Does not overrule Console.Enabled.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // do not log /checkalive calls

	AppName     string
	ServiceName string

	// Console used mainly for docker and dev.
	Console Console

	File LogFile `toml:"file"`
}
