// internal/utils/logger/config.go
package logger

type Config struct {
	LogFile     string
	MaxSize     int  // megabytes
	MaxAge      int  // days
	MaxBackups  int  // files
	Compress    bool // gzip rotated files
	Development bool
	// Quiet drops the console core and writes to the file only.
	Quiet bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "logs/launchpad.log",
		MaxSize:     10,
		MaxAge:      30,
		MaxBackups:  5,
		Compress:    true,
		Development: false,
	}
}
