package logger

import (
	"sync"

	"go.uber.org/zap"
)

// Log levels accepted by the log_level config key.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Encodings accepted by the log_format config key.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options selects level, encoding and destination.
type Options struct {
	Level  string
	Format string
	// Stderr routes output away from stdout, which one-shot commands use
	// for their result.
	Stderr bool
}

var (
	// globalLogger holds the process-wide logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger. The first call initializes it;
// subsequent calls ignore opts and return the same instance.
func Get(opts Options) *Logger {
	once.Do(func() {
		globalLogger = New(opts)
	})
	return globalLogger
}

// New builds a standalone logger.
func New(opts Options) *Logger {
	return newZapLogger(opts)
}

// Nop returns a logger that discards everything. Tests use it so services
// can log unconditionally.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}
