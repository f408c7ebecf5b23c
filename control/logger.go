// control/logger.go
// Author: momentics <momentics@gmail.com>
//
// Owns the process-wide golog logger: InitLogging opens the log file
// once at startup, and Logger returns an accessor other packages use
// instead of importing golog directly, per the teacher's pattern of
// centralizing cross-cutting concerns in control.

package control

import "github.com/kashari/golog"

// Logging is the logging surface exposed to the rest of the module.
// Its method set matches golog's package-level functions so Logger()
// can be a zero-cost wrapper around them.
type Logging interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type gologLogger struct{}

func (gologLogger) Debug(format string, args ...any) { golog.Debug(format, args...) }
func (gologLogger) Info(format string, args ...any)  { golog.Info(format, args...) }
func (gologLogger) Warn(format string, args ...any)  { golog.Warn(format, args...) }
func (gologLogger) Error(format string, args ...any) { golog.Error(format, args...) }

var defaultLogger Logging = gologLogger{}

// InitLogging opens path as golog's log file, per the teacher's
// router.go "golog.Init(filePath)" call site.
func InitLogging(path string) error {
	return golog.Init(path)
}

// Logger returns the process-wide logging accessor.
func Logger() Logging {
	return defaultLogger
}
