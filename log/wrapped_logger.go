package log

// WrappedLogger wraps a user supplied logger with nil-safe leveled convenience functions; logging through a zero value
// 'WrappedLogger' is a no-op.
type WrappedLogger struct {
	logger Logger
}

// NewWrappedLogger returns a wrapped logger dispatching to the given logger.
func NewWrappedLogger(logger Logger) WrappedLogger {
	return WrappedLogger{logger: logger}
}

// Log allows raw access to the underlying logger, most use cases should be through the leveled functions below.
func (w WrappedLogger) Log(level Level, format string, args ...any) {
	if w.logger == nil {
		return
	}

	w.logger.Log(level, format, args...)
}

// Tracef logs the provided information at the trace level.
func (w WrappedLogger) Tracef(format string, args ...any) {
	w.Log(LevelTrace, format, args...)
}

// Debugf logs the provided information at the debug level.
func (w WrappedLogger) Debugf(format string, args ...any) {
	w.Log(LevelDebug, format, args...)
}

// Infof logs the provided information at the info level.
func (w WrappedLogger) Infof(format string, args ...any) {
	w.Log(LevelInfo, format, args...)
}

// Warnf logs the provided information at the warn level.
func (w WrappedLogger) Warnf(format string, args ...any) {
	w.Log(LevelWarning, format, args...)
}

// Errorf logs the provided information at the error level.
func (w WrappedLogger) Errorf(format string, args ...any) {
	w.Log(LevelError, format, args...)
}
