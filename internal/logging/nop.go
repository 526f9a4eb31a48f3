package logging

import "github.com/arloliu/sortition/types"

// NopLogger implements a no-op logger that discards all messages.
//
// Used as the default when no logger is configured, so components never
// need nil checks before logging.
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a new no-op logger that discards all messages.
//
// Returns:
//   - *NopLogger: A new no-op logger instance
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (l *NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (l *NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (l *NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (l *NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message and does not exit.
//
// Unlike real loggers, the no-op Fatal does not terminate the program;
// discarding a fatal in tests should not kill the test binary.
func (l *NopLogger) Fatal(_ string, _ ...any) {}
