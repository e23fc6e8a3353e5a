package logging

import "github.com/arloliu/lessor/types"

// NopLogger discards every log message. It is the manager's default when no
// logger is injected, and keeps hot paths like Renew free of logging cost.
//
// Example:
//
// mgr := lessor.NewManager(&cfg, source, sink, lessor.WithLogger(logging.NewNop()))
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a logger that performs no operations.
//
// Returns:
//   - *NopLogger: Logger that discards all messages
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (n *NopLogger) Debug(_ /* msg */ string, _ /* keysAndValues */ ...any) {}

// Info discards the message.
func (n *NopLogger) Info(_ /* msg */ string, _ /* keysAndValues */ ...any) {}

// Warn discards the message.
func (n *NopLogger) Warn(_ /* msg */ string, _ /* keysAndValues */ ...any) {}

// Error discards the message.
func (n *NopLogger) Error(_ /* msg */ string, _ /* keysAndValues */ ...any) {}

// Fatal discards the message without exiting the process, so a nop-logged
// manager can never be terminated by a log call.
func (n *NopLogger) Fatal(_ /* msg */ string, _ /* keysAndValues */ ...any) {}
