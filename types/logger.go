package types

// Logger is the structured logging interface the lease manager emits
// through.
//
// The method set matches zap.SugaredLogger, so a *zap.SugaredLogger (or any
// logger with the same shape) plugs in directly. The variadic arguments are
// alternating key-value pairs.
type Logger interface {
	// Debug logs fine-grained diagnostics, such as individual renewals and
	// armed expiry checks.
	Debug(msg string, keysAndValues ...any)

	// Info logs lifecycle transitions, evictions and sweep summaries.
	Info(msg string, keysAndValues ...any)

	// Warn logs conditions that validate but deserve an operator's look,
	// such as a TTL too short to absorb renewal stalls.
	Warn(msg string, keysAndValues ...any)

	// Error logs failures the manager absorbed without propagating, such as
	// a rejected expiry check or a failed disconnect notification.
	Error(msg string, keysAndValues ...any)

	// Fatal logs the message and then calls os.Exit(1), even when logging
	// at this level is disabled. The lease manager itself never calls it;
	// it exists for zap compatibility.
	Fatal(msg string, keysAndValues ...any)
}
