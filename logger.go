package keel

// Logger defines the interface for framework logging.
// keel uses structured logging with key-value pairs to provide consistent,
// parseable log output across the framework and its components.
//
// All framework operations (component registration, boot ordering,
// per-component lifecycle transitions, config loading and reloads) are
// logged through this interface, so applications control how framework logs
// appear.
//
// The Logger interface uses variadic arguments in key-value pairs:
//
//	logger.Info("message", "key1", "value1", "key2", "value2")
//
// *slog.Logger satisfies this interface directly, which is what New uses
// when no logger is supplied. Other structured loggers (logrus, zap's sugar,
// zerolog adapters) fit behind the same four methods.
type Logger interface {
	// Info logs an informational message with optional key-value pairs.
	// Used for normal lifecycle events like component boot and shutdown.
	//
	// Example:
	//   logger.Info("Component ready", "component", "database")
	Info(msg string, args ...any)

	// Error logs an error message with optional key-value pairs.
	// Used for failures that are surfaced to the caller or absorbed during
	// best-effort sweeps.
	//
	// Example:
	//   logger.Error("Component shutdown failed", "component", "scheduler", "error", err)
	Error(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs.
	// Used for unusual conditions that don't prevent normal operation.
	Warn(msg string, args ...any)

	// Debug logs a debug message with optional key-value pairs.
	// Used for detailed diagnostics like resolved boot order, typically
	// disabled in production.
	Debug(msg string, args ...any)
}
