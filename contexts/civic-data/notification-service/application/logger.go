package application

import "log/slog"

// ResolveLogger guards against nil loggers so use cases can log without
// checking.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
