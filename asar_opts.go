package asar

import "log/slog"

// Option configures an Asar instance.
type Option func(*Asar)

// WithLogger sets the logger used for operation events.
// A nil logger (the default) disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Asar) {
		a.logger = logger
	}
}
