package asar

import "log/slog"

// packConfig holds configuration for archive assembly.
type packConfig struct {
	logger   *slog.Logger
	progress ProgressFunc
	maxFiles int
}

// PackOption configures archive assembly.
type PackOption func(*packConfig)

// PackWithLogger overrides the instance logger for a single Pack call.
func PackWithLogger(logger *slog.Logger) PackOption {
	return func(cfg *packConfig) {
		cfg.logger = logger
	}
}

// PackWithMaxFiles limits the number of files included in the archive.
// Zero uses DefaultMaxFiles. Negative means no limit.
func PackWithMaxFiles(n int) PackOption {
	return func(cfg *packConfig) {
		cfg.maxFiles = n
	}
}

// PackWithProgress registers a callback invoked once per file as its
// content is written to the archive.
func PackWithProgress(fn ProgressFunc) PackOption {
	return func(cfg *packConfig) {
		cfg.progress = fn
	}
}
