package asar

import "log/slog"

// extractConfig holds configuration for extraction.
type extractConfig struct {
	logger   *slog.Logger
	progress ProgressFunc
}

// ExtractOption configures extraction.
type ExtractOption func(*extractConfig)

// ExtractWithLogger overrides the instance logger for a single Extract call.
func ExtractWithLogger(logger *slog.Logger) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.logger = logger
	}
}

// ExtractWithProgress registers a callback invoked once per file as it is
// written to the target directory.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.progress = fn
	}
}
