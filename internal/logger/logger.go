package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a production JSON logger at the given level name.
func New(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.DisableStacktrace = true

	return cfg.Build()
}
