// Package logging builds the zap logger used by the command-line tool.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// New returns a logger at the named level. Debug uses zap's development
// encoder; everything else uses the production JSON encoder. Unknown levels
// fall back to info.
func New(level string) (*zap.Logger, error) {
	var cfg zap.Config

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "error":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case "warn", "warning":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	default:
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
