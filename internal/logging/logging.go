package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the console logger used by the CLI. Debug enables caller and
// debug-level output; otherwise only Info and above reach stderr, and quiet
// raises the floor to Warn.
func New(debug bool, quiet bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		level := zap.InfoLevel
		if quiet {
			level = zap.WarnLevel
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.DisableStacktrace = true
		cfg.Sampling = nil
	}
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
