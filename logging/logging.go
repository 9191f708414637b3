// Package logging builds the zap logger used across the server.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production logger at level, or a development logger if dev is set
func New(dev bool, level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if dev {
		config = zap.NewDevelopmentConfig()
	}

	if level != "" {
		l, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("logging: invalid level:%q", level)
		}
		config.Level = zap.NewAtomicLevelAt(l)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: failed to build logger:%w", err)
	}
	return logger, nil
}
