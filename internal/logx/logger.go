package logx

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Anything but env "production" gets the
// development config for local readability. verbose=false hides info logs.
func New(env string, verbose bool) (*zap.Logger, zap.AtomicLevel, error) {
	cfg := zap.NewProductionConfig()
	if env != "production" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	}

	level := zap.NewAtomicLevelAt(LevelFor(verbose))
	cfg.Level = level

	logger, err := cfg.Build()
	if err != nil {
		return nil, level, err
	}
	return logger.Named("skaterslimit"), level, nil
}

func LevelFor(verbose bool) zapcore.Level {
	if verbose {
		return zapcore.InfoLevel
	}
	return zapcore.WarnLevel
}
