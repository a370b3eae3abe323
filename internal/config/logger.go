package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func validLevel(l string) bool {
	switch l {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// NewLogger builds the process logger and installs it as zap's global.
// With no file configured nothing is logged, since the terminal belongs to
// the UI.
func NewLogger(l Log) (*zap.SugaredLogger, error) {
	if l.File == "" {
		return zap.NewNop().Sugar(), nil
	}
	config := zap.NewDevelopmentConfig()
	switch l.Level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.StacktraceKey = ""
	if !l.ShowCaller {
		config.EncoderConfig.CallerKey = ""
	}
	config.OutputPaths = []string{l.File}
	config.ErrorOutputPaths = []string{l.File}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger.Sugar(), nil
}
