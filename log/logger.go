package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging abstraction used across the router.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Fatal(msg string, fields ...zap.Field)
}

type loggerImpl struct {
	zapLogger *zap.Logger
}

var _ Logger = (*loggerImpl)(nil)

// NewLogger creates a zap backed logger.
// In production mode, JSON output is written to fileName (stdout if empty).
// Otherwise a colored console encoder is used.
func NewLogger(isProduction bool, fileName string, logLevelStr string) (Logger, error) {
	logLevel := zapcore.InfoLevel
	if logLevelStr != "" {
		if err := logLevel.Set(logLevelStr); err != nil {
			return nil, err
		}
	}

	var config zap.Config
	if isProduction {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.Level = zap.NewAtomicLevelAt(logLevel)

	if fileName != "" {
		config.OutputPaths = []string{fileName}
		config.ErrorOutputPaths = []string{fileName}
	}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &loggerImpl{zapLogger: zapLogger}, nil
}

// Debug implements Logger.
func (l *loggerImpl) Debug(msg string, fields ...zap.Field) {
	l.zapLogger.Debug(msg, fields...)
}

// Info implements Logger.
func (l *loggerImpl) Info(msg string, fields ...zap.Field) {
	l.zapLogger.Info(msg, fields...)
}

// Warn implements Logger.
func (l *loggerImpl) Warn(msg string, fields ...zap.Field) {
	l.zapLogger.Warn(msg, fields...)
}

// Error implements Logger.
func (l *loggerImpl) Error(msg string, fields ...zap.Field) {
	l.zapLogger.Error(msg, fields...)
}

// Fatal implements Logger.
func (l *loggerImpl) Fatal(msg string, fields ...zap.Field) {
	l.zapLogger.Fatal(msg, fields...)
}
