package log

import "go.uber.org/zap"

// NoOpLogger discards everything.
type NoOpLogger struct{}

var _ Logger = &NoOpLogger{}

func (*NoOpLogger) Debug(msg string, fields ...zap.Field) {}

func (*NoOpLogger) Info(msg string, fields ...zap.Field) {}

func (*NoOpLogger) Warn(msg string, fields ...zap.Field) {}

func (*NoOpLogger) Error(msg string, fields ...zap.Field) {}

func (*NoOpLogger) Fatal(msg string, fields ...zap.Field) {}
