package logger

import (
	"context"
	"os"

	"github.com/prasetyowira/qrstudio/constant"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

type ctxKey string

const requestIDKey ctxKey = constant.RequestIDKey

// LoggerInfo contains structured logging information
type LoggerInfo struct {
	ContextFunction string
	Error           *CustomError
	Data            map[string]interface{}
}

// CustomError represents a structured error for logging
type CustomError struct {
	Code    string
	Message string
	Type    string
}

// Initialize sets up the logger
func Initialize(isProduction bool) {
	logLevel := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	if isProduction {
		logLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        constant.LogTimeKey,
		LevelKey:       constant.LogLevelKey,
		NameKey:        constant.LogNameKey,
		CallerKey:      constant.LogCallerKey,
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     constant.LogMessageKey,
		StacktraceKey:  constant.LogStacktraceKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	config := zap.Config{
		Level:            logLevel,
		Development:      !isProduction,
		Encoding:         constant.LogEncodingConsole,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{constant.LogOutputStdout},
		ErrorOutputPaths: []string{constant.LogOutputStderr},
	}
	if isProduction {
		config.Encoding = constant.LogEncodingJSON
		config.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	}

	built, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger = built
}

// Use replaces the package logger. Passing nil silences logging.
func Use(l *zap.Logger) {
	logger = l
}

// Close ensures logger syncs before shutdown
func Close() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func createFields(ctx context.Context, info LoggerInfo) []zap.Field {
	fields := make([]zap.Field, 0, 5+len(info.Data))

	if requestID := RequestID(ctx); requestID != "" {
		fields = append(fields, zap.String(constant.LogRequestIDKey, requestID))
	}

	if info.ContextFunction != "" {
		fields = append(fields, zap.String(constant.LogFunctionKey, info.ContextFunction))
	}

	if info.Error != nil {
		fields = append(fields,
			zap.String(constant.LogErrorCodeKey, info.Error.Code),
			zap.String(constant.LogErrorTypeKey, info.Error.Type),
			zap.String(constant.LogErrorMessageKey, info.Error.Message),
		)
	}

	for k, v := range info.Data {
		fields = append(fields, zap.Any(k, v))
	}

	return fields
}

// Debug logs a debug message
func Debug(msg string, info LoggerInfo) {
	CtxDebug(nil, msg, info)
}

// Info logs an info message
func Info(msg string, info LoggerInfo) {
	CtxInfo(nil, msg, info)
}

// Error logs an error message
func Error(msg string, info LoggerInfo) {
	CtxError(nil, msg, info)
}

func CtxDebug(ctx context.Context, msg string, info LoggerInfo) {
	if logger == nil {
		return
	}
	logger.Debug(msg, createFields(ctx, info)...)
}

func CtxInfo(ctx context.Context, msg string, info LoggerInfo) {
	if logger == nil {
		return
	}
	logger.Info(msg, createFields(ctx, info)...)
}

func CtxWarn(ctx context.Context, msg string, info LoggerInfo) {
	if logger == nil {
		return
	}
	logger.Warn(msg, createFields(ctx, info)...)
}

func CtxError(ctx context.Context, msg string, info LoggerInfo) {
	if logger == nil {
		return
	}
	logger.Error(msg, createFields(ctx, info)...)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if reqID, ok := ctx.Value(requestIDKey).(string); ok {
		return reqID
	}
	return ""
}
