package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

// Init configures the global logger. Production gets JSON output at info
// level, everything else gets the console encoder at debug.
func Init(environment string) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	sugar = l.Sugar()
}

// ensure callers that log before Init still work (tests, early failures)
func logger() *zap.SugaredLogger {
	if sugar == nil {
		l, _ := zap.NewDevelopment(zap.AddCallerSkip(1))
		sugar = l.Sugar()
	}
	return sugar
}

// normalize lets call sites pass either key/value pairs or a single trailing
// error value.
func normalize(args []any) []any {
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			return []any{"error", err}
		}
		return []any{"detail", args[0]}
	}
	return args
}

func Info(msg string, args ...any) {
	logger().Infow(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	logger().Warnw(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	logger().Errorw(msg, normalize(args)...)
}

func Fatal(msg string, args ...any) {
	logger().Fatalw(msg, normalize(args)...)
}

// Sync flushes buffered log entries; call on shutdown.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
