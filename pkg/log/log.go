package log

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the context-aware logging interface used across the service.
// Context is accepted on every call so request-scoped fields can be attached
// later without changing call sites.
type Logger interface {
	Debug(ctx context.Context, arg ...any)
	Debugf(ctx context.Context, template string, arg ...any)
	Info(ctx context.Context, arg ...any)
	Infof(ctx context.Context, template string, arg ...any)
	Warn(ctx context.Context, arg ...any)
	Warnf(ctx context.Context, template string, arg ...any)
	Error(ctx context.Context, arg ...any)
	Errorf(ctx context.Context, template string, arg ...any)
	Fatal(ctx context.Context, arg ...any)
	Fatalf(ctx context.Context, template string, arg ...any)
	DPanic(ctx context.Context, arg ...any)
	DPanicf(ctx context.Context, template string, arg ...any)
	Panic(ctx context.Context, arg ...any)
	Panicf(ctx context.Context, template string, arg ...any)
}

// ZapConfig configures the zap-backed logger.
type ZapConfig struct {
	Level        string // debug, info, warn, error
	Mode         string // development or production
	Encoding     string // console or json
	ColorEnabled bool
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// Init builds the process logger from config. Invalid settings fall back to
// production JSON at info level rather than failing startup.
func Init(cfg ZapConfig) Logger {
	level := zapcore.InfoLevel
	if l, err := zapcore.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
		level = l
	}

	var zcfg zap.Config
	if strings.ToLower(cfg.Mode) == "development" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	switch strings.ToLower(cfg.Encoding) {
	case "console":
		zcfg.Encoding = "console"
		if cfg.ColorEnabled {
			zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	case "json":
		zcfg.Encoding = "json"
	}

	logger, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger, _ = zap.NewProduction(zap.AddCallerSkip(1))
	}

	return &zapLogger{sugar: logger.Sugar()}
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func (z *zapLogger) Debug(ctx context.Context, arg ...any) { z.sugar.Debug(arg...) }
func (z *zapLogger) Debugf(ctx context.Context, template string, arg ...any) {
	z.sugar.Debugf(template, arg...)
}
func (z *zapLogger) Info(ctx context.Context, arg ...any) { z.sugar.Info(arg...) }
func (z *zapLogger) Infof(ctx context.Context, template string, arg ...any) {
	z.sugar.Infof(template, arg...)
}
func (z *zapLogger) Warn(ctx context.Context, arg ...any) { z.sugar.Warn(arg...) }
func (z *zapLogger) Warnf(ctx context.Context, template string, arg ...any) {
	z.sugar.Warnf(template, arg...)
}
func (z *zapLogger) Error(ctx context.Context, arg ...any) { z.sugar.Error(arg...) }
func (z *zapLogger) Errorf(ctx context.Context, template string, arg ...any) {
	z.sugar.Errorf(template, arg...)
}
func (z *zapLogger) Fatal(ctx context.Context, arg ...any) { z.sugar.Fatal(arg...) }
func (z *zapLogger) Fatalf(ctx context.Context, template string, arg ...any) {
	z.sugar.Fatalf(template, arg...)
}
func (z *zapLogger) DPanic(ctx context.Context, arg ...any) { z.sugar.DPanic(arg...) }
func (z *zapLogger) DPanicf(ctx context.Context, template string, arg ...any) {
	z.sugar.DPanicf(template, arg...)
}
func (z *zapLogger) Panic(ctx context.Context, arg ...any) { z.sugar.Panic(arg...) }
func (z *zapLogger) Panicf(ctx context.Context, template string, arg ...any) {
	z.sugar.Panicf(template, arg...)
}
