// Package logging adapts zap's sugared logger to core.Logger.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"propdesk/internal/core"
)

const redacted = "[REDACTED]"

// Zap implements core.Logger. Values under secret-looking keys are replaced
// before they reach the encoder.
type Zap struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*Zap)(nil)

// New builds a logger for mode ("development" or "production") at level.
func New(mode, level string) (*Zap, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "dev", "development":
		cfg = zap.NewDevelopmentConfig()
	case "", "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log mode %q", mode)
	}
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return Wrap(logger), nil
}

// Wrap adapts an existing zap logger.
func Wrap(logger *zap.Logger) *Zap {
	return &Zap{sugar: logger.Sugar()}
}

// Nop returns a logger that writes nothing.
func Nop() *Zap { return Wrap(zap.NewNop()) }

func (z *Zap) Debug(msg string, kv ...any) { z.sugar.Debugw(msg, redact(kv)...) }
func (z *Zap) Info(msg string, kv ...any)  { z.sugar.Infow(msg, redact(kv)...) }
func (z *Zap) Warn(msg string, kv ...any)  { z.sugar.Warnw(msg, redact(kv)...) }
func (z *Zap) Error(msg string, kv ...any) { z.sugar.Errorw(msg, redact(kv)...) }

// With returns a child logger carrying kv on every entry.
func (z *Zap) With(kv ...any) *Zap {
	return &Zap{sugar: z.sugar.With(redact(kv)...)}
}

// Sync flushes buffered entries.
func (z *Zap) Sync() error { return z.sugar.Sync() }

func redact(kv []any) []any {
	if len(kv) < 2 {
		return kv
	}
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if ok && secretKey(key) {
			out[i+1] = redacted
		}
	}
	return out
}

func secretKey(key string) bool {
	key = strings.ToLower(key)
	for _, marker := range []string{"api_key", "apikey", "token", "secret", "password", "authorization"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}
