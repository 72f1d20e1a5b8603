package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (*Zap, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return Wrap(zap.New(core)), logs
}

func TestLevelsAndFields(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)
	log.Debug("d", "operation", "add_risk")
	log.Info("i")
	log.Warn("w", "rule", "budget_balance")
	log.Error("e", "error", "boom")
	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].ContextMap()["operation"] != "add_risk" || entries[2].Level != zapcore.WarnLevel {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestRedactsSecrets(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)
	kv := []any{"api_key", "abc", "Authorization", "Bearer x", "field", "title"}
	log.Info("assist", kv...)
	fields := logs.All()[0].ContextMap()
	if fields["api_key"] != redacted || fields["Authorization"] != redacted || fields["field"] != "title" {
		t.Fatalf("unexpected fields %+v", fields)
	}
	if kv[1] != "abc" {
		t.Fatal("caller slice must not be modified")
	}
	log.With("access_token", "t").Info("child")
	if logs.All()[1].ContextMap()["access_token"] != redacted {
		t.Fatal("expected With fields redacted")
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"development", "production", ""} {
		l, err := New(mode, "warn")
		if err != nil {
			t.Fatalf("mode %q: %v", mode, err)
		}
		l.Info("suppressed")
	}
	if _, err := New("verbose", ""); err == nil {
		t.Fatal("expected unknown mode error")
	}
	if _, err := New("production", "loud"); err == nil {
		t.Fatal("expected bad level error")
	}
	Nop().Error("nothing")
}
