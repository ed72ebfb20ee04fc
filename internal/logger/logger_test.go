package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"verbose": defaultZapLevel,
		"":        defaultZapLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Fatalf("toZapLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	core := newCore(Options{Level: InfoLevel, Format: "JSON"}, zapcore.AddSync(&buf))
	log := &Logger{SugaredLogger: zap.New(core).Sugar()}

	log.Named("scheduler").Infow("scheduler_check_done", "status", "ACCESA")
	log.Debugw("dropped_below_level")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["msg"] != "scheduler_check_done" || entry["status"] != "ACCESA" || entry["logger"] != "scheduler" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestConsoleFormatDefault(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	core := newCore(Options{Level: WarnLevel}, zapcore.AddSync(&buf))
	log := &Logger{SugaredLogger: zap.New(core).Sugar()}

	log.Warnw("mqtt_connect_failed", "broker", "tcp://localhost:1883")
	out := buf.String()
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "mqtt_connect_failed") {
		t.Fatalf("unexpected console output: %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("console format must not be JSON: %q", out)
	}
}
