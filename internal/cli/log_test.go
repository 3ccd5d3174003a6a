package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("expanded document") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("set frame") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("set frame") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("override skipped") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			out := buf.String()
			if got := out != ""; got != tt.wantLog {
				t.Fatalf("logged = %v, want %v (output %q)", got, tt.wantLog, out)
			}
			if tt.wantLog && !strings.Contains(out, appName) {
				t.Errorf("output %q lacks the %s prefix", out, appName)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Resized %s to %gx%g", "ok", 120.0, 20.0)

	out := buf.String()
	for _, want := range []string{"Resized ok to 120x20", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q, want it to contain %q", out, want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	attached := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(withLogger(context.Background(), attached)); got != attached {
		t.Errorf("loggerFromContext() = %p, want the attached logger %p", got, attached)
	}

	fallback := loggerFromContext(context.Background())
	if fallback == nil || fallback == log.Default() {
		t.Errorf("loggerFromContext() without a logger = %p, want a discarding logger", fallback)
	}
}
