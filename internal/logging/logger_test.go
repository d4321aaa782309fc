package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentAPI, Output: &buf})

	l.Debug("request", FieldMethod, "GET")

	out := buf.String()
	if !strings.Contains(out, "component=api") {
		t.Errorf("missing component in %q", out)
	}
	if !strings.Contains(out, "method=GET") {
		t.Errorf("missing method in %q", out)
	}
}

func TestWithComponentDoesNotDuplicate(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentCLI, Output: &buf}).WithComponent(ComponentDaemon)

	l.Info("poll")

	out := buf.String()
	if strings.Count(out, "component=") != 1 {
		t.Errorf("expected exactly one component attr, got %q", out)
	}
	if !strings.Contains(out, "component=daemon") {
		t.Errorf("wrong component in %q", out)
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Component: ComponentCLI, Output: &buf})

	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn should pass, got %q", buf.String())
	}
}
