package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown", "list_id", "l1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line must be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "l1") {
		t.Errorf("expected warn line with attrs, got %q", out)
	}
}
