package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWritesStageTaggedMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug")
	stageLogger := Stage(logger, "tilestats.Select")
	stageLogger.Info().Int("num_tiles", 3).Msg("selected candidate tiles")

	out := buf.String()
	if !strings.Contains(out, "tilestats.Select") {
		t.Fatalf("log output missing stage name: %q", out)
	}
	if !strings.Contains(out, "selected candidate tiles") {
		t.Fatalf("log output missing message: %q", out)
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "not-a-real-level")
	logger.Debug().Msg("should be suppressed at info level")
	if buf.Len() != 0 {
		t.Fatalf("expected debug message to be suppressed, got %q", buf.String())
	}
	logger.Info().Msg("should appear")
	if buf.Len() == 0 {
		t.Fatalf("expected info message to appear")
	}
}
