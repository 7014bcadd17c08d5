package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info().Msg("hidden")
	Warn().Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn message should be logged at warn level")
	}
}

func TestInitInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "chatty", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Debug().Msg("debug line")
	Info().Msg("info line")

	out := buf.String()
	if strings.Contains(out, "debug line") {
		t.Error("debug should be filtered when level falls back to info")
	}
	if !strings.Contains(out, "info line") {
		t.Error("info should be logged when level falls back to info")
	}
}

func TestWithRun(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	WithRun("run-123")
	Info().Msg("tagged")

	if !strings.Contains(buf.String(), `"run_id":"run-123"`) {
		t.Errorf("expected run_id field in output, got: %s", buf.String())
	}
}

func TestProgressReporter(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	p := NewProgressReporter("fact_sales", 100, 10)
	for i := 0; i < 25; i++ {
		p.Update(1)
	}

	if p.Current() != 25 {
		t.Errorf("Current() = %d, want 25", p.Current())
	}
	if got := strings.Count(buf.String(), "Processing rows"); got != 2 {
		t.Errorf("expected 2 progress lines, got %d", got)
	}
}

func TestProgressReporterDisabled(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	p := NewProgressReporter("dim_time", 0, 0)
	p.Update(1000)

	if buf.Len() != 0 {
		t.Errorf("expected no output with interval 0, got: %s", buf.String())
	}
}
