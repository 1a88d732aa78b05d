package internal

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/labjournal/internal/journal"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if diff := cmp.Diff(journal.DefaultLayout(), cfg.Journal.Layout()); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestApplicationConfig_EmptyFormatDefaultsText(t *testing.T) {
	cfg := ApplicationConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty format should default: %v", err)
	}
	if cfg.LogFormat != LogFormatText {
		t.Errorf("format = %q, want %q", cfg.LogFormat, LogFormatText)
	}
}

func TestApplicationConfig_InvalidFormat(t *testing.T) {
	cfg := ApplicationConfig{LogFormat: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid format should fail validation")
	}
}

func TestApplicationConfig_JSONLogger(t *testing.T) {
	cfg := ApplicationConfig{LogLevel: slog.LevelWarn, LogFormat: LogFormatJSON}
	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("id", "001"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "shown" || rec["id"] != "001" {
		t.Errorf("record = %v", rec)
	}
}

func TestJournalConfig_RejectsPaths(t *testing.T) {
	cases := []JournalConfig{
		{DirName: "", IndexFile: "index.json", SummaryFile: "summary.md"},
		{DirName: "lab-journal", IndexFile: "../index.json", SummaryFile: "summary.md"},
		{DirName: "a/b", IndexFile: "index.json", SummaryFile: "summary.md"},
		{DirName: "lab-journal", IndexFile: "index.json", SummaryFile: ".."},
	}
	for _, c := range cases {
		if err := c.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", c)
		}
	}
}

func TestWatchConfig_NegativeDebounce(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Watch.Debounce = -time.Second
	err := cfg.Validate()
	if err == nil {
		t.Fatal("negative debounce should fail")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "debounce") {
		t.Errorf("unexpected error: %v", err)
	}
}
