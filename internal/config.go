package internal

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/labjournal/internal/journal"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Journal JournalConfig     `yaml:"journal"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Journal.Validate(); err != nil {
		return err
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// NewLogger builds a logger writing to w in the configured format.
func (c *ApplicationConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// JournalConfig names the well-known entries of a journal.
type JournalConfig struct {
	DirName     string `yaml:"dir_name"`
	IndexFile   string `yaml:"index_file"`
	SummaryFile string `yaml:"summary_file"`
}

// Validate validates the journal configuration.
func (c *JournalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DirName, validation.Required, validation.By(plainName)),
		validation.Field(&c.IndexFile, validation.Required, validation.By(plainName)),
		validation.Field(&c.SummaryFile, validation.Required, validation.By(plainName)),
	)
}

// Layout converts the configuration into a journal layout.
func (c *JournalConfig) Layout() journal.Layout {
	return journal.Layout{
		DirName:     c.DirName,
		IndexFile:   c.IndexFile,
		SummaryFile: c.SummaryFile,
	}
}

// WatchConfig holds watch mode configuration.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

func plainName(value any) error {
	s, _ := value.(string)
	if s != filepath.Base(s) || s == "." || s == ".." {
		return errors.New("must be a plain file name")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	layout := journal.DefaultLayout()
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
		},
		Journal: JournalConfig{
			DirName:     layout.DirName,
			IndexFile:   layout.IndexFile,
			SummaryFile: layout.SummaryFile,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}
