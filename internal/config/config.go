package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"ttcal/internal/term"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

const dateLayout = "2006-01-02"

// SpanConfig is an inclusive date range in "YYYY-MM-DD" form.
type SpanConfig struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// TermConfig describes one teaching term and its half-term breaks.
type TermConfig struct {
	Start  string       `yaml:"start" json:"start"`
	End    string       `yaml:"end" json:"end"`
	Breaks []SpanConfig `yaml:"breaks,omitempty" json:"breaks,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone applied to event timestamps (e.g. "Europe/London").
	Timezone string `yaml:"timezone" json:"timezone"`

	// CalendarName is the display name embedded in the PRODID header.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`

	// RefreshCron is a cron-style schedule (e.g. "0 6 * * *") on which
	// serve mode regenerates every user's calendar.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// UsersDir is the root of the per-user artifact tree.
	UsersDir string `yaml:"users_dir" json:"users_dir"`

	// Anchor is the academic start date; always a Monday belonging to Week A.
	Anchor string `yaml:"anchor" json:"anchor"`

	// End bounds event generation (inclusive).
	End string `yaml:"end" json:"end"`

	// Terms lists the teaching terms with their nested break ranges.
	Terms []TermConfig `yaml:"terms" json:"terms"`

	// Tokens maps a username to the bearer token gating that user's
	// calendar over HTTP. Users without an entry are served unauthenticated.
	Tokens map[string]string `yaml:"tokens,omitempty" json:"tokens,omitempty"`
}

// DefaultConfig returns an in-memory default configuration covering the
// 2025-26 academic year.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		Timezone:     "Europe/London",
		CalendarName: "School Timetable 2025-26",
		RefreshCron:  "0 6 * * *",
		UsersDir:     "./users",
		Anchor:       "2025-11-10",
		End:          "2026-07-08",
		Terms: []TermConfig{
			{Start: "2025-09-04", End: "2025-12-16", Breaks: []SpanConfig{{Start: "2025-10-20", End: "2025-10-31"}}},
			{Start: "2026-01-08", End: "2026-03-27", Breaks: []SpanConfig{{Start: "2026-02-16", End: "2026-02-20"}}},
			{Start: "2026-04-21", End: "2026-07-08", Breaks: []SpanConfig{{Start: "2026-05-25", End: "2026-05-29"}}},
		},
		Tokens: map[string]string{},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.CalendarName == "" {
		c.CalendarName = def.CalendarName
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.UsersDir == "" {
		c.UsersDir = def.UsersDir
	}
	if c.Anchor == "" {
		c.Anchor = def.Anchor
	}
	if c.End == "" {
		c.End = def.End
	}
	if c.Terms == nil {
		c.Terms = def.Terms
	}
	if c.Tokens == nil {
		c.Tokens = map[string]string{}
	}
}

// AcademicCalendar builds the validated term calendar from the configured
// dates. Overlapping term windows or a non-Monday anchor are rejected here,
// at load time, never resolved silently later.
func (c *Config) AcademicCalendar() (term.Calendar, error) {
	var cal term.Calendar
	var err error

	if cal.Anchor, err = parseDate(c.Anchor); err != nil {
		return term.Calendar{}, fmt.Errorf("config: anchor: %w", err)
	}
	if cal.End, err = parseDate(c.End); err != nil {
		return term.Calendar{}, fmt.Errorf("config: end: %w", err)
	}

	for i, tc := range c.Terms {
		var w term.Window
		if w.Start, err = parseDate(tc.Start); err != nil {
			return term.Calendar{}, fmt.Errorf("config: term %d start: %w", i, err)
		}
		if w.End, err = parseDate(tc.End); err != nil {
			return term.Calendar{}, fmt.Errorf("config: term %d end: %w", i, err)
		}
		for j, bc := range tc.Breaks {
			var b term.Span
			if b.Start, err = parseDate(bc.Start); err != nil {
				return term.Calendar{}, fmt.Errorf("config: term %d break %d start: %w", i, j, err)
			}
			if b.End, err = parseDate(bc.End); err != nil {
				return term.Calendar{}, fmt.Errorf("config: term %d break %d end: %w", i, j, err)
			}
			w.Breaks = append(w.Breaks, b)
		}
		cal.Windows = append(cal.Windows, w)
	}

	if err := cal.Validate(); err != nil {
		return term.Calendar{}, err
	}
	return cal, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return term.Midnight(t), nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".ttcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
