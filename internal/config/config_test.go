package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FirstRunWritesDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Timezone != "Europe/London" {
		t.Errorf("default timezone = %q", cfg.Timezone)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file perms = %o, want 600", perm)
	}
}

func TestLoadSave_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:9999"
	cfg.Tokens = map[string]string{"k.thang19": "secret"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Listen != "127.0.0.1:9999" {
		t.Errorf("Listen = %q", loaded.Listen)
	}
	if loaded.Tokens["k.thang19"] != "secret" {
		t.Errorf("Tokens = %v", loaded.Tokens)
	}
	if len(loaded.Terms) != 3 {
		t.Errorf("Terms = %d, want default 3", len(loaded.Terms))
	}
}

func TestNormalize_FillsDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.Normalize()

	if cfg.Listen == "" || cfg.Timezone == "" || cfg.Anchor == "" || cfg.End == "" {
		t.Fatalf("Normalize left zero values: %+v", cfg)
	}
	if cfg.Tokens == nil {
		t.Fatal("Normalize must allocate the token map")
	}
}

func TestAcademicCalendar_Default(t *testing.T) {
	t.Parallel()

	cal, err := DefaultConfig().AcademicCalendar()
	if err != nil {
		t.Fatalf("AcademicCalendar() error = %v", err)
	}
	if cal.Anchor.Weekday() != time.Monday {
		t.Errorf("anchor weekday = %v, want Monday", cal.Anchor.Weekday())
	}
	if len(cal.Windows) != 3 {
		t.Errorf("windows = %d, want 3", len(cal.Windows))
	}
	if !cal.IsTeachingDay(cal.Windows[0].Start) {
		t.Error("first term start must be a teaching day")
	}
	if cal.IsTeachingDay(cal.Windows[0].Breaks[0].Start) {
		t.Error("half-term break start must not be a teaching day")
	}
}

func TestAcademicCalendar_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad_anchor_format", mutate: func(c *Config) { c.Anchor = "10/11/2025" }},
		{name: "bad_term_date", mutate: func(c *Config) { c.Terms[0].Start = "tomorrow" }},
		{name: "anchor_not_monday", mutate: func(c *Config) { c.Anchor = "2025-11-11" }},
		{
			name: "overlapping_terms",
			mutate: func(c *Config) {
				c.Terms[1].Start = "2025-12-01"
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if _, err := cfg.AcademicCalendar(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
