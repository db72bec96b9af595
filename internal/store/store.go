// Package store owns the on-disk artifact layout: one directory per user
// holding the week CSVs, the combined timetable JSON and the generated
// calendar, plus timestamped archives of previous artifacts.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	appLog "ttcal/internal/log"
)

const archiveDirName = "archive"

// Store manages per-user artifacts under a single root directory:
//
//	<root>/<user>/week_a.csv
//	<root>/<user>/week_b.csv
//	<root>/<user>/<user>.json
//	<root>/<user>/<user>.ics
//	<root>/archive/<user>/<version>/...
type Store struct {
	root string
}

// New creates a Store rooted at dir. The directory is created lazily on
// first write.
func New(dir string) *Store {
	if dir == "" {
		dir = "./users"
	}
	return &Store{root: dir}
}

func (s *Store) Root() string { return s.root }

// UserDir returns the artifact directory for one user.
func (s *Store) UserDir(user string) string {
	return filepath.Join(s.root, user)
}

// TimetablePath is the combined timetable JSON for one user.
func (s *Store) TimetablePath(user string) string {
	return filepath.Join(s.UserDir(user), user+".json")
}

// CalendarPath is the generated calendar document for one user.
func (s *Store) CalendarPath(user string) string {
	return filepath.Join(s.UserDir(user), user+".ics")
}

// WeekCSVPath is the raw per-week CSV ("a" or "b") for one user.
func (s *Store) WeekCSVPath(user, week string) string {
	return filepath.Join(s.UserDir(user), "week_"+week+".csv")
}

// ReadTimetable loads the user's combined timetable JSON.
func (s *Store) ReadTimetable(user string) ([]byte, error) {
	return os.ReadFile(s.TimetablePath(user))
}

// WriteTimetable writes the user's combined timetable JSON atomically.
func (s *Store) WriteTimetable(user string, data []byte) error {
	return writeFileAtomic(s.TimetablePath(user), data)
}

// WriteCalendar writes the user's calendar document atomically, so readers
// (including the HTTP server) never observe a partial file.
func (s *Store) WriteCalendar(user string, doc []byte) error {
	return writeFileAtomic(s.CalendarPath(user), doc)
}

// ListUsers returns the usernames with an artifact directory, sorted.
func (s *Store) ListUsers() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	users := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || e.Name() == archiveDirName {
			continue
		}
		users = append(users, e.Name())
	}
	sort.Strings(users)
	return users, nil
}

// Archive snapshots the user's current artifacts into a timestamped
// directory before they are regenerated. Missing artifacts are skipped;
// the version label is returned even when nothing was copied.
func (s *Store) Archive(user string, now time.Time) (string, error) {
	version := now.UTC().Format("2006-01-02T15-04-05Z")
	dst := filepath.Join(s.root, archiveDirName, user, version)

	names := []string{
		user + ".json",
		user + ".ics",
		"week_a.csv",
		"week_b.csv",
	}

	copied := 0
	for _, name := range names {
		src := filepath.Join(s.UserDir(user), name)
		data, err := os.ReadFile(src)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return version, fmt.Errorf("store: archive %s: %w", src, err)
		}
		if err := writeFileAtomic(filepath.Join(dst, name), data); err != nil {
			return version, err
		}
		copied++
	}

	appLog.Info("archived user artifacts", "user", user, "version", version, "files", copied)
	return version, nil
}

// DottedUsername ensures there is a dot after the first character of the
// base name, the canonical account form (e.g. "kthang19" -> "k.thang19").
func DottedUsername(name string) string {
	if len(name) < 2 || name[1] == '.' {
		return name
	}
	return name[:1] + "." + name[1:]
}

// writeFileAtomic writes data via a temp file + rename with 0600 perms,
// creating parent directories as needed.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ttcal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
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
	return os.Rename(tmpName, path)
}
