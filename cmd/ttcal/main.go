package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"ttcal/internal/config"
	"ttcal/internal/ics"
	"ttcal/internal/ingest"
	appLog "ttcal/internal/log"
	"ttcal/internal/store"
	"ttcal/internal/timetable"
	"ttcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	user       string
	all        bool
	fromCSV    bool
	serve      bool
}

func main() {
	appLog.Info("ttcal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	// The academic calendar is validated up front: a non-Monday anchor or
	// overlapping term windows abort before any user is processed.
	cal, err := conf.AcademicCalendar()
	if err != nil {
		appLog.Error("invalid academic calendar", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	compiler, err := ics.NewCompiler(cal, conf.Timezone, conf.CalendarName)
	if err != nil {
		appLog.Error("failed to construct compiler", err)
		os.Exit(1)
	}

	st := store.New(conf.UsersDir)

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"users_dir", conf.UsersDir,
		"anchor", conf.Anchor,
		"end", conf.End,
		"terms", len(conf.Terms),
		"refresh", conf.RefreshCron,
		"serve", flags.serve,
	)

	if flags.serve {
		if err := runServe(conf, st, compiler); err != nil {
			appLog.Error("serve mode failed", err)
			os.Exit(1)
		}
		appLog.Info("ttcal exiting")
		return
	}

	users, err := selectUsers(st, flags)
	if err != nil {
		appLog.Error("no users to process", err)
		os.Exit(1)
	}

	failed := false
	for _, user := range users {
		if err := generateUser(st, compiler, user, flags.fromCSV); err != nil {
			appLog.Error("generation failed", err, "user", user)
			failed = true
		}
	}
	if failed {
		os.Exit(2)
	}
	appLog.Info("ttcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.user, "user", "", "Generate the calendar for a single user")
	flag.BoolVar(&cfg.all, "all", false, "Generate calendars for every user in the store")
	flag.BoolVar(&cfg.fromCSV, "from-csv", false, "Merge week_a.csv/week_b.csv into the timetable JSON first")
	flag.BoolVar(&cfg.serve, "serve", false, "Run the HTTP server and cron-driven regeneration")

	flag.Parse()

	return cfg
}

func selectUsers(st *store.Store, flags flagConfig) ([]string, error) {
	if flags.user != "" {
		return []string{store.DottedUsername(flags.user)}, nil
	}
	if flags.all {
		users, err := st.ListUsers()
		if err != nil {
			return nil, err
		}
		if len(users) == 0 {
			return nil, fmt.Errorf("no user directories under %s", st.Root())
		}
		return users, nil
	}
	return nil, fmt.Errorf("pass -user <name>, -all, or -serve")
}

// generateUser runs the full pipeline for one user: optional CSV merge,
// validation, compilation, verification, archive, write. Any error-class
// validation issue aborts before anything is written.
func generateUser(st *store.Store, compiler *ics.Compiler, user string, fromCSV bool) error {
	if fromCSV {
		if err := ingest.BuildTimetable(st, user); err != nil {
			return err
		}
	}

	data, err := st.ReadTimetable(user)
	if err != nil {
		return fmt.Errorf("read timetable: %w", err)
	}

	tt, issues, err := timetable.Decode(data)
	if err != nil {
		return err
	}
	for _, iss := range issues {
		if iss.Severity == timetable.SeverityWarning {
			appLog.Warn("timetable validation warning", "user", user, "issue", iss.String())
		} else {
			appLog.Error("timetable validation error", fmt.Errorf("%s", iss.String()), "user", user)
		}
	}
	if issues.HasErrors() {
		return fmt.Errorf("timetable has validation errors; no calendar written")
	}

	now := time.Now()
	doc, err := compiler.Compile(tt, now.UTC())
	if err != nil {
		return err
	}

	events, err := ics.Verify(doc)
	if err != nil {
		return fmt.Errorf("compiled document failed verification: %w", err)
	}

	if _, err := st.Archive(user, now); err != nil {
		return err
	}
	if err := st.WriteCalendar(user, []byte(doc)); err != nil {
		return err
	}

	appLog.Info("calendar written",
		"user", user,
		"path", st.CalendarPath(user),
		"events", events,
	)
	return nil
}

// runServe regenerates every user's calendar on the configured cron
// schedule and serves the artifacts over HTTP until SIGINT/SIGTERM.
func runServe(conf *config.Config, st *store.Store, compiler *ics.Compiler) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	regenerate := func() {
		users, err := st.ListUsers()
		if err != nil {
			appLog.Error("failed to list users", err)
			return
		}
		for _, user := range users {
			if err := generateUser(st, compiler, user, false); err != nil {
				appLog.Error("scheduled generation failed", err, "user", user)
			}
		}
	}

	// One pass at startup so fresh deployments serve something immediately.
	regenerate()

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, regenerate); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", conf.RefreshCron, err)
	}
	c.Start()
	defer c.Stop()

	return web.StartServer(ctx, conf, st)
}
