package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrSwitchCommand rejects a click action that does not take exactly one
// workspace number.
var ErrSwitchCommand = errors.New("switch-command must contain exactly one %d")

// Config carries runtime options for statusline.
type Config struct {
	Interval      time.Duration
	QueryTimeout  time.Duration
	Dialect       string
	Locale        string
	Separator     string
	Placeholder   string
	FocusedBG     string
	UrgentFG      string
	SwitchCommand string
	LogFile       string
	LogLevel      string
	Preview       bool
	MirrorAddr    string
}

func Default() Config {
	return Config{
		Interval:      time.Second,
		QueryTimeout:  500 * time.Millisecond,
		Dialect:       "dzen2",
		Locale:        "",
		Separator:     " | ",
		Placeholder:   "--",
		FocusedBG:     "#285577",
		UrgentFG:      "#ff5555",
		SwitchCommand: "i3-msg workspace number %d",
		LogFile:       defaultLogFile(os.Getenv),
		LogLevel:      "info",
		Preview:       false,
		MirrorAddr:    "",
	}
}

func defaultLogFile(getenv func(string) string) string {
	dir := getenv("XDG_STATE_HOME")
	if dir == "" {
		home := getenv("HOME")
		if home == "" {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "statusline", "statusline.log")
}

// FromFlags parses flags and environment overrides. Environment variables
// win over defaults but not over explicit flags.
func FromFlags(args []string) (Config, error) {
	return parse(args, os.Getenv, os.Stderr)
}

func parse(args []string, getenv func(string) string, usage io.Writer) (Config, error) {
	cfg := Default()
	cfg.LogFile = defaultLogFile(getenv)

	if v := getenv("STATUSLINE_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Interval = parsed
		} else if parsed, err2 := time.ParseDuration(v + "s"); err2 == nil {
			cfg.Interval = parsed
		}
	}
	if v := getenv("STATUSLINE_DIALECT"); v != "" {
		cfg.Dialect = v
	}
	if v := getenv("STATUSLINE_LOCALE"); v != "" {
		cfg.Locale = v
	}

	fs := flag.NewFlagSet("statusline", flag.ContinueOnError)
	fs.SetOutput(usage)
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "refresh interval")
	fs.DurationVar(&cfg.QueryTimeout, "query-timeout", cfg.QueryTimeout, "bound on each external read")
	fs.StringVar(&cfg.Dialect, "dialect", cfg.Dialect, "markup dialect: dzen2|lemonbar|term|plain")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "time locale, e.g. ru_RU (default from LC_ALL/LC_TIME/LANG)")
	fs.StringVar(&cfg.Separator, "separator", cfg.Separator, "separator between right-hand segments")
	fs.StringVar(&cfg.Placeholder, "placeholder", cfg.Placeholder, "text shown for an unavailable metric")
	fs.StringVar(&cfg.FocusedBG, "focused-bg", cfg.FocusedBG, "background colour of the focused workspace")
	fs.StringVar(&cfg.UrgentFG, "urgent-fg", cfg.UrgentFG, "foreground colour of urgent workspaces")
	fs.StringVar(&cfg.SwitchCommand, "switch-command", cfg.SwitchCommand, "click action, %d is the workspace number")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "rotating log file (empty disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	fs.BoolVar(&cfg.Preview, "preview", cfg.Preview, "show a live terminal preview instead of writing to stdout")
	fs.StringVar(&cfg.MirrorAddr, "mirror", cfg.MirrorAddr, "serve the current line over HTTP on this address, e.g. 127.0.0.1:7777")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if err := validSwitchCommand(cfg.SwitchCommand); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validSwitchCommand accepts literal %% but no verb other than a single %d.
func validSwitchCommand(cmd string) error {
	rest := strings.ReplaceAll(cmd, "%%", "")
	if strings.Count(rest, "%d") != 1 || strings.Count(rest, "%") != 1 {
		return fmt.Errorf("%w: %q", ErrSwitchCommand, cmd)
	}
	return nil
}
