// statusline prints one dzen2/lemonbar line per second describing i3
// workspaces, the time, network throughput, per-core CPU load and memory use.
//
//	statusline | dzen2 -ta l
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dicklesworthstone/statusline/internal/bar"
	"github.com/Dicklesworthstone/statusline/internal/config"
	"github.com/Dicklesworthstone/statusline/internal/format"
	"github.com/Dicklesworthstone/statusline/internal/logging"
	"github.com/Dicklesworthstone/statusline/internal/markup"
	"github.com/Dicklesworthstone/statusline/internal/mirror"
	"github.com/Dicklesworthstone/statusline/internal/sampler"
	"github.com/Dicklesworthstone/statusline/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "statusline: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	// The preview owns the terminal; its logs only go to the file.
	var console io.Writer = os.Stderr
	if cfg.Preview {
		console = nil
	}
	logCloser, err := logging.Setup(console, cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	defer logCloser.Close()

	dialect, err := markup.ByName(cfg.Dialect)
	if err != nil {
		return err
	}
	locale := format.LocaleFromEnv(os.Getenv)
	if cfg.Locale != "" {
		locale = format.LookupLocale(cfg.Locale)
	}
	units := format.SI()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := &bar.Loop{
		Source: sampler.New(cfg.QueryTimeout),
		Renderer: bar.Renderer{
			Dialect: dialect,
			Workspaces: format.Workspaces{
				Dialect:       dialect,
				FocusedBG:     cfg.FocusedBG,
				UrgentFG:      cfg.UrgentFG,
				SwitchCommand: cfg.SwitchCommand,
			},
			Clock:     format.Clock{Locale: locale},
			Metrics:   format.Metrics{Units: units, Placeholder: cfg.Placeholder},
			Separator: cfg.Separator,
		},
		Out:      os.Stdout,
		Interval: cfg.Interval,
		Log:      slog.Default(),
	}
	slog.Info("starting statusline",
		"interval", cfg.Interval,
		"dialect", dialect.Name(),
		"locale", locale.Name,
		"preview", cfg.Preview,
		"mirror", cfg.MirrorAddr,
	)

	if cfg.MirrorAddr != "" {
		m := mirror.New(slog.Default())
		loop.Sinks = append(loop.Sinks, m)
		go func() {
			if err := m.Serve(ctx, cfg.MirrorAddr); err != nil {
				slog.Error("mirror stopped", "err", err)
			}
		}()
	}

	if !cfg.Preview {
		err = loop.Run(ctx)
		slog.Info("statusline stopped", "err", err)
		return err
	}

	stream := ui.NewStream()
	loop.Sinks = append(loop.Sinks, stream)
	loop.Out = io.Discard
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()
	if err := ui.RunTUI(stream.Frames(), cancel, units); err != nil {
		return err
	}
	cancel()
	return <-loopErr
}
