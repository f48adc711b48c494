// Package bar drives the poll cycle: sample, diff, format, compose, emit.
package bar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Dicklesworthstone/statusline/internal/delta"
	"github.com/Dicklesworthstone/statusline/internal/format"
	"github.com/Dicklesworthstone/statusline/internal/markup"
	"github.com/Dicklesworthstone/statusline/internal/model"
)

// Source takes one raw reading of every metric.
type Source interface {
	Sample(ctx context.Context, now time.Time) model.Sample
}

// Sink receives every frame after it was written. Publish must not block.
type Sink interface {
	Publish(model.Frame)
}

// Renderer turns one cycle's values into segments and a line.
type Renderer struct {
	Dialect    markup.Dialect
	Workspaces format.Workspaces
	Clock      format.Clock
	Metrics    format.Metrics
	Separator  string
}

func (r Renderer) Render(workspaces []model.Workspace, at time.Time, rd model.Readings) (model.Segments, string) {
	rx, tx := r.Metrics.Rates(rd)
	seg := model.Segments{
		Workspaces: r.Workspaces.Format(workspaces),
		Time:       r.Clock.Format(at),
		Right: []string{
			"rx " + rx,
			"tx " + tx,
			"cpu " + r.Metrics.CPU(rd),
			"mem " + r.Metrics.Memory(rd),
		},
	}
	return seg, Compose(r.Dialect, seg.Workspaces, seg.Time, seg.Right, r.Separator)
}

// Loop owns the poll state. The first cycle bootstraps it and emits a line
// with zero rates; every later cycle diffs against it.
type Loop struct {
	Source   Source
	Renderer Renderer
	Out      io.Writer
	Sinks    []Sink
	Interval time.Duration
	Now      func() time.Time
	Log      *slog.Logger

	state   *delta.PollState
	failing map[string]bool
}

// Run emits a line every Interval until ctx is done. It only returns early
// when Out can no longer be written to.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = time.Second
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		if _, err := l.Cycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		timer.Reset(interval)
	}
}

// Cycle runs one full iteration and returns the frame it wrote.
func (l *Loop) Cycle(ctx context.Context) (model.Frame, error) {
	now := l.now()
	s := l.Source.Sample(ctx, now)
	if err := ctx.Err(); err != nil {
		return model.Frame{}, err
	}
	l.report(s)

	var rd model.Readings
	if l.state == nil {
		l.state, rd = delta.NewPollState(s)
		l.logger().Debug("bootstrapped poll state", "cores", len(s.CPU), "interfaces", len(s.Traffic))
	} else {
		rd = l.state.Advance(s)
	}

	seg, line := l.Renderer.Render(s.Workspaces, s.At, rd)
	frame := model.Frame{At: s.At, Line: line, Segments: seg, Workspaces: s.Workspaces, Readings: rd}

	// One Write per line so a reader never sees half of one.
	if _, err := io.WriteString(l.Out, line+"\n"); err != nil {
		return frame, fmt.Errorf("write line: %w", err)
	}
	for _, sink := range l.Sinks {
		sink.Publish(frame)
	}
	return frame, nil
}

// Bootstrapped reports whether the loop has left its first cycle.
func (l *Loop) Bootstrapped() bool { return l.state != nil }

// report logs a metric failure once when it starts and once when it ends.
func (l *Loop) report(s model.Sample) {
	if l.failing == nil {
		l.failing = make(map[string]bool)
	}
	for _, m := range []struct {
		name string
		err  error
	}{
		{"workspaces", s.WorkspacesErr},
		{"traffic", s.TrafficErr},
		{"cpu", s.CPUErr},
		{"memory", s.MemoryErr},
	} {
		switch {
		case m.err != nil && !l.failing[m.name]:
			l.failing[m.name] = true
			l.logger().Warn("metric unavailable", "metric", m.name, "err", m.err)
		case m.err == nil && l.failing[m.name]:
			l.failing[m.name] = false
			l.logger().Info("metric recovered", "metric", m.name)
		}
	}
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loop) logger() *slog.Logger {
	if l.Log != nil {
		return l.Log
	}
	return slog.Default()
}
