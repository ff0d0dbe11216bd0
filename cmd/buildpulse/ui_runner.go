package main

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"buildpulse/internal/eventlog"
	"buildpulse/internal/pipeline"
	"buildpulse/internal/report"
	"buildpulse/internal/timing"
	"buildpulse/internal/ui"
)

// runReplayWithUI replays the records behind a live progress view and
// returns the final report. The replay runs in its own goroutine and
// streams registry events to the Bubble Tea model; console output stays
// suppressed so the report can be rendered after the view exits.
func runReplayWithUI(title string, records []eventlog.Record, clk *eventlog.Clock, pace eventlog.Pacer, opts pipeline.Options) (report.Report, error) {
	events := make(chan timing.Event, 256)

	// The view owns the terminal; the report is rendered by the caller
	// once the program exits.
	opts.Quiet = true
	opts.Out = io.Discard
	opts.ExtraSink = timing.ChannelSink{Ch: events}
	obs := pipeline.NewObserver(opts)

	var g errgroup.Group
	g.Go(func() error {
		eventlog.Replay(records, clk, obs, pace)
		close(events)
		return nil
	})

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()

	if err := g.Wait(); err != nil {
		return obs.FinalReport(), err
	}
	return obs.FinalReport(), uiErr
}
