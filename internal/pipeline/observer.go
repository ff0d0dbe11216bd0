// Package pipeline exposes the profiler to a host build tool as a set
// of lifecycle hooks. The observer is passive: it never transforms
// units, never schedules work, and never lets one of its own failures
// escape into the build it is watching.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"buildpulse/internal/pathkey"
	"buildpulse/internal/report"
	"buildpulse/internal/timing"
	"buildpulse/internal/trace"
)

var slowLineColor = color.New(color.FgYellow)

// Options configures an Observer. Zero fields use the package defaults;
// a nil Out writes to stdout.
type Options struct {
	SlowThreshold time.Duration
	ProgressEvery int
	TopN          int
	Mapper        pathkey.Mapper
	Out           io.Writer
	Quiet         bool // suppress progress and slow-unit lines, keep the final report
	Tracer        trace.Tracer
	Clock         func() time.Time
	ExtraSink     timing.Sink // e.g. a TUI channel sink
}

// Observer owns one registry and adapts registry events to the
// line-oriented reporting sink. One instance per observed pipeline;
// independent builds get independent observers.
type Observer struct {
	opts Options
	reg  *timing.Registry
	now  func() time.Time

	buildSpan *trace.Span
	spans     map[string]*trace.Span
}

// NewObserver builds an Observer and resets its registry.
func NewObserver(opts Options) *Observer {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	o := &Observer{
		opts:  opts,
		now:   opts.Clock,
		spans: make(map[string]*trace.Span),
	}
	sinks := timing.MultiSink{timing.SinkFunc(o.onEvent)}
	if opts.ExtraSink != nil {
		sinks = append(sinks, opts.ExtraSink)
	}
	o.reg = timing.NewRegistry(timing.Options{
		SlowThreshold: opts.SlowThreshold,
		ProgressEvery: opts.ProgressEvery,
		Mapper:        opts.Mapper,
		Sink:          sinks,
		Clock:         opts.Clock,
	})
	return o
}

// Registry exposes the underlying registry for inspection.
func (o *Observer) Registry() *timing.Registry { return o.reg }

// OnBuildStart resets all per-build state. Called once per build before
// any unit notification; calling it again simply re-initializes.
func (o *Observer) OnBuildStart() {
	defer o.recoverHook("build-start")
	o.reg.Reset()
	o.spans = make(map[string]*trace.Span)
	o.buildSpan = trace.BeginAt(o.opts.Tracer, trace.ScopeBuild, "build", o.now())
}

// OnUnitTransformRequested observes a unit start. Pass-through: the
// hook returns nothing to the host, so the unit is never transformed.
func (o *Observer) OnUnitTransformRequested(raw string) {
	defer o.recoverHook("unit-start")
	key := pathkey.Normalize(raw)
	o.reg.OnUnitStart(raw)
	if sp, ok := o.spans[key]; ok {
		// duplicate start: the host re-invoked the hook, restart the span
		sp.EndAt("restarted", o.now())
	}
	o.spans[key] = trace.BeginAt(o.opts.Tracer, trace.ScopeUnit, "unit:"+o.opts.Mapper.Short(key), o.now())
}

// OnUnitParsed observes a unit completion. Completions without a
// matching start are ignored by the registry (cache hits).
func (o *Observer) OnUnitParsed(raw string) {
	defer o.recoverHook("unit-complete")
	key := pathkey.Normalize(raw)
	o.reg.OnUnitComplete(raw)
	if sp, ok := o.spans[key]; ok {
		sp.EndAt("", o.now())
		delete(o.spans, key)
	} else {
		trace.Point(o.opts.Tracer, trace.ScopeDebug, "unmatched-complete", key, o.now())
	}
}

// FinalReport aggregates the current registry state.
func (o *Observer) FinalReport() report.Report {
	return report.Build(o.reg.Summary(), report.Options{TopN: o.opts.TopN, Mapper: o.opts.Mapper})
}

// OnBuildEnd closes the build span and renders the final report to the
// reporting sink.
func (o *Observer) OnBuildEnd() {
	defer o.recoverHook("build-end")
	sum := o.reg.Summary()
	if o.buildSpan != nil {
		o.buildSpan.WithExtra("units", fmt.Sprintf("%d", sum.Completed)).EndAt("", o.now())
		o.buildSpan = nil
	}
	report.Render(o.opts.Out, report.Build(sum, report.Options{TopN: o.opts.TopN, Mapper: o.opts.Mapper}))
}

// onEvent formats registry events for the reporting sink. Kept apart
// from the registry itself so the state transitions stay testable
// without capturing console output.
func (o *Observer) onEvent(evt timing.Event) {
	switch evt.Kind {
	case timing.EventSlowUnit:
		trace.Point(o.opts.Tracer, trace.ScopeBuild, "slow-unit",
			fmt.Sprintf("%s %.1f ms", evt.Display, millis(evt.Duration)), o.now())
		if !o.opts.Quiet {
			slowLineColor.Fprintf(o.opts.Out, "slow unit: %s  %.1f ms\n", evt.Display, millis(evt.Duration))
		}
	case timing.EventProgress:
		if !o.opts.Quiet {
			snap := evt.Snapshot
			fmt.Fprintf(o.opts.Out, "progress: %.1f%% (%d/%d), elapsed %s, eta %s, slow %d\n",
				snap.Percent, snap.Completed, snap.TotalSeen,
				snap.Elapsed.Round(time.Millisecond), snap.ETA.Round(time.Millisecond), snap.Outliers)
		}
	}
}

// recoverHook keeps a profiling failure from aborting the host build:
// the panic becomes one line on the reporting sink and the hook returns
// its safe default.
func (o *Observer) recoverHook(hook string) {
	if r := recover(); r != nil {
		fmt.Fprintf(o.opts.Out, "buildpulse: %s hook failed: %v\n", hook, r)
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
