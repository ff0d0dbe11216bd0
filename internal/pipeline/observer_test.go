package pipeline

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"buildpulse/internal/timing"
	"buildpulse/internal/trace"
)

type testClock struct {
	at     time.Time
	poison bool
}

func newTestClock() *testClock {
	return &testClock{at: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	if c.poison {
		panic("timestamp source unavailable")
	}
	return c.at
}

func (c *testClock) Advance(d time.Duration) { c.at = c.at.Add(d) }

func TestObserverEndToEnd(t *testing.T) {
	clk := newTestClock()
	var out bytes.Buffer
	obs := NewObserver(Options{Out: &out, Clock: clk.Now})

	obs.OnBuildStart()
	obs.OnUnitTransformRequested("/src/a.ts?v=1")
	clk.Advance(250 * time.Millisecond)
	obs.OnUnitParsed("/src/a.ts")
	obs.OnUnitTransformRequested("/node_modules/foo/b.js")
	clk.Advance(20 * time.Millisecond)
	obs.OnUnitParsed("/node_modules/foo/b.js")
	obs.OnBuildEnd()

	text := out.String()
	if !strings.Contains(text, "slow unit: a.ts  250.0 ms") {
		t.Errorf("missing slow-unit line:\n%s", text)
	}
	if !strings.Contains(text, "progress: ") {
		t.Errorf("missing progress line:\n%s", text)
	}
	if !strings.Contains(text, "slowest units") || !strings.Contains(text, "totals:") {
		t.Errorf("missing final report:\n%s", text)
	}
}

func TestObserverQuietKeepsReportOnly(t *testing.T) {
	clk := newTestClock()
	var out bytes.Buffer
	obs := NewObserver(Options{Out: &out, Quiet: true, Clock: clk.Now})

	obs.OnBuildStart()
	obs.OnUnitTransformRequested("/src/a.ts")
	clk.Advance(300 * time.Millisecond)
	obs.OnUnitParsed("/src/a.ts")
	obs.OnBuildEnd()

	text := out.String()
	if strings.Contains(text, "slow unit:") || strings.Contains(text, "progress:") {
		t.Errorf("quiet mode leaked progress output:\n%s", text)
	}
	if !strings.Contains(text, "slowest units") {
		t.Errorf("quiet mode must still render the report:\n%s", text)
	}
}

func TestObserverNoDataReport(t *testing.T) {
	clk := newTestClock()
	var out bytes.Buffer
	obs := NewObserver(Options{Out: &out, Clock: clk.Now})

	obs.OnBuildStart()
	obs.OnUnitTransformRequested("/src/fast.ts")
	clk.Advance(5 * time.Millisecond)
	obs.OnUnitParsed("/src/fast.ts")
	obs.OnBuildEnd()

	if !strings.Contains(out.String(), "no timing data collected") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestObserverRecoversFromHookPanic(t *testing.T) {
	clk := newTestClock()
	var out bytes.Buffer
	obs := NewObserver(Options{Out: &out, Clock: clk.Now})
	obs.OnBuildStart()

	clk.poison = true
	obs.OnUnitTransformRequested("/src/a.ts") // must not propagate
	clk.poison = false

	if !strings.Contains(out.String(), "unit-start hook failed") {
		t.Fatalf("panic was not reported: %q", out.String())
	}

	// the observer keeps working after a poisoned hook
	obs.OnUnitTransformRequested("/src/b.ts")
	clk.Advance(10 * time.Millisecond)
	obs.OnUnitParsed("/src/b.ts")
	if obs.Registry().CompletedCount() != 1 {
		t.Fatalf("observer did not recover")
	}
}

func TestObserverEmitsUnitSpans(t *testing.T) {
	clk := newTestClock()
	var out, traced bytes.Buffer
	tr := trace.NewStreamTracer(&traced, trace.LevelUnit, trace.FormatNDJSON)
	obs := NewObserver(Options{Out: &out, Quiet: true, Clock: clk.Now, Tracer: tr})

	obs.OnBuildStart()
	obs.OnUnitTransformRequested("/src/a.ts")
	clk.Advance(10 * time.Millisecond)
	obs.OnUnitParsed("/src/a.ts")
	obs.OnBuildEnd()

	text := traced.String()
	if !strings.Contains(text, `"name":"unit:a.ts"`) {
		t.Errorf("missing unit span:\n%s", text)
	}
	if !strings.Contains(text, `"name":"build"`) {
		t.Errorf("missing build span:\n%s", text)
	}
}

func TestObserverExtraSinkSeesEvents(t *testing.T) {
	clk := newTestClock()
	var out bytes.Buffer
	var kinds []timing.EventKind
	obs := NewObserver(Options{
		Out:   &out,
		Quiet: true,
		Clock: clk.Now,
		ExtraSink: timing.SinkFunc(func(evt timing.Event) {
			kinds = append(kinds, evt.Kind)
		}),
	})

	obs.OnBuildStart()
	obs.OnUnitTransformRequested("/src/a.ts")
	clk.Advance(250 * time.Millisecond)
	obs.OnUnitParsed("/src/a.ts")

	var seen, done, slow, progress bool
	for _, k := range kinds {
		switch k {
		case timing.EventUnitSeen:
			seen = true
		case timing.EventUnitDone:
			done = true
		case timing.EventSlowUnit:
			slow = true
		case timing.EventProgress:
			progress = true
		}
	}
	if !seen || !done || !slow || !progress {
		t.Fatalf("extra sink missed events: %v", kinds)
	}
}
