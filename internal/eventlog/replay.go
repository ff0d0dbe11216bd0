package eventlog

import "time"

// Clock is a manually driven clock for replays: the profiler reads the
// recorded timestamps instead of the wall clock, so replayed durations
// match the original build exactly.
type Clock struct {
	at time.Time
}

// Now returns the current replay time. Suitable as a registry clock.
func (c *Clock) Now() time.Time { return c.at }

// Set moves the replay clock.
func (c *Clock) Set(t time.Time) { c.at = t }

// Hooks is the subset of the pipeline observer the replay drives.
type Hooks interface {
	OnBuildStart()
	OnUnitTransformRequested(raw string)
	OnUnitParsed(raw string)
	OnBuildEnd()
}

// Pacer is called between records with the recorded gap to the next
// one; replays can sleep to approximate the original pacing. Nil means
// replay as fast as possible.
type Pacer func(gap time.Duration)

// Replay feeds records through the hooks in file order, advancing clk
// to each record's timestamp first. Logs without explicit build-start
// or build-end markers get them synthesized, so a bare capture of unit
// events still produces a complete run.
func Replay(records []Record, clk *Clock, hooks Hooks, pace Pacer) {
	if len(records) == 0 {
		return
	}

	prev := records[0].At
	started := false
	ended := false

	for i, rec := range records {
		if pace != nil && i > 0 {
			if gap := rec.At.Sub(prev); gap > 0 {
				pace(gap)
			}
		}
		prev = rec.At
		clk.Set(rec.At)

		switch rec.Kind {
		case KindBuildStart:
			hooks.OnBuildStart()
			started = true
			ended = false
		case KindStart:
			if !started {
				hooks.OnBuildStart()
				started = true
			}
			hooks.OnUnitTransformRequested(rec.Unit)
		case KindComplete:
			if !started {
				hooks.OnBuildStart()
				started = true
			}
			hooks.OnUnitParsed(rec.Unit)
		case KindBuildEnd:
			hooks.OnBuildEnd()
			ended = true
		}
	}

	if started && !ended {
		hooks.OnBuildEnd()
	}
}
