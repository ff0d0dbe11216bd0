// Package timing implements the stateful core of the profiler: the
// registry that correlates start/complete notifications per build unit,
// deduplicates repeated notifications, accumulates durations and keeps
// the slow-unit list.
package timing

import (
	"time"

	"buildpulse/internal/pathkey"
)

// DefaultSlowThreshold is the duration above which a unit counts as slow.
const DefaultSlowThreshold = 200 * time.Millisecond

// DefaultProgressEvery is the completion cadence for progress snapshots.
const DefaultProgressEvery = 100

// Options configures a Registry. Zero fields fall back to defaults;
// a nil Clock uses time.Now.
type Options struct {
	SlowThreshold time.Duration
	ProgressEvery int
	Mapper        pathkey.Mapper
	Sink          Sink
	Clock         func() time.Time
}

// Outlier is one slow-unit record.
type Outlier struct {
	Unit     string
	Duration time.Duration
}

// Registry tracks known units, in-flight starts and completed durations
// for a single build run. All state is scoped to one run and cleared by
// Reset. Not goroutine-safe: the host pipeline delivers notifications
// one at a time (it is a passive observer, not a scheduler).
type Registry struct {
	opts Options
	now  func() time.Time

	known     map[string]struct{}
	pending   map[string]time.Time
	durations map[string]time.Duration
	outliers  []Outlier

	totalSeen  int
	completed  int
	buildStart time.Time
}

// NewRegistry creates a Registry and performs the initial Reset.
func NewRegistry(opts Options) *Registry {
	if opts.SlowThreshold <= 0 {
		opts.SlowThreshold = DefaultSlowThreshold
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	r := &Registry{opts: opts, now: now}
	r.Reset()
	return r
}

// Reset clears all per-build state and stamps the build start. Safe to
// call again mid-run; it simply re-initializes.
func (r *Registry) Reset() {
	r.known = make(map[string]struct{})
	r.pending = make(map[string]time.Time)
	r.durations = make(map[string]time.Duration)
	r.outliers = r.outliers[:0]
	r.totalSeen = 0
	r.completed = 0
	r.buildStart = r.now()
}

// OnUnitStart records a start notification. The first sighting of a
// canonical key registers the unit; any start (re)arms its clock, so a
// duplicate start for an in-flight key resets the measurement. Never
// fails.
func (r *Registry) OnUnitStart(raw string) {
	key := pathkey.Normalize(raw)
	if _, ok := r.known[key]; !ok {
		r.known[key] = struct{}{}
		r.totalSeen++
		r.emit(Event{Kind: EventUnitSeen, Unit: key, Display: r.opts.Mapper.Short(key)})
	}
	r.pending[key] = r.now()
}

// OnUnitComplete records a completion. Without a matching pending start
// it is a no-op (cache hits the host never started timing). Otherwise
// the duration is recorded, the slow list updated, and the progress
// cadence checked.
func (r *Registry) OnUnitComplete(raw string) {
	key := pathkey.Normalize(raw)
	started, ok := r.pending[key]
	if !ok {
		return
	}
	dur := r.now().Sub(started)
	delete(r.pending, key)

	_, again := r.durations[key]
	r.durations[key] = dur
	if !again {
		// Re-completions overwrite in place; the counter stays in
		// lockstep with the durations map.
		r.completed++
	}
	r.recordOutlier(key, dur, again)

	r.emit(Event{Kind: EventUnitDone, Unit: key, Display: r.opts.Mapper.Short(key), Duration: dur})
	if dur > r.opts.SlowThreshold {
		r.emit(Event{Kind: EventSlowUnit, Unit: key, Display: r.opts.Mapper.Short(key), Duration: dur})
	}
	r.progressCheck()
}

// recordOutlier keeps at most one slow entry per key. A repeated
// completion replaces (or drops) the earlier entry instead of
// duplicating it.
func (r *Registry) recordOutlier(key string, dur time.Duration, again bool) {
	slow := dur > r.opts.SlowThreshold
	if again {
		for i := range r.outliers {
			if r.outliers[i].Unit != key {
				continue
			}
			if slow {
				r.outliers[i].Duration = dur
			} else {
				r.outliers = append(r.outliers[:i], r.outliers[i+1:]...)
			}
			return
		}
	}
	if slow {
		r.outliers = append(r.outliers, Outlier{Unit: key, Duration: dur})
	}
}

func (r *Registry) emit(evt Event) {
	if r.opts.Sink != nil {
		r.opts.Sink.OnEvent(evt)
	}
}

// TotalSeen returns the number of distinct units observed so far.
func (r *Registry) TotalSeen() int { return r.totalSeen }

// CompletedCount returns the number of units with a recorded duration.
func (r *Registry) CompletedCount() int { return r.completed }

// PendingCount returns the number of in-flight starts.
func (r *Registry) PendingCount() int { return len(r.pending) }

// BuildStart returns the timestamp of the last Reset.
func (r *Registry) BuildStart() time.Time { return r.buildStart }

// Duration reports the recorded duration for a canonical key.
func (r *Registry) Duration(key string) (time.Duration, bool) {
	d, ok := r.durations[key]
	return d, ok
}

// Outliers returns a copy of the slow-unit list in detection order.
func (r *Registry) Outliers() []Outlier {
	out := make([]Outlier, len(r.outliers))
	copy(out, r.outliers)
	return out
}

// Summary is a read-only copy of registry state for final reporting.
type Summary struct {
	TotalSeen  int
	Completed  int
	Pending    int
	Durations  map[string]time.Duration
	Outliers   []Outlier
	BuildStart time.Time
	Elapsed    time.Duration
}

// Summary snapshots the registry. The copy shares nothing with live
// state, so reporting can run while the registry keeps mutating.
func (r *Registry) Summary() Summary {
	durations := make(map[string]time.Duration, len(r.durations))
	for k, v := range r.durations {
		durations[k] = v
	}
	return Summary{
		TotalSeen:  r.totalSeen,
		Completed:  r.completed,
		Pending:    len(r.pending),
		Durations:  durations,
		Outliers:   r.Outliers(),
		BuildStart: r.buildStart,
		Elapsed:    r.now().Sub(r.buildStart),
	}
}
