package timing

import "time"

// Snapshot is a progress estimate derived from registry state after a
// completion. ETA extrapolates linearly from the average per-unit pace
// observed so far; the total may still grow if the host discovers more
// units, so the percentage is an estimate, not a promise.
type Snapshot struct {
	Percent   float64
	Elapsed   time.Duration
	ETA       time.Duration
	Completed int
	TotalSeen int
	Outliers  int
}

// progressCheck emits a Snapshot when the completion count hits the
// reporting cadence or catches up with every unit seen so far. Division
// guards short-circuit instead of producing Inf/NaN.
func (r *Registry) progressCheck() {
	if r.totalSeen == 0 || r.completed == 0 {
		return
	}
	if r.completed%r.opts.ProgressEvery != 0 && r.completed != r.totalSeen {
		return
	}
	elapsed := r.now().Sub(r.buildStart)
	avg := elapsed / time.Duration(r.completed)
	snap := Snapshot{
		Percent:   float64(r.completed) / float64(r.totalSeen) * 100,
		Elapsed:   elapsed,
		ETA:       time.Duration(r.totalSeen-r.completed) * avg,
		Completed: r.completed,
		TotalSeen: r.totalSeen,
		Outliers:  len(r.outliers),
	}
	r.emit(Event{Kind: EventProgress, Snapshot: snap})
}
