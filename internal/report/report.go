// Package report turns a final registry summary into the ranked
// slow-unit report: top-N slowest, per-bucket rollups, overall totals.
package report

import (
	"sort"
	"time"

	"buildpulse/internal/pathkey"
	"buildpulse/internal/timing"
)

// DefaultTopN caps the slowest-unit and bucket sections.
const DefaultTopN = 10

// Options configures aggregation.
type Options struct {
	TopN   int
	Mapper pathkey.Mapper
}

// Entry is one row of the slowest-unit section.
type Entry struct {
	Unit     string
	Display  string
	Duration time.Duration
}

// Bucket is one row of the per-bucket rollup.
type Bucket struct {
	Name  string
	Count int
	Total time.Duration
}

// Report is the final aggregation of one build run. When NoData is set
// only TotalSeen is meaningful: the host treats a run without slow
// units as a run without timing data.
type Report struct {
	NoData       bool
	Slowest      []Entry
	Buckets      []Bucket
	TotalSeen    int
	OutlierCount int
	TotalTime    time.Duration
	AvgTime      time.Duration
}

// Build aggregates a summary. Read-only: the summary is already a
// detached copy and is not mutated.
func Build(sum timing.Summary, opts Options) Report {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}

	rep := Report{
		TotalSeen:    sum.TotalSeen,
		OutlierCount: len(sum.Outliers),
	}
	if len(sum.Outliers) == 0 {
		rep.NoData = true
		return rep
	}

	rep.Slowest = slowest(sum.Outliers, opts)
	rep.Buckets = buckets(sum.Durations, opts)

	for _, d := range sum.Durations {
		rep.TotalTime += d
	}
	if sum.TotalSeen > 0 {
		rep.AvgTime = rep.TotalTime / time.Duration(sum.TotalSeen)
	}
	return rep
}

func slowest(outliers []timing.Outlier, opts Options) []Entry {
	entries := make([]Entry, 0, len(outliers))
	for _, o := range outliers {
		entries = append(entries, Entry{
			Unit:     o.Unit,
			Display:  opts.Mapper.Short(o.Unit),
			Duration: o.Duration,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Duration != entries[j].Duration {
			return entries[i].Duration > entries[j].Duration
		}
		return entries[i].Unit < entries[j].Unit
	})
	if len(entries) > opts.TopN {
		entries = entries[:opts.TopN]
	}
	return entries
}

func buckets(durations map[string]time.Duration, opts Options) []Bucket {
	byName := make(map[string]*Bucket)
	for key, d := range durations {
		name := opts.Mapper.Bucket(key)
		b, ok := byName[name]
		if !ok {
			b = &Bucket{Name: name}
			byName[name] = b
		}
		b.Count++
		b.Total += d
	}
	out := make([]Bucket, 0, len(byName))
	for _, b := range byName {
		out = append(out, *b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > opts.TopN {
		out = out[:opts.TopN]
	}
	return out
}
