// Package eventlog reads and writes NDJSON logs of build-unit
// notifications, so a build captured on one machine can be replayed
// through the profiler anywhere, with identical timings.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Kind labels one recorded notification.
type Kind string

const (
	// KindBuildStart marks the beginning of a build run.
	KindBuildStart Kind = "build-start"
	// KindStart records a unit start notification.
	KindStart Kind = "start"
	// KindComplete records a unit completion notification.
	KindComplete Kind = "complete"
	// KindBuildEnd marks the end of a build run.
	KindBuildEnd Kind = "build-end"
)

func (k Kind) valid() bool {
	switch k {
	case KindBuildStart, KindStart, KindComplete, KindBuildEnd:
		return true
	default:
		return false
	}
}

// Record is one NDJSON line of the event log.
type Record struct {
	At   time.Time `json:"at"`
	Kind Kind      `json:"kind"`
	Unit string    `json:"unit,omitempty"`
}

// ReadResult is the outcome of reading a log: the records in file
// order plus the number of lines that did not parse.
type ReadResult struct {
	Records []Record
	Skipped int
}

// ReadAll consumes an NDJSON stream. Blank lines are ignored;
// malformed lines are counted and skipped rather than failing the read
// (a truncated log from a crashed build is still worth replaying).
func ReadAll(r io.Reader) (ReadResult, error) {
	var res ReadResult
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil || !rec.Kind.valid() || rec.At.IsZero() {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("failed to read event log: %w", err)
	}
	return res, nil
}

// Writer appends NDJSON records to an output stream.
type Writer struct {
	w   io.Writer
	enc *json.Encoder
}

// NewWriter wraps an output stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, enc: json.NewEncoder(w)}
}

// Append writes one record as a single NDJSON line.
func (w *Writer) Append(rec Record) error {
	if !rec.Kind.valid() {
		return fmt.Errorf("invalid event kind: %q", rec.Kind)
	}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}
