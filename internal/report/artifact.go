package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when artifactPayload format changes
const artifactSchema uint16 = 1

// ErrArtifactSchema reports a saved report with an incompatible schema.
var ErrArtifactSchema = errors.New("unsupported report artifact schema")

type artifactEntry struct {
	Unit    string
	Display string
	NS      int64
}

type artifactBucket struct {
	Name    string
	Count   uint32
	TotalNS int64
}

type artifactPayload struct {
	Schema       uint16
	SavedAt      time.Time
	NoData       bool
	TotalSeen    uint32
	OutlierCount uint32
	TotalNS      int64
	AvgNS        int64
	Slowest      []artifactEntry
	Buckets      []artifactBucket
}

// Save serializes a report to a msgpack artifact. The write goes
// through a temp file and an atomic rename so a crashed run never
// leaves a torn artifact behind.
func Save(path string, rep Report) error {
	payload, err := packPayload(rep)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create artifact dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode report artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}

// Load reads a report artifact written by Save.
func Load(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		_ = f.Close()
	}()

	var payload artifactPayload
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&payload); err != nil {
		return Report{}, fmt.Errorf("%s: failed to decode report artifact: %w", path, err)
	}
	if payload.Schema != artifactSchema {
		return Report{}, fmt.Errorf("%s: schema %d: %w", path, payload.Schema, ErrArtifactSchema)
	}
	return unpackPayload(payload), nil
}

func packPayload(rep Report) (artifactPayload, error) {
	totalSeen, err := safecast.Conv[uint32](rep.TotalSeen)
	if err != nil {
		return artifactPayload{}, fmt.Errorf("total seen out of range: %w", err)
	}
	outliers, err := safecast.Conv[uint32](rep.OutlierCount)
	if err != nil {
		return artifactPayload{}, fmt.Errorf("outlier count out of range: %w", err)
	}

	payload := artifactPayload{
		Schema:       artifactSchema,
		SavedAt:      time.Now().UTC(),
		NoData:       rep.NoData,
		TotalSeen:    totalSeen,
		OutlierCount: outliers,
		TotalNS:      rep.TotalTime.Nanoseconds(),
		AvgNS:        rep.AvgTime.Nanoseconds(),
	}
	for _, e := range rep.Slowest {
		payload.Slowest = append(payload.Slowest, artifactEntry{
			Unit:    e.Unit,
			Display: e.Display,
			NS:      e.Duration.Nanoseconds(),
		})
	}
	for _, b := range rep.Buckets {
		count, err := safecast.Conv[uint32](b.Count)
		if err != nil {
			return artifactPayload{}, fmt.Errorf("bucket %q count out of range: %w", b.Name, err)
		}
		payload.Buckets = append(payload.Buckets, artifactBucket{
			Name:    b.Name,
			Count:   count,
			TotalNS: b.Total.Nanoseconds(),
		})
	}
	return payload, nil
}

func unpackPayload(payload artifactPayload) Report {
	rep := Report{
		NoData:       payload.NoData,
		TotalSeen:    int(payload.TotalSeen),
		OutlierCount: int(payload.OutlierCount),
		TotalTime:    time.Duration(payload.TotalNS),
		AvgTime:      time.Duration(payload.AvgNS),
	}
	for _, e := range payload.Slowest {
		rep.Slowest = append(rep.Slowest, Entry{
			Unit:     e.Unit,
			Display:  e.Display,
			Duration: time.Duration(e.NS),
		})
	}
	for _, b := range payload.Buckets {
		rep.Buckets = append(rep.Buckets, Bucket{
			Name:  b.Name,
			Count: int(b.Count),
			Total: time.Duration(b.TotalNS),
		})
	}
	return rep
}
