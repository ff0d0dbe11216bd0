package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"buildpulse/internal/eventlog"
)

func TestRecordLineProtocol(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		at = at.Add(10 * time.Millisecond)
		return at
	}

	in := strings.NewReader(strings.Join([]string{
		"start src/app.ts",
		"",
		"done src/app.ts",
		"complete src/util.ts",
		"bogus line here",
		"start",
	}, "\n"))

	var out bytes.Buffer
	skipped, err := record(in, &out, now)
	if err != nil {
		t.Fatalf("record returned error: %v", err)
	}
	if skipped != 2 {
		t.Fatalf("skipped = %d, want 2", skipped)
	}

	res, err := eventlog.ReadAll(&out)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if res.Skipped != 0 {
		t.Fatalf("reader skipped %d lines of our own output", res.Skipped)
	}

	wantKinds := []eventlog.Kind{
		eventlog.KindBuildStart,
		eventlog.KindStart,
		eventlog.KindComplete,
		eventlog.KindComplete,
		eventlog.KindBuildEnd,
	}
	if len(res.Records) != len(wantKinds) {
		t.Fatalf("got %d records, want %d", len(res.Records), len(wantKinds))
	}
	for i, want := range wantKinds {
		if res.Records[i].Kind != want {
			t.Errorf("record %d kind = %q, want %q", i, res.Records[i].Kind, want)
		}
	}
	if res.Records[1].Unit != "src/app.ts" {
		t.Errorf("record 1 unit = %q, want src/app.ts", res.Records[1].Unit)
	}
	if res.Records[3].Unit != "src/util.ts" {
		t.Errorf("record 3 unit = %q, want src/util.ts", res.Records[3].Unit)
	}
}

func TestRecordEmptyInputStillFramesBuild(t *testing.T) {
	var out bytes.Buffer
	skipped, err := record(strings.NewReader(""), &out, time.Now)
	if err != nil {
		t.Fatalf("record returned error: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}

	res, err := eventlog.ReadAll(&out)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("got %d records, want build-start and build-end", len(res.Records))
	}
	if res.Records[0].Kind != eventlog.KindBuildStart || res.Records[1].Kind != eventlog.KindBuildEnd {
		t.Fatalf("unexpected framing: %q then %q", res.Records[0].Kind, res.Records[1].Kind)
	}
}
