package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func newReplayFlagSet(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "replay"}
	cmd.Flags().Duration("threshold", 0, "")
	cmd.Flags().Int("every", 0, "")
	cmd.Flags().String("dep-root", "", "")
	cmd.Flags().String("source-label", "", "")
	cmd.Flags().Int("top", 0, "")
	cmd.Flags().String("save", "", "")
	return cmd
}

func TestResolveProfileOptionsDefaults(t *testing.T) {
	opts, err := resolveProfileOptions(newReplayFlagSet(t), nil)
	if err != nil {
		t.Fatalf("resolveProfileOptions returned error: %v", err)
	}
	if opts.threshold != 0 || opts.every != 0 || opts.topN != 0 {
		t.Fatalf("expected zero options without manifest or flags, got %+v", opts)
	}
}

func TestResolveProfileOptionsManifestThenFlags(t *testing.T) {
	manifest := &projectManifest{
		Config: manifestConfig{
			Profile: profileSection{
				SlowThresholdMS: 300,
				ProgressEvery:   50,
				DepRoot:         "vendor",
				TopN:            3,
			},
			Report: reportSection{Save: "from-manifest.mp"},
		},
	}

	cmd := newReplayFlagSet(t)
	if err := cmd.Flags().Set("threshold", "120ms"); err != nil {
		t.Fatalf("failed to set threshold flag: %v", err)
	}
	if err := cmd.Flags().Set("save", "from-flag.mp"); err != nil {
		t.Fatalf("failed to set save flag: %v", err)
	}

	opts, err := resolveProfileOptions(cmd, manifest)
	if err != nil {
		t.Fatalf("resolveProfileOptions returned error: %v", err)
	}
	if opts.threshold != 120*time.Millisecond {
		t.Errorf("threshold = %v, flag must win over manifest", opts.threshold)
	}
	if opts.every != 50 {
		t.Errorf("every = %d, manifest value must survive", opts.every)
	}
	if opts.topN != 3 {
		t.Errorf("topN = %d, manifest value must survive", opts.topN)
	}
	if opts.mapper.DepRoot != "vendor" {
		t.Errorf("dep root = %q, manifest value must survive", opts.mapper.DepRoot)
	}
	if opts.savePath != "from-flag.mp" {
		t.Errorf("save path = %q, flag must win over manifest", opts.savePath)
	}
}

func TestPacerForSpeed(t *testing.T) {
	if pacerForSpeed(0) != nil {
		t.Error("speed 0 must disable pacing")
	}
	if pacerForSpeed(2) == nil {
		t.Error("positive speed must return a pacer")
	}
}
