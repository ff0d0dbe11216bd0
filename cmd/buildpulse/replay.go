package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"buildpulse/internal/eventlog"
	"buildpulse/internal/pathkey"
	"buildpulse/internal/pipeline"
	"buildpulse/internal/report"
)

var replayCmd = &cobra.Command{
	Use:   "replay [flags] <events.ndjson>",
	Short: "Replay a recorded build event log and report slow units",
	Long: `Replay feeds a recorded NDJSON event log through the profiler using the
recorded timestamps, so durations, progress snapshots and the final
report match the original build exactly.`,
	Args: cobra.ExactArgs(1),
	RunE: replayExecution,
}

func init() {
	replayCmd.Flags().Duration("threshold", 0, "slow-unit threshold (e.g. 200ms)")
	replayCmd.Flags().Int("every", 0, "progress snapshot cadence in completions")
	replayCmd.Flags().String("dep-root", "", "dependency root marker segment")
	replayCmd.Flags().String("source-label", "", "bucket label for first-party units")
	replayCmd.Flags().Int("top", 0, "rows per report section")
	replayCmd.Flags().String("save", "", "write the final report artifact to this path")
	replayCmd.Flags().Float64("speed", 0, "pace the replay at recorded-gap/speed (0 = instant)")
}

// profileOptions is the merged configuration for one profiling run:
// flags override the manifest, the manifest overrides defaults.
type profileOptions struct {
	threshold time.Duration
	every     int
	topN      int
	mapper    pathkey.Mapper
	savePath  string
}

func resolveProfileOptions(cmd *cobra.Command, manifest *projectManifest) (profileOptions, error) {
	var opts profileOptions
	if manifest != nil {
		p := manifest.Config.Profile
		opts.threshold = time.Duration(p.SlowThresholdMS) * time.Millisecond
		opts.every = p.ProgressEvery
		opts.topN = p.TopN
		opts.mapper = pathkey.Mapper{DepRoot: p.DepRoot, SourceLabel: p.SourceLabel}
		opts.savePath = manifest.Config.Report.Save
	}

	flags := cmd.Flags()
	if flags.Changed("threshold") {
		threshold, err := flags.GetDuration("threshold")
		if err != nil {
			return opts, err
		}
		opts.threshold = threshold
	}
	if flags.Changed("every") {
		every, err := flags.GetInt("every")
		if err != nil {
			return opts, err
		}
		opts.every = every
	}
	if flags.Changed("top") {
		topN, err := flags.GetInt("top")
		if err != nil {
			return opts, err
		}
		opts.topN = topN
	}
	if flags.Changed("dep-root") {
		depRoot, err := flags.GetString("dep-root")
		if err != nil {
			return opts, err
		}
		opts.mapper.DepRoot = depRoot
	}
	if flags.Changed("source-label") {
		label, err := flags.GetString("source-label")
		if err != nil {
			return opts, err
		}
		opts.mapper.SourceLabel = label
	}
	if flags.Changed("save") {
		savePath, err := flags.GetString("save")
		if err != nil {
			return opts, err
		}
		opts.savePath = savePath
	}
	return opts, nil
}

func replayExecution(cmd *cobra.Command, args []string) error {
	if err := applyColorMode(cmd); err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	uiValue, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	speed, err := cmd.Flags().GetFloat64("speed")
	if err != nil {
		return err
	}
	if speed < 0 {
		return fmt.Errorf("--speed must not be negative")
	}

	manifest, _, err := loadProjectManifest(".")
	if err != nil {
		return err
	}
	opts, err := resolveProfileOptions(cmd, manifest)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	res, readErr := eventlog.ReadAll(f)
	if closeErr := f.Close(); closeErr != nil && readErr == nil {
		readErr = closeErr
	}
	if readErr != nil {
		return readErr
	}
	if res.Skipped > 0 && !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipped %d malformed event log lines\n", res.Skipped)
	}
	if len(res.Records) == 0 {
		return fmt.Errorf("%s: event log contains no usable records", args[0])
	}

	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	clk := &eventlog.Clock{}
	pace := pacerForSpeed(speed)

	if shouldUseTUI(uiModeValue) {
		rep, err := runReplayWithUI(args[0], res.Records, clk, pace, pipeline.Options{
			SlowThreshold: opts.threshold,
			ProgressEvery: opts.every,
			TopN:          opts.topN,
			Mapper:        opts.mapper,
			Tracer:        tracer,
			Clock:         clk.Now,
		})
		if err != nil {
			return err
		}
		report.Render(cmd.OutOrStdout(), rep)
		return saveReport(opts.savePath, rep, cmd)
	}

	obs := pipeline.NewObserver(pipeline.Options{
		SlowThreshold: opts.threshold,
		ProgressEvery: opts.every,
		TopN:          opts.topN,
		Mapper:        opts.mapper,
		Out:           cmd.OutOrStdout(),
		Quiet:         quiet,
		Tracer:        tracer,
		Clock:         clk.Now,
	})
	eventlog.Replay(res.Records, clk, obs, pace)
	return saveReport(opts.savePath, obs.FinalReport(), cmd)
}

// pacerForSpeed turns the --speed flag into a replay pacer. Individual
// sleeps are capped so a log with an hour-long stall stays watchable.
func pacerForSpeed(speed float64) eventlog.Pacer {
	if speed <= 0 {
		return nil
	}
	const maxSleep = 2 * time.Second
	return func(gap time.Duration) {
		paced := time.Duration(float64(gap) / speed)
		if paced > maxSleep {
			paced = maxSleep
		}
		time.Sleep(paced)
	}
}

func saveReport(path string, rep report.Report, cmd *cobra.Command) error {
	if path == "" {
		return nil
	}
	if err := report.Save(path, rep); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "report saved to %s\n", path)
	return nil
}
