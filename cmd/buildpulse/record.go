package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"buildpulse/internal/eventlog"
)

var recordCmd = &cobra.Command{
	Use:   "record [flags]",
	Short: "Record unit events from stdin into an NDJSON log",
	Long: `Record reads simple lines from stdin and appends timestamped NDJSON
events suitable for 'buildpulse replay':

  start <unit>     a unit entered the pipeline
  done <unit>      a unit finished

Build boundaries are written automatically. Intended as glue for hosts
that can only shell out, e.g. a build script piping its own hook output.`,
	Args: cobra.NoArgs,
	RunE: recordExecution,
}

func init() {
	recordCmd.Flags().StringP("out", "o", "-", "output file ('-' for stdout)")
}

func recordExecution(cmd *cobra.Command, _ []string) error {
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	var out io.Writer = cmd.OutOrStdout()
	if outPath != "" && outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create event log: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		out = f
	}

	skipped, err := record(cmd.InOrStdin(), out, time.Now)
	if err != nil {
		return err
	}
	if skipped > 0 && !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: ignored %d unrecognized input lines\n", skipped)
	}
	return nil
}

// record translates the line protocol into event log records. Returns
// the number of ignored input lines.
func record(in io.Reader, out io.Writer, now func() time.Time) (int, error) {
	w := eventlog.NewWriter(out)
	if err := w.Append(eventlog.Record{At: now(), Kind: eventlog.KindBuildStart}); err != nil {
		return 0, err
	}

	skipped := 0
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		verb, unit, ok := strings.Cut(line, " ")
		unit = strings.TrimSpace(unit)
		if !ok || unit == "" {
			skipped++
			continue
		}
		var kind eventlog.Kind
		switch verb {
		case "start":
			kind = eventlog.KindStart
		case "done", "complete":
			kind = eventlog.KindComplete
		default:
			skipped++
			continue
		}
		if err := w.Append(eventlog.Record{At: now(), Kind: kind, Unit: unit}); err != nil {
			return skipped, err
		}
	}
	if err := sc.Err(); err != nil {
		return skipped, fmt.Errorf("failed to read input: %w", err)
	}

	if err := w.Append(eventlog.Record{At: now(), Kind: eventlog.KindBuildEnd}); err != nil {
		return skipped, err
	}
	return skipped, nil
}
