package main

import (
	"github.com/spf13/cobra"

	"buildpulse/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show <report.mp>",
	Short: "Render a saved report artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyColorMode(cmd); err != nil {
			return err
		}
		rep, err := report.Load(args[0])
		if err != nil {
			return err
		}
		report.Render(cmd.OutOrStdout(), rep)
		return nil
	},
}
