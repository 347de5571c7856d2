package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "timekeeper",
		Short:         "Attendance correction and weekly overtime calibration",
		Long:          `Timekeeper classifies raw punches into attendance records and keeps weekly overtime under the configured ceiling.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCorrectCmd())
	root.AddCommand(newWeekKeyCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
