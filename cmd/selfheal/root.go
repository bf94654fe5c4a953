package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "selfheal",
	Short: "Self-healing control loop",
	Long: `selfheal runs four cooperating workers against shared health state:

  - primary:   the nominal workload; slowly decays health, may fault fatally
  - detector:  raises simulated anomalies (timing, corruption, validation)
  - corrector: applies the recovery for each raised fault and credits health
  - reporter:  prints a periodic health report with advisory recommendations

The run stops after a fixed duration and always exits 0.
Running selfheal without a subcommand is the same as "selfheal run".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runControlLoop,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	addRunFlags(rootCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
