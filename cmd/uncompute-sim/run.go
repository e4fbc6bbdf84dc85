package main

import (
	"github.com/spf13/cobra"
)

var runConfig = defaultConfig()

func init() {
	cmd := newRunCmd()
	flags := cmd.Flags()
	flags.IntVar(&runConfig.groups, "groups", runConfig.groups, "Number of top-level values")
	flags.IntVar(&runConfig.leaves, "leaves", runConfig.leaves, "Child values computed by each group")
	flags.IntVar(&runConfig.size, "size", runConfig.size, "Bytes per child value")
	flags.Uint64Var(&runConfig.budget, "budget", runConfig.budget, "High watermark in bytes")
	flags.Float64Var(&runConfig.low, "low", runConfig.low, "Low watermark as a fraction of the budget")
	flags.StringVar(&runConfig.policy, "policy", runConfig.policy, "Eviction policy: largest, clock or recency")
	flags.IntVar(&runConfig.rounds, "rounds", runConfig.rounds, "Number of accesses")
	flags.Int64Var(&runConfig.seed, "seed", runConfig.seed, "Random seed for the access sequence")
	flags.StringVar(&runConfig.checkpoint, "checkpoint", "", "Directory for checkpointing child values")
	flags.BoolVar(&runConfig.runtime, "runtime", false, "Measure with the Go runtime instead of declared sizes")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a workload and print statistics",
		Long: `The run command materializes every group on first access and
evicts values whenever the estimated usage crosses the budget.

Example:
  uncompute-sim run --groups 64 --leaves 4 --size 65536 --budget 8388608
  uncompute-sim run --policy recency --checkpoint /tmp/uncompute
  uncompute-sim run --policy largest --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := runConfig
			config.logger = newLogger(cmd.ErrOrStderr())
			result, err := simulate(config)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			result.print(cmd.OutOrStdout())
			return nil
		},
	}
	return cmd
}
