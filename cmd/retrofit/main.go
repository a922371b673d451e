// Command retrofit runs one-shot budget allocation simulations from the
// command line.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "retrofit",
		Short:         "Compare budget allocation strategies for city energy retrofits",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				level = slog.LevelWarn
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(defaultsCmd())
	rootCmd.AddCommand(topCmd())

	return rootCmd
}

func runCmd() *cobra.Command {
	var (
		scenarioPath string
		format       string
		parallel     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate every strategy over the horizon and print the comparison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulation(cmd, scenarioPath, format, parallel)
		},
	}

	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Scenario file (YAML or JSON) or URL; built-in city when empty")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Run strategies concurrently")
	return cmd
}

func validateCmd() *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a scenario without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, scenarioPath)
		},
	}

	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Scenario file (YAML or JSON) or URL")
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}

func defaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the built-in scenario as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDefaults(cmd)
		},
	}
}

func topCmd() *cobra.Command {
	var (
		scenarioPath string
		n            int
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the most cost-effective single purchases against the initial baseline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTop(cmd, scenarioPath, n)
		},
	}

	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Scenario file (YAML or JSON) or URL; built-in city when empty")
	cmd.Flags().IntVarP(&n, "limit", "n", 5, "Number of actions to list")
	return cmd
}
