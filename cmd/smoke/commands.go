package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dgnsrekt/contribute_smoke/internal/bootstrap"
	"github.com/dgnsrekt/contribute_smoke/internal/config"
	"github.com/dgnsrekt/contribute_smoke/internal/logging"
	"github.com/dgnsrekt/contribute_smoke/internal/scenario"
	"github.com/dgnsrekt/contribute_smoke/internal/ui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "smoke",
		Short: "Smoke tests for the Mozilla Contribute page",
		Long: `Runs the Contribute page smoke scenarios: header, footer and major link
destinations, link status checks, and signup form visibility.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Flags holds command-line flags.
type Flags struct {
	Scenarios   []string
	Tags        []string
	ExcludeTags []string
	Static      bool
	BaseURL     string
	Verbose     bool
	NoProgress  bool
	Limit       int
}

var GlobalFlags Flags

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(historyCmd)

	rootCmd.PersistentFlags().StringVar(&GlobalFlags.BaseURL, "base-url", "", "Site root to test (overrides SMOKE_BASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&GlobalFlags.Verbose, "verbose", "v", false, "Also print log records to stderr")

	// Run cmd
	runCmd.Flags().StringSliceVarP(&GlobalFlags.Scenarios, "scenario", "s", nil, "Scenario name to run (repeatable)")
	runCmd.Flags().StringSliceVarP(&GlobalFlags.Tags, "tag", "m", nil, "Only run scenarios with this tag (repeatable)")
	runCmd.Flags().StringSliceVar(&GlobalFlags.ExcludeTags, "exclude-tag", nil, "Skip scenarios with this tag (repeatable)")
	runCmd.Flags().BoolVar(&GlobalFlags.Static, "static", false, "Use the HTTP session instead of Chromium")
	runCmd.Flags().BoolVar(&GlobalFlags.NoProgress, "no-progress", false, "Disable the progress bar")

	// List cmd
	listCmd.Flags().StringSliceVarP(&GlobalFlags.Tags, "tag", "m", nil, "Only list scenarios with this tag")

	// History cmd
	historyCmd.Flags().IntVarP(&GlobalFlags.Limit, "limit", "n", 30, "Number of most recent results to show")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run smoke scenarios",
	Long:  "Run the selected scenarios, each in a fresh session, and report every failure.",
	RunE:  runScenarios,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		selected, err := scenario.Select(scenario.All(), scenario.Filter{Tags: GlobalFlags.Tags})
		if err != nil {
			return err
		}
		ui.PrintScenarios(cmd.OutOrStdout(), selected)
		return nil
	},
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Print locators and expected destinations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		reg, err := bootstrap.LoadRegistry(cfg)
		if err != nil {
			return err
		}
		ui.PrintRegistry(cmd.OutOrStdout(), reg)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded scenario results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		results, err := bootstrap.History(cfg, GlobalFlags.Limit)
		if err != nil {
			return err
		}
		ui.PrintHistory(cmd.OutOrStdout(), results)
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	cfg := config.Read()
	if GlobalFlags.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(GlobalFlags.BaseURL, "/")
	}
	if GlobalFlags.Static {
		cfg.Session = config.SessionStatic
	}
	return cfg, cfg.Validate()
}

// runScenarios executes the run command.
func runScenarios(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var console io.Writer = io.Discard
	if GlobalFlags.Verbose {
		console = os.Stderr
	}
	logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogFile, console)
	if err != nil {
		return fmt.Errorf("logger setup failed: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	selected, err := scenario.Select(scenario.All(), scenario.Filter{
		Names:       GlobalFlags.Scenarios,
		Tags:        GlobalFlags.Tags,
		ExcludeTags: GlobalFlags.ExcludeTags,
	})
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		color.Yellow("No scenarios to run")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var observers []scenario.Observer
	if !GlobalFlags.NoProgress {
		observers = append(observers, ui.NewProgress(len(selected), os.Stderr))
	}
	stack, err := bootstrap.Build(ctx, cfg, observers...)
	if err != nil {
		return err
	}
	defer stack.Close()

	sum := stack.Runner.Run(ctx, selected)
	ui.PrintSummary(cmd.OutOrStdout(), sum)
	if stack.Report.LastPath != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Report: %s\n", stack.Report.LastPath)
	}
	exitCode = sum.ExitCode()
	return nil
}
