package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codeberg.org/snonux/wordtale/internal/cli"
	"codeberg.org/snonux/wordtale/internal/processor"
	"codeberg.org/snonux/wordtale/internal/story"
)

func main() {
	flags := cli.NewFlags()
	rootCmd := cli.CreateRootCommand(flags)

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage returns the line printed for a failed command. Story failures
// already carry their user-facing text.
func errorMessage(err error) string {
	if f, ok := story.AsFailure(err); ok {
		return f.Error()
	}
	return "Error: " + err.Error()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	if err := cli.ApplyConfig(cmd); err != nil {
		return err
	}
	if err := flags.Validate(); err != nil {
		return err
	}
	// From here on failures are run outcomes, not usage mistakes
	cmd.SilenceUsage = true

	logger, err := newLogger(flags.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Commands that need no providers
	if flags.Archive || flags.ListModels || flags.History > 0 {
		proc, err := processor.NewProcessorWithProviders(flags, processor.Providers{}, logger)
		if err != nil {
			return err
		}
		defer proc.Close()

		switch {
		case flags.Archive:
			return proc.ArchiveRuns()
		case flags.ListModels:
			return proc.ListModels(ctx)
		default:
			return proc.PrintHistory(ctx, flags.History)
		}
	}

	proc, err := processor.NewProcessor(ctx, flags, logger)
	if err != nil {
		return err
	}
	defer proc.Close()

	if len(args) == 0 && flags.WordsFile == "" {
		return proc.RunGUIMode()
	}

	if err := proc.ProcessWords(ctx, args); err != nil {
		return err
	}
	fmt.Printf("\nDone! Runs saved to: %s\n", flags.OutputDir)
	return nil
}
