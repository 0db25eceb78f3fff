package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maauso/loudnorm-batch/internal/bootstrap"
	"github.com/maauso/loudnorm-batch/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Command line options. Flags that are set override the environment.
var opts struct {
	verbose bool
	quiet   bool
	ffmpeg  string
	ext     string
	timeout time.Duration
	strict  bool
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "loudnorm",
	Short: "Batch loudness normalization of audio files with ffmpeg",
	Long: `loudnorm normalizes the loudness of every matching audio file in a folder.

It asks for the folder, lists the files it found and, once confirmed, asks for
the loudnorm targets (integrated loudness, true peak, loudness range) and the
encoder quality. Each file is passed through ffmpeg's loudnorm filter and the
result is written to a "result" subfolder next to it.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBatch,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Hide ffmpeg's own output")
	f.StringVar(&opts.ffmpeg, "ffmpeg", "", "Path or command name of ffmpeg (default: platform location)")
	f.StringVar(&opts.ext, "ext", "", "Extension of the files to normalize (default: mp3)")
	f.DurationVar(&opts.timeout, "timeout", 0, "Maximum time per file, 0 for no limit")
	f.BoolVar(&opts.strict, "strict", false, "Re-ask for parameters that are not numbers")
}

// applyFlags copies explicitly set flags over the environment configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if flags.Changed("ffmpeg") {
		cfg.FFmpegPath = opts.ffmpeg
	}
	if flags.Changed("ext") {
		cfg.InputExt = opts.ext
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("strict") {
		cfg.Strict = opts.strict
	}
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration from environment
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Create structured logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Debug("starting loudnorm",
		slog.String("version", version),
		slog.String("config", cfg.String()),
	)

	streams := bootstrap.Streams{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
	}
	if !opts.quiet {
		streams.ToolOutput = cmd.ErrOrStderr()
	}

	deps, err := bootstrap.NewDependencies(ctx, cfg, logger, streams)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	return deps.App.Run(ctx)
}
