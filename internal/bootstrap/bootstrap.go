// Package bootstrap provides dependency initialization for the loudnorm CLI.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/maauso/loudnorm-batch/internal/app"
	"github.com/maauso/loudnorm-batch/internal/batch"
	"github.com/maauso/loudnorm-batch/internal/config"
	"github.com/maauso/loudnorm-batch/internal/locator"
	"github.com/maauso/loudnorm-batch/internal/prompt"
	"github.com/maauso/loudnorm-batch/internal/runner"
	"github.com/maauso/loudnorm-batch/internal/storage"
)

// Streams are the terminal streams the application talks to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	// ToolOutput receives ffmpeg's own output. Nil silences it.
	ToolOutput io.Writer
}

// Dependencies holds all initialized dependencies for one interactive run.
type Dependencies struct {
	App     *app.App
	Locator locator.ToolLocator
	ExeDir  string
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger, streams Streams) (*Dependencies, error) {
	exeDir, err := ExecutableDir()
	if err != nil {
		return nil, err
	}

	// Resolve the tool strategy once, before anything is processed
	loc := locator.New(cfg.FFmpegPath, runtime.GOOS, exeDir)

	var runOpts []runner.Option
	if streams.ToolOutput != nil {
		runOpts = append(runOpts, runner.WithOutput(streams.ToolOutput))
	}

	svcOpts := []batch.Option{
		batch.WithOutput(streams.Out),
		batch.WithResultDir(cfg.ResultDir),
		batch.WithOutputExt(cfg.OutputExt),
		batch.WithTimeout(cfg.Timeout),
	}

	publisher, err := initPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if publisher != nil {
		svcOpts = append(svcOpts, batch.WithPublisher(publisher, cfg.S3Prefix))
	}

	svc := batch.NewService(runner.NewExecRunner(runOpts...), logger, svcOpts...)

	a := app.New(
		prompt.New(streams.In, streams.Out),
		loc,
		svc,
		logger,
		app.WithExeDir(exeDir),
		app.WithInputExt(cfg.InputExt),
		app.WithStrict(cfg.Strict),
	)

	return &Dependencies{
		App:     a,
		Locator: loc,
		ExeDir:  exeDir,
	}, nil
}

// initPublisher creates the S3 publisher when S3 is configured, and returns
// nil otherwise.
func initPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Publisher, error) {
	if !cfg.S3Enabled() {
		return nil, nil
	}

	p, err := storage.NewS3Publisher(ctx, storage.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 publisher: %w", err)
	}
	logger.Info("S3 publishing configured",
		slog.String("bucket", cfg.S3Bucket),
		slog.String("region", cfg.S3Region),
		slog.String("prefix", cfg.S3Prefix),
	)
	return p, nil
}

// ExecutableDir returns the directory containing the running program, with
// symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("get executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
