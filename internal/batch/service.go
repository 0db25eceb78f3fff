// Package batch runs the loudness normalization of a list of files, one
// after another, and reports the outcome of each.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/maauso/loudnorm-batch/internal/batch/id"
	"github.com/maauso/loudnorm-batch/internal/loudnorm"
	"github.com/maauso/loudnorm-batch/internal/runner"
	"github.com/maauso/loudnorm-batch/internal/storage"
)

// Default output layout.
const (
	DefaultResultDir = "result"
	DefaultOutputExt = "mp3"
)

// Option configures a Service.
type Option func(*Service)

// WithResultDir sets the name of the subdirectory results are written to.
func WithResultDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.resultDir = dir
		}
	}
}

// WithOutputExt sets the extension of the normalized files.
func WithOutputExt(ext string) Option {
	return func(s *Service) {
		if ext != "" {
			s.outputExt = ext
		}
	}
}

// WithTimeout bounds each tool invocation. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPublisher uploads every successful output under prefix/<run id>/.
func WithPublisher(p storage.Publisher, prefix string) Option {
	return func(s *Service) {
		s.publisher = p
		s.prefix = prefix
	}
}

// WithOutput sets where progress lines are printed.
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.out = w
		}
	}
}

// Service normalizes files sequentially with an external tool.
type Service struct {
	runner runner.Runner
	logger *slog.Logger
	out    io.Writer

	resultDir string
	outputExt string
	timeout   time.Duration

	publisher storage.Publisher
	prefix    string
}

// NewService creates a Service that runs the tool through r.
func NewService(r runner.Runner, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		runner:    r,
		logger:    logger,
		out:       os.Stdout,
		resultDir: DefaultResultDir,
		outputExt: DefaultOutputExt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run normalizes files in order with the tool at toolPath. A failing file
// is reported and does not stop the batch, whether the tool exited non-zero
// or could not be started. Run only returns an error when ctx is cancelled,
// together with the results gathered so far.
func (s *Service) Run(ctx context.Context, toolPath string, files []string, params loudnorm.Params) (*Summary, error) {
	summary := &Summary{RunID: id.Generate()}
	logger := s.logger.With(slog.String("run_id", summary.RunID))

	logger.Info("starting batch",
		slog.String("tool", toolPath),
		slog.Int("files", len(files)),
		slog.String("filter", params.Filter()),
		slog.String("quality", params.Quality),
	)

	for _, input := range files {
		if err := ctx.Err(); err != nil {
			logger.Warn("batch interrupted", slog.Int("processed", len(summary.Results)))
			return summary, fmt.Errorf("batch interrupted: %w", err)
		}

		res := s.process(ctx, logger, summary.RunID, toolPath, input, params)
		summary.Results = append(summary.Results, res)
		s.report(res)
	}

	logger.Info("batch finished",
		slog.Int("succeeded", summary.Succeeded()),
		slog.Int("failed", summary.Failed()),
	)
	return summary, nil
}

func (s *Service) process(ctx context.Context, logger *slog.Logger, runID, toolPath, input string, params loudnorm.Params) Result {
	output := loudnorm.OutputPath(input, s.resultDir, s.outputExt)
	res := Result{Input: input, Output: output}
	logger = logger.With(slog.String("input", input), slog.String("output", output))

	if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("create result directory: %w", err)
		logger.Error("failed to create result directory", slog.String("error", err.Error()))
		return res
	}

	s.printf("🔧 Processing: %s\n", input)

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.runner.Run(runCtx, toolPath, params.Args(input, output))
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		logger.Error("normalization failed",
			slog.Duration("elapsed", res.Elapsed),
			slog.String("error", err.Error()),
		)
		return res
	}

	res.Status = StatusCompleted
	if info, err := os.Stat(output); err == nil {
		res.Size = info.Size()
	}
	logger.Debug("normalization finished", slog.Duration("elapsed", res.Elapsed))

	if s.publisher != nil {
		key := storage.Key(s.prefix, runID, filepath.Base(output))
		url, err := storage.PublishFile(ctx, s.publisher, key, output)
		if err != nil {
			// The local result is still valid.
			logger.Warn("failed to publish result",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		} else {
			res.URL = url
		}
	}

	return res
}

func (s *Service) report(res Result) {
	if res.Status != StatusCompleted {
		s.printf("❌ Error while processing: %s\n", res.Input)
		return
	}

	s.printf("✅ Finish: %s (%s, %s)\n", res.Output, humanize.Bytes(uint64(res.Size)), res.Elapsed.Round(time.Millisecond))
	if res.URL != "" {
		s.printf("☁️  Uploaded: %s\n", res.URL)
	}
}

func (s *Service) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}
