// Package app drives one interactive batch: ask for a directory, list the
// candidate files, confirm, collect the loudnorm parameters, resolve ffmpeg
// and normalize every file.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maauso/loudnorm-batch/internal/batch"
	"github.com/maauso/loudnorm-batch/internal/locator"
	"github.com/maauso/loudnorm-batch/internal/loudnorm"
	"github.com/maauso/loudnorm-batch/internal/prompt"
	"github.com/maauso/loudnorm-batch/internal/scan"
)

// Option configures an App.
type Option func(*App)

// WithExeDir sets the directory used when the user leaves the path empty.
func WithExeDir(dir string) Option {
	return func(a *App) { a.exeDir = dir }
}

// WithInputExt sets the extension of the files to normalize.
func WithInputExt(ext string) Option {
	return func(a *App) {
		if ext != "" {
			a.inputExt = ext
		}
	}
}

// WithStrict re-prompts for parameters that are not numbers instead of
// handing them to ffmpeg as typed.
func WithStrict(strict bool) Option {
	return func(a *App) { a.strict = strict }
}

// App is the interactive front end of a batch.
type App struct {
	prompter *prompt.Prompter
	locator  locator.ToolLocator
	service  *batch.Service
	logger   *slog.Logger

	exeDir   string
	inputExt string
	strict   bool
}

// New creates an App.
func New(p *prompt.Prompter, loc locator.ToolLocator, svc *batch.Service, logger *slog.Logger, opts ...Option) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		prompter: p,
		locator:  loc,
		service:  svc,
		logger:   logger,
		exeDir:   ".",
		inputExt: "mp3",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the whole interactive flow. Declining the confirmation
// returns nil without touching the filesystem. A missing ffmpeg aborts before
// any file is processed and returns an error wrapping locator.ErrToolNotFound.
// Cancelling ctx while a question is pending returns ctx.Err() at once.
func (a *App) Run(ctx context.Context) error {
	dir, err := a.prompter.Line(ctx, "Type the folder path: ")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = a.exeDir
	}
	a.prompter.Printf("📁 Path provided: \"%s\"\n", dir)

	files := a.collectFiles(dir)

	ok, err := a.prompter.Confirm(ctx, "Confirm? [Y/n]: ", true)
	if err != nil {
		return err
	}
	if !ok {
		a.logger.Info("batch declined", slog.String("dir", dir))
		return nil
	}

	params, err := a.collectParams(ctx)
	if err != nil {
		return err
	}

	toolPath, err := a.locator.Locate()
	if err != nil {
		a.prompter.Printf("❌ %v\n", err)
		return fmt.Errorf("locate ffmpeg: %w", err)
	}

	summary, err := a.service.Run(ctx, toolPath, files, params)
	if summary != nil {
		a.prompter.Printf("Done: %d succeeded, %d failed\n", summary.Succeeded(), summary.Failed())
	}
	return err
}

func (a *App) collectFiles(dir string) []string {
	files, err := scan.Files(dir, a.inputExt)
	if err != nil {
		a.prompter.Printf("❌ Error accessing directory: %s\n", dir)
		a.logger.Debug("scan failed", slog.String("dir", dir), slog.String("error", err.Error()))
	}

	if len(files) == 0 {
		a.prompter.Println("⚠️  No compatible files found in directory.")
		return nil
	}

	a.prompter.Println("🎶 Files found to be normalized:")
	for _, f := range files {
		a.prompter.Printf("- %s\n", f)
	}
	return files
}

func (a *App) collectParams(ctx context.Context) (loudnorm.Params, error) {
	var (
		p   loudnorm.Params
		err error
	)
	fields := []struct {
		label string
		def   string
		dst   *string
	}{
		{"Integrated loudness target (I)", loudnorm.DefaultIntegrated, &p.Integrated},
		{"True peak limit (TP)", loudnorm.DefaultTruePeak, &p.TruePeak},
		{"Loudness range (LRA)", loudnorm.DefaultRange, &p.Range},
		{"Audio Quality (q:a)", loudnorm.DefaultQuality, &p.Quality},
	}

	for _, f := range fields {
		if *f.dst, err = a.askParam(ctx, f.label, f.def); err != nil {
			return loudnorm.Params{}, err
		}
	}
	return p, nil
}

func (a *App) askParam(ctx context.Context, label, def string) (string, error) {
	for {
		v, err := a.prompter.WithDefault(ctx, label, def)
		if err != nil {
			return "", err
		}
		if !a.strict {
			return v, nil
		}

		err = loudnorm.ValidateValue(v)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, loudnorm.ErrInvalidParams) {
			return "", err
		}
		a.prompter.Printf("❌ %q is not a number, try again.\n", v)
	}
}
