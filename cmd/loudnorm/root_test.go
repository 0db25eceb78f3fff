package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/loudnorm-batch/internal/config"
)

// resetOpts restores flag state shared through the package-level rootCmd.
func resetOpts(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		opts.verbose, opts.quiet, opts.strict = false, false, false
		opts.ffmpeg, opts.ext = "", ""
		opts.timeout = 0
		rootCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
}

func TestApplyFlags(t *testing.T) {
	resetOpts(t)

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().AddFlagSet(rootCmd.Flags())
	require.NoError(t, cmd.Flags().Parse([]string{"--ffmpeg", "/opt/ffmpeg", "--ext", "wav", "--timeout", "2m", "--strict", "-v"}))

	cfg := &config.Config{FFmpegPath: "/env/ffmpeg", InputExt: "mp3", LogLevel: "warn"}
	applyFlags(cmd, cfg)

	assert.Equal(t, "/opt/ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "wav", cfg.InputExt)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestApplyFlags_UnsetKeepsEnvironment(t *testing.T) {
	resetOpts(t)

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().AddFlagSet(rootCmd.Flags())
	require.NoError(t, cmd.Flags().Parse(nil))

	cfg := &config.Config{FFmpegPath: "/env/ffmpeg", InputExt: "flac", Strict: true, LogLevel: "info"}
	applyFlags(cmd, cfg)

	assert.Equal(t, "/env/ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "flac", cfg.InputExt)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestVersionCommand(t *testing.T) {
	resetOpts(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})

	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "loudnorm dev"))
}

func TestRootCommand_MissingTool(t *testing.T) {
	resetOpts(t)

	musicDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(musicDir, "a.mp3"), []byte("audio"), 0o600))
	missing := filepath.Join(t.TempDir(), "ffmpeg")

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(musicDir + "\n\n\n\n\n\n"))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--ffmpeg", missing, "--quiet"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg not found")
	assert.Contains(t, out.String(), "🎶 Files found to be normalized:")
}

func TestRootCommand_Declined(t *testing.T) {
	resetOpts(t)

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(t.TempDir() + "\nn\n"))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "⚠️  No compatible files found in directory.")
}

func TestRootCommand_FlagOverridesInvalidEnvironment(t *testing.T) {
	resetOpts(t)
	t.Setenv("LOUDNORM_TIMEOUT", "-1s")

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(t.TempDir() + "\nn\n"))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--timeout", "5s"})

	require.NoError(t, rootCmd.Execute())
}

func TestRootCommand_InvalidEnvironmentWithoutFlag(t *testing.T) {
	resetOpts(t)
	t.Setenv("LOUDNORM_TIMEOUT", "-1s")

	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{})

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, config.ErrNegativeTimeout)
}

func TestRootCommand_CancelledAtPrompt(t *testing.T) {
	resetOpts(t)

	r, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })

	var out bytes.Buffer
	rootCmd.SetIn(r)
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(50*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() { done <- rootCmd.ExecuteContext(ctx) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("command still waiting for input after cancel")
	}
}
