package bootstrap

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/loudnorm-batch/internal/config"
	"github.com/maauso/loudnorm-batch/internal/locator"
)

func testConfig() *config.Config {
	return &config.Config{
		InputExt:  "mp3",
		OutputExt: "mp3",
		ResultDir: "result",
		S3Prefix:  "loudnorm",
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecutableDir(t *testing.T) {
	dir, err := ExecutableDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.DirExists(t, dir)
}

func TestNewDependencies_PlatformLocator(t *testing.T) {
	deps, err := NewDependencies(context.Background(), testConfig(), quietLogger(), Streams{
		In:  strings.NewReader(""),
		Out: io.Discard,
	})
	require.NoError(t, err)

	require.NotNil(t, deps.App)
	assert.Equal(t, locator.ForPlatform(runtime.GOOS, deps.ExeDir), deps.Locator)
}

func TestNewDependencies_OverrideLocator(t *testing.T) {
	cfg := testConfig()
	cfg.FFmpegPath = "/opt/ffmpeg/bin/ffmpeg"

	deps, err := NewDependencies(context.Background(), cfg, quietLogger(), Streams{In: strings.NewReader(""), Out: io.Discard})
	require.NoError(t, err)
	assert.Equal(t, locator.FixedPath{Path: "/opt/ffmpeg/bin/ffmpeg"}, deps.Locator)
}

func TestNewDependencies_WithS3(t *testing.T) {
	cfg := testConfig()
	cfg.S3Bucket = "bucket"
	cfg.S3Region = "us-east-1"
	cfg.S3Endpoint = "http://localhost:4566"
	cfg.AWSAccessKeyID = "test-access-key"
	cfg.AWSSecretAccessKey = "test-secret-key"

	deps, err := NewDependencies(context.Background(), cfg, quietLogger(), Streams{In: strings.NewReader(""), Out: io.Discard})
	require.NoError(t, err)
	assert.NotNil(t, deps.App)
}

func TestNewDependencies_RunsWithMissingTool(t *testing.T) {
	musicDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(musicDir, "song.mp3"), []byte("audio"), 0o600))

	cfg := testConfig()
	cfg.FFmpegPath = filepath.Join(t.TempDir(), "ffmpeg")

	var out bytes.Buffer
	deps, err := NewDependencies(context.Background(), cfg, quietLogger(), Streams{
		In:  strings.NewReader(musicDir + "\n\n\n\n\n\n"),
		Out: &out,
	})
	require.NoError(t, err)

	err = deps.App.Run(context.Background())
	require.ErrorIs(t, err, locator.ErrToolNotFound)
	assert.Contains(t, out.String(), "- "+filepath.Join(musicDir, "song.mp3"))
	assert.NoDirExists(t, filepath.Join(musicDir, "result"))
}
