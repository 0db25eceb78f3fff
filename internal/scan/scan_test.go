package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()

	matching := []string{"a.mp3", "B.MP3", "c.Mp3", "with space.mp3"}
	other := []string{"d.wav", "e.mp3.txt", "f", "mp3", ".mp3"}
	for _, name := range append(append([]string{}, matching...), other...) {
		touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.mp3"), 0o750))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o750))
	touch(t, filepath.Join(dir, "nested", "deep.mp3"))

	got, err := Files(dir, "mp3")
	require.NoError(t, err)

	want := make([]string, 0, len(matching))
	for _, name := range matching {
		want = append(want, filepath.Join(dir, name))
	}
	assert.ElementsMatch(t, want, got)
}

func TestFiles_ExtensionWithDot(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "track.flac"))
	touch(t, filepath.Join(dir, "track.mp3"))

	got, err := Files(dir, ".FLAC")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "track.flac")}, got)
}

func TestFiles_EmptyDirectory(t *testing.T) {
	got, err := Files(t.TempDir(), "mp3")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFiles_MissingDirectory(t *testing.T) {
	got, err := Files(filepath.Join(t.TempDir(), "missing"), "mp3")
	assert.ErrorIs(t, err, ErrDirUnreadable)
	assert.Empty(t, got)
}

func TestFiles_FollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "real.mp3")
	touch(t, target)
	if err := os.Symlink(target, filepath.Join(dir, "link.mp3")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "dangling.mp3")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := Files(dir, "mp3")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "link.mp3")}, got)
}

func TestMatchExt(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want bool
	}{
		{"song.mp3", "mp3", true},
		{"SONG.MP3", "mp3", true},
		{"song.mp3", "MP3", true},
		{"song.wav", "mp3", false},
		{"song", "mp3", false},
		{".mp3", "mp3", false},
		{"archive.tar.mp3", "mp3", true},
		{"song.mp3.bak", "mp3", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchExt(tt.name, tt.ext))
		})
	}
}
