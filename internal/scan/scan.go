// Package scan finds the audio files a batch should process.
package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrDirUnreadable is returned when the directory cannot be listed.
var ErrDirUnreadable = errors.New("directory cannot be read")

// Files returns the regular files directly inside dir whose extension equals
// ext, ignoring case. ext may be given with or without the leading dot.
// Subdirectories are not descended into. Entries are returned in the order the
// directory listing yields them.
func Files(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirUnreadable, dir, err)
	}

	want := strings.TrimPrefix(ext, ".")
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !MatchExt(entry.Name(), want) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		// Stat follows symlinks so a link to an audio file still counts.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}

	return files, nil
}

// MatchExt reports whether name has extension ext (without dot), ignoring
// case. Dotfiles such as ".mp3" have no extension.
func MatchExt(name, ext string) bool {
	got := filepath.Ext(name)
	if got == "" || got == name {
		return false
	}
	return strings.EqualFold(got[1:], ext)
}
