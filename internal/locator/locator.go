// Package locator resolves the ffmpeg binary a batch runs. Every strategy
// checks that the binary exists before any file is processed.
package locator

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrToolNotFound is returned when the resolved binary does not exist.
var ErrToolNotFound = errors.New("ffmpeg not found")

// LinuxPath is where Linux package managers install ffmpeg. macOS has no
// such fixed location (Homebrew uses /opt/homebrew/bin or /usr/local/bin), so
// darwin searches PATH instead.
const LinuxPath = "/usr/bin/ffmpeg"

// ToolLocator resolves the absolute path of the external tool.
type ToolLocator interface {
	// Locate returns the path to the tool, or an error wrapping
	// ErrToolNotFound.
	Locate() (string, error)
}

// FixedPath locates the tool at a fixed path.
type FixedPath struct {
	Path string
}

// Locate implements ToolLocator.
func (l FixedPath) Locate() (string, error) {
	return checkFile(l.Path)
}

// Bundled locates a copy of the tool shipped next to the program, in
// <Dir>/library/<Name>.
type Bundled struct {
	Dir  string
	Name string
}

// Path returns the path the bundled tool is expected at.
func (l Bundled) Path() string {
	return filepath.Join(l.Dir, "library", l.Name)
}

// Locate implements ToolLocator.
func (l Bundled) Locate() (string, error) {
	return checkFile(l.Path())
}

// Search locates a bare command name through PATH.
type Search struct {
	Name string
}

// Locate implements ToolLocator.
func (l Search) Locate() (string, error) {
	path, err := exec.LookPath(l.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrToolNotFound, l.Name, err)
	}
	return path, nil
}

// Verify interface implementation at compile time.
var (
	_ ToolLocator = FixedPath{}
	_ ToolLocator = Bundled{}
	_ ToolLocator = Search{}
)

// ForPlatform picks the strategy for the operating system goos (a
// runtime.GOOS value). exeDir is the directory containing the running program.
func ForPlatform(goos, exeDir string) ToolLocator {
	switch goos {
	case "windows":
		return Bundled{Dir: exeDir, Name: "ffmpeg.exe"}
	case "darwin":
		return Search{Name: "ffmpeg"}
	default:
		return FixedPath{Path: LinuxPath}
	}
}

// New returns a locator for override when it is set, and the platform
// strategy otherwise. An override without a path separator is looked up in
// PATH.
func New(override, goos, exeDir string) ToolLocator {
	switch {
	case override == "":
		return ForPlatform(goos, exeDir)
	case strings.ContainsAny(override, `/\`):
		return FixedPath{Path: override}
	default:
		return Search{Name: override}
	}
}

func checkFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrToolNotFound, path)
	}
	return path, nil
}
