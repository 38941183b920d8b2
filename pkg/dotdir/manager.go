// Package dotdir manages the .skillstream/ and ~/.skillstream directories.
//
// The directory holds config.toml, credentials.toml and sessions.json. The
// session file remembers only the last conversation id per service so the
// CLI can resume a conversation; chat content is never written locally.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the skillstream directory.
	dirName = ".skillstream"

	// EnvDir overrides the directory when no explicit override is given.
	EnvDir = "SKILLSTREAM_HOME"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .skillstream/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. $SKILLSTREAM_HOME
//  3. Local ./.skillstream/ dir
//  4. Home ~/.skillstream/ dir, created if missing
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case os.Getenv(EnvDir) != "":
		dir = os.Getenv(EnvDir)

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating skillstream directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// localDirExists checks whether a .skillstream/ directory exists in the
// current working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
