// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projectroot locates the project a command is run from.
package projectroot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when no marker exists in start or any parent.
var ErrNotFound = errors.New("project root not found")

// markers identify a project directory.
var markers = []string{
	filepath.Join("openspec", "changes"),
	".git",
	"go.mod",
}

// Find walks up from start and returns the nearest directory containing
// openspec/changes. Without one, it returns the nearest directory holding
// .git or go.mod.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}

	fallback := ""
	for {
		if HasOpenspec(dir) {
			return dir, nil
		}
		if fallback == "" && hasMarker(dir) {
			fallback = dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("%w from %s", ErrNotFound, start)
}

func hasMarker(dir string) bool {
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
			return true
		}
	}
	return false
}

// HasOpenspec reports whether root contains an openspec/changes directory.
func HasOpenspec(root string) bool {
	info, err := os.Stat(filepath.Join(root, markers[0]))
	return err == nil && info.IsDir()
}
