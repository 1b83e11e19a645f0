package scanner

import (
	"sort"
	"strings"
)

// ArchiveDir is the subdirectory of changes/ holding archived changes.
const ArchiveDir = "archive"

// FilterOptions defines which entries of the changes directory count as change directories.
type FilterOptions struct {
	// ExcludeDirs is a list of exact directory names to skip.
	// Matching is whole-name: "archive" skips "archive" but not "archive-notes".
	ExcludeDirs []string

	// IncludeHidden keeps dot-prefixed entries such as ".checkpoints".
	IncludeHidden bool
}

// DefaultExcludeDirs returns the directory names never treated as changes.
func DefaultExcludeDirs() []string {
	return []string{
		ArchiveDir,
		"node_modules",
	}
}

// FilterNames applies the filter options to a list of directory names.
// It returns a new slice, sorted deterministically.
func FilterNames(names []string, opts FilterOptions) []string {
	if len(names) == 0 {
		return nil
	}

	var filtered []string
	for _, name := range names {
		if name == "" {
			continue
		}
		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if shouldExclude(name, opts.ExcludeDirs) {
			continue
		}
		filtered = append(filtered, name)
	}

	sort.Strings(filtered)
	return filtered
}

func shouldExclude(name string, excludes []string) bool {
	for _, exclude := range excludes {
		if name == exclude {
			return true
		}
	}
	return false
}
