package projectroot

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestRepoContract(t *testing.T) {
	root, err := Find(".")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	criticalFiles := []string{
		"go.mod",
		"cmd/backlog/main.go",
	}

	for _, relPath := range criticalFiles {
		path := filepath.Join(root, relPath)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("missing critical contract file: %s", relPath)
		}
	}

	content, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("failed to read go.mod: %v", err)
	}

	re := regexp.MustCompile(`(?m)^module github\.com/bartekus/openspec-backlog$`)
	if !re.Match(content) {
		t.Errorf("go.mod does not declare the expected module path")
	}
}
