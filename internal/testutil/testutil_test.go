package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRepoRootContainsGoMod(t *testing.T) {
	root := RepoRoot(t)
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		t.Fatalf("expected go.mod at repo root: %v", err)
	}
}

func TestWriteFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	WriteFile(t, dir, "a/b/c.json", "{}")
	content, err := os.ReadFile(filepath.Join(dir, "a", "b", "c.json"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(content) != "{}" {
		t.Fatalf("unexpected content: %s", string(content))
	}
}
