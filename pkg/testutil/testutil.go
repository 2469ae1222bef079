package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// FileTree maps slash-separated relative paths to file contents. A path
// ending in "/" creates an empty directory.
type FileTree map[string]string

// WriteTree creates tree under base, in sorted path order
func WriteTree(t *testing.T, base string, tree FileTree) {
	t.Helper()

	paths := make([]string, 0, len(tree))
	for p := range tree {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		full := filepath.Join(base, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", full, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(tree[p]), 0o644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
}

// TempTree creates tree in a fresh temp dir and returns the dir
func TempTree(t *testing.T, tree FileTree) string {
	t.Helper()
	dir := t.TempDir()
	WriteTree(t, dir, tree)
	return dir
}

// Isolate points XDG config and state at empty temp dirs and clears
// SOYFORGE_* variables for the duration of the test. It returns the config
// home so tests can add a user config.
func Isolate(t *testing.T) string {
	t.Helper()
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "SOYFORGE_") {
			// Setenv registers the restore; the variable must be absent, not empty
			t.Setenv(key, "")
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("unsetenv %s: %v", key, err)
			}
		}
	}
	return configHome
}
