package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTree creates each relative path under root. Paths ending in "/" become
// directories; everything else becomes a one-byte file.
func WriteTree(t testing.TB, root string, paths ...string) {
	t.Helper()

	for _, rel := range paths {
		target := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", target, err)
		}
		if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", target, err)
		}
	}
}

// RequireFile fails the test unless root/rel exists.
func RequireFile(t testing.TB, root, rel string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
		t.Fatalf("expected %s: %v", rel, err)
	}
}
