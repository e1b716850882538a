package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

// createTree creates files (relative paths) under a temp dir.
func createTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
	return root
}

func names(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCollectRequestFiles(t *testing.T) {
	root := createTree(t,
		"b.json",
		"a.JSON",
		"notes.txt",
		"nested/c.json",
		"nested/deeper/d.json",
		".hidden/e.json",
		"node_modules/f.json",
	)

	tests := []struct {
		name string
		opts ScanOptions
		want []string
	}{
		{
			name: "top level only",
			opts: ScanOptions{},
			want: []string{"a.JSON", "b.json"},
		},
		{
			name: "recursive",
			opts: ScanOptions{Recursive: true},
			want: []string{"a.JSON", "b.json", "nested/c.json", "nested/deeper/d.json"},
		},
		{
			name: "recursive with depth limit",
			opts: ScanOptions{Recursive: true, MaxDepth: 2},
			want: []string{"a.JSON", "b.json", "nested/c.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CollectRequestFiles([]string{root}, tt.opts)
			if err != nil {
				t.Fatalf("CollectRequestFiles() error = %v", err)
			}
			if got := names(t, root, result.Files); !equal(got, tt.want) {
				t.Errorf("files = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollectRequestFiles_ExplicitFiles(t *testing.T) {
	root := createTree(t, "one.txt", "two.json")

	result, err := CollectRequestFiles([]string{
		filepath.Join(root, "one.txt"),
		filepath.Join(root, "two.json"),
		root,
	}, ScanOptions{})
	if err != nil {
		t.Fatalf("CollectRequestFiles() error = %v", err)
	}

	want := []string{"one.txt", "two.json"}
	if got := names(t, root, result.Files); !equal(got, want) {
		t.Errorf("files = %v, want %v (duplicates removed)", got, want)
	}
	for _, f := range result.Files {
		if !filepath.IsAbs(f) {
			t.Errorf("expected absolute path, got %s", f)
		}
	}
}

func TestCollectRequestFiles_MissingPath(t *testing.T) {
	_, err := CollectRequestFiles([]string{filepath.Join(t.TempDir(), "missing")}, ScanOptions{})
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestCollectRequestFiles_EmptyDirectory(t *testing.T) {
	result, err := CollectRequestFiles([]string{t.TempDir()}, ScanOptions{Recursive: true})
	if err != nil {
		t.Fatalf("CollectRequestFiles() error = %v", err)
	}
	if len(result.Files) != 0 {
		t.Errorf("expected no files, got %v", result.Files)
	}
}
