package engine

import (
	"path/filepath"
	"strings"
	"testing"
)

func selectedRels(files []fileEntry) map[string]bool {
	out := make(map[string]bool, len(files))
	for _, f := range files {
		out[f.rel] = true
	}
	return out
}

func TestSelectFilesSkipsVendorDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.js", "ok\n")
	writeFile(t, dir, "node_modules/express/index.js", "skip\n")
	writeFile(t, dir, ".git/config", "skip\n")
	writeFile(t, dir, "dist/bundle.js", "skip\n")
	writeFile(t, dir, "src/app.js", "ok\n")

	files, warnings := selectFiles(dir, nil, 1<<20)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	rels := selectedRels(files)
	if !rels["index.js"] || !rels["src/app.js"] {
		t.Errorf("expected index.js and src/app.js in %v", rels)
	}
	for rel := range rels {
		if strings.HasPrefix(rel, "node_modules/") || strings.HasPrefix(rel, ".git/") || strings.HasPrefix(rel, "dist/") {
			t.Errorf("vendor path %s should be skipped", rel)
		}
	}
}

func TestSelectFilesKeepsHiddenFilesNotHiddenDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "PORT=3000\n")
	writeFile(t, dir, ".cache/entry", "skip\n")
	writeFile(t, dir, ".github/workflows/ci.yml", "skip\n")

	files, _ := selectFiles(dir, nil, 1<<20)
	rels := selectedRels(files)
	if !rels[".env"] {
		t.Error("hidden files are scannable; .env must be selected")
	}
	if len(rels) != 1 {
		t.Errorf("hidden directories should be pruned, got %v", rels)
	}
}

func TestSelectFilesSizeLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.js", strings.Repeat("x", 200))
	writeFile(t, dir, "small.js", "ok\n")

	files, warnings := selectFiles(dir, nil, 100)
	rels := selectedRels(files)
	if rels["big.js"] {
		t.Error("oversized file should be skipped")
	}
	if !rels["small.js"] {
		t.Error("small file should be selected")
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "big.js") && strings.Contains(w, "size limit") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a size-limit warning, got %v", warnings)
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		rel      string
		want     bool
	}{
		{"basename_glob", []string{"*.test.js"}, "src/app.test.js", true},
		{"full_path_glob", []string{"src/*.js"}, "src/app.js", true},
		{"dir_prefix_deep", []string{"testdata/*"}, "testdata/fixtures/case1.js", true},
		{"no_match", []string{"*.test.js"}, "src/app.js", false},
		{"exact_name", []string{"package-lock.json"}, "package-lock.json", true},
		{"nested_basename", []string{"package-lock.json"}, "pkg/package-lock.json", true},
		{"empty_patterns", nil, "src/app.js", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesAny(tt.patterns, tt.rel); got != tt.want {
				t.Errorf("matchesAny(%v, %q) = %v, want %v", tt.patterns, tt.rel, got, tt.want)
			}
		})
	}
}

func TestIsBinary(t *testing.T) {
	if isBinary([]byte("plain text content\n")) {
		t.Error("text flagged as binary")
	}
	if !isBinary([]byte{0x7f, 'E', 'L', 'F', 0x00, 0x01}) {
		t.Error("NUL-carrying content should be binary")
	}
	long := append(make([]byte, 0, 9000), []byte(strings.Repeat("a", 8500))...)
	long = append(long, 0x00)
	if isBinary(long) {
		t.Error("NUL past the sniff window should not flag the file")
	}
}

func TestReadFileLimited(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "f.txt", "hello")

	if _, err := readFileLimited(filepath.Join(dir, "f.txt"), 2); err == nil {
		t.Error("expected an error when the file exceeds the limit")
	}
	data, err := readFileLimited(filepath.Join(dir, "f.txt"), 100)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("read %q, want hello", data)
	}
}
