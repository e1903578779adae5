package engine

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// skipDirs are generated/vendor directories never worth scanning.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	"vendor":       true,
	".next":        true,
	".cache":       true,
}

// fileEntry is one selected file, path relative to the scan root.
type fileEntry struct {
	rel  string
	abs  string
	size int64
}

// selectFiles walks root and returns the files eligible for content scanning.
// Exclusion globs match the slash-separated relative path or its base name.
// Oversized files are skipped with a warning; traversal errors become
// warnings, never failures.
func selectFiles(root string, excludes []string, maxSize int64) ([]fileEntry, []string) {
	var files []fileEntry
	var warnings []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("cannot access %s: %v", path, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if matchesAny(excludes, rel) {
			return nil
		}

		info, ierr := d.Info()
		if ierr != nil {
			warnings = append(warnings, fmt.Sprintf("cannot stat %s: %v", rel, ierr))
			return nil
		}
		if info.Size() > maxSize {
			warnings = append(warnings, fmt.Sprintf("skipped %s: exceeds size limit (%d bytes)", rel, info.Size()))
			return nil
		}

		files = append(files, fileEntry{rel: rel, abs: path, size: info.Size()})
		return nil
	})
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("walk aborted: %v", err))
	}

	return files, warnings
}

func matchesAny(patterns []string, rel string) bool {
	base := filepath.Base(rel)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
		// directory prefix patterns like "testdata/*" should also drop
		// deeper descendants
		if strings.HasSuffix(p, "/*") {
			if strings.HasPrefix(rel, strings.TrimSuffix(p, "*")) {
				return true
			}
		}
	}
	return false
}

// isBinary sniffs for NUL bytes in the leading chunk, the same cheap test
// git uses.
func isBinary(content []byte) bool {
	n := len(content)
	if n > 8000 {
		n = 8000
	}
	return bytes.IndexByte(content[:n], 0) >= 0
}

// readFileLimited reads a file fully; callers already bounded size during
// selection, the limit here guards files that grew since.
func readFileLimited(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("file exceeds size limit")
	}
	return os.ReadFile(path)
}
