package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RequestExt is the extension of request files found in directories.
const RequestExt = ".json"

// excludedDirs are never entered while scanning.
var excludedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
}

// ScanOptions configures request file discovery
type ScanOptions struct {
	// Recursive descends into subdirectories
	Recursive bool
	// MaxDepth limits recursion depth (0 = unlimited, 1 = the directory itself only)
	MaxDepth int
}

// ScanResult contains the results of a scan
type ScanResult struct {
	// Files contains the absolute paths of all request files
	Files []string
	// Errors contains non-fatal errors encountered while scanning
	Errors []error
}

// CollectRequestFiles resolves paths to request files. A path naming a file
// is used as given regardless of its extension; a directory contributes
// its .json files. A path that does not exist is a fatal error.
func CollectRequestFiles(paths []string, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{}
	seen := make(map[string]bool)

	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return
		}
		if !seen[abs] {
			seen[abs] = true
			result.Files = append(result.Files, abs)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		if err := scanDir(p, opts, add, result); err != nil {
			return nil, err
		}
	}

	sort.Strings(result.Files)
	return result, nil
}

func scanDir(root string, opts ScanOptions, add func(string), result *ScanResult) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		if path == root {
			return nil
		}

		if d.IsDir() {
			if !opts.Recursive || excludedDirs[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 {
				rel, _ := filepath.Rel(root, path)
				if strings.Count(rel, string(filepath.Separator))+1 >= opts.MaxDepth {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if strings.EqualFold(filepath.Ext(d.Name()), RequestExt) {
			add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory %s: %w", root, err)
	}
	return nil
}
