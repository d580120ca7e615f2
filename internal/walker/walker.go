// Package walker discovers the documentation sources under a directory.
package walker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxFileSize is the maximum size of a page or HTML file (4 MB).
// Assets are not limited.
const DefaultMaxFileSize int64 = 4 << 20

// FileInfo holds metadata about a single file discovered during traversal.
type FileInfo struct {
	Path        string // Absolute path on disk.
	RelPath     string // Slash-separated path relative to the root directory.
	Size        int64  // File size in bytes.
	Kind        Kind   // What the builder does with the file.
	ContentHash string // SHA-256 hex digest of the file content.
}

// Config controls the behaviour of Walk.
type Config struct {
	RootDir     string   // Root directory to walk.
	Include     []string // Glob patterns; only matching files are included.
	Exclude     []string // Glob patterns; matching files are excluded.
	MaxFileSize int64    // Text files larger than this are skipped (0 = use default).
	SkipDirs    []string // Extra absolute directories never descended into.
}

// Walk traverses the directory tree rooted at config.RootDir and returns
// every file that passes filtering, sorted by RelPath. Files of KindOther are
// returned too so callers can count what they skip. Text files that look
// binary or exceed the size limit are dropped. A .gitignore at the root is
// honoured.
func Walk(config Config) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", root)
	}

	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	skip := make(map[string]bool, len(config.SkipDirs))
	for _, d := range config.SkipDirs {
		if abs, err := filepath.Abs(d); err == nil {
			skip[abs] = true
		}
	}

	gitignorePatterns := loadGitignore(filepath.Join(root, ".gitignore"))

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if shouldExcludeDir(d.Name()) || skip[path] {
				return filepath.SkipDir
			}
			if rel, err := filepath.Rel(root, path); err == nil && prunedByExclude(filepath.ToSlash(rel), config.Exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, ok := Stat(root, path, config.Include, config.Exclude, gitignorePatterns, maxSize)
		if ok {
			files = append(files, info)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// Stat applies the Walk filters to a single file under root. It is used
// to rebuild individual files after a change. ok is false when the file is
// filtered out or cannot be read.
func Stat(root, path string, include, exclude, gitignore []string, maxSize int64) (FileInfo, bool) {
	relPath, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return FileInfo{}, false
	}
	relPath = filepath.ToSlash(relPath)

	if matchesGitignore(relPath, gitignore) {
		return FileInfo{}, false
	}
	if !MatchesInclude(relPath, include) || MatchesExclude(relPath, exclude) {
		return FileInfo{}, false
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return FileInfo{}, false
	}

	kind := Classify(relPath)
	if kind.IsText() {
		if maxSize <= 0 {
			maxSize = DefaultMaxFileSize
		}
		if info.Size() > maxSize || isBinary(path) {
			return FileInfo{}, false
		}
	}

	hash, err := hashFile(path)
	if err != nil {
		return FileInfo{}, false
	}

	return FileInfo{
		Path:        path,
		RelPath:     relPath,
		Size:        info.Size(),
		Kind:        kind,
		ContentHash: hash,
	}, true
}

// LoadGitignore returns the patterns of the .gitignore at root, if any.
func LoadGitignore(root string) []string {
	return loadGitignore(filepath.Join(root, ".gitignore"))
}

// isBinary reads the first 512 bytes of a file and checks for NUL bytes,
// which is a simple but effective heuristic for binary content.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true // treat unreadable files as binary
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}

	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}

// hashFile computes the SHA-256 digest of the given file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// loadGitignore reads a .gitignore file and returns its non-empty,
// non-comment lines as patterns.
func loadGitignore(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// matchesGitignore checks if a relative path matches any gitignore pattern.
// Patterns without a slash match any path component; a trailing slash
// restricts the pattern to directories.
func matchesGitignore(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	parts := strings.Split(relPath, "/")
	dirs := parts[:len(parts)-1]
	base := parts[len(parts)-1]

	for _, pattern := range patterns {
		dirOnly := strings.HasSuffix(pattern, "/")
		pattern = strings.Trim(pattern, "/")
		if pattern == "" {
			continue
		}

		if strings.Contains(pattern, "/") {
			if ok, _ := filepath.Match(pattern, relPath); ok {
				return true
			}
			if ok, _ := filepath.Match(pattern+"/*", relPath); ok {
				return true
			}
			continue
		}

		for _, dir := range dirs {
			if ok, _ := filepath.Match(pattern, dir); ok {
				return true
			}
		}
		if !dirOnly {
			if ok, _ := filepath.Match(pattern, base); ok {
				return true
			}
		}
	}
	return false
}
