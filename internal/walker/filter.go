package walker

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// toolDirs hold dependencies or caches, never documentation pages.
var toolDirs = map[string]bool{
	"node_modules":     true,
	"bower_components": true,
	"__pycache__":      true,
	"site-packages":    true,
}

// shouldExcludeDir reports whether a directory is pruned before its
// contents are looked at. Hidden directories (.git, .venv, .cache) never
// hold pages.
func shouldExcludeDir(name string) bool {
	if len(name) > 1 && name[0] == '.' && name != ".." {
		return true
	}
	return toolDirs[strings.ToLower(name)]
}

// prunedByExclude reports whether an exclude pattern of the form "dir/**"
// covers relDir, so the walk can skip the subtree instead of filtering its
// files one by one.
func prunedByExclude(relDir string, exclude []string) bool {
	for _, pattern := range exclude {
		dir, ok := strings.CutSuffix(normalizePattern(pattern), "/**")
		if !ok || dir == "" {
			continue
		}
		if matched, err := doublestar.Match(dir, relDir); err == nil && matched {
			return true
		}
	}
	return false
}

// MatchesInclude reports whether a source path is selected by the include
// patterns. No patterns select everything.
func MatchesInclude(relPath string, patterns []string) bool {
	return len(patterns) == 0 || matchesAny(relPath, patterns)
}

// MatchesExclude reports whether a source path is dropped by the exclude
// patterns.
func MatchesExclude(relPath string, patterns []string) bool {
	return len(patterns) > 0 && matchesAny(relPath, patterns)
}

func matchesAny(relPath string, patterns []string) bool {
	rel := filepath.ToSlash(relPath)
	for _, pattern := range patterns {
		if matchPattern(normalizePattern(pattern), rel) {
			return true
		}
	}
	return false
}

// matchPattern anchors a pattern holding a slash at the source root, like
// "guide/**/*.md". A slash-free pattern such as "*.html" names a file
// anywhere in the tree and is matched against the base name.
func matchPattern(pattern, rel string) bool {
	target := rel
	if !strings.Contains(pattern, "/") {
		target = path.Base(rel)
	}
	ok, err := doublestar.Match(pattern, target)
	return err == nil && ok
}

func normalizePattern(pattern string) string {
	return strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(pattern)), "/")
}
