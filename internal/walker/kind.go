package walker

import (
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Kind classifies a documentation source file by what the builder does with it.
type Kind int

const (
	// KindOther files are not part of the published site and are skipped.
	KindOther Kind = iota
	// KindPage files are markdown rendered to HTML pages.
	KindPage
	// KindHTML files are copied through the annotation processor.
	KindHTML
	// KindAsset files are copied verbatim.
	KindAsset
	// KindShared files are resources used across pages: anything under a
	// SharedDirs directory, plus scripts and stylesheets. They are copied
	// verbatim once, even when their extension is a page or HTML one, and
	// never appear in the navigation.
	KindShared
)

// SharedDirs are directory names whose whole subtree is shared.
var SharedDirs = []string{"images", "snippets"}

// sharedExtensions are always shared, wherever they live.
var sharedExtensions = []string{".css", ".js"}

func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindHTML:
		return "html"
	case KindAsset:
		return "asset"
	case KindShared:
		return "shared"
	default:
		return "other"
	}
}

// extensionToKind maps lower-case file extensions to their kind.
var extensionToKind = map[string]Kind{
	".md":  KindPage,
	".mdx": KindPage,

	".html": KindHTML,
	".htm":  KindHTML,

	".json": KindAsset,
	".yml":  KindAsset,
	".yaml": KindAsset,
	".css":  KindAsset,
	".js":   KindAsset,
	".svg":  KindAsset,
	".png":  KindAsset,
	".jpg":  KindAsset,
	".jpeg": KindAsset,
	".gif":  KindAsset,
	".webp": KindAsset,
	".ico":  KindAsset,
}

// DetectKind returns the kind for a file name or path.
func DetectKind(name string) Kind {
	return extensionToKind[strings.ToLower(filepath.Ext(name))]
}

// Classify returns the kind of a slash-separated path relative to the
// source root. Unsupported extensions stay KindOther wherever they are.
func Classify(relPath string) Kind {
	kind := DetectKind(relPath)
	if kind == KindOther {
		return kind
	}
	if slices.Contains(sharedExtensions, strings.ToLower(path.Ext(relPath))) {
		return KindShared
	}
	for _, dir := range strings.Split(path.Dir(relPath), "/") {
		if slices.Contains(SharedDirs, dir) {
			return KindShared
		}
	}
	return kind
}

// IsText reports whether files of this kind are text that may be inspected
// for binary content.
func (k Kind) IsText() bool {
	return k == KindPage || k == KindHTML
}
