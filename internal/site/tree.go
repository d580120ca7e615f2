package site

import (
	"fmt"
	"html"
	"path"
	"sort"
	"strings"
)

// PageRef names a rendered page for navigation.
type PageRef struct {
	Path  string // Slash-separated source path, e.g. "guide/intro.md".
	Title string // Display title, usually the first H1.
}

// FileTree represents a node in the sidebar navigation tree.
type FileTree struct {
	Name     string
	Title    string // Display name: page title, or a formatted directory name.
	Path     string // For files: source path. For dirs: directory path.
	IsDir    bool
	Children []*FileTree
}

// BuildTree constructs a FileTree from the pages of a site.
func BuildTree(pages []PageRef) *FileTree {
	root := &FileTree{Name: "", IsDir: true}
	dirs := map[string]*FileTree{"": root}

	for _, page := range pages {
		parts := strings.Split(page.Path, "/")
		parent := root
		for i := range parts[:len(parts)-1] {
			dirPath := strings.Join(parts[:i+1], "/")
			dir, ok := dirs[dirPath]
			if !ok {
				dir = &FileTree{
					Name:  parts[i],
					Title: formatDirName(parts[i]),
					Path:  dirPath,
					IsDir: true,
				}
				dirs[dirPath] = dir
				parent.Children = append(parent.Children, dir)
			}
			parent = dir
		}
		parent.Children = append(parent.Children, &FileTree{
			Name:  parts[len(parts)-1],
			Title: page.Title,
			Path:  page.Path,
		})
	}

	sortTree(root)
	return root
}

// sortTree recursively sorts tree children: directories first, then files, alphabetically.
func sortTree(node *FileTree) {
	sort.Slice(node.Children, func(i, j int) bool {
		if node.Children[i].IsDir != node.Children[j].IsDir {
			return node.Children[i].IsDir
		}
		return node.Children[i].Name < node.Children[j].Name
	})
	for _, child := range node.Children {
		if child.IsDir {
			sortTree(child)
		}
	}
}

// Contains reports whether the tree has a page at the source path p.
func (t *FileTree) Contains(p string) bool {
	for _, child := range t.Children {
		if child.IsDir && strings.HasPrefix(p, child.Path+"/") && child.Contains(p) {
			return true
		}
		if !child.IsDir && child.Path == p {
			return true
		}
	}
	return false
}

// ToHTML renders the tree as nested <ul><li> HTML for the sidebar.
// basePath is the relative prefix back to the site root, e.g. "../" for a
// page one level deep. The directories leading to activePath are expanded.
func (t *FileTree) ToHTML(activePath, basePath string) string {
	var b strings.Builder
	homeActive := ""
	if isIndex(activePath) && !strings.Contains(activePath, "/") {
		homeActive = ` class="active"`
	}
	fmt.Fprintf(&b, `<ul><li class="file home-link"><a href="%sindex.html"%s>Home</a></li></ul>`+"\n", basePath, homeActive)

	renderChildren(&b, t, activePath, basePath)
	return b.String()
}

func renderChildren(b *strings.Builder, node *FileTree, activePath, basePath string) {
	if len(node.Children) == 0 {
		return
	}
	b.WriteString("<ul>\n")
	for _, child := range node.Children {
		if child.IsDir {
			class := "dir"
			if strings.HasPrefix(activePath, child.Path+"/") {
				class += " expanded"
			}
			fmt.Fprintf(b, `<li class="%s"><span class="dir-toggle">%s</span>`+"\n", class, html.EscapeString(child.Title))
			renderChildren(b, child, activePath, basePath)
			b.WriteString("</li>\n")
			continue
		}
		if node.Path == "" && isIndex(child.Path) {
			continue
		}
		label := child.Title
		if label == "" {
			label = cleanDisplayName(child.Name)
		}
		active := ""
		if child.Path == activePath {
			active = ` class="active"`
		}
		fmt.Fprintf(b, `<li class="file"><a href="%s%s"%s>%s</a></li>`+"\n",
			basePath, pagePathToHTML(child.Path), active, html.EscapeString(label))
	}
	b.WriteString("</ul>\n")
}

// pagePathToHTML converts a markdown source path to its output path.
func pagePathToHTML(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".mdx":
		return strings.TrimSuffix(p, path.Ext(p)) + ".html"
	}
	return p
}

func isIndex(p string) bool {
	return strings.TrimSuffix(path.Base(p), path.Ext(p)) == "index"
}

// cleanDisplayName strips the markdown extension from a file name.
func cleanDisplayName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// formatDirName converts a directory slug to a display name:
// "getting-started" becomes "Getting Started".
func formatDirName(name string) string {
	words := strings.FieldsFunc(name, func(c rune) bool {
		return c == '-' || c == '_'
	})
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
