package site

import (
	"strings"
	"testing"
)

func TestBuildTree(t *testing.T) {
	pages := []PageRef{
		{Path: "index.md", Title: "Home"},
		{Path: "guide/setup.md", Title: "Setup"},
		{Path: "guide/annotations.mdx", Title: "Annotations"},
		{Path: "reference/config/keys.md", Title: "Keys"},
		{Path: "faq.md", Title: "FAQ"},
	}

	tree := BuildTree(pages)

	if !tree.IsDir {
		t.Error("root should be a directory")
	}
	// Directories first (guide, reference), then files (faq.md, index.md).
	names := make([]string, len(tree.Children))
	for i, c := range tree.Children {
		names[i] = c.Name
	}
	want := []string{"guide", "reference", "faq.md", "index.md"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("root children = %v, want %v", names, want)
	}

	guide := tree.Children[0]
	if guide.Title != "Guide" || guide.Path != "guide" {
		t.Errorf("guide node = %+v", guide)
	}
	if len(guide.Children) != 2 || guide.Children[0].Name != "annotations.mdx" {
		t.Errorf("guide children not sorted: %+v", guide.Children)
	}

	config := tree.Children[1].Children[0]
	if !config.IsDir || config.Path != "reference/config" {
		t.Errorf("nested dir = %+v", config)
	}
	if config.Children[0].Title != "Keys" {
		t.Errorf("nested page title = %q", config.Children[0].Title)
	}
}

func TestBuildTreeEmpty(t *testing.T) {
	tree := BuildTree(nil)
	if len(tree.Children) != 0 {
		t.Errorf("empty tree children = %d, want 0", len(tree.Children))
	}
}

func TestTreeContains(t *testing.T) {
	tree := BuildTree([]PageRef{{Path: "a/b/c.md"}, {Path: "index.md"}})

	for p, want := range map[string]bool{
		"a/b/c.md": true,
		"index.md": true,
		"a/b/d.md": false,
		"a/b":      false,
		"c.md":     false,
	} {
		if got := tree.Contains(p); got != want {
			t.Errorf("Contains(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestTreeToHTML(t *testing.T) {
	tree := BuildTree([]PageRef{
		{Path: "index.md", Title: "Welcome"},
		{Path: "getting-started/install.md", Title: "Install <fast>"},
		{Path: "other/page.md"},
	})

	out := tree.ToHTML("getting-started/install.md", "../")

	checks := []string{
		`<a href="../index.html">Home</a>`,
		`<li class="dir expanded"><span class="dir-toggle">Getting Started</span>`,
		`<li class="dir"><span class="dir-toggle">Other</span>`,
		`<a href="../getting-started/install.html" class="active">Install &lt;fast&gt;</a>`,
		`<a href="../other/page.html">page</a>`,
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("ToHTML() missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Welcome") {
		t.Error("root index page should only appear as the Home link")
	}

	home := tree.ToHTML("index.md", "")
	if !strings.Contains(home, `<a href="index.html" class="active">Home</a>`) {
		t.Errorf("Home link should be active on index page:\n%s", home)
	}
}

func TestPagePathToHTML(t *testing.T) {
	tests := map[string]string{
		"index.md":        "index.html",
		"guide/intro.mdx": "guide/intro.html",
		"guide/UPPER.MD":  "guide/UPPER.html",
		"already.html":    "already.html",
		"dotted.name.md":  "dotted.name.html",
	}
	for in, want := range tests {
		if got := pagePathToHTML(in); got != want {
			t.Errorf("pagePathToHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDirName(t *testing.T) {
	tests := map[string]string{
		"guide":           "Guide",
		"getting-started": "Getting Started",
		"api_reference":   "Api Reference",
	}
	for in, want := range tests {
		if got := formatDirName(in); got != want {
			t.Errorf("formatDirName(%q) = %q, want %q", in, got, want)
		}
	}
}
