package site

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// newMarkdown returns the goldmark converter used for pages. Highlighting
// emits classed spans so the code stays plain text nodes around them.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// pageData holds the data passed to the HTML template for each page.
type pageData struct {
	Title      string
	SiteTitle  string
	Content    template.HTML
	TreeHTML   template.HTML
	BasePath   string
	LiveReload string
}

// renderMarkdown converts markdown source to an HTML body fragment.
func renderMarkdown(md goldmark.Markdown, source []byte) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

// executePage wraps rendered content in the page template.
func executePage(tmpl *template.Template, data pageData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing page template: %w", err)
	}
	return buf.String(), nil
}

// basePathFor returns the relative prefix from an output file back to the
// site root, e.g. "../../" for "a/b/page.html".
func basePathFor(outRel string) string {
	return strings.Repeat("../", strings.Count(outRel, "/"))
}

// extractTitle pulls the first "# " heading from markdown content, or falls
// back to the file name.
func extractTitle(content, relPath string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return cleanDisplayName(path.Base(relPath))
}

// rewriteMDLinks points relative links to markdown sources at the rendered
// pages, keeping any query and fragment. It returns the number of links
// changed.
func rewriteMDLinks(doc *goquery.Document) int {
	changed := 0
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u, err := url.Parse(href)
		if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
			return
		}
		ext := strings.ToLower(path.Ext(u.Path))
		if ext != ".md" && ext != ".mdx" {
			return
		}
		u.Path = strings.TrimSuffix(u.Path, path.Ext(u.Path)) + ".html"
		a.SetAttr("href", u.String())
		changed++
	})
	return changed
}
