// Package site builds an annotated static documentation site from a
// directory of markdown, HTML and asset files.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"

	"github.com/ziadkadry99/codenotes/internal/annotate"
	"github.com/ziadkadry99/codenotes/internal/progress"
	"github.com/ziadkadry99/codenotes/internal/walker"
)

// ErrUnsafeOutput is returned when cleaning the output directory would
// remove the sources.
var ErrUnsafeOutput = errors.New("output directory contains the source directory")

// Options configure a Builder.
type Options struct {
	SourceDir string
	OutputDir string
	Title     string
	Include   []string
	Exclude   []string
	// Clean removes the output directory before a full build.
	Clean bool
	// Annotate configures the code annotation pass.
	Annotate annotate.Options
	// LiveReload, when set, is the websocket path advertised to pages.
	LiveReload string
	Reporter   progress.Reporter
	Logger     *slog.Logger
}

// Result summarises a build.
type Result struct {
	Pages       int
	HTML        int
	Assets      int
	Shared      int
	Skipped     int
	Annotations int
	// Written lists the slash-separated output paths that were written.
	Written []string
}

// Copied returns the number of files written to the output directory.
func (r Result) Copied() int { return r.Pages + r.HTML + r.Assets + r.Shared }

func (r Result) String() string {
	return fmt.Sprintf("Build complete: %d files copied, %d files skipped", r.Copied(), r.Skipped)
}

// Builder renders a source directory into an output directory. A Builder
// is not safe for concurrent use.
type Builder struct {
	opts      Options
	srcRoot   string
	outRoot   string
	md        goldmark.Markdown
	tmpl      *template.Template
	processor *annotate.Processor
	logger    *slog.Logger

	tree      *FileTree
	gitignore []string
	hashes    map[string]string
}

// NewBuilder validates opts and returns a Builder.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.SourceDir == "" || opts.OutputDir == "" {
		return nil, errors.New("site: source and output directories are required")
	}
	srcRoot, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("site: resolve source: %w", err)
	}
	outRoot, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("site: resolve output: %w", err)
	}
	if srcRoot == outRoot || within(srcRoot, outRoot) {
		return nil, fmt.Errorf("site: %w", ErrUnsafeOutput)
	}
	if opts.Title == "" {
		opts.Title = "Documentation"
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.Nop{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Annotate.Logger == nil {
		opts.Annotate.Logger = logger
	}

	processor, err := annotate.NewProcessor(opts.Annotate)
	if err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}
	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	return &Builder{
		opts:      opts,
		srcRoot:   srcRoot,
		outRoot:   outRoot,
		md:        newMarkdown(),
		tmpl:      tmpl,
		processor: processor,
		logger:    logger,
		hashes:    make(map[string]string),
	}, nil
}

// SourceDir returns the absolute source directory.
func (b *Builder) SourceDir() string { return b.srcRoot }

// OutputDir returns the absolute output directory.
func (b *Builder) OutputDir() string { return b.outRoot }

// BuildAll builds every source file. With Clean set the output directory is
// removed first.
func (b *Builder) BuildAll(ctx context.Context) (Result, error) {
	var result Result

	if b.opts.Clean {
		if err := os.RemoveAll(b.outRoot); err != nil {
			return result, fmt.Errorf("cleaning %s: %w", b.outRoot, err)
		}
		b.logger.Debug("cleaned output directory", slog.String("dir", b.outRoot))
	}
	if err := os.MkdirAll(b.outRoot, 0o755); err != nil {
		return result, err
	}

	files, err := walker.Walk(walker.Config{
		RootDir:  b.srcRoot,
		Include:  b.opts.Include,
		Exclude:  b.opts.Exclude,
		SkipDirs: []string{b.outRoot},
	})
	if err != nil {
		return result, err
	}
	b.gitignore = walker.LoadGitignore(b.srcRoot)
	b.tree = b.buildTree(files)

	if err := b.writeAssets(&result); err != nil {
		return result, err
	}

	b.opts.Reporter.Start(len(files), "Building site")
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := b.buildFile(f, &result); err != nil {
			return result, fmt.Errorf("building %s: %w", f.RelPath, err)
		}
		b.opts.Reporter.Update(i+1, f.RelPath)
	}
	b.opts.Reporter.Finish(result.String())

	b.logger.Info("site built",
		slog.Int("pages", result.Pages),
		slog.Int("html", result.HTML),
		slog.Int("assets", result.Assets),
		slog.Int("shared", result.Shared),
		slog.Int("skipped", result.Skipped),
		slog.Int("annotations", result.Annotations),
	)
	return result, nil
}

// BuildFiles rebuilds the given source files, absolute or relative to the
// source directory. Files whose content is unchanged since the last build
// are skipped. A page missing from the navigation triggers a full build so
// every sidebar picks it up.
func (b *Builder) BuildFiles(ctx context.Context, paths []string) (Result, error) {
	if b.tree == nil {
		return b.BuildAll(ctx)
	}

	var result Result
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(b.srcRoot, p)
		}
		if within(abs, b.outRoot) {
			continue
		}
		f, ok := walker.Stat(b.srcRoot, abs, b.opts.Include, b.opts.Exclude, b.gitignore, 0)
		if !ok {
			result.Skipped++
			continue
		}
		if f.Kind == walker.KindPage && !b.tree.Contains(f.RelPath) {
			b.logger.Debug("new page, rebuilding site", slog.String("path", f.RelPath))
			return b.rebuildAll(ctx)
		}
		if b.hashes[f.RelPath] == f.ContentHash {
			result.Skipped++
			continue
		}
		if err := b.buildFile(f, &result); err != nil {
			return result, fmt.Errorf("building %s: %w", f.RelPath, err)
		}
	}

	if len(result.Written) > 0 {
		b.logger.Info("rebuilt files", slog.Any("paths", result.Written))
	}
	return result, nil
}

// rebuildAll runs a full build without cleaning, so files already served
// stay in place.
func (b *Builder) rebuildAll(ctx context.Context) (Result, error) {
	clean := b.opts.Clean
	b.opts.Clean = false
	defer func() { b.opts.Clean = clean }()
	return b.BuildAll(ctx)
}

func (b *Builder) buildTree(files []walker.FileInfo) *FileTree {
	var pages []PageRef
	for _, f := range files {
		if f.Kind != walker.KindPage {
			continue
		}
		title := cleanDisplayName(path.Base(f.RelPath))
		if content, err := os.ReadFile(f.Path); err == nil {
			title = extractTitle(string(content), f.RelPath)
		}
		pages = append(pages, PageRef{Path: f.RelPath, Title: title})
	}
	return BuildTree(pages)
}

func (b *Builder) writeAssets(result *Result) error {
	assets := map[string]string{
		annotate.StylesheetFile: annotate.Stylesheet(),
		annotate.ScriptFile:     annotate.Script(),
		layoutStylesheetFile:    layoutCSS,
		layoutScriptFile:        layoutJS,
	}
	for name, content := range assets {
		if err := os.WriteFile(filepath.Join(b.outRoot, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		result.Written = append(result.Written, name)
	}
	return nil
}

func (b *Builder) buildFile(f walker.FileInfo, result *Result) error {
	var (
		outRel string
		err    error
	)
	switch f.Kind {
	case walker.KindPage:
		outRel, err = b.buildPage(f, result)
		if err == nil {
			result.Pages++
		}
	case walker.KindHTML:
		outRel, err = b.buildHTML(f, result)
		if err == nil {
			result.HTML++
		}
	case walker.KindAsset, walker.KindShared:
		outRel = f.RelPath
		err = copyFile(f.Path, filepath.Join(b.outRoot, filepath.FromSlash(outRel)))
		if err == nil && f.Kind == walker.KindShared {
			result.Shared++
		} else if err == nil {
			result.Assets++
		}
	default:
		result.Skipped++
		b.logger.Debug("skipping unsupported file", slog.String("path", f.RelPath))
		return nil
	}
	if err != nil {
		return err
	}
	b.hashes[f.RelPath] = f.ContentHash
	result.Written = append(result.Written, outRel)
	return nil
}

func (b *Builder) buildPage(f walker.FileInfo, result *Result) (string, error) {
	source, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	content, err := renderMarkdown(b.md, source)
	if err != nil {
		return "", err
	}

	outRel := pagePathToHTML(f.RelPath)
	basePath := basePathFor(outRel)
	page, err := executePage(b.tmpl, pageData{
		Title:      extractTitle(string(source), f.RelPath),
		SiteTitle:  b.opts.Title,
		Content:    template.HTML(content),
		TreeHTML:   template.HTML(b.tree.ToHTML(f.RelPath, basePath)),
		BasePath:   basePath,
		LiveReload: b.opts.LiveReload,
	})
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parsing rendered page: %w", err)
	}
	rewriteMDLinks(doc)
	return outRel, b.annotateAndWrite(doc, outRel, result)
}

func (b *Builder) buildHTML(f walker.FileInfo, result *Result) (string, error) {
	in, err := os.Open(f.Path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	doc, err := goquery.NewDocumentFromReader(in)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	annotate.InjectAssets(doc, basePathFor(f.RelPath))
	if b.opts.LiveReload != "" && doc.Find(`meta[name="codenotes-live"]`).Length() == 0 {
		meta := fmt.Sprintf(`<meta name="codenotes-live" content="%s">`, template.HTMLEscapeString(b.opts.LiveReload))
		doc.Find("head").AppendHtml(meta)
	}
	return f.RelPath, b.annotateAndWrite(doc, f.RelPath, result)
}

func (b *Builder) annotateAndWrite(doc *goquery.Document, outRel string, result *Result) error {
	report := b.processor.ProcessDocument(doc)
	b.processor.Reset()
	result.Annotations += report.Annotations

	var buf bytes.Buffer
	if err := goquery.Render(&buf, doc.Selection); err != nil {
		return fmt.Errorf("rendering %s: %w", outRel, err)
	}
	return writeFile(filepath.Join(b.outRoot, filepath.FromSlash(outRel)), buf.Bytes())
}

func writeFile(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// within reports whether p is inside dir.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}
