package site

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/ziadkadry99/codenotes/internal/annotate"
	"github.com/ziadkadry99/codenotes/internal/progress"
)

func sampleDocs(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to determine test file location")
	}
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "sample_docs")
}

func newBuilder(t *testing.T, src, out string, mutate func(*Options)) *Builder {
	t.Helper()
	opts := Options{
		SourceDir: src,
		OutputDir: out,
		Title:     "Sample",
		Clean:     true,
		Annotate:  annotate.Options{OrdinalLists: true},
	}
	if mutate != nil {
		mutate(&opts)
	}
	b, err := NewBuilder(opts)
	if err != nil {
		t.Fatalf("NewBuilder() error: %v", err)
	}
	return b
}

func readDoc(t *testing.T, path string) *goquery.Document {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func tooltipTexts(doc *goquery.Document) []string {
	return doc.Find("." + annotate.ClassTooltip).Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildAllSampleDocs(t *testing.T) {
	out := t.TempDir()
	var log bytes.Buffer
	b := newBuilder(t, sampleDocs(t), out, func(o *Options) {
		o.LiveReload = "/ws"
		o.Reporter = &progress.CIReporter{Out: &log}
	})

	result, err := b.BuildAll(context.Background())
	if err != nil {
		t.Fatalf("BuildAll() error: %v", err)
	}

	if result.Pages != 2 || result.HTML != 1 || result.Assets != 1 || result.Shared != 2 {
		t.Errorf("result = %+v, want 2 pages, 1 html, 1 asset, 2 shared", result)
	}
	// .gitignore and notes.txt.
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}
	if result.Annotations != 6 {
		t.Errorf("Annotations = %d, want 6", result.Annotations)
	}
	if !bytes.Contains(log.Bytes(), []byte("Build complete: 6 files copied, 2 files skipped")) {
		t.Errorf("progress output missing summary:\n%s", log.String())
	}

	for _, name := range []string{
		"index.html", "guide/annotations.html", "reference.html", "img/logo.svg",
		"images/flow.svg", "snippets/install.md",
		annotate.StylesheetFile, annotate.ScriptFile, "site.css", "site.js",
	} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(name))); err != nil {
			t.Errorf("expected output %s: %v", name, err)
		}
	}
	for _, name := range []string{"notes.txt", "drafts/wip.html", "index.md", "snippets/install.html"} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(name))); err == nil {
			t.Errorf("unexpected output %s", name)
		}
	}

	snippet, err := os.ReadFile(filepath.Join(sampleDocs(t), "snippets", "install.md"))
	if err != nil {
		t.Fatal(err)
	}
	copied, err := os.ReadFile(filepath.Join(out, "snippets", "install.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(snippet, copied) {
		t.Error("shared snippet should be copied verbatim")
	}

	guide := readDoc(t, filepath.Join(out, "guide", "annotations.html"))
	if got := tooltipTexts(guide); !slices.Equal(got, []string{"Defines f.", "Returns one.", "Every page, unfiltered."}) {
		t.Errorf("guide tooltips = %q", got)
	}
	if !guide.Find("ol").HasClass(annotate.ClassHiddenList) {
		t.Error("guide explanation list should be hidden")
	}
	if got := guide.Find("title").Text(); got != "Code annotations | Sample" {
		t.Errorf("guide title = %q", got)
	}
	if got := guide.Find(`link[href="../codenotes.css"]`).Length(); got != 1 {
		t.Errorf("guide should link ../codenotes.css once, got %d", got)
	}
	if got := guide.Find(`meta[name="codenotes-live"]`).AttrOr("content", ""); got != "/ws" {
		t.Errorf("live reload meta = %q, want /ws", got)
	}
	if guide.Find(`#sidebar-tree a.active`).Text() != "Code annotations" {
		t.Error("sidebar should mark the current page active")
	}

	index := readDoc(t, filepath.Join(out, "index.html"))
	if got := index.Find(`.page-content a`).First().AttrOr("href", ""); got != "guide/annotations.html" {
		t.Errorf("markdown link rewritten to %q", got)
	}
	if got := tooltipTexts(index); !slices.Equal(got, []string{"Markdown and HTML sources live here.", "The generated site is written here."}) {
		t.Errorf("index tooltips = %q", got)
	}

	ref := readDoc(t, filepath.Join(out, "reference.html"))
	if got := tooltipTexts(ref); !slices.Equal(got, []string{"Declares the page encoding."}) {
		t.Errorf("reference tooltips = %q", got)
	}
	if ref.Find(`head link[href="codenotes.css"]`).Length() != 1 {
		t.Error("copied html should get the stylesheet injected")
	}
	if ref.Find(`body script[src="codenotes.js"]`).Length() != 1 {
		t.Error("copied html should get the script injected")
	}
	if ref.Find(`meta[name="codenotes-live"]`).Length() != 1 {
		t.Error("copied html should advertise live reload")
	}
}

func TestBuildAllIdempotentOutput(t *testing.T) {
	out := t.TempDir()
	b := newBuilder(t, sampleDocs(t), out, nil)

	if _, err := b.BuildAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(filepath.Join(out, "reference.html"))
	if err != nil {
		t.Fatal(err)
	}

	// Annotating the already annotated output changes nothing.
	second := t.TempDir()
	b2 := newBuilder(t, out, second, nil)
	if _, err := b2.BuildAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	again, err := os.ReadFile(filepath.Join(second, "reference.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, again) {
		t.Errorf("re-annotating changed output:\nfirst:  %s\nsecond: %s", first, again)
	}
}

func TestBuildAllStepListAfterPlainBlock(t *testing.T) {
	src := t.TempDir()
	write(t, filepath.Join(src, "install.md"), "# Install\n\n"+
		"```python\ndef f():  # (1)!\n    pass\n```\n\n"+
		"1. Defines f.\n\n"+
		"Then install it:\n\n"+
		"```sh\npip install thing\n```\n\n"+
		"1. Install the package.\n2. Run the tool.\n")
	out := t.TempDir()

	if _, err := newBuilder(t, src, out, nil).BuildAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	doc := readDoc(t, filepath.Join(out, "install.html"))

	if got := tooltipTexts(doc); !slices.Equal(got, []string{"Defines f."}) {
		t.Errorf("tooltips = %q, want [Defines f.]", got)
	}
	lists := doc.Find("article ol")
	if lists.Length() != 2 {
		t.Fatalf("found %d ordered lists, want 2", lists.Length())
	}
	if !lists.Eq(0).HasClass(annotate.ClassHiddenList) {
		t.Error("explanation list should be hidden")
	}
	if lists.Eq(1).HasClass(annotate.ClassHiddenList) {
		t.Error("step list after an unannotated block should stay visible")
	}
}

func TestBuildAllClean(t *testing.T) {
	src := t.TempDir()
	write(t, filepath.Join(src, "index.md"), "# Home\n")

	for _, clean := range []bool{true, false} {
		out := t.TempDir()
		stale := filepath.Join(out, "stale.html")
		write(t, stale, "old")

		b := newBuilder(t, src, out, func(o *Options) { o.Clean = clean })
		if _, err := b.BuildAll(context.Background()); err != nil {
			t.Fatal(err)
		}
		_, err := os.Stat(stale)
		if clean && err == nil {
			t.Error("clean build should remove stale files")
		}
		if !clean && err != nil {
			t.Error("non-clean build should keep existing files")
		}
	}
}

func TestBuildFiles(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	write(t, filepath.Join(src, "index.md"), "# Home\n")
	write(t, filepath.Join(src, "page.html"), "<html><body><pre><code>x  # (1)!</code></pre><ul><li>1. First.</li></ul></body></html>")

	b := newBuilder(t, src, out, nil)
	ctx := context.Background()
	if _, err := b.BuildAll(ctx); err != nil {
		t.Fatal(err)
	}

	// Unchanged content is skipped.
	result, err := b.BuildFiles(ctx, []string{"page.html"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Skipped != 1 || len(result.Written) != 0 {
		t.Errorf("unchanged rebuild = %+v", result)
	}

	write(t, filepath.Join(src, "page.html"), "<html><body><pre><code>y  # (1)!</code></pre><ul><li>1. Second.</li></ul></body></html>")
	result, err = b.BuildFiles(ctx, []string{filepath.Join(src, "page.html")})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(result.Written, []string{"page.html"}) || result.Annotations != 1 {
		t.Errorf("changed rebuild = %+v", result)
	}
	if got := tooltipTexts(readDoc(t, filepath.Join(out, "page.html"))); !slices.Equal(got, []string{"Second."}) {
		t.Errorf("rebuilt tooltips = %q", got)
	}

	// A new page rebuilds every page so navigation includes it, without cleaning.
	marker := filepath.Join(out, "keep.txt")
	write(t, marker, "x")
	write(t, filepath.Join(src, "guide", "new.md"), "# New page\n")
	result, err = b.BuildFiles(ctx, []string{"guide/new.md"})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(result.Written, "guide/new.html") || !slices.Contains(result.Written, "index.html") {
		t.Errorf("new page rebuild wrote %v", result.Written)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Error("incremental full rebuild must not clean the output")
	}
	index := readDoc(t, filepath.Join(out, "index.html"))
	if index.Find(`#sidebar-tree a[href="guide/new.html"]`).Length() != 1 {
		t.Error("sidebar should link the new page")
	}

	// Files outside the filters are counted as skipped.
	result, err = b.BuildFiles(ctx, []string{"missing.md"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Skipped != 1 {
		t.Errorf("missing file rebuild = %+v", result)
	}
}

func TestBuildFilesBeforeBuildAll(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	write(t, filepath.Join(src, "index.md"), "# Home\n")

	result, err := newBuilder(t, src, out, nil).BuildFiles(context.Background(), []string{"index.md"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Pages != 1 {
		t.Errorf("first BuildFiles should run a full build, got %+v", result)
	}
}

func TestBuildAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newBuilder(t, sampleDocs(t), t.TempDir(), nil).BuildAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("BuildAll() error = %v, want context.Canceled", err)
	}
}

func TestNewBuilderRejectsUnsafeOutput(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "docs")

	tests := map[string]Options{
		"same directory":      {SourceDir: src, OutputDir: src},
		"output above source": {SourceDir: src, OutputDir: root},
	}
	for name, opts := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewBuilder(opts)
			if !errors.Is(err, ErrUnsafeOutput) {
				t.Errorf("NewBuilder() error = %v, want ErrUnsafeOutput", err)
			}
		})
	}

	if _, err := NewBuilder(Options{SourceDir: src}); err == nil {
		t.Error("missing output directory should be rejected")
	}
	if _, err := NewBuilder(Options{SourceDir: src, OutputDir: filepath.Join(src, "build"), Annotate: annotate.Options{Display: "emoji"}}); err == nil {
		t.Error("invalid annotate options should be rejected")
	}
}
