package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/codenotes/internal/annotate"
	"github.com/ziadkadry99/codenotes/internal/walker"
	"github.com/ziadkadry99/codenotes/internal/watch"
)

var (
	annotateInject      bool
	annotateWriteAssets bool
	annotateWatch       bool
)

var annotateCmd = &cobra.Command{
	Use:   "annotate DIR",
	Short: "Annotate code blocks in existing HTML files in place",
	Long: `Rewrites every HTML file under DIR in place, turning marker comments in code
blocks into annotations. Files already annotated are left untouched, so the
command can run repeatedly over the same output, for example after another
static site generator.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().BoolVar(&annotateInject, "inject-assets", false, "link codenotes.css and codenotes.js into each page")
	annotateCmd.Flags().BoolVar(&annotateWriteAssets, "write-assets", true, "write codenotes.css and codenotes.js into DIR")
	annotateCmd.Flags().BoolVarP(&annotateWatch, "watch", "w", false, "keep running and annotate files as they change")
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	opts, err := annotateOptions(cfg, logger)
	if err != nil {
		return err
	}
	p, err := annotate.NewProcessor(opts)
	if err != nil {
		return err
	}
	a := &inPlaceAnnotator{root: args[0], processor: p, inject: annotateInject, logger: logger}

	if annotateWriteAssets {
		if err := writeAnnotationAssets(a.root); err != nil {
			return err
		}
	}

	stats, err := a.annotateDir()
	if err != nil {
		return err
	}
	fmt.Printf("Annotated %d of %d HTML files (%d annotations)\n", stats.changed, stats.files, stats.annotations)

	if !annotateWatch {
		return nil
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	w, err := watch.NewWatcher(a.root, cfg.Watch.Ignore, logger)
	if err != nil {
		return err
	}
	stop := watch.Debounced(w, debounceDelay(cfg), func(paths []string) {
		for _, path := range paths {
			if walker.DetectKind(path) != walker.KindHTML {
				continue
			}
			if _, err := a.annotateFile(path); err != nil {
				logger.Warn("annotating changed file", slog.String("path", path), slog.Any("error", err))
			}
		}
	})
	defer stop()

	fmt.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", a.root)
	return w.Run(ctx)
}

type annotateStats struct {
	files       int
	changed     int
	annotations int
}

// inPlaceAnnotator rewrites HTML files where they are.
type inPlaceAnnotator struct {
	root      string
	processor *annotate.Processor
	inject    bool
	logger    *slog.Logger

	mu sync.Mutex // serialises use of processor
}

func (a *inPlaceAnnotator) annotateDir() (annotateStats, error) {
	var stats annotateStats
	files, err := walker.Walk(walker.Config{RootDir: a.root, Include: []string{"**/*.html", "**/*.htm"}})
	if err != nil {
		return stats, err
	}
	for _, f := range files {
		n, err := a.annotateFile(f.Path)
		if err != nil {
			return stats, fmt.Errorf("annotating %s: %w", f.RelPath, err)
		}
		stats.files++
		if n >= 0 {
			stats.changed++
			stats.annotations += n
		}
	}
	return stats, nil
}

// annotateFile processes one file and rewrites it when anything changed.
// It returns the number of annotations added, or -1 when the file was left
// as it was. Writing an unchanged file would retrigger watchers.
func (a *inPlaceAnnotator) annotateFile(path string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return -1, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return -1, fmt.Errorf("parsing html: %w", err)
	}

	report := a.processor.ProcessDocument(doc)
	a.processor.Reset()

	injected := false
	if a.inject {
		rel, err := filepath.Rel(a.root, path)
		if err != nil {
			return -1, err
		}
		injected = annotate.InjectAssets(doc, assetBase(rel))
	}
	if !report.Changed() && !injected {
		return -1, nil
	}

	var buf bytes.Buffer
	if err := goquery.Render(&buf, doc.Selection); err != nil {
		return -1, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return -1, err
	}
	a.logger.Debug("annotated file", slog.String("path", path), slog.Int("annotations", report.Annotations))
	return report.Annotations, nil
}

// assetBase returns the relative path from a file at rel back to the root.
func assetBase(rel string) string {
	return strings.Repeat("../", strings.Count(filepath.ToSlash(rel), "/"))
}

func writeAnnotationAssets(dir string) error {
	assets := map[string]string{
		annotate.StylesheetFile: annotate.Stylesheet(),
		annotate.ScriptFile:     annotate.Script(),
	}
	for name, content := range assets {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}
