package annotate

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// AttrProcessed marks a code block that has been rewritten.
const AttrProcessed = "data-annotated"

// Default selectors.
const (
	DefaultContainerSelector = "body"
	DefaultCodeSelector      = "pre > code"
)

// Options configure a Processor.
type Options struct {
	ContainerSelector string
	CodeSelector      string
	Display           Display
	Placeholder       string
	InlineFallback    bool
	OrdinalLists      bool
	Styles            []CommentStyle
	Logger            *slog.Logger
}

// Report summarises one processing pass.
type Report struct {
	Containers  int
	Blocks      int
	Annotations int
	Used        []int
	HiddenLists int
}

// Changed reports whether the pass modified the document.
func (r Report) Changed() bool { return r.Blocks > 0 || r.HiddenLists > 0 }

func (r *Report) add(o Report) {
	r.Containers += o.Containers
	r.Blocks += o.Blocks
	r.Annotations += o.Annotations
	r.Used = append(r.Used, o.Used...)
	r.HiddenLists += o.HiddenLists
}

// Processor runs the collect, rewrite and hide steps over HTML containers.
// It remembers every code block it has visited, so feeding it the same
// document again after further insertions only touches new blocks. A
// Processor is not safe for concurrent use.
type Processor struct {
	opts     Options
	rewriter *Rewriter
	seen     map[*html.Node]struct{}
	logger   *slog.Logger
}

// NewProcessor validates opts and returns a Processor.
func NewProcessor(opts Options) (*Processor, error) {
	if opts.ContainerSelector == "" {
		opts.ContainerSelector = DefaultContainerSelector
	}
	if opts.CodeSelector == "" {
		opts.CodeSelector = DefaultCodeSelector
	}
	switch opts.Display {
	case "", DisplayNumber, DisplaySource:
	default:
		return nil, fmt.Errorf("annotate: unknown marker display %q", opts.Display)
	}
	styles := opts.Styles
	if len(styles) == 0 {
		styles = AllStyles
	}
	syntaxes, err := BuildSyntaxes(styles)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		opts: opts,
		rewriter: NewRewriter(RewriterOptions{
			Syntaxes:       syntaxes,
			Display:        opts.Display,
			Placeholder:    opts.Placeholder,
			InlineFallback: opts.InlineFallback,
		}),
		seen:   make(map[*html.Node]struct{}),
		logger: logger,
	}, nil
}

// Rewriter returns the rewriter used for code blocks.
func (p *Processor) Rewriter() *Rewriter { return p.rewriter }

// Reset forgets every visited block. Call it before moving on to an
// unrelated document; blocks already rewritten stay protected by their
// AttrProcessed mark.
func (p *Processor) Reset() { clear(p.seen) }

// ProcessDocument processes every outermost container of doc.
func (p *Processor) ProcessDocument(doc *goquery.Document) Report {
	var report Report
	containers := doc.Find(p.opts.ContainerSelector)
	containers.Each(func(_ int, c *goquery.Selection) {
		// Nested containers are covered by their ancestor.
		if c.ParentsFiltered(p.opts.ContainerSelector).Length() > 0 {
			return
		}
		report.add(p.ProcessContainer(c))
	})
	return report
}

// ProcessContainer runs one pass over a container: collect explanations,
// rewrite its code blocks, then hide the lists whose numbers were used. With
// OrdinalLists, a code block resolves its markers against the <ol> right
// after it before falling back to the container table, and that list is
// hidden only when its own block used it.
func (p *Processor) ProcessContainer(container *goquery.Selection) Report {
	report := Report{Containers: 1}

	table := CollectExplanations(container, p.opts.OrdinalLists)
	var pairs map[*html.Node]*html.Node
	if p.opts.OrdinalLists {
		pairs = PairOrdinalLists(container)
	}
	if len(table) == 0 && len(pairs) == 0 && !p.opts.InlineFallback && !strings.Contains(container.Text(), "(+)") {
		return report
	}

	used := make(map[int]bool)
	var textUsed []int
	var consumed []*html.Node
	container.Find(p.opts.CodeSelector).Each(func(_ int, block *goquery.Selection) {
		blockTable, list := table, pairedList(block, pairs)
		var local Table
		if list != nil {
			local = OrdinalExplanations(list)
			blockTable = mergeTables(table, local)
		}

		n, nums, err := p.processBlock(block, blockTable)
		if err != nil {
			p.logger.Warn("skipping code block", slog.Any("error", err))
			return
		}
		if n == 0 {
			return
		}
		report.Blocks++
		report.Annotations += n
		listUsed := false
		for _, num := range nums {
			if _, ok := local[num]; ok {
				listUsed = true
			} else {
				textUsed = append(textUsed, num)
			}
			if !used[num] {
				used[num] = true
				report.Used = append(report.Used, num)
			}
		}
		if listUsed {
			consumed = append(consumed, list)
		}
	})

	report.HiddenLists = HideConsumedLists(container, textUsed, p.opts.OrdinalLists)
	for _, list := range consumed {
		if HideList(list) {
			report.HiddenLists++
		}
	}
	if report.Blocks > 0 {
		p.logger.Debug("annotated container",
			slog.Int("blocks", report.Blocks),
			slog.Int("annotations", report.Annotations),
			slog.Int("hidden_lists", report.HiddenLists),
		)
	}
	return report
}

// pairedList returns the ordinal list following the <pre> around block.
func pairedList(block *goquery.Selection, pairs map[*html.Node]*html.Node) *html.Node {
	if len(pairs) == 0 {
		return nil
	}
	pre := block.Closest("pre")
	if pre.Length() == 0 {
		return nil
	}
	return pairs[pre.Get(0)]
}

// mergeTables returns base overlaid with local.
func mergeTables(base, local Table) Table {
	merged := make(Table, len(base)+len(local))
	maps.Copy(merged, base)
	maps.Copy(merged, local)
	return merged
}

// processBlock rewrites the text nodes of one code block. Rewriting per text
// node keeps any highlighter markup around the other tokens intact.
func (p *Processor) processBlock(block *goquery.Selection, table Table) (int, []int, error) {
	node := block.Get(0)
	if _, ok := p.seen[node]; ok {
		return 0, nil, nil
	}
	p.seen[node] = struct{}{}
	if _, ok := block.Attr(AttrProcessed); ok {
		return 0, nil, nil
	}

	var texts []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			texts = append(texts, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	type pending struct {
		text  *html.Node
		nodes []*html.Node
	}
	var (
		replace []pending
		count   int
		used    []int
	)
	for _, t := range texts {
		res, ok := p.rewriter.Rewrite(t.Data, table)
		if !ok {
			continue
		}
		nodes, err := html.ParseFragment(strings.NewReader(res.HTML), t.Parent)
		if err != nil {
			return 0, nil, fmt.Errorf("parse rewritten fragment: %w", err)
		}
		replace = append(replace, pending{text: t, nodes: nodes})
		count += len(res.Markers)
		used = append(used, res.Used...)
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Nothing is mutated until every text node rewrote cleanly.
	for _, r := range replace {
		parent := r.text.Parent
		for _, n := range r.nodes {
			parent.InsertBefore(n, r.text)
		}
		parent.RemoveChild(r.text)
	}
	block.SetAttr(AttrProcessed, "true")
	return count, used, nil
}

// ProcessHTML parses a full HTML document from r, processes it and writes the
// result to w.
func (p *Processor) ProcessHTML(r io.Reader, w io.Writer) (Report, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Report{}, fmt.Errorf("parsing html: %w", err)
	}
	report := p.ProcessDocument(doc)
	if err := goquery.Render(w, doc.Selection); err != nil {
		return report, fmt.Errorf("rendering html: %w", err)
	}
	return report, nil
}

// ProcessFragment processes an HTML fragment, as inserted into a page after
// load, and returns the rewritten fragment. The fragment as a whole is the
// container.
func (p *Processor) ProcessFragment(fragment string) (string, Report, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", Report{}, fmt.Errorf("parsing fragment: %w", err)
	}
	body := doc.Find("body")
	report := p.ProcessContainer(body)
	out, err := body.Html()
	if err != nil {
		return "", report, fmt.Errorf("rendering fragment: %w", err)
	}
	return out, report, nil
}
