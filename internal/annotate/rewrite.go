package annotate

import (
	"html"
	"sort"
	"strconv"
	"strings"
)

// Class names of the styling contract shared with the stylesheet and script.
const (
	ClassAnnotation = "code-annotation"
	ClassMarker     = "code-annotation-marker"
	ClassTooltip    = "code-annotation-tooltip"
	ClassActive     = "code-annotation--active"
	ClassFlipped    = "code-annotation--flipped"
	ClassHiddenList = "code-annotation-list--hidden"
)

// AttrAnnotation identifies the annotation number on a rendered element.
// Number-less markers carry "+".
const AttrAnnotation = "data-annotation"

// DefaultPlaceholder is the tooltip text for a marker without explanation.
const DefaultPlaceholder = "No explanation provided."

// PlusSymbol is the visible marker of number-less annotations.
const PlusSymbol = "+"

// Display selects what the visible part of an annotation shows.
type Display string

const (
	DisplayNumber Display = "number" // "1", or "+" for number-less markers
	DisplaySource Display = "source" // the matched comment text
)

// Table maps annotation numbers to explanation text.
type Table map[int]string

// Marker is a recognised occurrence of a marker in code text.
type Marker struct {
	Start, End int
	Number     int // 0 for number-less markers
	Inline     string
	Syntax     string
}

// Source returns the matched text of m within text.
func (m Marker) Source(text string) string { return text[m.Start:m.End] }

// Result is the outcome of rewriting one piece of code text.
type Result struct {
	HTML    string
	Markers []Marker
	Used    []int
}

// RewriterOptions tune how markers are rendered.
type RewriterOptions struct {
	Syntaxes       []Syntax
	Display        Display
	Placeholder    string
	InlineFallback bool
}

// Rewriter turns marker comments into annotation elements.
type Rewriter struct {
	syntaxes       []Syntax
	display        Display
	placeholder    string
	inlineFallback bool
}

// NewRewriter returns a Rewriter. Zero options select every comment style,
// number display and the default placeholder.
func NewRewriter(opts RewriterOptions) *Rewriter {
	r := &Rewriter{
		syntaxes:       opts.Syntaxes,
		display:        opts.Display,
		placeholder:    opts.Placeholder,
		inlineFallback: opts.InlineFallback,
	}
	if r.syntaxes == nil {
		r.syntaxes = DefaultSyntaxes()
	}
	if r.display == "" {
		r.display = DisplayNumber
	}
	if r.placeholder == "" {
		r.placeholder = DefaultPlaceholder
	}
	return r
}

// Find returns the markers in text that can be rendered with table, ordered
// by offset. Every syntax is scanned; when candidates overlap, the leftmost
// one wins, and at equal offsets the earlier syntax in the table does.
func (r *Rewriter) Find(text string, table Table) []Marker {
	type candidate struct {
		Marker
		rank int
	}
	var candidates []candidate
	for rank, syn := range r.syntaxes {
		for _, loc := range syn.Pattern.FindAllStringSubmatchIndex(text, -1) {
			m := Marker{Start: loc[0], End: loc[1], Syntax: syn.Name}
			if text[m.End-1] == '\r' {
				m.End--
			}
			if g := syn.TextGroup; g > 0 && loc[2*g] >= 0 {
				m.Inline = strings.Join(strings.Fields(text[loc[2*g]:loc[2*g+1]]), " ")
			}
			if g := syn.NumberGroup; g > 0 {
				n, err := strconv.Atoi(text[loc[2*g]:loc[2*g+1]])
				if err != nil || n <= 0 {
					continue
				}
				m.Number = n
				if _, ok := table[n]; !ok && !(r.inlineFallback && m.Inline != "") {
					continue
				}
			}
			candidates = append(candidates, candidate{Marker: m, rank: rank})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].rank < candidates[j].rank
	})

	var found []Marker
	for _, c := range candidates {
		if !overlaps(found, c.Marker) {
			found = append(found, c.Marker)
		}
	}
	return found
}

func overlaps(markers []Marker, m Marker) bool {
	for _, o := range markers {
		if m.Start < o.End && o.Start < m.End {
			return true
		}
	}
	return false
}

// Rewrite escapes text and replaces each recognised marker with an annotation
// element. It reports false when text holds no recognised marker, in which
// case the caller must leave the original text alone.
func (r *Rewriter) Rewrite(text string, table Table) (Result, bool) {
	markers := r.Find(text, table)
	if len(markers) == 0 {
		return Result{}, false
	}

	var b strings.Builder
	var used []int
	seen := make(map[int]bool)
	last := 0
	for _, m := range markers {
		b.WriteString(html.EscapeString(text[last:m.Start]))
		b.WriteString(r.element(m, text, table))
		last = m.End
		if m.Number > 0 && !seen[m.Number] {
			seen[m.Number] = true
			used = append(used, m.Number)
		}
	}
	b.WriteString(html.EscapeString(text[last:]))

	return Result{HTML: b.String(), Markers: markers, Used: used}, true
}

// Explanation returns the tooltip text for m. A table entry wins over the
// inline text.
func (r *Rewriter) Explanation(m Marker, table Table) string {
	if m.Number > 0 {
		if s := strings.TrimSpace(table[m.Number]); s != "" {
			return s
		}
	}
	if m.Inline != "" {
		return m.Inline
	}
	return r.placeholder
}

func (r *Rewriter) element(m Marker, text string, table Table) string {
	id := PlusSymbol
	if m.Number > 0 {
		id = strconv.Itoa(m.Number)
	}
	visible := id
	if r.display == DisplaySource {
		visible = m.Source(text)
	}

	var b strings.Builder
	b.WriteString(`<span class="` + ClassAnnotation + `" ` + AttrAnnotation + `="` + html.EscapeString(id) + `"`)
	b.WriteString(` tabindex="0" role="button" aria-label="Annotation ` + html.EscapeString(id) + `">`)
	b.WriteString(`<span class="` + ClassMarker + `">` + html.EscapeString(visible) + `</span>`)
	b.WriteString(`<span class="` + ClassTooltip + `" role="tooltip">` + html.EscapeString(r.Explanation(m, table)) + `</span>`)
	b.WriteString(`</span>`)
	return b.String()
}
