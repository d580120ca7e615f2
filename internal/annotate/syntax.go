package annotate

import (
	"fmt"
	"regexp"
)

// CommentStyle names a comment syntax that may carry a marker.
type CommentStyle string

const (
	StyleHTML  CommentStyle = "html"  // <!-- (1)! text -->
	StyleBlock CommentStyle = "block" // /* (1)! text */
	StyleLine  CommentStyle = "line"  // # (1)! text  or  // (1)! text
	StyleSQL   CommentStyle = "sql"   // -- (1)! text
)

// AllStyles lists every supported comment style in scan priority order.
// Enclosing styles come first so that the "--" inside "<!--" is never
// claimed by the SQL syntax.
var AllStyles = []CommentStyle{StyleHTML, StyleBlock, StyleLine, StyleSQL}

// Syntax is one entry of the marker table: a pattern plus the capture groups
// that hold the annotation number and the inline explanation. A group index
// of zero means the entry does not carry that value.
type Syntax struct {
	Name        string
	Style       CommentStyle
	Pattern     *regexp.Regexp
	NumberGroup int
	TextGroup   int
}

// Numbered reports whether matches of s carry an annotation number.
func (s Syntax) Numbered() bool { return s.NumberGroup > 0 }

// Marker tokens. "(N)!" is the numbered form, "(+)" the number-less one.
const (
	numberedToken = `\((\d+)\)!`
	plusToken     = `\(\+\)`
)

// commentForms holds the prefix and suffix around the marker token for each
// style. Trailing text is captured in the suffix. Enclosed comments may span
// lines; line comments stop before the line break, and a CR of a CRLF ending
// is matched but trimmed from the marker by Rewriter.Find.
var commentForms = map[CommentStyle]struct{ prefix, suffix string }{
	StyleHTML:  {`<!--[ \t]*`, `\s*((?s:.*?))\s*-->`},
	StyleBlock: {`/\*[ \t]*`, `\s*((?s:.*?))\s*\*/`},
	StyleLine:  {`(?://|#)[ \t]*`, `[ \t]*([^\r\n]*?)[ \t]*\r?$`},
	StyleSQL:   {`--[ \t]*`, `[ \t]*([^\r\n]*?)[ \t]*\r?$`},
}

// BuildSyntaxes compiles the marker table for the given styles. Each style
// yields a numbered entry followed by a number-less entry.
func BuildSyntaxes(styles []CommentStyle) ([]Syntax, error) {
	var table []Syntax
	for _, style := range styles {
		form, ok := commentForms[style]
		if !ok {
			return nil, fmt.Errorf("annotate: unknown comment style %q", style)
		}
		numbered, err := regexp.Compile(`(?m)` + form.prefix + numberedToken + form.suffix)
		if err != nil {
			return nil, fmt.Errorf("annotate: compile %s pattern: %w", style, err)
		}
		plus, err := regexp.Compile(`(?m)` + form.prefix + plusToken + form.suffix)
		if err != nil {
			return nil, fmt.Errorf("annotate: compile %s plus pattern: %w", style, err)
		}
		table = append(table,
			Syntax{Name: string(style), Style: style, Pattern: numbered, NumberGroup: 1, TextGroup: 2},
			Syntax{Name: string(style) + "+", Style: style, Pattern: plus, TextGroup: 1},
		)
	}
	return table, nil
}

// DefaultSyntaxes returns the table for every supported style.
func DefaultSyntaxes() []Syntax {
	table, err := BuildSyntaxes(AllStyles)
	if err != nil {
		panic(err)
	}
	return table
}

// ParseStyles converts configuration strings into comment styles, keeping the
// priority order of AllStyles regardless of input order.
func ParseStyles(names []string) ([]CommentStyle, error) {
	if len(names) == 0 {
		return AllStyles, nil
	}
	want := make(map[CommentStyle]bool, len(names))
	for _, n := range names {
		style := CommentStyle(n)
		if _, ok := commentForms[style]; !ok {
			return nil, fmt.Errorf("annotate: unknown comment style %q", n)
		}
		want[style] = true
	}
	var styles []CommentStyle
	for _, s := range AllStyles {
		if want[s] {
			styles = append(styles, s)
		}
	}
	return styles, nil
}
