package annotate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// explanationLine matches a trimmed "N. text" line.
var explanationLine = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)

// ParseExplanationLine returns the number and text of an explanation line.
func ParseExplanationLine(line string) (int, string, bool) {
	m := explanationLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, "", false
	}
	text := strings.TrimSpace(m[2])
	if text == "" {
		return 0, "", false
	}
	return n, text, true
}

// CollectExplanations builds the explanation table of a container. Text nodes
// are read in document order and a later line for the same number replaces
// an earlier one. With ordinal set, an <ol> paired with a code block (see
// PairOrdinalLists) is left out: its items explain only that block.
func CollectExplanations(container *goquery.Selection, ordinal bool) Table {
	table := make(Table)
	for _, root := range container.Nodes {
		collectNode(root, table, ordinal)
	}
	return table
}

func collectNode(n *html.Node, table Table, ordinal bool) {
	switch n.Type {
	case html.TextNode:
		for _, line := range strings.Split(n.Data, "\n") {
			if num, text, ok := ParseExplanationLine(line); ok {
				table[num] = text
			}
		}
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style:
			return
		case atom.Ol:
			if ordinal && pairedPre(n) != nil {
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectNode(c, table, ordinal)
	}
}

// PairOrdinalLists maps every <pre> in container that is immediately
// followed by an <ol> to that list. The <pre> may be wrapped, as
// highlighters often do, provided it is the last element of each wrapper.
func PairOrdinalLists(container *goquery.Selection) map[*html.Node]*html.Node {
	pairs := make(map[*html.Node]*html.Node)
	container.Find("ol").Each(func(_ int, list *goquery.Selection) {
		node := list.Get(0)
		if pre := pairedPre(node); pre != nil {
			pairs[pre] = node
		}
	})
	return pairs
}

// OrdinalExplanations returns the table of a list paired with a code block.
// An item reading "N. text" uses N; any other item is keyed by its position
// counted from the start attribute.
func OrdinalExplanations(list *html.Node) Table {
	return Table(listItems(list, true))
}

// listItems returns the explanation of every item of a list keyed by number.
// An item reading "N. text" uses N; otherwise, for ordinal lists, the item's
// position counted from the start attribute.
func listItems(list *html.Node, ordinal bool) map[int]string {
	items := make(map[int]string)
	pos := listStart(list)
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		text := strings.Join(strings.Fields(nodeText(c)), " ")
		if num, expl, ok := ParseExplanationLine(text); ok {
			items[num] = expl
		} else if ordinal && text != "" {
			items[pos] = text
		}
		pos++
	}
	return items
}

func listStart(list *html.Node) int {
	for _, a := range list.Attr {
		if a.Key == "start" {
			if n, err := strconv.Atoi(strings.TrimSpace(a.Val)); err == nil {
				return n
			}
		}
	}
	return 1
}

// pairedPre returns the <pre> that list directly follows, or nil. Starting
// at the previous element sibling, it descends through last element
// children until it reaches a <pre>.
func pairedPre(list *html.Node) *html.Node {
	n := prevElement(list)
	for n != nil {
		if n.DataAtom == atom.Pre {
			return n
		}
		n = lastElementChild(n)
	}
	return nil
}

func prevElement(n *html.Node) *html.Node {
	for p := n.PrevSibling; p != nil; p = p.PrevSibling {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

func lastElementChild(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
