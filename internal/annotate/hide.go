package annotate

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HideConsumedLists adds ClassHiddenList to every list in container whose
// "N. text" items explain at least one used number. Hiding is per list: a
// list with a used item is hidden whole, a list with none stays visible.
// With ordinal set, lists paired with a code block are skipped; they are
// hidden through HideList once their own block uses them. It returns the
// number of lists newly hidden.
func HideConsumedLists(container *goquery.Selection, used []int, ordinal bool) int {
	if len(used) == 0 {
		return 0
	}
	isUsed := make(map[int]bool, len(used))
	for _, n := range used {
		isUsed[n] = true
	}

	hidden := 0
	container.Find("ol, ul").Each(func(_ int, list *goquery.Selection) {
		node := list.Get(0)
		if ordinal && node.DataAtom == atom.Ol && pairedPre(node) != nil {
			return
		}
		for num := range listItems(node, false) {
			if isUsed[num] && HideList(node) {
				hidden++
				return
			}
		}
	})
	return hidden
}

// HideList adds ClassHiddenList to list and reports whether it was visible.
func HideList(list *html.Node) bool {
	sel := goquery.NewDocumentFromNode(list).Selection
	if sel.HasClass(ClassHiddenList) {
		return false
	}
	sel.AddClass(ClassHiddenList)
	return true
}
