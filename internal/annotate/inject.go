package annotate

import (
	"github.com/PuerkitoBio/goquery"
)

// InjectAssets links the stylesheet and script into doc unless already
// present. base is the relative path from the page to the asset directory,
// e.g. "../". It reports whether doc was changed.
func InjectAssets(doc *goquery.Document, base string) bool {
	changed := false
	css := base + StylesheetFile
	js := base + ScriptFile

	if doc.Find(`link[href$="` + StylesheetFile + `"]`).Length() == 0 {
		head := doc.Find("head")
		if head.Length() > 0 {
			head.AppendHtml(`<link rel="stylesheet" href="` + css + `">`)
			changed = true
		}
	}
	if doc.Find(`script[src$="` + ScriptFile + `"]`).Length() == 0 {
		body := doc.Find("body")
		if body.Length() > 0 {
			body.AppendHtml(`<script src="` + js + `" defer></script>`)
			changed = true
		}
	}
	return changed
}
