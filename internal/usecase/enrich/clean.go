package enrich

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanContent strips HTML markup from article content, dropping
// script and style blocks entirely, and collapses whitespace. Content
// that fails to parse is returned unchanged.
func CleanContent(content string) string {
	if content == "" {
		return ""
	}

	if strings.ContainsAny(content, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			return content
		}
		doc.Find("script, style").Remove()
		content = doc.Text()
	}

	return strings.Join(strings.Fields(content), " ")
}
