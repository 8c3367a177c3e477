package summarizer

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/russross/blackfriday/v2"
	"mvdan.cc/xurls/v2"
)

var (
	summaryLabelRe = regexp.MustCompile(`(?i)^\s*ringkasan(\s+(singkat|lengkap))?\s*:\s*`)
	urlRe          = xurls.Relaxed()
)

// Clean reduces model output to a single line of plain text. Markdown
// markup, URLs and an echoed "Ringkasan:" label are removed.
func Clean(output string) string {
	text := markdownToText(strings.TrimSpace(output))
	text = urlRe.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	text = summaryLabelRe.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}

func markdownToText(input string) string {
	if input == "" {
		return ""
	}

	html := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return input
	}

	doc.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithHtml(" ")
	})
	doc.Find("p, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return doc.Text()
}
