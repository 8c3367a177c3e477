package report

import (
	"html"
	"strings"

	"github.com/russross/blackfriday/v2"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>%TITLE%</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2em auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
pre { line-height: 1.1; }
</style>
</head>
<body>
%BODY%
</body>
</html>
`

// renderHTML turns a markdown document into a standalone HTML page.
func renderHTML(title, markdown string) []byte {
	body := blackfriday.Run([]byte(markdown), blackfriday.WithExtensions(blackfriday.CommonExtensions))

	page := strings.NewReplacer(
		"%TITLE%", html.EscapeString(title),
		"%BODY%", string(body),
	).Replace(htmlTemplate)

	return []byte(page)
}
