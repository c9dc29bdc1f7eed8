package render

import (
	"fmt"
	"io"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 900px; margin: 40px auto; padding: 0 20px; color: #1a202c; }
table { border-collapse: collapse; width: 100%%; margin: 16px 0; }
th, td { border: 1px solid #cbd5e0; padding: 6px 10px; text-align: left; }
th { background: #edf2f7; }
h1, h2 { border-bottom: 1px solid #e2e8f0; padding-bottom: 4px; }
</style>
</head>
<body>
%s
</body>
</html>
`

// MarkdownReportHTML renders a markdown document into a standalone HTML
// page.
func MarkdownReportHTML(w io.Writer, title string, md []byte) error {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.ToHTML(md, p, renderer)

	if _, err := fmt.Fprintf(w, pageTemplate, title, body); err != nil {
		return fmt.Errorf("writing report page: %w", err)
	}
	return nil
}
