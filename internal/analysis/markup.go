package analysis

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup extracts visible text from an HTML fragment, skipping script,
// style and noscript elements. Input that fails to parse is returned as is.
func StripMarkup(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}

	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	return strings.Join(strings.Fields(text.String()), " ")
}
