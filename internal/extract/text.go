package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// VisibleText returns the human-readable text of a block. Blocks that look like
// HTML are parsed and reduced to their visible text; everything else is returned unchanged.
func VisibleText(block string) string {
	if !looksLikeHTML(block) {
		return block
	}

	doc, err := html.Parse(strings.NewReader(block))
	if err != nil {
		return block
	}
	return extractVisibleText(doc)
}

func looksLikeHTML(s string) bool {
	open := strings.IndexByte(s, '<')
	return open >= 0 && strings.IndexByte(s[open:], '>') > 0
}

func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		// Block elements end a line so that unpunctuated paragraphs stay separate
		if n.Type == html.ElementNode && isBlockElement(n.Data) {
			buf.WriteString("\n")
		}
	}

	walk(n)
	return buf.String()
}

func isBlockElement(tag string) bool {
	switch tag {
	case "p", "div", "li", "br", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "tr", "section", "article":
		return true
	}
	return false
}
