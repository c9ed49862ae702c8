// Package content turns raw page markup into plain text, a title, and
// bounded word-count chunks ready for embedding.
package content

import (
	"strings"

	"golang.org/x/net/html"
)

// strippedTags are removed wholesale before text extraction. Boilerplate
// containers (nav/header/footer) are dropped along with non-content tags.
var strippedTags = map[string]bool{
	"script": true,
	"style":  true,
	"meta":   true,
	"link":   true,
	"nav":    true,
	"header": true,
	"footer": true,
}

// Extract is a cleaned page: plain text, the page title, and the cleaned
// markup serialized back for display snippets.
type Extract struct {
	Text   string
	Title  string
	Markup string
}

// Clean parses raw HTML, removes script/style/meta/link/nav/header/footer
// subtrees, and extracts plain text (text nodes joined with single spaces),
// the first <title> text, and the cleaned markup.
func Clean(raw string) Extract {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return Extract{}
	}
	strip(doc)

	var texts []string
	var title string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && title == "" {
			title = strings.TrimSpace(textOf(n))
		}
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				texts = append(texts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var b strings.Builder
	_ = html.Render(&b, doc)

	return Extract{
		Text:   strings.TrimSpace(strings.Join(texts, " ")),
		Title:  title,
		Markup: b.String(),
	}
}

// strip removes all stripped-tag subtrees below n.
func strip(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && strippedTags[c.Data] {
			n.RemoveChild(c)
			continue
		}
		strip(c)
	}
}

// textOf concatenates all text nodes below n.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
