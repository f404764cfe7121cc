package parser

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// IsHTML reports whether a document name should be normalized from HTML.
func IsHTML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// NormalizeHTML renders an HTML design document as markdown lines so it can
// be scanned like any other document. Headings become `#` lines, <pre>
// becomes a fenced block tagged with its language class, table rows become
// `| a | b |` rows, <code> becomes backticks and <strong>/<b> become `**`.
func NormalizeHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	n := &htmlNormalizer{}
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	n.block(body)
	return n.b.String(), nil
}

type htmlNormalizer struct {
	b strings.Builder
}

func (n *htmlNormalizer) line(s string) {
	n.b.WriteString(s)
	n.b.WriteByte('\n')
}

func (n *htmlNormalizer) block(s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		node := c.Get(0)
		switch node.Type {
		case html.TextNode:
			if text := collapseSpace(node.Data); text != "" {
				n.line(text)
			}
		case html.ElementNode:
			n.element(c, node.Data)
		}
	})
}

func (n *htmlNormalizer) element(c *goquery.Selection, tag string) {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(tag[1] - '0')
		n.line(strings.Repeat("#", level) + " " + inlineText(c))
	case "pre":
		n.line("```" + codeLanguage(c))
		for _, l := range strings.Split(strings.Trim(c.Text(), "\n"), "\n") {
			n.line(l)
		}
		n.line("```")
	case "table":
		c.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Children().Filter("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, inlineText(cell))
			})
			if len(cells) > 0 {
				n.line("| " + strings.Join(cells, " | ") + " |")
			}
		})
	case "li":
		n.line("- " + inlineText(c))
		c.Children().Filter("ul, ol").Each(func(_ int, list *goquery.Selection) {
			n.block(list)
		})
	case "p", "dt", "dd", "caption", "figcaption", "code":
		if text := inlineText(c); text != "" {
			n.line(text)
		}
	case "head", "script", "style", "template", "noscript":
	default:
		n.block(c)
	}
}

// inlineText renders inline content, leaving block children to the caller.
func inlineText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		node := c.Get(0)
		switch node.Type {
		case html.TextNode:
			b.WriteString(node.Data)
		case html.ElementNode:
			switch node.Data {
			case "code", "kbd", "samp", "tt":
				b.WriteString("`" + strings.TrimSpace(c.Text()) + "`")
			case "strong", "b":
				b.WriteString("**" + inlineText(c) + "**")
			case "br":
				b.WriteByte(' ')
			case "ul", "ol", "table", "pre", "script", "style":
			default:
				b.WriteString(inlineText(c))
			}
		}
	})
	return collapseSpace(b.String())
}

// codeLanguage reads a `language-x` or `lang-x` class from a <pre> or its <code>.
func codeLanguage(pre *goquery.Selection) string {
	for _, sel := range []*goquery.Selection{pre, pre.ChildrenFiltered("code").First()} {
		class, ok := sel.Attr("class")
		if !ok {
			continue
		}
		for _, name := range strings.Fields(class) {
			for _, prefix := range []string{"language-", "lang-"} {
				if strings.HasPrefix(name, prefix) {
					return strings.ToLower(strings.TrimPrefix(name, prefix))
				}
			}
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
