package site

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/wikity/internal/parser"
)

// tocThreshold is the heading count above which a TOC is added unasked.
const tocThreshold = 3

const tocMarker = "<toc></toc>"

var firstHeadingRe = regexp.MustCompile(`<h[1-6][\s>]`)

type heading struct {
	level int
	id    string
	text  string
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// headings extracts the h1-h6 elements of a rendered fragment in document order.
func headings(fragment string) []heading {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil
	}
	var out []heading
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if lvl, ok := headingLevels[n.DataAtom]; ok {
				h := heading{level: lvl, text: strings.TrimSpace(textContent(n))}
				for _, a := range n.Attr {
					if a.Key == "id" {
						h.id = a.Val
					}
				}
				out = append(out, h)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

// withTOC splices a table of contents into a rendered page. It is placed at
// the __TOC__ marker when present, otherwise before the first heading. A
// page gets one when __NOTOC__ is absent and either __TOC__/__FORCETOC__ was
// used or it has more than tocThreshold headings.
func withTOC(content string, meta parser.Metadata) string {
	if meta.Bool("notoc") {
		return strings.ReplaceAll(content, tocMarker, "")
	}
	hs := headings(content)
	if len(hs) == 0 || (!meta.Bool("toc") && len(hs) <= tocThreshold) {
		return strings.ReplaceAll(content, tocMarker, "")
	}
	toc := renderTOC(hs)
	if strings.Contains(content, tocMarker) {
		return replaceFirst(content, tocMarker, toc)
	}
	loc := firstHeadingRe.FindStringIndex(content)
	return content[:loc[0]] + toc + content[loc[0]:]
}

func replaceFirst(s, old, repl string) string {
	s = strings.Replace(s, old, repl, 1)
	return strings.ReplaceAll(s, old, "")
}

func renderTOC(hs []heading) string {
	var b strings.Builder
	b.WriteString(`<div id="toc"><span id="toc-heading"><strong>Contents</strong></span><ol>`)
	for _, h := range hs {
		depth := h.level - 1
		fmt.Fprintf(&b, `%s<li><a href="#%s">%s</a></li>%s`,
			strings.Repeat("<ol>", depth),
			html.EscapeString(h.id),
			html.EscapeString(h.text),
			strings.Repeat("</ol>", depth))
	}
	b.WriteString(`</ol></div>`)
	return b.String()
}
