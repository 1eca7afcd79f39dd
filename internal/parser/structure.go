package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shurcooL/sanitized_anchor_name"
)

var (
	headingRe = regexp.MustCompile(`(?m)^(={1,6})[ \t]*(.+?)[ \t]*(={1,6})[ \t]*$`)
	ruleRe    = regexp.MustCompile(`(?m)^-{4,}`)

	boldItalicRe = regexp.MustCompile(`'''''(.+?)'''''`)
	boldRe       = regexp.MustCompile(`'''(.+?)'''`)
	italicRe     = regexp.MustCompile(`''(.+?)''`)

	listItemRe = regexp.MustCompile(`(?m)^([*#]+)[ \t]*(.*)$`)
	termRe     = regexp.MustCompile(`(?m)^;[ \t]*(.*)$`)
	defRe      = regexp.MustCompile(`(?m)^(:+)[ \t]*(.*)$`)
	listJoinRe = regexp.MustCompile(`</(ul|ol|dl)>[ \t]*(\n?)[ \t]*<(ul|ol|dl)>`)

	paragraphRe = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
)

// structure converts block and inline markup. Tables come first so that
// their cell markers are not read as list markers.
func (d *document) structure(s string) string {
	s = d.tables(s)
	s = d.headings(s)
	s = ruleRe.ReplaceAllString(s, "<hr>")
	s = lists(s)
	s = definitions(s)
	s = emphasis(s)
	return paragraphRe.ReplaceAllString(s, "\n</p><p>\n")
}

// headings converts =Title= through ======Title======. Headings whose text
// still holds a macro call wait for a later pass so the anchor id is built
// from the final text.
func (d *document) headings(s string) string {
	return replaceSubmatch(headingRe, s, func(m []string) string {
		if len(m[1]) != len(m[3]) || hasPendingMacro(m[2]) {
			return m[0]
		}
		level := len(m[1])
		return fmt.Sprintf(`<h%d id="%s">%s</h%d>`, level, d.anchorID(m[2]), m[2], level)
	})
}

// anchorID returns a URL-safe id unique within the document.
func (d *document) anchorID(text string) string {
	id := sanitized_anchor_name.Create(d.plainText(text))
	if id == "" {
		id = "section"
	}
	d.anchors[id]++
	if n := d.anchors[id]; n > 1 {
		id += "-" + strconv.Itoa(n)
	}
	return id
}

var listTags = map[byte]string{'*': "ul", '#': "ol"}

// lists wraps each item line in as many list elements as it has markers,
// then merges adjacent lists so consecutive items share their parents.
func lists(s string) string {
	s = replaceSubmatch(listItemRe, s, func(m []string) string {
		var b strings.Builder
		for i := 0; i < len(m[1]); i++ {
			b.WriteString("<" + listTags[m[1][i]] + ">")
		}
		b.WriteString("<li>" + m[2] + "</li>")
		for i := len(m[1]) - 1; i >= 0; i-- {
			b.WriteString("</" + listTags[m[1][i]] + ">")
		}
		return b.String()
	})
	return joinLists(s)
}

// definitions handles ;term, ;term: definition and :definition lines.
func definitions(s string) string {
	s = replaceSubmatch(termRe, s, func(m []string) string {
		if i := colonOutsideTags(m[1]); i >= 0 {
			term := strings.TrimSpace(m[1][:i])
			def := strings.TrimSpace(m[1][i+1:])
			return "<dl><dt>" + term + "</dt><dd>" + def + "</dd></dl>"
		}
		return "<dl><dt>" + strings.TrimSpace(m[1]) + "</dt></dl>"
	})
	s = replaceSubmatch(defRe, s, func(m []string) string {
		depth := len(m[1])
		return strings.Repeat("<dl>", depth) + "<dd>" + m[2] + "</dd>" + strings.Repeat("</dl>", depth)
	})
	return joinLists(s)
}

// joinLists removes the boundary between a closing list and an opening list
// of the same kind on the next line, repeating until nothing merges.
func joinLists(s string) string {
	for {
		next := rewriteJoin(s)
		if next == s {
			return s
		}
		s = next
	}
}

func rewriteJoin(s string) string {
	return replaceSubmatch(listJoinRe, s, func(m []string) string {
		if m[1] != m[3] {
			return m[0]
		}
		return m[2]
	})
}

// colonOutsideTags returns the index of the first ':' that is not inside
// an HTML tag, or -1.
func colonOutsideTags(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func emphasis(s string) string {
	s = boldItalicRe.ReplaceAllString(s, "<b><i>$1</i></b>")
	s = boldRe.ReplaceAllString(s, "<b>$1</b>")
	return italicRe.ReplaceAllString(s, "<i>$1</i>")
}
