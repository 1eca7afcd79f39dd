package parser

import (
	"strings"
)

type tableCell struct {
	tag     string // th or td
	attrs   string
	content string
}

type tableRow struct {
	attrs string
	cells []*tableCell
}

type table struct {
	attrs   string
	caption *tableCell
	before  []string
	rows    []*tableRow
}

// tables renders {| ... |} blocks innermost first. A block that still holds
// a macro call, or encloses one that does, is left for a later pass.
func (d *document) tables(s string) string {
	if !strings.Contains(s, "{|") {
		return s
	}
	lines := strings.Split(s, "\n")
	type open struct {
		line     int
		deferred bool
	}
	var stack []open
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimLeft(lines[i], " \t")
		switch {
		case strings.HasPrefix(trimmed, "{|"):
			stack = append(stack, open{line: i})
		case strings.HasPrefix(trimmed, "|}") && len(stack) > 0:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			block := lines[top.line : i+1]
			if top.deferred || hasPendingMacro(strings.Join(block, "\n")) {
				if len(stack) > 0 {
					stack[len(stack)-1].deferred = true
				}
				continue
			}
			rendered := parseTable(block).render()
			lines = append(lines[:top.line], append([]string{rendered}, lines[i+1:]...)...)
			i = top.line
		}
	}
	return strings.Join(lines, "\n")
}

// parseTable reads the lines of one table, the first being {| and the last |}.
func parseTable(lines []string) *table {
	t := &table{attrs: strings.TrimSpace(strings.TrimLeft(lines[0], " \t")[2:])}
	var last *tableCell
	row := func() *tableRow {
		if len(t.rows) == 0 {
			t.rows = append(t.rows, &tableRow{})
		}
		return t.rows[len(t.rows)-1]
	}
	for _, line := range lines[1 : len(lines)-1] {
		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case strings.HasPrefix(trimmed, "|+"):
			t.caption = splitCell("caption", trimmed[2:])
			last = t.caption
		case strings.HasPrefix(trimmed, "|-"):
			t.rows = append(t.rows, &tableRow{attrs: strings.TrimSpace(strings.TrimLeft(trimmed[2:], "-"))})
			last = nil
		case strings.HasPrefix(trimmed, "!"):
			r := row()
			for _, part := range splitCells(trimmed[1:], "!!", "||") {
				last = splitCell("th", part)
				r.cells = append(r.cells, last)
			}
		case strings.HasPrefix(trimmed, "|"):
			r := row()
			for _, part := range splitCells(trimmed[1:], "||") {
				last = splitCell("td", part)
				r.cells = append(r.cells, last)
			}
		case last != nil:
			last.content += "\n" + line
		case strings.TrimSpace(line) != "":
			t.before = append(t.before, line)
		}
	}
	return t
}

func splitCells(s string, seps ...string) []string {
	parts := []string{s}
	for _, sep := range seps {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	return parts
}

// splitCell separates an optional leading "attrs|" segment from the content.
func splitCell(tag, s string) *tableCell {
	c := &tableCell{tag: tag, content: strings.TrimSpace(s)}
	if attrs, content, ok := strings.Cut(s, "|"); ok && !strings.ContainsAny(attrs, "<[{") {
		c.attrs = strings.TrimSpace(attrs)
		c.content = strings.TrimSpace(content)
	}
	return c
}

func (t *table) render() string {
	var b strings.Builder
	for _, line := range t.before {
		b.WriteString(line + "\n")
	}
	b.WriteString("<table" + tableAttrs(t.attrs) + ">\n")
	if t.caption != nil {
		b.WriteString(t.caption.render() + "\n")
	}
	for _, r := range t.rows {
		if len(r.cells) == 0 {
			continue
		}
		b.WriteString("<tr" + tableAttrs(r.attrs) + ">\n")
		for _, c := range r.cells {
			b.WriteString(c.render() + "\n")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>")
	return b.String()
}

func (c *tableCell) render() string {
	return "<" + c.tag + tableAttrs(c.attrs) + ">" + c.content + "</" + c.tag + ">"
}

// tableAttrs cleans author-supplied attribute text: angle brackets are
// dropped and event handlers renamed the same way as in raw HTML.
func tableAttrs(attrs string) string {
	attrs = strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(attrs))
	if attrs == "" {
		return ""
	}
	return " " + eventAttrRe.ReplaceAllString(attrs, "data-$1$2")
}
