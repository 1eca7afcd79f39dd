package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	refRe         = regexp.MustCompile(`(?is)<ref(\s[^>]*?)?\s*/>|<ref(\s[^>]*?)?>(.*?)</ref\s*>`)
	refNameRe     = regexp.MustCompile(`(?i)\bname\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'/>]+))`)
	referencesRe  = regexp.MustCompile(`(?i)<references\s*/?>(?:\s*</references\s*>)?`)
	backlinkLabel = "abcdefghijklmnopqrstuvwxyz"
)

// reference is one bibliography entry. uses counts reuses after the first
// citation.
type reference struct {
	id      int
	name    string
	content string
	uses    int
}

// refRegistry keeps references in citation order.
type refRegistry struct {
	list   []*reference
	byName map[string]*reference
}

func (r *refRegistry) add(name, content string) *reference {
	ref := &reference{id: len(r.list) + 1, name: name, content: content}
	r.list = append(r.list, ref)
	if name != "" {
		r.byName[name] = ref
	}
	return ref
}

// references registers <ref> tags and replaces them with citation markers.
// A ref whose content still holds a macro call is registered on a later pass.
func (d *document) references(s string) string {
	return replaceSubmatch(refRe, s, func(m []string) string {
		attrs, content := m[1], ""
		if attrs == "" {
			attrs = m[2]
		}
		if m[0][len(m[0])-2:] != "/>" {
			content = strings.TrimSpace(m[3])
		}
		if strings.Contains(content, "{{") {
			return m[0]
		}
		name := refName(attrs)
		if name == "" {
			if content == "" {
				return ""
			}
			return citeMarker(d.refs.add("", content), 0)
		}
		ref, ok := d.refs.byName[name]
		if !ok {
			return citeMarker(d.refs.add(name, content), 0)
		}
		if ref.content == "" {
			ref.content = content
		}
		ref.uses++
		return citeMarker(ref, ref.uses)
	})
}

func refName(attrs string) string {
	m := refNameRe.FindStringSubmatch(attrs)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1] + m[2] + m[3])
}

func citeRefID(ref *reference, use int) string {
	if use == 0 {
		return "cite-ref-" + strconv.Itoa(ref.id)
	}
	return fmt.Sprintf("cite-ref-%d-%d", ref.id, use)
}

func citeMarker(ref *reference, use int) string {
	return fmt.Sprintf(`<sup id="%s" class="reference"><a href="#cite-note-%d">[%d]</a></sup>`,
		citeRefID(ref, use), ref.id, ref.id)
}

// renderReferences replaces the first <references/> marker with the
// bibliography. Later markers render nothing.
func (d *document) renderReferences(s string) string {
	first := true
	return referencesRe.ReplaceAllStringFunc(s, func(string) string {
		if !first {
			return ""
		}
		first = false
		return d.bibliography()
	})
}

func (d *document) bibliography() string {
	var b strings.Builder
	b.WriteString(`<ol class="references">`)
	for _, ref := range d.refs.list {
		fmt.Fprintf(&b, "\n"+`<li id="cite-note-%d">`, ref.id)
		if ref.uses == 0 {
			fmt.Fprintf(&b, `<a href="#%s">↑</a>`, citeRefID(ref, 0))
		} else {
			b.WriteString("↑")
			for use := 0; use <= ref.uses; use++ {
				fmt.Fprintf(&b, ` <sup><a href="#%s">%s</a></sup>`, citeRefID(ref, use), backlinkText(use))
			}
		}
		b.WriteString(" " + ref.content + "</li>")
	}
	b.WriteString("\n</ol>")
	return b.String()
}

func backlinkText(use int) string {
	if use < len(backlinkLabel) {
		return backlinkLabel[use : use+1]
	}
	return strconv.Itoa(use + 1)
}
