package parser

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shurcooL/sanitized_anchor_name"
)

var (
	internalLinkRe = regexp.MustCompile(`\[\[([^\[\]|]+?)(?:\|([^\[\]]*?))?\]\]([a-z]*)`)
	externalLinkRe = regexp.MustCompile(`\[((?:[a-zA-Z][\w+.-]*:)?//[^\s\[\]<>"]+)(?:[ \t]+([^\[\]\n]*?))?\]`)
	mediaPrefixRe  = regexp.MustCompile(`(?i)^\s*(?:file|image)\s*:`)
	htmlTagRe      = regexp.MustCompile(`<[^<>]*>`)
)

// links renders [[Page|text]] and [url text] forms.
func (d *document) links(s string) string {
	s = replaceSubmatch(internalLinkRe, s, func(m []string) string {
		target := strings.TrimSpace(m[1])
		if mediaPrefixRe.MatchString(target) || target == "" || hasPendingMacro(m[0]) {
			return m[0]
		}
		text := strings.TrimSpace(m[2])
		if text == "" {
			text = target
		}
		return fmt.Sprintf(`<a class="internal-link" title="%s" href="%s">%s%s</a>`,
			html.EscapeString(target), html.EscapeString(d.linkHref(target)), text, m[3])
	})
	return replaceSubmatch(externalLinkRe, s, func(m []string) string {
		text := strings.TrimSpace(m[2])
		if text == "" {
			d.extLinks++
			text = "[" + strconv.Itoa(d.extLinks) + "]"
		}
		return fmt.Sprintf(`<a class="external-link" href="%s">%s</a>`, html.EscapeString(m[1]), text)
	})
}

func (d *document) linkHref(target string) string {
	if strings.HasPrefix(target, "#") {
		return "#" + sanitized_anchor_name.Create(target[1:])
	}
	return pageHref(target)
}

// pageHref maps a page name to its site URL. A #section suffix becomes a
// fragment.
func pageHref(target string) string {
	page, section, hasSection := strings.Cut(target, "#")
	href := "/" + canonicalName(page)
	if hasSection {
		href += "#" + sanitized_anchor_name.Create(section)
	}
	return href
}

// canonicalName turns a page or template title into its file-system form:
// surrounding space trimmed, inner spaces as underscores, first letter upper.
func canonicalName(title string) string {
	name := strings.Join(strings.Fields(title), "_")
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// redlink renders a link to a target that does not exist.
func redlink(title, href string) string {
	return fmt.Sprintf(`<a class="internal-link redlink" title="%s" href="%s">%s</a>`,
		html.EscapeString(title), html.EscapeString(href), html.EscapeString(title))
}

// Links returns the canonical names of the pages text links to, in order of
// first appearance. Media and same-page section links are skipped.
func Links(text string) []string {
	matches := internalLinkRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := strings.TrimSpace(m[1])
		if target == "" || strings.HasPrefix(target, "#") || mediaPrefixRe.MatchString(target) {
			continue
		}
		page, _, _ := strings.Cut(target, "#")
		name := canonicalName(page)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// plainText strips tags and placeholder tokens.
func (d *document) plainText(s string) string {
	return strings.TrimSpace(d.stripTokens(htmlTagRe.ReplaceAllString(s, "")))
}
