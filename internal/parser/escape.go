package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nowikiRe      = regexp.MustCompile(`(?is)<nowiki\s*>(.*?)</nowiki\s*>`)
	nowikiEmptyRe = regexp.MustCompile(`(?i)<nowiki\s*/>`)
	preRe         = regexp.MustCompile(`(?is)<pre(\s[^>]*)?>(.*?)</pre\s*>`)
	codeBlockRe   = regexp.MustCompile("(?s)```(.+?)```")
	codeSpanRe    = regexp.MustCompile("``([^`\n]+?)``")
	commentRe     = regexp.MustCompile(`(?s)<!--.*?-->`)

	unsafeTagRe = regexp.MustCompile(`(?i)<(/?)\s*(script|link|meta|iframe|frameset|frame|object|embed|applet|form|input|button|textarea|base)\b`)
	openTagRe   = regexp.MustCompile(`<[a-zA-Z][^<>]*>`)
	eventAttrRe = regexp.MustCompile(`(?i)([\s/])on(\w+)(\s*=)`)
	quotedRe    = regexp.MustCompile(`"[^"]*"|'[^']*'`)

	pipeWordRe   = regexp.MustCompile(`\{\{\s*!\s*\}\}`)
	equalsWordRe = regexp.MustCompile(`\{\{\s*=\s*\}\}`)
	reflistRe    = regexp.MustCompile(`(?i)\{\{\s*reflist\s*\}\}`)
	switchWordRe = regexp.MustCompile(`__(NOTOC|FORCETOC|TOC|NOINDEX)__`)

	includeOnlyBlockRe = regexp.MustCompile(`(?is)<includeonly\s*>.*?</includeonly\s*>`)
	includeTagRe       = regexp.MustCompile(`(?i)</?(?:noinclude|onlyinclude)\s*>`)
)

// escape vaults verbatim spans, removes comments and neutralises HTML that
// must not reach the page. Disallowed tags are escaped rather than dropped.
func (d *document) escape(s string) string {
	s = replaceSubmatch(nowikiRe, s, func(m []string) string {
		return d.vaultText(m[1])
	})
	s = nowikiEmptyRe.ReplaceAllString(s, "")
	s = replaceSubmatch(preRe, s, func(m []string) string {
		return "<pre" + m[1] + ">" + d.vaultText(m[2]) + "</pre>"
	})
	s = replaceSubmatch(codeBlockRe, s, func(m []string) string {
		return "<pre>" + d.vaultText(m[1]) + "</pre>"
	})
	s = replaceSubmatch(codeSpanRe, s, func(m []string) string {
		return "<code>" + d.vaultText(m[1]) + "</code>"
	})
	s = commentRe.ReplaceAllString(s, "")
	s = sanitize(s)

	s = pipeWordRe.ReplaceAllString(s, d.token(tokPipe, ""))
	s = equalsWordRe.ReplaceAllString(s, d.token(tokEquals, ""))
	s = reflistRe.ReplaceAllString(s, "<references/>")
	s = replaceSubmatch(switchWordRe, s, func(m []string) string {
		switch m[1] {
		case "NOTOC":
			d.metadata["notoc"] = true
		case "FORCETOC":
			d.metadata["toc"] = true
		case "TOC":
			d.metadata["toc"] = true
			return "<toc></toc>"
		case "NOINDEX":
			d.metadata["noindex"] = true
		}
		return ""
	})

	s = includeOnlyBlockRe.ReplaceAllString(s, "")
	return includeTagRe.ReplaceAllString(s, "")
}

// sanitize escapes disallowed tags and renames on* event handler
// attributes to data-*.
func sanitize(s string) string {
	s = unsafeTagRe.ReplaceAllString(s, "&lt;$1$2")
	return openTagRe.ReplaceAllStringFunc(s, neutraliseEvents)
}

// neutraliseEvents rewrites on* only where it starts an attribute name.
// Quoted attribute values are left alone.
func neutraliseEvents(tag string) string {
	var b strings.Builder
	last := 0
	for _, loc := range quotedRe.FindAllStringIndex(tag, -1) {
		b.WriteString(eventAttrRe.ReplaceAllString(tag[last:loc[0]], "${1}data-$2$3"))
		b.WriteString(tag[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(eventAttrRe.ReplaceAllString(tag[last:], "${1}data-$2$3"))
	return b.String()
}

// vaultText stores text verbatim and returns the token that stands in for it.
func (d *document) vaultText(text string) string {
	d.vault = append(d.vault, text)
	return d.token(tokNowiki, strconv.Itoa(len(d.vault)-1))
}

var verbatimReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
	"{", "&#123;",
	"}", "&#125;",
	"[", "&#91;",
	"]", "&#93;",
)

// escapeVerbatim escapes vaulted text so that no markup, including template
// braces, survives in it.
func escapeVerbatim(s string) string {
	return verbatimReplacer.Replace(s)
}
