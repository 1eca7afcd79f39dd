package parser

import (
	"strconv"
)

// postProcess runs once after the passes. Leftover placeholders collapse to
// their defaults and every token is restored. Restored text holds neither
// tokens nor placeholder braces, so running it again changes nothing.
func (d *document) postProcess(s string) string {
	s = substituteArgs(s, nil)
	return d.restoreTokens(s)
}

// restoreTokens loops because vaulted text may itself hold tokens, as with
// nowiki inside pre.
func (d *document) restoreTokens(s string) string {
	for i := 0; i <= len(d.vault) && d.tokenRe.MatchString(s); i++ {
		s = replaceSubmatch(d.tokenRe, s, func(m []string) string {
			switch m[1] {
			case tokNowiki:
				n, err := strconv.Atoi(m[2])
				if err != nil || n < 0 || n >= len(d.vault) {
					return ""
				}
				return escapeVerbatim(d.vault[n])
			case tokLess:
				return "<"
			case tokPipe:
				return "&#124;"
			case tokEquals:
				return "&#61;"
			}
			return ""
		})
	}
	return s
}
