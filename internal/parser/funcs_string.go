package parser

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// stringFunctions are registered both with and without a leading #.
var stringFunctions = map[string]function{
	"uc":        fnUpper,
	"lc":        fnLower,
	"ucfirst":   fnUpperFirst,
	"lcfirst":   fnLowerFirst,
	"len":       fnLen,
	"pos":       fnPos,
	"sub":       fnSub,
	"padleft":   fnPadLeft,
	"padright":  fnPadRight,
	"replace":   fnReplace,
	"explode":   fnExplode,
	"urlencode": fnURLEncode,
	"urldecode": fnURLDecode,
}

func fnUpper(_ *document, c call) string {
	return cases.Upper(language.Und).String(c.arg(0))
}

func fnLower(_ *document, c call) string {
	return cases.Lower(language.Und).String(c.arg(0))
}

func fnUpperFirst(_ *document, c call) string {
	return mapFirst(c.arg(0), cases.Upper(language.Und))
}

func fnLowerFirst(_ *document, c call) string {
	return mapFirst(c.arg(0), cases.Lower(language.Und))
}

func mapFirst(s string, caser cases.Caser) string {
	_, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return caser.String(s[:size]) + s[size:]
}

func fnLen(_ *document, c call) string {
	return strconv.Itoa(utf8.RuneCountInString(c.arg(0)))
}

// fnPos returns the 0-based rune offset of the first occurrence of the
// needle at or after the optional offset, or "" when there is none.
func fnPos(_ *document, c call) string {
	hay := []rune(c.arg(0))
	needle := c.arg(1)
	if needle == "" {
		needle = " "
	}
	from := clampIndex(atoi(c.arg(2)), len(hay))
	i := strings.Index(string(hay[from:]), needle)
	if i < 0 {
		return ""
	}
	return strconv.Itoa(from + utf8.RuneCountInString(string(hay[from:])[:i]))
}

// fnSub returns a substring. The start is 1-based, negative values count
// from the end. A negative length drops runes from the end.
func fnSub(_ *document, c call) string {
	s := []rune(c.arg(0))
	start := atoi(c.arg(1))
	switch {
	case start > 0:
		start--
	case start < 0:
		start += len(s)
	}
	start = clampIndex(start, len(s))
	end := len(s)
	if c.arg(2) != "" {
		n := atoi(c.arg(2))
		if n >= 0 {
			end = start + n
		} else {
			end = len(s) + n
		}
	}
	end = clampIndex(end, len(s))
	if end < start {
		return ""
	}
	return string(s[start:end])
}

// maxPad bounds padleft and padright output.
const maxPad = 500

func fnPadLeft(_ *document, c call) string {
	s, fill := pad(c)
	return fill + s
}

func fnPadRight(_ *document, c call) string {
	s, fill := pad(c)
	return s + fill
}

func pad(c call) (s, fill string) {
	s = c.arg(0)
	width := min(atoi(c.arg(1)), maxPad)
	with := c.arg(2)
	if with == "" {
		with = "0"
	}
	need := width - utf8.RuneCountInString(s)
	if need <= 0 {
		return s, ""
	}
	runes := []rune(with)
	var b strings.Builder
	for i := 0; i < need; i++ {
		b.WriteRune(runes[i%len(runes)])
	}
	return s, b.String()
}

func fnReplace(_ *document, c call) string {
	from := c.arg(1)
	if from == "" {
		from = " "
	}
	return strings.ReplaceAll(c.arg(0), from, c.arg(2))
}

// fnExplode splits the string and returns the 0-based indexed piece.
// Negative indices count from the end.
func fnExplode(_ *document, c call) string {
	sep := c.arg(1)
	if sep == "" {
		sep = " "
	}
	parts := strings.Split(c.arg(0), sep)
	if limit := atoi(c.arg(3)); limit > 0 && len(parts) > limit {
		parts = append(parts[:limit-1], strings.Join(parts[limit-1:], sep))
	}
	i := atoi(c.arg(2))
	if i < 0 {
		i += len(parts)
	}
	if i < 0 || i >= len(parts) {
		return ""
	}
	return strings.TrimSpace(parts[i])
}

func fnURLEncode(_ *document, c call) string {
	return url.QueryEscape(c.arg(0))
}

func fnURLDecode(_ *document, c call) string {
	s, err := url.QueryUnescape(c.arg(0))
	if err != nil {
		return c.arg(0)
	}
	return s
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func clampIndex(i, n int) int {
	return max(0, min(i, n))
}
