package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when a date argument is given.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
	"15:04:05",
	"15:04",
}

// dateTokens are matched longest first at each position.
var dateTokens = []string{
	"YYYY", "YY",
	"MMMM", "MMM", "MM", "M",
	"DD", "D",
	"dddd", "ddd", "d",
	"HH", "H", "hh", "h",
	"mm", "m",
	"ss", "s",
	"ZZ", "Z",
	"A", "a",
}

// wikiDateLetters are single-letter tokens of the other date convention.
// They are rendered literally and reported.
const wikiDateLetters = "YyjnFlGgiePOt"

// sharedDateLetters are valid single-letter tokens here that mean something
// else in the other convention, as in d.m or Y-m-d. They are reported only
// when they stand alone and the format has no multi-letter token.
const sharedDateLetters = "dmsH"

// fnTime returns the #time, #date and #datetime implementation with the
// given default format.
func fnTime(defaultFormat string) function {
	return func(d *document, c call) string {
		format := c.arg(0)
		if format == "" {
			format = defaultFormat
		}
		now := d.e.now()
		t := now
		if c.arg(1) != "" {
			var ok bool
			t, ok = parseDate(c.arg(1), now.Location())
			if !ok {
				return errorSpan("Invalid date: " + c.arg(1))
			}
		}
		out, suspicious := formatDate(t, format)
		if suspicious != "" {
			d.e.logger.Warn("parser: date format has single-letter tokens that are rendered literally",
				slog.String("function", c.name),
				slog.String("format", format),
				slog.String("tokens", suspicious))
		}
		return out
	}
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatDate expands date tokens in format. Text in [brackets] is copied
// literally. The second result lists single letters that look like tokens
// of the other convention.
func formatDate(t time.Time, format string) (string, string) {
	type letter struct {
		ch     byte
		shared bool
	}
	var (
		out     strings.Builder
		letters []letter
		multi   bool
	)
	alone := func(i int) bool { return !isLetterAt(format, i-1) && !isLetterAt(format, i+1) }
	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i:], ']')
			if end > 0 {
				out.WriteString(format[i+1 : i+end])
				i += end + 1
				continue
			}
		}
		tok := matchToken(format[i:])
		if tok == "" {
			ch := format[i]
			if strings.IndexByte(wikiDateLetters, ch) >= 0 && alone(i) {
				letters = append(letters, letter{ch: ch})
			}
			out.WriteByte(ch)
			i++
			continue
		}
		if len(tok) > 1 {
			multi = true
		} else if strings.IndexByte(sharedDateLetters, tok[0]) >= 0 && alone(i) {
			letters = append(letters, letter{ch: tok[0], shared: true})
		}
		out.WriteString(renderToken(t, tok))
		i += len(tok)
	}
	var suspicious strings.Builder
	for _, l := range letters {
		if !l.shared || !multi {
			suspicious.WriteByte(l.ch)
		}
	}
	return out.String(), suspicious.String()
}

func matchToken(s string) string {
	for _, tok := range dateTokens {
		if strings.HasPrefix(s, tok) {
			return tok
		}
	}
	return ""
}

func isLetterAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	ch := s[i]
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func renderToken(t time.Time, tok string) string {
	switch tok {
	case "YYYY":
		return strconv.Itoa(t.Year())
	case "YY":
		return fmt.Sprintf("%02d", t.Year()%100)
	case "MMMM":
		return t.Month().String()
	case "MMM":
		return t.Month().String()[:3]
	case "MM":
		return fmt.Sprintf("%02d", int(t.Month()))
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "DD":
		return fmt.Sprintf("%02d", t.Day())
	case "D":
		return strconv.Itoa(t.Day())
	case "dddd":
		return t.Weekday().String()
	case "ddd":
		return t.Weekday().String()[:3]
	case "d":
		return strconv.Itoa(int(t.Weekday()))
	case "HH":
		return fmt.Sprintf("%02d", t.Hour())
	case "H":
		return strconv.Itoa(t.Hour())
	case "hh":
		return fmt.Sprintf("%02d", hour12(t))
	case "h":
		return strconv.Itoa(hour12(t))
	case "mm":
		return fmt.Sprintf("%02d", t.Minute())
	case "m":
		return strconv.Itoa(t.Minute())
	case "ss":
		return fmt.Sprintf("%02d", t.Second())
	case "s":
		return strconv.Itoa(t.Second())
	case "ZZ":
		return t.Format("-0700")
	case "Z":
		return t.Format("-07:00")
	case "A":
		return t.Format("PM")
	case "a":
		return t.Format("pm")
	}
	return tok
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		return 12
	}
	return h
}
