package parser

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"regexp"
	"strings"
)

// Placeholder tokens are wrapped in private-use runes so that no rewrite
// rule can match inside them.
const (
	tokenOpen  = "\uE000"
	tokenClose = "\uE001"
)

// Token kinds.
const (
	tokNowiki = "nowiki"
	tokLess   = "lt"
	tokPipe   = "pipe"
	tokEquals = "eq"
)

// document is the per-parse state. Nothing in it is shared between parses.
type document struct {
	e *Engine

	input string // raw text, never modified

	vars     map[string]string
	refs     refRegistry
	vault    []string
	metadata Metadata
	anchors  map[string]int
	extLinks int

	key     string // unguessable per-document token key
	tokenRe *regexp.Regexp

	passes    int
	converged bool
}

type rule struct {
	name  string
	apply func(*document, string) string
}

// rules is the per-pass rewrite order.
var rules = [...]rule{
	{"escape", (*document).escape},
	{"media", (*document).media},
	{"links", (*document).links},
	{"functions", (*document).functions},
	{"templates", (*document).templates},
	{"structure", (*document).structure},
	{"references", (*document).references},
}

func (e *Engine) newDocument(text string) *document {
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	key := hex.EncodeToString(buf[:])
	return &document{
		e:        e,
		input:    text,
		vars:     make(map[string]string),
		refs:     refRegistry{byName: make(map[string]*reference)},
		metadata: make(Metadata),
		anchors:  make(map[string]int),
		key:      key,
		tokenRe:  regexp.MustCompile(tokenOpen + key + `([a-z]+)(\d*)` + tokenClose),
	}
}

// run drives the passes to a fixed point, then aggregates references and
// post-processes once.
func (d *document) run() string {
	text := strings.ReplaceAll(d.input, "\r\n", "\n")
	for d.passes < d.e.maxPasses {
		next := d.pass(text)
		d.passes++
		if next == text {
			d.converged = true
			break
		}
		text = next
	}
	if !d.converged {
		d.e.logger.Warn("parser: pass limit reached, returning partial expansion",
			slog.Int("passes", d.passes))
		// Macros expanded in the final pass never went through escape.
		text = sanitize(text)
	}
	text = d.renderReferences(text)
	return d.postProcess(text)
}

func (d *document) pass(text string) string {
	for _, r := range rules {
		text = r.apply(d, text)
	}
	return text
}

// token returns a placeholder that survives every rewrite rule and is
// restored by the post-processor.
func (d *document) token(kind, payload string) string {
	return tokenOpen + d.key + kind + payload + tokenClose
}

// trusted marks engine-generated markup so the sanitizer leaves it alone.
func (d *document) trusted(markup string) string {
	return strings.ReplaceAll(markup, "<", d.token(tokLess, ""))
}

// stripTokens removes placeholders, used when deriving plain text.
func (d *document) stripTokens(s string) string {
	return d.tokenRe.ReplaceAllString(s, "")
}

// rewrite replaces every match of re in s. fn receives the submatches, the
// already rewritten prefix and the unread remainder after the match.
func rewrite(re *regexp.Regexp, s string, fn func(m []string, done, rest string) string) string {
	locs := re.FindAllStringSubmatchIndex(s, -1)
	if locs == nil {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, loc := range locs {
		b.WriteString(s[last:loc[0]])
		m := make([]string, len(loc)/2)
		for i := range m {
			if loc[2*i] >= 0 {
				m[i] = s[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(fn(m, b.String(), s[loc[1]:]))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// replaceSubmatch is rewrite without the surrounding context.
func replaceSubmatch(re *regexp.Regexp, s string, fn func(m []string) string) string {
	return rewrite(re, s, func(m []string, _, _ string) string {
		return fn(m)
	})
}
