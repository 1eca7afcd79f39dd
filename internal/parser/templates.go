package parser

import (
	"errors"
	"log/slog"
	"path"
	"regexp"
	"strconv"
	"strings"
)

var (
	placeholderRe = regexp.MustCompile(`\{\{\{\s*([^{}|]*?)\s*(?:\|([^{}]*))?\}\}\}`)
	templateRe    = regexp.MustCompile(`\{\{\s*([^#{}|\s][^{}|]*?)\s*(\|[^{}]*)?\}\}`)
	templatePfxRe = regexp.MustCompile(`(?i)^template\s*:\s*`)

	noincludeBlockRe = regexp.MustCompile(`(?is)<noinclude\s*>.*?</noinclude\s*>`)
	onlyincludeRe    = regexp.MustCompile(`(?is)<onlyinclude\s*>(.*?)</onlyinclude\s*>`)
	includeonlyTagRe = regexp.MustCompile(`(?i)</?includeonly\s*>`)
)

// hasPendingMacro reports whether s holds a call that a later pass can
// still expand. A bare {{ in prose does not count.
func hasPendingMacro(s string) bool {
	return callRe.MatchString(s) || templateRe.MatchString(s) || placeholderRe.MatchString(s)
}

// templates resolves leftover {{{placeholders}}} to their defaults and then
// transcludes every innermost template call.
func (d *document) templates(s string) string {
	s = substituteArgs(s, nil)
	return replaceSubmatch(templateRe, s, func(m []string) string {
		return d.transclude(m[1], m[2])
	})
}

func (d *document) transclude(title, params string) string {
	title = strings.TrimSpace(templatePfxRe.ReplaceAllString(strings.TrimSpace(title), ""))
	name := canonicalName(title)
	body, err := d.e.source.ReadTemplate(name)
	if err != nil {
		if !errors.Is(err, ErrTemplateNotFound) {
			d.e.logger.Warn("parser: template unreadable",
				slog.String("template", name),
				slog.String("error", err.Error()))
		}
		return redlink(title, path.Join(d.e.cfg.TemplatesFolder, name))
	}
	return substituteArgs(templateBody(body), templateArgs(params))
}

// templateBody applies the inclusion tags: noinclude sections are dropped,
// onlyinclude sections win over everything else, includeonly tags vanish.
func templateBody(body string) string {
	body = noincludeBlockRe.ReplaceAllString(body, "")
	if only := onlyincludeRe.FindAllStringSubmatch(body, -1); only != nil {
		var b strings.Builder
		for _, m := range only {
			b.WriteString(m[1])
		}
		body = b.String()
	}
	body = includeonlyTagRe.ReplaceAllString(body, "")
	return strings.TrimSpace(body)
}

// templateArgs binds "|a|key=b|c" as 1=a, key=b, 2=c. Only unnamed
// arguments advance the position.
func templateArgs(params string) map[string]string {
	args := make(map[string]string)
	if params == "" {
		return args
	}
	pos := 0
	for _, raw := range strings.Split(params[1:], "|") {
		if key, val, ok := cutNamed(raw); ok {
			args[key] = val
			continue
		}
		pos++
		args[strconv.Itoa(pos)] = strings.TrimSpace(raw)
	}
	return args
}

// substituteArgs replaces {{{name|default}}} with the bound value, the
// default or "". Nested placeholders resolve innermost first.
func substituteArgs(s string, args map[string]string) string {
	for placeholderRe.MatchString(s) {
		s = replaceSubmatch(placeholderRe, s, func(m []string) string {
			if v, ok := args[m[1]]; ok {
				return v
			}
			return strings.TrimSpace(m[2])
		})
	}
	return s
}
