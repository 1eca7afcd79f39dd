package parser

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// callRe matches an innermost parser-function call. Calls whose arguments
// still hold braces are skipped until the inner macro has been expanded.
var callRe = regexp.MustCompile(`\{\{\s*(#?[A-Za-z]\w*)\s*:([^{}]*)\}\}`)

// call is one parser-function invocation.
type call struct {
	name string
	args []string // trimmed
	raw  string   // the whole {{...}} text

	// done is the already rewritten text before the call, rest the unread
	// text after it.
	done, rest string
}

func (c call) arg(i int) string {
	if i < len(c.args) {
		return c.args[i]
	}
	return ""
}

type function func(d *document, c call) string

// functionTable maps a lower-case function name to its implementation. It is
// built once and never written to afterwards.
var functionTable = buildFunctions()

func buildFunctions() map[string]function {
	m := map[string]function{
		"#if":            fnIf,
		"#ifeq":          fnIfEq,
		"#switch":        fnSwitch,
		"#vardefine":     fnVarDefine,
		"#vardefineecho": fnVarDefineEcho,
		"#var":           fnVar,
		"#expr":          fnExpr,
		"#ifexpr":        fnIfExpr,
		"#time":          fnTime("YYYY-MM-DD"),
		"#date":          fnTime("YYYY-MM-DD"),
		"#datetime":      fnTime("YYYY-MM-DD HH:mm:ss"),
		"#ev":            fnEmbedVideo,
		"displaytitle":   fnDisplayTitle,
	}
	for name, fn := range stringFunctions {
		m[name] = fn
		m["#"+name] = fn
	}
	return m
}

// functions expands every parser-function call whose arguments contain no
// nested macros.
func (d *document) functions(s string) string {
	return rewrite(callRe, s, func(m []string, done, rest string) string {
		name := strings.ToLower(m[1])
		fn, ok := functionTable[name]
		if !ok {
			if strings.HasPrefix(name, "#") {
				return errorSpan("Unknown function: " + m[1])
			}
			return m[0]
		}
		return fn(d, call{
			name: name,
			args: splitArgs(m[2]),
			raw:  m[0],
			done: done,
			rest: rest,
		})
	})
}

// splitArgs splits on | and trims every argument.
func splitArgs(s string) []string {
	args := strings.Split(s, "|")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return args
}

// cutNamed splits key=value. Keys that look like HTML attribute text are not
// treated as names.
func cutNamed(arg string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(arg, "=")
	if !ok || strings.ContainsAny(key, `<>"'`) {
		return "", arg, false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

func errorSpan(msg string) string {
	return fmt.Sprintf(`<strong class="error">%s</strong>`, html.EscapeString(msg))
}
