package parser

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

func fnIf(_ *document, c call) string {
	if c.arg(0) != "" {
		return c.arg(1)
	}
	return c.arg(2)
}

func fnIfEq(_ *document, c call) string {
	if c.arg(0) == c.arg(1) {
		return c.arg(2)
	}
	return c.arg(3)
}

// fnSwitch returns the value of the first case whose key equals the test
// value. Bare keys fall through to the next case with a value; a bare last
// case or a #default case is used when nothing matches.
func fnSwitch(_ *document, c call) string {
	value := c.arg(0)
	cases := c.args[1:]
	matched := false
	def := ""
	for i, arg := range cases {
		key, val, named := cutNamed(arg)
		if !named {
			if i == len(cases)-1 {
				return arg
			}
			if arg == value {
				matched = true
			}
			continue
		}
		if key == "#default" {
			def = val
			continue
		}
		if matched || key == value {
			return val
		}
	}
	return def
}

func fnVarDefine(d *document, c call) string {
	if c.arg(0) != "" {
		d.vars[c.arg(0)] = c.arg(1)
	}
	return ""
}

func fnVarDefineEcho(d *document, c call) string {
	fnVarDefine(d, c)
	return c.arg(1)
}

// fnVar reads a variable. While a #vardefine for the same name is still
// unevaluated anywhere in the working text the call is left in place and
// retried on the next pass. This is a textual check only: a definition that
// lives inside a template not yet transcluded is not seen.
func fnVar(d *document, c call) string {
	name := c.arg(0)
	pending := regexp.MustCompile(`(?i)\{\{\s*#vardefine(?:echo)?\s*:\s*` + regexp.QuoteMeta(name) + `\s*(?:\||\}\})`)
	if pending.MatchString(c.done) || pending.MatchString(c.rest) {
		return c.raw
	}
	if v := d.vars[name]; v != "" {
		return v
	}
	return c.arg(1)
}

func fnDisplayTitle(d *document, c call) string {
	d.metadata["displayTitle"] = strings.Join(c.args, "|")
	return ""
}

func fnExpr(_ *document, c call) string {
	v, err := evalExpr(c.arg(0))
	if err != nil {
		return errorSpan("Expression error: " + err.Error())
	}
	return v
}

func fnIfExpr(_ *document, c call) string {
	v, err := evalExpr(c.arg(0))
	if err != nil {
		return errorSpan("Expression error: " + err.Error())
	}
	if v != "" && v != "0" {
		return c.arg(1)
	}
	return c.arg(2)
}

var (
	exprWordRe    = regexp.MustCompile(`(?i)\b(mod|div|and|or|not)\b`)
	exprAllowedRe = regexp.MustCompile(`^[0-9.\s+\-*/%^()<>=!&|]*$`)
)

var exprWords = map[string]string{
	"mod": " % ",
	"div": " / ",
	"and": " && ",
	"or":  " || ",
	"not": " ! ",
}

// evalExpr evaluates an arithmetic or comparison expression. Only numbers
// and operators are accepted, so no identifiers or function calls reach the
// evaluator.
func evalExpr(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	src = strings.ReplaceAll(src, "<>", "!=")
	src = exprWordRe.ReplaceAllStringFunc(src, func(w string) string {
		return exprWords[strings.ToLower(w)]
	})
	src = singleEquals(src)
	if !exprAllowedRe.MatchString(src) || strings.Contains(src, "..") {
		return "", errors.New("unrecognised input")
	}
	out, err := expr.Eval(src, nil)
	if err != nil {
		return "", fmt.Errorf("invalid expression %q", src)
	}
	switch v := out.(type) {
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		switch {
		case math.IsInf(v, 0):
			return "INF", nil
		case math.IsNaN(v):
			return "NAN", nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// singleEquals rewrites a lone = into ==, leaving ==, !=, <= and >= alone.
func singleEquals(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '=' {
			b.WriteByte(ch)
			continue
		}
		prev := byte(0)
		if i > 0 {
			prev = s[i-1]
		}
		if prev == '!' || prev == '<' || prev == '>' || prev == '=' {
			b.WriteByte(ch)
			continue
		}
		if i+1 < len(s) && s[i+1] == '=' {
			i++
		}
		b.WriteString("==")
	}
	return b.String()
}
