package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReferencesList(t *testing.T) {
	src := `A<ref name="a">Source A</ref> B<ref name='a'/> C<ref>Source B</ref>
{{reflist}}`
	got := testEngine(t, nil).Parse(src).Data
	want := `A<sup id="cite-ref-1" class="reference"><a href="#cite-note-1">[1]</a></sup>` +
		` B<sup id="cite-ref-1-1" class="reference"><a href="#cite-note-1">[1]</a></sup>` +
		` C<sup id="cite-ref-2" class="reference"><a href="#cite-note-2">[2]</a></sup>` + "\n" +
		`<ol class="references">` + "\n" +
		`<li id="cite-note-1">↑ <sup><a href="#cite-ref-1">a</a></sup> <sup><a href="#cite-ref-1-1">b</a></sup> Source A</li>` + "\n" +
		`<li id="cite-note-2"><a href="#cite-ref-2">↑</a> Source B</li>` + "\n" +
		`</ol>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReferenceDeclaredAfterReuse(t *testing.T) {
	src := "x<ref name=n/> y<ref name=n>Late</ref>\n<references/>"
	got := testEngine(t, nil).Parse(src).Data
	if !strings.Contains(got, "</sup> Late</li>") {
		t.Errorf("content of a later named ref was not recorded:\n%s", got)
	}
	if strings.Count(got, `<li id="cite-note-`) != 1 {
		t.Errorf("expected one entry:\n%s", got)
	}
}

func TestReferenceWaitsForMacros(t *testing.T) {
	src := "x<ref>{{#if: {{#if: a | b }} | c }}</ref>\n<references/>"
	got := testEngine(t, nil).Parse(src).Data
	if !strings.Contains(got, `<a href="#cite-ref-1">↑</a> c</li>`) {
		t.Errorf("ref content not expanded:\n%s", got)
	}
}

func TestOnlyFirstReferencesMarkerRenders(t *testing.T) {
	got := testEngine(t, nil).Parse("x<ref>r</ref>\n<references/>\n<references />").Data
	if n := strings.Count(got, `<ol class="references">`); n != 1 {
		t.Errorf("lists = %d, want 1:\n%s", n, got)
	}
}

func TestRefNameForms(t *testing.T) {
	tests := map[string]string{
		` name="a b"`: "a b",
		` name='x'`:   "x",
		` name=plain`: "plain",
		` group="g"`:  "",
		"":            "",
	}
	for in, want := range tests {
		if got := refName(in); got != want {
			t.Errorf("refName(%q) = %q, want %q", in, got, want)
		}
	}
}
