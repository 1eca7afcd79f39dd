package site

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/wikity/internal/parser"
)

func TestHeadings(t *testing.T) {
	got := headings(`<h2 id="a">A <b>bold</b></h2>text<h3 id="b">B</h3>`)
	want := []heading{{level: 2, id: "a", text: "A bold"}, {level: 3, id: "b", text: "B"}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(heading{})); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
}

func TestWithTOC(t *testing.T) {
	four := `<h2 id="a">A</h2>` + "\n" + `<h2 id="b">B</h2>` + "\n" + `<h3 id="c">C</h3>` + "\n" + `<h2 id="d">D</h2>`
	toc := `<div id="toc"><span id="toc-heading"><strong>Contents</strong></span><ol>` +
		`<ol><li><a href="#a">A</a></li></ol>` +
		`<ol><li><a href="#b">B</a></li></ol>` +
		`<ol><ol><li><a href="#c">C</a></li></ol></ol>` +
		`<ol><li><a href="#d">D</a></li></ol>` +
		`</ol></div>`

	tests := []struct {
		name    string
		content string
		meta    parser.Metadata
		want    string
	}{
		{"few headings", `<h2 id="a">A</h2>`, parser.Metadata{}, `<h2 id="a">A</h2>`},
		{"many headings", "intro\n" + four, parser.Metadata{}, "intro\n" + toc + four},
		{"notoc", four, parser.Metadata{"notoc": true}, four},
		{
			"marker",
			`<h2 id="a">A</h2>` + "\n<toc></toc>",
			parser.Metadata{"toc": true},
			`<h2 id="a">A</h2>` + "\n" + `<div id="toc"><span id="toc-heading"><strong>Contents</strong></span><ol><ol><li><a href="#a">A</a></li></ol></ol></div>`,
		},
		{"marker without headings", "x<toc></toc>", parser.Metadata{"toc": true}, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, withTOC(tt.content, tt.meta)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTOCFromParsedPage(t *testing.T) {
	eng := parser.New(parser.NewConfig(), parser.WithSource(parser.FSSource{}))
	res := eng.Parse("__TOC__\n== One ==\n=== Two ===")
	got := withTOC(res.Data, res.Metadata)
	if !strings.Contains(got, `<a href="#one">One</a>`) || strings.Contains(got, "<toc>") {
		t.Errorf("toc not spliced:\n%s", got)
	}
}
