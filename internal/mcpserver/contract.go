package mcpserver

// MarkupGuide describes the wikitext dialect understood by the engine.
// LLM consumers read it before writing or rendering pages.
const MarkupGuide = `# Wikity Markup Guide

Pages are UTF-8 files ending in ` + "`.wiki`" + `. The page name is the path
without the extension, with spaces turned into underscores and each path
segment capitalised: ` + "`guide/getting started.wiki`" + ` becomes
` + "`Guide/Getting_started`" + `.

## Text

- ` + "`''italic''`" + `, ` + "`'''bold'''`" + `, ` + "`'''''both'''''`" + `
- Headings: ` + "`== Section ==`" + ` (levels 1 to 6). Each heading gets an id.
- Horizontal rule: ` + "`----`" + ` on its own line.
- A blank line starts a new paragraph.
- Lists: ` + "`*`" + ` bullets, ` + "`#`" + ` numbers, ` + "`;term: definition`" + `, ` + "`:indent`" + `.
  Repeat the marker to nest (` + "`**`" + `, ` + "`##`" + `).

## Links

- Internal: ` + "`[[Page name]]`" + `, ` + "`[[Page name|label]]`" + `, ` + "`[[Page#Section]]`" + `.
  Letters directly after the brackets join the label: ` + "`[[cat]]s`" + `.
- External: ` + "`[https://example.com label]`" + `. Without a label the link is numbered.
- Images: ` + "`[[File:Name.png|thumb|Caption]]`" + `. Options include ` + "`frame`" + `,
  ` + "`frameless`" + `, ` + "`left`" + `/` + "`right`" + `/` + "`center`" + `, ` + "`200px`" + `, ` + "`100x50px`" + `,
  ` + "`upright`" + `, ` + "`link=`" + `, ` + "`alt=`" + `, ` + "`class=`" + `. Images live in the images folder.

## Templates

` + "`{{Name|a|key=value}}`" + ` includes ` + "`templates/Name.wiki`" + `. Inside the template,
` + "`{{{1}}}`" + ` is the first unnamed argument and ` + "`{{{key|default}}}`" + ` a named one.
` + "`<noinclude>`" + `, ` + "`<includeonly>`" + ` and ` + "`<onlyinclude>`" + ` control what is transcluded.

## Parser functions

- Conditions: ` + "`{{#if: x | then | else}}`" + `, ` + "`{{#ifeq: a | b | then | else}}`" + `,
  ` + "`{{#switch: v | a=1 | b=2 | #default=3}}`" + `, ` + "`{{#ifexpr: 1 > 0 | yes}}`" + `
- Maths: ` + "`{{#expr: 2 * (3 + 4)}}`" + `
- Variables: ` + "`{{#vardefine: n | 1}}`" + `, ` + "`{{#var: n}}`" + `
- Strings: ` + "`{{#len: s}}`" + `, ` + "`{{#sub: s | start | length}}`" + `, ` + "`{{#pos: s | x}}`" + `,
  ` + "`{{#replace: s | from | to}}`" + `, ` + "`{{#explode: a,b | , | 1}}`" + `, ` + "`{{#urlencode: s}}`" + `
- Case: ` + "`{{lc: X}}`" + `, ` + "`{{uc: x}}`" + `, ` + "`{{lcfirst: X}}`" + `, ` + "`{{ucfirst: x}}`" + `
- Padding: ` + "`{{#padleft: 7 | 3 | 0}}`" + `, ` + "`{{#padright: 7 | 3 | 0}}`" + `
- Dates: ` + "`{{#time: YYYY-MM-DD | 2024-03-05}}`" + `, ` + "`{{#date}}`" + `, ` + "`{{#datetime}}`" + `
- Video: ` + "`{{#ev: youtube | id}}`" + ` embeds a player.

## Page directives

- ` + "`{{DISPLAYTITLE: Title}}`" + ` sets the page title.
- ` + "`__TOC__`" + ` places the table of contents; ` + "`__FORCETOC__`" + ` and ` + "`__NOTOC__`" + ` force or
  suppress it. Pages with more than three headings get one automatically.
- ` + "`__NOINDEX__`" + ` asks search engines not to index the page.

## References

` + "`text<ref>Source</ref>`" + ` adds a footnote, ` + "`<ref name=\"a\">...</ref>`" + ` names it and
` + "`<ref name=\"a\"/>`" + ` reuses it. ` + "`<references/>`" + ` or ` + "`{{reflist}}`" + ` renders the list.

## Escaping

` + "`<nowiki>...</nowiki>`" + ` and ` + "`<pre>...</pre>`" + ` are emitted verbatim. ` + "`{{!}}`" + ` is a literal pipe
and ` + "`{{=}}`" + ` a literal equals sign inside template arguments.
`
