package services

import (
	"strings"

	"github.com/a-h/templ"
)

// htmlCell is one table cell. Text is escaped on output; markup is trusted
// and written as-is, so it must only come from this package's own builders.
type htmlCell struct {
	text   string
	markup string
	raw    bool
}

func textCell(s string) htmlCell {
	return htmlCell{text: s}
}

func markupCell(html string) htmlCell {
	return htmlCell{markup: html, raw: true}
}

// htmlTable builds the table fragments injected into merged documents.
type htmlTable struct {
	class   string
	headers []string
	rows    [][]htmlCell
}

func newHTMLTable(class string, headers ...string) *htmlTable {
	return &htmlTable{class: class, headers: headers}
}

func (t *htmlTable) addRow(cells ...htmlCell) {
	t.rows = append(t.rows, cells)
}

func (t *htmlTable) String() string {
	var b strings.Builder
	b.WriteString(`<table class="`)
	b.WriteString(escapeHTML(t.class))
	b.WriteString(`" border="1" cellpadding="4" style="border-collapse:collapse;width:100%">`)

	b.WriteString("<thead><tr>")
	for _, h := range t.headers {
		b.WriteString("<th>")
		b.WriteString(escapeHTML(h))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead>")

	b.WriteString("<tbody>")
	for _, row := range t.rows {
		b.WriteString("<tr>")
		for _, c := range row {
			b.WriteString("<td>")
			if c.raw {
				b.WriteString(c.markup)
			} else {
				b.WriteString(escapeHTML(c.text))
			}
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

// messageFragment renders the informational text shown instead of an empty
// table.
func messageFragment(msg string) string {
	return escapeHTML(msg)
}

// escapeHTML is the single escaping function used for every interpolated
// value in generated fragments.
func escapeHTML(s string) string {
	return templ.EscapeString(s)
}
