package services

import (
	"strings"
	"testing"
)

func TestSanitizePreview_StripsScripts(t *testing.T) {
	raw := `<p onclick="steal()">Hello</p><script>alert(1)</script><a href="javascript:alert(1)">x</a>`
	got := SanitizePreview(raw)

	for _, bad := range []string{"<script", "onclick", "javascript:"} {
		if strings.Contains(got, bad) {
			t.Errorf("sanitized output still contains %q: %s", bad, got)
		}
	}
	if !strings.Contains(got, "<p>Hello</p>") {
		t.Errorf("expected paragraph to survive: %s", got)
	}
}

func TestSanitizePreview_KeepsGeneratedTables(t *testing.T) {
	html, _ := Render("{{tender_submissions_table}}", sampleProject(), fixedOptions())
	got := SanitizePreview(html)

	for _, want := range []string{
		`class="tender-submissions"`,
		`border="1"`,
		`cellpadding="4"`,
		"<td>(-) 30%</td>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("sanitized table missing %q:\n%s", want, got)
		}
	}
}

func TestSanitizePreview_Blank(t *testing.T) {
	if got := SanitizePreview("  \n"); got != "" {
		t.Errorf("SanitizePreview(blank) = %q", got)
	}
}
