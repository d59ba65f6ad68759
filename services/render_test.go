package services

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedOptions() RenderOptions {
	opts := DefaultRenderOptions()
	opts.Now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	return opts
}

func sampleProject() ProjectData {
	return ProjectData{
		ID:              "p1",
		Name:            "Bridge Repair",
		ClientName:      "City Council",
		DocumentNo:      "DOC-9",
		ReferenceNo:     "REF-42",
		PublicationDate: "2025-02-01",
		ClosingDate:     "2025-03-31 00:00:00.000Z",
		Description:     "Repair of the north bridge",
		SuppliersCount:  3,
		Status:          "in evaluation",
		Submissions:     sampleSubmissions(),
		Approach:        balancedApproach(),
	}
}

func TestRender_ProjectFields(t *testing.T) {
	text := "{{project.name}}|{{customer.Name}}|{{project.document_no}}|{{project.reference_no}}|" +
		"{{project.publication_date}}|{{project.closing_date}}|{{project.suppliers_count}}|{{project.status}}|{{today}}"

	got, err := Render(text, sampleProject(), fixedOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "Bridge Repair|City Council|DOC-9|REF-42|01 Feb 2025|31 Mar 2025|3|in evaluation|14 Mar 2025"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_Tables(t *testing.T) {
	got, err := Render("<div>{{tender_submissions_table}}</div><div>{{ evaluation_criteria_table }}</div>", sampleProject(), fixedOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{
		`<table class="tender-submissions"`,
		"<td>(-) 30%</td>",
		`<table class="evaluation-criteria"`,
		"<td>Total</td><td>100%</td>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRender_EvaluationKeys(t *testing.T) {
	got, _ := Render("{{evaluation.name}} {{evaluation.price_percentage}}/{{evaluation.total_percentage}}", sampleProject(), fixedOptions())
	if got != "Balanced 60/100" {
		t.Errorf("Render() = %q", got)
	}

	p := sampleProject()
	p.Approach = nil
	got, _ = Render("[{{evaluation.name}}] {{evaluation_criteria_table}}", p, fixedOptions())
	if got != "[] No evaluation approach selected." {
		t.Errorf("Render() without approach = %q", got)
	}
}

func TestRender_ProjectTypeKeys(t *testing.T) {
	p := sampleProject()
	p.ProjectType = &ProjectType{Name: "Works", PricePercentage: 62.5, QualityPercentage: 37.5}
	got, _ := Render("{{project_type.name}} {{project_type.price_percentage}}/{{project_type.quality_percentage}}", p, fixedOptions())
	if got != "Works 62.5/37.5" {
		t.Errorf("Render() = %q", got)
	}

	got, _ = Render("[{{project_type.name}}]", sampleProject(), fixedOptions())
	if got != "[]" {
		t.Errorf("Render() without project type = %q", got)
	}
}

func TestRender_EmptyProject(t *testing.T) {
	got, err := Render("{{tender_submissions_table}}", ProjectData{}, fixedOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "No tender submissions available." {
		t.Errorf("Render() = %q", got)
	}
}

func TestRender_EmptyTemplate(t *testing.T) {
	if _, err := Render("", sampleProject(), fixedOptions()); !errors.Is(err, ErrTemplateEmpty) {
		t.Errorf("Render(\"\") error = %v, want ErrTemplateEmpty", err)
	}
}

func TestRender_WhitespaceTemplateUnchanged(t *testing.T) {
	for _, text := range []string{" ", "   \n\t", "\r\n\r\n"} {
		got, err := Render(text, sampleProject(), fixedOptions())
		if err != nil {
			t.Errorf("Render(%q) error = %v", text, err)
			continue
		}
		if got != text {
			t.Errorf("Render(%q) = %q, want input unchanged", text, got)
		}
	}
}

func TestRender_FreeFormParameters(t *testing.T) {
	p := sampleProject()
	p.Parameters = map[string]any{
		"site":    map[string]any{"address": "12 Quay St"},
		"project": "overridden",
		"weeks":   float64(6),
	}
	got, err := Render("{{site.address}} {{weeks}} {{project.name}}", p, fixedOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "12 Quay St 6 Bridge Repair" {
		t.Errorf("Render() = %q", got)
	}
}

func TestRender_ColumnOverride(t *testing.T) {
	p := sampleProject()
	p.TenderColumns = []TenderColumn{ColumnSupplierName, ColumnRemarks}

	got, _ := Render("{{tender_submissions_table}}", p, fixedOptions())
	if !strings.Contains(got, "<th>Supplier Name</th><th>Remarks</th>") {
		t.Errorf("project columns not applied:\n%s", got)
	}

	opts := fixedOptions()
	opts.TenderColumns = []TenderColumn{ColumnPercentage}
	got, _ = Render("{{tender_submissions_table}}", p, opts)
	if !strings.Contains(got, "<thead><tr><th>Percentage</th></tr></thead>") {
		t.Errorf("option columns not applied:\n%s", got)
	}
}

func TestRender_ValuesNotReinterpreted(t *testing.T) {
	p := sampleProject()
	p.Name = "{{customer.Name}}"
	got, _ := Render("{{project.name}}", p, fixedOptions())
	if got != "{{customer.Name}}" {
		t.Errorf("Render() = %q, substituted values must not be merged again", got)
	}
}

func TestRender_Concurrent(t *testing.T) {
	p := sampleProject()
	opts := fixedOptions()
	want, _ := Render("{{project.name}} {{tender_submissions_table}}", p, opts)

	done := make(chan string, 8)
	for i := 0; i < 8; i++ {
		go func() {
			out, _ := Render("{{project.name}} {{tender_submissions_table}}", p, opts)
			done <- out
		}()
	}
	for i := 0; i < 8; i++ {
		if got := <-done; got != want {
			t.Errorf("concurrent render differs")
		}
	}
}

func TestFormatDisplayDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"2025-02-01", "01 Feb 2025"},
		{"2025-03-31 00:00:00.000Z", "31 Mar 2025"},
		{"2025-03-31T10:00:00Z", "31 Mar 2025"},
		{"14 Mar 2025", "14 Mar 2025"},
		{" next Tuesday ", "next Tuesday"},
	}
	for _, tt := range tests {
		if got := FormatDisplayDate(tt.in); got != tt.want {
			t.Errorf("FormatDisplayDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatInputDate(t *testing.T) {
	for in, want := range map[string]string{
		"31 Mar 2025":              "2025-03-31",
		"2025-03-31 00:00:00.000Z": "2025-03-31",
		"2025-03-31":               "2025-03-31",
		"soon":                     "",
		"":                         "",
	} {
		if got := FormatInputDate(in); got != want {
			t.Errorf("FormatInputDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatRelative(t *testing.T) {
	if got := FormatRelative(time.Time{}); got != "" {
		t.Errorf("FormatRelative(zero) = %q", got)
	}
	if got := FormatRelative(time.Now().Add(-72 * time.Hour)); got != "3 days ago" {
		t.Errorf("FormatRelative(-72h) = %q, want %q", got, "3 days ago")
	}
	if got := FormatCount(1234567); got != "1,234,567" {
		t.Errorf("FormatCount() = %q", got)
	}
}
