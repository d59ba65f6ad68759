package services

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func balancedApproach() *EvaluationApproach {
	return &EvaluationApproach{
		Name:                "Balanced",
		PricePercentage:     60,
		SafetyPercentage:    10,
		TechnicalPercentage: 30,
		TechnicalCriteria: []CriterionBand{
			{Label: "Excellent", Description: "Exceeds all requirements"},
			{Label: "Good", Description: "Meets requirements"},
			{Label: "Poor", Description: "Below requirements"},
		},
	}
}

func TestEvaluationCriteriaTable(t *testing.T) {
	html := EvaluationCriteriaTable(balancedApproach(), sampleSubmissions(), "")

	for _, want := range []string{
		"<th>Criteria</th><th>Weightage</th><th>Details</th><th>B</th><th>A</th><th>C</th>",
		"<tr><td>Price</td><td>60%</td><td></td><td></td><td></td><td></td></tr>",
		"<tr><td>Safety</td><td>10%</td>",
		"<tr><td>Technical</td><td>30%</td>",
		"<tr><td>Total</td><td>100%</td>",
		"<ul><li>Excellent: Exceeds all requirements</li><li>Good: Meets requirements</li><li>Poor: Below requirements</li></ul>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("table missing %q\n%s", want, html)
		}
	}
}

func TestEvaluationCriteriaTable_TotalNotClamped(t *testing.T) {
	a := &EvaluationApproach{PricePercentage: 60, SafetyPercentage: 10, TechnicalPercentage: 40}
	html := EvaluationCriteriaTable(a, nil, "")
	if !strings.Contains(html, "<td>Total</td><td>110%</td>") {
		t.Errorf("expected 110%% total:\n%s", html)
	}
}

func TestEvaluationCriteriaTable_NoApproach(t *testing.T) {
	if got := EvaluationCriteriaTable(nil, sampleSubmissions(), ""); got != "No evaluation approach selected." {
		t.Errorf("got %q", got)
	}
	if got := EvaluationCriteriaTable(nil, nil, "Pick one"); got != "Pick one" {
		t.Errorf("custom message = %q", got)
	}
}

func TestEvaluationCriteriaTable_EscapesCriteria(t *testing.T) {
	a := balancedApproach()
	a.TechnicalCriteria = []CriterionBand{{Label: "<b>Top</b>", Description: "a & b"}}
	html := EvaluationCriteriaTable(a, nil, "")

	if strings.Contains(html, "<b>Top</b>") {
		t.Errorf("criterion label not escaped:\n%s", html)
	}
	if !strings.Contains(html, "<li>&lt;b&gt;Top&lt;/b&gt;: a &amp; b</li>") {
		t.Errorf("expected escaped criterion:\n%s", html)
	}
}

func TestSupplierColumns(t *testing.T) {
	rows := []TenderSubmission{
		{SupplierName: "Acme", PercentageAdjustment: 1},
		{SupplierName: "Zeta", PercentageAdjustment: 9},
		{SupplierName: "Acme", PercentageAdjustment: 20},
		{SupplierName: "  ", PercentageAdjustment: 3},
	}
	want := []string{"Acme", "Zeta"}
	if diff := cmp.Diff(want, SupplierColumns(rows)); diff != "" {
		t.Errorf("SupplierColumns() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTechnicalCriteria_KeepsOrder(t *testing.T) {
	raw := `{"Zulu": "last letter", "Alpha": "first letter", "Mike": 3}`
	bands, err := ParseTechnicalCriteria([]byte(raw))
	if err != nil {
		t.Fatalf("ParseTechnicalCriteria() error = %v", err)
	}
	want := []CriterionBand{
		{Label: "Zulu", Description: "last letter"},
		{Label: "Alpha", Description: "first letter"},
		{Label: "Mike", Description: "3"},
	}
	if diff := cmp.Diff(want, bands); diff != "" {
		t.Errorf("bands mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTechnicalCriteria_EmptyAndInvalid(t *testing.T) {
	for _, raw := range []string{"", "  ", "null"} {
		bands, err := ParseTechnicalCriteria([]byte(raw))
		if err != nil || bands != nil {
			t.Errorf("ParseTechnicalCriteria(%q) = %v, %v; want nil, nil", raw, bands, err)
		}
	}
	for _, raw := range []string{`["a"]`, `{"a":`, `"text"`} {
		if _, err := ParseTechnicalCriteria([]byte(raw)); err == nil {
			t.Errorf("ParseTechnicalCriteria(%q) expected error", raw)
		}
	}
}

func TestMarshalTechnicalCriteria_RoundTrip(t *testing.T) {
	bands := []CriterionBand{
		{Label: "Excellent", Description: "Exceeds"},
		{Label: "Good", Description: `Meets "most"`},
		{Label: "Excellent", Description: "duplicate"},
	}
	raw, err := MarshalTechnicalCriteria(bands)
	if err != nil {
		t.Fatalf("MarshalTechnicalCriteria() error = %v", err)
	}
	if string(raw) != `{"Excellent":"Exceeds","Good":"Meets \"most\""}` {
		t.Errorf("raw = %s", raw)
	}

	back, err := ParseTechnicalCriteria(raw)
	if err != nil {
		t.Fatalf("ParseTechnicalCriteria() error = %v", err)
	}
	if diff := cmp.Diff(bands[:2], back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCriteriaLines(t *testing.T) {
	text := "Excellent: Exceeds all\n\n  Good :Meets  \nUnlabelled\nRatio: 3:1"
	want := []CriterionBand{
		{Label: "Excellent", Description: "Exceeds all"},
		{Label: "Good", Description: "Meets"},
		{Label: "Unlabelled", Description: ""},
		{Label: "Ratio", Description: "3:1"},
	}
	got := ParseCriteriaLines(text)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseCriteriaLines() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, ParseCriteriaLines(CriteriaLines(got))); diff != "" {
		t.Errorf("CriteriaLines round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := map[float64]string{60: "60%", 12.5: "12.5%", 0: "0%", 110: "110%"}
	for in, want := range tests {
		if got := FormatPercent(in); got != want {
			t.Errorf("FormatPercent(%v) = %q, want %q", in, got, want)
		}
	}
}
