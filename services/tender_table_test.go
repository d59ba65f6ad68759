package services

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSortTenderSubmissions(t *testing.T) {
	rows := sampleSubmissions()
	sorted := SortTenderSubmissions(rows)

	var got []string
	for _, r := range sorted {
		got = append(got, r.SupplierName)
	}
	if diff := cmp.Diff([]string{"B", "A", "C"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	if rows[0].SupplierName != "A" {
		t.Error("SortTenderSubmissions modified its input")
	}
}

func TestSortTenderSubmissions_Stable(t *testing.T) {
	rows := []TenderSubmission{
		{SupplierName: "first", PercentageAdjustment: 5},
		{SupplierName: "second", PercentageAdjustment: 5},
		{SupplierName: "third", PercentageAdjustment: 5},
	}
	sorted := SortTenderSubmissions(rows)
	for i, r := range sorted {
		if r.SupplierName != rows[i].SupplierName {
			t.Errorf("position %d = %q, want %q", i, r.SupplierName, rows[i].SupplierName)
		}
	}
}

func TestFormatAdjustment(t *testing.T) {
	tests := []struct {
		name string
		adj  float64
		sign string
		want string
	}{
		{"negative", 30, "negative", "(-) 30%"},
		{"positive", 10, "positive", "(+) 10%"},
		{"case insensitive", 7.5, "NeGaTiVe", "(-) 7.5%"},
		{"zero", 0, "positive", "0%"},
		{"zero no sign", 0, "", "0%"},
		{"no sign", 4, "", "4%"},
		{"other sign passes through", 2, "approx", "approx 2%"},
		{"magnitude only", -12.5, "negative", "(-) 12.5%"},
		{"unsigned negative keeps direction", -3, "", "(-) 3%"},
		{"unsigned negative fraction", -0.25, "", "(-) 0.25%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAdjustment(tt.adj, ParseSign(tt.sign)); got != tt.want {
				t.Errorf("FormatAdjustment(%v, %q) = %q, want %q", tt.adj, tt.sign, got, tt.want)
			}
		})
	}
}

func TestParseSign_StoredValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"Positive", "positive"},
		{" NEGATIVE ", "negative"},
		{"approx", "approx"},
	}
	for _, tt := range tests {
		if got := ParseSign(tt.in).StoredValue(); got != tt.want {
			t.Errorf("ParseSign(%q).StoredValue() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTenderSubmissionsTable_DefaultColumns(t *testing.T) {
	html := TenderSubmissionsTable(sampleSubmissions(), TenderTableOptions{})

	for _, want := range []string{
		"<th>S/N</th><th>Supplier Name</th><th>Percentage</th>",
		"<tr><td>1</td><td>B</td><td>(-) 30%</td></tr>",
		"<tr><td>2</td><td>A</td><td>(+) 10%</td></tr>",
		"<tr><td>3</td><td>C</td><td>0%</td></tr>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("table missing %q\n%s", want, html)
		}
	}
	if strings.Index(html, "<td>B</td>") > strings.Index(html, "<td>A</td>") {
		t.Error("B should be ranked before A")
	}
}

func TestTenderSubmissionsTable_Empty(t *testing.T) {
	if got := TenderSubmissionsTable(nil, TenderTableOptions{}); got != "No tender submissions available." {
		t.Errorf("empty table = %q", got)
	}
	if got := TenderSubmissionsTable(nil, TenderTableOptions{EmptyMessage: "Nothing yet"}); got != "Nothing yet" {
		t.Errorf("custom empty message = %q", got)
	}
}

func TestTenderSubmissionsTable_EscapesValues(t *testing.T) {
	rows := []TenderSubmission{{SupplierName: `<script>alert("x")</script> & Co`}}
	html := TenderSubmissionsTable(rows, TenderTableOptions{})

	if strings.Contains(html, "<script>") {
		t.Errorf("supplier name was not escaped:\n%s", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") || !strings.Contains(html, "&amp; Co") {
		t.Errorf("expected escaped supplier name:\n%s", html)
	}
}

func TestTenderSubmissionsTable_WideColumns(t *testing.T) {
	rows := []TenderSubmission{{
		ScheduleOfRatesNo:         "SOR-7",
		TradingPartnerReferenceNo: "TP-9",
		SupplierName:              "Acme",
		ResponseNo:                "R-1",
		PercentageAdjustment:      3,
		PercentageSign:            ParseSign("positive"),
		EntryDate:                 "01 Apr 2025",
		Remarks:                   "late",
	}}
	html := TenderSubmissionsTable(rows, TenderTableOptions{Columns: AllTenderColumns})

	for _, c := range AllTenderColumns {
		if !strings.Contains(html, "<th>"+c.Label()+"</th>") {
			t.Errorf("missing header %q", c.Label())
		}
	}
	for _, v := range []string{"SOR-7", "TP-9", "R-1", "(+) 3%", "01 Apr 2025", "late"} {
		if !strings.Contains(html, "<td>"+v+"</td>") {
			t.Errorf("missing cell %q", v)
		}
	}
}

func TestParseTenderColumns(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want []TenderColumn
	}{
		{"nil falls back", nil, DefaultTenderColumns},
		{"unknown only falls back", []string{"bogus"}, DefaultTenderColumns},
		{"keeps order", []string{"supplier_name", "serial"}, []TenderColumn{ColumnSupplierName, ColumnSerial}},
		{"drops duplicates and unknown", []string{"remarks", "x", " remarks ", "percentage"}, []TenderColumn{ColumnRemarks, ColumnPercentage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseTenderColumns(tt.keys)); diff != "" {
				t.Errorf("ParseTenderColumns() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTenderColumnOptions(t *testing.T) {
	opts := TenderColumnOptions()
	if len(opts) != len(AllTenderColumns) {
		t.Fatalf("got %d options, want %d", len(opts), len(AllTenderColumns))
	}
	if opts[0].Value != "serial" || opts[0].Label != "S/N" {
		t.Errorf("first option = %+v", opts[0])
	}
}
