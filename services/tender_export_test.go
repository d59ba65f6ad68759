package services

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestGenerateTenderExcel(t *testing.T) {
	p := sampleProject()
	p.Submissions = append(p.Submissions, TenderSubmission{SupplierName: "=HYPERLINK(\"x\")", PercentageAdjustment: -1})

	data, err := GenerateTenderExcel(p)
	if err != nil {
		t.Fatalf("GenerateTenderExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheet := "Tender Submissions"
	title, _ := f.GetCellValue(sheet, "A1")
	if title != "Bridge Repair" {
		t.Errorf("A1 = %q, want project name", title)
	}

	for i, c := range AllTenderColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 5)
		if got, _ := f.GetCellValue(sheet, cell); got != c.Label() {
			t.Errorf("header %s = %q, want %q", cell, got, c.Label())
		}
	}

	supplierCol := 4
	wantOrder := []string{"B", "A", "C", "'=HYPERLINK(\"x\")"}
	for i, want := range wantOrder {
		cell, _ := excelize.CoordinatesToCellName(supplierCol, 6+i)
		if got, _ := f.GetCellValue(sheet, cell); got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}

	if got, _ := f.GetCellValue(sheet, "G6"); got != "(-) 30%" {
		t.Errorf("G6 = %q, want %q", got, "(-) 30%")
	}
	if got, _ := f.GetCellValue(sheet, "A8"); got != "3" {
		t.Errorf("A8 = %q, want serial 3", got)
	}
}

func TestGenerateTenderExcel_NoSubmissions(t *testing.T) {
	data, err := GenerateTenderExcel(ProjectData{Name: "Empty"})
	if err != nil {
		t.Fatalf("GenerateTenderExcel() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("GenerateTenderExcel() returned empty bytes")
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"Acme":      "Acme",
		"=SUM(A1)":  "'=SUM(A1)",
		"+1":        "'+1",
		"-1":        "'-1",
		"@cmd":      "'@cmd",
		"|pipe":     "'|pipe",
		"mid=value": "mid=value",
	}
	for in, want := range tests {
		if got := sanitizeExcelCell(in); got != want {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", in, got, want)
		}
	}
}
