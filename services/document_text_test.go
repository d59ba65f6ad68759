package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractDocumentText_PlainAndHTML(t *testing.T) {
	for _, name := range []string{"letter.txt", "letter.HTML", "letter.htm"} {
		got, err := ExtractDocumentText(name, []byte("<p>{{project.name}}</p>"))
		if err != nil {
			t.Fatalf("ExtractDocumentText(%s) error = %v", name, err)
		}
		if got != "<p>{{project.name}}</p>" {
			t.Errorf("ExtractDocumentText(%s) = %q", name, got)
		}
	}
}

func TestExtractDocumentText_InvalidUTF8(t *testing.T) {
	_, err := ExtractDocumentText("bad.txt", []byte{0xff, 0xfe, 0xfd})
	if !errors.Is(err, ErrDocumentConversion) {
		t.Errorf("error = %v, want ErrDocumentConversion", err)
	}
}

func TestExtractDocumentText_Docx(t *testing.T) {
	body := `<w:p><w:r><w:t>Dear {{customer.</w:t></w:r><w:r><w:t>Name}},</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Project:</w:t><w:tab/><w:t>{{project.name}}</w:t></w:r></w:p>` +
		`<w:p/>` +
		`<w:p><w:r><w:t xml:space="preserve">{{tender_submissions_table}}</w:t></w:r></w:p>`
	data := buildDocx(t, body)

	got, err := ExtractDocumentText("paper.docx", data)
	if err != nil {
		t.Fatalf("ExtractDocumentText() error = %v", err)
	}
	want := "Dear {{customer.Name}},\nProject:\t{{project.name}}\n\n{{tender_submissions_table}}"
	if got != want {
		t.Errorf("ExtractDocumentText() = %q, want %q", got, want)
	}
}

func TestExtractDocumentText_CorruptDocx(t *testing.T) {
	_, err := ExtractDocumentText("paper.docx", []byte("not a zip"))
	if !errors.Is(err, ErrDocumentConversion) {
		t.Errorf("error = %v, want ErrDocumentConversion", err)
	}
}

func TestExtractDocumentText_Xlsx(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Project")
	f.SetCellValue("Sheet1", "B1", "{{project.name}}")
	f.SetCellValue("Sheet1", "A2", "Customer")
	f.SetCellValue("Sheet1", "B2", "{{customer.Name}}")
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f.Close()

	got, err := ExtractDocumentText("sheet.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("ExtractDocumentText() error = %v", err)
	}
	want := "Project\t{{project.name}}\nCustomer\t{{customer.Name}}"
	if got != want {
		t.Errorf("ExtractDocumentText() = %q, want %q", got, want)
	}
}

func TestExtractDocumentText_Unsupported(t *testing.T) {
	_, err := ExtractDocumentText("scan.pdf", []byte("%PDF-1.4"))
	if !errors.Is(err, ErrDocumentConversion) {
		t.Errorf("error = %v, want ErrDocumentConversion", err)
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}
