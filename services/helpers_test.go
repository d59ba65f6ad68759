package services

import (
	"archive/zip"
	"bytes"
	"testing"
)

// bytesReader wraps a byte slice in a bytes.Reader for use with excelize.OpenReader.
func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

// buildDocx returns a minimal .docx archive whose body is bodyXML.
func buildDocx(t *testing.T, bodyXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		bodyXML +
		`</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// sampleSubmissions is the three-supplier ranking fixture: B(30, negative),
// A(10, positive), C(0) once sorted.
func sampleSubmissions() []TenderSubmission {
	return []TenderSubmission{
		{SupplierName: "A", PercentageAdjustment: 10, PercentageSign: ParseSign("positive")},
		{SupplierName: "B", PercentageAdjustment: 30, PercentageSign: ParseSign("negative")},
		{SupplierName: "C"},
	}
}
