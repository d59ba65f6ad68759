package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrDocumentConversion wraps every failure to turn an uploaded template
	// source into text.
	ErrDocumentConversion = errors.New("document could not be converted")
	// ErrUnsupportedFormat is joined with ErrDocumentConversion for file
	// types that have no extractor.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// SupportedTemplateExtensions lists the source file types ExtractDocumentText
// understands.
var SupportedTemplateExtensions = []string{".docx", ".xlsx", ".html", ".htm", ".txt"}

// ExtractDocumentText converts an uploaded template source into the text the
// placeholder resolver works on. The file type is taken from the extension.
func ExtractDocumentText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".html", ".htm":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrDocumentConversion, filename)
		}
		return string(data), nil
	case ".docx":
		text, err := docxText(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDocumentConversion, err)
		}
		return text, nil
	case ".xlsx":
		text, err := xlsxText(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDocumentConversion, err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: %w %q", ErrDocumentConversion, ErrUnsupportedFormat, ext)
	}
}

// docxText returns the paragraphs of word/document.xml, one per line. Text
// runs inside a paragraph are concatenated, which rejoins placeholders that
// Word split across runs.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("open docx: word/document.xml missing")
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	var (
		out     strings.Builder
		para    strings.Builder
		inText  bool
		hasPara bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				para.Reset()
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if hasPara {
					out.WriteByte('\n')
				}
				out.WriteString(para.String())
				hasPara = true
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return out.String(), nil
}

// xlsxText flattens every sheet: cells joined by tabs, rows by newlines and
// sheets by a blank line.
func xlsxText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	var sheets []string
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", name, err)
		}
		lines := make([]string, 0, len(rows))
		for _, r := range rows {
			lines = append(lines, strings.TrimRight(strings.Join(r, "\t"), "\t"))
		}
		sheets = append(sheets, strings.Join(lines, "\n"))
	}
	return strings.Join(sheets, "\n\n"), nil
}
