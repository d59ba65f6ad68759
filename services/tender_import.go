package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// TenderImportResult is returned after parsing an uploaded submissions file.
type TenderImportResult struct {
	TotalRows int                `json:"total_rows"`
	ValidRows int                `json:"valid_rows"`
	Errors    []ValidationError  `json:"errors"`
	Rows      []TenderSubmission `json:"-"`
	FileName  string             `json:"-"`
}

// importField describes one importable column and the header texts that map
// onto it.
type importField struct {
	key     string
	label   string
	aliases []string
}

var tenderImportFields = []importField{
	{"supplier_name", "Supplier Name", []string{"supplier", "trading partner name"}},
	{"schedule_of_rates_no", "Schedule of Rates No.", []string{"schedule no.", "schedule no", "sor no."}},
	{"trading_partner_reference_no", "Trading Partner Ref No.", []string{"trading partner reference no.", "partner ref"}},
	{"response_no", "Response No.", []string{"response no", "response"}},
	{"schedule_of_rates_description", "Description", []string{"schedule of rates description"}},
	{"percentage_adjustment", "Percentage Adjustment", []string{"percentage", "adjustment", "% adjustment"}},
	{"percentage_sign", "Sign", []string{"percentage sign", "+/-"}},
	{"entry_date", "Entry Date", []string{"date"}},
	{"supplier_remarks", "Remarks", []string{"supplier remarks"}},
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return rows[0], rows[1:], nil
}

// mapTenderHeaders maps uploaded column headers to submission field keys.
// Unrecognized columns map to "".
func mapTenderHeaders(headers []string) []string {
	lookup := make(map[string]string)
	for _, f := range tenderImportFields {
		lookup[strings.ToLower(f.label)] = f.key
		lookup[f.key] = f.key
		for _, a := range f.aliases {
			lookup[a] = f.key
		}
	}

	mapped := make([]string, len(headers))
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSpace(strings.TrimSuffix(norm, "*"))
		mapped[i] = lookup[norm]
	}
	return mapped
}

// ParsePercentageCell reads cells such as "12.5", "-3%", "(-) 30%" or
// "(+)4". A "(+)"/"(-)" prefix yields the matching sign and a magnitude.
func ParsePercentageCell(s string) (float64, string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	sign := ""
	switch {
	case strings.HasPrefix(s, "(+)"):
		sign = "positive"
		s = strings.TrimSpace(s[3:])
	case strings.HasPrefix(s, "(-)"):
		sign = "negative"
		s = strings.TrimSpace(s[3:])
	}
	if s == "" {
		return 0, sign, nil
	}

	v, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, "", fmt.Errorf("%q is not a number", s)
	}
	return v, sign, nil
}

// ParseTenderFile parses an uploaded .csv or .xlsx file of tender submissions.
// Row numbers in errors are 1-based and count the header row.
func ParseTenderFile(file io.Reader, fileName string) (*TenderImportResult, error) {
	var (
		headers  []string
		dataRows [][]string
		err      error
	)

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	columnKeys := mapTenderHeaders(headers)
	hasSupplier := false
	for _, k := range columnKeys {
		if k == "supplier_name" {
			hasSupplier = true
		}
	}
	if !hasSupplier {
		return nil, fmt.Errorf("file has no Supplier Name column")
	}

	result := &TenderImportResult{
		TotalRows: len(dataRows),
		FileName:  fileName,
	}

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2
		data := make(map[string]string, len(columnKeys))
		blank := true
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[colIdx])
			if v != "" {
				blank = false
			}
			data[key] = v
		}
		if blank {
			result.TotalRows--
			continue
		}

		if data["supplier_name"] == "" {
			result.Errors = append(result.Errors, ValidationError{
				Row: rowNum, Field: "Supplier Name", Message: "Supplier Name is required",
			})
			continue
		}

		adjustment, prefixSign, err := ParsePercentageCell(data["percentage_adjustment"])
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Row: rowNum, Field: "Percentage Adjustment", Message: err.Error(),
			})
			continue
		}
		sign := data["percentage_sign"]
		if sign == "" {
			sign = prefixSign
		}

		result.Rows = append(result.Rows, TenderSubmission{
			ScheduleOfRatesNo:          data["schedule_of_rates_no"],
			TradingPartnerReferenceNo:  data["trading_partner_reference_no"],
			SupplierName:               data["supplier_name"],
			ResponseNo:                 data["response_no"],
			ScheduleOfRatesDescription: data["schedule_of_rates_description"],
			PercentageAdjustment:       adjustment,
			PercentageSign:             ParseSign(sign),
			EntryDate:                  data["entry_date"],
			Remarks:                    data["supplier_remarks"],
		})
	}

	result.ValidRows = len(result.Rows)
	return result, nil
}

// CommitTenderImport saves rows for a project in one transaction, after any
// existing submissions unless replace is set, in which case those are deleted
// first. It returns the number of rows written.
func CommitTenderImport(app core.App, projectID string, rows []TenderSubmission, replace bool) (int, error) {
	col, err := app.FindCollectionByNameOrId("tender_submissions")
	if err != nil {
		return 0, fmt.Errorf("tender_submissions collection not found: %w", err)
	}

	written := 0
	err = app.RunInTransaction(func(txApp core.App) error {
		existing, err := txApp.FindRecordsByFilter(col, "project = {:projectId}", "sort_order", 0, 0,
			map[string]any{"projectId": projectID})
		if err != nil {
			return fmt.Errorf("load existing submissions: %w", err)
		}

		next := 0
		if replace {
			for _, rec := range existing {
				if err := txApp.Delete(rec); err != nil {
					return fmt.Errorf("delete submission %s: %w", rec.Id, err)
				}
			}
		} else {
			for _, rec := range existing {
				next = max(next, rec.GetInt("sort_order"))
			}
		}

		for _, row := range rows {
			next++
			rec := core.NewRecord(col)
			rec.Set("project", projectID)
			rec.Set("sort_order", next)
			ApplySubmission(rec, row)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("save submission %q: %w", row.SupplierName, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// submissionFields is the JSON shape rows take between the validate and
// commit steps of an import.
type submissionFields struct {
	ScheduleOfRatesNo          string  `json:"schedule_of_rates_no,omitempty"`
	TradingPartnerReferenceNo  string  `json:"trading_partner_reference_no,omitempty"`
	SupplierName               string  `json:"supplier_name"`
	ResponseNo                 string  `json:"response_no,omitempty"`
	ScheduleOfRatesDescription string  `json:"schedule_of_rates_description,omitempty"`
	PercentageAdjustment       float64 `json:"percentage_adjustment"`
	PercentageSign             string  `json:"percentage_sign,omitempty"`
	EntryDate                  string  `json:"entry_date,omitempty"`
	Remarks                    string  `json:"supplier_remarks,omitempty"`
}

// EncodeSubmissions serializes parsed rows for the import commit form.
func EncodeSubmissions(rows []TenderSubmission) (string, error) {
	out := make([]submissionFields, len(rows))
	for i, s := range rows {
		out[i] = submissionFields{
			ScheduleOfRatesNo:          s.ScheduleOfRatesNo,
			TradingPartnerReferenceNo:  s.TradingPartnerReferenceNo,
			SupplierName:               s.SupplierName,
			ResponseNo:                 s.ResponseNo,
			ScheduleOfRatesDescription: s.ScheduleOfRatesDescription,
			PercentageAdjustment:       s.PercentageAdjustment,
			PercentageSign:             s.PercentageSign.StoredValue(),
			EntryDate:                  s.EntryDate,
			Remarks:                    s.Remarks,
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode submissions: %w", err)
	}
	return string(b), nil
}

// DecodeSubmissions reverses EncodeSubmissions. Rows without a supplier name
// are rejected.
func DecodeSubmissions(raw string) ([]TenderSubmission, error) {
	var in []submissionFields
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}
	rows := make([]TenderSubmission, len(in))
	for i, f := range in {
		if strings.TrimSpace(f.SupplierName) == "" {
			return nil, fmt.Errorf("row %d has no supplier name", i+1)
		}
		rows[i] = TenderSubmission{
			ScheduleOfRatesNo:          f.ScheduleOfRatesNo,
			TradingPartnerReferenceNo:  f.TradingPartnerReferenceNo,
			SupplierName:               f.SupplierName,
			ResponseNo:                 f.ResponseNo,
			ScheduleOfRatesDescription: f.ScheduleOfRatesDescription,
			PercentageAdjustment:       f.PercentageAdjustment,
			PercentageSign:             ParseSign(f.PercentageSign),
			EntryDate:                  f.EntryDate,
			Remarks:                    f.Remarks,
		}
	}
	return rows, nil
}

// ApplySubmission copies the editable fields of s onto a tender_submissions record.
func ApplySubmission(rec *core.Record, s TenderSubmission) {
	rec.Set("schedule_of_rates_no", s.ScheduleOfRatesNo)
	rec.Set("trading_partner_reference_no", s.TradingPartnerReferenceNo)
	rec.Set("supplier_name", s.SupplierName)
	rec.Set("response_no", s.ResponseNo)
	rec.Set("schedule_of_rates_description", s.ScheduleOfRatesDescription)
	rec.Set("percentage_adjustment", s.PercentageAdjustment)
	rec.Set("percentage_sign", s.PercentageSign.StoredValue())
	rec.Set("entry_date", s.EntryDate)
	rec.Set("supplier_remarks", s.Remarks)
}

// GenerateTenderImportTemplate returns an empty .xlsx with the recognised
// column headers.
func GenerateTenderImportTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Submissions"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, field := range tenderImportFields {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		label := field.label
		if field.key == "supplier_name" {
			label += " *"
		}
		f.SetCellValue(sheet, cell, label)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, colName, colName, 22)
	}
	last, _ := excelize.CoordinatesToCellName(len(tenderImportFields), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}
