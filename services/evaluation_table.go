package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultEmptyEvaluationMessage replaces the evaluation table when a project
// has no evaluation approach.
const DefaultEmptyEvaluationMessage = "No evaluation approach selected."

// CriterionBand is one score band of the technical criteria, e.g.
// "Excellent (90-100)" → "Exceeds every requirement".
type CriterionBand struct {
	Label       string
	Description string
}

// EvaluationApproach is a weighting of price, safety and technical merit.
// The three percentages are expected to add up to 100 but nothing here
// enforces it.
type EvaluationApproach struct {
	ID                  string
	Name                string
	PricePercentage     float64
	SafetyPercentage    float64
	TechnicalPercentage float64
	TechnicalCriteria   []CriterionBand
}

// TotalPercentage is the sum of the three weights as stored.
func (a EvaluationApproach) TotalPercentage() float64 {
	return a.PricePercentage + a.SafetyPercentage + a.TechnicalPercentage
}

// ParseTechnicalCriteria decodes a JSON object of label → description while
// keeping the keys in document order. null or empty input yields no bands.
func ParseTechnicalCriteria(raw []byte) ([]CriterionBand, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("technical criteria: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("technical criteria: expected a JSON object")
	}

	var bands []CriterionBand
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("technical criteria: %w", err)
		}
		label, _ := keyTok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("technical criteria %q: %w", label, err)
		}
		bands = append(bands, CriterionBand{
			Label:       label,
			Description: FromAny(value).String(),
		})
	}

	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("technical criteria: %w", err)
	}
	return bands, nil
}

// MarshalTechnicalCriteria encodes bands as a JSON object in band order.
// Later bands with a repeated label are dropped.
func MarshalTechnicalCriteria(bands []CriterionBand) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	seen := make(map[string]bool, len(bands))
	for _, b := range bands {
		if seen[b.Label] {
			continue
		}
		seen[b.Label] = true
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b.Description)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseCriteriaLines reads one "label: description" band per line, the
// format used by the approach edit form. Blank lines are skipped and a line
// without a colon becomes a label with no description.
func ParseCriteriaLines(text string) []CriterionBand {
	var bands []CriterionBand
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, desc, _ := strings.Cut(line, ":")
		bands = append(bands, CriterionBand{
			Label:       strings.TrimSpace(label),
			Description: strings.TrimSpace(desc),
		})
	}
	return bands
}

// CriteriaLines is the inverse of ParseCriteriaLines.
func CriteriaLines(bands []CriterionBand) string {
	lines := make([]string, len(bands))
	for i, b := range bands {
		lines[i] = b.Label + ": " + b.Description
	}
	return strings.Join(lines, "\n")
}

// FormatPercent renders a weight as "60%" or "12.5%".
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// SupplierColumns returns the distinct supplier names of rows in tender
// ranking order.
func SupplierColumns(rows []TenderSubmission) []string {
	seen := make(map[string]bool, len(rows))
	var names []string
	for _, r := range SortTenderSubmissions(rows) {
		name := strings.TrimSpace(r.SupplierName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// EvaluationCriteriaTable renders the Price / Safety / Technical / Total
// scoring grid with one empty column per supplier for the evaluation panel
// to fill in. A nil approach yields emptyMessage, or the default message.
func EvaluationCriteriaTable(approach *EvaluationApproach, rows []TenderSubmission, emptyMessage string) string {
	if approach == nil {
		if emptyMessage == "" {
			emptyMessage = DefaultEmptyEvaluationMessage
		}
		return messageFragment(emptyMessage)
	}

	suppliers := SupplierColumns(rows)
	headers := append([]string{"Criteria", "Weightage", "Details"}, suppliers...)
	table := newHTMLTable("evaluation-criteria", headers...)

	blanks := make([]htmlCell, len(suppliers))
	for i := range blanks {
		blanks[i] = textCell("")
	}
	addRow := func(label string, weight float64, detail htmlCell) {
		cells := append([]htmlCell{textCell(label), textCell(FormatPercent(weight)), detail}, blanks...)
		table.addRow(cells...)
	}

	addRow("Price", approach.PricePercentage, textCell(""))
	addRow("Safety", approach.SafetyPercentage, textCell(""))
	addRow("Technical", approach.TechnicalPercentage, markupCell(criteriaList(approach.TechnicalCriteria)))
	addRow("Total", approach.TotalPercentage(), textCell(""))

	return table.String()
}

// criteriaList renders bands as an escaped "label: description" list.
func criteriaList(bands []CriterionBand) string {
	if len(bands) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, band := range bands {
		b.WriteString("<li>")
		b.WriteString(escapeHTML(band.Label))
		b.WriteString(": ")
		b.WriteString(escapeHTML(band.Description))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}
