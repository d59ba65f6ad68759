package services

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
)

// DefaultEmptyTenderMessage replaces the tender table when a project has no
// submissions.
const DefaultEmptyTenderMessage = "No tender submissions available."

// SignKind classifies the stored percentage sign of a submission.
type SignKind int

const (
	SignNone SignKind = iota
	SignPositive
	SignNegative
	SignOther
)

// Sign is the qualitative direction of a percentage adjustment. Stored values
// other than "positive" and "negative" are kept verbatim in Raw.
type Sign struct {
	Kind SignKind
	Raw  string
}

// ParseSign normalizes a stored sign value. Matching is case-insensitive.
func ParseSign(s string) Sign {
	trimmed := strings.TrimSpace(s)
	switch {
	case trimmed == "":
		return Sign{Kind: SignNone}
	case strings.EqualFold(trimmed, "positive"):
		return Sign{Kind: SignPositive, Raw: s}
	case strings.EqualFold(trimmed, "negative"):
		return Sign{Kind: SignNegative, Raw: s}
	default:
		return Sign{Kind: SignOther, Raw: s}
	}
}

// Prefix returns the marker printed before the percentage.
func (s Sign) Prefix() string {
	switch s.Kind {
	case SignPositive:
		return "(+)"
	case SignNegative:
		return "(-)"
	case SignOther:
		return s.Raw
	default:
		return ""
	}
}

// StoredValue is the value persisted for this sign.
func (s Sign) StoredValue() string {
	switch s.Kind {
	case SignPositive:
		return "positive"
	case SignNegative:
		return "negative"
	case SignOther:
		return s.Raw
	default:
		return ""
	}
}

// TenderSubmission is one supplier response attached to a project.
type TenderSubmission struct {
	ID                         string
	ScheduleOfRatesNo          string
	TradingPartnerReferenceNo  string
	SupplierName               string
	ResponseNo                 string
	ScheduleOfRatesDescription string
	PercentageAdjustment       float64
	PercentageSign             Sign
	EntryDate                  string
	Remarks                    string
}

// FormatAdjustment renders a percentage adjustment as "(+) 10%", "(-) 30%"
// or "0%". Without a stored sign, a negative adjustment is marked "(-)".
func FormatAdjustment(adjustment float64, sign Sign) string {
	if adjustment == 0 {
		return "0%"
	}
	magnitude := strconv.FormatFloat(math.Abs(adjustment), 'f', -1, 64) + "%"
	prefix := sign.Prefix()
	if sign.Kind == SignNone && adjustment < 0 {
		prefix = "(-)"
	}
	if prefix == "" {
		return magnitude
	}
	return prefix + " " + magnitude
}

// SortTenderSubmissions returns a copy of rows ordered by adjustment,
// largest first. Rows with equal adjustments keep their relative order.
func SortTenderSubmissions(rows []TenderSubmission) []TenderSubmission {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b TenderSubmission) int {
		return cmp.Compare(b.PercentageAdjustment, a.PercentageAdjustment)
	})
	return sorted
}

// TenderColumn names one column of the tender submissions table.
type TenderColumn string

const (
	ColumnSerial            TenderColumn = "serial"
	ColumnScheduleOfRatesNo TenderColumn = "schedule_of_rates_no"
	ColumnTradingPartnerRef TenderColumn = "trading_partner_reference_no"
	ColumnSupplierName      TenderColumn = "supplier_name"
	ColumnResponseNo        TenderColumn = "response_no"
	ColumnDescription       TenderColumn = "schedule_of_rates_description"
	ColumnPercentage        TenderColumn = "percentage"
	ColumnEntryDate         TenderColumn = "entry_date"
	ColumnRemarks           TenderColumn = "remarks"
)

// DefaultTenderColumns is the narrow layout used unless a project picks
// another one.
var DefaultTenderColumns = []TenderColumn{ColumnSerial, ColumnSupplierName, ColumnPercentage}

// AllTenderColumns lists every supported column in display order.
var AllTenderColumns = []TenderColumn{
	ColumnSerial,
	ColumnScheduleOfRatesNo,
	ColumnTradingPartnerRef,
	ColumnSupplierName,
	ColumnResponseNo,
	ColumnDescription,
	ColumnPercentage,
	ColumnEntryDate,
	ColumnRemarks,
}

// Label is the column header text.
func (c TenderColumn) Label() string {
	switch c {
	case ColumnSerial:
		return "S/N"
	case ColumnScheduleOfRatesNo:
		return "Schedule of Rates No."
	case ColumnTradingPartnerRef:
		return "Trading Partner Ref No."
	case ColumnSupplierName:
		return "Supplier Name"
	case ColumnResponseNo:
		return "Response No."
	case ColumnDescription:
		return "Description"
	case ColumnPercentage:
		return "Percentage"
	case ColumnEntryDate:
		return "Entry Date"
	case ColumnRemarks:
		return "Remarks"
	default:
		return string(c)
	}
}

// Valid reports whether c is a known column.
func (c TenderColumn) Valid() bool {
	return slices.Contains(AllTenderColumns, c)
}

// cell returns the text shown for row in this column. serial is 1-based.
func (c TenderColumn) cell(row TenderSubmission, serial int) string {
	switch c {
	case ColumnSerial:
		return strconv.Itoa(serial)
	case ColumnScheduleOfRatesNo:
		return row.ScheduleOfRatesNo
	case ColumnTradingPartnerRef:
		return row.TradingPartnerReferenceNo
	case ColumnSupplierName:
		return row.SupplierName
	case ColumnResponseNo:
		return row.ResponseNo
	case ColumnDescription:
		return row.ScheduleOfRatesDescription
	case ColumnPercentage:
		return FormatAdjustment(row.PercentageAdjustment, row.PercentageSign)
	case ColumnEntryDate:
		return row.EntryDate
	case ColumnRemarks:
		return row.Remarks
	default:
		return ""
	}
}

// ParseTenderColumns converts stored column keys, dropping unknown and
// duplicate keys. An empty result falls back to DefaultTenderColumns.
func ParseTenderColumns(keys []string) []TenderColumn {
	var cols []TenderColumn
	for _, k := range keys {
		c := TenderColumn(strings.TrimSpace(k))
		if !c.Valid() || slices.Contains(cols, c) {
			continue
		}
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return slices.Clone(DefaultTenderColumns)
	}
	return cols
}

// TenderTableOptions configures TenderSubmissionsTable.
type TenderTableOptions struct {
	Columns      []TenderColumn
	EmptyMessage string
}

// TenderSubmissionsTable renders rows as an HTML table ranked by adjustment.
// With no rows it returns the empty message instead of a table.
func TenderSubmissionsTable(rows []TenderSubmission, opts TenderTableOptions) string {
	if len(rows) == 0 {
		msg := opts.EmptyMessage
		if msg == "" {
			msg = DefaultEmptyTenderMessage
		}
		return messageFragment(msg)
	}

	cols := opts.Columns
	if len(cols) == 0 {
		cols = DefaultTenderColumns
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Label()
	}

	table := newHTMLTable("tender-submissions", headers...)
	for i, row := range SortTenderSubmissions(rows) {
		cells := make([]htmlCell, len(cols))
		for j, c := range cols {
			cells[j] = textCell(c.cell(row, i+1))
		}
		table.addRow(cells...)
	}
	return table.String()
}
