package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfHeaderBg   = &props.Color{Red: 33, Green: 37, Blue: 41}
	pdfHeaderText = &props.Color{Red: 255, Green: 255, Blue: 255}
	pdfMutedText  = &props.Color{Red: 80, Green: 80, Blue: 80}
	pdfStripeBg   = &props.Color{Red: 245, Green: 245, Blue: 245}
)

// GenerateTCBPaperPDF lays out a project's tender ranking and evaluation
// weighting as a printable TCB paper using maroto/v2.
// It returns the raw PDF bytes or an error.
func GenerateTCBPaperPDF(p ProjectData, opts RenderOptions) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addTCBHeader(m, p)
	addTCBSectionTitle(m, "1. Tender Submissions")
	addTCBTenderTable(m, p, opts)
	addTCBSectionTitle(m, "2. Evaluation Criteria")
	addTCBEvaluation(m, p, opts)
	addTCBFooter(m, opts)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate TCB paper PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addTCBHeader adds the title block with the project's identifying fields.
func addTCBHeader(m core.Maroto, p ProjectData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New("Tender Committee Board Paper", props.Text{
					Size:  15,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
		row.New(8).Add(
			col.New(12).Add(
				text.New(p.Name, props.Text{
					Size:  11,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	meta := props.Text{Size: 9, Align: align.Left, Color: pdfMutedText}
	metaRight := meta
	metaRight.Align = align.Right

	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(text.New("Document No.: "+orDash(p.DocumentNo), meta)),
			col.New(6).Add(text.New("Reference No.: "+orDash(p.ReferenceNo), metaRight)),
		),
		row.New(6).Add(
			col.New(6).Add(text.New("Customer: "+orDash(p.ClientName), meta)),
			col.New(6).Add(text.New("Closing Date: "+orDash(FormatDisplayDate(p.ClosingDate)), metaRight)),
		),
	)

	if p.Description != "" {
		m.AddAutoRow(
			col.New(12).Add(text.New(p.Description, props.Text{Size: 9, Top: 2})),
		)
	}

	m.AddRows(row.New(4))
}

func addTCBSectionTitle(m core.Maroto, title string) {
	m.AddRows(
		row.New(9).Add(
			col.New(12).Add(
				text.New(title, props.Text{Size: 11, Style: fontstyle.Bold, Top: 2}),
			),
		),
	)
}

// tenderColumnWidths spreads the 12-unit grid over cols. The serial column
// gets one unit, the percentage column two, and the rest share what is left.
func tenderColumnWidths(cols []TenderColumn) []int {
	widths := make([]int, len(cols))
	remaining := 12
	var flexible []int
	for i, c := range cols {
		switch c {
		case ColumnSerial:
			widths[i] = 1
			remaining--
		case ColumnPercentage:
			widths[i] = 2
			remaining -= 2
		default:
			flexible = append(flexible, i)
		}
	}
	if len(flexible) == 0 || remaining <= 0 {
		return widths
	}
	share := remaining / len(flexible)
	for _, i := range flexible {
		widths[i] = max(share, 1)
	}
	widths[flexible[0]] += remaining - share*len(flexible)
	return widths
}

// addTCBTenderTable adds the ranked submissions in the configured columns.
func addTCBTenderTable(m core.Maroto, p ProjectData, opts RenderOptions) {
	if len(p.Submissions) == 0 {
		msg := opts.EmptyTenderMessage
		if msg == "" {
			msg = DefaultEmptyTenderMessage
		}
		m.AddRows(row.New(7).Add(col.New(12).Add(text.New(msg, props.Text{Size: 9}))))
		return
	}

	cols := opts.tenderColumns(p)
	widths := tenderColumnWidths(cols)

	headerText := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left, Color: pdfHeaderText, Left: 1, Top: 1}
	headerCell := &props.Cell{BackgroundColor: pdfHeaderBg}

	header := row.New(8)
	for i, c := range cols {
		header.Add(col.New(widths[i]).Add(text.New(c.Label(), headerText)).WithStyle(headerCell))
	}
	m.AddRows(header)

	cellText := props.Text{Size: 8, Align: align.Left, Left: 1, Top: 1}
	for i, s := range SortTenderSubmissions(p.Submissions) {
		var stripe *props.Cell
		if i%2 == 1 {
			stripe = &props.Cell{BackgroundColor: pdfStripeBg}
		}
		cells := make([]core.Col, len(cols))
		for j, c := range cols {
			cell := col.New(widths[j]).Add(text.New(c.cell(s, i+1), cellText))
			if stripe != nil {
				cell = cell.WithStyle(stripe)
			}
			cells[j] = cell
		}
		m.AddAutoRow(cells...)
	}

	m.AddRows(row.New(4))
}

// addTCBEvaluation adds the weighting table and technical score bands.
func addTCBEvaluation(m core.Maroto, p ProjectData, opts RenderOptions) {
	if p.Approach == nil {
		msg := opts.EmptyEvaluationMessage
		if msg == "" {
			msg = DefaultEmptyEvaluationMessage
		}
		m.AddRows(row.New(7).Add(col.New(12).Add(text.New(msg, props.Text{Size: 9}))))
		return
	}
	a := p.Approach

	m.AddRows(row.New(6).Add(
		col.New(12).Add(text.New("Approach: "+a.Name, props.Text{Size: 9, Color: pdfMutedText})),
	))

	headerText := props.Text{Size: 8, Style: fontstyle.Bold, Color: pdfHeaderText, Left: 1, Top: 1}
	headerCell := &props.Cell{BackgroundColor: pdfHeaderBg}
	m.AddRows(row.New(8).Add(
		col.New(4).Add(text.New("Criteria", headerText)).WithStyle(headerCell),
		col.New(2).Add(text.New("Weightage", headerText)).WithStyle(headerCell),
		col.New(6).Add(text.New("Details", headerText)).WithStyle(headerCell),
	))

	cellText := props.Text{Size: 8, Left: 1, Top: 1}
	boldText := cellText
	boldText.Style = fontstyle.Bold

	addLine := func(label string, weight float64, style props.Text) {
		m.AddAutoRow(
			col.New(4).Add(text.New(label, style)),
			col.New(2).Add(text.New(FormatPercent(weight), style)),
			col.New(6),
		)
	}

	addLine("Price", a.PricePercentage, cellText)
	addLine("Safety", a.SafetyPercentage, cellText)
	addLine("Technical", a.TechnicalPercentage, cellText)
	for _, band := range a.TechnicalCriteria {
		m.AddAutoRow(
			col.New(6),
			col.New(6).Add(text.New(band.Label+": "+band.Description, cellText)),
		)
	}
	addLine("Total", a.TotalPercentage(), boldText)
}

// addTCBFooter adds the generated-date line at the bottom.
func addTCBFooter(m core.Maroto, opts RenderOptions) {
	m.AddRows(row.New(8))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", opts.now().Format("02 Jan 2006")),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
