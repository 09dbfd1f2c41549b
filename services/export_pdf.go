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
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfInk    = &props.Color{Red: 33, Green: 37, Blue: 41}
	pdfMuted  = &props.Color{Red: 110, Green: 110, Blue: 110}
	pdfAccent = &props.Color{Red: 46, Green: 104, Blue: 84}
	pdfBand   = &props.Color{Red: 242, Green: 245, Blue: 243}
)

// GeneratePDF renders an estimate as a one-page Letter PDF. Content streams
// are compressed unless compress is false.
func GeneratePDF(data ExportData, compress bool) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithCompression(compress).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   pdfMuted,
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, data)
	addDetails(m, data.Details)
	addBreakdownHeader(m)
	for i, r := range data.Rows {
		addBreakdownRow(m, r, i%2 == 1)
	}
	addTotal(m, data)
	addNotes(m, data.Notes)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, data ExportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Color: pdfAccent,
				}),
			),
		),
		row.New(7).Add(
			col.New(8).Add(
				text.New("Reference: "+data.Reference, props.Text{Size: 8, Color: pdfMuted}),
			),
			col.New(4).Add(
				text.New(data.CreatedDate, props.Text{Size: 8, Align: align.Right, Color: pdfMuted}),
			),
		),
		row.New(4),
	)
}

func addDetails(m core.Maroto, details []Detail) {
	if len(details) == 0 {
		return
	}
	label := props.Text{Size: 9, Style: fontstyle.Bold, Color: pdfInk}
	value := props.Text{Size: 9, Color: pdfInk}
	for _, d := range details {
		m.AddRows(
			row.New(6).Add(
				col.New(4).Add(text.New(d.Label, label)),
				col.New(8).Add(text.New(d.Value, value)),
			),
		)
	}
	m.AddRows(row.New(5))
}

func addBreakdownHeader(m core.Maroto) {
	cell := &props.Cell{BackgroundColor: pdfAccent}
	head := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Top:   1.5,
		Left:  2,
		Right: 2,
	}
	right := head
	right.Align = align.Right

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(text.New("Item", head)).WithStyle(cell),
			col.New(3).Add(text.New("Low", right)).WithStyle(cell),
			col.New(3).Add(text.New("High", right)).WithStyle(cell),
		),
	)
}

func addBreakdownRow(m core.Maroto, r ExportRow, shaded bool) {
	base := props.Text{Size: 9, Color: pdfInk, Top: 1.5, Left: 2, Right: 2}
	right := base
	right.Align = align.Right

	item := col.New(6).Add(text.New(r.Label, base))
	low := col.New(3).Add(text.New(FormatUSD(r.Low), right))
	high := col.New(3).Add(text.New(FormatUSD(r.High), right))
	if shaded {
		cell := &props.Cell{BackgroundColor: pdfBand}
		item, low, high = item.WithStyle(cell), low.WithStyle(cell), high.WithStyle(cell)
	}
	m.AddRows(row.New(7).Add(item, low, high))
}

func addTotal(m core.Maroto, data ExportData) {
	bold := props.Text{Size: 10, Style: fontstyle.Bold, Color: pdfInk, Top: 2, Left: 2, Right: 2}
	right := bold
	right.Align = align.Right
	cell := &props.Cell{BackgroundColor: pdfBand}

	m.AddRows(
		row.New(9).Add(
			col.New(6).Add(text.New("Estimated Total", bold)).WithStyle(cell),
			col.New(3).Add(text.New(FormatUSD(data.TotalLow), right)).WithStyle(cell),
			col.New(3).Add(text.New(FormatUSD(data.TotalHigh), right)).WithStyle(cell),
		),
		row.New(4),
		row.New(12).Add(
			col.New(12).Add(
				text.New(FormatUSDRange(data.TotalLow, data.TotalHigh), props.Text{
					Size:  18,
					Style: fontstyle.Bold,
					Align: align.Center,
					Color: pdfAccent,
				}),
			),
		),
	)
}

func addNotes(m core.Maroto, notes []string) {
	if len(notes) == 0 {
		return
	}
	m.AddRows(row.New(4))
	for _, n := range notes {
		m.AddAutoRow(
			col.New(12).Add(text.New(n, props.Text{Size: 8, Color: pdfMuted, Bottom: 1.5})),
		)
	}
}
