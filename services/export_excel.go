package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const estimateSheet = "Estimate"

var usdFormat = `"$"#,##0`

// GenerateExcel writes an estimate as a single-sheet workbook. Amounts are
// stored as numbers with a currency format so they stay usable in formulas.
func GenerateExcel(data ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), estimateSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	for col, width := range map[string]float64{"A": 44, "B": 16, "C": 16} {
		if err := f.SetColWidth(estimateSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.MergeCell(estimateSheet, "A1", "C1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(estimateSheet, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(estimateSheet, "A1", "C1", styles.title)
	f.SetCellValue(estimateSheet, "A2", "Reference: "+data.Reference)
	f.SetCellValue(estimateSheet, "C2", data.CreatedDate)
	f.SetCellStyle(estimateSheet, "A2", "C2", styles.muted)

	row := 4
	for _, d := range data.Details {
		f.SetCellValue(estimateSheet, cell("A", row), sanitizeExcelCell(d.Label))
		f.SetCellValue(estimateSheet, cell("B", row), sanitizeExcelCell(d.Value))
		f.SetCellStyle(estimateSheet, cell("A", row), cell("A", row), styles.label)
		row++
	}
	if len(data.Details) > 0 {
		row++
	}

	for i, h := range []string{"Item", "Low", "High"} {
		f.SetCellValue(estimateSheet, cell(string(rune('A'+i)), row), h)
	}
	f.SetCellStyle(estimateSheet, cell("A", row), cell("C", row), styles.header)
	row++

	for _, r := range data.Rows {
		f.SetCellValue(estimateSheet, cell("A", row), sanitizeExcelCell(r.Label))
		f.SetCellValue(estimateSheet, cell("B", row), r.Low)
		f.SetCellValue(estimateSheet, cell("C", row), r.High)
		f.SetCellStyle(estimateSheet, cell("A", row), cell("A", row), styles.item)
		f.SetCellStyle(estimateSheet, cell("B", row), cell("C", row), styles.amount)
		row++
	}

	f.SetCellValue(estimateSheet, cell("A", row), "Estimated Total")
	f.SetCellValue(estimateSheet, cell("B", row), data.TotalLow)
	f.SetCellValue(estimateSheet, cell("C", row), data.TotalHigh)
	f.SetCellStyle(estimateSheet, cell("A", row), cell("A", row), styles.totalLabel)
	f.SetCellStyle(estimateSheet, cell("B", row), cell("C", row), styles.total)
	row += 2

	for _, n := range data.Notes {
		if err := f.MergeCell(estimateSheet, cell("A", row), cell("C", row)); err != nil {
			return nil, fmt.Errorf("merge note: %w", err)
		}
		f.SetCellValue(estimateSheet, cell("A", row), sanitizeExcelCell(n))
		f.SetCellStyle(estimateSheet, cell("A", row), cell("C", row), styles.note)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetStyles struct {
	title, muted, label, header, item, amount, totalLabel, total, note int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	defs := []struct {
		dst   *int
		name  string
		style *excelize.Style
	}{
		{&s.title, "title", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16, Color: "#2E6854"}}},
		{&s.muted, "muted", &excelize.Style{Font: &excelize.Font{Size: 9, Color: "#6E6E6E"}}},
		{&s.label, "label", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 10}}},
		{&s.header, "header", &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2E6854"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thinBorders(),
		}},
		{&s.item, "item", &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}},
		{&s.amount, "amount", &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders(), CustomNumFmt: &usdFormat}},
		{&s.totalLabel, "total label", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, Border: thinBorders()}},
		{&s.total, "total", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, Border: thinBorders(), CustomNumFmt: &usdFormat}},
		{&s.note, "note", &excelize.Style{
			Font:      &excelize.Font{Italic: true, Size: 9, Color: "#6E6E6E"},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, fmt.Errorf("create %s style: %w", d.name, err)
		}
		*d.dst = id
	}
	return s, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// sanitizeExcelCell prefixes values Excel would treat as a formula.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
