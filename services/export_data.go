package services

import "time"

// ExportRow is one line of the exported breakdown.
type ExportRow struct {
	Label string
	Low   float64
	High  float64
}

// ExportData holds everything the PDF and Excel writers render. It is built
// from the same EstimateResult the results panel shows.
type ExportData struct {
	Title       string
	Reference   string
	CreatedDate string
	Details     []Detail
	Rows        []ExportRow
	TotalLow    float64
	TotalHigh   float64
	Notes       []string
}

// NewExportData flattens an estimate for export.
func NewExportData(res EstimateResult, created time.Time) ExportData {
	data := ExportData{
		Title:       res.Title,
		Reference:   res.Reference,
		CreatedDate: created.Format("January 2, 2006"),
		Details:     res.Details,
		TotalLow:    res.Low,
		TotalHigh:   res.High,
		Notes:       res.Notes,
	}
	for _, l := range res.Lines {
		data.Rows = append(data.Rows, ExportRow{Label: l.Label, Low: l.Low, High: l.High})
	}
	return data
}

// ExportFilename is the download name for an estimate, e.g.
// "septic-estimate-repair.pdf".
func ExportFilename(workType WorkType, ext string) string {
	name := "septic-estimate"
	if workType != "" {
		name += "-" + string(workType)
	}
	return name + "." + ext
}
