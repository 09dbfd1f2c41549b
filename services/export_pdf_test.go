package services

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestGeneratePDF_Installation(t *testing.T) {
	tables := loadTables(t)
	res, err := Calculate(tables, installationForm())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	result, err := GeneratePDF(NewExportData(res, time.Now()), true)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if !bytes.HasPrefix(result, []byte("%PDF-")) {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

// Every figure on the results panel must be present in the PDF.
func TestGeneratePDF_MatchesScreenValues(t *testing.T) {
	tables := loadTables(t)
	form := installationForm()
	form.Set(FieldRegion, "NY")
	form.Set(FieldZipCode, "10001")
	form.Set(FieldSoilType, "average")
	res, err := Calculate(tables, form)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	data := NewExportData(res, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	result, err := GeneratePDF(data, false)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	pdf := string(result)

	want := []string{res.Title, "Estimated Total", "March 14, 2026", res.Reference}
	for _, l := range res.Lines {
		want = append(want, FormatUSD(l.Low), FormatUSD(l.High))
		if !strings.ContainsAny(l.Label, "()") {
			want = append(want, l.Label)
		}
	}
	want = append(want, FormatUSD(res.Low), FormatUSD(res.High))

	for _, s := range want {
		if !strings.Contains(pdf, s) {
			t.Errorf("PDF does not contain %q", s)
		}
	}
}

func TestGeneratePDF_Repair(t *testing.T) {
	tables := loadTables(t)
	res, err := Calculate(tables, url.Values{
		FieldWorkType:   {"repair"},
		FieldRegion:     {"FL"},
		FieldRepairItem: {"baffle", "lid_riser", "pipe", "alarm"},
	})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	result, err := GeneratePDF(NewExportData(res, time.Now()), false)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if !bytes.Contains(result, []byte(FormatUSD(res.High))) {
		t.Errorf("PDF missing total high %s", FormatUSD(res.High))
	}
}

func TestGeneratePDF_EmptyData(t *testing.T) {
	result, err := GeneratePDF(ExportData{Title: "Empty"}, true)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePDF() returned empty bytes")
	}
}

func TestExportFilename(t *testing.T) {
	if got := ExportFilename(WorkMaintenance, "xlsx"); got != "septic-estimate-maintenance.xlsx" {
		t.Errorf("ExportFilename = %q", got)
	}
	if got := ExportFilename("", "pdf"); got != "septic-estimate.pdf" {
		t.Errorf("ExportFilename = %q", got)
	}
}
