package services

import (
	"net/url"
	"testing"

	"septicestimator/costdata"
)

func loadTables(t *testing.T) *costdata.Tables {
	t.Helper()
	tables, err := costdata.Load("")
	if err != nil {
		t.Fatalf("failed to load embedded cost data: %v", err)
	}
	return tables
}

// installationForm is a complete installation submission for a region
// with a 1.0 multiplier.
func installationForm() url.Values {
	return url.Values{
		FieldWorkType:   {"installation"},
		FieldRegion:     {"AZ"},
		FieldSoilType:   {"good"},
		FieldSystemType: {"conventional-gravity"},
		FieldBedrooms:   {"3"},
	}
}
