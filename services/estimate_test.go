package services

import (
	"errors"
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestEstimate_InstallationBaseline(t *testing.T) {
	tables := loadTables(t)
	res, err := Calculate(tables, installationForm())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	// permit + tank + drainfield x3 + labor, unmultiplied
	wantLow := 500.0 + 1500 + 3*1000 + 2000
	wantHigh := 1500.0 + 3000 + 3*2000 + 4000
	if res.Low != wantLow || res.High != wantHigh {
		t.Errorf("range = %v-%v, want %v-%v", res.Low, res.High, wantLow, wantHigh)
	}
	if res.Multiplier != 1.0 {
		t.Errorf("multiplier = %v, want 1.0", res.Multiplier)
	}

	type row struct {
		Label     string
		Low, High float64
	}
	var got []row
	for _, l := range res.Lines {
		got = append(got, row{l.Label, l.Low, l.High})
	}
	want := []row{
		{"Permits & Site Evaluation", 500, 1500},
		{"Septic Tank", 1500, 3000},
		{"Drainfield (3 bedrooms)", 3000, 6000},
		{"Excavation & Labor", 2000, 4000},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("breakdown mismatch (-want +got):\n%s", diff)
	}
	if res.Title != "Estimate for a New Conventional Gravity System" {
		t.Errorf("title = %q", res.Title)
	}
	if res.Reference == "" {
		t.Error("expected a reference id")
	}
}

func TestEstimate_RegionScalesEveryLine(t *testing.T) {
	tables := loadTables(t)
	base, err := Calculate(tables, installationForm())
	if err != nil {
		t.Fatalf("base error = %v", err)
	}

	form := installationForm()
	form.Set(FieldRegion, "CA")
	scaled, err := Calculate(tables, form)
	if err != nil {
		t.Fatalf("scaled error = %v", err)
	}

	factor := tables.Resolve("CA", "").Multiplier
	if len(base.Lines) != len(scaled.Lines) {
		t.Fatalf("line count changed: %d vs %d", len(base.Lines), len(scaled.Lines))
	}
	for i := range base.Lines {
		for _, pair := range [][2]float64{
			{base.Lines[i].Exact.Low, scaled.Lines[i].Exact.Low},
			{base.Lines[i].Exact.High, scaled.Lines[i].Exact.High},
		} {
			if math.Abs(pair[0]*factor-pair[1]) > 1e-6 {
				t.Errorf("line %q: %v * %v != %v", base.Lines[i].Label, pair[0], factor, pair[1])
			}
		}
	}
}

func TestEstimate_IncompatibleSoil(t *testing.T) {
	tables := loadTables(t)
	for _, soil := range []string{"clay", "rocky", "high-water-table"} {
		t.Run(soil, func(t *testing.T) {
			form := installationForm()
			form.Set(FieldSoilType, soil)
			res, err := Calculate(tables, form)

			var incompat *IncompatibleError
			if !errors.As(err, &incompat) {
				t.Fatalf("expected IncompatibleError, got %v", err)
			}
			if res.Low != 0 || res.High != 0 || len(res.Lines) != 0 {
				t.Errorf("incompatible result carries numbers: %+v", res)
			}
			if len(incompat.Suggestions) == 0 {
				t.Fatal("expected at least one suggestion")
			}
			if !strings.Contains(incompat.Error(), incompat.Suggestions[0].Name) {
				t.Errorf("message %q does not name %q", incompat.Error(), incompat.Suggestions[0].Name)
			}
			for _, s := range incompat.Suggestions {
				sys, _ := tables.System(s.Key)
				if _, ok := sys.SoilFactor(soil); !ok {
					t.Errorf("suggested %s is not compatible with %s", s.Key, soil)
				}
			}
		})
	}
}

func TestEstimate_LowNeverExceedsHigh(t *testing.T) {
	tables := loadTables(t)
	for _, sys := range tables.Systems() {
		for _, soil := range tables.Soils() {
			for _, water := range tables.WaterUsageLevels() {
				for _, region := range []string{"AZ", "MS", "HI", "NY"} {
					form := installationForm()
					form.Set(FieldSystemType, sys.Key)
					form.Set(FieldSoilType, soil.Key)
					form.Set(FieldWaterUsage, water.Key)
					form.Set(FieldRegion, region)
					form.Set(FieldTankSize, "2000")
					form.Set(FieldAreaType, "urban")

					res, err := Calculate(tables, form)
					var incompat *IncompatibleError
					if errors.As(err, &incompat) {
						continue
					}
					if err != nil {
						t.Fatalf("%s/%s: %v", sys.Key, soil.Key, err)
					}
					if res.Low > res.High || res.Low < 0 {
						t.Errorf("%s/%s/%s/%s: low %v high %v", sys.Key, soil.Key, water.Key, region, res.Low, res.High)
					}
					for _, l := range res.Lines {
						if l.Low > l.High || l.Low < 0 {
							t.Errorf("line %q: low %v high %v", l.Label, l.Low, l.High)
						}
					}
				}
			}
		}
	}
}

func TestEstimate_TotalsSumRoundedLines(t *testing.T) {
	tables := loadTables(t)
	form := installationForm()
	form.Set(FieldRegion, "NY")
	form.Set(FieldZipCode, "13201")
	form.Set(FieldSoilType, "average")
	form.Set(FieldWaterUsage, "high")

	res, err := Calculate(tables, form)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	var low, high float64
	for _, l := range res.Lines {
		if math.Mod(l.Low, RoundingIncrement) != 0 || math.Mod(l.High, RoundingIncrement) != 0 {
			t.Errorf("line %q not rounded: %v-%v", l.Label, l.Low, l.High)
		}
		low += l.Low
		high += l.High
	}
	if low != res.Low || high != res.High {
		t.Errorf("total %v-%v != sum of lines %v-%v", res.Low, res.High, low, high)
	}
	if res.Region.SubRegion != "Upstate New York" {
		t.Errorf("sub-region = %q", res.Region.SubRegion)
	}
}

func TestEstimate_AdjustmentChain(t *testing.T) {
	tables := loadTables(t)
	form := installationForm()
	form.Set(FieldTankSize, "1500")
	form.Set(FieldTankMaterial, "fiberglass")
	form.Set(FieldWaterUsage, "low")
	form.Set(FieldAreaType, "rural")

	res, err := Calculate(tables, form)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	want := 1.0 * 1.5 * 1.1 * 0.95 * 0.95 * 1.0
	if math.Abs(res.Multiplier-want) > 1e-9 {
		t.Errorf("multiplier = %v, want %v", res.Multiplier, want)
	}
	notes := strings.Join(res.Notes, "\n")
	for _, frag := range []string{"1500 gallon tank", "fiberglass", "low water usage", "rural site"} {
		if !strings.Contains(notes, frag) {
			t.Errorf("notes missing %q:\n%s", frag, notes)
		}
	}
}

func TestEstimate_Repair(t *testing.T) {
	tables := loadTables(t)
	res, err := Calculate(tables, url.Values{
		FieldWorkType:   {"repair"},
		FieldRegion:     {"AZ"},
		FieldRepairItem: {"baffle", "pump"},
	})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if res.Low != 300+800 || res.High != 900+2000 {
		t.Errorf("range = %v-%v", res.Low, res.High)
	}
	labels := []string{res.Lines[0].Label, res.Lines[1].Label}
	if diff := cmp.Diff([]string{"Baffle Replacement", "Effluent Pump Replacement"}, labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
}

func TestEstimate_ZeroItemsRejected(t *testing.T) {
	tables := loadTables(t)
	tests := []struct {
		workType string
		field    string
		message  string
	}{
		{"repair", FieldRepairItem, "Please select at least one repair item."},
		{"maintenance", FieldMaintenanceItem, "Please select at least one maintenance item."},
	}
	for _, tt := range tests {
		t.Run(tt.workType, func(t *testing.T) {
			res, err := Calculate(tables, url.Values{
				FieldWorkType: {tt.workType},
				FieldRegion:   {"TX"},
			})
			if err == nil {
				t.Fatalf("expected prompt, got estimate %v-%v", res.Low, res.High)
			}
			if got := FieldErrors(err)[tt.field]; got != tt.message {
				t.Errorf("field error = %q, want %q", got, tt.message)
			}
		})
	}

	// Direct call without parsing is also rejected.
	if _, err := Estimate(tables, Selection{WorkType: WorkRepair, Region: "TX"}); err == nil {
		t.Error("Estimate() with no repair items should fail")
	}
}

func TestEstimate_MaintenanceScalesPumpingWithTank(t *testing.T) {
	tables := loadTables(t)
	res, err := Calculate(tables, url.Values{
		FieldWorkType:        {"maintenance"},
		FieldRegion:          {"AZ"},
		FieldMaintenanceItem: {"pumping,inspection"},
		FieldMaintTankSize:   {"1500"},
	})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	got := []LineItem{res.Lines[0], res.Lines[1]}
	want := []LineItem{
		{Label: "Septic Tank Pumping (1500 gallons)", Low: 450, High: 900},
		{Label: "System Inspection", Low: 250, High: 600},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(LineItem{}, "Exact")); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
}

func TestEstimate_HiddenFieldsIgnored(t *testing.T) {
	tables := loadTables(t)
	form := url.Values{
		FieldWorkType:   {"repair"},
		FieldRegion:     {"AZ"},
		FieldRepairItem: {"alarm"},
		// installation-only fields left over from another panel
		FieldSystemType: {"conventional-gravity"},
		FieldSoilType:   {"clay"},
		FieldBedrooms:   {"6"},
	}
	res, err := Calculate(tables, form)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if res.Selection.SystemType != "" || res.Selection.SoilType != "" || res.Selection.Bedrooms != 0 {
		t.Errorf("hidden fields leaked into selection: %+v", res.Selection)
	}
	if res.Low != 150 || res.High != 500 {
		t.Errorf("range = %v-%v, want 150-500", res.Low, res.High)
	}
}

func TestEstimate_NoTables(t *testing.T) {
	if _, err := Estimate(nil, Selection{WorkType: WorkRepair}); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
	if _, err := Calculate(nil, installationForm()); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}
