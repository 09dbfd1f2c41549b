package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"septicestimator/costdata"
)

const disclaimer = "Disclaimer: This is a budget estimate, not a formal quote. " +
	"A formal quote requires a professional site evaluation and soil (percolation) test."

// LineItem is one row of the cost breakdown. Exact holds the unrounded
// adjusted range; Low and High are rounded to RoundingIncrement.
type LineItem struct {
	Label string         `json:"label"`
	Exact costdata.Range `json:"exact"`
	Low   float64        `json:"low"`
	High  float64        `json:"high"`
}

// Detail is a labelled summary of one input, shown above the breakdown.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Adjustment is one multiplier in the chain applied to every line.
type Adjustment struct {
	Label  string  `json:"label"`
	Factor float64 `json:"factor"`
}

// EstimateResult is a computed estimate. Low and High are the sums of the
// rounded line bounds, so the breakdown always adds up to the total.
type EstimateResult struct {
	Reference   string            `json:"reference"`
	WorkType    WorkType          `json:"work_type"`
	Title       string            `json:"title"`
	Low         float64           `json:"low"`
	High        float64           `json:"high"`
	Lines       []LineItem        `json:"lines"`
	Adjustments []Adjustment      `json:"adjustments"`
	Multiplier  float64           `json:"multiplier"`
	Region      costdata.Regional `json:"region"`
	Details     []Detail          `json:"details"`
	Notes       []string          `json:"notes"`
	Selection   Selection         `json:"selection"`
}

// Estimate prices a validated selection. An unsuitable soil/system pair
// returns *IncompatibleError and no numbers.
func Estimate(tables *costdata.Tables, sel Selection) (EstimateResult, error) {
	if tables == nil {
		return EstimateResult{}, ErrDataUnavailable
	}
	switch sel.WorkType {
	case WorkInstallation:
		return estimateInstallation(tables, sel)
	case WorkRepair:
		return estimateItems(tables, sel, WorkRepair)
	case WorkMaintenance:
		return estimateItems(tables, sel, WorkMaintenance)
	default:
		return EstimateResult{}, fmt.Errorf("estimate: %w", ErrUnknownWorkType)
	}
}

func estimateInstallation(tables *costdata.Tables, sel Selection) (EstimateResult, error) {
	system, ok := tables.System(sel.SystemType)
	if !ok {
		return EstimateResult{}, fmt.Errorf("estimate: unknown system %q", sel.SystemType)
	}

	soilFactor, ok := system.SoilFactor(sel.SoilType)
	if !ok {
		incompat := &IncompatibleError{
			SystemKey:  system.Key,
			SystemName: system.Name,
			Soil:       sel.SoilType,
		}
		for _, alt := range tables.CompatibleSystems(sel.SoilType) {
			incompat.Suggestions = append(incompat.Suggestions, Suggestion{Key: alt.Key, Name: alt.Name})
		}
		return EstimateResult{}, incompat
	}

	base := tables.BaseTankGallons()
	tankSize := sel.TankSize
	if tankSize == 0 {
		tankSize = base
	}
	materialFactor, ok := tables.TankMaterialFactor(sel.TankMaterial)
	if !ok {
		return EstimateResult{}, fmt.Errorf("estimate: unknown tank material %q", sel.TankMaterial)
	}
	waterFactor, ok := tables.WaterUsageFactor(sel.WaterUsage)
	if !ok {
		return EstimateResult{}, fmt.Errorf("estimate: unknown water usage %q", sel.WaterUsage)
	}
	areaFactor, ok := tables.AreaTypeFactor(sel.AreaType)
	if !ok {
		return EstimateResult{}, fmt.Errorf("estimate: unknown area type %q", sel.AreaType)
	}
	region := tables.Resolve(sel.Region, sel.ZipCode)

	adjustments := []Adjustment{
		{Label: "Soil: " + Humanize(sel.SoilType), Factor: soilFactor},
		{Label: fmt.Sprintf("Tank size: %d gallons", tankSize), Factor: float64(tankSize) / float64(base)},
		{Label: "Tank material: " + Humanize(sel.TankMaterial), Factor: materialFactor},
		{Label: "Water usage: " + Humanize(sel.WaterUsage), Factor: waterFactor},
		{Label: "Area: " + Humanize(sel.AreaType), Factor: areaFactor},
		{Label: "Region: " + regionLabel(region), Factor: region.Multiplier},
	}
	combined := combine(adjustments)

	var lines []LineItem
	for _, c := range system.Components {
		r := c.Range
		label := ComponentLabel(c)
		if c.PerBedroom {
			r = r.Scale(float64(sel.Bedrooms))
			label = fmt.Sprintf("%s (%s)", label, pluralize(sel.Bedrooms, "bedroom"))
		}
		lines = append(lines, newLine(label, r.Scale(combined)))
	}

	notes := []string{regionNote(region)}
	if soilFactor != 1 {
		notes = append(notes, fmt.Sprintf("%s soil adjusts site work by %s.", Humanize(sel.SoilType), FormatPercentChange(soilFactor)))
	}
	if waterFactor != 1 {
		notes = append(notes, fmt.Sprintf("A %s water usage adjustment of %s has been applied.", sel.WaterUsage, FormatFactor(waterFactor)))
	}
	if tankSize != base {
		notes = append(notes, fmt.Sprintf("Cost adjusted for a %d gallon tank.", tankSize))
	}
	if materialFactor != 1 {
		notes = append(notes, fmt.Sprintf("Cost adjusted for a %s tank (%s).", sel.TankMaterial, FormatFactor(materialFactor)))
	}
	if areaFactor != 1 {
		notes = append(notes, fmt.Sprintf("A %s site adjustment of %s has been applied.", sel.AreaType, FormatFactor(areaFactor)))
	}
	notes = append(notes, disclaimer)

	res := newResult(WorkInstallation, "Estimate for a New "+system.Name, lines, adjustments, combined, region, notes, sel)
	soilName := Humanize(sel.SoilType)
	if soil, ok := tables.Soil(sel.SoilType); ok {
		soilName = soil.Name
	}
	res.Details = append(res.Details,
		Detail{"System", system.Name},
		Detail{"Soil", soilName},
		Detail{"Bedrooms", fmt.Sprint(sel.Bedrooms)},
	)
	if sel.Occupants != "" {
		res.Details = append(res.Details, Detail{"Occupants", sel.Occupants})
	}
	res.Details = append(res.Details,
		Detail{"Water Usage", Humanize(sel.WaterUsage)},
		Detail{"Tank", fmt.Sprintf("%d gallons, %s", tankSize, Humanize(sel.TankMaterial))},
		Detail{"Area", Humanize(sel.AreaType)},
	)
	return res, nil
}

func estimateItems(tables *costdata.Tables, sel Selection, kind WorkType) (EstimateResult, error) {
	keys, lookup, title := sel.RepairItems, tables.RepairItem, "Estimate for System Repairs"
	if kind == WorkMaintenance {
		keys, lookup, title = sel.MaintenanceItems, tables.MaintenanceItem, "Estimate for System Maintenance"
	}
	if len(keys) == 0 {
		return EstimateResult{}, fmt.Errorf("estimate: please select at least one %s item", kind)
	}

	region := tables.Resolve(sel.Region, sel.ZipCode)
	adjustments := []Adjustment{{Label: "Region: " + regionLabel(region), Factor: region.Multiplier}}

	tankRatio := 1.0
	if kind == WorkMaintenance && sel.MaintTankSize > 0 {
		tankRatio = float64(sel.MaintTankSize) / float64(tables.BaseTankGallons())
	}

	var lines []LineItem
	scaledByTank := false
	for _, k := range keys {
		it, ok := lookup(k)
		if !ok {
			return EstimateResult{}, fmt.Errorf("estimate: unknown %s item %q", kind, k)
		}
		r := it.Range.Scale(region.Multiplier)
		label := it.Name
		if it.ScalesWithTank && tankRatio != 1 {
			r = r.Scale(tankRatio)
			label = fmt.Sprintf("%s (%d gallons)", label, sel.MaintTankSize)
			scaledByTank = true
		}
		lines = append(lines, newLine(label, r))
	}

	notes := []string{regionNote(region)}
	if kind == WorkRepair {
		notes = append(notes, "Repair prices do not include excavation complexities or access problems.")
	}
	if scaledByTank {
		notes = append(notes, fmt.Sprintf("Pumping is priced for a %d gallon tank.", sel.MaintTankSize))
	}
	notes = append(notes, disclaimer)

	res := newResult(kind, title, lines, adjustments, region.Multiplier, region, notes, sel)
	if kind == WorkMaintenance {
		res.Details = append(res.Details, Detail{"Tank Size", fmt.Sprintf("%d gallons", sel.MaintTankSize)})
	}
	return res, nil
}

func newLine(label string, exact costdata.Range) LineItem {
	return LineItem{
		Label: label,
		Exact: exact,
		Low:   RoundTo(exact.Low, RoundingIncrement),
		High:  RoundTo(exact.High, RoundingIncrement),
	}
}

func newResult(kind WorkType, title string, lines []LineItem, adjustments []Adjustment, multiplier float64, region costdata.Regional, notes []string, sel Selection) EstimateResult {
	res := EstimateResult{
		Reference:   uuid.NewString(),
		WorkType:    kind,
		Title:       title,
		Lines:       lines,
		Adjustments: adjustments,
		Multiplier:  multiplier,
		Region:      region,
		Notes:       notes,
		Selection:   sel,
		Details: []Detail{
			{"Work Type", Humanize(string(kind))},
			{"Location", locationLabel(region, sel.ZipCode)},
			{"Regional Adjustment", FormatPercentChange(region.Multiplier)},
		},
	}
	for _, l := range lines {
		res.Low += l.Low
		res.High += l.High
	}
	return res
}

func combine(adjustments []Adjustment) float64 {
	f := 1.0
	for _, a := range adjustments {
		f *= a.Factor
	}
	return f
}

func regionLabel(r costdata.Regional) string {
	if r.SubRegion != "" {
		return r.Name + ", " + r.SubRegion
	}
	return r.Name
}

func locationLabel(r costdata.Regional, zip string) string {
	if zip != "" {
		return fmt.Sprintf("%s (ZIP %s)", regionLabel(r), zip)
	}
	return regionLabel(r)
}

func regionNote(r costdata.Regional) string {
	return fmt.Sprintf("Costs are adjusted by %s for your selected region (%s).", FormatPercentChange(r.Multiplier), regionLabel(r))
}

// Calculate filters a raw submission through the wizard, parses it and
// prices it. It is the single path shared by the page, the exports, the
// JSON API and the CLI, so all of them produce identical numbers.
func Calculate(tables *costdata.Tables, values map[string][]string) (EstimateResult, error) {
	if tables == nil {
		return EstimateResult{}, ErrDataUnavailable
	}
	w := Wizard{Step: StepDetails, WorkType: WorkType(firstValue(values, FieldWorkType))}
	if !w.WorkType.Valid() {
		_, err := ParseSelection(tables, values)
		if err == nil {
			err = ErrUnknownWorkType
		}
		return EstimateResult{}, err
	}
	sel, err := ParseSelection(tables, w.Filter(values))
	if err != nil {
		return EstimateResult{}, err
	}
	return Estimate(tables, sel)
}

func firstValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
