// Package costdata decodes and validates the two cost documents that drive
// the estimator: the septic system cost table and the regional adjustment
// table.
package costdata

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Range is a [low, high] dollar range. Documents encode it as a
// two-element array.
type Range struct {
	Low  float64
	High float64
}

// Scale returns the range with both bounds multiplied by f.
func (r Range) Scale(f float64) Range {
	return Range{Low: r.Low * f, High: r.High * f}
}

// Add returns the element-wise sum of two ranges.
func (r Range) Add(o Range) Range {
	return Range{Low: r.Low + o.Low, High: r.High + o.High}
}

func (r Range) valid() bool {
	return r.Low >= 0 && r.Low <= r.High
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{r.Low, r.High})
}

func (r *Range) UnmarshalJSON(b []byte) error {
	var pair []float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	return r.fromPair(pair)
}

func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	var pair []float64
	if err := node.Decode(&pair); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	return r.fromPair(pair)
}

func (r *Range) fromPair(pair []float64) error {
	if len(pair) != 2 {
		return fmt.Errorf("range: expected [low, high], got %d values", len(pair))
	}
	r.Low, r.High = pair[0], pair[1]
	return nil
}

// Component is one priced part of an installation (permit, tank, drainfield...).
type Component struct {
	Key        string `json:"key" yaml:"key"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
	Range      Range  `json:"range" yaml:"range"`
	PerBedroom bool   `json:"per_bedroom,omitempty" yaml:"per_bedroom,omitempty"`
}

// System is an installable septic system type. A soil multiplier of -1
// (or a soil missing from the map) marks the soil as unsuitable.
type System struct {
	Key             string             `json:"key" yaml:"key"`
	Name            string             `json:"name" yaml:"name"`
	Description     string             `json:"description" yaml:"description"`
	SoilMultipliers map[string]float64 `json:"soil_multipliers" yaml:"soil_multipliers"`
	Components      []Component        `json:"components" yaml:"components"`
}

// SoilFactor returns the soil multiplier and whether the soil is suitable.
func (s System) SoilFactor(soil string) (float64, bool) {
	f, ok := s.SoilMultipliers[soil]
	if !ok || f <= 0 {
		return 0, false
	}
	return f, true
}

// BaseCost is the unadjusted system cost for the given bedroom count.
func (s System) BaseCost(bedrooms int) Range {
	var total Range
	for _, c := range s.Components {
		r := c.Range
		if c.PerBedroom {
			r = r.Scale(float64(bedrooms))
		}
		total = total.Add(r)
	}
	return total
}

// Soil is a selectable soil classification.
type Soil struct {
	Key  string `json:"key" yaml:"key"`
	Name string `json:"name" yaml:"name"`
}

// Item is a repair or maintenance line item.
type Item struct {
	Key            string `json:"key" yaml:"key"`
	Name           string `json:"name" yaml:"name"`
	Range          Range  `json:"range" yaml:"range"`
	ScalesWithTank bool   `json:"scales_with_tank,omitempty" yaml:"scales_with_tank,omitempty"`
}

// SystemsDocument is the installation/repair/maintenance cost table.
type SystemsDocument struct {
	BaseTankGallons int                `json:"base_tank_gallons" yaml:"base_tank_gallons"`
	TankSizes       []int              `json:"tank_sizes" yaml:"tank_sizes"`
	TankMaterials   map[string]float64 `json:"tank_materials" yaml:"tank_materials"`
	WaterUsage      map[string]float64 `json:"water_usage" yaml:"water_usage"`
	Soils           []Soil             `json:"soils" yaml:"soils"`
	Systems         []System           `json:"systems" yaml:"systems"`
	Repair          []Item             `json:"repair" yaml:"repair"`
	Maintenance     []Item             `json:"maintenance" yaml:"maintenance"`
}

// Locale is a named multiplier, used for the national default and for a
// state's catch-all sub-region.
type Locale struct {
	Name       string  `json:"name" yaml:"name"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// SubRegion refines a state multiplier for a range of 3-digit zip prefixes.
type SubRegion struct {
	Name       string  `json:"name" yaml:"name"`
	Zip3       string  `json:"zip3" yaml:"zip3"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// State is a state-level regional adjustment. RegionDefault, when set,
// applies to locations no sub-region covers.
type State struct {
	Name          string      `json:"name" yaml:"name"`
	Multiplier    float64     `json:"multiplier" yaml:"multiplier"`
	Zip3          []string    `json:"zip3" yaml:"zip3"`
	Regions       []SubRegion `json:"regions,omitempty" yaml:"regions,omitempty"`
	RegionDefault *Locale     `json:"region_default,omitempty" yaml:"region_default,omitempty"`
}

// RegionalDocument is the regional adjustment table.
type RegionalDocument struct {
	Default   Locale             `json:"default" yaml:"default"`
	AreaTypes map[string]float64 `json:"area_types" yaml:"area_types"`
	States    map[string]State   `json:"states" yaml:"states"`
}

// Documents bundles both cost documents.
type Documents struct {
	Systems  SystemsDocument
	Regional RegionalDocument
}
