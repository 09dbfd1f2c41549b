package costdata

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Tables is the validated, indexed form of the cost documents. It is
// immutable after New and safe to share between requests.
type Tables struct {
	docs        Documents
	systems     map[string]System
	repair      map[string]Item
	maintenance map[string]Item
	soils       map[string]Soil
	zipSpans    []zipSpan
}

type zipSpan struct {
	lo, hi int
	state  string
}

// Regional is the resolved regional adjustment for a selection.
type Regional struct {
	Code            string  `json:"code,omitempty"`
	Name            string  `json:"name"`
	StateMultiplier float64 `json:"state_multiplier"`
	SubRegion       string  `json:"sub_region,omitempty"`
	SubMultiplier   float64 `json:"sub_multiplier,omitempty"`
	Multiplier      float64 `json:"multiplier"`
}

// StateOption is a state choice for the region dropdown.
type StateOption struct {
	Code string
	Name string
}

// Option is a keyed multiplier choice (water usage, tank material, area type).
type Option struct {
	Key    string
	Factor float64
}

// New validates docs and builds lookup indexes.
func New(docs Documents) (*Tables, error) {
	if err := validate(docs); err != nil {
		return nil, fmt.Errorf("invalid cost data: %w", err)
	}

	t := &Tables{
		docs:        docs,
		systems:     make(map[string]System, len(docs.Systems.Systems)),
		repair:      make(map[string]Item, len(docs.Systems.Repair)),
		maintenance: make(map[string]Item, len(docs.Systems.Maintenance)),
		soils:       make(map[string]Soil, len(docs.Systems.Soils)),
	}
	for _, s := range docs.Systems.Systems {
		t.systems[s.Key] = s
	}
	for _, it := range docs.Systems.Repair {
		t.repair[it.Key] = it
	}
	for _, it := range docs.Systems.Maintenance {
		t.maintenance[it.Key] = it
	}
	for _, s := range docs.Systems.Soils {
		t.soils[s.Key] = s
	}
	for code, st := range docs.Regional.States {
		for _, z := range st.Zip3 {
			lo, hi, _ := parseZip3Span(z)
			t.zipSpans = append(t.zipSpans, zipSpan{lo: lo, hi: hi, state: code})
		}
	}
	sort.Slice(t.zipSpans, func(i, j int) bool { return t.zipSpans[i].lo < t.zipSpans[j].lo })
	return t, nil
}

// Load builds Tables from the embedded documents, or from dir when it is
// not empty.
func Load(dir string) (*Tables, error) {
	var (
		docs Documents
		err  error
	)
	if dir == "" {
		docs, err = Embedded()
	} else {
		docs, err = ReadDir(dir)
	}
	if err != nil {
		return nil, err
	}
	return New(docs)
}

// Documents returns the source documents.
func (t *Tables) Documents() Documents { return t.docs }

// Systems returns the installable systems in document order.
func (t *Tables) Systems() []System { return t.docs.Systems.Systems }

func (t *Tables) System(key string) (System, bool) {
	s, ok := t.systems[key]
	return s, ok
}

// Soils returns the soil classifications in document order.
func (t *Tables) Soils() []Soil { return t.docs.Systems.Soils }

func (t *Tables) Soil(key string) (Soil, bool) {
	s, ok := t.soils[key]
	return s, ok
}

// CompatibleSystems lists the systems suited to soil, cheapest first.
func (t *Tables) CompatibleSystems(soil string) []System {
	var out []System
	for _, s := range t.docs.Systems.Systems {
		if _, ok := s.SoilFactor(soil); ok {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BaseCost(1).Low < out[j].BaseCost(1).Low
	})
	return out
}

func (t *Tables) TankSizes() []int { return t.docs.Systems.TankSizes }

func (t *Tables) BaseTankGallons() int { return t.docs.Systems.BaseTankGallons }

// HasTankSize reports whether gallons is one of the offered tank sizes.
func (t *Tables) HasTankSize(gallons int) bool {
	for _, s := range t.docs.Systems.TankSizes {
		if s == gallons {
			return true
		}
	}
	return false
}

func (t *Tables) TankMaterialFactor(material string) (float64, bool) {
	f, ok := t.docs.Systems.TankMaterials[material]
	return f, ok
}

func (t *Tables) WaterUsageFactor(level string) (float64, bool) {
	f, ok := t.docs.Systems.WaterUsage[level]
	return f, ok
}

func (t *Tables) AreaTypeFactor(area string) (float64, bool) {
	f, ok := t.docs.Regional.AreaTypes[area]
	return f, ok
}

// TankMaterials, WaterUsageLevels and AreaTypes return the choices ordered
// by ascending factor.
func (t *Tables) TankMaterials() []Option { return sortedOptions(t.docs.Systems.TankMaterials) }

func (t *Tables) WaterUsageLevels() []Option { return sortedOptions(t.docs.Systems.WaterUsage) }

func (t *Tables) AreaTypes() []Option { return sortedOptions(t.docs.Regional.AreaTypes) }

func (t *Tables) RepairItems() []Item { return t.docs.Systems.Repair }

func (t *Tables) RepairItem(key string) (Item, bool) {
	it, ok := t.repair[key]
	return it, ok
}

func (t *Tables) MaintenanceItems() []Item { return t.docs.Systems.Maintenance }

func (t *Tables) MaintenanceItem(key string) (Item, bool) {
	it, ok := t.maintenance[key]
	return it, ok
}

// States returns the state choices sorted by name.
func (t *Tables) States() []StateOption {
	out := make([]StateOption, 0, len(t.docs.Regional.States))
	for code, st := range t.docs.Regional.States {
		out = append(out, StateOption{Code: code, Name: st.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (t *Tables) HasState(code string) bool {
	_, ok := t.docs.Regional.States[code]
	return ok
}

// StateForZip maps a zip code to a state code by its 3-digit prefix.
func (t *Tables) StateForZip(zip string) (string, bool) {
	prefix, ok := zip3(zip)
	if !ok {
		return "", false
	}
	for _, span := range t.zipSpans {
		if prefix >= span.lo && prefix <= span.hi {
			return span.state, true
		}
	}
	return "", false
}

// Resolve returns the regional multiplier for a state code and/or zip.
// An explicit state wins over the zip. A sub-region range applies only when
// the zip lies inside the resolved state; otherwise the state's
// region_default applies if it has one. Unknown locations fall back to the
// national default.
func (t *Tables) Resolve(stateCode, zip string) Regional {
	code := stateCode
	if code == "" {
		code, _ = t.StateForZip(zip)
	}
	st, ok := t.docs.Regional.States[code]
	if !ok {
		d := t.docs.Regional.Default
		return Regional{Name: d.Name, StateMultiplier: d.Multiplier, Multiplier: d.Multiplier}
	}

	r := Regional{
		Code:            code,
		Name:            st.Name,
		StateMultiplier: st.Multiplier,
		Multiplier:      st.Multiplier,
	}
	if sub, ok := t.subRegion(st, code, zip); ok {
		r.SubRegion = sub.Name
		r.SubMultiplier = sub.Multiplier
		r.Multiplier = st.Multiplier * sub.Multiplier
	}
	return r
}

func (t *Tables) subRegion(st State, code, zip string) (Locale, bool) {
	if zipState, ok := t.StateForZip(zip); ok && zipState == code {
		prefix, _ := zip3(zip)
		for _, sub := range st.Regions {
			lo, hi, err := parseZip3Span(sub.Zip3)
			if err != nil {
				continue
			}
			if prefix >= lo && prefix <= hi {
				return Locale{Name: sub.Name, Multiplier: sub.Multiplier}, true
			}
		}
	}
	if st.RegionDefault != nil {
		return *st.RegionDefault, true
	}
	return Locale{}, false
}

func sortedOptions(m map[string]float64) []Option {
	out := make([]Option, 0, len(m))
	for k, f := range m {
		out = append(out, Option{Key: k, Factor: f})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Factor != out[j].Factor {
			return out[i].Factor < out[j].Factor
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func zip3(zip string) (int, bool) {
	zip = strings.TrimSpace(zip)
	if len(zip) < 3 {
		return 0, false
	}
	n, err := strconv.Atoi(zip[:3])
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseZip3Span parses "350-369" or "885".
func parseZip3Span(s string) (int, int, error) {
	lo, hi, found := strings.Cut(strings.TrimSpace(s), "-")
	if !found {
		hi = lo
	}
	l, err := strconv.Atoi(lo)
	if err != nil {
		return 0, 0, fmt.Errorf("zip3 span %q: %w", s, err)
	}
	h, err := strconv.Atoi(hi)
	if err != nil {
		return 0, 0, fmt.Errorf("zip3 span %q: %w", s, err)
	}
	if l > h {
		return 0, 0, fmt.Errorf("zip3 span %q: start after end", s)
	}
	return l, h, nil
}

func validate(docs Documents) error {
	var errs []error
	sd, rd := docs.Systems, docs.Regional

	if sd.BaseTankGallons <= 0 {
		errs = append(errs, errors.New("base_tank_gallons must be positive"))
	}
	if len(sd.TankSizes) == 0 {
		errs = append(errs, errors.New("tank_sizes is empty"))
	}
	for _, g := range sd.TankSizes {
		if g <= 0 {
			errs = append(errs, fmt.Errorf("tank size %d must be positive", g))
		}
	}
	errs = append(errs, positiveFactors("tank_materials", sd.TankMaterials)...)
	errs = append(errs, positiveFactors("water_usage", sd.WaterUsage)...)
	errs = append(errs, positiveFactors("area_types", rd.AreaTypes)...)

	if len(sd.Systems) == 0 {
		errs = append(errs, errors.New("no systems defined"))
	}
	seen := make(map[string]bool)
	for _, s := range sd.Systems {
		if s.Key == "" || seen[s.Key] {
			errs = append(errs, fmt.Errorf("system key %q is empty or duplicated", s.Key))
		}
		seen[s.Key] = true
		if len(s.Components) == 0 {
			errs = append(errs, fmt.Errorf("system %q has no components", s.Key))
		}
		for _, c := range s.Components {
			if !c.Range.valid() {
				errs = append(errs, fmt.Errorf("system %q component %q: invalid range %v", s.Key, c.Key, c.Range))
			}
		}
	}
	for _, it := range sd.Repair {
		if !it.Range.valid() {
			errs = append(errs, fmt.Errorf("repair item %q: invalid range %v", it.Key, it.Range))
		}
	}
	for _, it := range sd.Maintenance {
		if !it.Range.valid() {
			errs = append(errs, fmt.Errorf("maintenance item %q: invalid range %v", it.Key, it.Range))
		}
	}

	if rd.Default.Multiplier <= 0 {
		errs = append(errs, errors.New("default multiplier must be positive"))
	}
	for code, st := range rd.States {
		if st.Multiplier <= 0 {
			errs = append(errs, fmt.Errorf("state %s: multiplier must be positive", code))
		}
		for _, z := range st.Zip3 {
			if _, _, err := parseZip3Span(z); err != nil {
				errs = append(errs, fmt.Errorf("state %s: %w", code, err))
			}
		}
		for _, sub := range st.Regions {
			if sub.Multiplier <= 0 {
				errs = append(errs, fmt.Errorf("state %s region %q: multiplier must be positive", code, sub.Name))
			}
			if _, _, err := parseZip3Span(sub.Zip3); err != nil {
				errs = append(errs, fmt.Errorf("state %s region %q: %w", code, sub.Name, err))
			}
		}
		if st.RegionDefault != nil && st.RegionDefault.Multiplier <= 0 {
			errs = append(errs, fmt.Errorf("state %s region_default: multiplier must be positive", code))
		}
	}
	return errors.Join(errs...)
}

func positiveFactors(name string, m map[string]float64) []error {
	var errs []error
	if len(m) == 0 {
		errs = append(errs, fmt.Errorf("%s is empty", name))
	}
	for k, f := range m {
		if f <= 0 {
			errs = append(errs, fmt.Errorf("%s[%s] must be positive", name, k))
		}
	}
	return errs
}
