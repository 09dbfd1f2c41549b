package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"septicestimator/costdata"
	"septicestimator/services"
	"septicestimator/templates"
)

var workTypeCards = []templates.WorkTypeCard{
	{
		Value:       services.WorkInstallation,
		Title:       "New Installation",
		Description: "Price a complete new septic system for your property.",
	},
	{
		Value:       services.WorkRepair,
		Title:       "Repair",
		Description: "Estimate common repairs such as baffles, pumps and drainfield work.",
	},
	{
		Value:       services.WorkMaintenance,
		Title:       "Maintenance",
		Description: "Budget for pumping, inspections and routine service.",
	},
}

var occupantLabels = map[string]string{
	"1-2": "1-2 people",
	"3-4": "3-4 people",
	"5-6": "5-6 people",
	"7+":  "7 or more people",
}

// buildWizardData prepares the wizard panel for w, pre-filling the form
// from values. tables may be nil when the cost data failed to load.
func buildWizardData(tables *costdata.Tables, w services.Wizard, values url.Values) templates.WizardData {
	if values == nil {
		values = url.Values{}
	}
	data := templates.WizardData{
		Step:     w.Step,
		WorkType: w.WorkType,
		Title:    w.Title(),
		Errors:   map[string]string{},
	}
	for _, card := range workTypeCards {
		card.Selected = card.Value == w.WorkType
		data.WorkTypes = append(data.WorkTypes, card)
	}
	if tables == nil {
		data.Unavailable = unavailableMessage
		return data
	}

	get := func(key string) string { return strings.TrimSpace(values.Get(key)) }
	orDefault := func(key, def string) string {
		if v := get(key); v != "" {
			return v
		}
		return def
	}

	region := strings.ToUpper(get(services.FieldRegion))
	for _, st := range tables.States() {
		data.States = append(data.States, templates.Option{
			Value:    st.Code,
			Label:    fmt.Sprintf("%s (%s)", st.Name, st.Code),
			Selected: st.Code == region,
		})
	}
	data.ZipCode = get(services.FieldZipCode)

	data.AreaTypes = factorOptions(tables.AreaTypes(), orDefault(services.FieldAreaType, services.DefaultAreaType))
	data.WaterUsage = factorOptions(tables.WaterUsageLevels(), orDefault(services.FieldWaterUsage, services.DefaultWaterUsage))
	data.TankMaterials = factorOptions(tables.TankMaterials(), orDefault(services.FieldTankMaterial, services.DefaultTankMaterial))

	bedrooms := get(services.FieldBedrooms)
	for _, b := range services.BedroomOptions {
		data.Bedrooms = append(data.Bedrooms, templates.Option{Value: b, Label: b, Selected: b == bedrooms})
	}
	occupants := get(services.FieldOccupants)
	for _, o := range services.OccupantOptions {
		data.Occupants = append(data.Occupants, templates.Option{Value: o, Label: occupantLabels[o], Selected: o == occupants})
	}

	soil := get(services.FieldSoilType)
	for _, s := range tables.Soils() {
		data.Soils = append(data.Soils, templates.Option{Value: s.Key, Label: s.Name, Selected: s.Key == soil})
	}
	data.Systems, data.SystemInfo = systemOptions(tables, soil, get(services.FieldSystemType))
	data.TankSizes = tankSizeOptions(tables, bedrooms, occupants, get(services.FieldTankSize))

	data.RepairItems = itemOptions(tables.RepairItems(), services.SplitValues(values[services.FieldRepairItem]))
	data.Maintenance = itemOptions(tables.MaintenanceItems(), services.SplitValues(values[services.FieldMaintenanceItem]))

	maintSize, _ := services.ParseCount(get(services.FieldMaintTankSize))
	if !tables.HasTankSize(maintSize) {
		maintSize = tables.BaseTankGallons()
	}
	for _, size := range tables.TankSizes() {
		data.MaintTankSizes = append(data.MaintTankSizes, templates.Option{
			Value:    cast.ToString(size),
			Label:    fmt.Sprintf("%d Gallons", size),
			Selected: size == maintSize,
		})
	}
	return data
}

func factorOptions(opts []costdata.Option, selected string) []templates.Option {
	out := make([]templates.Option, 0, len(opts))
	for _, o := range opts {
		out = append(out, templates.Option{Value: o.Key, Label: services.Humanize(o.Key), Selected: o.Key == selected})
	}
	return out
}

func itemOptions(items []costdata.Item, checked []string) []templates.Option {
	set := make(map[string]bool, len(checked))
	for _, k := range checked {
		set[k] = true
	}
	out := make([]templates.Option, 0, len(items))
	for _, it := range items {
		out = append(out, templates.Option{Value: it.Key, Label: it.Name, Selected: set[it.Key]})
	}
	return out
}

// systemOptions lists the systems suited to soil (all systems when no soil
// is chosen). The current system stays selected only if it is in the list.
func systemOptions(tables *costdata.Tables, soil, current string) ([]templates.Option, *templates.SystemInfo) {
	systems := tables.Systems()
	if soil != "" {
		systems = tables.CompatibleSystems(soil)
	}
	var info *templates.SystemInfo
	out := make([]templates.Option, 0, len(systems))
	for _, s := range systems {
		selected := s.Key == current
		if selected {
			info = systemInfo(s)
		}
		out = append(out, templates.Option{Value: s.Key, Label: s.Name, Selected: selected})
	}
	return out, info
}

// infoBedrooms is the household size quoted in the system info box.
const infoBedrooms = 3

func systemInfo(s costdata.System) *templates.SystemInfo {
	base := s.BaseCost(infoBedrooms)
	return &templates.SystemInfo{
		Key:         s.Key,
		Name:        s.Name,
		Description: s.Description,
		BaseRange:   fmt.Sprintf("%s (%d bedrooms, before adjustments)", services.FormatUSDRange(base.Low, base.High), infoBedrooms),
	}
}

// tankSizeOptions marks the recommended size for the household. The
// current size stays selected when it is valid, otherwise the
// recommendation is.
func tankSizeOptions(tables *costdata.Tables, bedrooms, occupants, current string) []templates.Option {
	beds, _ := services.ParseCount(strings.TrimSuffix(bedrooms, "+"))
	recommended := services.RecommendTankSize(beds, occupants)
	selected, _ := services.ParseCount(current)
	if !tables.HasTankSize(selected) {
		selected = recommended
	}
	out := make([]templates.Option, 0, len(tables.TankSizes()))
	for _, size := range tables.TankSizes() {
		label := fmt.Sprintf("%d Gallons", size)
		if size == recommended {
			label += " (Recommended)"
		}
		out = append(out, templates.Option{Value: cast.ToString(size), Label: label, Selected: size == selected})
	}
	return out
}

func resultData(res services.EstimateResult) *templates.ResultData {
	data := &templates.ResultData{
		Title:     res.Title,
		Reference: res.Reference,
		Range:     services.FormatUSDRange(res.Low, res.High),
		Details:   res.Details,
		TotalLow:  services.FormatUSD(res.Low),
		TotalHigh: services.FormatUSD(res.High),
		Notes:     res.Notes,
	}
	for _, l := range res.Lines {
		data.Lines = append(data.Lines, templates.ResultLine{
			Label: l.Label,
			Low:   services.FormatUSD(l.Low),
			High:  services.FormatUSD(l.High),
		})
	}
	for _, a := range res.Adjustments {
		data.Adjustments = append(data.Adjustments, templates.AdjustmentLine{
			Label:  a.Label,
			Factor: services.FormatFactor(a.Factor),
		})
	}
	return data
}

func incompatibleData(err *services.IncompatibleError) *templates.IncompatibleData {
	data := &templates.IncompatibleData{Message: err.Error()}
	for _, s := range err.Suggestions {
		data.Suggestions = append(data.Suggestions, templates.Option{Value: s.Key, Label: s.Name})
	}
	return data
}

// hiddenFields flattens values into hidden inputs, sorted by name.
func hiddenFields(values url.Values) []templates.HiddenField {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []templates.HiddenField
	for _, k := range keys {
		for _, v := range values[k] {
			out = append(out, templates.HiddenField{Name: k, Value: v})
		}
	}
	return out
}

// firstFieldError picks the message to toast: the first failing field in
// form order.
func firstFieldError(w services.Wizard, errs map[string]string) string {
	for _, f := range append([]string{services.FieldWorkType}, w.VisibleFields()...) {
		if msg, ok := errs[f]; ok {
			return msg
		}
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		return errs[keys[0]]
	}
	return "Please check the highlighted fields."
}

// applyEstimate fills the results step from the outcome of
// services.Calculate. It returns the error when it is neither an
// incompatibility nor nil, so the caller can treat it as a form error.
func applyEstimate(data *templates.WizardData, filtered url.Values, res services.EstimateResult, err error) error {
	var incompatible *services.IncompatibleError
	switch {
	case err == nil:
		data.Step = services.StepResults
		data.Result = resultData(res)
	case errors.As(err, &incompatible):
		data.Step = services.StepResults
		data.Incompatible = incompatibleData(incompatible)
	default:
		return err
	}
	data.Hidden = hiddenFields(filtered)
	return nil
}
