package services

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/cast"

	"septicestimator/costdata"
)

// WorkType is the kind of job being estimated.
type WorkType string

const (
	WorkInstallation WorkType = "installation"
	WorkRepair       WorkType = "repair"
	WorkMaintenance  WorkType = "maintenance"
)

// WorkTypes lists the work types in wizard order.
var WorkTypes = []WorkType{WorkInstallation, WorkRepair, WorkMaintenance}

func (w WorkType) Valid() bool {
	for _, t := range WorkTypes {
		if t == w {
			return true
		}
	}
	return false
}

// Form field names shared by the wizard, the parser and the templates.
const (
	FieldWorkType        = "work_type"
	FieldRegion          = "region"
	FieldZipCode         = "zip_code"
	FieldAreaType        = "area_type"
	FieldBedrooms        = "bedrooms"
	FieldOccupants       = "occupants"
	FieldWaterUsage      = "water_usage"
	FieldSoilType        = "soil_type"
	FieldSystemType      = "system_type"
	FieldTankSize        = "tank_size"
	FieldTankMaterial    = "tank_material"
	FieldRepairItem      = "repair_item"
	FieldMaintenanceItem = "maintenance_item"
	FieldMaintTankSize   = "maint_tank_size"
)

// OccupantOptions are the household size brackets offered by the form.
var OccupantOptions = []string{"1-2", "3-4", "5-6", "7+"}

// BedroomOptions are the bedroom counts offered by the form; "6+" parses as 6.
var BedroomOptions = []string{"1", "2", "3", "4", "5", "6+"}

// Defaults applied when an optional installation field is left blank.
const (
	DefaultAreaType     = "suburban"
	DefaultWaterUsage   = "average"
	DefaultTankMaterial = "concrete"
)

var (
	zipPattern    = regexp.MustCompile(`^[0-9]{5}$`)
	noLeadingZero = regexp.MustCompile(`^[1-9]`)
)

// Selection is a parsed, validated set of form inputs.
type Selection struct {
	WorkType         WorkType `json:"work_type"`
	Region           string   `json:"region,omitempty"`
	ZipCode          string   `json:"zip_code,omitempty"`
	AreaType         string   `json:"area_type,omitempty"`
	Bedrooms         int      `json:"bedrooms,omitempty"`
	Occupants        string   `json:"occupants,omitempty"`
	WaterUsage       string   `json:"water_usage,omitempty"`
	SoilType         string   `json:"soil_type,omitempty"`
	SystemType       string   `json:"system_type,omitempty"`
	TankSize         int      `json:"tank_size,omitempty"`
	TankMaterial     string   `json:"tank_material,omitempty"`
	RepairItems      []string `json:"repair_items,omitempty"`
	MaintenanceItems []string `json:"maintenance_items,omitempty"`
	MaintTankSize    int      `json:"maint_tank_size,omitempty"`
}

// ParseSelection reads a form submission into a Selection. Missing or
// invalid fields are reported as validation.Errors keyed by form field
// name, with messages meant for the user.
func ParseSelection(tables *costdata.Tables, values url.Values) (Selection, error) {
	get := func(key string) string { return strings.TrimSpace(values.Get(key)) }

	sel := Selection{
		WorkType:     WorkType(get(FieldWorkType)),
		Region:       strings.ToUpper(get(FieldRegion)),
		ZipCode:      get(FieldZipCode),
		AreaType:     get(FieldAreaType),
		Occupants:    get(FieldOccupants),
		WaterUsage:   get(FieldWaterUsage),
		SoilType:     get(FieldSoilType),
		SystemType:   get(FieldSystemType),
		TankMaterial: get(FieldTankMaterial),
	}
	isInstall := sel.WorkType == WorkInstallation
	isRepair := sel.WorkType == WorkRepair
	isMaint := sel.WorkType == WorkMaintenance

	parseErrs := validation.Errors{}
	var err error
	if raw := get(FieldBedrooms); raw != "" {
		if sel.Bedrooms, err = ParseCount(strings.TrimSuffix(raw, "+")); err != nil {
			parseErrs[FieldBedrooms] = errors.New("Please choose the number of bedrooms.")
		}
	}
	if raw := get(FieldTankSize); raw != "" {
		if sel.TankSize, err = ParseCount(raw); err != nil {
			parseErrs[FieldTankSize] = errors.New("Please choose a tank size.")
		}
	}
	if raw := get(FieldMaintTankSize); raw != "" {
		if sel.MaintTankSize, err = ParseCount(raw); err != nil {
			parseErrs[FieldMaintTankSize] = errors.New("Please choose a tank size.")
		}
	}
	if isRepair {
		sel.RepairItems = SplitValues(values[FieldRepairItem])
	}
	if isMaint {
		sel.MaintenanceItems = SplitValues(values[FieldMaintenanceItem])
	}

	if isInstall {
		if sel.AreaType == "" {
			sel.AreaType = DefaultAreaType
		}
		if sel.WaterUsage == "" {
			sel.WaterUsage = DefaultWaterUsage
		}
		if sel.TankMaterial == "" {
			sel.TankMaterial = DefaultTankMaterial
		}
		if sel.TankSize == 0 && parseErrs[FieldTankSize] == nil {
			sel.TankSize = RecommendTankSize(sel.Bedrooms, sel.Occupants)
		}
	}
	if isMaint && sel.MaintTankSize == 0 && parseErrs[FieldMaintTankSize] == nil {
		sel.MaintTankSize = tables.BaseTankGallons()
	}

	errs := validation.Errors{
		FieldWorkType: validation.Validate(string(sel.WorkType),
			validation.Required.Error("Please choose the type of work."),
			validation.In(string(WorkInstallation), string(WorkRepair), string(WorkMaintenance)).Error("Unknown type of work."),
		),
		FieldRegion: validation.Validate(sel.Region,
			validation.When(sel.ZipCode == "", validation.Required.Error("Please select a location.")),
			validation.By(known(tables.HasState, "Please select a valid state.")),
		),
		FieldZipCode: validation.Validate(sel.ZipCode,
			validation.Match(zipPattern).Error("Please enter a 5-digit ZIP code."),
		),
		FieldAreaType: validation.Validate(sel.AreaType,
			validation.When(isInstall, validation.By(knownFactor(tables.AreaTypeFactor, "Please choose an area type."))),
		),
		FieldBedrooms: validation.Validate(sel.Bedrooms,
			validation.When(isInstall,
				validation.Required.Error("Please choose the number of bedrooms."),
				validation.Min(1).Error("Please choose the number of bedrooms."),
				validation.Max(12).Error("Bedroom count is too large for a residential estimate."),
			),
		),
		FieldOccupants: validation.Validate(sel.Occupants,
			validation.In("1-2", "3-4", "5-6", "7+").Error("Please choose the number of occupants."),
		),
		FieldWaterUsage: validation.Validate(sel.WaterUsage,
			validation.When(isInstall, validation.By(knownFactor(tables.WaterUsageFactor, "Please choose a water usage level."))),
		),
		FieldSoilType: validation.Validate(sel.SoilType,
			validation.When(isInstall,
				validation.Required.Error("Please fill out all site and system fields."),
				validation.By(known(func(k string) bool { _, ok := tables.Soil(k); return ok }, "Please choose a soil type.")),
			),
		),
		FieldSystemType: validation.Validate(sel.SystemType,
			validation.When(isInstall,
				validation.Required.Error("Please fill out all site and system fields."),
				validation.By(known(func(k string) bool { _, ok := tables.System(k); return ok }, "Please choose a system type.")),
			),
		),
		FieldTankSize: validation.Validate(sel.TankSize,
			validation.When(isInstall, validation.By(knownTankSize(tables))),
		),
		FieldTankMaterial: validation.Validate(sel.TankMaterial,
			validation.When(isInstall, validation.By(knownFactor(tables.TankMaterialFactor, "Please choose a tank material."))),
		),
		FieldRepairItem: validation.Validate(sel.RepairItems,
			validation.When(isRepair,
				validation.Required.Error("Please select at least one repair item."),
				validation.By(knownItems(tables.RepairItem, "repair")),
			),
		),
		FieldMaintenanceItem: validation.Validate(sel.MaintenanceItems,
			validation.When(isMaint,
				validation.Required.Error("Please select at least one maintenance item."),
				validation.By(knownItems(tables.MaintenanceItem, "maintenance")),
			),
		),
		FieldMaintTankSize: validation.Validate(sel.MaintTankSize,
			validation.When(isMaint, validation.By(knownTankSize(tables))),
		),
	}
	for k, v := range parseErrs {
		errs[k] = v
	}
	if err := errs.Filter(); err != nil {
		return sel, err
	}
	return sel, nil
}

// FieldErrors flattens a validation error into field -> message. Errors
// that are not per-field are returned under the empty key.
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	if err == nil {
		return out
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}
	out[""] = err.Error()
	return out
}

// ParseCount reads a plain decimal count such as a bedroom number or a
// tank size. Signs, leading zeros and hex or octal forms are rejected.
func ParseCount(raw string) (int, error) {
	if err := validation.Validate(raw,
		validation.Required,
		is.Digit,
		validation.Match(noLeadingZero),
	); err != nil {
		return 0, err
	}
	return cast.ToIntE(raw)
}

// RecommendTankSize returns the suggested tank capacity in gallons for a
// household.
func RecommendTankSize(bedrooms int, occupants string) int {
	size := 1000
	if bedrooms == 4 || occupants == "5-6" {
		size = 1250
	}
	if bedrooms >= 5 || occupants == "7+" {
		size = 1500
	}
	return size
}

// SplitValues accepts repeated form values as well as comma-separated lists
// and drops blanks and duplicates.
func SplitValues(raw []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

func known(has func(string) bool, msg string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" || has(s) {
			return nil
		}
		return errors.New(msg)
	}
}

func knownFactor(lookup func(string) (float64, bool), msg string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if _, ok := lookup(s); ok {
			return nil
		}
		return errors.New(msg)
	}
}

func knownTankSize(tables *costdata.Tables) validation.RuleFunc {
	return func(value interface{}) error {
		n, _ := value.(int)
		if n == 0 || tables.HasTankSize(n) {
			return nil
		}
		return fmt.Errorf("%d gallons is not an available tank size.", n)
	}
}

func knownItems(lookup func(string) (costdata.Item, bool), kind string) validation.RuleFunc {
	return func(value interface{}) error {
		keys, _ := value.([]string)
		for _, k := range keys {
			if _, ok := lookup(k); !ok {
				return fmt.Errorf("Unknown %s item %q.", kind, k)
			}
		}
		return nil
	}
}
