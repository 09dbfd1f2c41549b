// Package cli holds the estimator's command line subcommands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"septicestimator/costdata"
	"septicestimator/services"
)

// flagFields maps command flags to form fields.
var flagFields = []struct {
	flag  string
	field string
	usage string
}{
	{"work-type", services.FieldWorkType, "installation, repair or maintenance"},
	{"region", services.FieldRegion, "two-letter state code"},
	{"zip", services.FieldZipCode, "5-digit ZIP code"},
	{"area-type", services.FieldAreaType, "urban, suburban or rural"},
	{"bedrooms", services.FieldBedrooms, "number of bedrooms (1-6+)"},
	{"occupants", services.FieldOccupants, "household size: 1-2, 3-4, 5-6 or 7+"},
	{"water-usage", services.FieldWaterUsage, "low, average or high"},
	{"soil", services.FieldSoilType, "soil type key"},
	{"system", services.FieldSystemType, "system type key"},
	{"tank-size", services.FieldTankSize, "tank size in gallons (default: recommended)"},
	{"tank-material", services.FieldTankMaterial, "concrete, plastic or fiberglass"},
	{"maint-tank-size", services.FieldMaintTankSize, "tank size in gallons for maintenance"},
}

var listFields = []struct {
	flag  string
	field string
	usage string
}{
	{"repair-item", services.FieldRepairItem, "repair item key (repeatable)"},
	{"maintenance-item", services.FieldMaintenanceItem, "maintenance item key (repeatable)"},
}

// NewQuoteCommand returns the "quote" subcommand, which prices a selection
// given as flags and prints it, optionally writing PDF and Excel copies.
// load is called once the flags are parsed.
func NewQuoteCommand(load func() (*costdata.Tables, error)) *cobra.Command {
	var (
		pdfPath  string
		xlsxPath string
		asJSON   bool
	)
	values := make(map[string]*string, len(flagFields))
	lists := make(map[string]*[]string, len(listFields))

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Print a septic system cost estimate",
		Example: "  septicestimator quote --work-type installation --region AZ --bedrooms 3 --soil good --system conventional-gravity\n" +
			"  septicestimator quote --work-type repair --zip 85001 --repair-item baffle --repair-item pump --pdf repair.pdf",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tables, err := load()
			if err != nil {
				return fmt.Errorf("load cost data: %w", err)
			}

			form := url.Values{}
			for field, v := range values {
				if *v != "" {
					form.Set(field, *v)
				}
			}
			for field, v := range lists {
				if len(*v) > 0 {
					form[field] = *v
				}
			}

			res, err := services.Calculate(tables, form)
			if err != nil {
				return quoteError(err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				printEstimate(out, res)
			}
			return writeExports(out, res, pdfPath, xlsxPath)
		},
	}

	for _, f := range flagFields {
		values[f.field] = cmd.Flags().String(f.flag, "", f.usage)
	}
	for _, f := range listFields {
		lists[f.field] = cmd.Flags().StringSlice(f.flag, nil, f.usage)
	}
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write the estimate as a PDF to this path")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the estimate as an Excel workbook to this path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the estimate as JSON")
	_ = cmd.MarkFlagRequired("work-type")
	return cmd
}

// quoteError turns pricing errors into messages naming the offending flags.
func quoteError(err error) error {
	var incompatible *services.IncompatibleError
	if errors.As(err, &incompatible) {
		return incompatible
	}
	fieldErrs := services.FieldErrors(err)
	if msg, ok := fieldErrs[""]; ok && len(fieldErrs) == 1 {
		return errors.New(msg)
	}

	flagFor := make(map[string]string, len(flagFields)+len(listFields))
	for _, f := range flagFields {
		flagFor[f.field] = f.flag
	}
	for _, f := range listFields {
		flagFor[f.field] = f.flag
	}
	lines := make([]string, 0, len(fieldErrs))
	for field, msg := range fieldErrs {
		name := field
		if flag, ok := flagFor[field]; ok {
			name = "--" + flag
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", name, msg))
	}
	sort.Strings(lines)
	return fmt.Errorf("invalid selection:\n%s", strings.Join(lines, "\n"))
}

func printEstimate(w io.Writer, res services.EstimateResult) {
	fmt.Fprintln(w, res.Title)
	fmt.Fprintln(w, strings.Repeat("=", len(res.Title)))
	for _, d := range res.Details {
		fmt.Fprintf(w, "%-22s %s\n", d.Label+":", d.Value)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-40s %12s %12s\n", "Item", "Low", "High")
	for _, l := range res.Lines {
		fmt.Fprintf(w, "%-40s %12s %12s\n", l.Label, services.FormatUSD(l.Low), services.FormatUSD(l.High))
	}
	fmt.Fprintf(w, "%-40s %12s %12s\n", "Estimated Total", services.FormatUSD(res.Low), services.FormatUSD(res.High))
	fmt.Fprintln(w)
	for _, n := range res.Notes {
		fmt.Fprintln(w, n)
	}
	fmt.Fprintf(w, "\nReference: %s\n", res.Reference)
}

func writeExports(w io.Writer, res services.EstimateResult, pdfPath, xlsxPath string) error {
	if pdfPath == "" && xlsxPath == "" {
		return nil
	}
	data := services.NewExportData(res, time.Now())

	if pdfPath != "" {
		b, err := services.GeneratePDF(data, true)
		if err != nil {
			return err
		}
		if err := os.WriteFile(pdfPath, b, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", pdfPath, err)
		}
		fmt.Fprintf(w, "Wrote %s (%s)\n", pdfPath, humanize.Bytes(uint64(len(b))))
	}
	if xlsxPath != "" {
		b, err := services.GenerateExcel(data)
		if err != nil {
			return err
		}
		if err := os.WriteFile(xlsxPath, b, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", xlsxPath, err)
		}
		fmt.Fprintf(w, "Wrote %s (%s)\n", xlsxPath, humanize.Bytes(uint64(len(b))))
	}
	return nil
}
