package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"septicestimator/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportEstimate recomputes the estimate from the posted selection. When
// ok is false the error response has already been written and err is the
// handler's return value.
func exportEstimate(app *pocketbase.PocketBase, e *core.RequestEvent) (res services.EstimateResult, ok bool, err error) {
	if err := e.Request.ParseForm(); err != nil {
		return res, false, e.String(http.StatusBadRequest, "Invalid form data.")
	}
	tables, err := GetCostTables(e.Request)
	if err != nil {
		app.Logger().Error("export: cost data unavailable", "error", err)
		return res, false, e.String(http.StatusServiceUnavailable, unavailableMessage)
	}

	form := e.Request.PostForm
	res, err = services.Calculate(tables, form)
	if err != nil {
		var incompatible *services.IncompatibleError
		if errors.As(err, &incompatible) {
			return res, false, e.String(http.StatusConflict, incompatible.Error())
		}
		w := services.Wizard{WorkType: services.WorkType(form.Get(services.FieldWorkType))}
		return res, false, e.String(http.StatusUnprocessableEntity, firstFieldError(w, services.FieldErrors(err)))
	}
	return res, true, nil
}

// HandleExportExcel returns a handler that downloads the posted estimate as
// an Excel workbook.
func HandleExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		res, ok, err := exportEstimate(app, e)
		if !ok {
			return err
		}
		data := services.NewExportData(res, time.Now())

		xlsxBytes, err := services.GenerateExcel(data)
		if err != nil {
			app.Logger().Error("export_excel: failed to generate", "reference", data.Reference, "error", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}
		return writeDownload(e, xlsxContentType, services.ExportFilename(res.WorkType, "xlsx"), xlsxBytes)
	}
}

// HandleExportPDF returns a handler that downloads the posted estimate as a
// PDF.
func HandleExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		res, ok, err := exportEstimate(app, e)
		if !ok {
			return err
		}
		data := services.NewExportData(res, time.Now())

		pdfBytes, err := services.GeneratePDF(data, true)
		if err != nil {
			app.Logger().Error("export_pdf: failed to generate", "reference", data.Reference, "error", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}
		return writeDownload(e, "application/pdf", services.ExportFilename(res.WorkType, "pdf"), pdfBytes)
	}
}

func writeDownload(e *core.RequestEvent, contentType, filename string, body []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, err := e.Response.Write(body)
	return err
}
