package main

import (
	"log"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"septicestimator/cli"
	"septicestimator/collections"
	"septicestimator/costdata"
	"septicestimator/handlers"
)

func main() {
	app := pocketbase.New()

	var costDataDir string
	app.RootCmd.PersistentFlags().StringVar(
		&costDataDir,
		"costdata",
		"",
		"directory with septic_systems and regional_cost_data documents (.json/.yaml) to load into the cost_documents collection",
	)

	// Load the cost tables once; a failure keeps the server up with the
	// form disabled.
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		tables, err := collections.Prepare(app, costDataDir)
		if err != nil {
			app.Logger().Error("Cost data could not be loaded", "dir", costDataDir, "error", err)
		} else {
			app.Logger().Info("Cost data loaded",
				"systems", len(tables.Systems()),
				"states", len(tables.States()),
			)
		}
		se.Router.BindFunc(handlers.CostDataMiddleware(handlers.CostData{Tables: tables, Err: err}))
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		// ── Wizard ───────────────────────────────────────────────
		se.Router.GET("/", handlers.HandleEstimator(app))
		se.Router.POST("/wizard", handlers.HandleWizard(app))

		// ── HTMX partials ────────────────────────────────────────
		se.Router.GET("/estimator/systems", handlers.HandleSystemOptions(app))
		se.Router.GET("/estimator/systems/{key}", handlers.HandleSystemInfo(app))
		se.Router.GET("/estimator/tank-sizes", handlers.HandleTankSizes(app))

		// ── Estimate & exports ───────────────────────────────────
		se.Router.POST("/estimate", handlers.HandleEstimate(app))
		se.Router.POST("/estimate/pdf", handlers.HandleExportPDF(app))
		se.Router.POST("/estimate/xlsx", handlers.HandleExportExcel(app))

		// ── JSON API ─────────────────────────────────────────────
		se.Router.POST("/api/estimate", handlers.HandleAPIEstimate(app))

		return se.Next()
	})

	app.RootCmd.AddCommand(cli.NewQuoteCommand(func() (*costdata.Tables, error) {
		if !app.IsBootstrapped() {
			if err := app.Bootstrap(); err != nil {
				return nil, err
			}
		}
		return collections.Prepare(app, costDataDir)
	}))

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
