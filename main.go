package main

import (
	"facility_equipment_ledger/app"
	"facility_equipment_ledger/config"
	"facility_equipment_ledger/db"
	"facility_equipment_ledger/logger"
	"facility_equipment_ledger/routes"
	"facility_equipment_ledger/scheduler"
	"log"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	sched := scheduler.New(application.Config, db.NewRepo(application.DB), logger.Named(application.Log, "scheduler"))
	sched.Start()
	defer sched.Stop()

	port := application.Config.Port
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
