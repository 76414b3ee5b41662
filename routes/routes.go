package routes

import (
	"facility_equipment_ledger/app"
	"facility_equipment_ledger/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	eqCtl := controllers.NewEquipmentController(s)
	ledCtl := controllers.NewLedgerController(s)

	staffMW := app.StaffOnly(a.Config)

	r.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	// ------------------------------
	// 器材目录
	// ------------------------------
	eq := r.Group("/api/equipment")
	{
		eq.GET("", eqCtl.List)
		eq.GET("/stats", eqCtl.UsageStats) // ?from=&to=&action=
	}

	// 管理：目录增删改（staff token）
	eqStaff := r.Group("/api/equipment", staffMW)
	{
		eqStaff.POST("", eqCtl.Create)
		eqStaff.PATCH("/:id", eqCtl.Update)
		eqStaff.DELETE("/:id", eqCtl.Delete)
	}

	// ------------------------------
	// 借还台账
	// ------------------------------
	led := r.Group("/api/ledger")
	{
		led.POST("/borrow", ledCtl.Borrow)
		led.POST("/return", ledCtl.Return)
		led.GET("/pending-returns", ledCtl.PendingReturns)
		led.GET("/records", ledCtl.Records) // ?date=YYYY-MM-DD
		led.GET("/snapshots", ledCtl.Snapshots)
	}

	ledStaff := r.Group("/api/ledger", staffMW)
	{
		ledStaff.POST("/stat", ledCtl.RecordStat)
	}
}
