// controllers/equipment_controller.go
package controllers

import (
	"net/http"

	"facility_equipment_ledger/app"
	"facility_equipment_ledger/cache"
	"facility_equipment_ledger/db"
	"facility_equipment_ledger/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EquipmentController struct{ *Srv }

func NewEquipmentController(s *Srv) *EquipmentController { return &EquipmentController{Srv: s} }

// 目录列表（含库存/总量）
func (ec *EquipmentController) List(c *gin.Context) {
	items, err := ec.Repo.ListEquipment(c.Request.Context())
	if err != nil {
		ec.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// 管理员新增一种器材
func (ec *EquipmentController) Create(c *gin.Context) {
	var in struct {
		Name  string `json:"name" binding:"required"`
		Stock int    `json:"stock"`
		Total int    `json:"total"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "validation"})
		return
	}
	eq, err := ec.Repo.CreateEquipment(c.Request.Context(), db.CreateEquipmentInput{
		Name: in.Name, Stock: in.Stock, Total: in.Total,
	})
	if err != nil {
		ec.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, eq)
}

func (ec *EquipmentController) Update(c *gin.Context) {
	id := c.Param("id")
	var in struct {
		Name  *string `json:"name"`
		Stock *int    `json:"stock"`
		Total *int    `json:"total"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "validation"})
		return
	}
	eq, err := ec.Repo.UpdateEquipment(c.Request.Context(), id, db.UpdateEquipmentInput{
		Name: in.Name, Stock: in.Stock, Total: in.Total,
	})
	if err != nil {
		ec.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, eq)
}

func (ec *EquipmentController) Delete(c *gin.Context) {
	if err := ec.Repo.DeleteEquipment(c.Request.Context(), c.Param("id")); err != nil {
		ec.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// 使用统计：?from=&to=&action=，带 redis 缓存
func (ec *EquipmentController) UsageStats(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	action := c.Query("action")
	switch action {
	case "", models.ActionBorrow, models.ActionReturn, models.ActionStat:
	default:
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown action", "code": "validation"})
		return
	}

	ctx := c.Request.Context()
	if ec.Stats != nil {
		if hit, err := ec.Stats.Get(ctx, from, to, action); err != nil {
			ec.Log.Warn("stats cache read failed", zap.Error(err))
		} else if hit != nil {
			c.JSON(http.StatusOK, hit)
			return
		}
	}

	rows, total, err := ec.Repo.UsageStats(ctx, from, to, action)
	if err != nil {
		ec.fail(c, err)
		return
	}
	payload := cache.StatsPayload{Rows: rows, Total: total}
	if ec.Stats != nil {
		if err := ec.Stats.Set(ctx, from, to, action, payload); err != nil {
			ec.Log.Warn("stats cache write failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, payload)
}
