// controllers/ledger_controller.go
package controllers

import (
	"net/http"
	"time"

	"facility_equipment_ledger/app"
	"facility_equipment_ledger/db"
	"facility_equipment_ledger/models"

	"github.com/gin-gonic/gin"
)

type LedgerController struct{ *Srv }

func NewLedgerController(s *Srv) *LedgerController { return &LedgerController{Srv: s} }

type borrowReq struct {
	StudentID string          `json:"student_id"`
	Faculty   string          `json:"faculty"`
	Items     []db.BorrowLine `json:"items"`
	// 回填：is_backdate=true 时必须带 borrow_date
	BorrowDate string `json:"borrow_date"`
	IsBackdate bool   `json:"is_backdate"`
}

// Borrow commits a multi-line borrow. Default mode is all-or-nothing;
// LEDGER_LEGACY_PARTIAL_BORROW switches to the per-line legacy mode
// where each line commits independently.
func (lc *LedgerController) Borrow(c *gin.Context) {
	var req borrowReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "validation"})
		return
	}

	in := db.BorrowInput{StudentID: req.StudentID, Faculty: req.Faculty, Items: req.Items}
	if req.IsBackdate {
		// 回填请求缺日期必须拒绝，否则会按普通借出扣库存
		if req.BorrowDate == "" {
			c.JSON(http.StatusBadRequest, app.H{"error": "borrow_date is required when is_backdate", "code": "validation"})
			return
		}
		in.Backdate = req.BorrowDate
	}

	if lc.Cfg.LegacyPartialBorrow {
		rep, err := lc.Repo.BorrowPartial(c.Request.Context(), in)
		if err != nil {
			lc.rejectCommand(c, err)
			return
		}
		lc.countAccepted(rep.Committed)
		if len(rep.Committed) > 0 {
			lc.invalidateStats(c)
		}
		// 全部成功 201，部分成功 207，全部失败 409
		status := http.StatusCreated
		switch {
		case len(rep.Failed) == 0:
		case len(rep.Committed) == 0:
			status = http.StatusConflict
		default:
			status = http.StatusMultiStatus
		}
		c.JSON(status, rep)
		return
	}

	rows, err := lc.Repo.Borrow(c.Request.Context(), in)
	if err != nil {
		lc.rejectCommand(c, err)
		return
	}
	lc.countAccepted(rows)
	lc.invalidateStats(c)
	c.JSON(http.StatusCreated, app.H{"transactions": rows})
}

func (lc *LedgerController) countAccepted(rows []models.LedgerTransaction) {
	if lc.Metrics == nil {
		return
	}
	for _, row := range rows {
		lc.Metrics.TxAccepted.WithLabelValues(row.Action).Inc()
	}
}

func (lc *LedgerController) Return(c *gin.Context) {
	var req struct {
		StudentID string `json:"student_id"`
		Faculty   string `json:"faculty"`
		Equipment string `json:"equipment"`
		Qty       int    `json:"qty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "validation"})
		return
	}

	row, err := lc.Repo.Return(c.Request.Context(), db.ReturnInput{
		StudentID: req.StudentID,
		Faculty:   req.Faculty,
		Equipment: req.Equipment,
		Qty:       req.Qty,
	})
	if err != nil {
		lc.rejectCommand(c, err)
		return
	}
	if row == nil {
		// qty=0：没有可还的，直接成功
		c.JSON(http.StatusOK, app.H{"ok": true})
		return
	}
	lc.countAccepted([]models.LedgerTransaction{*row})
	lc.invalidateStats(c)
	c.JSON(http.StatusOK, app.H{"ok": true, "transaction": row})
}

// 管理员回填统计条目
func (lc *LedgerController) RecordStat(c *gin.Context) {
	var req struct {
		Equipment     string `json:"equipment" binding:"required"`
		Qty           int    `json:"qty" binding:"required"`
		EffectiveDate string `json:"effective_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "validation"})
		return
	}

	row, err := lc.Repo.RecordStat(c.Request.Context(), req.Equipment, req.Qty, req.EffectiveDate)
	if err != nil {
		lc.rejectCommand(c, err)
		return
	}
	lc.countAccepted([]models.LedgerTransaction{*row})
	lc.invalidateStats(c)
	c.JSON(http.StatusCreated, row)
}

func (lc *LedgerController) PendingReturns(c *gin.Context) {
	students, err := lc.Repo.PendingReturns(c.Request.Context())
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"students": students})
}

// 按天历史：?date=YYYY-MM-DD，缺省今天
func (lc *LedgerController) Records(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad date", "code": "validation"})
		return
	}
	rows, err := lc.Repo.HistoryForDate(c.Request.Context(), date)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"date": date, "records": rows})
}

func (lc *LedgerController) Snapshots(c *gin.Context) {
	rows, err := lc.Repo.ListSnapshots(c.Request.Context(), c.Query("date"))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"snapshots": rows})
}
