// controllers/srv.go
package controllers

import (
	"errors"
	"net/http"

	"facility_equipment_ledger/app"
	"facility_equipment_ledger/cache"
	"facility_equipment_ledger/config"
	"facility_equipment_ledger/db"
	"facility_equipment_ledger/logger"

	"go.uber.org/zap"
)

type Srv struct {
	Repo    *db.Repo
	Stats   *cache.StatsCache
	Metrics *app.Metrics
	Log     *zap.Logger
	Cfg     config.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:    db.NewRepo(a.DB),
		Stats:   cache.NewStatsCache(a.RDB, a.Config.StatsCacheTTL),
		Metrics: a.Metrics,
		Log:     logger.Named(a.Log, "controllers"),
		Cfg:     a.Config,
	}
}

// statusFor maps the ledger error taxonomy to HTTP status plus a
// stable code the UI can branch on.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, db.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, db.ErrDuplicateName):
		return http.StatusConflict, "duplicate_name"
	case errors.Is(err, db.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, db.ErrCapacityExceeded):
		return http.StatusConflict, "capacity_exceeded"
	case errors.Is(err, db.ErrOverReturn):
		return http.StatusConflict, "over_return"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Srv) fail(c *app.Ctx, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		s.Log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, app.H{"error": err.Error(), "code": code})
}

// rejectCommand counts a refused ledger command before replying.
// Catalog CRUD and read failures go through fail directly so the
// rejection counter covers ledger commands only.
func (s *Srv) rejectCommand(c *app.Ctx, err error) {
	_, code := statusFor(err)
	if s.Metrics != nil && code != "internal" {
		s.Metrics.TxRejected.WithLabelValues(code).Inc()
	}
	s.fail(c, err)
}

// invalidateStats drops cached stat views after an accepted write.
// Cache trouble must not fail the command.
func (s *Srv) invalidateStats(c *app.Ctx) {
	if s.Stats == nil {
		return
	}
	if err := s.Stats.Invalidate(c.Request.Context()); err != nil {
		s.Log.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
