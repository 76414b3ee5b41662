// db/repo_views.go
package db

import (
	"context"
	"time"

	"facility_equipment_ledger/models"

	"gorm.io/gorm/clause"
)

// Query views are recomputed from the ledger on every call, never
// cached in the DB, so balances cannot drift from the log.

type pendingPairRow struct {
	StudentID string `json:"student_id"`
	Faculty   string `json:"faculty"`
	Equipment string `json:"equipment"`
	Remaining int    `json:"remaining"`
}

type PendingItem struct {
	Equipment string `json:"equipment"`
	Remaining int    `json:"remaining"`
}

type PendingStudent struct {
	ID      string        `json:"id"`
	Faculty string        `json:"faculty"`
	Items   []PendingItem `json:"items"`
}

// PendingReturns groups every pair with a positive outstanding balance
// by student. Zero-balance pairs and sentinel rows never appear.
func (r *Repo) PendingReturns(ctx context.Context) ([]PendingStudent, error) {
	balance := "SUM(CASE WHEN action = ? THEN qty ELSE -qty END)"
	// 院系取借出行的值；归还行不要求填写院系
	faculty := "MAX(CASE WHEN action = ? THEN faculty END)"

	rows := make([]pendingPairRow, 0)
	err := r.DB.WithContext(ctx).Model(&models.LedgerTransaction{}).
		Select("student_id, "+faculty+" AS faculty, equipment, "+balance+" AS remaining",
			models.ActionBorrow, models.ActionBorrow).
		Where("action IN ? AND is_backdate = ? AND student_id <> ?",
			[]string{models.ActionBorrow, models.ActionReturn}, false, models.StatOnlyStudentID).
		Group("student_id, equipment").
		Having(balance+" > 0", models.ActionBorrow).
		Order("student_id, equipment").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// 按学生聚合（行已按 student_id 排好序）
	students := make([]PendingStudent, 0)
	for _, row := range rows {
		if n := len(students); n == 0 || students[n-1].ID != row.StudentID {
			students = append(students, PendingStudent{ID: row.StudentID, Faculty: row.Faculty})
		}
		last := &students[len(students)-1]
		last.Items = append(last.Items, PendingItem{Equipment: row.Equipment, Remaining: row.Remaining})
	}
	return students, nil
}

// 历史页的显示状态
const (
	StatusBorrowed = "กำลังยืม"
	StatusReturned = "คืนแล้ว"
	StatusStat     = "สถิติย้อนหลัง"
)

type HistoryRow struct {
	models.LedgerTransaction
	Status string `json:"status"`
}

func displayStatus(action string) string {
	switch action {
	case models.ActionBorrow:
		return StatusBorrowed
	case models.ActionReturn:
		return StatusReturned
	default:
		return StatusStat
	}
}

// HistoryForDate lists all transactions effective on the given day,
// oldest first.
func (r *Repo) HistoryForDate(ctx context.Context, date string) ([]HistoryRow, error) {
	var txs []models.LedgerTransaction
	if err := r.DB.WithContext(ctx).
		Where("effective_date = ?", date).
		Order("timestamp ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}

	rows := make([]HistoryRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, HistoryRow{LedgerTransaction: t, Status: displayStatus(t.Action)})
	}
	return rows, nil
}

type StatRow struct {
	Equipment string `json:"equipment"`
	Qty       int    `json:"qty"`
}

// UsageStats aggregates qty by equipment over an effective-date range,
// optionally filtered by action, sorted by qty descending. Empty
// ranges yield an empty slice and total 0.
func (r *Repo) UsageStats(ctx context.Context, from, to, action string) ([]StatRow, int, error) {
	q := r.DB.WithContext(ctx).Model(&models.LedgerTransaction{}).
		Select("equipment, SUM(qty) AS qty").
		Group("equipment").
		Order("qty DESC")
	if from != "" {
		q = q.Where("effective_date >= ?", from)
	}
	if to != "" {
		q = q.Where("effective_date <= ?", to)
	}
	if action != "" {
		q = q.Where("action = ?", action)
	}

	rows := make([]StatRow, 0)
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	total := 0
	for _, row := range rows {
		total += row.Qty
	}
	return rows, total, nil
}

// SnapshotDailyUsage materializes one day's per-equipment usage into
// the snapshot table. Upsert keyed on (date, equipment, action) keeps
// the job idempotent across reruns.
func (r *Repo) SnapshotDailyUsage(ctx context.Context, date string) (int, error) {
	rows := make([]models.UsageSnapshot, 0)
	err := r.DB.WithContext(ctx).Model(&models.LedgerTransaction{}).
		Select("effective_date AS date, equipment, action, SUM(qty) AS qty").
		Where("effective_date = ?", date).
		Group("effective_date, equipment, action").
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	now := time.Now()
	for i := range rows {
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
	}
	err = r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "equipment"}, {Name: "action"}},
			DoUpdates: clause.AssignmentColumns([]string{"qty", "updated_at"}),
		}).
		Create(&rows).Error
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *Repo) ListSnapshots(ctx context.Context, date string) ([]models.UsageSnapshot, error) {
	q := r.DB.WithContext(ctx).Order("date DESC, equipment ASC")
	if date != "" {
		q = q.Where("date = ?", date)
	}
	rows := make([]models.UsageSnapshot, 0)
	err := q.Find(&rows).Error
	return rows, err
}
