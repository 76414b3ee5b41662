// db/repo_ledger.go
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"facility_equipment_ledger/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type BorrowLine struct {
	Equipment string `json:"equipment"`
	Qty       int    `json:"qty"`
}

type BorrowInput struct {
	StudentID string
	Faculty   string
	Items     []BorrowLine
	// Backdate 非空表示回填：学生强制为 STAT_ONLY，不校验也不扣库存
	Backdate string
}

// normalize validates the input per mode and resolves the effective
// date. Backdated submissions are forced onto the sentinel identity.
func (in *BorrowInput) normalize(now time.Time) (string, error) {
	if len(in.Items) == 0 {
		return "", fmt.Errorf("%w: no items", ErrValidation)
	}
	for _, line := range in.Items {
		if strings.TrimSpace(line.Equipment) == "" {
			return "", fmt.Errorf("%w: equipment is required", ErrValidation)
		}
		if line.Qty <= 0 {
			return "", fmt.Errorf("%w: qty must be positive", ErrValidation)
		}
	}

	if in.Backdate != "" {
		if _, err := time.Parse(dateLayout, in.Backdate); err != nil {
			return "", fmt.Errorf("%w: bad backdate %q", ErrValidation, in.Backdate)
		}
		in.StudentID = models.StatOnlyStudentID
		in.Faculty = models.StatOnlyFaculty
		return in.Backdate, nil
	}

	if strings.TrimSpace(in.StudentID) == "" {
		return "", fmt.Errorf("%w: student_id is required", ErrValidation)
	}
	if strings.TrimSpace(in.Faculty) == "" {
		return "", fmt.Errorf("%w: faculty is required", ErrValidation)
	}
	return now.Format(dateLayout), nil
}

// Borrow commits one multi-line borrow as a single transaction: any
// failed line rolls back the whole batch and leaves stock untouched.
func (r *Repo) Borrow(ctx context.Context, in BorrowInput) ([]models.LedgerTransaction, error) {
	now := time.Now()
	effective, err := in.normalize(now)
	if err != nil {
		return nil, err
	}

	rows := make([]models.LedgerTransaction, 0, len(in.Items))
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range in.Items {
			row, err := appendBorrowLine(tx, in, line, now, effective)
			if err != nil {
				return fmt.Errorf("%s: %w", line.Equipment, err)
			}
			rows = append(rows, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type BorrowLineFailure struct {
	Equipment string `json:"equipment"`
	Qty       int    `json:"qty"`
	Error     string `json:"error"`
}

type BorrowReport struct {
	Committed []models.LedgerTransaction `json:"committed"`
	Failed    []BorrowLineFailure        `json:"failed"`
}

// BorrowPartial is the legacy per-line mode: each line commits in its
// own transaction and a failure does not roll back earlier lines.
func (r *Repo) BorrowPartial(ctx context.Context, in BorrowInput) (*BorrowReport, error) {
	now := time.Now()
	effective, err := in.normalize(now)
	if err != nil {
		return nil, err
	}

	rep := &BorrowReport{
		Committed: make([]models.LedgerTransaction, 0, len(in.Items)),
		Failed:    make([]BorrowLineFailure, 0),
	}
	for _, line := range in.Items {
		var row *models.LedgerTransaction
		err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			row, err = appendBorrowLine(tx, in, line, now, effective)
			return err
		})
		if err != nil {
			rep.Failed = append(rep.Failed, BorrowLineFailure{Equipment: line.Equipment, Qty: line.Qty, Error: err.Error()})
			continue
		}
		rep.Committed = append(rep.Committed, *row)
	}
	return rep, nil
}

func appendBorrowLine(tx *gorm.DB, in BorrowInput, line BorrowLine, now time.Time, effective string) (*models.LedgerTransaction, error) {
	backdate := in.Backdate != ""
	if backdate {
		// 回填不动库存，但名称必须在目录里
		var n int64
		if err := tx.Model(&models.Equipment{}).Where("name = ?", line.Equipment).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrNotFound
		}
	} else {
		if _, err := adjustStock(tx, line.Equipment, -line.Qty); err != nil {
			return nil, err
		}
	}

	row := &models.LedgerTransaction{
		ID:            uuid.NewString(),
		StudentID:     in.StudentID,
		Faculty:       in.Faculty,
		Equipment:     line.Equipment,
		Qty:           line.Qty,
		Action:        models.ActionBorrow,
		IsBackdate:    backdate,
		EffectiveDate: effective,
		Timestamp:     now,
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

type ReturnInput struct {
	StudentID string
	Faculty   string
	Equipment string
	Qty       int
}

// Return settles qty against the pair's outstanding balance and puts
// the stock back. Returns (nil, nil) for the defensive qty=0 case.
func (r *Repo) Return(ctx context.Context, in ReturnInput) (*models.LedgerTransaction, error) {
	if strings.TrimSpace(in.StudentID) == "" {
		return nil, fmt.Errorf("%w: student_id is required", ErrValidation)
	}
	if strings.TrimSpace(in.Equipment) == "" {
		return nil, fmt.Errorf("%w: equipment is required", ErrValidation)
	}
	if in.Qty < 0 {
		return nil, fmt.Errorf("%w: qty must not be negative", ErrValidation)
	}
	if in.Qty == 0 {
		// nothing to return
		return nil, nil
	}

	now := time.Now()
	var row *models.LedgerTransaction
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先锁库存行，再算结余；超还则整个事务回滚
		if _, err := adjustStock(tx, in.Equipment, in.Qty); err != nil {
			// 库存已满时超还会先撞到容量上限，报超还更贴切
			if errors.Is(err, ErrCapacityExceeded) {
				bal, balErr := outstandingBalance(tx, in.StudentID, in.Equipment)
				if balErr == nil && in.Qty > bal {
					return ErrOverReturn
				}
			}
			return err
		}
		bal, err := outstandingBalance(tx, in.StudentID, in.Equipment)
		if err != nil {
			return err
		}
		if in.Qty > bal {
			return ErrOverReturn
		}

		row = &models.LedgerTransaction{
			ID:            uuid.NewString(),
			StudentID:     in.StudentID,
			Faculty:       in.Faculty,
			Equipment:     in.Equipment,
			Qty:           in.Qty,
			Action:        models.ActionReturn,
			EffectiveDate: now.Format(dateLayout),
			Timestamp:     now,
		}
		return tx.Create(row).Error
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// RecordStat appends a statistics-only row for historical reporting.
// It never touches stock or any student balance.
func (r *Repo) RecordStat(ctx context.Context, equipment string, qty int, effectiveDate string) (*models.LedgerTransaction, error) {
	if strings.TrimSpace(equipment) == "" {
		return nil, fmt.Errorf("%w: equipment is required", ErrValidation)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: qty must be positive", ErrValidation)
	}
	if _, err := time.Parse(dateLayout, effectiveDate); err != nil {
		return nil, fmt.Errorf("%w: bad effective_date %q", ErrValidation, effectiveDate)
	}

	now := time.Now()
	var row *models.LedgerTransaction
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Equipment{}).Where("name = ?", equipment).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}

		row = &models.LedgerTransaction{
			ID:            uuid.NewString(),
			StudentID:     models.StatOnlyStudentID,
			Faculty:       models.StatOnlyFaculty,
			Equipment:     equipment,
			Qty:           qty,
			Action:        models.ActionStat,
			IsBackdate:    true,
			EffectiveDate: effectiveDate,
			Timestamp:     now,
		}
		return tx.Create(row).Error
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// outstandingBalance sums borrows minus returns over live rows for the
// pair. Live rows only: stat and backdated entries never settle.
func outstandingBalance(tx *gorm.DB, studentID, equipment string) (int, error) {
	var bal int
	err := tx.Model(&models.LedgerTransaction{}).
		Select("COALESCE(SUM(CASE WHEN action = ? THEN qty ELSE -qty END), 0)", models.ActionBorrow).
		Where("student_id = ? AND equipment = ? AND action IN ? AND is_backdate = ?",
			studentID, equipment, []string{models.ActionBorrow, models.ActionReturn}, false).
		Scan(&bal).Error
	return bal, err
}

// OutstandingBalance exposes the pair balance for callers outside a
// ledger transaction.
func (r *Repo) OutstandingBalance(ctx context.Context, studentID, equipment string) (int, error) {
	return outstandingBalance(r.DB.WithContext(ctx), studentID, equipment)
}
