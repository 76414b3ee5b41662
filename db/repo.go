package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"facility_equipment_ledger/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 台账错误分类：调用方据此映射到 HTTP 状态
var (
	ErrNotFound          = errors.New("equipment not found")
	ErrDuplicateName     = errors.New("equipment name already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCapacityExceeded  = errors.New("stock would exceed total")
	ErrOverReturn        = errors.New("return exceeds outstanding balance")
	ErrValidation        = errors.New("invalid request")
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Equipment catalog (staff CRUD)

type CreateEquipmentInput struct {
	Name  string
	Stock int
	Total int
}

func (r *Repo) CreateEquipment(ctx context.Context, in CreateEquipmentInput) (*models.Equipment, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.Stock < 0 || in.Total < 0 || in.Stock > in.Total {
		return nil, fmt.Errorf("%w: need 0 <= stock <= total", ErrValidation)
	}

	eq := &models.Equipment{ID: uuid.NewString(), Name: name, Stock: in.Stock, Total: in.Total}
	if err := r.DB.WithContext(ctx).Create(eq).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return eq, nil
}

func (r *Repo) FindEquipmentByID(ctx context.Context, id string) (*models.Equipment, error) {
	var eq models.Equipment
	if err := r.DB.WithContext(ctx).First(&eq, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &eq, nil
}

func (r *Repo) FindEquipmentByName(ctx context.Context, name string) (*models.Equipment, error) {
	var eq models.Equipment
	if err := r.DB.WithContext(ctx).First(&eq, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &eq, nil
}

func (r *Repo) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	items := make([]models.Equipment, 0)
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

type UpdateEquipmentInput struct {
	Name  *string
	Stock *int
	Total *int
}

// UpdateEquipment edits catalog fields. Bounds are re-checked against
// the merged row so a shrunken total can never leave stock above it.
func (r *Repo) UpdateEquipment(ctx context.Context, id string, in UpdateEquipmentInput) (*models.Equipment, error) {
	var eq models.Equipment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&eq, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if in.Name != nil {
			n := strings.TrimSpace(*in.Name)
			if n == "" {
				return fmt.Errorf("%w: name is required", ErrValidation)
			}
			eq.Name = n
		}
		if in.Stock != nil {
			eq.Stock = *in.Stock
		}
		if in.Total != nil {
			eq.Total = *in.Total
		}
		if eq.Stock < 0 || eq.Stock > eq.Total {
			return fmt.Errorf("%w: need 0 <= stock <= total", ErrValidation)
		}
		if err := tx.Save(&eq).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateName
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *Repo) DeleteEquipment(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Equipment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stock store

// adjustStock applies a bounded stock delta inside the caller's
// transaction. The guarded UPDATE both enforces 0 <= stock <= total and
// takes the row lock that serializes concurrent commands per equipment
// name for the rest of the transaction.
func adjustStock(tx *gorm.DB, name string, delta int) (*models.Equipment, error) {
	res := tx.Model(&models.Equipment{}).
		Where("name = ? AND stock + ? >= 0 AND stock + ? <= total", name, delta, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var eq models.Equipment
		if err := tx.First(&eq, "name = ?", name).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if delta < 0 {
			return nil, ErrInsufficientStock
		}
		return nil, ErrCapacityExceeded
	}

	var eq models.Equipment
	if err := tx.First(&eq, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

// AdjustStock is the standalone stock-store mutation. Ledger commands
// use adjustStock inside their own transactions instead.
func (r *Repo) AdjustStock(ctx context.Context, name string, delta int) (*models.Equipment, error) {
	var eq *models.Equipment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		eq, err = adjustStock(tx, name, delta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return eq, nil
}
