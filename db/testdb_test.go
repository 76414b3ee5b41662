package db

import (
	"context"
	"fmt"
	"testing"

	"facility_equipment_ledger/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestRepo opens a private in-memory sqlite database with the real
// migrations applied.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	g, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := g.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// shared-cache in-memory db wants a single connection
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(g); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepo(g)
}

func mustCreateEquipment(t *testing.T, r *Repo, name string, stock, total int) *models.Equipment {
	t.Helper()
	eq, err := r.CreateEquipment(context.Background(), CreateEquipmentInput{Name: name, Stock: stock, Total: total})
	if err != nil {
		t.Fatalf("create equipment %s: %v", name, err)
	}
	return eq
}

func stockOf(t *testing.T, r *Repo, name string) int {
	t.Helper()
	eq, err := r.FindEquipmentByName(context.Background(), name)
	if err != nil {
		t.Fatalf("find equipment %s: %v", name, err)
	}
	return eq.Stock
}

func countTransactions(t *testing.T, r *Repo) int64 {
	t.Helper()
	var n int64
	if err := r.DB.Model(&models.LedgerTransaction{}).Count(&n).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return n
}
