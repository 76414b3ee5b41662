package db

import (
	"facility_equipment_ledger/config"
	"facility_equipment_ledger/models"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB(cfg config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Equipment{}, &models.LedgerTransaction{}, &models.UsageSnapshot{}); err != nil {
		return err
	}

	// 结余计算只看有效行（非 stat、非回填）
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_live_pair
	  ON %s (student_id, equipment)
	  WHERE action <> 'stat' AND is_backdate = FALSE;
	`, models.TransactionTable, models.TransactionTable)).Error; err != nil {
		return err
	}

	// 按天的历史/统计查询
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_date_action
	  ON %s (effective_date, action);
	`, models.TransactionTable, models.TransactionTable)).Error; err != nil {
		return err
	}

	return nil
}
