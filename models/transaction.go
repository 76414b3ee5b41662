// models/transaction.go
package models

import "time"

const (
	ActionBorrow = "borrow"
	ActionReturn = "return"
	ActionStat   = "stat"
)

// 回填统计条目不绑定真实学生
const StatOnlyStudentID = "STAT_ONLY"
const StatOnlyFaculty = "-"

// LedgerTransaction is an append-only ledger row. Rows are never
// updated or deleted; undoing a loan means appending an offsetting
// return row.
type LedgerTransaction struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID string `gorm:"size:60;index:idx_fel_tx_pair;not null" json:"student_id"`
	Faculty   string `gorm:"size:120;not null" json:"faculty"`
	Equipment string `gorm:"size:200;index:idx_fel_tx_pair;not null" json:"equipment"` // Equipment.Name
	Qty       int    `gorm:"not null" json:"qty"`
	Action    string `gorm:"size:10;index;not null" json:"action"` // borrow/return/stat

	// 回填条目：显式日期，且不动库存
	IsBackdate    bool   `gorm:"not null;default:false" json:"is_backdate"`
	EffectiveDate string `gorm:"size:10;index;not null" json:"effective_date"` // YYYY-MM-DD

	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	CreatedAt time.Time `json:"createdAt"`
}

func (LedgerTransaction) TableName() string { return TransactionTable }
