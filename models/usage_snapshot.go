// models/usage_snapshot.go
package models

import "time"

// UsageSnapshot is a materialized per-day usage row written by the
// nightly snapshot job. Read paths never depend on it; it exists so
// export tooling does not have to re-aggregate the ledger.
type UsageSnapshot struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Date      string `gorm:"size:10;uniqueIndex:idx_fel_snap;not null" json:"date"` // YYYY-MM-DD
	Equipment string `gorm:"size:200;uniqueIndex:idx_fel_snap;not null" json:"equipment"`
	Action    string `gorm:"size:10;uniqueIndex:idx_fel_snap;not null" json:"action"`
	Qty       int    `gorm:"not null" json:"qty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (UsageSnapshot) TableName() string { return SnapshotTable }
