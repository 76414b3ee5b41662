// models/equipment.go
package models

import "time"

const EquipmentTable = "fel_equipment"
const TransactionTable = "fel_transactions"
const SnapshotTable = "fel_usage_snapshots"

// Equipment is one catalog entry with counted stock. Stock is mutated
// only by ledger commands; name/total come from staff catalog CRUD.
type Equipment struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:200;uniqueIndex;not null" json:"name"` // 唯一名称，台账外键
	Stock     int       `gorm:"not null;default:0" json:"stock"`           // 当前可借数量
	Total     int       `gorm:"not null;default:0" json:"total"`           // 总量上限
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Equipment) TableName() string { return EquipmentTable }
