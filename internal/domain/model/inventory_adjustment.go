package model

import "time"

// InventoryAdjustment はスタッフによる在庫の直接設定。Delta = 新在庫 - 旧在庫
type InventoryAdjustment struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int64     `gorm:"not null;index" json:"productId"`
	ActorUserID int64     `gorm:"not null;index" json:"actorUserId"`
	Delta       int64     `gorm:"not null" json:"delta"`
	Reason      string    `gorm:"type:varchar(255);not null;default:''" json:"reason"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
}
