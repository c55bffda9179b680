package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 商品スペック（表示順を保つためスライスで持つ）
type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Product struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Description    string          `gorm:"type:text" json:"description"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Images         []string        `gorm:"type:jsonb;serializer:json" json:"images"`
	Specifications []Specification `gorm:"type:jsonb;serializer:json" json:"specifications"`
	CategoryID     int64           `gorm:"not null;index" json:"categoryId"`

	// 作成したモデレーター。管理者が作った商品はnil
	OwnerID *int64 `gorm:"index" json:"ownerId,omitempty"`

	Stock     int64          `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p Product) OwnedBy(userID int64) bool {
	return p.OwnerID != nil && *p.OwnerID == userID
}
