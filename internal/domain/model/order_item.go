package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。購入時点の商品名・価格を保存し、商品が後で変わっても更新しない
type OrderItem struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64           `gorm:"not null;index" json:"orderId"`
	ProductID    int64           `gorm:"not null;index" json:"productId"`
	ProductName  string          `gorm:"type:varchar(255);not null" json:"productName"`
	ProductPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"productPrice"`
	Quantity     int64           `gorm:"not null" json:"quantity"`
	Subtotal     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
}
