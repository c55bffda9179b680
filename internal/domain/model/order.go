package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusPreparation      OrderStatus = "preparation"
	OrderStatusPaymentConfirmed OrderStatus = "payment_confirmed"
	OrderStatusShipped          OrderStatus = "shipped"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

// 集計などで順序が必要なときに使う
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparation,
	OrderStatusPaymentConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range AllOrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// 終端（これ以上ステータスを変えられない）
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// 売上に数える状態
func (s OrderStatus) Completed() bool {
	return s == OrderStatusPaymentConfirmed || s == OrderStatusShipped || s == OrderStatusDelivered
}

// キャンセル可能か（発送後・配達後・キャンセル済みは不可）
func (s OrderStatus) Cancellable() bool {
	return s != OrderStatusShipped && s != OrderStatusDelivered && s != OrderStatusCancelled
}

// ステータス更新の可否。終端以外からは後戻りも含めて許可している
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	return !s.Terminal()
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"orderNumber"`
	UserID          int64           `gorm:"not null;index" json:"userId"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Status          OrderStatus     `gorm:"type:varchar(32);not null;index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(32);not null" json:"paymentStatus"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	CreatedAt       time.Time       `gorm:"not null;index" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updatedAt"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}
