package repository

import (
	"context"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
)

type OrderListFilter struct {
	Scope     OwnerScope
	Status    model.OrderStatus
	WithItems bool
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)
	// 新しい順、明細付き
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	// 新しい順
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
	// 注文番号の重複はErrConflict
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error
}
