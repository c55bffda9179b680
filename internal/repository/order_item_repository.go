package repository

import (
	"context"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
)

// 注文明細は作成後に変更しない
type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	// id順
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
