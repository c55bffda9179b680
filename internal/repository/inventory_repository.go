package repository

import (
	"context"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
)

// 在庫の増減。論理削除済みの商品はErrNotFound
type InventoryRepository interface {
	SetStock(ctx context.Context, productID int64, stock int64) error
	// 足りなければfalse（在庫は変えない）
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)
	IncreaseStock(ctx context.Context, productID int64, qty int64) error
	CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error
}
