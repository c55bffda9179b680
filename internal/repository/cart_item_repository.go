package repository

import (
	"context"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
)

// カート明細。1ユーザー×1商品で1行
type CartItemRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartItem, error)
	// 同一商品はプラス（一意制約でまとめる）
	Upsert(ctx context.Context, userID int64, productID int64, addQty int64) error
	UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) error
	DeleteByUserAndProduct(ctx context.Context, userID int64, productID int64) error
	DeleteByUserID(ctx context.Context, userID int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
}
