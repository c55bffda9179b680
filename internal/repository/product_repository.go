package repository

import (
	"context"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 一覧検索
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	// スコープ内の全商品（管理画面・統計用）
	ListScoped(ctx context.Context, scope OwnerScope) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// 見つかったものだけ返す（欠けていてもエラーにしない）
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}
