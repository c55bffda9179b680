package repository

import (
	"context"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"

	"gorm.io/gorm"
)

// InventoryGormRepository は products.stock だけを触る。
// 論理削除済みの商品は対象外（ErrNotFound / false）。
type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) stock(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Product{})
}

func (r *InventoryGormRepository) SetStock(ctx context.Context, productID int64, newStock int64) error {
	return affected(r.stock(ctx).Where("id = ?", productID).Update("stock", newStock))
}

// UPDATE products SET stock = stock - q WHERE id = ? AND stock >= q
// 条件に合わなければ false（在庫不足または商品なし）
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	res := r.stock(ctx).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected == 1, res.Error
}

func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	return affected(r.stock(ctx).Where("id = ?", productID).Update("stock", gorm.Expr("stock + ?", qty)))
}

func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(&adj).Error
}
