package repository

import (
	"context"
	"fmt"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) line(ctx context.Context, userID, productID int64) *gorm.DB {
	return r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID)
}

// 追加順
func (r *CartGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	items := []model.CartItem{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error
	return items, err
}

func (r *CartGormRepository) FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartItem, error) {
	return first[model.CartItem](r.line(ctx, userID, productID))
}

// INSERT ... ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = quantity + EXCLUDED.quantity
func (r *CartGormRepository) Upsert(ctx context.Context, userID int64, productID int64, addQty int64) error {
	if addQty <= 0 {
		return fmt.Errorf("cart upsert: quantity %d", addQty)
	}
	item := model.CartItem{UserID: userID, ProductID: productID, Quantity: addQty}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"updated_at": gorm.Expr("EXCLUDED.updated_at"),
			}),
		}).
		Create(&item).Error
}

func (r *CartGormRepository) UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) error {
	return affected(r.line(ctx, userID, productID).Model(&model.CartItem{}).Update("quantity", qty))
}

func (r *CartGormRepository) DeleteByUserAndProduct(ctx context.Context, userID int64, productID int64) error {
	return affected(r.line(ctx, userID, productID).Delete(&model.CartItem{}))
}

// 0件でもエラーにしない
func (r *CartGormRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartItem{}).Error
}

// CartCleaner から呼ばれる
func (r *CartGormRepository) DeleteByID(ctx context.Context, cartItemID int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.CartItem{}, cartItemID))
}
