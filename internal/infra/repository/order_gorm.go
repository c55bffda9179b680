package repository

import (
	"context"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") })
}

// 新しい順
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("orders.created_at desc").Order("orders.id desc")
}

// 明細は OrderItemRepository で取る
func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	return first[model.Order](r.db.WithContext(ctx).Where("id = ?", orderID))
}

func (r *OrderGormRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Where("order_number = ?", orderNumber).Limit(1).Count(&n).Error
	return n > 0, err
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	orders := []model.Order{}
	err := r.db.WithContext(ctx).
		Scopes(preloadItems, newestFirst).
		Where("user_id = ?", userID).
		Find(&orders).Error
	return orders, err
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Scopes(orderScope(f.Scope), newestFirst)
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.WithItems {
		q = q.Scopes(preloadItems)
	}

	orders := []model.Order{}
	err := q.Find(&orders).Error
	return orders, err
}

// 明細は別に CreateBulk する。order_number の衝突は ErrConflict
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := insertErr(r.db.WithContext(ctx).Omit("Items").Create(&order).Error); err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	return r.set(ctx, orderID, "status", status)
}

func (r *OrderGormRepository) UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error {
	return r.set(ctx, orderID, "payment_status", status)
}

func (r *OrderGormRepository) set(ctx context.Context, orderID int64, column string, value interface{}) error {
	return affected(r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", orderID).Update(column, value))
}
