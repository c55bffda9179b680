package repository

import (
	"context"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"

	"gorm.io/gorm"
)

// 1回のINSERTに載せる明細数
const orderItemBatch = 100

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

// 呼び出し元のスライスは書き換えない
func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := append([]model.OrderItem(nil), items...)
	for i := range rows {
		rows[i].ID = 0
		rows[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).CreateInBatches(&rows, orderItemBatch).Error
}

func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	items := []model.OrderItem{}
	err := r.db.WithContext(ctx).
		Where(&model.OrderItem{OrderID: orderID}).
		Order("id").
		Find(&items).Error
	return items, err
}
