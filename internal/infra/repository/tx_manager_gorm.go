package repository

import (
	"context"

	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"

	"gorm.io/gorm"
)

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// WithinTx はfnがnil以外を返すとロールバックする。panicもロールバックされる
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txRepos{tx})
	})
}

// txRepos の各repoは同じtxを共有する
type txRepos struct{ tx *gorm.DB }

func (t txRepos) Orders() repo.OrderRepository         { return NewOrderGormRepository(t.tx) }
func (t txRepos) OrderItems() repo.OrderItemRepository { return NewOrderItemGormRepository(t.tx) }
func (t txRepos) CartItems() repo.CartItemRepository   { return NewCartGormRepository(t.tx) }
func (t txRepos) Inventory() repo.InventoryRepository  { return NewInventoryGormRepository(t.tx) }
func (t txRepos) Products() repo.ProductRepository     { return NewProductGormRepository(t.tx) }
func (t txRepos) Users() repo.UserRepository           { return NewUserGormRepository(t.tx) }
func (t txRepos) AuditLogs() repo.AuditLogRepository   { return NewAuditLogGormRepository(t.tx) }
