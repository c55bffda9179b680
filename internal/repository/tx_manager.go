package repository

import "context"

// TxRepos は1つのトランザクションに束ねたrepo群
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	CartItems() CartItemRepository
	Inventory() InventoryRepository
	Products() ProductRepository
	Users() UserRepository
	AuditLogs() AuditLogRepository
}

type TransactionManager interface {
	// fnがエラーを返せば全部取り消す
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
