package repository

import (
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"

	"gorm.io/gorm"
)

// 商品をスコープで絞る（owner_id一致）
func productScope(s repo.OwnerScope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.IsAll() {
			return db
		}
		return db.Where("products.owner_id = ?", *s.OwnerID)
	}
}

// 注文をスコープで絞る（所有者の商品を1つでも含む注文）。
// 論理削除済みの商品は数えない（FindByIDs と同じ基準）
func orderScope(s repo.OwnerScope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.IsAll() {
			return db
		}
		sub := db.Session(&gorm.Session{NewDB: true}).
			Table("order_items").
			Select("order_items.order_id").
			Joins("join products on products.id = order_items.product_id").
			Where("products.owner_id = ? AND products.deleted_at IS NULL", *s.OwnerID)
		return db.Where("orders.id IN (?)", sub)
	}
}
