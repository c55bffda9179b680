package repository

import (
	"context"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"

	"gorm.io/gorm"
)

// 並び順（未指定・不明は新着順）
var productOrder = map[string]string{
	"price_asc":  "price asc, id asc",
	"price_desc": "price desc, id desc",
	"new":        "created_at desc, id desc",
}

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開一覧の絞り込み（名前の部分一致・カテゴリ・価格帯）
func publicFilter(q repo.ProductListQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Q != "" {
			db = db.Where("name ILIKE ?", "%"+q.Q+"%")
		}
		if q.CategoryID != nil {
			db = db.Where("category_id = ?", *q.CategoryID)
		}
		if q.MinPrice != nil {
			db = db.Where("price >= ?", *q.MinPrice)
		}
		if q.MaxPrice != nil {
			db = db.Where("price <= ?", *q.MaxPrice)
		}
		return db
	}
}

func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Product{}).Scopes(publicFilter(q))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := productOrder[q.Sort]
	if !ok {
		order = productOrder["new"]
	}
	products := []model.Product{}
	err := base.Order(order).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&products).Error
	return products, total, err
}

func (r *ProductGormRepository) ListScoped(ctx context.Context, scope repo.OwnerScope) ([]model.Product, error) {
	products := []model.Product{}
	err := r.db.WithContext(ctx).Scopes(productScope(scope)).Order("id").Find(&products).Error
	return products, err
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	return first[model.Product](r.db.WithContext(ctx).Where("id = ?", id))
}

// 見つからないidは結果に含まれないだけ
func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	products := []model.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *ProductGormRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// owner_id と stock は変えない（在庫は InventoryRepository）
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.Product{ID: p.ID}).
		Select("name", "description", "price", "images", "specifications", "category_id").
		Updates(&p))
}

// deleted_at を入れるだけ。注文明細はスナップショットなので残る
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Product{}, id))
}
