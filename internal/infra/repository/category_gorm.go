package repository

import (
	"context"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

// 名前順
func (r *CategoryGormRepository) List(ctx context.Context, onlyActive bool) ([]model.Category, error) {
	q := r.db.WithContext(ctx).Order("name")
	if onlyActive {
		q = q.Where("is_active")
	}
	list := []model.Category{}
	err := q.Find(&list).Error
	return list, err
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	return first[model.Category](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *CategoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	if err := insertErr(r.db.WithContext(ctx).Create(&c).Error); err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// is_active=false も書き込むので map で渡す
func (r *CategoryGormRepository) Update(ctx context.Context, c model.Category) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"name":        c.Name,
		"description": c.Description,
		"is_active":   c.IsActive,
	})
	if err := insertErr(res.Error); err != nil {
		return err
	}
	return affected(res)
}

func (r *CategoryGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Category{}, id))
}
