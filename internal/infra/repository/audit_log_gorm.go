package repository

import (
	"context"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"

	"gorm.io/gorm"
)

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 200
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

// eq はvがnilなら条件を足さない
func eq[T any](column string, v *T) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if v == nil {
			return q
		}
		return q.Where(column+" = ?", *v)
	}
}

func auditPage(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	limit := f.Limit
	switch {
	case limit <= 0:
		limit = auditDefaultLimit
	case limit > auditMaxLimit:
		limit = auditMaxLimit
	}
	offset := max(f.Offset, 0)
	return func(q *gorm.DB) *gorm.DB {
		return q.Order("id DESC").Limit(limit).Offset(offset)
	}
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&model.AuditLog{}).Scopes(
		eq("actor_user_id", f.ActorUserID),
		eq("action", f.Action),
		eq("resource_type", f.ResourceType),
		eq("resource_id", f.ResourceID),
	)
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}

	logs := []model.AuditLog{}
	if err := q.Scopes(auditPage(f)).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
