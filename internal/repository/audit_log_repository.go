package repository

import (
	"context"
	"time"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
)

// AuditLogFilter のポインタ項目はnilなら絞り込まない
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time

	Limit  int // 0以下は50、200で頭打ち
	Offset int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
