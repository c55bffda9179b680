package repository

import (
	"context"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
)

type CategoryRepository interface {
	List(ctx context.Context, onlyActive bool) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	// name重複はErrConflict
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id int64) error
}
