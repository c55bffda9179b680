package repository

import (
	"errors"

	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// unique_violation
const pgUniqueViolation = "23505"

// 一意制約違反か（pgxのエラーコードで判定）
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// 1件取得。無ければ repo.ErrNotFound
func first[T any](q *gorm.DB) (T, error) {
	var v T
	err := q.First(&v).Error
	if isNotFound(err) {
		return v, repo.ErrNotFound
	}
	return v, err
}

// UPDATE/DELETE の結果。0件なら repo.ErrNotFound
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// INSERT のエラー。一意制約違反は repo.ErrConflict
func insertErr(err error) error {
	if err != nil && isUniqueViolation(err) {
		return repo.ErrConflict
	}
	return err
}
