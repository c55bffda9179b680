package usecase

import (
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"
)

// Actor はリクエストしたユーザー（JWTから取り出したもの）
type Actor struct {
	UserID int64
	Roles  []model.Role
}

func (a Actor) Has(role model.Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool {
	return a.Has(model.RoleAdmin)
}

// 管理者またはモデレーター
func (a Actor) IsStaff() bool {
	return a.IsAdmin() || a.Has(model.RoleModerator)
}

// 管理者でないモデレーターは自分の商品に関係する行だけ見られる
func (a Actor) Scoped() bool {
	return a.Has(model.RoleModerator) && !a.IsAdmin()
}

// ScopeFor は商品・注文・統計の絞り込み条件を返す。
// ロールによる行の絞り込みはここだけで決める。
func ScopeFor(a Actor) repo.OwnerScope {
	if a.Scoped() {
		return repo.OwnedBy(a.UserID)
	}
	return repo.AllRows()
}
