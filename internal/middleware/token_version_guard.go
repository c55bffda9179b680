package middleware

import (
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"

	"github.com/labstack/echo/v4"
)

// TokenVersionGuard は AuthJWT の後ろに置く。
// tvがDBのtoken_versionと違う（強制ログアウト・ロール変更済み）か、停止ユーザーなら401。
func TokenVersionGuard(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, idOK := c.Get(CtxUserIDKey).(int64)
			tv, tvOK := c.Get(CtxTokenVersionKey).(int)
			if !idOK || !tvOK || userID <= 0 {
				return unauthorized(c)
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			switch {
			case err != nil, user == nil:
				return unauthorized(c)
			case !user.IsActive, user.TokenVersion != tv:
				return unauthorized(c)
			}
			return next(c)
		}
	}
}
