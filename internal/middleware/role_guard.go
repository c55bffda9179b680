package middleware

import (
	"net/http"
	"slices"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// RoleGuard は許可ロールのどれかを持つときだけ通す（AuthJWTの後ろ）
func RoleGuard(allowed ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, ok := c.Get(CtxUserRolesKey).([]model.Role)
			if !ok || len(roles) == 0 {
				return unauthorized(c)
			}
			if slices.ContainsFunc(roles, func(r model.Role) bool { return slices.Contains(allowed, r) }) {
				return next(c)
			}
			return c.JSON(http.StatusForbidden, errorResponse{Error: "forbidden"})
		}
	}
}
