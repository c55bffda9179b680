package handler

import (
	"strconv"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/middleware"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

// middleware.AuthJWT が c.Set した値から Actor を作る
func actorFromContext(c echo.Context) (usecase.Actor, bool) {
	userID, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || userID <= 0 {
		return usecase.Actor{}, false
	}
	roles, _ := c.Get(middleware.CtxUserRolesKey).([]model.Role)
	return usecase.Actor{UserID: userID, Roles: roles}, true
}

// パスパラメータを正のint64として読む
func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
