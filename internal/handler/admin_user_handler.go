package handler

import (
	"net/http"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/config"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/middleware"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

type UpdateRolesRequest struct {
	Roles []model.Role `json:"roles"`
}

type AdminUserHandler struct {
	uc *usecase.AuthUsecase
}

func NewAdminUserHandler(uc *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	// /admin/users 配下は「JWT必須 + token_version一致 + 管理者限定」
	admin := e.Group(
		"/admin/users",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.RoleGuard(model.RoleAdmin),
	)

	admin.PUT("/:id/roles", h.updateRoles)
	admin.POST("/:id/force-logout", h.forceLogout)
}

func (h *AdminUserHandler) updateRoles(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req UpdateRolesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateRoles(c.Request().Context(), actor, userID, req.Roles)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.ForceLogout(c.Request().Context(), actor, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
