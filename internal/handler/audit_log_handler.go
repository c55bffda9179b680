package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/config"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/middleware"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAuditLogHandler(uc *usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{uc: uc}
}

func (h *AuditLogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.GET("/admin/audit-logs", h.list,
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.RoleGuard(model.RoleAdmin),
	)
}

// GET /admin/audit-logs?actorUserId=&action=&resourceType=&resourceId=&from=&to=&limit=&offset=
func (h *AuditLogHandler) list(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var f repository.AuditLogFilter

	if s := c.QueryParam("actorUserId"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return badRequest(c, "invalid actorUserId")
		}
		f.ActorUserID = &v
	}
	if s := c.QueryParam("action"); s != "" {
		a, ok := model.ParseAuditAction(s)
		if !ok {
			return badRequest(c, "invalid action")
		}
		f.Action = &a
	}
	if s := c.QueryParam("resourceType"); s != "" {
		rt, ok := model.ParseAuditResourceType(s)
		if !ok {
			return badRequest(c, "invalid resourceType")
		}
		f.ResourceType = &rt
	}
	if s := c.QueryParam("resourceId"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return badRequest(c, "invalid resourceId")
		}
		f.ResourceID = &v
	}
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return badRequest(c, "invalid from")
		}
		f.CreatedFrom = &t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return badRequest(c, "invalid to")
		}
		f.CreatedTo = &t
	}
	if s := c.QueryParam("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		f.Limit = v
	}
	if s := c.QueryParam("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return badRequest(c, "invalid offset")
		}
		f.Offset = v
	}

	out, err := h.uc.List(c.Request().Context(), actor, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
