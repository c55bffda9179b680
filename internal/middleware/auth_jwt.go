package middleware

import (
	"net/http"
	"strings"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/config"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/infra/token"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/logging"

	"github.com/labstack/echo/v4"
)

// echo.Context に入れるキー
const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRolesKey    = "user_roles"    // []model.Role
	CtxTokenVersionKey = "token_version" // int
)

type errorResponse struct {
	Error string `json:"error"`
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
}

// AuthJWT は Authorization: Bearer <token> を検証して sub/roles/tv を c.Set する
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c)
			}

			claims, err := token.Parse(secret, raw)
			if err != nil {
				logging.FromCtx(c.Request().Context()).Debug("jwt rejected", "error", err)
				return unauthorized(c)
			}

			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserRolesKey, claims.Roles)
			c.Set(CtxTokenVersionKey, claims.TokenVersion)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
