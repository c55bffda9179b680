package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/logging"
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

// アクセストークン発行
type TokenIssuer interface {
	Issue(user model.User, now time.Time) (token string, expiresAt time.Time, err error)
}

type UserDTO struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	Roles        []model.Role `json:"roles"`
	TokenVersion int          `json:"tokenVersion"`
	IsActive     bool         `json:"isActive"`
}

type AuthRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AccessTokenDTO struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type AuthLoginResponse struct {
	User  UserDTO        `json:"user"`
	Token AccessTokenDTO `json:"token"`
}

type ForceLogoutResponse struct {
	UserID          int64 `json:"userId"`
	NewTokenVersion int   `json:"newTokenVersion"`
}

type AuthUsecase struct {
	tx        repo.TransactionManager
	users     repo.UserRepository
	validator AuthValidator
	issuer    TokenIssuer
	now       func() time.Time
}

func NewAuthUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	validator AuthValidator,
	issuer TokenIssuer,
) *AuthUsecase {
	return &AuthUsecase{
		tx:        tx,
		users:     users,
		validator: validator,
		issuer:    issuer,
		now:       time.Now,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (UserDTO, error) {
	email := normalizeEmail(req.Email)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, email, req.Password); err != nil {
		return UserDTO{}, err
	}

	//パスワードは必ずハッシュ化して保存
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(pwHash),
		Roles:        []model.Role{model.RoleUser},
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return UserDTO{}, NewHTTPError(http.StatusConflict, "email already used")
		}
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	logging.FromCtx(ctx).Info("user registered", "user_id", user.ID)
	return toUserDTO(user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (AuthLoginResponse, error) {
	email := normalizeEmail(req.Email)
	if err := u.validator.ValidateLogin(ctx, email, req.Password); err != nil {
		return AuthLoginResponse{}, err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && user == nil) {
		return AuthLoginResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return AuthLoginResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return AuthLoginResponse{}, NewHTTPError(http.StatusForbidden, "user disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return AuthLoginResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	now := u.now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		logging.FromCtx(ctx).Warn("last login update failed", "user_id", user.ID, "error", err)
	}

	token, expiresAt, err := u.issuer.Issue(*user, now)
	if err != nil {
		return AuthLoginResponse{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return AuthLoginResponse{
		User: toUserDTO(user),
		Token: AccessTokenDTO{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresAt:   expiresAt,
		},
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !user.IsActive {
		return UserDTO{}, NewHTTPError(http.StatusForbidden, "user disabled")
	}
	return toUserDTO(user), nil
}

// ForceLogout はtoken_versionを上げて発行済みトークンを無効にする
func (u *AuthUsecase) ForceLogout(ctx context.Context, actor Actor, targetUserID int64) (ForceLogoutResponse, error) {
	if !actor.IsAdmin() {
		return ForceLogoutResponse{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if targetUserID <= 0 {
		return ForceLogoutResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out ForceLogoutResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		target, err := r.Users().FindByID(ctx, targetUserID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "user not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Users().IncrementTokenVersion(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		newTV := target.TokenVersion + 1
		before, _ := json.Marshal(map[string]int{"tokenVersion": target.TokenVersion})
		after, _ := json.Marshal(map[string]int{"tokenVersion": newTV})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionForceLogout,
			ResourceType: model.AuditResourceUser,
			ResourceID:   targetUserID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    u.now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = ForceLogoutResponse{UserID: targetUserID, NewTokenVersion: newTV}
		return nil
	})
	if err != nil {
		return ForceLogoutResponse{}, err
	}
	return out, nil
}

// UpdateRoles はロールを置き換え、token_versionも上げる（古いロールのトークンを無効化）
func (u *AuthUsecase) UpdateRoles(ctx context.Context, actor Actor, targetUserID int64, roles []model.Role) (UserDTO, error) {
	if !actor.IsAdmin() {
		return UserDTO{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if targetUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	normalized, err := normalizeRoles(roles)
	if err != nil {
		return UserDTO{}, err
	}
	// 自分から管理者を外すと誰も管理できなくなりうる
	if targetUserID == actor.UserID && !containsRole(normalized, model.RoleAdmin) {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "cannot remove own admin role")
	}

	var out UserDTO
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		target, err := r.Users().FindByID(ctx, targetUserID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "user not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Users().UpdateRoles(ctx, targetUserID, normalized); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Users().IncrementTokenVersion(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		before, _ := json.Marshal(map[string][]model.Role{"roles": target.Roles})
		after, _ := json.Marshal(map[string][]model.Role{"roles": normalized})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateUserRoles,
			ResourceType: model.AuditResourceUser,
			ResourceID:   targetUserID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    u.now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		target.Roles = normalized
		target.TokenVersion++
		out = toUserDTO(target)
		return nil
	})
	if err != nil {
		return UserDTO{}, err
	}
	return out, nil
}

// EnsureAdmin は起動時に管理者ユーザーを用意する。既存ユーザーなら管理者ロールを足す
func (u *AuthUsecase) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	log := logging.FromCtx(ctx)

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if err == nil && user != nil {
		if user.HasRole(model.RoleAdmin) {
			return nil
		}
		roles := append(append([]model.Role{}, user.Roles...), model.RoleAdmin)
		if err := u.users.UpdateRoles(ctx, user.ID, roles); err != nil {
			return err
		}
		log.Info("admin role granted", "user_id", user.ID)
		return nil
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &model.User{
		Email:        email,
		PasswordHash: string(pwHash),
		Roles:        []model.Role{model.RoleUser, model.RoleAdmin},
		IsActive:     true,
	}
	if err := u.users.Create(ctx, admin); err != nil {
		return err
	}
	log.Info("admin user created", "user_id", admin.ID)
	return nil
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	roles := u.Roles
	if roles == nil {
		roles = []model.Role{}
	}
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Roles:        roles,
		TokenVersion: u.TokenVersion,
		IsActive:     u.IsActive,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// 重複を除き、userロールは常に持たせる
func normalizeRoles(roles []model.Role) ([]model.Role, error) {
	out := []model.Role{model.RoleUser}
	for _, r := range roles {
		r = model.Role(strings.ToLower(strings.TrimSpace(string(r))))
		if !r.Valid() {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid role")
		}
		if !containsRole(out, r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func containsRole(roles []model.Role, role model.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
