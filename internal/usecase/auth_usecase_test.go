package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	uc     *usecase.AuthUsecase
	tx     *TxManagerMock
	users  *UserRepoMock
	audits *AuditRepoMock
	issuer *TokenIssuerMock
}

func newAuthFixture() authFixture {
	f := authFixture{
		users:  new(UserRepoMock),
		audits: new(AuditRepoMock),
		issuer: new(TokenIssuerMock),
	}
	f.tx = &TxManagerMock{Repos: &TxReposMock{users: f.users, audits: f.audits}}
	f.uc = usecase.NewAuthUsecase(f.tx, f.users, passValidator{}, f.issuer)
	return f
}

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

func TestAuthUsecase_Register_Success(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "new@example.com" &&
			u.PasswordHash != "password123" &&
			len(u.Roles) == 1 && u.Roles[0] == model.RoleUser &&
			u.IsActive
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 10
	}).Return(nil).Once()

	out, err := f.uc.Register(ctx, usecase.AuthRegisterRequest{Email: " New@Example.com ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, "new@example.com", out.Email)
}

func TestAuthUsecase_Register_EmailTaken(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.users.On("Create", ctx, mock.Anything).Return(repo.ErrConflict).Once()

	_, err := f.uc.Register(ctx, usecase.AuthRegisterRequest{Email: "a@example.com", Password: "password123"})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 409, he.Status)
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	user := &model.User{ID: 1, Email: "a@example.com", PasswordHash: hashPassword(t, "password123"), Roles: []model.Role{model.RoleUser}, IsActive: true}
	f.users.On("FindByEmail", ctx, "a@example.com").Return(user, nil).Once()
	f.users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool { return u.LastLoginAt != nil })).Return(nil).Once()
	f.issuer.On("Issue", mock.Anything, mock.Anything).Return("signed.jwt", exp, nil).Once()

	out, err := f.uc.Login(ctx, usecase.AuthLoginRequest{Email: "A@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt", out.Token.AccessToken)
	assert.Equal(t, "Bearer", out.Token.TokenType)
	assert.Equal(t, exp, out.Token.ExpiresAt)
	assert.Equal(t, int64(1), out.User.ID)
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user := &model.User{ID: 1, Email: "a@example.com", PasswordHash: hashPassword(t, "password123"), IsActive: true}
	f.users.On("FindByEmail", ctx, "a@example.com").Return(user, nil).Once()

	_, err := f.uc.Login(ctx, usecase.AuthLoginRequest{Email: "a@example.com", Password: "nope-nope"})
	assertErrContains(t, err, "invalid credentials")
	f.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Login_UnknownEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.users.On("FindByEmail", ctx, "who@example.com").Return(nil, repo.ErrNotFound).Once()

	_, err := f.uc.Login(ctx, usecase.AuthLoginRequest{Email: "who@example.com", Password: "password123"})
	assertErrContains(t, err, "invalid credentials")
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user := &model.User{ID: 1, Email: "a@example.com", PasswordHash: hashPassword(t, "password123"), IsActive: false}
	f.users.On("FindByEmail", ctx, "a@example.com").Return(user, nil).Once()

	_, err := f.uc.Login(ctx, usecase.AuthLoginRequest{Email: "a@example.com", Password: "password123"})
	assertErrContains(t, err, "user disabled")
}

func TestAuthUsecase_ForceLogout_Success(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.tx.On("WithinTx", ctx).Return(nil).Once()
	f.users.On("FindByID", ctx, int64(5)).Return(&model.User{ID: 5, TokenVersion: 2}, nil).Once()
	f.users.On("IncrementTokenVersion", ctx, int64(5)).Return(nil).Once()
	f.audits.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionForceLogout &&
			l.ResourceType == model.AuditResourceUser &&
			l.BeforeJSON == `{"tokenVersion":2}` &&
			l.AfterJSON == `{"tokenVersion":3}`
	})).Return(nil).Once()

	out, err := f.uc.ForceLogout(ctx, adminActor(), 5)
	require.NoError(t, err)
	assert.Equal(t, 3, out.NewTokenVersion)
	f.audits.AssertExpectations(t)
}

func TestAuthUsecase_ForceLogout_NotAdmin(t *testing.T) {
	f := newAuthFixture()

	_, err := f.uc.ForceLogout(context.Background(), moderatorActor(9), 5)
	assertErrContains(t, err, "forbidden")
}

func TestAuthUsecase_UpdateRoles_AlwaysKeepsUser(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.tx.On("WithinTx", ctx).Return(nil).Once()
	f.users.On("FindByID", ctx, int64(5)).Return(&model.User{ID: 5, Roles: []model.Role{model.RoleUser}, TokenVersion: 1}, nil).Once()
	f.users.On("UpdateRoles", ctx, int64(5), []model.Role{model.RoleUser, model.RoleModerator}).Return(nil).Once()
	f.users.On("IncrementTokenVersion", ctx, int64(5)).Return(nil).Once()
	f.audits.On("Create", ctx, mock.Anything).Return(nil).Once()

	out, err := f.uc.UpdateRoles(ctx, adminActor(), 5, []model.Role{"Moderator", model.RoleModerator})
	require.NoError(t, err)
	assert.Equal(t, []model.Role{model.RoleUser, model.RoleModerator}, out.Roles)
	assert.Equal(t, 2, out.TokenVersion)
}

func TestAuthUsecase_UpdateRoles_CannotDropOwnAdmin(t *testing.T) {
	f := newAuthFixture()

	_, err := f.uc.UpdateRoles(context.Background(), adminActor(), adminActor().UserID, []model.Role{model.RoleModerator})
	assertErrContains(t, err, "cannot remove own admin role")
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAuthUsecase_UpdateRoles_InvalidRole(t *testing.T) {
	f := newAuthFixture()

	_, err := f.uc.UpdateRoles(context.Background(), adminActor(), 5, []model.Role{"superuser"})
	assertErrContains(t, err, "invalid role")
}

func TestAuthUsecase_EnsureAdmin_GrantsRoleToExistingUser(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.users.On("FindByEmail", ctx, "root@example.com").Return(&model.User{ID: 3, Roles: []model.Role{model.RoleUser}}, nil).Once()
	f.users.On("UpdateRoles", ctx, int64(3), []model.Role{model.RoleUser, model.RoleAdmin}).Return(nil).Once()

	require.NoError(t, f.uc.EnsureAdmin(ctx, "Root@example.com", "password123"))
	f.users.AssertExpectations(t)
}

func TestAuthUsecase_EnsureAdmin_CreatesWhenMissing(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.users.On("FindByEmail", ctx, "root@example.com").Return(nil, repo.ErrNotFound).Once()
	f.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.HasRole(model.RoleAdmin) && u.HasRole(model.RoleUser)
	})).Return(nil).Once()

	require.NoError(t, f.uc.EnsureAdmin(ctx, "root@example.com", "password123"))
	f.users.AssertExpectations(t)
}
