package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/middleware"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 使うメソッドだけ実装（他を呼ぶとnil interfaceでpanic）
type productRepoStub struct {
	repository.ProductRepository
	byID map[int64]model.Product
}

func (s *productRepoStub) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *productRepoStub) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type cartRepoStub struct {
	repository.CartItemRepository
	lines []model.CartItem
}

func (s *cartRepoStub) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	return s.lines, nil
}

func (s *cartRepoStub) Upsert(ctx context.Context, userID, productID, addQty int64) error {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity += addQty
			return nil
		}
	}
	s.lines = append(s.lines, model.CartItem{ID: int64(len(s.lines) + 1), UserID: userID, ProductID: productID, Quantity: addQty})
	return nil
}

type noopCleaner struct{}

func (noopCleaner) Schedule(ids ...int64) {}

func newCartHandlerForTest() (*CartHandler, *cartRepoStub) {
	products := &productRepoStub{byID: map[int64]model.Product{
		1: {ID: 1, Name: "Lamp", Price: decimal.NewFromInt(20), Stock: 3},
	}}
	cart := &cartRepoStub{}
	return NewCartHandler(usecase.NewCartUsecase(cart, products, noopCleaner{})), cart
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withActor(c echo.Context, id int64, roles ...model.Role) {
	c.Set(middleware.CtxUserIDKey, id)
	c.Set(middleware.CtxUserRolesKey, roles)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestWriteError_HTTPError(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/", "")

	require.NoError(t, writeError(c, usecase.NewHTTPError(http.StatusNotFound, "order not found")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order not found", decodeError(t, rec))
}

func TestWriteError_Unexpected(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/", "")

	require.NoError(t, writeError(c, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decodeError(t, rec))
}

func TestCartHandler_GetCart_Unauthorized(t *testing.T) {
	h, _ := newCartHandlerForTest()
	c, rec := newContext(http.MethodGet, "/cart", "")

	require.NoError(t, h.getCart(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartHandler_AddToCart_ThenTotals(t *testing.T) {
	h, cart := newCartHandlerForTest()
	c, rec := newContext(http.MethodPost, "/cart", `{"productId":1,"quantity":2}`)
	withActor(c, 7, model.RoleUser)

	require.NoError(t, h.addToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var out usecase.CartOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(2), out.ItemCount)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(40)))
	assert.Len(t, cart.lines, 1)
}

func TestCartHandler_AddToCart_InsufficientStock(t *testing.T) {
	h, cart := newCartHandlerForTest()
	c, rec := newContext(http.MethodPost, "/cart", `{"productId":1,"quantity":4}`)
	withActor(c, 7, model.RoleUser)

	require.NoError(t, h.addToCart(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "insufficient stock", decodeError(t, rec))
	assert.Empty(t, cart.lines)
}

func TestCartHandler_UpdateQuantity_InvalidParam(t *testing.T) {
	h, _ := newCartHandlerForTest()
	c, rec := newContext(http.MethodPut, "/cart/abc", `{"quantity":1}`)
	c.SetParamNames("productId")
	c.SetParamValues("abc")
	withActor(c, 7, model.RoleUser)

	require.NoError(t, h.updateQuantity(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid productId", decodeError(t, rec))
}

func TestCartHandler_UpdateQuantity_MissingQuantity(t *testing.T) {
	h, _ := newCartHandlerForTest()
	c, rec := newContext(http.MethodPut, "/cart/1", `{}`)
	c.SetParamNames("productId")
	c.SetParamValues("1")
	withActor(c, 7, model.RoleUser)

	require.NoError(t, h.updateQuantity(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "quantity is required", decodeError(t, rec))
}

func TestOrderHandler_GetOrder_InvalidID(t *testing.T) {
	h := NewOrderHandler(nil, nil)
	c, rec := newContext(http.MethodGet, "/orders/0", "")
	c.SetParamNames("id")
	c.SetParamValues("0")
	withActor(c, 7, model.RoleUser)

	require.NoError(t, h.getOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", decodeError(t, rec))
}

func TestOrderHandler_CreateOrder_MissingAddress(t *testing.T) {
	h := NewOrderHandler(nil, nil)
	c, rec := newContext(http.MethodPost, "/orders", `{}`)
	withActor(c, 7, model.RoleUser)

	require.NoError(t, h.createOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "shippingAddress is required", decodeError(t, rec))
}

type auditRepoStub struct {
	repository.AuditLogRepository
	got repository.AuditLogFilter
}

func (s *auditRepoStub) List(ctx context.Context, f repository.AuditLogFilter) ([]model.AuditLog, error) {
	s.got = f
	return []model.AuditLog{}, nil
}

func TestAuditLogHandler_List_Filters(t *testing.T) {
	audits := &auditRepoStub{}
	h := NewAuditLogHandler(usecase.NewAuditLogUsecase(audits))

	c, rec := newContext(http.MethodGet, "/admin/audit-logs?action=update_stock&resourceType=Product&resourceId=4", "")
	withActor(c, 1, model.RoleAdmin)

	require.NoError(t, h.list(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, audits.got.Action)
	assert.Equal(t, model.AuditActionUpdateStock, *audits.got.Action)
	require.NotNil(t, audits.got.ResourceType)
	assert.Equal(t, model.AuditResourceProduct, *audits.got.ResourceType)
	require.NotNil(t, audits.got.ResourceID)
	assert.Equal(t, int64(4), *audits.got.ResourceID)
}

func TestAuditLogHandler_List_UnknownAction(t *testing.T) {
	h := NewAuditLogHandler(usecase.NewAuditLogUsecase(&auditRepoStub{}))

	c, rec := newContext(http.MethodGet, "/admin/audit-logs?action=DROP_TABLE", "")
	withActor(c, 1, model.RoleAdmin)

	require.NoError(t, h.list(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid action", decodeError(t, rec))
}
