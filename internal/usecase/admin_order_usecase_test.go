package usecase_test

import (
	"context"
	"testing"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type adminOrderFixture struct {
	uc         *usecase.AdminOrderUsecase
	tx         *TxManagerMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	products   *ProductRepoMock
	audits     *AuditRepoMock
}

func newAdminOrderFixture() adminOrderFixture {
	f := adminOrderFixture{
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		products:   new(ProductRepoMock),
		audits:     new(AuditRepoMock),
	}
	f.tx = &TxManagerMock{Repos: &TxReposMock{
		orders:     f.orders,
		orderItems: f.orderItems,
		products:   f.products,
		audits:     f.audits,
	}}
	f.uc = usecase.NewAdminOrderUsecase(f.tx, f.orders)
	return f
}

func adminActor() usecase.Actor {
	return usecase.Actor{UserID: 100, Roles: []model.Role{model.RoleUser, model.RoleAdmin}}
}

func moderatorActor(id int64) usecase.Actor {
	return usecase.Actor{UserID: id, Roles: []model.Role{model.RoleUser, model.RoleModerator}}
}

func TestAdminOrderUsecase_List_Forbidden(t *testing.T) {
	f := newAdminOrderFixture()

	_, err := f.uc.List(context.Background(), buyer(), "")
	assertErrContains(t, err, "forbidden")
}

func TestAdminOrderUsecase_List_InvalidStatus(t *testing.T) {
	f := newAdminOrderFixture()

	_, err := f.uc.List(context.Background(), adminActor(), "lost")
	assertErrContains(t, err, "invalid status")
}

func TestAdminOrderUsecase_List_ModeratorScoped(t *testing.T) {
	f := newAdminOrderFixture()
	ctx := context.Background()

	f.orders.On("List", ctx, mock.MatchedBy(func(fl repo.OrderListFilter) bool {
		return !fl.Scope.IsAll() && *fl.Scope.OwnerID == 9 && fl.Status == model.OrderStatusShipped && fl.WithItems
	})).Return([]model.Order{{ID: 1}}, nil).Once()

	out, err := f.uc.List(ctx, moderatorActor(9), "SHIPPED")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestAdminOrderUsecase_List_AdminSeesAll(t *testing.T) {
	f := newAdminOrderFixture()
	ctx := context.Background()

	f.orders.On("List", ctx, mock.MatchedBy(func(fl repo.OrderListFilter) bool {
		return fl.Scope.IsAll() && fl.Status == ""
	})).Return([]model.Order{{ID: 1}, {ID: 2}}, nil).Once()

	out, err := f.uc.List(ctx, adminActor(), "")
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestAdminOrderUsecase_UpdateStatus_InvalidStatus(t *testing.T) {
	f := newAdminOrderFixture()

	_, err := f.uc.UpdateStatus(context.Background(), adminActor(), 1, "teleported")
	assertErrContains(t, err, "invalid status")
}

func TestAdminOrderUsecase_UpdateStatus_NotFound(t *testing.T) {
	f := newAdminOrderFixture()
	ctx := context.Background()

	f.tx.On("WithinTx", ctx).Return(nil).Once()
	f.orders.On("FindByID", ctx, int64(1)).Return(model.Order{}, repo.ErrNotFound).Once()

	_, err := f.uc.UpdateStatus(ctx, adminActor(), 1, "shipped")
	assertErrContains(t, err, "order not found")
}

func TestAdminOrderUsecase_UpdateStatus_SameStatus_NoOp(t *testing.T) {
	f := newAdminOrderFixture()
	ctx := context.Background()

	f.tx.On("WithinTx", ctx).Return(nil).Once()
	f.orders.On("FindByID", ctx, int64(1)).Return(model.Order{ID: 1, Status: model.OrderStatusDelivered}, nil).Once()
	f.orderItems.On("ListByOrderID", ctx, int64(1)).Return([]model.OrderItem{}, nil).Once()

	out, err := f.uc.UpdateStatus(ctx, adminActor(), 1, "delivered")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, out.Status)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_TerminalRejected(t *testing.T) {
	for _, from := range []model.OrderStatus{model.OrderStatusDelivered, model.OrderStatusCancelled} {
		t.Run(string(from), func(t *testing.T) {
			f := newAdminOrderFixture()
			ctx := context.Background()

			f.tx.On("WithinTx", ctx).Return(nil).Once()
			f.orders.On("FindByID", ctx, int64(1)).Return(model.Order{ID: 1, Status: from}, nil).Once()
			f.orderItems.On("ListByOrderID", ctx, int64(1)).Return([]model.OrderItem{}, nil).Once()

			_, err := f.uc.UpdateStatus(ctx, adminActor(), 1, "pending")
			he, ok := usecase.AsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, 400, he.Status)
			f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			f.audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

// 発送済みから準備中へ戻すのは許可
func TestAdminOrderUsecase_UpdateStatus_BackwardMove_Audits(t *testing.T) {
	f := newAdminOrderFixture()
	ctx := context.Background()

	f.tx.On("WithinTx", ctx).Return(nil).Once()
	f.orders.On("FindByID", ctx, int64(1)).Return(model.Order{ID: 1, Status: model.OrderStatusShipped}, nil).Once()
	f.orderItems.On("ListByOrderID", ctx, int64(1)).Return([]model.OrderItem{{ProductID: 3, Quantity: 1}}, nil).Once()
	f.orders.On("UpdateStatus", ctx, int64(1), model.OrderStatusPreparation).Return(nil).Once()
	f.audits.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 100 &&
			l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceType == model.AuditResourceOrder &&
			l.BeforeJSON == `{"status":"shipped"}` &&
			l.AfterJSON == `{"status":"preparation"}`
	})).Return(nil).Once()

	out, err := f.uc.UpdateStatus(ctx, adminActor(), 1, "preparation")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPreparation, out.Status)
	assert.Len(t, out.Items, 1)
	f.audits.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_ModeratorWithoutOwnedProduct(t *testing.T) {
	f := newAdminOrderFixture()
	ctx := context.Background()

	f.tx.On("WithinTx", ctx).Return(nil).Once()
	f.orders.On("FindByID", ctx, int64(1)).Return(model.Order{ID: 1, UserID: 2, Status: model.OrderStatusPending}, nil).Once()
	f.orderItems.On("ListByOrderID", ctx, int64(1)).Return([]model.OrderItem{{ProductID: 3}}, nil).Once()
	f.products.On("FindByIDs", ctx, []int64{3}).Return([]model.Product{{ID: 3}}, nil).Once()

	_, err := f.uc.UpdateStatus(ctx, moderatorActor(9), 1, "shipped")
	assertErrContains(t, err, "forbidden")
}

func TestAdminOrderUsecase_UpdateStatus_DBError_OnUpdate(t *testing.T) {
	f := newAdminOrderFixture()
	ctx := context.Background()

	f.tx.On("WithinTx", ctx).Return(nil).Once()
	f.orders.On("FindByID", ctx, int64(1)).Return(model.Order{ID: 1, Status: model.OrderStatusPending}, nil).Once()
	f.orderItems.On("ListByOrderID", ctx, int64(1)).Return([]model.OrderItem{}, nil).Once()
	f.orders.On("UpdateStatus", ctx, int64(1), model.OrderStatusShipped).Return(assert.AnError).Once()

	_, err := f.uc.UpdateStatus(ctx, adminActor(), 1, "shipped")
	assertErrContains(t, err, "db error")
}

func TestAdminOrderUsecase_UpdatePaymentStatus_Success(t *testing.T) {
	f := newAdminOrderFixture()
	ctx := context.Background()

	f.tx.On("WithinTx", ctx).Return(nil).Once()
	f.orders.On("FindByID", ctx, int64(1)).Return(model.Order{ID: 1, PaymentStatus: model.PaymentStatusPending}, nil).Once()
	f.orderItems.On("ListByOrderID", ctx, int64(1)).Return([]model.OrderItem{}, nil).Once()
	f.orders.On("UpdatePaymentStatus", ctx, int64(1), model.PaymentStatusPaid).Return(nil).Once()
	f.audits.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdatePaymentStatus && l.AfterJSON == `{"paymentStatus":"paid"}`
	})).Return(nil).Once()

	out, err := f.uc.UpdatePaymentStatus(ctx, adminActor(), 1, "paid")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, out.PaymentStatus)
}

func TestAdminOrderUsecase_UpdatePaymentStatus_Invalid(t *testing.T) {
	f := newAdminOrderFixture()

	_, err := f.uc.UpdatePaymentStatus(context.Background(), adminActor(), 1, "maybe")
	assertErrContains(t, err, "invalid paymentStatus")
}
