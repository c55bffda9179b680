package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/logging"
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"
)

// 管理者・モデレーター向けの注文操作
type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	now    func() time.Time
}

func NewAdminOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, orders: orders, now: time.Now}
}

// 注文一覧。モデレーターは自分の商品を含む注文だけ
func (u *AdminOrderUsecase) List(ctx context.Context, actor Actor, status string) ([]model.Order, error) {
	if !actor.IsStaff() {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	f := repo.OrderListFilter{
		Scope:     ScopeFor(actor),
		WithItems: true,
	}
	if s := strings.TrimSpace(status); s != "" {
		st := model.OrderStatus(strings.ToLower(s))
		if !st.Valid() {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		f.Status = st
	}

	orders, err := u.orders.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return orders, nil
}

// UpdateStatus は終端（配達済み・キャンセル済み）以外なら後戻りも含めて更新する
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actor Actor, orderID int64, status string) (model.Order, error) {
	if !actor.IsStaff() {
		return model.Order{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if orderID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	newStatus := model.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !newStatus.Valid() {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, items, err := loadOrderForStaff(ctx, r, actor, orderID)
		if err != nil {
			return err
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			out = o
			return nil
		}
		if !o.Status.CanTransitionTo(newStatus) {
			return NewHTTPError(http.StatusBadRequest, "cannot change status of "+string(o.Status)+" order")
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.AuditLogs().Create(ctx, statusAudit(actor.UserID, model.AuditActionUpdateOrderStatus, orderID,
			"status", string(o.Status), string(newStatus), u.now())); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		logging.FromCtx(ctx).Info("order status updated", "order_id", orderID, "from", o.Status, "to", newStatus, "actor_user_id", actor.UserID)

		o.Status = newStatus
		o.Items = items
		out = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// 支払いステータスは遷移制限なし
func (u *AdminOrderUsecase) UpdatePaymentStatus(ctx context.Context, actor Actor, orderID int64, paymentStatus string) (model.Order, error) {
	if !actor.IsStaff() {
		return model.Order{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if orderID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	newStatus := model.PaymentStatus(strings.ToLower(strings.TrimSpace(paymentStatus)))
	if !newStatus.Valid() {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid paymentStatus")
	}

	var out model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, items, err := loadOrderForStaff(ctx, r, actor, orderID)
		if err != nil {
			return err
		}

		if err := r.Orders().UpdatePaymentStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.AuditLogs().Create(ctx, statusAudit(actor.UserID, model.AuditActionUpdatePaymentStatus, orderID,
			"paymentStatus", string(o.PaymentStatus), string(newStatus), u.now())); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.PaymentStatus = newStatus
		o.Items = items
		out = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

func loadOrderForStaff(ctx context.Context, r repo.TxRepos, actor Actor, orderID int64) (model.Order, []model.OrderItem, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, nil, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return model.Order{}, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := authorizeOrder(ctx, r.Products(), actor, o, items); err != nil {
		return model.Order{}, nil, err
	}
	return o, items, nil
}
