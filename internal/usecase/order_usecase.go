package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/logging"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/metrics"
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"

	"github.com/shopspring/decimal"
)

// 注文番号の衝突時に作り直す回数
const orderNumberAttempts = 5

type OrderUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	products   repo.ProductRepository
	users      repo.UserRepository

	now            func() time.Time
	newOrderNumber func(time.Time) (string, error)
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	products repo.ProductRepository,
	users repo.UserRepository,
) *OrderUsecase {
	return &OrderUsecase{
		tx:             tx,
		orders:         orders,
		orderItems:     orderItems,
		products:       products,
		users:          users,
		now:            time.Now,
		newOrderNumber: NewOrderNumber,
	}
}

type CreateOrderInput struct {
	ShippingAddress model.ShippingAddress
}

type OrderUserOutput struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// 注文＋注文者
type OrderOutput struct {
	model.Order
	User *OrderUserOutput `json:"user,omitempty"`
}

// CreateOrder はカートから注文を作る。
// 在庫の減算・注文作成・カート削除は1トランザクションで、途中で失敗すれば全部戻る。
func (u *OrderUsecase) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	addr := in.ShippingAddress.Normalize()
	if !addr.Complete() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "shippingAddress requires street, city, postalCode and country")
	}

	log := logging.FromCtx(ctx)
	reason := "error"
	var created model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 1. カート取得
		lines, err := r.CartItems().ListByUserID(ctx, actor.UserID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(lines) == 0 {
			reason = "cart_empty"
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		// 2. 全行を先に検証
		products := make([]model.Product, 0, len(lines))
		for _, l := range lines {
			p, err := r.Products().FindByID(ctx, l.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				reason = "product_not_found"
				return NewHTTPError(http.StatusNotFound, fmt.Sprintf("product not found: %d", l.ProductID))
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if p.Stock < l.Quantity {
				reason = "insufficient_stock"
				return NewHTTPError(http.StatusBadRequest, insufficientStockMessage(p.Name, l.Quantity, p.Stock))
			}
			products = append(products, p)
		}

		// 3. 条件付きUPDATEで在庫を減らす（同時注文で負にならない）
		items := make([]model.OrderItem, 0, len(lines))
		total := decimal.Zero
		for i, l := range lines {
			p := products[i]
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, l.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				reason = "insufficient_stock"
				return NewHTTPError(http.StatusBadRequest, insufficientStockMessage(p.Name, l.Quantity, p.Stock))
			}

			// 4. スナップショット
			subtotal := p.Price.Mul(decimal.NewFromInt(l.Quantity))
			items = append(items, model.OrderItem{
				ProductID:    p.ID,
				ProductName:  p.Name,
				ProductPrice: p.Price,
				Quantity:     l.Quantity,
				Subtotal:     subtotal,
			})
			total = total.Add(subtotal)
		}

		now := u.now()
		number, err := u.uniqueOrderNumber(ctx, r.Orders(), now)
		if err != nil {
			return err
		}

		// 5. 注文保存
		order := model.Order{
			OrderNumber:     number,
			UserID:          actor.UserID,
			Total:           total,
			Status:          model.OrderStatusPending,
			PaymentStatus:   model.PaymentStatusPending,
			ShippingAddress: addr,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrConflict) {
			return NewHTTPError(http.StatusConflict, "order number conflict")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 6. カートを空にする
		if err := r.CartItems().DeleteByUserID(ctx, actor.UserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		for i := range items {
			items[i].OrderID = orderID
		}
		order.Items = items
		created = order
		return nil
	})
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues(reason).Inc()
		log.Info("checkout failed", "user_id", actor.UserID, "reason", reason, "error", err)
		return OrderOutput{}, err
	}

	metrics.OrdersCreated.Inc()
	log.Info("order created", "order_id", created.ID, "order_number", created.OrderNumber, "user_id", actor.UserID, "total", created.Total.String())

	// 7. 注文者を付けて返す
	return u.withUser(ctx, created), nil
}

// 自分の注文（新しい順）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, actor Actor) ([]model.Order, error) {
	if actor.UserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orders, err := u.orders.ListByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return orders, nil
}

// GetOrder は注文者本人・管理者・注文に自分の商品が含まれるモデレーターだけが見られる
func (u *OrderUsecase) GetOrder(ctx context.Context, actor Actor, orderID int64) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := authorizeOrder(ctx, u.products, actor, o, items); err != nil {
		return OrderOutput{}, err
	}

	o.Items = items
	return u.withUser(ctx, o), nil
}

// CancelOrder は在庫戻しとステータス更新を1トランザクションで行う。
// 発送済み・配達済み・キャンセル済みは不可。
func (u *OrderUsecase) CancelOrder(ctx context.Context, actor Actor, orderID int64) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	log := logging.FromCtx(ctx)
	var cancelled model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := authorizeOrder(ctx, r.Products(), actor, o, items); err != nil {
			return err
		}

		if !o.Status.Cancellable() {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("cannot cancel order in status %s", o.Status))
		}

		// 在庫戻し。注文後に削除された商品は飛ばす
		for _, it := range items {
			err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity)
			if errors.Is(err, repo.ErrNotFound) {
				log.Warn("restock skipped: product no longer exists", "order_id", orderID, "product_id", it.ProductID, "quantity", it.Quantity)
				continue
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCancelled); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 本人以外（スタッフ）のキャンセルは監査ログに残す
		if actor.UserID != o.UserID {
			if err := r.AuditLogs().Create(ctx, statusAudit(actor.UserID, model.AuditActionCancelOrder, orderID,
				"status", string(o.Status), string(model.OrderStatusCancelled), u.now())); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		o.Status = model.OrderStatusCancelled
		o.Items = items
		cancelled = o
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	metrics.OrdersCancelled.Inc()
	log.Info("order cancelled", "order_id", orderID, "actor_user_id", actor.UserID)

	return u.withUser(ctx, cancelled), nil
}

func (u *OrderUsecase) uniqueOrderNumber(ctx context.Context, orders repo.OrderRepository, now time.Time) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		number, err := u.newOrderNumber(now)
		if err != nil {
			return "", NewHTTPError(http.StatusInternalServerError, "order number generation failed")
		}
		exists, err := orders.ExistsByOrderNumber(ctx, number)
		if err != nil {
			return "", NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !exists {
			return number, nil
		}
	}
	return "", NewHTTPError(http.StatusConflict, "order number conflict")
}

// 注文者の取得に失敗しても注文自体は返す
func (u *OrderUsecase) withUser(ctx context.Context, o model.Order) OrderOutput {
	out := OrderOutput{Order: o}
	user, err := u.users.FindByID(ctx, o.UserID)
	if err != nil || user == nil {
		logging.FromCtx(ctx).Warn("order user lookup failed", "order_id", o.ID, "user_id", o.UserID, "error", err)
		return out
	}
	out.User = &OrderUserOutput{ID: user.ID, Email: user.Email}
	return out
}

// 注文へのアクセス権（本人・管理者・自分の商品が含まれるモデレーター）
func authorizeOrder(ctx context.Context, products repo.ProductRepository, actor Actor, o model.Order, items []model.OrderItem) error {
	if o.UserID == actor.UserID || actor.IsAdmin() {
		return nil
	}
	if !actor.Has(model.RoleModerator) {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	ps, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for _, p := range ps {
		if p.OwnedBy(actor.UserID) {
			return nil
		}
	}
	return NewHTTPError(http.StatusForbidden, "forbidden")
}

func insufficientStockMessage(name string, requested, available int64) string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", name, requested, available)
}

// {"<field>":"before"} → {"<field>":"after"} の監査ログ
func statusAudit(actorID int64, action model.AuditAction, orderID int64, field, before, after string, at time.Time) model.AuditLog {
	b, _ := json.Marshal(map[string]string{field: before})
	a, _ := json.Marshal(map[string]string{field: after})
	return model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   string(b),
		AfterJSON:    string(a),
		CreatedAt:    at,
	}
}
