package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/logging"
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"

	"github.com/shopspring/decimal"
)

// 壊れた明細の削除をバックグラウンドに依頼する
type CartCleanupScheduler interface {
	Schedule(cartItemIDs ...int64)
}

// CartUsecase は /cart の業務ロジック。
type CartUsecase struct {
	cartItems repo.CartItemRepository
	products  repo.ProductRepository
	cleaner   CartCleanupScheduler
}

func NewCartUsecase(
	cartItems repo.CartItemRepository,
	products repo.ProductRepository,
	cleaner CartCleanupScheduler,
) *CartUsecase {
	return &CartUsecase{
		cartItems: cartItems,
		products:  products,
		cleaner:   cleaner,
	}
}

// 価格・在庫は商品の現在値
type CartLineOutput struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Stock     int64           `json:"stock"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	AddedAt   time.Time       `json:"addedAt"`
}

type CartOutput struct {
	Items     []CartLineOutput `json:"items"`
	Total     decimal.Decimal  `json:"total"`
	ItemCount int64            `json:"itemCount"`
}

// Quantityが無ければ1
type AddCartInput struct {
	ProductID int64
	Quantity  *int64
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCart(ctx, userID)
}

// AddToCart はカートに追加（同一商品は数量加算）。
// 在庫チェックは今回追加する数量だけを見る。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid productId")
	}
	qty := int64(1)
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 1 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
	}

	p, err := u.products.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.Stock < qty {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "insufficient stock")
	}

	if err := u.cartItems.Upsert(ctx, userID, in.ProductID, qty); err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCart(ctx, userID)
}

// quantity=0は削除
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid productId")
	}
	if qty < 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}

	if qty == 0 {
		return u.RemoveItem(ctx, userID, productID)
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.Stock < qty {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "insufficient stock")
	}

	err = u.cartItems.UpdateQuantity(ctx, userID, productID, qty)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "item not in cart")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCart(ctx, userID)
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid productId")
	}

	err := u.cartItems.DeleteByUserAndProduct(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "item not in cart")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCart(ctx, userID)
}

// 空でもエラーにしない
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.cartItems.DeleteByUserID(ctx, userID); err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return emptyCart(), nil
}

// 明細と商品の現在値を合わせてレスポンスを作る。
// 商品が消えている・数量や価格がおかしい明細は返さず、削除をワーカーに回す。
func (u *CartUsecase) buildCart(ctx context.Context, userID int64) (CartOutput, error) {
	lines, err := u.cartItems.ListByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(lines) == 0 {
		return emptyCart(), nil
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := emptyCart()
	var orphans []int64
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok || l.Quantity <= 0 || p.Price.IsNegative() {
			orphans = append(orphans, l.ID)
			continue
		}

		subtotal := p.Price.Mul(decimal.NewFromInt(l.Quantity))
		out.Items = append(out.Items, CartLineOutput{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     firstImage(p.Images),
			Stock:     p.Stock,
			Quantity:  l.Quantity,
			Subtotal:  subtotal,
			AddedAt:   l.CreatedAt,
		})
		out.Total = out.Total.Add(subtotal)
		out.ItemCount += l.Quantity
	}

	if len(orphans) > 0 {
		logging.FromCtx(ctx).Warn("orphan cart lines excluded", "user_id", userID, "count", len(orphans))
		u.cleaner.Schedule(orphans...)
	}

	return out, nil
}

func emptyCart() CartOutput {
	return CartOutput{
		Items: []CartLineOutput{},
		Total: decimal.Zero,
	}
}

func firstImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[0]
}
