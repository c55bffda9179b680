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

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	tx         repo.TransactionManager
	products   repo.ProductRepository
	categories repo.CategoryRepository
	now        func() time.Time
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	products repo.ProductRepository,
	categories repo.CategoryRepository,
) *ProductUsecase {
	return &ProductUsecase{
		tx:         tx,
		products:   products,
		categories: categories,
		now:        time.Now,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// 作成・更新の入力
type ProductInput struct {
	Name           string
	Description    string
	Price          decimal.Decimal
	Images         []string
	Specifications []model.Specification
	CategoryID     int64
	Stock          int64
}

type UpdateStockInput struct {
	Stock  int64
	Reason string
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "minPrice must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "maxPrice must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "minPrice must be <= maxPrice")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.products.ListPublic(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Sort:       in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// 管理画面用。モデレーターは自分の商品だけ
func (u *ProductUsecase) ListAdminProducts(ctx context.Context, actor Actor) ([]model.Product, error) {
	if !actor.IsStaff() {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	items, err := u.products.ListScoped(ctx, ScopeFor(actor))
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// モデレーターが作った商品はそのモデレーターの所有になる
func (u *ProductUsecase) CreateProduct(ctx context.Context, actor Actor, in ProductInput) (model.Product, error) {
	if !actor.IsStaff() {
		return model.Product{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	in, err := u.validateProductInput(ctx, in)
	if err != nil {
		return model.Product{}, err
	}

	p := model.Product{
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		Images:         in.Images,
		Specifications: in.Specifications,
		CategoryID:     in.CategoryID,
		Stock:          in.Stock,
	}
	if actor.Scoped() {
		owner := actor.UserID
		p.OwnerID = &owner
	}

	created, err := u.products.Create(ctx, p)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	logging.FromCtx(ctx).Info("product created", "product_id", created.ID, "actor_user_id", actor.UserID)
	return created, nil
}

// 在庫は UpdateStock で変える（ここでは触らない）
func (u *ProductUsecase) UpdateProduct(ctx context.Context, actor Actor, productID int64, in ProductInput) (model.Product, error) {
	current, err := u.findForStaff(ctx, u.products, actor, productID)
	if err != nil {
		return model.Product{}, err
	}
	in.Stock = current.Stock
	in, err = u.validateProductInput(ctx, in)
	if err != nil {
		return model.Product{}, err
	}

	current.Name = in.Name
	current.Description = in.Description
	current.Price = in.Price
	current.Images = in.Images
	current.Specifications = in.Specifications
	current.CategoryID = in.CategoryID

	if err := u.products.Update(ctx, current); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return current, nil
}

// 論理削除（過去の注文明細はスナップショットなので影響しない）
func (u *ProductUsecase) DeleteProduct(ctx context.Context, actor Actor, productID int64) error {
	if _, err := u.findForStaff(ctx, u.products, actor, productID); err != nil {
		return err
	}
	if err := u.products.SoftDelete(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	logging.FromCtx(ctx).Info("product deleted", "product_id", productID, "actor_user_id", actor.UserID)
	return nil
}

// 在庫の直接設定。調整履歴と監査ログを同じトランザクションで残す
func (u *ProductUsecase) UpdateStock(ctx context.Context, actor Actor, productID int64, in UpdateStockInput) (model.Product, error) {
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	reason := strings.TrimSpace(in.Reason)
	if len(reason) > 255 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "reason too long")
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := u.findForStaff(ctx, r.Products(), actor, productID)
		if err != nil {
			return err
		}

		if err := r.Inventory().SetStock(ctx, productID, in.Stock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := u.now()
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			ActorUserID: actor.UserID,
			Delta:       in.Stock - p.Stock,
			Reason:      reason,
			CreatedAt:   now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		before, _ := json.Marshal(map[string]int64{"stock": p.Stock})
		after, _ := json.Marshal(map[string]int64{"stock": in.Stock})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		p.Stock = in.Stock
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return out, nil
}

// スタッフが触れる商品か（モデレーターは自分の商品だけ）
func (u *ProductUsecase) findForStaff(ctx context.Context, products repo.ProductRepository, actor Actor, productID int64) (model.Product, error) {
	if !actor.IsStaff() {
		return model.Product{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if actor.Scoped() && !p.OwnedBy(actor.UserID) {
		return model.Product{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return p, nil
}

func (u *ProductUsecase) validateProductInput(ctx context.Context, in ProductInput) (ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" || len(in.Name) > 255 {
		return in, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if in.Price.IsNegative() {
		return in, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return in, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if in.CategoryID <= 0 {
		return in, NewHTTPError(http.StatusBadRequest, "invalid categoryId")
	}

	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if s := strings.TrimSpace(img); s != "" {
			images = append(images, s)
		}
	}
	in.Images = images

	specs := make([]model.Specification, 0, len(in.Specifications))
	for _, s := range in.Specifications {
		k := strings.TrimSpace(s.Key)
		if k == "" {
			return in, NewHTTPError(http.StatusBadRequest, "specification key required")
		}
		specs = append(specs, model.Specification{Key: k, Value: strings.TrimSpace(s.Value)})
	}
	in.Specifications = specs

	if _, err := u.categories.FindByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return in, NewHTTPError(http.StatusBadRequest, "category not found")
		}
		return in, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return in, nil
}
