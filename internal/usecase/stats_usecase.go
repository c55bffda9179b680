package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/logging"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/metrics"
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	topProductsLimit  = 5
	recentOrdersLimit = 5
	revenueDays       = 30
	lowStockMax       = 10
)

// 集計結果のキャッシュ（Redis または何もしない実装）
type StatsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type StatsUsecase struct {
	products repo.ProductRepository
	orders   repo.OrderRepository
	users    repo.UserRepository
	cache    StatsCache
	now      func() time.Time
}

func NewStatsUsecase(
	products repo.ProductRepository,
	orders repo.OrderRepository,
	users repo.UserRepository,
	cache StatsCache,
) *StatsUsecase {
	return &StatsUsecase{
		products: products,
		orders:   orders,
		users:    users,
		cache:    cache,
		now:      time.Now,
	}
}

type RevenueStats struct {
	Total             decimal.Decimal `json:"total"`
	ThisMonth         decimal.Decimal `json:"thisMonth"`
	Today             decimal.Decimal `json:"today"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type OrderCountStats struct {
	Total            int64 `json:"total"`
	Pending          int64 `json:"pending"`
	Preparation      int64 `json:"preparation"`
	PaymentConfirmed int64 `json:"paymentConfirmed"`
	Shipped          int64 `json:"shipped"`
	Delivered        int64 `json:"delivered"`
	Cancelled        int64 `json:"cancelled"`
}

type ProductCountStats struct {
	Total      int64 `json:"total"`
	InStock    int64 `json:"inStock"`
	OutOfStock int64 `json:"outOfStock"`
	LowStock   int64 `json:"lowStock"`
}

type UserCountStats struct {
	Total      int64 `json:"total"`
	Admins     int64 `json:"admins"`
	Moderators int64 `json:"moderators"`
}

type TopProduct struct {
	Name     string          `json:"name"`
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity int64           `json:"quantity"`
}

type DailyRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

type RecentOrder struct {
	ID            int64               `json:"id"`
	OrderNumber   string              `json:"orderNumber"`
	UserID        int64               `json:"userId"`
	Total         decimal.Decimal     `json:"total"`
	Status        model.OrderStatus   `json:"status"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	CreatedAt     time.Time           `json:"createdAt"`
}

type DashboardStats struct {
	Revenue      RevenueStats      `json:"revenue"`
	Orders       OrderCountStats   `json:"orders"`
	Products     ProductCountStats `json:"products"`
	Users        UserCountStats    `json:"users"`
	TopProducts  []TopProduct      `json:"topProducts"`
	RevenueByDay []DailyRevenue    `json:"revenueByDay"`
	RecentOrders []RecentOrder     `json:"recentOrders"`
}

// GetDashboardStats は商品・注文・ユーザーを全件読み込んでメモリ上で集計する。
// 管理者でないモデレーターは自分の商品と、その商品を含む注文の自分の明細だけで集計する。
func (u *StatsUsecase) GetDashboardStats(ctx context.Context, actor Actor) (DashboardStats, error) {
	if !actor.IsStaff() {
		return DashboardStats{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	log := logging.FromCtx(ctx)
	scope := ScopeFor(actor)
	key := statsCacheKey(scope)

	if b, ok, err := u.cache.Get(ctx, key); err != nil {
		log.Warn("stats cache get failed", "key", key, "error", err)
	} else if ok {
		var cached DashboardStats
		if err := json.Unmarshal(b, &cached); err == nil {
			metrics.StatsCache.WithLabelValues("hit").Inc()
			return cached, nil
		}
	}
	metrics.StatsCache.WithLabelValues("miss").Inc()

	var (
		products []model.Product
		orders   []model.Order
		users    []model.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = u.products.ListScoped(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = u.orders.List(gctx, repo.OrderListFilter{Scope: scope, WithItems: true})
		return err
	})
	if scope.IsAll() {
		g.Go(func() error {
			var err error
			users, err = u.users.List(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("stats load failed", "error", err)
		return DashboardStats{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	stats := aggregateDashboard(products, orders, users, scope, u.now().UTC())

	if b, err := json.Marshal(stats); err == nil {
		if err := u.cache.Set(ctx, key, b); err != nil {
			log.Warn("stats cache set failed", "key", key, "error", err)
		}
	}

	return stats, nil
}

func statsCacheKey(scope repo.OwnerScope) string {
	if scope.IsAll() {
		return "dashboard:all"
	}
	return "dashboard:owner:" + strconv.FormatInt(*scope.OwnerID, 10)
}

func aggregateDashboard(products []model.Product, orders []model.Order, users []model.User, scope repo.OwnerScope, now time.Time) DashboardStats {
	stats := DashboardStats{
		Revenue: RevenueStats{
			Total:             decimal.Zero,
			ThisMonth:         decimal.Zero,
			Today:             decimal.Zero,
			AverageOrderValue: decimal.Zero,
		},
		TopProducts:  []TopProduct{},
		RevenueByDay: []DailyRevenue{},
		RecentOrders: []RecentOrder{},
	}

	// 商品
	owned := make(map[int64]bool, len(products))
	for _, p := range products {
		owned[p.ID] = true
		stats.Products.Total++
		switch {
		case p.Stock <= 0:
			stats.Products.OutOfStock++
		default:
			stats.Products.InStock++
			if p.Stock <= lowStockMax {
				stats.Products.LowStock++
			}
		}
	}

	// ユーザー（スコープ付きは0のまま）
	for _, us := range users {
		stats.Users.Total++
		if us.HasRole(model.RoleAdmin) {
			stats.Users.Admins++
		}
		if us.HasRole(model.RoleModerator) {
			stats.Users.Moderators++
		}
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	seriesFrom := startOfDay.AddDate(0, 0, -(revenueDays - 1))

	// スコープ付きは今の自分の商品を含む注文だけ（注文詳細の閲覧権と揃える）
	if !scope.IsAll() {
		visible := make([]model.Order, 0, len(orders))
		for _, o := range orders {
			if containsOwned(o.Items, owned) {
				visible = append(visible, o)
			}
		}
		orders = visible
	}

	top := map[string]*TopProduct{}
	daily := map[string]*DailyRevenue{}
	var completed int64

	for _, o := range orders {
		countStatus(&stats.Orders, o.Status)

		if !o.Status.Completed() {
			continue
		}

		// スコープ付きは自分の明細の小計だけを売上にする
		revenue := o.Total
		if !scope.IsAll() {
			revenue = decimal.Zero
		}
		for _, it := range o.Items {
			if !scope.IsAll() && !owned[it.ProductID] {
				continue
			}
			if !scope.IsAll() {
				revenue = revenue.Add(it.Subtotal)
			}
			tp, ok := top[it.ProductName]
			if !ok {
				tp = &TopProduct{Name: it.ProductName, Revenue: decimal.Zero}
				top[it.ProductName] = tp
			}
			tp.Revenue = tp.Revenue.Add(it.Subtotal)
			tp.Quantity += it.Quantity
		}

		completed++
		created := o.CreatedAt.UTC()
		stats.Revenue.Total = stats.Revenue.Total.Add(revenue)
		if !created.Before(startOfMonth) {
			stats.Revenue.ThisMonth = stats.Revenue.ThisMonth.Add(revenue)
		}
		if !created.Before(startOfDay) {
			stats.Revenue.Today = stats.Revenue.Today.Add(revenue)
		}

		if !created.Before(seriesFrom) {
			day := created.Format("2006-01-02")
			d, ok := daily[day]
			if !ok {
				d = &DailyRevenue{Date: day, Revenue: decimal.Zero}
				daily[day] = d
			}
			d.Revenue = d.Revenue.Add(revenue)
			d.Orders++
		}
	}

	if completed > 0 {
		stats.Revenue.AverageOrderValue = stats.Revenue.Total.Div(decimal.NewFromInt(completed)).Round(2)
	}

	for _, tp := range top {
		stats.TopProducts = append(stats.TopProducts, *tp)
	}
	sort.Slice(stats.TopProducts, func(i, j int) bool {
		a, b := stats.TopProducts[i], stats.TopProducts[j]
		if c := a.Revenue.Cmp(b.Revenue); c != 0 {
			return c > 0
		}
		return a.Name < b.Name
	})
	if len(stats.TopProducts) > topProductsLimit {
		stats.TopProducts = stats.TopProducts[:topProductsLimit]
	}

	for _, d := range daily {
		stats.RevenueByDay = append(stats.RevenueByDay, *d)
	}
	sort.Slice(stats.RevenueByDay, func(i, j int) bool {
		return stats.RevenueByDay[i].Date < stats.RevenueByDay[j].Date
	})

	recent := make([]model.Order, len(orders))
	copy(recent, orders)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentOrdersLimit {
		recent = recent[:recentOrdersLimit]
	}
	for _, o := range recent {
		stats.RecentOrders = append(stats.RecentOrders, RecentOrder{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			UserID:        o.UserID,
			Total:         o.Total,
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			CreatedAt:     o.CreatedAt,
		})
	}

	return stats
}

func containsOwned(items []model.OrderItem, owned map[int64]bool) bool {
	for _, it := range items {
		if owned[it.ProductID] {
			return true
		}
	}
	return false
}

func countStatus(c *OrderCountStats, s model.OrderStatus) {
	c.Total++
	switch s {
	case model.OrderStatusPending:
		c.Pending++
	case model.OrderStatusPreparation:
		c.Preparation++
	case model.OrderStatusPaymentConfirmed:
		c.PaymentConfirmed++
	case model.OrderStatusShipped:
		c.Shipped++
	case model.OrderStatusDelivered:
		c.Delivered++
	case model.OrderStatusCancelled:
		c.Cancelled++
	}
}
