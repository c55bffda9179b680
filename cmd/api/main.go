package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/config"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/handler"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/infra/cache"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/infra/db"
	infraRepo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/infra/repository"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/infra/token"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/logging"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/server"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/usecase"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/validator"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func main() {
	//設定
	cfg, err := config.Load()
	if err != nil {
		logging.Base().Error("config load failed", "error", err)
		os.Exit(1)
	}

	log := logging.Init("api", cfg.LogFile, cfg.LogLevel)

	// 金額はJSONで数値として返す
	decimal.MarshalJSONWithoutQuotes = true

	if err := run(cfg); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	log := logging.Base()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//ダッシュボードのキャッシュ（REDIS_ADDRがあるときだけ）
	var statsCache usecase.StatsCache = cache.NopStatsCache{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, stats cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			statsCache = cache.NewRedisStatsCache(rdb, cfg.StatsCacheTTL)
		}
	}

	//壊れたカート明細の掃除ワーカー
	cleaner := worker.NewCartCleaner(cartRepo, cfg.CartCleanupQueue, logging.New("cart-cleaner"))

	//Usecase生成
	issuer := token.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	authUC := usecase.NewAuthUsecase(txm, userRepo, validator.NewAuthValidator(), issuer)
	productUC := usecase.NewProductUsecase(txm, productRepo, categoryRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, productRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, cleaner)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, orderItemRepo, productRepo, userRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo)
	statsUC := usecase.NewStatsUsecase(productRepo, orderRepo, userRepo, statsCache)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	if cfg.AdminEmail != "" {
		if err := authUC.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	//Handler生成
	e := server.New(cfg, log)
	server.RegisterRoutes(e, cfg, userRepo, server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		AdminUser:    handler.NewAdminUserHandler(authUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Category:     handler.NewCategoryHandler(categoryUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC, adminOrderUC),
		Stats:        handler.NewStatsHandler(statsUC),
		AuditLog:     handler.NewAuditLogHandler(auditUC),
	})

	//Server起動。サーバーが止まりきってからワーカーを止める
	cleaner.Start(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cleaner.Stop()
		return server.Run(gctx, e, ":"+cfg.Port, log)
	})
	return g.Wait()
}
