package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashflow-api/internal/cache"
	"cashflow-api/internal/config"
	"cashflow-api/internal/handler"
	"cashflow-api/internal/model"
	"cashflow-api/internal/repository"
	"cashflow-api/internal/scheduler"
	"cashflow-api/internal/service"
	"cashflow-api/internal/ws"
	"cashflow-api/pkg/database"
	"cashflow-api/pkg/jwt"
	"cashflow-api/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// 1. Config & logger
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.Must(logger.New(cfg.Env, cfg.LogLevel))
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)

	// 2. Database
	db, err := database.Connect(cfg.Database.DSN(), logger.Named(log, "gorm"), cfg.LogLevel == "debug")
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	closers = append(closers, func() error { return database.Close(db) })

	if err := model.Migrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	// 3. Report cache
	reportCache := cache.ReportCache(cache.NoopReportCache{})
	if cfg.Cache.RedisAddr != "" {
		redisCache := cache.NewRedisReportCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, using noop report cache", zap.Error(err))
		} else {
			reportCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Info("report cache: redis", zap.String("addr", cfg.Cache.RedisAddr))
		}
	} else {
		log.Info("report cache: noop")
	}

	// 4. WebSocket hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := ws.NewHub(logger.Named(log, "ws"))
	go wsHub.Run(hubCtx)

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	clientRepo := repository.NewClientRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	expenseRepo := repository.NewExpenseRepo(db)

	tokens := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(userRepo, roleRepo, privilegeRepo, tokens, logger.Named(log, "auth"))
	if err := authService.Seed(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Fatal("seeding access control failed", zap.Error(err))
	}

	saleService := service.NewSaleService(db, saleRepo, productRepo, clientRepo, wsHub, reportCache, logger.Named(log, "sales"))
	productService := service.NewProductService(db, productRepo, supplierRepo, categoryRepo, wsHub, reportCache, logger.Named(log, "catalog"))
	clientService := service.NewClientService(clientRepo, saleRepo, wsHub, reportCache, logger.Named(log, "clients"))
	supplierService := service.NewSupplierService(supplierRepo, wsHub, logger.Named(log, "catalog"))
	categoryService := service.NewCategoryService(categoryRepo, wsHub, logger.Named(log, "catalog"))
	expenseService := service.NewExpenseService(expenseRepo, reportCache, logger.Named(log, "expenses"))
	reportService := service.NewReportService(saleRepo, productRepo, clientRepo, expenseRepo, reportCache, service.ReportOptions{
		Location:          cfg.Reporting.Location(),
		CacheTTL:          cfg.Cache.ReportTTL,
		LowStockThreshold: cfg.Reporting.LowStockThreshold,
	}, logger.Named(log, "reports"))

	httpLog := logger.Named(log, "http")
	handlers := handler.Handlers{
		Auth:     handler.NewAuthHandler(authService, httpLog),
		Role:     handler.NewRoleHandler(roleRepo, httpLog),
		Client:   handler.NewClientHandler(clientService, httpLog),
		Supplier: handler.NewSupplierHandler(supplierService, httpLog),
		Category: handler.NewCategoryHandler(categoryService, httpLog),
		Product:  handler.NewProductHandler(productService, httpLog),
		Sale:     handler.NewSaleHandler(saleService, httpLog),
		Expense:  handler.NewExpenseHandler(expenseService, httpLog),
		Report:   handler.NewReportHandler(reportService, httpLog),
	}

	// 6. Scheduler
	sched := scheduler.NewScheduler(cfg.Reporting, reportService, wsHub, logger.Named(log, "scheduler"))
	if err := sched.Start(); err != nil {
		log.Fatal("scheduler failed to start", zap.Error(err))
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "CashFlow API v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.Server.AllowedOrigins}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})

	handler.RegisterRoutes(app, handlers, authService)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(wsHub.Serve))

	// 8. Graceful Shutdown
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Address()))
		if err := app.Listen(cfg.Server.Address()); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(8 * time.Second); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	sched.Stop()
	stopHub()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error("close error", zap.Error(err))
		}
	}

	log.Info("server exited")
}
