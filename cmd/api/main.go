package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go-pos-ws/internal/handler"
	"go-pos-ws/internal/metrics"
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/config"
	"go-pos-ws/pkg/database"
	"go-pos-ws/pkg/jwt"
	"go-pos-ws/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// 1. Config and logging
	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatal(err)
	}
	zlog, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync() //nolint:errcheck

	decimal.MarshalJSONWithoutQuotes = true
	loc := cfg.Location()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg)
	if err != nil {
		zlog.Fatal("database unavailable", zap.Error(err))
	}
	if err := repository.AutoMigrate(db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run()
	defer wsHub.Stop()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	financeRepo := repository.NewFinanceRepo(db)
	reconRepo := repository.NewReconciliationRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	adjuster := service.NewStockAdjuster(productRepo, zlog.Named("stock"), m)
	reconService := service.NewReconciliationService(reconRepo, zlog.Named("reconcile"), m)
	productService := service.NewProductService(productRepo, zlog.Named("product"))
	saleService := service.NewSaleService(productRepo, saleRepo, adjuster, reconService, wsHub, zlog.Named("sale"), m)
	stockService := service.NewStockService(productRepo, movementRepo, adjuster, reconService, wsHub, zlog.Named("stock"), m)
	financeService := service.NewFinanceService(financeRepo)
	reportService := service.NewReportService(productRepo, saleRepo, userRepo, loc)
	authService := service.NewAuthService(userRepo, tokens, cfg.TokenTTL, zlog.Named("auth"))
	userService := service.NewUserService(userRepo, zlog.Named("user"))

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := userService.SeedAdmin(seedCtx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		zlog.Warn("failed to seed admin user", zap.Error(err))
	}
	cancel()

	httpLog := zlog.Named("http")
	handlers := &handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, httpLog),
		Product:   handler.NewProductHandler(productService, httpLog),
		Sale:      handler.NewSaleHandler(saleService, loc, httpLog),
		Stock:     handler.NewStockHandler(stockService, reconService, httpLog),
		Finance:   handler.NewFinanceHandler(financeService, loc, httpLog),
		Dashboard: handler.NewDashboardHandler(reportService, loc, httpLog),
		User:      handler.NewUserHandler(userService, httpLog),
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	app.Use(logger.Middleware(httpLog))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.Clients()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 7. Routes
	handlers.Mount(app.Group("/api/v1"), middleware.RequireAuth(tokens, userRepo))

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Fatal("listen failed", zap.Error(err))
		}
	}()
	zlog.Info("server started", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("forced shutdown", zap.Error(err))
	}
	zlog.Info("server exited")
}
