package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/workorder-service/internal/api/http"
	"github.com/spec-kit/workorder-service/internal/api/http/handlers"
	"github.com/spec-kit/workorder-service/internal/auth"
	"github.com/spec-kit/workorder-service/internal/config"
	"github.com/spec-kit/workorder-service/internal/events"
	"github.com/spec-kit/workorder-service/internal/numbering"
	"github.com/spec-kit/workorder-service/internal/observability"
	"github.com/spec-kit/workorder-service/internal/persistence"
	"github.com/spec-kit/workorder-service/internal/repository"
	"github.com/spec-kit/workorder-service/internal/service"
	"github.com/spec-kit/workorder-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	allocator := numbering.NewAllocator(nil)
	userRepo := repository.NewUserRepository(pool)
	orderRepo := repository.NewWorkOrderRepository(pool, allocator)
	assessmentRepo := repository.NewAssessmentRepository(pool)
	refillRepo := repository.NewRefillRepository(pool)
	equipmentRepo := repository.NewEquipmentRepository(pool)

	authService := service.NewAuthService(*cfg, userRepo)
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:  orderRepo,
		Dispatcher: dispatcher,
	})
	assessmentService := service.NewAssessmentService(service.AssessmentDependencies{
		AssessmentRepo: assessmentRepo,
		OrderRepo:      orderRepo,
		OrderService:   orderService,
		Dispatcher:     dispatcher,
	})
	refillService := service.NewRefillService(service.RefillDependencies{
		RefillRepo:    refillRepo,
		EquipmentRepo: equipmentRepo,
		Dispatcher:    dispatcher,
	})
	equipmentService := service.NewEquipmentService(equipmentRepo)
	dashboardService := service.NewDashboardService(orderRepo, redis.Client, dispatcher, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Assessments:    handlers.NewAssessmentsHandler(assessmentService),
		Refills:        handlers.NewRefillsHandler(refillService),
		Equipment:      handlers.NewEquipmentHandler(equipmentService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
