package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civicdesk/complaint-service/internal/api/http"
	"github.com/civicdesk/complaint-service/internal/api/http/handlers"
	"github.com/civicdesk/complaint-service/internal/auth"
	"github.com/civicdesk/complaint-service/internal/config"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/internal/persistence"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/internal/routing"
	"github.com/civicdesk/complaint-service/internal/service"
	"github.com/civicdesk/complaint-service/internal/storage"
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

	uploads, err := storage.NewUploadStore(cfg.Uploads)
	if err != nil {
		logger.Fatal("failed to init upload store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	complaintRepo := repository.NewComplaintRepository(pool)
	updateRepo := repository.NewStatusUpdateRepository(pool)
	txManager := repository.NewTxManager(pool)

	table := routing.DefaultTable()
	if len(cfg.Routing.Map) > 0 {
		table = routing.NewTable(cfg.Routing.Map, cfg.Routing.DefaultDepartment)
	}
	dispatcher := events.NewInMemoryDispatcher()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	assigner := service.NewAssignmentService(service.AssignmentDependencies{
		Table:         table,
		UserRepo:      userRepo,
		ComplaintRepo: complaintRepo,
	})
	authService := service.NewAuthService(userRepo, tokens, cfg.Auth.BcryptCost)
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo:    complaintRepo,
		StatusUpdateRepo: updateRepo,
		TxManager:        txManager,
		Assigner:         assigner,
		Uploads:          uploads,
		Dispatcher:       dispatcher,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		UserRepo:        userRepo,
		ComplaintRepo:   complaintRepo,
		Auth:            authService,
		Cache:           redis.Client,
		CacheTTLSeconds: cfg.Stats.CacheTTLSeconds,
		TrendWindowDays: cfg.Stats.TrendWindowDays,
		Logger:          logger,
	})
	reportService := service.NewReportService(complaintRepo, updateRepo, userRepo)

	notifications := service.NewNotificationService(logger, cfg.Notification)
	notifications.Register(dispatcher)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Uploads.MaxBytes) + 1024*1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, time.Duration(cfg.App.RequestTimeoutSeconds)*time.Second)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(complaintService, uploads),
		Admin:          handlers.NewAdminHandler(complaintService, adminService, reportService),
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
