package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/it-tracker/internal/api/http"
	"github.com/spec-kit/it-tracker/internal/api/http/handlers"
	"github.com/spec-kit/it-tracker/internal/auth"
	"github.com/spec-kit/it-tracker/internal/config"
	"github.com/spec-kit/it-tracker/internal/events"
	"github.com/spec-kit/it-tracker/internal/notify"
	"github.com/spec-kit/it-tracker/internal/observability"
	"github.com/spec-kit/it-tracker/internal/persistence"
	"github.com/spec-kit/it-tracker/internal/repository"
	"github.com/spec-kit/it-tracker/internal/service"
	"github.com/spec-kit/it-tracker/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	cache := service.NewUnreadCache(redis)
	mail := notify.NewEmailTransport(cfg.SMTP, logger)

	dispatchService := service.NewDispatchService(service.DispatchDependencies{
		Resolver:         notify.NewResolver(userRepo),
		NotificationRepo: notificationRepo,
		Users:            userRepo,
		Mail:             mail,
		Cache:            cache,
		Logger:           logger,
		ClientURL:        cfg.App.ClientURL,
	})
	worker.StartNotificationWorker(dispatchService, dispatcher)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		Dispatcher:  dispatcher,
	})
	notificationService := service.NewNotificationService(notificationRepo, cache)
	userService := service.NewUserService(userRepo, ticketRepo)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Users:          handlers.NewUsersHandler(userService),
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
