package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/cart"
	"shopazon/internal/config"
	"shopazon/internal/handlers"
	"shopazon/internal/localstore"
	"shopazon/internal/logging"
	"shopazon/internal/middleware"
	"shopazon/internal/session"
	"shopazon/internal/toast"
	"shopazon/pkg/rabbitmq"
)

// App bundles the wired gateway: the Fiber shell plus the process-wide
// stores the shell shares across page views.
type App struct {
	Fiber   *fiber.App
	Session *session.Store
	Cart    *cart.Mirror
	Toasts  *toast.Store
}

// NewApp wires configuration, the API client, the stores and every page
// view into a Fiber application. The events publisher may be nil.
func NewApp(cfg *config.Config, logger *zap.Logger, events *rabbitmq.Publisher) (*App, error) {
	client, err := api.New(cfg.API, logger)
	if err != nil {
		return nil, err
	}

	cache, err := localstore.Open(cfg.Session)
	if err != nil {
		return nil, err
	}

	sessionStore := session.NewStore(client, cache, logger)
	toasts := toast.NewStore()
	mirror := cart.NewMirror(client, sessionStore, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	app.Use(fiberlogger.New())

	// Public storefront and auth surface. The health probe registers here
	// too: the guarded groups below attach at the root prefix, so anything
	// added after them answers 503 until the session resolves.
	handlers.NewStorefrontHandler(client, mirror, toasts, logger).RegisterRoutes(app)
	handlers.NewAuthHandler(sessionStore, toasts, logger).RegisterRoutes(app)
	handlers.NewUIHandler(toasts, mirror).RegisterRoutes(app)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":           "healthy",
			"time":             time.Now().Format(time.RFC3339),
			"session_resolved": sessionStore.Resolved(),
		})
	})

	// Signed-in surface: cart and order history.
	userRoutes := app.Group("/", middleware.Guard(sessionStore, false))
	handlers.NewCartHandler(client, sessionStore, mirror, toasts, logger).RegisterRoutes(userRoutes)
	handlers.NewOrderHandler(client, toasts, events, logger).RegisterRoutes(userRoutes)

	// Admin console, gated on the administrator role.
	adminRoutes := app.Group("/admin", middleware.Guard(sessionStore, true))
	handlers.NewAdminOrderHandler(client, toasts, logger).RegisterRoutes(adminRoutes)
	handlers.NewAdminProductHandler(client, toasts, events, logger).RegisterRoutes(adminRoutes)
	handlers.NewAdminCategoryHandler(client, toasts, events, logger).RegisterRoutes(adminRoutes)
	handlers.NewAdminPaymentHandler(client, toasts, events, logger).RegisterRoutes(adminRoutes)
	handlers.NewAdminCustomerHandler(client, toasts, logger).RegisterRoutes(adminRoutes)

	return &App{
		Fiber:   app,
		Session: sessionStore,
		Cart:    mirror,
		Toasts:  toasts,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var events *rabbitmq.Publisher
	if cfg.Events.Enabled {
		events, err = rabbitmq.NewPublisher(rabbitmq.Config{URL: cfg.Events.RabbitMQURL})
		if err != nil {
			logger.Fatal("Failed to initialize RabbitMQ publisher", zap.Error(err))
		}
		defer events.Close()
	}

	app, err := NewApp(cfg, logger, events)
	if err != nil {
		logger.Fatal("Failed to create app", zap.Error(err))
	}

	// Resolve the session in the background so protected views can trust
	// the persisted cache immediately instead of flashing a redirect.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
		defer cancel()
		app.Session.Hydrate(ctx)
	}()

	logger.Info("Starting storefront gateway",
		zap.String("port", cfg.App.Port),
		zap.String("api", cfg.API.BaseURL))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Fiber.Listen(cfg.App.Port); err != nil {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Shutting down server...")

	if err := app.Fiber.Shutdown(); err != nil {
		logger.Error("Error during Fiber shutdown", zap.Error(err))
	}
	logger.Info("Server gracefully stopped")
}
