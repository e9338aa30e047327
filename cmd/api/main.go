package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-hse/internal/common/api"
	"go-hse/internal/config"
	"go-hse/internal/database"
	"go-hse/internal/features/audit"
	"go-hse/internal/features/billing"
	cron_feature "go-hse/internal/features/cron"
	"go-hse/internal/features/directory"
	"go-hse/internal/features/layout"
	"go-hse/internal/features/mention"
	"go-hse/internal/features/notification"
	"go-hse/internal/features/report"
	"go-hse/internal/features/system"
	"go-hse/internal/features/task"
	"go-hse/internal/kvstore"
	"go-hse/internal/logger"
	"go-hse/internal/metrics"
	"go-hse/internal/middleware"
	"go-hse/pkg/utils"

	_ "go-hse/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config, m *metrics.Metrics) *fiber.App {
	utils.SetSecret(cfg.JWTSecret)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	app.Use(middleware.Metrics(m))

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, logger *zap.Logger) {
	logger.Info("Registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		logger.Debug("Setting up route", zap.String("route", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				logger.Info("Starting server", zap.String("port", port))
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(
	lc fx.Lifecycle,
	taskRepo task.TaskRepository,
	notificationRepo notification.NotificationRepository,
	billingRepo billing.BillingRepository,
	logger *zap.Logger,
) {
	repos := map[string]interface{}{
		"tasks":         taskRepo,
		"notifications": notificationRepo,
		"invoices":      billingRepo,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				// Use a background context with timeout for index creation
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				for name, repo := range repos {
					ix, ok := repo.(indexer)
					if !ok {
						continue
					}
					if err := ix.EnsureIndexes(ctx); err != nil {
						logger.Warn("Failed to ensure indexes", zap.String("collection", name), zap.Error(err))
					}
				}
			}()
			return nil
		},
	})
}

// StartScheduler runs the housekeeping jobs for the lifetime of the app.
func StartScheduler(lc fx.Lifecycle, cronService cron_feature.CronService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return cronService.InitializeScheduler(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return cronService.StopScheduler()
		},
	})
}

// @title           HSE Dashboard API
// @version         1.0
// @description     Dashboard layouts, task mentions, notifications, custom reports and billing.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,
			metrics.New,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,
			database.NewRedisClient,
			database.NewSQLDB,
			kvstore.NewStore,

			// Initialize Repository
			audit.NewAuditRepository,
			directory.NewDirectoryRepository,
			task.NewTaskRepository,
			notification.NewNotificationRepository,
			report.NewReportRepository,
			report.NewRecordRepository,
			billing.NewBillingRepository,
			cron_feature.NewCronRepository,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(r directory.DirectoryRepository) mention.Directory { return r },
			func(r task.TaskRepository) notification.TaskSource { return r },
			func(s layout.LayoutService) report.WidgetListener { return s },
			report.NewWidgetSource,

			mention.NewNameResolver,
			notification.NewHub,
			billing.NewStripeGateway,

			audit.NewAuditService,
			directory.NewDirectoryService,
			notification.NewNotificationService,
			task.NewTaskService,
			layout.NewLayoutService,
			report.NewReportService,
			billing.NewBillingService,
			cron_feature.NewCronService,

			// Initialize Controller
			audit.NewAuditController,
			directory.NewDirectoryController,
			notification.NewNotificationController,
			task.NewTaskController,
			layout.NewLayoutController,
			report.NewReportController,
			billing.NewBillingController,
			cron_feature.NewCronController,
			system.NewHealthController,

			// Initialize API Routes
			AsRoute(audit.NewAuditApi),
			AsRoute(directory.NewDirectoryApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(task.NewTaskApi),
			AsRoute(layout.NewLayoutApi),
			AsRoute(report.NewReportApi),
			AsRoute(billing.NewBillingApi),
			AsRoute(cron_feature.NewCronApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartScheduler,
			InitializeIndexes,
		),
	)

	app.Run()
}
