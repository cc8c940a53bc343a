package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kstw/membership/internal/account"
	"github.com/kstw/membership/internal/config"
	"github.com/kstw/membership/internal/contribution"
	"github.com/kstw/membership/internal/middleware"
	"github.com/kstw/membership/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	Mailer notification.Notifier
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var accountRepo account.Repository
	if d.DB != nil {
		accountRepo = account.NewPostgresRepository(d.DB)
	} else {
		accountRepo = account.NewMemoryRepository()
	}

	var contributionRepo contribution.Repository
	if d.DB != nil {
		contributionRepo = contribution.NewPostgresRepository(d.DB)
	} else {
		contributionRepo = contribution.NewMemoryRepository()
	}

	mailer := d.Mailer
	if mailer == nil {
		mailer = notification.NewLoggerNotifier(d.Logger)
	}

	accountSvc := account.NewService(accountRepo, account.NewBcryptHasher(0), mailer, account.Config{
		ResetTokenTTL: d.Cfg.ResetTokenTTL,
		ResetLinkBase: d.Cfg.BaseURL,
	}, d.Logger)
	contributionSvc := contribution.NewService(contributionRepo, accountRepo, d.Logger)

	accountHandler := account.NewHandler(accountSvc)
	contributionHandler := contribution.NewHandler(contributionSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAccountRoutes(api, accountHandler, middleware.LoginRateLimit(d.Cache, 5))
	RegisterContributionRoutes(api, contributionHandler, d)
	RegisterExportRoutes(api, accountSvc, contributionSvc)

	return nil
}
