package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kstw/membership/internal/contribution"
	"github.com/kstw/membership/internal/middleware"
)

// RegisterContributionRoutes wires the contribution ledger endpoint. When
// Redis is available the route requires an Idempotency-Key so retried
// submissions append at most one entry.
func RegisterContributionRoutes(r fiber.Router, h *contribution.Handler, d Deps) {
	if d.Cache != nil {
		r.Post("/contributions", middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger), h.Record)
		return
	}
	r.Post("/contributions", h.Record)
}
