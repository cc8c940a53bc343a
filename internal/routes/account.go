package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kstw/membership/internal/account"
)

// RegisterAccountRoutes wires the account lifecycle endpoints.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler, rateLimiter fiber.Handler) {
	r.Post("/register", h.Register)
	if rateLimiter != nil {
		r.Post("/login", rateLimiter, h.Login)
	} else {
		r.Post("/login", h.Login)
	}
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/reset-password", h.ResetPassword)
}
