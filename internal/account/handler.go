package account

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes account lifecycle endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	FullName    string `json:"full_name"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	Cluster     string `json:"cluster"`
	Institution string `json:"institution"`
}

type loginRequest struct {
	Username         string `json:"username"`
	MembershipNumber string `json:"membership_number"`
	Password         string `json:"password"`
}

// Register handles member onboarding. The response carries the assigned
// membership number and never the password digest.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.service.Register(c.UserContext(), RegisterInput{
		FullName:    req.FullName,
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		Cluster:     req.Cluster,
		Institution: req.Institution,
	})
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":           "Registration successful",
		"user_id":           user.ID,
		"membership_number": user.MembershipNumber,
	})
}

// Login verifies credentials by username or membership number.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	identifier := req.Username
	if identifier == "" {
		identifier = req.MembershipNumber
	}
	user, err := h.service.Authenticate(c.UserContext(), identifier, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":           "Login successful",
		"user_id":           user.ID,
		"membership_number": user.MembershipNumber,
	})
}

// ForgotPassword issues a reset token and mails the reset link.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	result, err := h.service.RequestReset(c.UserContext(), req.Email)
	if err != nil {
		return httpError(err)
	}
	message := "Password reset email sent"
	if !result.Delivered {
		message = "Password reset requested; email delivery pending"
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":   message,
		"delivered": result.Delivered,
	})
}

// ResetPassword redeems a reset token.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.RedeemReset(c.UserContext(), req.Token, req.Password); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Password reset successful"})
}

// httpError maps domain errors to stable HTTP responses. Hashing and storage
// failures surface only a generic message.
func httpError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidToken):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAuthentication):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "internal server error")
	}
}
