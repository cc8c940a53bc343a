package contribution

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes contribution endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a contribution HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type recordRequest struct {
	Amount                      int64  `json:"amount"`
	Description                 string `json:"description"`
	ContributorMembershipNumber string `json:"contributor_membership_number"`
	RecipientMembershipNumber   string `json:"recipient_membership_number"`
}

// Record appends a contribution to the ledger.
func (h *Handler) Record(c *fiber.Ctx) error {
	var req recordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.service.Record(c.UserContext(), RecordInput{
		Amount:                      req.Amount,
		Description:                 req.Description,
		ContributorMembershipNumber: req.ContributorMembershipNumber,
		RecipientMembershipNumber:   req.RecipientMembershipNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "internal server error")
		}
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":                          entry.ID,
		"user_id":                     entry.UserID,
		"amount":                      entry.Amount,
		"description":                 entry.Description,
		"recipient_membership_number": entry.RecipientMembershipNumber,
		"created_at":                  entry.CreatedAt,
	})
}
