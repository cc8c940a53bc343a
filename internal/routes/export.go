package routes

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kstw/membership/internal/account"
	"github.com/kstw/membership/internal/contribution"
	"github.com/kstw/membership/internal/export"
)

// RegisterExportRoutes wires the member/contribution download endpoints.
func RegisterExportRoutes(r fiber.Router, accounts *account.Service, contributions *contribution.Service) {
	r.Get("/export/csv", func(c *fiber.Ctx) error {
		users, err := accounts.Users(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "internal server error")
		}
		var buf bytes.Buffer
		if err := export.UsersCSV(&buf, users); err != nil {
			return fiber.NewError(http.StatusInternalServerError, "internal server error")
		}
		return sendAttachment(c, &buf, "users.csv", "text/csv")
	})

	r.Get("/export/excel", func(c *fiber.Ctx) error {
		users, err := accounts.Users(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "internal server error")
		}
		var buf bytes.Buffer
		if err := export.UsersWorkbook(&buf, users); err != nil {
			return fiber.NewError(http.StatusInternalServerError, "internal server error")
		}
		return sendAttachment(c, &buf, "users.xlsx",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	})

	r.Get("/export/pdf", func(c *fiber.Ctx) error {
		users, err := accounts.Users(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "internal server error")
		}
		var buf bytes.Buffer
		if err := export.UsersPDF(&buf, users); err != nil {
			return fiber.NewError(http.StatusInternalServerError, "internal server error")
		}
		return sendAttachment(c, &buf, "users.pdf", "application/pdf")
	})

	r.Get("/export/contributions.csv", func(c *fiber.Ctx) error {
		entries, err := contributions.List(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "internal server error")
		}
		var buf bytes.Buffer
		if err := export.ContributionsCSV(&buf, entries); err != nil {
			return fiber.NewError(http.StatusInternalServerError, "internal server error")
		}
		return sendAttachment(c, &buf, "contributions.csv", "text/csv")
	})
}

func sendAttachment(c *fiber.Ctx, buf *bytes.Buffer, filename, contentType string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Status(http.StatusOK).Send(buf.Bytes())
}
