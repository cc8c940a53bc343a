package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/kstw/membership/internal/account"
)

// UsersPDF writes the member list as a PDF document, one block per member.
func UsersPDF(w io.Writer, users []account.User) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, "Members List", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 12)
	for _, u := range users {
		block := fmt.Sprintf(
			"Full Name: %s\nUsername: %s\nEmail: %s\nCluster: %s\nInstitution: %s\nMembership Number: %s\nCreated At: %s\nUpdated At: %s",
			u.FullName, u.Username, u.Email, u.Cluster, u.Institution,
			u.MembershipNumber, formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
		)
		doc.MultiCell(0, 6, block, "", "L", false)
		doc.Ln(4)
	}

	return doc.Output(w)
}
