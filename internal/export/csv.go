package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/kstw/membership/internal/account"
	"github.com/kstw/membership/internal/contribution"
)

// UsersCSV writes the member list as CSV. Password digests and reset tokens
// are never exported.
func UsersCSV(w io.Writer, users []account.User) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(userHeader); err != nil {
		return err
	}
	for _, u := range users {
		record := []string{
			u.FullName, u.Username, u.Email, u.Cluster, u.Institution,
			u.MembershipNumber, formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ContributionsCSV writes the contribution ledger as CSV. Amounts are in
// cents.
func ContributionsCSV(w io.Writer, contributions []contribution.Contribution) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(contributionHeader); err != nil {
		return err
	}
	for _, c := range contributions {
		record := []string{
			c.ID, c.UserID, strconv.FormatInt(c.Amount, 10), c.Description,
			c.RecipientMembershipNumber, formatTime(c.CreatedAt),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
