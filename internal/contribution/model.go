package contribution

import "time"

// Contribution is an append-only ledger entry: a monetary amount given by a
// registered member toward a recipient membership number. Amounts are in
// cents.
type Contribution struct {
	ID                        string
	UserID                    string
	Amount                    int64
	Description               string
	RecipientMembershipNumber string
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// RecordInput captures the data needed to append a contribution. The
// contributor must resolve to a registered member; the recipient number is
// stored as given and never resolved.
type RecordInput struct {
	Amount                      int64
	Description                 string
	ContributorMembershipNumber string
	RecipientMembershipNumber   string
}
