// Package export renders member and contribution snapshots as downloadable
// CSV, spreadsheet and PDF documents. It consumes already-validated records
// and never touches storage itself.
package export

import "time"

var userHeader = []string{
	"Full Name", "Username", "Email", "Cluster", "Institution",
	"Membership Number", "Created At", "Updated At",
}

var contributionHeader = []string{
	"ID", "User ID", "Amount", "Description", "Recipient Membership Number", "Created At",
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
