package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kstw/membership/internal/account"
)

const usersSheet = "Users"

// UsersWorkbook writes the member list as an xlsx workbook with a single
// Users sheet.
func UsersWorkbook(w io.Writer, users []account.User) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", usersSheet)

	header := make([]interface{}, len(userHeader))
	for i, h := range userHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(usersSheet, "A1", &header); err != nil {
		return err
	}

	for i, u := range users {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{
			u.FullName, u.Username, u.Email, u.Cluster, u.Institution,
			u.MembershipNumber, formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
		}
		if err := f.SetSheetRow(usersSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(usersSheet, "A", "H", 24); err != nil {
		return err
	}

	return f.Write(w)
}
