package account

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// MembershipPrefix is the fixed prefix on every issued membership number.
const MembershipPrefix = "KSTW"

var membershipPattern = regexp.MustCompile(`^` + MembershipPrefix + `-(\d{4,})-\d{2}$`)

// FormatMembershipNumber renders a sequence as PREFIX-NNNN-YY, where NNNN is
// the zero-padded sequence and YY the two-digit year of issuance. The year is
// informational; ordering is carried by the sequence alone.
func FormatMembershipNumber(seq int, issued time.Time) string {
	return fmt.Sprintf("%s-%04d-%02d", MembershipPrefix, seq, issued.Year()%100)
}

// membershipSequence extracts the sequence from a membership number. The
// second return value is false when the input does not match the issued
// format.
func membershipSequence(number string) (int, bool) {
	m := membershipPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, false
	}
	seq, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return seq, true
}

// IsMembershipNumber reports whether s is shaped like an issued membership
// number.
func IsMembershipNumber(s string) bool {
	return membershipPattern.MatchString(s)
}
