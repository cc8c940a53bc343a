package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatMembershipNumber(t *testing.T) {
	issued := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "KSTW-0001-26", FormatMembershipNumber(1, issued))
	assert.Equal(t, "KSTW-0042-26", FormatMembershipNumber(42, issued))
	assert.Equal(t, "KSTW-9999-26", FormatMembershipNumber(9999, issued))
	// Sequences beyond four digits widen instead of wrapping.
	assert.Equal(t, "KSTW-10000-26", FormatMembershipNumber(10000, issued))
}

func TestMembershipSequence(t *testing.T) {
	cases := []struct {
		number string
		seq    int
		ok     bool
	}{
		{"KSTW-0001-26", 1, true},
		{"KSTW-0042-99", 42, true},
		{"KSTW-10000-26", 10000, true},
		{"KSTW-001-26", 0, false},
		{"kstw-0001-26", 0, false},
		{"KSTW-0001", 0, false},
		{"OTHER-0001-26", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		seq, ok := membershipSequence(tc.number)
		assert.Equal(t, tc.ok, ok, tc.number)
		assert.Equal(t, tc.seq, seq, tc.number)
	}
}

func TestIsMembershipNumber(t *testing.T) {
	assert.True(t, IsMembershipNumber("KSTW-0007-26"))
	assert.False(t, IsMembershipNumber("ada"))
	assert.False(t, IsMembershipNumber("KSTW-7-26"))
}
