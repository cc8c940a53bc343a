package account

import "time"

// User represents a registered member.
type User struct {
	ID               string
	FullName         string
	Username         string
	Email            string
	Cluster          string
	Institution      string
	PasswordHash     []byte
	MembershipSeq    int
	MembershipNumber string
	Reset            *PendingReset
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PendingReset holds an outstanding password-reset token together with its
// expiry. A user either has both (reset pending) or neither; the pair is
// never split.
type PendingReset struct {
	Token     string
	ExpiresAt time.Time
}

// Valid reports whether the token can still be redeemed at the given instant.
func (p *PendingReset) Valid(now time.Time) bool {
	return p != nil && p.ExpiresAt.After(now)
}

// RegisterInput captures the data required to create a member.
type RegisterInput struct {
	FullName    string
	Username    string
	Password    string
	Email       string
	Cluster     string
	Institution string
}
