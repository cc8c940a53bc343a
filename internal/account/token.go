package account

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// resetTokenBytes is the raw entropy per token: 20 bytes (160 bits) keeps
// the collision probability negligible.
const resetTokenBytes = 20

// DefaultResetTokenTTL is how long a reset token stays redeemable.
const DefaultResetTokenTTL = time.Hour

// issueResetToken produces an opaque hex-encoded token valid for ttl from now.
func issueResetToken(now time.Time, ttl time.Duration) (*PendingReset, error) {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}
	return &PendingReset{
		Token:     hex.EncodeToString(buf),
		ExpiresAt: now.Add(ttl),
	}, nil
}
