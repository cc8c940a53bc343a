package account

import "errors"

var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("invalid input")

	// ErrConflict indicates a uniqueness violation on username or email.
	ErrConflict = errors.New("already exists")

	// ErrAuthentication is returned for any credential mismatch. It is
	// deliberately generic so callers cannot tell an unknown identifier
	// from a wrong password.
	ErrAuthentication = errors.New("invalid username/membership number or password")

	// ErrNotFound indicates no user matches the lookup key.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidToken indicates a reset token that is absent, wrong,
	// already redeemed, or expired.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrHashing indicates the password hashing primitive failed.
	ErrHashing = errors.New("password hashing failed")

	// ErrTokenGeneration indicates the random source failed while issuing
	// a reset token. Like ErrHashing it is fatal to the request.
	ErrTokenGeneration = errors.New("reset token generation failed")

	// ErrStorage wraps storage-layer failures surfaced to callers without
	// internal detail.
	ErrStorage = errors.New("storage failure")
)

// errDuplicateMembership signals that a freshly allocated membership number
// lost the race against a concurrent registration. The service retries
// allocation; the error never escapes the package.
var errDuplicateMembership = errors.New("membership number already issued")
