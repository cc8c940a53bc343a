package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kstw/membership/internal/notification"
)

const (
	// maxAllocAttempts bounds the retry loop when a membership number
	// collides with a concurrent registration on another instance.
	maxAllocAttempts = 5

	// mailTimeout bounds how long a reset request waits on delivery.
	mailTimeout = 5 * time.Second
)

// Config carries the tunables of the account service.
type Config struct {
	// ResetTokenTTL is how long reset tokens stay valid. Zero means
	// DefaultResetTokenTTL.
	ResetTokenTTL time.Duration
	// ResetLinkBase is the public base URL embedded in reset emails.
	ResetLinkBase string
}

// Service manages the member account lifecycle: registration,
// authentication and password recovery.
type Service struct {
	repo     Repository
	hasher   Hasher
	notifier notification.Notifier
	cfg      Config
	logger   *slog.Logger

	// issueToken defaults to issueResetToken; tests swap it to exercise
	// random-source failures.
	issueToken func(now time.Time, ttl time.Duration) (*PendingReset, error)

	// allocMu serializes membership-number allocation in this process so
	// concurrent registrations cannot compute the same next sequence.
	allocMu sync.Mutex
}

// NewService creates an account service.
func NewService(repo Repository, hasher Hasher, notifier notification.Notifier, cfg Config, logger *slog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, notifier: notifier, cfg: cfg, logger: logger, issueToken: issueResetToken}
}

// Register creates a member with a hashed password and a freshly allocated
// membership number.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	switch {
	case input.FullName == "":
		return User{}, fmt.Errorf("%w: full name is required", ErrValidation)
	case input.Username == "":
		return User{}, fmt.Errorf("%w: username is required", ErrValidation)
	case input.Password == "":
		return User{}, fmt.Errorf("%w: password is required", ErrValidation)
	case input.Email == "":
		return User{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	// Usernames shaped like membership numbers would make login
	// identifiers ambiguous.
	if IsMembershipNumber(input.Username) {
		return User{}, fmt.Errorf("%w: username may not look like a membership number", ErrValidation)
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return User{}, err
	}

	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		seq, err := s.repo.MaxMembershipSequence(ctx)
		if err != nil {
			return User{}, err
		}
		now := time.Now().UTC()
		user := User{
			ID:               uuid.New().String(),
			FullName:         input.FullName,
			Username:         input.Username,
			Email:            input.Email,
			Cluster:          input.Cluster,
			Institution:      input.Institution,
			PasswordHash:     digest,
			MembershipSeq:    seq + 1,
			MembershipNumber: FormatMembershipNumber(seq+1, now),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		err = s.repo.Create(ctx, user)
		if errors.Is(err, errDuplicateMembership) {
			// Another instance committed this sequence first.
			continue
		}
		if err != nil {
			return User{}, err
		}
		s.logger.Info("member registered",
			slog.String("user_id", user.ID),
			slog.String("membership_number", user.MembershipNumber),
		)
		return user, nil
	}
	return User{}, fmt.Errorf("%w: membership number allocation kept conflicting", ErrStorage)
}

// Authenticate verifies a password against the user matched by username or
// membership number. Every failure is reported as ErrAuthentication.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return User{}, fmt.Errorf("%w: identifier and password are required", ErrValidation)
	}

	user, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrAuthentication
		}
		return User{}, err
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil || !ok {
		return User{}, ErrAuthentication
	}
	return user, nil
}

func (s *Service) lookup(ctx context.Context, identifier string) (User, error) {
	if IsMembershipNumber(identifier) {
		return s.repo.FindByMembershipNumber(ctx, identifier)
	}
	return s.repo.FindByUsername(ctx, identifier)
}

// ResetRequest is the outcome of RequestReset. The token is persisted before
// delivery is attempted, so Delivered=false still leaves a redeemable token.
type ResetRequest struct {
	Token     string
	ExpiresAt time.Time
	Delivered bool
}

// RequestReset issues a reset token for the user owning the email address,
// replacing any pending one, and mails the reset link.
func (s *Service) RequestReset(ctx context.Context, email string) (ResetRequest, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return ResetRequest{}, fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return ResetRequest{}, err
	}

	reset, err := s.issueToken(time.Now().UTC(), s.cfg.ResetTokenTTL)
	if err != nil {
		return ResetRequest{}, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	if err := s.repo.SetReset(ctx, user.ID, *reset); err != nil {
		return ResetRequest{}, err
	}

	result := ResetRequest{Token: reset.Token, ExpiresAt: reset.ExpiresAt}

	mailCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	err = s.notifier.Send(mailCtx, notification.Message{
		To:      user.Email,
		Subject: "Password Reset",
		Body:    fmt.Sprintf("Click the link to reset your password: %s/reset-password?token=%s", strings.TrimRight(s.cfg.ResetLinkBase, "/"), reset.Token),
	})
	if err != nil {
		// The token is already persisted; delivery can be retried.
		s.logger.Warn("reset email delivery failed", slog.String("user_id", user.ID), slog.Any("error", err))
		return result, nil
	}
	result.Delivered = true
	return result, nil
}

// RedeemReset consumes a reset token and stores the new password. The token
// pair is cleared in the same write, so a token redeems exactly once.
func (s *Service) RedeemReset(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if token == "" {
		return ErrInvalidToken
	}

	user, err := s.repo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if !user.Reset.Valid(time.Now().UTC()) {
		return ErrInvalidToken
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, digest, token); err != nil {
		// Zero rows means another redemption or a newer token cleared the
		// pair between the lookup and the write.
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	s.logger.Info("password reset completed", slog.String("user_id", user.ID))
	return nil
}

// Users returns a snapshot of all members for reporting.
func (s *Service) Users(ctx context.Context) ([]User, error) {
	return s.repo.All(ctx)
}
