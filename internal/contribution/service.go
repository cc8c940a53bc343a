package contribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kstw/membership/internal/account"
)

// UserResolver resolves membership numbers to registered members. Satisfied
// by account.Repository.
type UserResolver interface {
	FindByMembershipNumber(ctx context.Context, number string) (account.User, error)
}

// Service appends contributions to the ledger.
type Service struct {
	repo   Repository
	users  UserResolver
	logger *slog.Logger
}

// NewService builds a contribution service.
func NewService(repo Repository, users UserResolver, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: users, logger: logger}
}

// Record appends a contribution attributed to the contributor's user record.
// The recipient membership number is stored as free text and is not required
// to resolve to a member.
func (s *Service) Record(ctx context.Context, input RecordInput) (Contribution, error) {
	switch {
	case input.Amount == 0:
		return Contribution{}, fmt.Errorf("%w: amount is required", ErrValidation)
	case input.Amount < 0:
		return Contribution{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	case input.ContributorMembershipNumber == "":
		return Contribution{}, fmt.Errorf("%w: contributor membership number is required", ErrValidation)
	case input.RecipientMembershipNumber == "":
		return Contribution{}, fmt.Errorf("%w: recipient membership number is required", ErrValidation)
	}

	contributor, err := s.users.FindByMembershipNumber(ctx, input.ContributorMembershipNumber)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return Contribution{}, fmt.Errorf("%w: %s", ErrNotFound, input.ContributorMembershipNumber)
		}
		return Contribution{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	now := time.Now().UTC()
	entry := Contribution{
		ID:                        uuid.New().String(),
		UserID:                    contributor.ID,
		Amount:                    input.Amount,
		Description:               input.Description,
		RecipientMembershipNumber: input.RecipientMembershipNumber,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return Contribution{}, err
	}

	s.logger.Info("contribution recorded",
		slog.String("contribution_id", entry.ID),
		slog.String("user_id", entry.UserID),
		slog.Int64("amount", entry.Amount),
	)
	return entry, nil
}

// List returns a snapshot of the ledger for reporting.
func (s *Service) List(ctx context.Context) ([]Contribution, error) {
	return s.repo.All(ctx)
}
