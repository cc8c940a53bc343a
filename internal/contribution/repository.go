package contribution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates the contributor membership number does not
	// resolve to a registered member.
	ErrNotFound = errors.New("contributor not found")

	// ErrStorage wraps storage-layer failures.
	ErrStorage = errors.New("storage failure")
)

// Repository persists contributions. Entries are append-only; there is no
// update or delete.
type Repository interface {
	Create(ctx context.Context, c Contribution) error
	All(ctx context.Context) ([]Contribution, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed contribution repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends a contribution.
func (r *PostgresRepository) Create(ctx context.Context, c Contribution) error {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO contributions
        (id, user_id, amount, description, recipient_membership_number, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, c.Amount, c.Description, c.RecipientMembershipNumber,
		c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// All returns every contribution, oldest first.
func (r *PostgresRepository) All(ctx context.Context) ([]Contribution, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, amount, description,
        recipient_membership_number, created_at, updated_at
        FROM contributions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	var contributions []Contribution
	for rows.Next() {
		var (
			id        uuid.UUID
			userID    uuid.UUID
			createdAt time.Time
			updatedAt time.Time
			c         Contribution
		)
		if err := rows.Scan(&id, &userID, &c.Amount, &c.Description,
			&c.RecipientMembershipNumber, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		c.ID = id.String()
		c.UserID = userID.String()
		c.CreatedAt = createdAt.UTC()
		c.UpdatedAt = updatedAt.UTC()
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return contributions, nil
}
