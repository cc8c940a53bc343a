package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByMembershipNumber(ctx context.Context, number string) (User, error)
	FindByResetToken(ctx context.Context, token string) (User, error)
	// MaxMembershipSequence returns the highest sequence issued so far,
	// zero when no user exists.
	MaxMembershipSequence(ctx context.Context) (int, error)
	// SetReset stores the token/expiry pair, replacing any pending one.
	// Both fields are written together.
	SetReset(ctx context.Context, userID string, reset PendingReset) error
	// UpdatePassword stores the new digest and clears the reset pair in
	// the same write, conditional on the pair still holding token. It
	// returns ErrNotFound when the token was already cleared or replaced,
	// so a reset token redeems at most once even under concurrent calls.
	UpdatePassword(ctx context.Context, userID string, digest []byte, token string) error
	All(ctx context.Context) ([]User, error)
}

const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, full_name, username, email, cluster, institution, password_hash,
        membership_seq, membership_number, reset_token, reset_token_expires_at, created_at, updated_at`

// Create inserts a new user. Unique violations on username or email map to
// ErrConflict; a membership number collision maps to the internal retry
// signal consumed by the service.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	var token *string
	var expires *time.Time
	if user.Reset != nil {
		token = &user.Reset.Token
		expires = &user.Reset.ExpiresAt
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (`+userColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		userID, user.FullName, user.Username, user.Email, user.Cluster, user.Institution,
		user.PasswordHash, user.MembershipSeq, user.MembershipNumber,
		token, expires, user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case "users_username_key":
				return fmt.Errorf("%w: username already taken", ErrConflict)
			case "users_email_key":
				return fmt.Errorf("%w: email already registered", ErrConflict)
			case "users_membership_number_key", "users_membership_seq_key":
				return errDuplicateMembership
			}
			return fmt.Errorf("%w: duplicate value", ErrConflict)
		}
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// FindByUsername fetches a user by username.
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (User, error) {
	return r.findBy(ctx, "username", username)
}

// FindByEmail fetches a user by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findBy(ctx, "email", email)
}

// FindByMembershipNumber fetches a user by issued membership number.
func (r *PostgresRepository) FindByMembershipNumber(ctx context.Context, number string) (User, error) {
	return r.findBy(ctx, "membership_number", number)
}

// FindByResetToken fetches the user holding the exact reset token.
func (r *PostgresRepository) FindByResetToken(ctx context.Context, token string) (User, error) {
	return r.findBy(ctx, "reset_token", token)
}

func (r *PostgresRepository) findBy(ctx context.Context, column, value string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return user, nil
}

// MaxMembershipSequence returns the highest issued sequence, zero for an
// empty store.
func (r *PostgresRepository) MaxMembershipSequence(ctx context.Context) (int, error) {
	var seq int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(membership_seq), 0) FROM users`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return seq, nil
}

// SetReset stores the reset pair atomically in one statement.
func (r *PostgresRepository) SetReset(ctx context.Context, userID string, reset PendingReset) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users
        SET reset_token = $1, reset_token_expires_at = $2, updated_at = $3
        WHERE id = $4`,
		reset.Token, reset.ExpiresAt.UTC(), time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword stores the new digest and clears the reset pair, but only
// while the row still carries token. The conditional WHERE makes redemption
// atomic: a second caller racing on the same token matches zero rows.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID string, digest []byte, token string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users
        SET password_hash = $1, reset_token = NULL, reset_token_expires_at = NULL, updated_at = $2
        WHERE id = $3 AND reset_token = $4`,
		digest, time.Now().UTC(), userID, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// All returns every user ordered by membership sequence.
func (r *PostgresRepository) All(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY membership_seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		token     *string
		expires   *time.Time
		createdAt time.Time
		updatedAt time.Time
		user      User
	)
	if err := row.Scan(&id, &user.FullName, &user.Username, &user.Email, &user.Cluster,
		&user.Institution, &user.PasswordHash, &user.MembershipSeq, &user.MembershipNumber,
		&token, &expires, &createdAt, &updatedAt); err != nil {
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	user.UpdatedAt = updatedAt.UTC()
	if token != nil && expires != nil {
		user.Reset = &PendingReset{Token: *token, ExpiresAt: expires.UTC()}
	}
	return user, nil
}
