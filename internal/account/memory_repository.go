package account

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // keyed by user ID
}

// NewMemoryRepository builds an in-memory user store for development and
// testing. It enforces the same uniqueness rules as the Postgres schema.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		switch {
		case existing.Username == user.Username:
			return fmt.Errorf("%w: username already taken", ErrConflict)
		case existing.Email == user.Email:
			return fmt.Errorf("%w: email already registered", ErrConflict)
		case existing.MembershipNumber == user.MembershipNumber,
			existing.MembershipSeq == user.MembershipSeq:
			return errDuplicateMembership
		}
	}
	cloned := user
	cloned.PasswordHash = append([]byte(nil), user.PasswordHash...)
	if user.Reset != nil {
		reset := *user.Reset
		cloned.Reset = &reset
	}
	r.users[user.ID] = cloned
	return nil
}

func (r *memoryRepository) FindByUsername(_ context.Context, username string) (User, error) {
	return r.findBy(func(u User) bool { return u.Username == username })
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	return r.findBy(func(u User) bool { return u.Email == email })
}

func (r *memoryRepository) FindByMembershipNumber(_ context.Context, number string) (User, error) {
	return r.findBy(func(u User) bool { return u.MembershipNumber == number })
}

func (r *memoryRepository) FindByResetToken(_ context.Context, token string) (User, error) {
	return r.findBy(func(u User) bool { return u.Reset != nil && u.Reset.Token == token })
}

func (r *memoryRepository) findBy(match func(User) bool) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if match(user) {
			return clone(user), nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) MaxMembershipSequence(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for _, user := range r.users {
		if user.MembershipSeq > max {
			max = user.MembershipSeq
		}
	}
	return max, nil
}

func (r *memoryRepository) SetReset(_ context.Context, userID string, reset PendingReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.Reset = &PendingReset{Token: reset.Token, ExpiresAt: reset.ExpiresAt}
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return nil
}

func (r *memoryRepository) UpdatePassword(_ context.Context, userID string, digest []byte, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	// Check and clear under the same lock so the token redeems once.
	if user.Reset == nil || user.Reset.Token != token {
		return ErrNotFound
	}
	user.PasswordHash = append([]byte(nil), digest...)
	user.Reset = nil
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return nil
}

func (r *memoryRepository) All(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, clone(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].MembershipSeq < users[j].MembershipSeq })
	return users, nil
}

func clone(user User) User {
	cloned := user
	cloned.PasswordHash = append([]byte(nil), user.PasswordHash...)
	if user.Reset != nil {
		reset := *user.Reset
		cloned.Reset = &reset
	}
	return cloned
}
