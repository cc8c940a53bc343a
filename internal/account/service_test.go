package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kstw/membership/internal/logging"
	"github.com/kstw/membership/internal/notification"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.Message
	fail bool
}

func (n *recordingNotifier) Send(_ context.Context, message notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp unreachable")
	}
	n.sent = append(n.sent, message)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func newTestService(notifier notification.Notifier) (*Service, Repository) {
	repo := NewMemoryRepository()
	svc := NewService(repo, NewBcryptHasher(4), notifier, Config{
		ResetTokenTTL: time.Hour,
		ResetLinkBase: "http://localhost:8080",
	}, logging.Discard())
	return svc, repo
}

func registerInput(name string) RegisterInput {
	return RegisterInput{
		FullName: "Member " + name,
		Username: name,
		Password: "pw-" + name,
		Email:    name + "@x.com",
	}
}

func TestRegisterAssignsSequentialMembershipNumbers(t *testing.T) {
	svc, _ := newTestService(&recordingNotifier{})
	ctx := context.Background()
	yy := time.Now().UTC().Year() % 100

	ada, err := svc.Register(ctx, RegisterInput{FullName: "Ada", Username: "ada", Password: "pw1", Email: "ada@x.com"})
	if err != nil {
		t.Fatalf("register ada: %v", err)
	}
	if want := fmt.Sprintf("KSTW-0001-%02d", yy); ada.MembershipNumber != want {
		t.Fatalf("expected %s, got %s", want, ada.MembershipNumber)
	}

	bob, err := svc.Register(ctx, RegisterInput{FullName: "Bob", Username: "bob", Password: "pw2", Email: "bob@x.com"})
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	if want := fmt.Sprintf("KSTW-0002-%02d", yy); bob.MembershipNumber != want {
		t.Fatalf("expected %s, got %s", want, bob.MembershipNumber)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(&recordingNotifier{})
	ctx := context.Background()

	inputs := []RegisterInput{
		{Username: "ada", Password: "pw", Email: "ada@x.com"},
		{FullName: "Ada", Password: "pw", Email: "ada@x.com"},
		{FullName: "Ada", Username: "ada", Email: "ada@x.com"},
		{FullName: "Ada", Username: "ada", Password: "pw"},
	}
	for i, input := range inputs {
		if _, err := svc.Register(ctx, input); !errors.Is(err, ErrValidation) {
			t.Fatalf("input %d: expected validation error, got %v", i, err)
		}
	}
}

func TestRegisterRejectsMembershipShapedUsername(t *testing.T) {
	svc, _ := newTestService(&recordingNotifier{})
	input := registerInput("eve")
	input.Username = "KSTW-0001-25"
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterConflicts(t *testing.T) {
	svc, _ := newTestService(&recordingNotifier{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("ada")); err != nil {
		t.Fatalf("register: %v", err)
	}

	dupUsername := registerInput("ada")
	dupUsername.Email = "other@x.com"
	if _, err := svc.Register(ctx, dupUsername); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on username, got %v", err)
	}

	dupEmail := registerInput("ada2")
	dupEmail.Email = "ada@x.com"
	if _, err := svc.Register(ctx, dupEmail); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on email, got %v", err)
	}
}

func TestRegisterDoesNotStorePlaintext(t *testing.T) {
	svc, _ := newTestService(&recordingNotifier{})
	user, err := svc.Register(context.Background(), registerInput("ada"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if strings.Contains(string(user.PasswordHash), "pw-ada") {
		t.Fatal("password stored in plaintext")
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(&recordingNotifier{})
	ctx := context.Background()

	user, err := svc.Register(ctx, registerInput("ada"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "ada", "pw-ada"); err != nil {
		t.Fatalf("authenticate by username: %v", err)
	}
	if _, err := svc.Authenticate(ctx, user.MembershipNumber, "pw-ada"); err != nil {
		t.Fatalf("authenticate by membership number: %v", err)
	}
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService(&recordingNotifier{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("ada")); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPass := svc.Authenticate(ctx, "ada", "wrong")
	_, noUser := svc.Authenticate(ctx, "ghost", "whatever")

	if !errors.Is(wrongPass, ErrAuthentication) || !errors.Is(noUser, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication for both, got %v and %v", wrongPass, noUser)
	}
	if wrongPass.Error() != noUser.Error() {
		t.Fatalf("failure messages differ: %q vs %q", wrongPass, noUser)
	}
}

func TestAuthenticateValidation(t *testing.T) {
	svc, _ := newTestService(&recordingNotifier{})
	ctx := context.Background()
	if _, err := svc.Authenticate(ctx, "", "pw"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ada", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResetLifecycle(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newTestService(notifier)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("ada")); err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := svc.RequestReset(ctx, "ada@x.com")
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if !result.Delivered {
		t.Fatal("expected delivery to succeed")
	}
	if notifier.count() != 1 {
		t.Fatalf("expected one email, got %d", notifier.count())
	}
	if len(result.Token) != resetTokenBytes*2 {
		t.Fatalf("expected %d-char token, got %d", resetTokenBytes*2, len(result.Token))
	}

	if err := svc.RedeemReset(ctx, result.Token, "newpw"); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ada", "newpw"); err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ada", "pw-ada"); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("old password should fail, got %v", err)
	}

	// Redemption is single use: the token pair was cleared.
	if err := svc.RedeemReset(ctx, result.Token, "again"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token on second redemption, got %v", err)
	}
}

func TestRedeemExpiredToken(t *testing.T) {
	svc, repo := newTestService(&recordingNotifier{})
	ctx := context.Background()

	user, err := svc.Register(ctx, registerInput("ada"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	result, err := svc.RequestReset(ctx, "ada@x.com")
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}

	expired := PendingReset{Token: result.Token, ExpiresAt: time.Now().UTC().Add(-time.Minute)}
	if err := repo.SetReset(ctx, user.ID, expired); err != nil {
		t.Fatalf("set reset: %v", err)
	}

	if err := svc.RedeemReset(ctx, result.Token, "newpw"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for expired reset, got %v", err)
	}
}

func TestSecondResetRequestSupersedesFirst(t *testing.T) {
	svc, _ := newTestService(&recordingNotifier{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("ada")); err != nil {
		t.Fatalf("register: %v", err)
	}

	first, err := svc.RequestReset(ctx, "ada@x.com")
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, err := svc.RequestReset(ctx, "ada@x.com")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if first.Token == second.Token {
		t.Fatal("expected a fresh token on the second request")
	}

	if err := svc.RedeemReset(ctx, first.Token, "newpw"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("superseded token should be invalid, got %v", err)
	}
	if err := svc.RedeemReset(ctx, second.Token, "newpw"); err != nil {
		t.Fatalf("latest token should redeem: %v", err)
	}
}

func TestRequestResetUnknownEmail(t *testing.T) {
	svc, _ := newTestService(&recordingNotifier{})
	if _, err := svc.RequestReset(context.Background(), "ghost@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRequestResetDeliveryFailureKeepsToken(t *testing.T) {
	notifier := &recordingNotifier{fail: true}
	svc, _ := newTestService(notifier)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("ada")); err != nil {
		t.Fatalf("register: %v", err)
	}
	result, err := svc.RequestReset(ctx, "ada@x.com")
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if result.Delivered {
		t.Fatal("delivery should have failed")
	}

	// The token was persisted before the delivery attempt.
	if err := svc.RedeemReset(ctx, result.Token, "newpw"); err != nil {
		t.Fatalf("redeem after failed delivery: %v", err)
	}
}

func TestConcurrentRegistrationsAllocateDistinctNumbers(t *testing.T) {
	svc, _ := newTestService(&recordingNotifier{})
	ctx := context.Background()

	const workers = 16
	numbers := make(chan string, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, err := svc.Register(ctx, registerInput(fmt.Sprintf("user%d", i)))
			if err != nil {
				t.Errorf("register %d: %v", i, err)
				return
			}
			numbers <- user.MembershipNumber
		}(i)
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		if seen[number] {
			t.Fatalf("duplicate membership number issued: %s", number)
		}
		seen[number] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d distinct numbers, got %d", workers, len(seen))
	}
}

func TestConcurrentRedemptionsConsumeTokenOnce(t *testing.T) {
	svc, _ := newTestService(&recordingNotifier{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("ada")); err != nil {
		t.Fatalf("register: %v", err)
	}
	result, err := svc.RequestReset(ctx, "ada@x.com")
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- svc.RedeemReset(ctx, result.Token, fmt.Sprintf("newpw%d", i))
		}(i)
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInvalidToken):
			rejected++
		default:
			t.Fatalf("unexpected redemption error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("expected exactly one redemption to win, got %d successes and %d rejections", succeeded, rejected)
	}
}

func TestRequestResetTokenGenerationFailure(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newTestService(notifier)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("ada")); err != nil {
		t.Fatalf("register: %v", err)
	}
	svc.issueToken = func(time.Time, time.Duration) (*PendingReset, error) {
		return nil, errors.New("entropy exhausted")
	}

	if _, err := svc.RequestReset(ctx, "ada@x.com"); !errors.Is(err, ErrTokenGeneration) {
		t.Fatalf("expected ErrTokenGeneration, got %v", err)
	}
	if notifier.count() != 0 {
		t.Fatalf("expected no email on generation failure, got %d", notifier.count())
	}
}
