package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/daftar-erp/daftar/internal/shared"
)

type memoryAuthRepo struct {
	users     map[string]*User
	passwords map[int64]string
	sessions  map[string]int64
}

func newMemoryAuthRepo() *memoryAuthRepo {
	return &memoryAuthRepo{
		users:     make(map[string]*User),
		passwords: make(map[int64]string),
		sessions:  make(map[string]int64),
	}
}

func (r *memoryAuthRepo) addUser(t *testing.T, id int64, email, password string, active bool) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &User{ID: id, Email: email, FullName: "Test User", PasswordHash: string(hash), IsActive: active}
	r.users[email] = u
	return u
}

func (r *memoryAuthRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, errors.New("no rows")
	}
	return u, nil
}

func (r *memoryAuthRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("no rows")
}

func (r *memoryAuthRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	r.sessions[id] = userID
	return nil
}

func (r *memoryAuthRepo) DeleteSession(ctx context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func (r *memoryAuthRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	r.passwords[userID] = passwordHash
	for _, u := range r.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
		}
	}
	return nil
}

type capturedMail struct {
	email string
	token string
}

type fakeMailer struct {
	sent []capturedMail
}

func (m *fakeMailer) EnqueueRecoveryMail(ctx context.Context, email, token string) error {
	m.sent = append(m.sent, capturedMail{email: email, token: token})
	return nil
}

func newAuthService(t *testing.T, repo Repository, mail MailEnqueuer) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewService(repo, rdb, mail)
}

func TestAuthenticate(t *testing.T) {
	repo := newMemoryAuthRepo()
	repo.addUser(t, 1, "sara@example.com", "correct-horse", true)
	repo.addUser(t, 2, "idle@example.com", "battery-staple", false)
	svc := newAuthService(t, repo, nil)

	user, err := svc.Authenticate(context.Background(), "sara@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != 1 {
		t.Fatalf("expected user 1, got %d", user.ID)
	}

	if _, err := svc.Authenticate(context.Background(), "sara@example.com", "wrong"); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@example.com", "whatever"); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "idle@example.com", "battery-staple"); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for inactive account, got %v", err)
	}
}

func TestPasswordResetRoundTrip(t *testing.T) {
	repo := newMemoryAuthRepo()
	repo.addUser(t, 1, "sara@example.com", "old-password", true)
	mail := &fakeMailer{}
	svc := newAuthService(t, repo, mail)

	if err := svc.RequestPasswordReset(context.Background(), "sara@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(mail.sent))
	}
	if mail.sent[0].email != "sara@example.com" || mail.sent[0].token == "" {
		t.Fatalf("unexpected mail payload: %+v", mail.sent[0])
	}

	token := mail.sent[0].token
	if err := svc.ResetPassword(context.Background(), token, "new-password"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "sara@example.com", "new-password"); err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "sara@example.com", "old-password"); err == nil {
		t.Fatal("old password must stop working")
	}

	// The token is single use.
	if err := svc.ResetPassword(context.Background(), token, "another-password"); !errors.Is(err, shared.ErrTokenExpired) {
		t.Fatalf("expected token expired on reuse, got %v", err)
	}
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	repo := newMemoryAuthRepo()
	mail := &fakeMailer{}
	svc := newAuthService(t, repo, mail)

	if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("request reset for unknown email: %v", err)
	}
	if len(mail.sent) != 0 {
		t.Fatalf("no mail should be sent for unknown accounts, got %d", len(mail.sent))
	}
}

func TestPasswordResetInactiveAccountIsSilent(t *testing.T) {
	repo := newMemoryAuthRepo()
	repo.addUser(t, 1, "idle@example.com", "whatever", false)
	mail := &fakeMailer{}
	svc := newAuthService(t, repo, mail)

	if err := svc.RequestPasswordReset(context.Background(), "idle@example.com"); err != nil {
		t.Fatalf("request reset for inactive account: %v", err)
	}
	if len(mail.sent) != 0 {
		t.Fatalf("no mail should be sent for inactive accounts, got %d", len(mail.sent))
	}
}

func TestResetPasswordUnknownToken(t *testing.T) {
	repo := newMemoryAuthRepo()
	svc := newAuthService(t, repo, nil)

	err := svc.ResetPassword(context.Background(), "not-a-token", "new-password")
	if !errors.Is(err, shared.ErrTokenExpired) {
		t.Fatalf("expected token expired, got %v", err)
	}
}
