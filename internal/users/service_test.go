package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/daftar-erp/daftar/internal/shared"
)

type memoryUserRepo struct {
	users  map[int64]User
	nextID int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[int64]User)}
}

func (r *memoryUserRepo) ListUsers(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memoryUserRepo) GetUser(ctx context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryUserRepo) CreateUser(ctx context.Context, user User) (User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return User{}, shared.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryUserRepo) UpdateProfile(ctx context.Context, id int64, fullName string) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.FullName = fullName
	r.users[id] = u
	return nil
}

func (r *memoryUserRepo) UpdatePreferences(ctx context.Context, id int64, language, calendar string) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Language = language
	u.Calendar = calendar
	r.users[id] = u
	return nil
}

func (r *memoryUserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = active
	r.users[id] = u
	return nil
}

func (r *memoryUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = passwordHash
	r.users[id] = u
	return nil
}

func TestCreateUserDefaults(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)

	user, err := svc.CreateUser(context.Background(), 1, "  Sara@Example.COM ", " Sara Ahmadi ", "secret-pass")
	require.NoError(t, err)

	require.Equal(t, "sara@example.com", user.Email, "email is normalised")
	require.Equal(t, "Sara Ahmadi", user.FullName)
	require.Equal(t, LanguageFa, user.Language)
	require.Equal(t, CalendarJalali, user.Calendar)
	require.True(t, user.IsActive)

	require.NotEqual(t, "secret-pass", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret-pass")))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateUser(context.Background(), 1, "sara@example.com", "Sara", "secret-pass")
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), 1, "SARA@example.com", "Other", "other-pass")
	require.ErrorIs(t, err, shared.ErrDuplicateEmail)
}

func TestCreateUserRejectsEmptyCredentials(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateUser(context.Background(), 1, "  ", "Sara", "secret-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.CreateUser(context.Background(), 1, "sara@example.com", "Sara", "")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestUpdatePreferences(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)

	user, err := svc.CreateUser(context.Background(), 1, "sara@example.com", "Sara", "secret-pass")
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePreferences(context.Background(), user.ID, user.ID, LanguageEn, CalendarGregorian))

	current, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, LanguageEn, current.Language)
	require.Equal(t, CalendarGregorian, current.Calendar)

	require.Error(t, svc.UpdatePreferences(context.Background(), user.ID, user.ID, "de", CalendarJalali))
	require.Error(t, svc.UpdatePreferences(context.Background(), user.ID, user.ID, LanguageFa, "hijri"))
}

func TestSetActive(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)

	user, err := svc.CreateUser(context.Background(), 1, "sara@example.com", "Sara", "secret-pass")
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(context.Background(), 1, user.ID, false))
	current, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.False(t, current.IsActive)
}
