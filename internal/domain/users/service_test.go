package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]User
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	if u.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, errRepoNotFound
	}
	return u, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, errRepoNotFound
}

func (r *testRepo) List(ctx context.Context, filter ListFilter) ([]User, error) {
	out := make([]User, 0)
	for _, u := range r.byID {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_DefaultsToOwnerRole(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:     "Ana@Example.com",
		Password:  "secret1",
		FirstName: "Ana",
		LastName:  "Gomez",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.Role != "owner" {
		t.Fatalf("expected default role owner, got %s", u.Role)
	}
	if u.Email != "ana@example.com" {
		t.Fatalf("expected lowercased email, got %s", u.Email)
	}
	if !u.IsActive {
		t.Fatalf("expected new user active")
	}
	if u.CreatedAt != now || u.UpdatedAt != now {
		t.Fatalf("expected timestamps = now")
	}
	if strings.Contains(u.PasswordHash, "secret1") {
		t.Fatalf("password stored in plain text")
	}
}

func TestService_Register_RejectsDuplicateEmail(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	in := RegisterInput{
		Email:     "ana@example.com",
		Password:  "secret1",
		FirstName: "Ana",
		LastName:  "Gomez",
	}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Register #1 error: %v", err)
	}

	_, err := svc.Register(context.Background(), in)
	if err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestService_Register_RejectsUnknownRole(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:     "ana@example.com",
		Password:  "secret1",
		FirstName: "Ana",
		LastName:  "Gomez",
		Role:      "superuser",
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Login_OkAndWrongPassword(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:     "ana@example.com",
		Password:  "secret1",
		FirstName: "Ana",
		LastName:  "Gomez",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, err := svc.Login(context.Background(), "ana@example.com", "secret1"); err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if _, err := svc.Login(context.Background(), "ana@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "secret1"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestService_Login_RejectsInactiveAccount(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:     "ana@example.com",
		Password:  "secret1",
		FirstName: "Ana",
		LastName:  "Gomez",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, err := svc.SetActive(context.Background(), u.ID, false); err != nil {
		t.Fatalf("SetActive error: %v", err)
	}

	if _, err := svc.Login(context.Background(), "ana@example.com", "secret1"); err != ErrAccountInactive {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}
