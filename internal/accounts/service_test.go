package accounts

import (
	"context"
	"errors"
	"testing"

	"projectshelf-backend/internal/auth"
	"projectshelf-backend/internal/store"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	st := store.NewMemory()
	return NewService(st), st
}

func register(t *testing.T, svc *Service, username, email string) store.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    email,
		Password: "secret123",
		Name:     "Test User",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _ := newTestService(t)
	user := register(t, svc, "ada", "ada@example.com")

	if user.PasswordHash == "secret123" || user.PasswordHash == "" {
		t.Fatalf("password stored without hashing: %q", user.PasswordHash)
	}
	if err := auth.ComparePassword(user.PasswordHash, "secret123"); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Theme == "" {
		t.Fatal("expected a default theme on new accounts")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "ada", "ada@example.com")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "ada", Email: "other@example.com", Password: "secret123", Name: "A",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate username: got %v, want ErrUsernameTaken", err)
	}

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: "grace", Email: "ADA@example.com", Password: "secret123", Name: "G",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email: got %v, want ErrEmailTaken", err)
	}
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	svc, _ := newTestService(t)
	created := register(t, svc, "ada", "ada@example.com")

	byUsername, err := svc.Login(context.Background(), "ada", "secret123")
	if err != nil {
		t.Fatalf("login by username: %v", err)
	}
	if byUsername.ID != created.ID {
		t.Fatalf("login by username: got user %d, want %d", byUsername.ID, created.ID)
	}

	byEmail, err := svc.Login(context.Background(), "ada@example.com", "secret123")
	if err != nil {
		t.Fatalf("login by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("login by email: got user %d, want %d", byEmail.ID, created.ID)
	}

	if _, err := svc.Login(context.Background(), "ada", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v, want ErrInvalidCredentials", err)
	}
}

func TestUpdateProfileUniquenessAndTheme(t *testing.T) {
	svc, _ := newTestService(t)
	ada := register(t, svc, "ada", "ada@example.com")
	register(t, svc, "grace", "grace@example.com")

	taken := "grace"
	if _, err := svc.UpdateProfile(context.Background(), ada.ID, ProfileRequest{Username: &taken}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("taken username: got %v, want ErrUsernameTaken", err)
	}

	// Keeping your own username is not a conflict.
	same := "ada"
	bio := "Engineer"
	updated, err := svc.UpdateProfile(context.Background(), ada.ID, ProfileRequest{Username: &same, Bio: &bio})
	if err != nil {
		t.Fatalf("self-rename: %v", err)
	}
	if updated.Bio != "Engineer" {
		t.Fatalf("bio not applied: %q", updated.Bio)
	}

	bogus := "vaporwave"
	if _, err := svc.UpdateProfile(context.Background(), ada.ID, ProfileRequest{Theme: &bogus}); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("unknown theme: got %v, want ErrUnknownTheme", err)
	}

	bold := "bold"
	updated, err = svc.UpdateProfile(context.Background(), ada.ID, ProfileRequest{Theme: &bold})
	if err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if updated.Theme != "bold" {
		t.Fatalf("theme not applied: %q", updated.Theme)
	}
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	svc, _ := newTestService(t)
	ada := register(t, svc, "ada", "ada@example.com")

	err := svc.ChangePassword(context.Background(), ada.ID, ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "newsecret",
	})
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("wrong current password: got %v, want ErrWrongPassword", err)
	}

	err = svc.ChangePassword(context.Background(), ada.ID, ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "newsecret",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, err := svc.Login(context.Background(), "ada", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("old password still accepted after change")
	}
	if _, err := svc.Login(context.Background(), "ada", "newsecret"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}
