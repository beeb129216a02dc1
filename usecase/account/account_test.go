package account_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/internal/testutil"
	"github.com/fastygo/todo/pkg/password"
	"github.com/fastygo/todo/usecase/account"
)

func setupUseCase(t *testing.T) (*account.UseCase, testutil.Stores) {
	t.Helper()
	stores := testutil.NewStores(t)
	return account.New(stores.Accounts, password.NewBcrypt(bcrypt.MinCost), nil), stores
}

func TestRegister_DuplicateEmail(t *testing.T) {
	uc, stores := setupUseCase(t)
	ctx := context.Background()

	first, err := uc.Register(ctx, account.RegisterInput{Email: "a@example.com", Username: "alice", Password: "password1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if first.PasswordHash == "password1" || first.PasswordHash == "" {
		t.Fatalf("expected a hashed password, got %q", first.PasswordHash)
	}

	_, err = uc.Register(ctx, account.RegisterInput{Email: "a@example.com", Username: "alice2", Password: "password2"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Errorf("expected CONFLICT code, got %v", err)
	}

	stored, err := stores.Accounts.GetByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if stored.ID != first.ID || stored.Username != "alice" {
		t.Errorf("expected the first account to remain, got %+v", stored)
	}
}

func TestRegister_Validation(t *testing.T) {
	uc, _ := setupUseCase(t)

	tests := []struct {
		name  string
		in    account.RegisterInput
		field string
	}{
		{"short username", account.RegisterInput{Email: "a@example.com", Username: "al", Password: "password1"}, "username"},
		{"long username", account.RegisterInput{Email: "a@example.com", Username: strings.Repeat("a", 21), Password: "password1"}, "username"},
		{"missing email", account.RegisterInput{Username: "alice", Password: "password1"}, "email"},
		{"malformed email", account.RegisterInput{Email: "not-an-email", Username: "alice", Password: "password1"}, "email"},
		{"short email", account.RegisterInput{Email: "a@b.io", Username: "alice", Password: "password1"}, "email"},
		{"short password", account.RegisterInput{Email: "a@example.com", Username: "alice", Password: "short"}, "password"},
		{"long password", account.RegisterInput{Email: "a@example.com", Username: "alice", Password: strings.Repeat("p", 21)}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Register(context.Background(), tt.in)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected field %q to fail, got %v", tt.field, verr.Fields)
			}
			if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Errorf("expected INVALID classification")
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	uc, _ := setupUseCase(t)
	ctx := context.Background()

	registered, err := uc.Register(ctx, account.RegisterInput{Email: "a@example.com", Username: "alice", Password: "password1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := uc.Authenticate(ctx, " a@example.com ", "password1")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != registered.ID {
		t.Errorf("expected account %s, got %s", registered.ID, got.ID)
	}

	if _, err := uc.Authenticate(ctx, "a@example.com", "password2"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := uc.Authenticate(ctx, "b@example.com", "password1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestFind(t *testing.T) {
	uc, _ := setupUseCase(t)
	ctx := context.Background()

	registered, err := uc.Register(ctx, account.RegisterInput{Email: "a@example.com", Username: "alice", Password: "password1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	byID, err := uc.FindByID(ctx, registered.ID)
	if err != nil || byID.Email != "a@example.com" {
		t.Errorf("FindByID: got %+v, %v", byID, err)
	}
	byEmail, err := uc.FindByEmail(ctx, "a@example.com")
	if err != nil || byEmail.ID != registered.ID {
		t.Errorf("FindByEmail: got %+v, %v", byEmail, err)
	}
	if _, err := uc.FindByID(ctx, "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
