package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/logger"
	"github.com/fastygo/todo/pkg/password"
	"github.com/fastygo/todo/repository"
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

type UseCase struct {
	accounts repository.AccountRepository
	hasher   password.Hasher
	logger   *zap.Logger
}

func New(accounts repository.AccountRepository, hasher password.Hasher, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = password.NewBcrypt(0)
	}
	return &UseCase{
		accounts: accounts,
		hasher:   hasher,
		logger:   logger,
	}
}

// Register validates the form, rejects a known email and stores the account with a hashed password.
// Field problems come back as *domain.ValidationError; a taken email as domain.ErrDuplicateEmail.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	var verr domain.ValidationError
	checkLength(&verr, "username", in.Username, domain.UsernameMinLength, domain.UsernameMaxLength)
	checkEmail(&verr, in.Email)
	checkLength(&verr, "password", in.Password, domain.PasswordMinLength, domain.PasswordMaxLength)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := uc.accounts.GetByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	digest, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	account := &domain.Account{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: digest,
	}
	if err := uc.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	logger.WithRequestID(ctx, uc.logger).Info("account registered", zap.String("account_id", account.ID))
	return account, nil
}

// Authenticate resolves the account for an email/password pair. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (uc *UseCase) Authenticate(ctx context.Context, email, secret string) (*domain.Account, error) {
	email = strings.TrimSpace(email)

	var verr domain.ValidationError
	checkEmail(&verr, email)
	checkLength(&verr, "password", secret, domain.PasswordMinLength, domain.PasswordMaxLength)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	account, err := uc.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !uc.hasher.Verify(account.PasswordHash, secret) {
		logger.WithRequestID(ctx, uc.logger).Debug("password mismatch", zap.String("account_id", account.ID))
		return nil, domain.ErrInvalidCredentials
	}
	return account, nil
}

func (uc *UseCase) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accounts.GetByID(ctx, id)
}

func (uc *UseCase) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return uc.accounts.GetByEmail(ctx, strings.TrimSpace(email))
}

func checkLength(verr *domain.ValidationError, field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0:
		verr.Add(field, "this field is required")
	case n < min || n > max:
		verr.Add(field, lengthMessage(min, max))
	}
}

func checkEmail(verr *domain.ValidationError, email string) {
	checkLength(verr, "email", email, domain.EmailMinLength, domain.EmailMaxLength)
	if email == "" {
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		verr.Add("email", "invalid email address")
	}
}

func lengthMessage(min, max int) string {
	return fmt.Sprintf("must be between %d and %d characters", min, max)
}
