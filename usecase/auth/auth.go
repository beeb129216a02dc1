package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/logger"
	"github.com/fastygo/todo/repository"
)

// TokenConfig controls API bearer tokens.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Token is a signed API credential.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UseCase struct {
	accounts repository.AccountRepository
	sessions repository.SessionRepository
	tokens   TokenConfig
	logger   *zap.Logger
}

func New(accounts repository.AccountRepository, sessions repository.SessionRepository, tokens TokenConfig, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokens.TTL <= 0 {
		tokens.TTL = time.Hour
	}
	return &UseCase{
		accounts: accounts,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// CreateSession logs accountID in.
func (uc *UseCase) CreateSession(ctx context.Context, accountID string, ttl time.Duration) (*domain.Session, error) {
	if _, err := uc.accounts.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("session created", zap.String("account_id", accountID))
	return session, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// CurrentAccount resolves the logged-in account behind a session id.
// A session whose account vanished is revoked and reported as not found.
func (uc *UseCase) CurrentAccount(ctx context.Context, sessionID string) (*domain.Session, *domain.Account, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	account, err := uc.accounts.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			_ = uc.sessions.Delete(ctx, sessionID)
			return nil, nil, domain.ErrSessionNotFound
		}
		return nil, nil, err
	}
	return session, account, nil
}

// RefreshSession pushes the expiry of a live session to ttl from now.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.ExpiresAt = time.Now().Add(ttl)
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SetPreference stores a per-session display preference.
func (uc *UseCase) SetPreference(ctx context.Context, sessionID, key, value string) error {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Set(key, value)
	return uc.sessions.Save(ctx, session)
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return uc.sessions.Delete(ctx, sessionID)
}

// IssueToken signs an HS256 bearer token carrying the account id in the user_id claim.
func (uc *UseCase) IssueToken(ctx context.Context, accountID string) (*Token, error) {
	if uc.tokens.Secret == "" {
		return nil, domain.NewError(domain.ErrCodeInternal, "token signing is not configured")
	}
	if _, err := uc.accounts.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	now := time.Now()
	expires := now.Add(uc.tokens.TTL)
	claims := jwt.MapClaims{
		"user_id": accountID,
		"sub":     accountID,
		"iss":     uc.tokens.Issuer,
		"iat":     now.Unix(),
		"exp":     expires.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.tokens.Secret))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return &Token{Token: signed, ExpiresAt: time.Unix(expires.Unix(), 0).UTC()}, nil
}
