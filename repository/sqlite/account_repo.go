package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

type accountRepository struct {
	db *sql.DB
}

// NewAccountRepository returns a SQLite-backed AccountRepository.
func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account == nil {
		return domain.ErrInvalidPayload
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, username, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, account.ID, account.Email, account.Username, account.PasswordHash, account.CreatedAt)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintUnique) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, created_at
		FROM accounts WHERE id = ?
	`, id)
	return scanAccount(row)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, created_at
		FROM accounts WHERE email = ?
	`, email)
	return scanAccount(row)
}

func scanAccount(row scanner) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.PasswordHash,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &account, nil
}
