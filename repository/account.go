package repository

import (
	"context"

	"github.com/fastygo/todo/domain"
)

// AccountRepository persists registered accounts. Create must enforce email uniqueness at the
// store level and report a collision as domain.ErrDuplicateEmail.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}
