package repository

import (
	"context"

	"github.com/fastygo/todo/domain"
)

// TaskRepository persists tasks. A non-empty ownerID on Toggle and Delete restricts the
// statement to that owner's rows; a row owned by someone else is reported as domain.ErrTaskNotFound.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Toggle(ctx context.Context, id, ownerID string) (*domain.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
}
