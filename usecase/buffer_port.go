package usecase

import (
	"context"

	"github.com/fastygo/todo/domain"
)

// Buffered operation names.
const (
	OperationCreate = "create"
	OperationDelete = "delete"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
}
