package task

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/logger"
	"github.com/fastygo/todo/repository"
	"github.com/fastygo/todo/usecase"
)

// Config tunes the ownership rules.
type Config struct {
	// EnforceOwnership scopes toggle, delete and get to the caller's own tasks.
	// When false any authenticated caller may mutate any task id.
	EnforceOwnership bool
}

type UseCase struct {
	tasks    repository.TaskRepository
	accounts repository.AccountRepository
	buffer   usecase.OperationBuffer
	logger   *zap.Logger
	cfg      Config
}

func New(
	tasks repository.TaskRepository,
	accounts repository.AccountRepository,
	buffer usecase.OperationBuffer,
	logger *zap.Logger,
	cfg Config,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		accounts: accounts,
		buffer:   buffer,
		logger:   logger,
		cfg:      cfg,
	}
}

// AddTask creates an incomplete task owned by ownerID.
func (uc *UseCase) AddTask(ctx context.Context, ownerID, title string) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	var verr domain.ValidationError
	switch {
	case title == "":
		verr.Add("title", "this field is required")
	case utf8.RuneCountInString(title) > domain.TitleMaxLength:
		verr.Add("title", "must be at most 100 characters")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if _, err := uc.accounts.GetByID(ctx, ownerID); errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Title:     title,
		Complete:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		if uc.shouldBuffer(ctx, usecase.OperationCreate, task) {
			return task, nil
		}
		return nil, err
	}
	return created, nil
}

// ToggleComplete flips the completion flag of taskID.
func (uc *UseCase) ToggleComplete(ctx context.Context, callerID, taskID string) (*domain.Task, error) {
	if taskID == "" {
		return nil, domain.ErrTaskNotFound
	}
	scope, err := uc.scope(callerID)
	if err != nil {
		return nil, err
	}
	return uc.tasks.Toggle(ctx, taskID, scope)
}

// DeleteTask removes taskID.
func (uc *UseCase) DeleteTask(ctx context.Context, callerID, taskID string) error {
	if taskID == "" {
		return domain.ErrTaskNotFound
	}
	scope, err := uc.scope(callerID)
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, taskID, scope); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		task := &domain.Task{ID: taskID, UserID: scope}
		if uc.shouldBuffer(ctx, usecase.OperationDelete, task) {
			return nil
		}
		return err
	}
	return nil
}

// GetTask returns one task, hidden as not found when it belongs to someone else.
func (uc *UseCase) GetTask(ctx context.Context, callerID, taskID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if uc.cfg.EnforceOwnership && task.UserID != callerID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// ListForOwner returns the owner's tasks in creation order with their counts.
func (uc *UseCase) ListForOwner(ctx context.Context, ownerID string) (domain.TaskList, error) {
	tasks, err := uc.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return domain.TaskList{}, err
	}
	return domain.NewTaskList(tasks), nil
}

// scope is the owner filter handed to the repository; empty means unscoped.
func (uc *UseCase) scope(callerID string) (string, error) {
	if !uc.cfg.EnforceOwnership {
		return "", nil
	}
	if callerID == "" {
		return "", domain.ErrUnauthorized
	}
	return callerID, nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, task *domain.Task) bool {
	if uc.buffer == nil {
		return false
	}
	log := logger.WithRequestID(ctx, uc.logger)
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		log.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	log.Warn("task operation buffered", zap.String("operation", operation), zap.String("task_id", task.ID))
	return true
}
