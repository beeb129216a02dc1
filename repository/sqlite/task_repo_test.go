package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/internal/testutil"
)

func TestTaskCreate_UnknownOwner(t *testing.T) {
	s := testutil.NewStores(t)

	_, err := s.Tasks.Create(context.Background(), &domain.Task{UserID: "ghost", Title: "x"})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestTaskListByOwner_OrderAndIsolation(t *testing.T) {
	s := testutil.NewStores(t)
	ctx := context.Background()
	alice := createAccount(t, s, "alice@example.com")
	bob := createAccount(t, s, "bob@example.com")

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if _, err := s.Tasks.Create(ctx, &domain.Task{UserID: alice.ID, Title: title}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := s.Tasks.Create(ctx, &domain.Task{UserID: bob.ID, Title: "bob's"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tasks, err := s.Tasks.ListByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(tasks) != len(titles) {
		t.Fatalf("expected %d tasks, got %d", len(titles), len(tasks))
	}
	for i, task := range tasks {
		if task.Title != titles[i] {
			t.Errorf("task %d: expected %q, got %q", i, titles[i], task.Title)
		}
		if task.UserID != alice.ID {
			t.Errorf("task %d: expected owner %s, got %s", i, alice.ID, task.UserID)
		}
	}

	empty, err := s.Tasks.ListByOwner(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestTaskToggle(t *testing.T) {
	s := testutil.NewStores(t)
	ctx := context.Background()
	alice := createAccount(t, s, "alice@example.com")
	bob := createAccount(t, s, "bob@example.com")

	task, err := s.Tasks.Create(ctx, &domain.Task{UserID: alice.ID, Title: "buy milk"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	toggled, err := s.Tasks.Toggle(ctx, task.ID, alice.ID)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !toggled.Complete {
		t.Error("expected task to be complete after toggle")
	}

	if _, err := s.Tasks.Toggle(ctx, task.ID, bob.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected foreign owner toggle to miss, got %v", err)
	}

	unscoped, err := s.Tasks.Toggle(ctx, task.ID, "")
	if err != nil {
		t.Fatalf("unscoped Toggle failed: %v", err)
	}
	if unscoped.Complete {
		t.Error("expected task to be incomplete after second toggle")
	}

	if _, err := s.Tasks.Toggle(ctx, "missing", ""); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskDelete(t *testing.T) {
	s := testutil.NewStores(t)
	ctx := context.Background()
	alice := createAccount(t, s, "alice@example.com")
	bob := createAccount(t, s, "bob@example.com")

	task, err := s.Tasks.Create(ctx, &domain.Task{UserID: alice.ID, Title: "buy milk"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.Tasks.Delete(ctx, task.ID, bob.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected foreign owner delete to miss, got %v", err)
	}
	if err := s.Tasks.Delete(ctx, task.ID, alice.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Tasks.GetByID(ctx, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected task to be gone, got %v", err)
	}
	if err := s.Tasks.Delete(ctx, task.ID, ""); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}
