package task_test

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/internal/testutil"
	"github.com/fastygo/todo/repository"
	"github.com/fastygo/todo/usecase"
	"github.com/fastygo/todo/usecase/task"
)

func setup(t *testing.T, enforce bool) (*task.UseCase, testutil.Stores) {
	t.Helper()
	stores := testutil.NewStores(t)
	uc := task.New(stores.Tasks, stores.Accounts, nil, nil, task.Config{EnforceOwnership: enforce})
	return uc, stores
}

func newAccount(t *testing.T, stores testutil.Stores, email string) string {
	t.Helper()
	a := &domain.Account{Email: email, Username: "user", PasswordHash: "hash"}
	if err := stores.Accounts.Create(context.Background(), a); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a.ID
}

func assertCounts(t *testing.T, list domain.TaskList, total, completed, uncompleted int) {
	t.Helper()
	if list.Total != total || list.Completed != completed || list.Uncompleted != uncompleted {
		t.Fatalf("expected total=%d completed=%d uncompleted=%d, got total=%d completed=%d uncompleted=%d",
			total, completed, uncompleted, list.Total, list.Completed, list.Uncompleted)
	}
	if len(list.Tasks) != list.Total {
		t.Fatalf("expected %d tasks in list, got %d", list.Total, len(list.Tasks))
	}
}

func TestScenario_BuyMilk(t *testing.T) {
	uc, stores := setup(t, true)
	ctx := context.Background()
	alice := newAccount(t, stores, "a@example.com")

	added, err := uc.AddTask(ctx, alice, "buy milk")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if added.Complete {
		t.Error("new task must start incomplete")
	}
	if added.UserID != alice {
		t.Errorf("expected owner %s, got %s", alice, added.UserID)
	}

	list, err := uc.ListForOwner(ctx, alice)
	if err != nil {
		t.Fatalf("ListForOwner failed: %v", err)
	}
	assertCounts(t, list, 1, 0, 1)

	if _, err := uc.ToggleComplete(ctx, alice, added.ID); err != nil {
		t.Fatalf("ToggleComplete failed: %v", err)
	}
	list, _ = uc.ListForOwner(ctx, alice)
	assertCounts(t, list, 1, 1, 0)

	if err := uc.DeleteTask(ctx, alice, added.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	list, _ = uc.ListForOwner(ctx, alice)
	assertCounts(t, list, 0, 0, 0)
}

func TestToggleComplete_IsItsOwnInverse(t *testing.T) {
	uc, stores := setup(t, true)
	ctx := context.Background()
	owner := newAccount(t, stores, "a@example.com")

	added, err := uc.AddTask(ctx, owner, "water plants")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	first, err := uc.ToggleComplete(ctx, owner, added.ID)
	if err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	second, err := uc.ToggleComplete(ctx, owner, added.ID)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if first.Complete == added.Complete {
		t.Error("expected first toggle to change state")
	}
	if second.Complete != added.Complete {
		t.Error("expected second toggle to restore the original state")
	}
}

func TestNotFound(t *testing.T) {
	uc, stores := setup(t, true)
	ctx := context.Background()
	owner := newAccount(t, stores, "a@example.com")

	if _, err := uc.ToggleComplete(ctx, owner, "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("toggle: expected ErrTaskNotFound, got %v", err)
	}
	if err := uc.DeleteTask(ctx, owner, "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("delete: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := uc.GetTask(ctx, owner, "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("get: expected ErrTaskNotFound, got %v", err)
	}
}

func TestAddTask_Validation(t *testing.T) {
	uc, stores := setup(t, true)
	ctx := context.Background()
	owner := newAccount(t, stores, "a@example.com")

	for _, title := range []string{"", "   ", strings.Repeat("x", domain.TitleMaxLength+1)} {
		_, err := uc.AddTask(ctx, owner, title)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("title %q: expected ValidationError, got %v", title, err)
		}
	}

	added, err := uc.AddTask(ctx, owner, "  trimmed  ")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if added.Title != "trimmed" {
		t.Errorf("expected trimmed title, got %q", added.Title)
	}

	if _, err := uc.AddTask(ctx, "ghost", "orphan"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound for unknown owner, got %v", err)
	}
	if _, err := uc.AddTask(ctx, "", "anonymous"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for empty owner, got %v", err)
	}
}

func TestOwnership_Enforced(t *testing.T) {
	uc, stores := setup(t, true)
	ctx := context.Background()
	alice := newAccount(t, stores, "alice@example.com")
	bob := newAccount(t, stores, "bob@example.com")

	added, err := uc.AddTask(ctx, alice, "alice's task")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	if _, err := uc.ToggleComplete(ctx, bob, added.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("toggle by non-owner: expected ErrTaskNotFound, got %v", err)
	}
	if err := uc.DeleteTask(ctx, bob, added.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("delete by non-owner: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := uc.GetTask(ctx, bob, added.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("get by non-owner: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := uc.ToggleComplete(ctx, "", added.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("toggle without caller: expected ErrUnauthorized, got %v", err)
	}

	list, _ := uc.ListForOwner(ctx, alice)
	assertCounts(t, list, 1, 0, 1)
}

func TestOwnership_Unchecked(t *testing.T) {
	uc, stores := setup(t, false)
	ctx := context.Background()
	alice := newAccount(t, stores, "alice@example.com")
	bob := newAccount(t, stores, "bob@example.com")

	added, err := uc.AddTask(ctx, alice, "alice's task")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	toggled, err := uc.ToggleComplete(ctx, bob, added.ID)
	if err != nil {
		t.Fatalf("expected unchecked toggle to succeed, got %v", err)
	}
	if !toggled.Complete || toggled.UserID != alice {
		t.Errorf("unexpected toggled task %+v", toggled)
	}
	if err := uc.DeleteTask(ctx, bob, added.ID); err != nil {
		t.Fatalf("expected unchecked delete to succeed, got %v", err)
	}
}

func TestListForOwner_CountsHoldUnderRandomOperations(t *testing.T) {
	uc, stores := setup(t, true)
	ctx := context.Background()
	owners := []string{
		newAccount(t, stores, "alice@example.com"),
		newAccount(t, stores, "bob@example.com"),
	}
	rng := rand.New(rand.NewSource(42))

	for step := 0; step < 200; step++ {
		owner := owners[rng.Intn(len(owners))]
		list, err := uc.ListForOwner(ctx, owner)
		if err != nil {
			t.Fatalf("ListForOwner failed: %v", err)
		}

		switch op := rng.Intn(3); {
		case op == 0 || len(list.Tasks) == 0:
			if _, err := uc.AddTask(ctx, owner, "task"); err != nil {
				t.Fatalf("AddTask failed: %v", err)
			}
		case op == 1:
			target := list.Tasks[rng.Intn(len(list.Tasks))]
			if _, err := uc.ToggleComplete(ctx, owner, target.ID); err != nil {
				t.Fatalf("ToggleComplete failed: %v", err)
			}
		default:
			target := list.Tasks[rng.Intn(len(list.Tasks))]
			if err := uc.DeleteTask(ctx, owner, target.ID); err != nil {
				t.Fatalf("DeleteTask failed: %v", err)
			}
		}

		for _, o := range owners {
			after, err := uc.ListForOwner(ctx, o)
			if err != nil {
				t.Fatalf("ListForOwner failed: %v", err)
			}
			if after.Completed+after.Uncompleted != after.Total {
				t.Fatalf("step %d: counts do not add up: %+v", step, after)
			}
			for _, task := range after.Tasks {
				if task.UserID != o {
					t.Fatalf("step %d: list for %s returned task owned by %s", step, o, task.UserID)
				}
			}
		}
	}
}

type failingTasks struct {
	repository.TaskRepository
	err error
}

func (f failingTasks) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	return nil, f.err
}

func (f failingTasks) Delete(ctx context.Context, id, ownerID string) error {
	return f.err
}

type recordingBuffer struct {
	ops   []string
	tasks []domain.Task
	err   error
}

func (b *recordingBuffer) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if b.err != nil {
		return b.err
	}
	b.ops = append(b.ops, operation)
	b.tasks = append(b.tasks, *task)
	return nil
}

func TestBuffering_OnStoreFailure(t *testing.T) {
	stores := testutil.NewStores(t)
	owner := newAccount(t, stores, "a@example.com")
	ctx := context.Background()
	storeErr := errors.New("connection refused")

	buf := &recordingBuffer{}
	uc := task.New(failingTasks{TaskRepository: stores.Tasks, err: storeErr}, stores.Accounts, buf, nil, task.Config{EnforceOwnership: true})

	added, err := uc.AddTask(ctx, owner, "offline task")
	if err != nil {
		t.Fatalf("expected buffered add to succeed, got %v", err)
	}
	if added.ID == "" {
		t.Error("expected buffered task to carry an id")
	}
	if err := uc.DeleteTask(ctx, owner, "some-id"); err != nil {
		t.Fatalf("expected buffered delete to succeed, got %v", err)
	}

	want := []string{usecase.OperationCreate, usecase.OperationDelete}
	if len(buf.ops) != len(want) {
		t.Fatalf("expected ops %v, got %v", want, buf.ops)
	}
	for i := range want {
		if buf.ops[i] != want[i] {
			t.Errorf("op %d: expected %s, got %s", i, want[i], buf.ops[i])
		}
	}
	if buf.tasks[1].UserID != owner {
		t.Errorf("expected buffered delete to keep the owner scope, got %q", buf.tasks[1].UserID)
	}

	buf.err = errors.New("buffer full")
	if _, err := uc.AddTask(ctx, owner, "lost"); !errors.Is(err, storeErr) {
		t.Errorf("expected store error when buffering fails, got %v", err)
	}
}
