// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"testing"

	sqliteinfra "github.com/fastygo/todo/internal/infrastructure/sqlite"
	"github.com/fastygo/todo/repository"
	sqliterepo "github.com/fastygo/todo/repository/sqlite"
)

// Stores bundles the repositories backed by one in-memory SQLite database.
type Stores struct {
	Accounts repository.AccountRepository
	Tasks    repository.TaskRepository
}

// NewStores opens a migrated in-memory SQLite database that is closed when the test ends.
func NewStores(t *testing.T) Stores {
	t.Helper()

	db, err := sqliteinfra.Open(context.Background(), sqliteinfra.MemoryPath, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sqliteinfra.RunMigrations(db, nil); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	return Stores{
		Accounts: sqliterepo.NewAccountRepository(db),
		Tasks:    sqliterepo.NewTaskRepository(db),
	}
}
