package sqlite

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

func isConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == code
}

type scanner interface {
	Scan(dest ...interface{}) error
}
