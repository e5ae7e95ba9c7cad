// Package sqlxrepos implements the core repositories with plain SQL over sqlx.
// Queries are written with "?" placeholders and rebound for the executor's driver.
package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/trezcool/academia/core"
)

type baseRepository struct {
	exec core.DBExecutor
}

func (repo baseRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps "no rows" to notFound and wraps anything else with msg.
func trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows || errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// isUniqueViolation reports whether err comes from a UNIQUE or PRIMARY KEY constraint.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// whereBuilder collects AND-ed conditions.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (wb *whereBuilder) add(cond string, args ...interface{}) {
	wb.conds = append(wb.conds, cond)
	wb.args = append(wb.args, args...)
}

func (wb whereBuilder) String() string {
	if len(wb.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(wb.conds, " AND ")
}
