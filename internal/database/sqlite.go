package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens a file-backed SQLite database for single-node
// deployments and tests.  The pool is limited to one connection so that
// transactions are serialized: SQLite has no row locks, and a single writer
// gives the same exclusion the MySQL FOR UPDATE path provides.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	return openAndPing("sqlite", dsn, 1)
}
