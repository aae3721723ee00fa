// Package testutil provides database fixtures shared by package tests.
package testutil

import (
    "context"
    "database/sql"
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/database"
)

// NewSQLiteDB returns a migrated SQLite database in a fresh temp dir.
func NewSQLiteDB(t *testing.T) *sql.DB {
    t.Helper()
    db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
    if err != nil {
        t.Fatalf("open sqlite: %v", err)
    }
    t.Cleanup(func() { _ = db.Close() })
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := database.Migrate(ctx, db, database.SQLite); err != nil {
        t.Fatalf("migrate sqlite: %v", err)
    }
    return db
}

// NewMySQLDB connects to TEST_MYSQL_DSN, applies migrations and empties the
// tables.  The test is skipped when the variable is unset or the server
// cannot be reached.
func NewMySQLDB(t *testing.T) *sql.DB {
    t.Helper()
    dsn := os.Getenv("TEST_MYSQL_DSN")
    if dsn == "" {
        t.Skip("skipping MySQL integration tests: TEST_MYSQL_DSN not set")
    }
    db, err := sql.Open("mysql", dsn)
    if err != nil {
        t.Fatalf("open mysql: %v", err)
    }
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        _ = db.Close()
        t.Skipf("skipping MySQL integration tests: %v", err)
    }
    t.Cleanup(func() { _ = db.Close() })
    db.SetMaxOpenConns(25)

    if err := database.Migrate(ctx, db, database.MySQL); err != nil {
        t.Fatalf("migrate mysql: %v", err)
    }
    for _, table := range []string{"registrations", "events", "users"} {
        if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
            t.Fatalf("clear %s: %v", table, err)
        }
    }
    return db
}

// Limit returns a pointer to n for use as a ticket limit.
func Limit(n int64) *int64 { return &n }

// InsertEvent creates an event.  A nil limit means unlimited.
func InsertEvent(t *testing.T, db *sql.DB, name, price string, limit *int64, active bool) {
    t.Helper()
    var lim interface{}
    if limit != nil {
        lim = *limit
    }
    if _, err := db.Exec(`INSERT INTO events (name, price, ticket_limit, active) VALUES (?, ?, ?, ?)`,
        name, price, lim, active); err != nil {
        t.Fatalf("insert event %s: %v", name, err)
    }
}

// SetPrice changes an event's current price.
func SetPrice(t *testing.T, db *sql.DB, name, price string) {
    t.Helper()
    if _, err := db.Exec(`UPDATE events SET price = ? WHERE name = ?`, price, name); err != nil {
        t.Fatalf("set price %s: %v", name, err)
    }
}

// InsertUser creates a user row for contact lookups.
func InsertUser(t *testing.T, db *sql.DB, id, name, email string) {
    t.Helper()
    if _, err := db.Exec(`INSERT INTO users (id, name, email) VALUES (?, ?, ?)`, id, name, email); err != nil {
        t.Fatalf("insert user %s: %v", id, err)
    }
}

// CountRegistrations returns how many registrations exist for an event, or
// in total when name is empty.
func CountRegistrations(t *testing.T, db *sql.DB, name string) int64 {
    t.Helper()
    var (
        n   int64
        err error
    )
    if name == "" {
        err = db.QueryRow(`SELECT COUNT(*) FROM registrations`).Scan(&n)
    } else {
        err = db.QueryRow(`SELECT COUNT(*) FROM registrations WHERE event_name = ?`, name).Scan(&n)
    }
    if err != nil {
        t.Fatalf("count registrations: %v", err)
    }
    return n
}
