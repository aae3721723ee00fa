package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Dialect captures the differences between the supported SQL engines that
// matter to the reservation path: how to request row locks, which isolation
// level to open transactions with, and how to recognise the errors that get
// classified instead of reported as internal failures.
type Dialect struct {
	Name       string
	LockClause string // appended to SELECTs that must lock the rows they read
	Isolation  sql.IsolationLevel
}

var (
	MySQL  = Dialect{Name: "mysql", LockClause: " FOR UPDATE", Isolation: sql.LevelSerializable}
	SQLite = Dialect{Name: "sqlite", Isolation: sql.LevelDefault}
)

// DialectFor returns the dialect registered under driver.
func DialectFor(driver string) (Dialect, bool) {
	switch driver {
	case MySQL.Name:
		return MySQL, true
	case SQLite.Name:
		return SQLite, true
	}
	return Dialect{}, false
}

// TxOptions returns the options reservation transactions are opened with.
func (d Dialect) TxOptions() *sql.TxOptions {
	return &sql.TxOptions{Isolation: d.Isolation}
}

// IsDuplicate reports whether err is a unique key violation.
func (d Dialect) IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsDeadlock reports whether err means the engine chose this transaction
// as a deadlock victim.  The whole transaction was rolled back and can be
// run again.  SQLite serializes writers and never reports one.
func (d Dialect) IsDeadlock(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1213
}

// IsLockTimeout reports whether err means the engine gave up waiting for a
// lock held by another transaction.
func (d Dialect) IsLockTimeout(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1205
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
