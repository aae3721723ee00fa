package repository

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/database"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/model"
)

// RegistrationRepo persists registrations.  Inserts only happen through
// CreateBulkTx inside a reservation transaction; rows are never updated.
type RegistrationRepo struct {
    db      *sql.DB
    dialect database.Dialect
}

// NewRegistrationRepo returns a RegistrationRepo bound to db.
func NewRegistrationRepo(db *sql.DB, dialect database.Dialect) *RegistrationRepo {
    return &RegistrationRepo{db: db, dialect: dialect}
}

// PaymentUsedTx reports whether any registration already carries the given
// order and payment ids.  Under MySQL's serializable isolation the read also
// locks the matching index range, so a concurrent replay of the same proof
// blocks behind this transaction.
func (r *RegistrationRepo) PaymentUsedTx(ctx context.Context, tx *sql.Tx, orderID, paymentID string) (bool, error) {
    const q = `SELECT COUNT(*) FROM registrations WHERE order_id = ? AND payment_id = ?`
    var n int64
    if err := tx.QueryRowContext(ctx, q, orderID, paymentID).Scan(&n); err != nil {
        return false, fmt.Errorf("check payment: %w", err)
    }
    return n > 0, nil
}

// CreateBulkTx inserts all registrations in a single statement within tx.
// CreatedAt must be set by the caller.  A unique key violation on
// (order_id, payment_id, event_name) is reported as ErrPaymentAlreadyUsed.
// Passing an empty slice has no effect and returns nil.
func (r *RegistrationRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, regs []model.Registration) error {
    if len(regs) == 0 {
        return nil
    }
    query := `INSERT INTO registrations (event_name, order_id, payment_id, price, user_id, created_at) VALUES `
    args := make([]interface{}, 0, len(regs)*6)
    for i, reg := range regs {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?, ?)"
        args = append(args, reg.EventName, reg.OrderID, reg.PaymentID, reg.Price, reg.UserID, reg.CreatedAt.UTC())
    }
    if _, err := tx.ExecContext(ctx, query, args...); err != nil {
        if r.dialect.IsDuplicate(err) {
            return ErrPaymentAlreadyUsed
        }
        return fmt.Errorf("insert registrations: %w", err)
    }
    return nil
}

// ListByUser returns the user's registrations, newest first.
func (r *RegistrationRepo) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
    const q = `SELECT id, event_name, order_id, payment_id, price, user_id, created_at
               FROM registrations
               WHERE user_id = ?
               ORDER BY created_at DESC, id DESC`
    return r.list(ctx, q, userID)
}

// ListByPayment returns the registrations recorded for one payment.
func (r *RegistrationRepo) ListByPayment(ctx context.Context, orderID, paymentID string) ([]model.Registration, error) {
    const q = `SELECT id, event_name, order_id, payment_id, price, user_id, created_at
               FROM registrations
               WHERE order_id = ? AND payment_id = ?
               ORDER BY event_name`
    return r.list(ctx, q, orderID, paymentID)
}

// CountByEvent returns the number of registrations for an event name.
func (r *RegistrationRepo) CountByEvent(ctx context.Context, eventName string) (int64, error) {
    var n int64
    err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_name = ?`, eventName).Scan(&n)
    return n, err
}

func (r *RegistrationRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Registration, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, fmt.Errorf("list registrations: %w", err)
    }
    defer rows.Close()
    regs := []model.Registration{}
    for rows.Next() {
        var (
            reg     model.Registration
            created time.Time
        )
        if err := rows.Scan(&reg.ID, &reg.EventName, &reg.OrderID, &reg.PaymentID, &reg.Price, &reg.UserID, &created); err != nil {
            return nil, fmt.Errorf("scan registration: %w", err)
        }
        reg.CreatedAt = created.UTC()
        regs = append(regs, reg)
    }
    return regs, rows.Err()
}
