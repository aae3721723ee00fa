package repository

import (
    "context"
    "database/sql"
    "fmt"
    "sort"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/database"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/model"
)

// EventRepo reads events and their sold counts.  It is the capacity ledger
// for the reservation path: LockForReservationTx holds write locks on the
// requested event rows for the remainder of the caller's transaction.
type EventRepo struct {
    db      *sql.DB
    dialect database.Dialect
}

// NewEventRepo returns an EventRepo bound to db using the given dialect.
func NewEventRepo(db *sql.DB, dialect database.Dialect) *EventRepo {
    return &EventRepo{db: db, dialect: dialect}
}

// DB exposes the underlying handle so callers can open transactions.
func (r *EventRepo) DB() *sql.DB { return r.db }

// Dialect returns the SQL dialect the repository was built for.
func (r *EventRepo) Dialect() database.Dialect { return r.dialect }

// LockedEvent is an event row read under lock together with the number of
// registrations counted after the lock was acquired.
type LockedEvent struct {
    model.Event
    Sold int64
}

// LockForReservationTx locks the event rows named in names and then counts
// their registrations inside the same transaction.  The lock is taken
// before the count so two transactions can never both observe the same
// last free ticket.  Names are locked in sorted order so overlapping
// requests cannot deadlock on each other.  Missing names are simply absent
// from the returned map; CheckAvailability reports them.
func (r *EventRepo) LockForReservationTx(ctx context.Context, tx *sql.Tx, names []string) (map[string]LockedEvent, error) {
    if len(names) == 0 {
        return map[string]LockedEvent{}, nil
    }
    sorted := append([]string(nil), names...)
    sort.Strings(sorted)
    args := stringArgs(sorted)

    q := `SELECT name, price, ticket_limit, active FROM events WHERE name IN (` +
        placeholders(len(sorted)) + `) ORDER BY name` + r.dialect.LockClause
    rows, err := tx.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, fmt.Errorf("lock events: %w", err)
    }
    locked := make(map[string]LockedEvent, len(sorted))
    for rows.Next() {
        e, err := scanEvent(rows)
        if err != nil {
            rows.Close()
            return nil, fmt.Errorf("scan event: %w", err)
        }
        locked[e.Name] = LockedEvent{Event: e}
    }
    if err := rows.Close(); err != nil {
        return nil, err
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(locked) == 0 {
        return locked, nil
    }

    counts, err := countByEvent(ctx, tx, sorted)
    if err != nil {
        return nil, err
    }
    for name, le := range locked {
        le.Sold = counts[name]
        locked[name] = le
    }
    return locked, nil
}

// CheckAvailability validates every requested event in request order and
// returns an *EventError for the first one that is missing, inactive or
// sold out.  It performs no I/O.
func CheckAvailability(names []string, locked map[string]LockedEvent) error {
    for _, name := range names {
        le, ok := locked[name]
        switch {
        case !ok:
            return &EventError{Event: name, Err: ErrEventNotFound}
        case !le.Active:
            return &EventError{Event: name, Err: ErrEventInactive}
        case le.SoldOut(le.Sold):
            return &EventError{Event: name, Err: ErrSoldOut}
        }
    }
    return nil
}

// AvailabilityByNames returns the named events with their sold counts,
// without locking.  It is used to quote a checkout total before payment;
// the authoritative check happens again under lock when the reservation is
// made.  Missing names are absent from the result.
func (r *EventRepo) AvailabilityByNames(ctx context.Context, names []string) (map[string]model.EventAvailability, error) {
    out := make(map[string]model.EventAvailability, len(names))
    if len(names) == 0 {
        return out, nil
    }
    q := `SELECT e.name, e.price, e.ticket_limit, e.active, COUNT(rg.id)
          FROM events e
          LEFT JOIN registrations rg ON rg.event_name = e.name
          WHERE e.name IN (` + placeholders(len(names)) + `)
          GROUP BY e.name, e.price, e.ticket_limit, e.active`
    rows, err := r.db.QueryContext(ctx, q, stringArgs(names)...)
    if err != nil {
        return nil, fmt.Errorf("get events: %w", err)
    }
    defer rows.Close()
    for rows.Next() {
        av, err := scanAvailability(rows)
        if err != nil {
            return nil, fmt.Errorf("scan event: %w", err)
        }
        out[av.Name] = av
    }
    return out, rows.Err()
}

// ListActive returns active events ordered by name with their sold counts
// and remaining capacity.
func (r *EventRepo) ListActive(ctx context.Context) ([]model.EventAvailability, error) {
    const q = `SELECT e.name, e.price, e.ticket_limit, e.active, COUNT(rg.id)
               FROM events e
               LEFT JOIN registrations rg ON rg.event_name = e.name
               WHERE e.active = 1
               GROUP BY e.name, e.price, e.ticket_limit, e.active
               ORDER BY e.name`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, fmt.Errorf("list events: %w", err)
    }
    defer rows.Close()
    items := []model.EventAvailability{}
    for rows.Next() {
        av, err := scanAvailability(rows)
        if err != nil {
            return nil, fmt.Errorf("scan event: %w", err)
        }
        items = append(items, av)
    }
    return items, rows.Err()
}

type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanEvent(s rowScanner) (model.Event, error) {
    var (
        e     model.Event
        limit sql.NullInt64
    )
    if err := s.Scan(&e.Name, &e.Price, &limit, &e.Active); err != nil {
        return model.Event{}, err
    }
    if limit.Valid {
        l := limit.Int64
        e.TicketLimit = &l
    }
    return e, nil
}

func scanAvailability(s rowScanner) (model.EventAvailability, error) {
    var (
        e     model.Event
        limit sql.NullInt64
        sold  int64
    )
    if err := s.Scan(&e.Name, &e.Price, &limit, &e.Active, &sold); err != nil {
        return model.EventAvailability{}, err
    }
    if limit.Valid {
        l := limit.Int64
        e.TicketLimit = &l
    }
    return model.NewEventAvailability(e, sold), nil
}

func countByEvent(ctx context.Context, tx *sql.Tx, names []string) (map[string]int64, error) {
    q := `SELECT event_name, COUNT(*) FROM registrations WHERE event_name IN (` +
        placeholders(len(names)) + `) GROUP BY event_name`
    rows, err := tx.QueryContext(ctx, q, stringArgs(names)...)
    if err != nil {
        return nil, fmt.Errorf("count registrations: %w", err)
    }
    defer rows.Close()
    counts := make(map[string]int64, len(names))
    for rows.Next() {
        var (
            name string
            n    int64
        )
        if err := rows.Scan(&name, &n); err != nil {
            return nil, fmt.Errorf("scan count: %w", err)
        }
        counts[name] = n
    }
    return counts, rows.Err()
}
