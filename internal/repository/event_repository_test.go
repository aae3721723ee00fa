package repository

import (
    "context"
    "errors"
    "testing"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/database"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/model"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/testutil"
)

func TestEventRepo_LockForReservationTx(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Chess", "100", testutil.Limit(2), true)
    testutil.InsertEvent(t, db, "Expo", "0", nil, true)
    repo := NewEventRepo(db, database.SQLite)
    ctx := context.Background()

    if _, err := db.Exec(`INSERT INTO registrations (event_name, order_id, payment_id, price, user_id, created_at)
        VALUES ('Chess', 'o1', 'p1', '100', 'u1', CURRENT_TIMESTAMP)`); err != nil {
        t.Fatalf("seed registration: %v", err)
    }

    tx, err := db.BeginTx(ctx, database.SQLite.TxOptions())
    if err != nil {
        t.Fatalf("begin: %v", err)
    }
    defer tx.Rollback()

    locked, err := repo.LockForReservationTx(ctx, tx, []string{"Expo", "Chess", "Ghost"})
    if err != nil {
        t.Fatalf("lock: %v", err)
    }
    if len(locked) != 2 {
        t.Fatalf("expected 2 locked events, got %d", len(locked))
    }
    chess := locked["Chess"]
    if chess.Sold != 1 || chess.Price != 10000 || chess.TicketLimit == nil || *chess.TicketLimit != 2 {
        t.Fatalf("unexpected Chess row %+v", chess)
    }
    if expo := locked["Expo"]; !expo.Unlimited() || expo.Sold != 0 {
        t.Fatalf("unexpected Expo row %+v", expo)
    }
}

func TestCheckAvailability(t *testing.T) {
    t.Parallel()

    limit := int64(1)
    locked := map[string]LockedEvent{
        "Open":   {Event: model.Event{Name: "Open", Active: true}},
        "Closed": {Event: model.Event{Name: "Closed", Active: false}},
        "Full":   {Event: model.Event{Name: "Full", Active: true, TicketLimit: &limit}, Sold: 1},
    }

    tests := []struct {
        name  string
        names []string
        want  error
        event string
    }{
        {"all available", []string{"Open"}, nil, ""},
        {"missing first", []string{"Ghost", "Closed"}, ErrEventNotFound, "Ghost"},
        {"inactive", []string{"Open", "Closed", "Full"}, ErrEventInactive, "Closed"},
        {"sold out", []string{"Open", "Full"}, ErrSoldOut, "Full"},
    }
    for _, tt := range tests {
        tt := tt
        t.Run(tt.name, func(t *testing.T) {
            t.Parallel()
            err := CheckAvailability(tt.names, locked)
            if tt.want == nil {
                if err != nil {
                    t.Fatalf("expected nil, got %v", err)
                }
                return
            }
            if !errors.Is(err, tt.want) {
                t.Fatalf("expected %v, got %v", tt.want, err)
            }
            var evErr *EventError
            if !errors.As(err, &evErr) || evErr.Event != tt.event {
                t.Fatalf("expected event %q, got %v", tt.event, err)
            }
        })
    }
}

func TestEventRepo_ListActive(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Dance", "249.50", testutil.Limit(3), true)
    testutil.InsertEvent(t, db, "Chess", "100", nil, true)
    testutil.InsertEvent(t, db, "Closed", "100", nil, false)
    if _, err := db.Exec(`INSERT INTO registrations (event_name, order_id, payment_id, price, user_id, created_at)
        VALUES ('Dance', 'o1', 'p1', '249.50', 'u1', CURRENT_TIMESTAMP)`); err != nil {
        t.Fatalf("seed registration: %v", err)
    }

    items, err := NewEventRepo(db, database.SQLite).ListActive(context.Background())
    if err != nil {
        t.Fatalf("list: %v", err)
    }
    if len(items) != 2 || items[0].Name != "Chess" || items[1].Name != "Dance" {
        t.Fatalf("unexpected listing %+v", items)
    }
    if items[0].Remaining != nil {
        t.Fatalf("expected unlimited Chess")
    }
    if items[1].Sold != 1 || items[1].Remaining == nil || *items[1].Remaining != 2 || items[1].Price != 24950 {
        t.Fatalf("unexpected Dance availability %+v", items[1])
    }
}

func TestEventRepo_AvailabilityByNames(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Chess", "100", nil, true)
    testutil.InsertEvent(t, db, "Final", "50", testutil.Limit(1), true)
    if _, err := db.Exec(`INSERT INTO registrations (event_name, order_id, payment_id, price, user_id, created_at)
        VALUES ('Final', 'o1', 'p1', '50', 'u1', CURRENT_TIMESTAMP)`); err != nil {
        t.Fatalf("seed registration: %v", err)
    }

    got, err := NewEventRepo(db, database.SQLite).AvailabilityByNames(context.Background(), []string{"Chess", "Final", "Ghost"})
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if len(got) != 2 {
        t.Fatalf("expected 2 events, got %+v", got)
    }
    if c := got["Chess"]; c.Price != 10000 || c.Sold != 0 || c.Remaining != nil {
        t.Fatalf("unexpected Chess %+v", c)
    }
    if f := got["Final"]; f.Sold != 1 || !f.SoldOut(f.Sold) {
        t.Fatalf("expected Final sold out, got %+v", f)
    }
}
