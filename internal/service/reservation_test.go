package service

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "sync"
    "testing"
    "time"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/clock"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/database"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/queue"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/repository"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/testutil"
)

var testNow = time.Date(2025, 5, 10, 9, 30, 0, 0, time.UTC)

type recordingNotifier struct {
    mu     sync.Mutex
    events []queue.RegistrationConfirmedEvent
    err    error
}

func (n *recordingNotifier) RegistrationConfirmed(_ context.Context, ev queue.RegistrationConfirmedEvent) error {
    n.mu.Lock()
    defer n.mu.Unlock()
    n.events = append(n.events, ev)
    return n.err
}

func newReservationService(t *testing.T, db *sql.DB, dialect database.Dialect, notifier Notifier) *ReservationService {
    t.Helper()
    svc := NewReservationService(
        repository.NewEventRepo(db, dialect),
        repository.NewRegistrationRepo(db, dialect),
        repository.NewUserRepo(db),
        notifier,
        clock.NewFixed(testNow),
        5*time.Second,
    )
    t.Cleanup(svc.Wait)
    return svc
}

func reserve(svc *ReservationService, user, order string, events ...string) (ReserveResult, error) {
    return svc.Reserve(context.Background(), ReserveInput{
        UserID:     user,
        EventNames: events,
        OrderID:    order,
        PaymentID:  "pay_" + order,
    })
}

func expectKind(t *testing.T, err error, want Kind, event string) {
    t.Helper()
    var se *Error
    if !errors.As(err, &se) {
        t.Fatalf("expected *service.Error of kind %s, got %v", want, err)
    }
    if se.Kind != want {
        t.Fatalf("expected kind %s, got %s (%v)", want, se.Kind, err)
    }
    if se.Event != event {
        t.Fatalf("expected event %q, got %q", event, se.Event)
    }
}

func TestReserve_SingleEvent(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Hackathon", "500", testutil.Limit(10), true)
    svc := newReservationService(t, db, database.SQLite, nil)

    res, err := reserve(svc, "u1", "order_1", "Hackathon")
    if err != nil {
        t.Fatalf("expected no error, got %v", err)
    }
    if res.RegistrationCount != 1 {
        t.Fatalf("expected 1 registration, got %d", res.RegistrationCount)
    }
    if res.TotalCharged != 50000 {
        t.Fatalf("expected total 500.00, got %s", res.TotalCharged)
    }
    reg := res.Registrations[0]
    if reg.EventName != "Hackathon" || reg.UserID != "u1" || reg.OrderID != "order_1" || reg.PaymentID != "pay_order_1" {
        t.Fatalf("unexpected registration %+v", reg)
    }
    if !reg.CreatedAt.Equal(testNow) {
        t.Fatalf("expected created_at %s, got %s", testNow, reg.CreatedAt)
    }
    if n := testutil.CountRegistrations(t, db, "Hackathon"); n != 1 {
        t.Fatalf("expected 1 stored registration, got %d", n)
    }
}

func TestReserve_LastTicketRace(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Solo Quiz", "100", testutil.Limit(1), true)
    svc := newReservationService(t, db, database.SQLite, nil)

    var wg sync.WaitGroup
    errs := make([]error, 2)
    start := make(chan struct{})
    for i := 0; i < 2; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            <-start
            _, errs[i] = reserve(svc, fmt.Sprintf("u%d", i), fmt.Sprintf("order_%d", i), "Solo Quiz")
        }(i)
    }
    close(start)
    wg.Wait()

    var ok, soldOut int
    for _, err := range errs {
        switch {
        case err == nil:
            ok++
        case KindOf(err) == KindSoldOut:
            soldOut++
        default:
            t.Fatalf("unexpected error: %v", err)
        }
    }
    if ok != 1 || soldOut != 1 {
        t.Fatalf("expected 1 success and 1 sold_out, got %d and %d", ok, soldOut)
    }
    if n := testutil.CountRegistrations(t, db, "Solo Quiz"); n != 1 {
        t.Fatalf("expected exactly 1 registration, got %d", n)
    }
}

func TestReserve_ConcurrentNeverOversells(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    const limit = 5
    testutil.InsertEvent(t, db, "Robo Wars", "250", testutil.Limit(limit), true)
    svc := newReservationService(t, db, database.SQLite, nil)

    const workers = 50
    var (
        wg        sync.WaitGroup
        mu        sync.Mutex
        successes int
    )
    for i := 0; i < workers; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, err := reserve(svc, fmt.Sprintf("u%d", i), fmt.Sprintf("order_%d", i), "Robo Wars")
            if err == nil {
                mu.Lock()
                successes++
                mu.Unlock()
                return
            }
            if KindOf(err) != KindSoldOut {
                t.Errorf("worker %d: unexpected error %v", i, err)
            }
        }(i)
    }
    wg.Wait()

    if successes != limit {
        t.Fatalf("expected %d successes, got %d", limit, successes)
    }
    if n := testutil.CountRegistrations(t, db, "Robo Wars"); n != limit {
        t.Fatalf("expected %d registrations, got %d", limit, n)
    }
}

func TestReserve_MultiEventIsAtomic(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Chess", "100", testutil.Limit(5), true)
    testutil.InsertEvent(t, db, "Dance", "200", testutil.Limit(1), true)
    svc := newReservationService(t, db, database.SQLite, nil)

    if _, err := reserve(svc, "u1", "order_1", "Dance"); err != nil {
        t.Fatalf("seed reservation: %v", err)
    }

    _, err := reserve(svc, "u2", "order_2", "Chess", "Dance")
    expectKind(t, err, KindSoldOut, "Dance")

    if n := testutil.CountRegistrations(t, db, "Chess"); n != 0 {
        t.Fatalf("expected no Chess registrations after rollback, got %d", n)
    }
}

func TestReserve_MultiEventTotals(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Chess", "100", nil, true)
    testutil.InsertEvent(t, db, "Dance", "249.50", testutil.Limit(3), true)
    svc := newReservationService(t, db, database.SQLite, nil)

    res, err := reserve(svc, "u1", "order_1", "Chess", "Dance")
    if err != nil {
        t.Fatalf("expected no error, got %v", err)
    }
    if res.RegistrationCount != 2 {
        t.Fatalf("expected 2 registrations, got %d", res.RegistrationCount)
    }
    if res.TotalCharged != 34950 {
        t.Fatalf("expected total 349.50, got %s", res.TotalCharged)
    }
}

func TestReserve_Rejections(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Open", "100", testutil.Limit(5), true)
    testutil.InsertEvent(t, db, "Closed", "100", testutil.Limit(5), false)
    svc := newReservationService(t, db, database.SQLite, nil)

    tests := []struct {
        name  string
        in    ReserveInput
        kind  Kind
        event string
    }{
        {"inactive event", ReserveInput{UserID: "u1", EventNames: []string{"Open", "Closed"}, OrderID: "o1", PaymentID: "p1"}, KindInactive, "Closed"},
        {"unknown event", ReserveInput{UserID: "u1", EventNames: []string{"Open", "Ghost"}, OrderID: "o2", PaymentID: "p2"}, KindNotFound, "Ghost"},
        {"no events", ReserveInput{UserID: "u1", OrderID: "o3", PaymentID: "p3"}, KindInvalidInput, ""},
        {"blank event", ReserveInput{UserID: "u1", EventNames: []string{" "}, OrderID: "o4", PaymentID: "p4"}, KindInvalidInput, ""},
        {"missing user", ReserveInput{EventNames: []string{"Open"}, OrderID: "o5", PaymentID: "p5"}, KindInvalidInput, ""},
        {"missing payment", ReserveInput{UserID: "u1", EventNames: []string{"Open"}, OrderID: "o6"}, KindInvalidInput, ""},
    }
    for _, tt := range tests {
        tt := tt
        t.Run(tt.name, func(t *testing.T) {
            _, err := svc.Reserve(context.Background(), tt.in)
            expectKind(t, err, tt.kind, tt.event)
        })
    }
    if n := testutil.CountRegistrations(t, db, ""); n != 0 {
        t.Fatalf("expected no registrations, got %d", n)
    }
}

func TestReserve_PriceSnapshot(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Quiz", "150", nil, true)
    svc := newReservationService(t, db, database.SQLite, nil)

    if _, err := reserve(svc, "u1", "order_1", "Quiz"); err != nil {
        t.Fatalf("reserve: %v", err)
    }
    testutil.SetPrice(t, db, "Quiz", "999.99")

    regs, err := repository.NewRegistrationRepo(db, database.SQLite).ListByUser(context.Background(), "u1")
    if err != nil {
        t.Fatalf("list: %v", err)
    }
    if len(regs) != 1 || regs[0].Price != 15000 {
        t.Fatalf("expected snapshot price 150.00, got %+v", regs)
    }

    res, err := reserve(svc, "u2", "order_2", "Quiz")
    if err != nil {
        t.Fatalf("reserve after price change: %v", err)
    }
    if res.TotalCharged != 99999 {
        t.Fatalf("expected new price 999.99, got %s", res.TotalCharged)
    }
}

func TestReserve_DuplicateNamesCollapse(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Hackathon", "500", testutil.Limit(10), true)
    svc := newReservationService(t, db, database.SQLite, nil)

    res, err := reserve(svc, "u1", "order_1", "Hackathon", "Hackathon", " Hackathon ")
    if err != nil {
        t.Fatalf("expected no error, got %v", err)
    }
    if res.RegistrationCount != 1 || res.TotalCharged != 50000 {
        t.Fatalf("expected one registration for 500.00, got %d for %s", res.RegistrationCount, res.TotalCharged)
    }
}

func TestReserve_UnlimitedNeverSoldOut(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Expo", "0", nil, true)
    svc := newReservationService(t, db, database.SQLite, nil)

    for i := 0; i < 25; i++ {
        if _, err := reserve(svc, fmt.Sprintf("u%d", i), fmt.Sprintf("order_%d", i), "Expo"); err != nil {
            t.Fatalf("reservation %d: %v", i, err)
        }
    }
    if n := testutil.CountRegistrations(t, db, "Expo"); n != 25 {
        t.Fatalf("expected 25 registrations, got %d", n)
    }
}

func TestReserve_ReplayRejected(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Hackathon", "500", testutil.Limit(10), true)
    testutil.InsertEvent(t, db, "Quiz", "100", testutil.Limit(10), true)
    svc := newReservationService(t, db, database.SQLite, nil)

    if _, err := reserve(svc, "u1", "order_1", "Hackathon"); err != nil {
        t.Fatalf("first reservation: %v", err)
    }
    _, err := reserve(svc, "u1", "order_1", "Hackathon")
    expectKind(t, err, KindAlreadyProcessed, "")

    _, err = reserve(svc, "u1", "order_1", "Quiz")
    expectKind(t, err, KindAlreadyProcessed, "")

    if n := testutil.CountRegistrations(t, db, ""); n != 1 {
        t.Fatalf("expected 1 registration, got %d", n)
    }
}

func TestReserve_CancelledContextWritesNothing(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Hackathon", "500", testutil.Limit(10), true)
    svc := newReservationService(t, db, database.SQLite, nil)

    ctx, cancel := context.WithCancel(context.Background())
    cancel()
    _, err := svc.Reserve(ctx, ReserveInput{UserID: "u1", EventNames: []string{"Hackathon"}, OrderID: "o1", PaymentID: "p1"})
    if err == nil {
        t.Fatalf("expected error for cancelled context")
    }
    if k := KindOf(err); !k.Retryable() {
        t.Fatalf("expected a retryable kind, got %s", k)
    }
    if n := testutil.CountRegistrations(t, db, ""); n != 0 {
        t.Fatalf("expected no registrations, got %d", n)
    }
}

func TestReserve_NotifiesAfterCommit(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Hackathon", "500", testutil.Limit(10), true)
    testutil.InsertUser(t, db, "u1", "Asha", "asha@example.com")
    n := &recordingNotifier{}
    svc := newReservationService(t, db, database.SQLite, n)

    if _, err := reserve(svc, "u1", "order_1", "Hackathon"); err != nil {
        t.Fatalf("reserve: %v", err)
    }
    svc.Wait()

    n.mu.Lock()
    defer n.mu.Unlock()
    if len(n.events) != 1 {
        t.Fatalf("expected 1 notification, got %d", len(n.events))
    }
    ev := n.events[0]
    if ev.RecipientEmail != "asha@example.com" || ev.RecipientName != "Asha" || ev.Total != "500.00" {
        t.Fatalf("unexpected notification %+v", ev)
    }
    if len(ev.EventNames) != 1 || ev.EventNames[0] != "Hackathon" {
        t.Fatalf("unexpected event names %v", ev.EventNames)
    }
}

func TestReserve_NotifierFailureDoesNotFailReservation(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Hackathon", "500", testutil.Limit(10), true)
    testutil.InsertUser(t, db, "u1", "Asha", "asha@example.com")
    svc := newReservationService(t, db, database.SQLite, &recordingNotifier{err: errors.New("broker down")})

    if _, err := reserve(svc, "u1", "order_1", "Hackathon"); err != nil {
        t.Fatalf("expected reservation to succeed, got %v", err)
    }
    svc.Wait()
    if n := testutil.CountRegistrations(t, db, "Hackathon"); n != 1 {
        t.Fatalf("expected registration to be kept, got %d", n)
    }
}

func TestReserve_UnknownUserSkipsNotification(t *testing.T) {
    t.Parallel()
    db := testutil.NewSQLiteDB(t)
    testutil.InsertEvent(t, db, "Hackathon", "500", nil, true)
    n := &recordingNotifier{}
    svc := newReservationService(t, db, database.SQLite, n)

    if _, err := reserve(svc, "ghost", "order_1", "Hackathon"); err != nil {
        t.Fatalf("reserve: %v", err)
    }
    svc.Wait()
    if len(n.events) != 0 {
        t.Fatalf("expected no notification, got %d", len(n.events))
    }
}

func TestReserve_MySQL(t *testing.T) {
    db := testutil.NewMySQLDB(t)
    testutil.InsertEvent(t, db, "Solo Quiz", "100", testutil.Limit(3), true)
    svc := newReservationService(t, db, database.MySQL, nil)

    const workers = 20
    var (
        wg        sync.WaitGroup
        mu        sync.Mutex
        successes int
    )
    for i := 0; i < workers; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, err := reserve(svc, fmt.Sprintf("u%d", i), fmt.Sprintf("order_%d", i), "Solo Quiz")
            if err == nil {
                mu.Lock()
                successes++
                mu.Unlock()
                return
            }
            if k := KindOf(err); k != KindSoldOut && !k.Retryable() {
                t.Errorf("worker %d: unexpected error %v", i, err)
            }
        }(i)
    }
    wg.Wait()

    if n := testutil.CountRegistrations(t, db, "Solo Quiz"); n > 3 || int(n) != successes {
        t.Fatalf("expected at most 3 registrations matching %d successes, got %d", successes, n)
    }
}
