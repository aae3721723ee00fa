package service

import (
    "context"
    "database/sql"
    "errors"
    "log/slog"
    "strings"
    "sync"
    "time"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/clock"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/database"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/model"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/queue"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/repository"
)

const (
    maxIDLength        = 64
    maxEventNameLength = 191
    maxEventsPerOrder  = 50

    defaultTxTimeout     = 5 * time.Second
    defaultNotifyTimeout = 10 * time.Second

    // deadlockAttempts bounds how often a transaction chosen as a deadlock
    // victim is run again.
    deadlockAttempts = 2
)

// Notifier receives a confirmation once a reservation has committed.
type Notifier interface {
    RegistrationConfirmed(ctx context.Context, ev queue.RegistrationConfirmedEvent) error
}

// UserLookup resolves contact details for a user id.
type UserLookup interface {
    GetByID(ctx context.Context, id string) (model.User, error)
}

// ReserveInput identifies the buyer, the events to book and the payment
// proving they were paid for.  The payment signature must already have been
// verified by the caller.
type ReserveInput struct {
    UserID     string
    EventNames []string
    OrderID    string
    PaymentID  string
}

// ReserveResult describes a committed reservation.
type ReserveResult struct {
    RegistrationCount int                  `json:"registration_count"`
    TotalCharged      model.Amount         `json:"total_charged"`
    Registrations     []model.Registration `json:"registrations"`
}

// ReservationService books events against a verified payment.  All
// registrations for one payment are written in a single transaction that
// holds row locks on the requested events, so an event's ticket limit is
// never exceeded no matter how many requests race for it.
type ReservationService struct {
    db            *sql.DB
    dialect       database.Dialect
    events        *repository.EventRepo
    regs          *repository.RegistrationRepo
    users         UserLookup
    notifier      Notifier
    clock         clock.Clock
    txTimeout     time.Duration
    notifyTimeout time.Duration

    pending sync.WaitGroup
}

// NewReservationService wires the coordinator.  users and notifier may be
// nil, in which case no confirmation is sent.  A non-positive txTimeout
// falls back to five seconds.
func NewReservationService(events *repository.EventRepo, regs *repository.RegistrationRepo, users UserLookup, notifier Notifier, clk clock.Clock, txTimeout time.Duration) *ReservationService {
    if events == nil || regs == nil {
        panic("nil repository passed to NewReservationService")
    }
    if clk == nil {
        clk = clock.NewSystem()
    }
    if txTimeout <= 0 {
        txTimeout = defaultTxTimeout
    }
    return &ReservationService{
        db:            events.DB(),
        dialect:       events.Dialect(),
        events:        events,
        regs:          regs,
        users:         users,
        notifier:      notifier,
        clock:         clk,
        txTimeout:     txTimeout,
        notifyTimeout: defaultNotifyTimeout,
    }
}

// Reserve books every event in in.EventNames for in.UserID, or none of
// them.  Duplicate names collapse to one registration.  On success the
// confirmation is sent in the background; its outcome never affects the
// result.
func (s *ReservationService) Reserve(ctx context.Context, in ReserveInput) (ReserveResult, error) {
    in, err := normalizeReserveInput(in)
    if err != nil {
        return ReserveResult{}, err
    }

    txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
    defer cancel()

    var (
        regs  []model.Registration
        total model.Amount
    )
    err = retryDeadlock(txCtx, s.dialect, deadlockAttempts, func() error {
        var txErr error
        regs, total, txErr = s.reserveTx(txCtx, in)
        return txErr
    })
    if err != nil {
        se := classify(err, s.dialect)
        if se.Kind == KindInternal && ctx.Err() == nil && errors.Is(txCtx.Err(), context.DeadlineExceeded) {
            se = &Error{Kind: KindTimeout, Err: err}
        }
        switch se.Kind {
        case KindInternal, KindTimeout:
            slog.ErrorContext(ctx, "reservation failed",
                "kind", se.Kind, "error", se.Err,
                "user_id", in.UserID, "order_id", in.OrderID, "events", in.EventNames)
        default:
            slog.InfoContext(ctx, "reservation rejected",
                "kind", se.Kind, "event", se.Event, "user_id", in.UserID, "order_id", in.OrderID)
        }
        return ReserveResult{}, se
    }

    slog.InfoContext(ctx, "reservation committed",
        "user_id", in.UserID, "order_id", in.OrderID, "registrations", len(regs), "total", total.String())
    s.notifyAsync(ctx, in, total)

    return ReserveResult{RegistrationCount: len(regs), TotalCharged: total, Registrations: regs}, nil
}

func (s *ReservationService) reserveTx(ctx context.Context, in ReserveInput) ([]model.Registration, model.Amount, error) {
    tx, err := s.db.BeginTx(ctx, s.dialect.TxOptions())
    if err != nil {
        return nil, 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    locked, err := s.events.LockForReservationTx(ctx, tx, in.EventNames)
    if err != nil {
        return nil, 0, err
    }
    used, err := s.regs.PaymentUsedTx(ctx, tx, in.OrderID, in.PaymentID)
    if err != nil {
        return nil, 0, err
    }
    if used {
        return nil, 0, repository.ErrPaymentAlreadyUsed
    }
    if err := repository.CheckAvailability(in.EventNames, locked); err != nil {
        return nil, 0, err
    }

    now := s.clock.Now()
    regs := make([]model.Registration, 0, len(in.EventNames))
    var total model.Amount
    for _, name := range in.EventNames {
        price := locked[name].Price
        total += price
        regs = append(regs, model.Registration{
            EventName: name,
            OrderID:   in.OrderID,
            PaymentID: in.PaymentID,
            Price:     price,
            UserID:    in.UserID,
            CreatedAt: now,
        })
    }
    if err := s.regs.CreateBulkTx(ctx, tx, regs); err != nil {
        return nil, 0, err
    }
    if err := tx.Commit(); err != nil {
        return nil, 0, err
    }
    committed = true
    return regs, total, nil
}

// retryDeadlock runs fn up to attempts times while it fails with a deadlock.
// Under serializable isolation the count reads take next-key locks, so two
// reservations for unrelated events can collide on a shared index gap; the
// victim was rolled back in full and is safe to run again.
func retryDeadlock(ctx context.Context, d database.Dialect, attempts int, fn func() error) error {
    var err error
    for i := 0; i < attempts; i++ {
        if err = fn(); err == nil || !d.IsDeadlock(err) || ctx.Err() != nil {
            return err
        }
        slog.WarnContext(ctx, "reservation deadlocked, retrying", "attempt", i+1, "error", err)
    }
    return err
}

// notifyAsync hands the confirmation to the notifier on a context detached
// from the request so a client disconnect cannot cancel it.
func (s *ReservationService) notifyAsync(ctx context.Context, in ReserveInput, total model.Amount) {
    if s.notifier == nil || s.users == nil {
        return
    }
    confirmedAt := s.clock.Now()
    s.pending.Add(1)
    go func() {
        defer s.pending.Done()
        nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
        defer cancel()

        user, err := s.users.GetByID(nctx, in.UserID)
        if err != nil {
            slog.WarnContext(nctx, "confirmation skipped: user lookup failed",
                "user_id", in.UserID, "order_id", in.OrderID, "error", err)
            return
        }
        ev := queue.RegistrationConfirmedEvent{
            RecipientEmail: user.Email,
            RecipientName:  user.Name,
            UserID:         user.ID,
            EventNames:     in.EventNames,
            OrderID:        in.OrderID,
            PaymentID:      in.PaymentID,
            Total:          total.String(),
            ConfirmedAt:    confirmedAt.Format(time.RFC3339),
        }
        if err := s.notifier.RegistrationConfirmed(nctx, ev); err != nil {
            slog.WarnContext(nctx, "confirmation publish failed",
                "user_id", in.UserID, "order_id", in.OrderID, "error", err)
        }
    }()
}

// Wait blocks until background confirmations have finished.
func (s *ReservationService) Wait() { s.pending.Wait() }

func normalizeReserveInput(in ReserveInput) (ReserveInput, error) {
    in.UserID = strings.TrimSpace(in.UserID)
    in.OrderID = strings.TrimSpace(in.OrderID)
    in.PaymentID = strings.TrimSpace(in.PaymentID)
    switch {
    case in.UserID == "":
        return in, invalidInput("user id is required")
    case len(in.UserID) > maxIDLength:
        return in, invalidInput("user id is too long")
    case in.OrderID == "" || in.PaymentID == "":
        return in, invalidInput("order_id and payment_id are required")
    case len(in.OrderID) > maxIDLength || len(in.PaymentID) > maxIDLength:
        return in, invalidInput("order_id or payment_id is too long")
    }
    names, err := normalizeEventNames(in.EventNames)
    if err != nil {
        return in, err
    }
    in.EventNames = names
    return in, nil
}

// normalizeEventNames trims names and drops duplicates, keeping the first
// occurrence's position.
func normalizeEventNames(raw []string) ([]string, error) {
    names := make([]string, 0, len(raw))
    seen := make(map[string]struct{}, len(raw))
    for _, n := range raw {
        n = strings.TrimSpace(n)
        if n == "" {
            return nil, invalidInput("event names must not be blank")
        }
        if len(n) > maxEventNameLength {
            return nil, invalidInput("event name is too long")
        }
        if _, dup := seen[n]; dup {
            continue
        }
        seen[n] = struct{}{}
        names = append(names, n)
    }
    if len(names) == 0 {
        return nil, invalidInput("at least one event name is required")
    }
    if len(names) > maxEventsPerOrder {
        return nil, invalidInput("too many events in one request")
    }
    return names, nil
}
