package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Mailer delivers a confirmation to the recipient named in the event.
type Mailer interface {
    SendConfirmation(ctx context.Context, ev RegistrationConfirmedEvent) error
}

// Consumer reads confirmation events and hands them to a Mailer.
type Consumer struct {
    url         string
    queue       string
    mailer      Mailer
    sendTimeout time.Duration
}

// NewConsumer returns a Consumer reading queue on the broker at url.
func NewConsumer(url, queue string, mailer Mailer) *Consumer {
    if queue == "" {
        queue = DefaultQueue
    }
    return &Consumer{url: url, queue: queue, mailer: mailer, sendTimeout: 30 * time.Second}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff (capped at 30s) whenever the
// connection or delivery channel drops.  It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return nil
        }
        conn, err := amqp.Dial(c.url)
        if err != nil {
            slog.Warn("notify-consumer: failed to dial broker", "error", err, "retry_in", backoff)
            if !sleep(ctx, backoff) {
                return nil
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return nil
        }
        slog.Warn("notify-consumer: consume loop ended, reconnecting", "error", err)
        if !sleep(ctx, 2*time.Second) {
            return nil
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(20, 0, false); err != nil {
        slog.Warn("notify-consumer: set QoS failed", "error", err)
    }
    if _, err := declare(ch, c.queue); err != nil {
        return err
    }
    msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handleMessage(ctx, d.Body); err != nil {
                slog.Error("notify-consumer: handle message failed", "error", err)
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
    var ev RegistrationConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.RecipientEmail == "" {
        return errors.New("event has no recipient")
    }
    sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
    defer cancel()
    if err := c.mailer.SendConfirmation(sendCtx, ev); err != nil {
        return fmt.Errorf("send confirmation to %s: %w", ev.RecipientEmail, err)
    }
    slog.Info("notify-consumer: confirmation sent", "order_id", ev.OrderID, "events", len(ev.EventNames))
    return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
