package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends confirmation events to RabbitMQ.  Each publish opens its
// own connection; confirmations are low volume and this keeps the publisher
// free of reconnect state.
type Publisher struct {
    url   string
    queue string
}

// NewPublisher returns a Publisher for the given broker URL and queue.
func NewPublisher(url, queue string) *Publisher {
    if queue == "" {
        queue = DefaultQueue
    }
    return &Publisher{url: url, queue: queue}
}

// RegistrationConfirmed publishes ev as a persistent JSON message on the
// publisher's queue, declaring the queue first (durable, idempotent).
func (p *Publisher) RegistrationConfirmed(ctx context.Context, ev RegistrationConfirmedEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    conn, err := amqp.Dial(p.url)
    if err != nil {
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("rabbitmq channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if _, err := declare(ch, p.queue); err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",      // default exchange
        p.queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        pub,
    ); err != nil {
        return fmt.Errorf("rabbitmq publish: %w", err)
    }
    return nil
}

func declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
    q, err := ch.QueueDeclare(
        queue, // name
        true,  // durable
        false, // autoDelete
        false, // exclusive
        false, // noWait
        nil,   // args
    )
    if err != nil {
        return amqp.Queue{}, fmt.Errorf("queue declare: %w", err)
    }
    return q, nil
}
