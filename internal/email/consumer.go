package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartConsumer drains the outbound email queue and delivers through the
// sender. It runs a reconnect loop with capped exponential backoff and keeps
// going until the context is cancelled; a message that cannot be handled is
// rejected without requeue so a poison event cannot wedge the queue.
func StartConsumer(ctx context.Context, url string, sender Sender) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			slog.Warn("email-consumer: broker dial failed", "error", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(ctx, conn, sender); err != nil {
			slog.Warn("email-consumer: consume loop ended", "error", err)
			_ = conn.Close()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, sender Sender) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
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
			if err := handleMessage(ctx, sender, d.Body); err != nil {
				slog.Error("email-consumer: handle message failed", "error", err)
				_ = d.Nack(false, false) // no requeue: avoids tight redelivery loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(ctx context.Context, sender Sender, body []byte) error {
	var msg WelcomeMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	html, err := RenderWelcome(msg.Name, msg.OTP)
	if err != nil {
		return err
	}
	return sender.Send(ctx, msg.To, welcomeSubject, html)
}
