package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// UsageMessage is one model call, published for asynchronous accounting.
type UsageMessage struct {
	ChatID          string    `json:"chat_id"`
	Provider        string    `json:"provider"`
	Model           string    `json:"model"`
	PromptChars     int       `json:"prompt_chars"`
	CompletionChars int       `json:"completion_chars"`
	DurationMS      int64     `json:"duration_ms"`
	At              time.Time `json:"at"`
}

// Queues returns the main, retry and dead-letter queue names for queue.
func Queues(queue string) (main, retry, dlq string) {
	return queue, queue + ".retry", queue + ".dlq"
}

// Declare sets up the three durable queues. Messages rejected from the main
// queue go to the DLQ; messages in the retry queue expire back into the main
// queue.
func Declare(ch *amqp.Channel, queue string) error {
	mainQ, retryQ, dlqQ := Queues(queue)

	deadLetterTo := func(q string) amqp.Table {
		return amqp.Table{"x-dead-letter-exchange": "", "x-dead-letter-routing-key": q}
	}
	decls := []struct {
		name string
		args amqp.Table
	}{
		{dlqQ, nil},
		{retryQ, deadLetterTo(mainQ)},
		{mainQ, deadLetterTo(dlqQ)},
	}
	for _, d := range decls {
		if _, err := ch.QueueDeclare(d.name, true, false, false, false, d.args); err != nil {
			return fmt.Errorf("declare %s: %w", d.name, err)
		}
	}
	return nil
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := Declare(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func EncodeUsage(m UsageMessage) ([]byte, error) {
	if m.At.IsZero() {
		m.At = time.Now().UTC()
	}
	return json.Marshal(m)
}

// DecodeUsage rejects bodies that lack a provider or model, so the worker
// can dead-letter them instead of storing junk.
func DecodeUsage(body []byte) (UsageMessage, error) {
	var m UsageMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return UsageMessage{}, err
	}
	if m.Provider == "" || m.Model == "" {
		return UsageMessage{}, errors.New("usage message without provider or model")
	}
	return m, nil
}

func (p *Publisher) PublishUsage(ctx context.Context, m UsageMessage) error {
	body, err := EncodeUsage(m)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}
