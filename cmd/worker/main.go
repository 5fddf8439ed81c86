package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/suPer8Hu/codeassist/internal/config"
	"github.com/suPer8Hu/codeassist/internal/db"
	"github.com/suPer8Hu/codeassist/internal/store"
	"github.com/suPer8Hu/codeassist/internal/store/rabbitmq"
)

func main() {
	cfg := config.Load()

	logger := config.NewLogger(cfg.Debug)
	defer logger.Sync()

	ids, err := store.ParseIDStrategy(cfg.IDStrategy)
	if err != nil {
		logger.Fatal("id strategy", zap.Error(err))
	}
	st := store.New(db.Opener(cfg.DBDriver, cfg.DBDSN), store.WithLogger(logger), store.WithIDStrategy(ids))
	defer st.Close()

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatal("rabbit dial", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("rabbit channel", zap.Error(err))
	}
	defer ch.Close()

	if err := rabbitmq.Declare(ch, cfg.RabbitQueue); err != nil {
		logger.Fatal("queue declare", zap.Error(err))
	}

	//  strict concurrency control
	concurrency := cfg.WorkerConcurrency

	if err := ch.Qos(concurrency, 0, false); err != nil {
		logger.Fatal("qos", zap.Error(err))
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatal("consume", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started", zap.String("queue", cfg.RabbitQueue), zap.Int("concurrency", concurrency))

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			wlog := logger.With(zap.Int("worker", workerID))
			for d := range jobs {
				m, err := rabbitmq.DecodeUsage(d.Body)
				if err != nil {
					wlog.Warn("bad usage message", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				if err := handleUsage(ctx, st, m); err != nil {
					wlog.Error("record usage failed", zap.String("chat", m.ChatID), zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					wlog.Warn("ack failed", zap.String("chat", m.ChatID), zap.Error(err))
				}
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				logger.Warn("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

func handleUsage(ctx context.Context, st *store.Store, m rabbitmq.UsageMessage) error {
	return st.RecordUsage(ctx, usageEvent(m))
}

func usageEvent(m rabbitmq.UsageMessage) store.UsageEvent {
	return store.UsageEvent{
		ChatID:          m.ChatID,
		Provider:        m.Provider,
		Model:           m.Model,
		PromptChars:     m.PromptChars,
		CompletionChars: m.CompletionChars,
		Duration:        time.Duration(m.DurationMS) * time.Millisecond,
		CreatedAt:       m.At,
	}
}
