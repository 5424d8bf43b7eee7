// Package main is the entry point for the tradebook background worker.
// It relays outbox events to Kafka and expires idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tradebook/internal/app"
	"tradebook/internal/config"
	"tradebook/internal/infrastructure/messaging"
	"tradebook/internal/infrastructure/metrics"
	"tradebook/internal/infrastructure/storage/postgres"
	"tradebook/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.StorageDriver != config.DriverPostgres {
		log.Fatalw("worker requires the postgres storage driver", "storage", cfg.StorageDriver)
	}
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer storage.Close()

	writer := messaging.NewWriter(messaging.Config{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
	})
	publisher := messaging.NewPublisher(writer, metrics.New())
	defer func() { _ = publisher.Close() }()

	worker := &Worker{
		relay:        postgres.NewOutboxRelay(storage.PgTx, cfg.OutboxBatchSize, publisher),
		idempotency:  postgres.NewIdempotencyStore(storage.PgTx, cfg.IdempotencyTTL),
		pollInterval: cfg.OutboxPollInterval,
		log:          log.WithComponent("worker"),
	}

	log.Infow("starting tradebook worker",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaTopic,
		"poll_interval", cfg.OutboxPollInterval,
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the periodic background jobs.
type Worker struct {
	relay        *postgres.OutboxRelay
	idempotency  *postgres.IdempotencyStore
	pollInterval time.Duration
	log          *logger.Logger
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	// Drain full batches before waiting for the next tick.
	for ctx.Err() == nil {
		n, err := w.relay.ProcessBatch(ctx)
		if err != nil {
			w.log.Errorw("outbox batch failed", "error", err)
			return
		}
		if n > 0 {
			w.log.Debugw("processed outbox batch", "count", n)
		}
		if n == 0 {
			break
		}
	}

	moved, err := w.relay.MoveToDLQ(ctx)
	if err != nil {
		w.log.Errorw("outbox dead-letter move failed", "error", err)
		return
	}
	if moved > 0 {
		w.log.Warnw("moved outbox messages to dead-letter queue", "count", moved)
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	n, err := w.idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}
}
