package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"example.com/signup/internal/config"
	"example.com/signup/internal/consumer"
	pgstore "example.com/signup/internal/store/postgres"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	if len(cfg.KafkaBrokers) == 0 {
		sugar.Fatal("KAFKA_BROKERS must be set for the roster consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, cleanup, err := buildHandler(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialise handler", "error", err)
	}
	defer cleanup()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}

	go func() {
		sugar.Infow("consumer metrics listening", "address", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Errorw("metrics server error", "error", err)
		}
	}()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.KafkaBrokers,
		GroupID:         cfg.ConsumerGroupID,
		Topic:           cfg.RosterTopic,
		MinBytes:        1e3,
		MaxBytes:        10e6,
		CommitInterval:  time.Second,
		RetentionTime:   24 * time.Hour,
		ReadLagInterval: -1,
	})

	proc := consumer.NewProcessor(reader, handler, consumer.WithLogger(sugar))

	var wg sync.WaitGroup
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer reader.Close()

		sugar.Infow("consumer started", "topic", cfg.RosterTopic, "group", cfg.ConsumerGroupID)
		if err := proc.Run(ctx); err != nil && err != context.Canceled {
			sugar.Errorw("consumer stopped with error", "error", err)
		}
	}()

	<-stop
	sugar.Info("consumer shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("metrics server shutdown error", "error", err)
	}

	wg.Wait()
}

// buildHandler persists events when Postgres is configured, otherwise logs them.
func buildHandler(ctx context.Context, cfg config.Config, sugar *zap.SugaredLogger) (consumer.Handler, func(), error) {
	if cfg.StoreBackend != config.StorePostgres {
		return consumer.NewAuditHandler(sugar), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pgstore.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, func() {}, err
	}
	return consumer.NewPersistenceHandler(pool), pool.Close, nil
}
