package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/signup/internal/api"
	"example.com/signup/internal/config"
	"example.com/signup/internal/domain"
	"example.com/signup/internal/events"
	"example.com/signup/internal/store"
	pgstore "example.com/signup/internal/store/postgres"
	httptransport "example.com/signup/internal/transport/http"
	"example.com/signup/web"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := buildLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	directory, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		sugar.Fatalw("failed to initialise store", "backend", cfg.StoreBackend, "error", err)
	}
	defer cleanup()

	publisher, closePublisher := buildPublisher(cfg, sugar)
	defer closePublisher()

	service := domain.NewService(directory, publisher, sugar)

	handler := api.NewHandler(service)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(web.StaticFS()))))

	// The roster UI may be served from a separate dev server; let it call us.
	cors := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	requestLog := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sugar.Infow("request", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	sugar.Infow("starting signup service", "backend", cfg.StoreBackend)
	server := httptransport.NewServer(cfg.HTTPAddress, requestLog(cors(mux)), sugar, cfg.ShutdownTimeout)
	if err := server.Run(ctx); err != nil {
		sugar.Fatalw("server error", "error", err)
	}
}

func buildLogger(mode string) (*zap.Logger, error) {
	if mode == "prod" || mode == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// buildStore selects the directory backend. The returned cleanup releases any
// held connections and is safe to call once.
func buildStore(ctx context.Context, cfg config.Config) (domain.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, func() {}, err
		}
		if err := pgstore.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		if err := pgstore.Seed(ctx, pool, store.SeedCatalog()); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		return pgstore.NewRepository(pool), pool.Close, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}

func buildPublisher(cfg config.Config, sugar *zap.SugaredLogger) (domain.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return domain.NoopPublisher{}, func() {}
	}

	registry := events.NewSchemaRegistry(cfg.SchemaRegistryURL, cfg.RosterTopic, sugar)
	publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, registry, cfg.RosterTopic)
	return publisher, func() { _ = publisher.Close() }
}
