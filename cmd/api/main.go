package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/robertarktes/bootcamp-booking/internal/accounts"
	"github.com/robertarktes/bootcamp-booking/internal/adapters/crdb"
	"github.com/robertarktes/bootcamp-booking/internal/adapters/memory"
	mongoadapter "github.com/robertarktes/bootcamp-booking/internal/adapters/mongo"
	redisadapter "github.com/robertarktes/bootcamp-booking/internal/adapters/redis"
	"github.com/robertarktes/bootcamp-booking/internal/adapters/sendgrid"
	"github.com/robertarktes/bootcamp-booking/internal/catalog"
	"github.com/robertarktes/bootcamp-booking/internal/checkout"
	"github.com/robertarktes/bootcamp-booking/internal/config"
	"github.com/robertarktes/bootcamp-booking/internal/dashboard"
	"github.com/robertarktes/bootcamp-booking/internal/djamo"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	httphandler "github.com/robertarktes/bootcamp-booking/internal/http"
	"github.com/robertarktes/bootcamp-booking/internal/idempotency"
	"github.com/robertarktes/bootcamp-booking/internal/notify"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
	"github.com/robertarktes/bootcamp-booking/internal/outbox"
	"github.com/robertarktes/bootcamp-booking/internal/rateLimit"
	"github.com/robertarktes/bootcamp-booking/internal/reconcile"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// backend is the storage the api runs on, picked by STORAGE_DRIVER.
type backend struct {
	catalog   domain.Catalog
	store     domain.Store
	locker    checkout.Locker
	audit     checkout.Auditor
	counter   rateLimit.Counter
	idemp     idempotency.Store
	deduper   notify.Deduper
	readiness map[string]httphandler.Check
	closers   []func()
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func memoryBackend() *backend {
	locker := memory.NewLocker()
	return &backend{
		catalog:   memory.NewSeededCatalog(),
		store:     memory.NewSeededStore(),
		locker:    locker,
		audit:     memory.NewAudit(),
		counter:   memory.NewCounter(),
		idemp:     memory.NewIdempotency(),
		deduper:   locker,
		readiness: map[string]httphandler.Check{},
	}
}

func crdbBackend(ctx context.Context, cfg *config.Config, logger observability.Logger) (*backend, error) {
	b := &backend{readiness: map[string]httphandler.Check{}}

	pool, err := pgxpool.New(ctx, cfg.CRDBDSN)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, pool.Close)
	if err := crdb.Migrate(ctx, pool); err != nil {
		b.close()
		return nil, err
	}
	repo := crdb.NewRepository(pool)
	b.store = repo
	b.readiness["crdb"] = repo.Ping

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		b.close()
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = mongoClient.Disconnect(context.Background()) })
	db := mongoClient.Database(cfg.MongoDB)
	b.readiness["mongo"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }
	b.audit = mongoadapter.NewAuditLogger(db, logger)
	var cat domain.Catalog = mongoadapter.NewCatalogRepository(db, logger)

	if cfg.RedisAddr != "" {
		client := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
		b.closers = append(b.closers, func() { _ = client.Close() })
		cache := redisadapter.NewCache(client)
		b.readiness["redis"] = cache.Ping
		cat = catalog.NewCached(cat, cache, cfg.CatalogCacheTTL, logger)
		b.locker = cache
		b.counter = cache
		b.deduper = cache
		b.idemp = redisadapter.NewIdempotency(client)
	} else {
		logger.Warn("REDIS_ADDR not set, locks and rate limits are process-local")
		locker := memory.NewLocker()
		b.locker = locker
		b.deduper = locker
		b.counter = memory.NewCounter()
		b.idemp = memory.NewIdempotency()
	}
	b.catalog = cat
	return b, nil
}

func mailer(cfg *config.Config, logger observability.Logger) notify.Mailer {
	if cfg.SendGridAPIKey == "" {
		return notify.LogMailer{Logger: logger}
	}
	return sendgrid.NewMailer(cfg.SendGridAPIKey, sendgrid.DefaultHost, cfg.MailFromName, cfg.MailFrom)
}

func jwtSecret(cfg *config.Config, logger observability.Logger) string {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("failed to generate jwt secret: %v", err)
	}
	logger.Warn("JWT_SECRET not set, tokens will not survive a restart")
	return hex.EncodeToString(buf)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg, "bootcamp-api")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger("bootcamp-api")

	var b *backend
	if cfg.Memory() {
		logger.Warn("running on the in-memory store, data is lost on restart")
		b = memoryBackend()
	} else {
		b, err = crdbBackend(context.Background(), cfg, logger)
		if err != nil {
			log.Fatalf("failed to set up storage: %v", err)
		}
	}
	defer b.close()

	gateway := djamo.NewClient(cfg.Djamo)
	if !gateway.Configured() {
		logger.Warn("djamo credentials missing, checkout falls back to the static payment link")
	}
	svc := checkout.NewService(b.catalog, b.store, gateway, b.locker, b.audit, checkout.Options{
		PublicBaseURL:    cfg.PublicBaseURL,
		StaticPaymentURL: cfg.Djamo.StaticPaymentURL,
		LockTTL:          cfg.ChargeLockTTL,
	}, logger)

	tokens := accounts.NewTokens(jwtSecret(cfg, logger), cfg.JWTTTL)
	handlers := httphandler.NewHandlers(httphandler.Deps{
		Catalog:   b.catalog,
		Checkout:  svc,
		Accounts:  accounts.NewService(b.store, tokens, logger),
		Tokens:    tokens,
		Admin:     dashboard.NewAdmin(b.catalog, b.store),
		Learner:   dashboard.NewLearner(b.catalog, b.store, logger),
		Poll:      checkout.PollPolicy{MaxAttempts: cfg.PollMaxAttempts, Interval: cfg.PollInterval},
		Readiness: b.readiness,
		Logger:    logger,
	})

	rl := rateLimit.NewRateLimiter(b.counter, logger)
	idemp := idempotency.NewIdempotency(b.idemp, cfg.IdempotencyTTL, logger)
	r := httphandler.SetupRouter(handlers, logger, rl, idemp, httphandler.DefaultLimits())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Without a broker the outbox is drained in-process straight into the
	// notifier.
	if cfg.RabbitURL == "" {
		notifier := notify.NewNotifier(mailer(cfg, logger), b.store, b.deduper, logger)
		go outbox.NewPublisher(b.store, notifier, outbox.Options{}, logger).Run(ctx)
	}
	if cfg.Memory() {
		go reconcile.NewWorker(svc, cfg.ReconcileAfter, 50, logger).Run(ctx, cfg.ReconcileInterval)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down api")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown")
	}
	logger.Info("api stopped")
}
