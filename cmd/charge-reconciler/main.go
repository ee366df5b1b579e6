package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/robertarktes/bootcamp-booking/internal/adapters/crdb"
	mongoadapter "github.com/robertarktes/bootcamp-booking/internal/adapters/mongo"
	redisadapter "github.com/robertarktes/bootcamp-booking/internal/adapters/redis"
	"github.com/robertarktes/bootcamp-booking/internal/checkout"
	"github.com/robertarktes/bootcamp-booking/internal/config"
	"github.com/robertarktes/bootcamp-booking/internal/djamo"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
	"github.com/robertarktes/bootcamp-booking/internal/reconcile"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const batchSize = 100

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg, "charge-reconciler")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger("charge-reconciler")

	gateway := djamo.NewClient(cfg.Djamo)
	if !gateway.Configured() {
		logger.Warn("djamo credentials missing, nothing to reconcile")
	}

	pool, err := pgxpool.New(context.Background(), cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.MongoDB)

	var locker checkout.Locker
	if cfg.RedisAddr != "" {
		client := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		locker = redisadapter.NewCache(client)
	}

	svc := checkout.NewService(
		mongoadapter.NewCatalogRepository(db, logger),
		repo,
		gateway,
		locker,
		mongoadapter.NewAuditLogger(db, logger),
		checkout.Options{
			PublicBaseURL:    cfg.PublicBaseURL,
			StaticPaymentURL: cfg.Djamo.StaticPaymentURL,
			LockTTL:          cfg.ChargeLockTTL,
		},
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go reconcile.NewWorker(svc, cfg.ReconcileAfter, batchSize, logger).Run(ctx, cfg.ReconcileInterval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down charge reconciler")
}
