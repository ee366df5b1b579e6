package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/robertarktes/bootcamp-booking/internal/adapters/crdb"
	"github.com/robertarktes/bootcamp-booking/internal/adapters/memory"
	"github.com/robertarktes/bootcamp-booking/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/bootcamp-booking/internal/adapters/redis"
	"github.com/robertarktes/bootcamp-booking/internal/adapters/sendgrid"
	"github.com/robertarktes/bootcamp-booking/internal/config"
	"github.com/robertarktes/bootcamp-booking/internal/notify"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

const queueName = "bootcamp.notifier"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.RabbitURL == "" {
		log.Fatal("RABBIT_URL is required")
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg, "notifier")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger("notifier")

	pool, err := pgxpool.New(context.Background(), cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)

	var seen notify.Deduper = memory.NewLocker()
	if cfg.RedisAddr != "" {
		client := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		seen = redisadapter.NewCache(client)
	}

	var mailer notify.Mailer = notify.LogMailer{Logger: logger}
	if cfg.SendGridAPIKey != "" {
		mailer = sendgrid.NewMailer(cfg.SendGridAPIKey, sendgrid.DefaultHost, cfg.MailFromName, cfg.MailFrom)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, e-mails are only logged")
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	consumer, err := rabbit.NewConsumer(conn, queueName, notify.Patterns...)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		log.Fatalf("failed to consume: %v", err)
	}

	notifier := notify.NewNotifier(mailer, repo, seen, logger)
	go func() {
		if err := notifier.Run(ctx, deliveries); err != nil {
			logger.WithError(err).Error("notifier stopped")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down notifier")
}
