package main

import (
	"context"
	"log"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/robertarktes/bootcamp-booking/internal/adapters/crdb"
	mongoadapter "github.com/robertarktes/bootcamp-booking/internal/adapters/mongo"
	redisadapter "github.com/robertarktes/bootcamp-booking/internal/adapters/redis"
	"github.com/robertarktes/bootcamp-booking/internal/catalog"
	"github.com/robertarktes/bootcamp-booking/internal/config"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
	"github.com/robertarktes/bootcamp-booking/internal/seed"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := observability.NewLogger("seed")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	if err := crdb.Migrate(ctx, pool); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	repo := crdb.NewRepository(pool)

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	cat := mongoadapter.NewCatalogRepository(mongoClient.Database(cfg.MongoDB), logger)

	offerings := seed.Offerings()
	if err := cat.Seed(ctx, offerings, seed.Sessions(), seed.Videos()); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}
	if cfg.RedisAddr != "" {
		if err := invalidateCatalog(ctx, cfg.RedisAddr, cat, offerings, logger); err != nil {
			log.Fatalf("failed to invalidate catalog cache: %v", err)
		}
	}
	if err := seedAccounts(ctx, repo, logger); err != nil {
		log.Fatalf("failed to seed accounts: %v", err)
	}
	logger.Info("seed complete")
}

// invalidateCatalog drops cached content of the reseeded offerings so the API
// does not serve the previous version until the TTL runs out.
func invalidateCatalog(ctx context.Context, addr string, inner domain.Catalog, offerings []domain.Offering, logger observability.Logger) error {
	client := redisclient.NewClient(&redisclient.Options{Addr: addr})
	defer client.Close()

	slugs := make([]string, 0, len(offerings))
	for _, o := range offerings {
		slugs = append(slugs, o.Slug)
	}
	cached := catalog.NewCached(inner, redisadapter.NewCache(client), 0, logger)
	if err := cached.Invalidate(ctx, slugs...); err != nil {
		return err
	}
	logger.WithField("offerings", len(slugs)).Info("catalog cache invalidated")
	return nil
}

// seedAccounts is idempotent: existing users are left untouched and the
// other fixtures are upserted.
func seedAccounts(ctx context.Context, repo *crdb.Repository, logger observability.Logger) error {
	for _, u := range seed.Users() {
		err := repo.CreateUser(ctx, u)
		if errors.Is(err, domain.ErrConflict) {
			logger.WithField("email", u.Email).Info("user already present")
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "create user %s", u.Email)
		}
	}
	for _, e := range seed.Enrollments() {
		if err := repo.SaveEnrollment(ctx, e); err != nil {
			return errors.Wrapf(err, "save enrollment %s", e.ID)
		}
	}
	for _, p := range seed.VideoProgress() {
		if err := repo.SaveVideoProgress(ctx, p); err != nil {
			return errors.Wrapf(err, "save progress %s", p.VideoID)
		}
	}
	for _, s := range seed.Subscriptions() {
		if err := repo.SaveSubscription(ctx, s); err != nil {
			return errors.Wrapf(err, "save subscription %s", s.ID)
		}
	}
	if _, err := repo.GetSiteSettings(ctx); errors.Is(err, domain.ErrNotFound) {
		if err := repo.SaveSiteSettings(ctx, domain.DefaultSiteSettings()); err != nil {
			return errors.Wrap(err, "save site settings")
		}
	} else if err != nil {
		return errors.Wrap(err, "load site settings")
	}
	return nil
}
