// Package mongo stores the bootcamp catalog and the charge audit trail.
package mongo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CatalogRepository struct {
	offerings *mongo.Collection
	sessions  *mongo.Collection
	videos    *mongo.Collection
	logger    observability.Logger
}

var _ domain.Catalog = (*CatalogRepository)(nil)

func NewCatalogRepository(db *mongo.Database, logger observability.Logger) *CatalogRepository {
	return &CatalogRepository{
		offerings: db.Collection("bootcamps"),
		sessions:  db.Collection("sessions"),
		videos:    db.Collection("videos"),
		logger:    logger,
	}
}

// offeringDoc keeps the listing order of the bootcamps.
type offeringDoc struct {
	domain.Offering `bson:",inline"`
	Position        int `bson:"position"`
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errors.Wrapf(domain.ErrNotFound, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}

func (c *CatalogRepository) ListOfferings(ctx context.Context) ([]domain.Offering, error) {
	cur, err := c.offerings.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find bootcamps")
	}
	var docs []offeringDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode bootcamps")
	}
	out := make([]domain.Offering, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Offering)
	}
	return out, nil
}

func (c *CatalogRepository) GetOfferingBySlug(ctx context.Context, slug string) (*domain.Offering, error) {
	var d offeringDoc
	if err := c.offerings.FindOne(ctx, bson.M{"_id": slug}).Decode(&d); err != nil {
		return nil, notFound(err, "bootcamp %q", slug)
	}
	return &d.Offering, nil
}

func (c *CatalogRepository) findSessions(ctx context.Context, filter bson.M) ([]domain.Session, error) {
	cur, err := c.sessions.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date_start", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find sessions")
	}
	var out []domain.Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode sessions")
	}
	for i := range out {
		out[i] = out[i].WithStatus()
	}
	if out == nil {
		out = []domain.Session{}
	}
	return out, nil
}

func (c *CatalogRepository) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return c.findSessions(ctx, bson.M{})
}

func (c *CatalogRepository) GetSessionsForOffering(ctx context.Context, slug string) ([]domain.Session, error) {
	return c.findSessions(ctx, bson.M{"bootcamp_slug": slug})
}

func (c *CatalogRepository) GetSessionByID(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	if err := c.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, notFound(err, "session %q", id)
	}
	s = s.WithStatus()
	return &s, nil
}

func (c *CatalogRepository) ListVideos(ctx context.Context, slug string) ([]domain.CourseVideo, error) {
	cur, err := c.videos.Find(ctx, bson.M{"bootcamp_slug": slug},
		options.Find().SetSort(bson.D{{Key: "day_number", Value: 1}, {Key: "module_index", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find videos")
	}
	var out []domain.CourseVideo
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode videos")
	}
	return out, nil
}

func (c *CatalogRepository) GetVideo(ctx context.Context, id string) (*domain.CourseVideo, error) {
	var v domain.CourseVideo
	if err := c.videos.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		return nil, notFound(err, "video %q", id)
	}
	return &v, nil
}

// AdjustSeats moves spots_remaining by delta in one conditional update:
// a decrement never goes below zero, an increment is capped at spots_total.
func (c *CatalogRepository) AdjustSeats(ctx context.Context, sessionID string, delta int) error {
	filter := bson.M{"_id": sessionID}
	if delta < 0 {
		filter["spots_remaining"] = bson.M{"$gte": -delta}
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"spots_remaining": bson.M{"$min": bson.A{
				bson.M{"$add": bson.A{"$spots_remaining", delta}},
				"$spots_total",
			}},
		}}},
	}
	res, err := c.sessions.UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.Wrapf(err, "adjust seats of %q", sessionID)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if _, err := c.GetSessionByID(ctx, sessionID); err != nil {
		return err
	}
	return errors.Wrapf(domain.ErrSessionFull, "session %q", sessionID)
}

// Seed replaces the catalog with the given content.
func (c *CatalogRepository) Seed(ctx context.Context, offerings []domain.Offering, sessions []domain.Session, videos []domain.CourseVideo) error {
	for _, coll := range []*mongo.Collection{c.offerings, c.sessions, c.videos} {
		if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
			return errors.Wrapf(err, "clear %s", coll.Name())
		}
	}
	docs := make([]interface{}, 0, len(offerings))
	for i, o := range offerings {
		docs = append(docs, offeringDoc{Offering: o, Position: i})
	}
	if err := insertAll(ctx, c.offerings, docs); err != nil {
		return err
	}
	docs = docs[:0]
	for _, s := range sessions {
		docs = append(docs, s)
	}
	if err := insertAll(ctx, c.sessions, docs); err != nil {
		return err
	}
	docs = docs[:0]
	for _, v := range videos {
		docs = append(docs, v)
	}
	if err := insertAll(ctx, c.videos, docs); err != nil {
		return err
	}
	c.logger.WithFields(map[string]interface{}{
		"bootcamps": len(offerings),
		"sessions":  len(sessions),
		"videos":    len(videos),
	}).Info("catalog seeded")
	return nil
}

func insertAll(ctx context.Context, coll *mongo.Collection, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := coll.InsertMany(ctx, docs)
	return errors.Wrapf(err, "insert %s", coll.Name())
}
