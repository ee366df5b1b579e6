package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditLogger appends charge actions to the audit_logs collection.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID         string    `bson:"_id"`
	Action     string    `bson:"action"`
	ExternalID string    `bson:"external_id"`
	Timestamp  time.Time `bson:"timestamp"`
	Data       bson.M    `bson:"data"`
}

func (a *AuditLogger) LogEvent(ctx context.Context, action, externalID string, data bson.M) error {
	_, err := a.coll.InsertOne(ctx, AuditLog{
		ID:         uuid.NewString(),
		Action:     action,
		ExternalID: externalID,
		Timestamp:  time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		observability.LoggerFrom(ctx, a.logger).WithError(err).WithField("action", action).Error("failed to insert audit log")
		return errors.Wrap(err, "insert audit log")
	}
	return nil
}

func (a *AuditLogger) LogCharge(ctx context.Context, o domain.Order) error {
	return a.LogEvent(ctx, "charge.created", o.ExternalID, bson.M{
		"mode":        o.Mode,
		"charge_id":   o.ChargeID,
		"amount":      o.Amount,
		"bootcamp":    o.OfferingSlug,
		"session_id":  o.SessionID,
		"payment_url": o.PaymentURL,
	})
}

func (a *AuditLogger) LogSettlement(ctx context.Context, o domain.Order, source string) error {
	return a.LogEvent(ctx, "charge.settled", o.ExternalID, bson.M{
		"charge_id":     o.ChargeID,
		"charge_status": o.ChargeStatus,
		"order_status":  o.Status,
		"enrollment_id": o.EnrollmentID,
		"source":        source,
	})
}

// History returns the audit trail of one order, oldest first.
func (a *AuditLogger) History(ctx context.Context, externalID string) ([]AuditLog, error) {
	cur, err := a.coll.Find(ctx, bson.M{"external_id": externalID}, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find audit logs")
	}
	var out []AuditLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode audit logs")
	}
	return out, nil
}
