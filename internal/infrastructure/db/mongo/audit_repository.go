package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/catalog-api/internal/core/domain"
	"github.com/99minutos/catalog-api/internal/core/ports"
)

const (
	auditCollection = "auth_events"
	auditRetention  = 90 * 24 * time.Hour
)

// AuditRepository implements ports.AuditRecorder using MongoDB.
type AuditRepository struct {
	db      *mongo.Database
	timeout time.Duration
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database, timeout time.Duration) *AuditRepository {
	return &AuditRepository{db: db, timeout: opTimeout(timeout)}
}

var _ ports.AuditRecorder = (*AuditRepository)(nil)

// Record appends an event to the auth_events collection.
func (r *AuditRepository) Record(ctx context.Context, event *domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := bson.M{
		"action":      string(event.Action),
		"subject":     event.Subject,
		"timestamp":   event.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.Detail != "" {
		doc["detail"] = event.Detail
	}

	_, err := r.db.Collection(auditCollection).InsertOne(ctx, doc)
	return classify("insert audit event", err)
}

// EnsureIndexes indexes events by subject and expires them after the
// retention period.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.db.Collection(auditCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "subject", Value: 1}, {Key: "timestamp", Value: -1}}},
		{
			Keys:    bson.D{{Key: "recorded_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(auditRetention.Seconds())),
		},
	})
	return err
}
