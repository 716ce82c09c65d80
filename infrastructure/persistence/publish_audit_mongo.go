package persistence

import (
	"context"
	"time"

	"content-studio/domain/model"
	"content-studio/domain/repository"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// PublishAuditMongo appends publish attempts to a MongoDB collection.
// Writes are best-effort; the orchestrator treats failures as log noise,
// never as a publish failure.
type PublishAuditMongo struct {
	collection *mongo.Collection
}

func NewPublishAuditMongo(client *mongo.Client, database string) repository.IPublishAudit {
	return &PublishAuditMongo{collection: client.Database(database).Collection("publish_audit")}
}

func (r *PublishAuditMongo) Append(ctx context.Context, audits []*model.PublishAudit) error {
	if len(audits) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(audits))
	for _, a := range audits {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		docs = append(docs, a)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}
