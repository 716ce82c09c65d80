package repository

import (
	"context"

	"content-studio/domain/model"
)

// IPublishRecord persists the latest per-platform publish outcome per user.
type IPublishRecord interface {
	// UpsertResults stores one record per result of an orchestrated request.
	UpsertResults(ctx context.Context, requestID, userID string, results []model.PublishResult) error
	// GetHistory returns the most recent records for a user, newest first.
	GetHistory(ctx context.Context, userID string, limit int) ([]*model.PublishRecord, error)
}

// IPublishAudit is the append-only log of individual platform attempts.
type IPublishAudit interface {
	Append(ctx context.Context, audits []*model.PublishAudit) error
}
