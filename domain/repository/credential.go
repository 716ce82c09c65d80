package repository

import (
	"context"

	"content-studio/domain/model"
)

// ICredential persists platform credentials keyed by (user, platform, account).
type ICredential interface {
	// GetByProvider returns the stored credential for the user on a platform,
	// or nil when the user never connected that platform.
	GetByProvider(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error)
	// Upsert inserts or rewrites the credential on its (user, platform,
	// account) key. Last write wins on concurrent refreshes.
	Upsert(ctx context.Context, cred *model.Credential) error
	// Delete removes the credential on explicit disconnect.
	Delete(ctx context.Context, userID string, platform model.Platform) error
}
