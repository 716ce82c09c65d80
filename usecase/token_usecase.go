package usecase

import (
	"context"
	"time"

	"content-studio/domain/model"
	"content-studio/domain/repository"
	"content-studio/infrastructure/logger"
)

// ITokenManager yields a usable credential for a platform, refreshing it
// first when it is close to expiry.
type ITokenManager interface {
	EnsureUsable(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error)
}

type tokenManager struct {
	credRepo repository.ICredential
	drivers  map[model.Platform]repository.IPublishDriver
	buffer   time.Duration
	now      func() time.Time
}

func NewTokenManager(credRepo repository.ICredential, drivers map[model.Platform]repository.IPublishDriver, buffer time.Duration) ITokenManager {
	return &tokenManager{
		credRepo: credRepo,
		drivers:  drivers,
		buffer:   buffer,
		now:      time.Now,
	}
}

// EnsureUsable loads the stored credential and refreshes it when expiry falls
// inside the buffer window. A credential without an expiry is taken at face
// value and never refreshed. At most one refresh attempt is made per call;
// a refresh failure surfaces as REFRESH_FAILED without touching the store.
func (t *tokenManager) EnsureUsable(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error) {
	cred, err := t.credRepo.GetByProvider(ctx, userID, platform)
	if err != nil {
		return nil, model.WrapPublishError(model.ErrCredentialMissing, err, "failed to load credential for %s", platform)
	}
	if cred == nil {
		return nil, model.NewPublishError(model.ErrCredentialMissing, "account not connected for %s", platform)
	}
	if !cred.ExpiringSoon(t.now(), t.buffer) {
		return cred, nil
	}

	driver, ok := t.drivers[platform]
	if !ok {
		return nil, model.NewPublishError(model.ErrCredentialMissing, "unsupported platform %s", platform)
	}
	refreshed, err := driver.RefreshCredential(ctx, cred)
	if err != nil {
		logger.GetLogger().WithField("platform", platform).WithField("error", err).Warn("Token refresh failed")
		return nil, err
	}
	if err := t.credRepo.Upsert(ctx, refreshed); err != nil {
		// The platform already accepted the refresh, so the new token is
		// usable for this request even if persisting it failed.
		logger.GetLogger().WithField("platform", platform).WithField("error", err).Warn("Failed to persist refreshed credential")
	}
	return refreshed, nil
}
