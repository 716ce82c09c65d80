package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"content-studio/domain/model"
	"content-studio/domain/repository"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newTokenManager(credRepo repository.ICredential, driver repository.IPublishDriver) *tokenManager {
	tm := NewTokenManager(credRepo, map[model.Platform]repository.IPublishDriver{
		driver.Platform(): driver,
	}, 24*time.Hour).(*tokenManager)
	tm.now = func() time.Time { return testNow }
	return tm
}

func TestTokenManager_NeverConnected(t *testing.T) {
	credRepo := new(mockCredentialRepo)
	driver := &mockDriver{platform: model.PlatformThreads}
	credRepo.On("GetByProvider", mock.Anything, "user-1", model.PlatformThreads).Return(nil, nil)

	tm := newTokenManager(credRepo, driver)
	_, err := tm.EnsureUsable(context.Background(), "user-1", model.PlatformThreads)

	require.Error(t, err)
	require.Equal(t, model.ErrCredentialMissing, model.CodeOf(err))
	driver.AssertNotCalled(t, "RefreshCredential", mock.Anything, mock.Anything)
}

func TestTokenManager_NilExpiryNeverRefreshes(t *testing.T) {
	credRepo := new(mockCredentialRepo)
	driver := &mockDriver{platform: model.PlatformThreads}
	stored := &model.Credential{UserID: "user-1", Platform: model.PlatformThreads, AccessToken: "tok", ExpiresAt: nil}
	credRepo.On("GetByProvider", mock.Anything, "user-1", model.PlatformThreads).Return(stored, nil)

	tm := newTokenManager(credRepo, driver)
	cred, err := tm.EnsureUsable(context.Background(), "user-1", model.PlatformThreads)

	require.NoError(t, err)
	require.Equal(t, "tok", cred.AccessToken)
	driver.AssertNotCalled(t, "RefreshCredential", mock.Anything, mock.Anything)
	credRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestTokenManager_FarFromExpiryNoRefresh(t *testing.T) {
	credRepo := new(mockCredentialRepo)
	driver := &mockDriver{platform: model.PlatformThreads}
	expires := testNow.Add(30 * 24 * time.Hour)
	stored := &model.Credential{UserID: "user-1", Platform: model.PlatformThreads, AccessToken: "tok", ExpiresAt: &expires}
	credRepo.On("GetByProvider", mock.Anything, "user-1", model.PlatformThreads).Return(stored, nil)

	tm := newTokenManager(credRepo, driver)
	cred, err := tm.EnsureUsable(context.Background(), "user-1", model.PlatformThreads)

	require.NoError(t, err)
	require.Equal(t, "tok", cred.AccessToken)
	driver.AssertNotCalled(t, "RefreshCredential", mock.Anything, mock.Anything)
}

func TestTokenManager_ExpiringSoonRefreshesExactlyOnce(t *testing.T) {
	credRepo := new(mockCredentialRepo)
	driver := &mockDriver{platform: model.PlatformThreads}
	expires := testNow.Add(23 * time.Hour)
	stored := &model.Credential{UserID: "user-1", Platform: model.PlatformThreads, AccessToken: "tok-old", ExpiresAt: &expires}
	newExpiry := testNow.Add(60 * 24 * time.Hour)
	refreshed := &model.Credential{UserID: "user-1", Platform: model.PlatformThreads, AccessToken: "tok-new", ExpiresAt: &newExpiry}

	credRepo.On("GetByProvider", mock.Anything, "user-1", model.PlatformThreads).Return(stored, nil)
	driver.On("RefreshCredential", mock.Anything, stored).Return(refreshed, nil).Once()
	credRepo.On("Upsert", mock.Anything, refreshed).Return(nil).Once()

	tm := newTokenManager(credRepo, driver)
	cred, err := tm.EnsureUsable(context.Background(), "user-1", model.PlatformThreads)

	require.NoError(t, err)
	require.Equal(t, "tok-new", cred.AccessToken)
	driver.AssertNumberOfCalls(t, "RefreshCredential", 1)
	credRepo.AssertExpectations(t)
}

func TestTokenManager_ExpiredAlsoRefreshes(t *testing.T) {
	credRepo := new(mockCredentialRepo)
	driver := &mockDriver{platform: model.PlatformFacebook}
	expires := testNow.Add(-time.Hour)
	stored := &model.Credential{UserID: "user-1", Platform: model.PlatformFacebook, AccessToken: "tok-dead", ExpiresAt: &expires}
	newExpiry := testNow.Add(60 * 24 * time.Hour)
	refreshed := &model.Credential{UserID: "user-1", Platform: model.PlatformFacebook, AccessToken: "tok-live", ExpiresAt: &newExpiry}

	credRepo.On("GetByProvider", mock.Anything, "user-1", model.PlatformFacebook).Return(stored, nil)
	driver.On("RefreshCredential", mock.Anything, stored).Return(refreshed, nil)
	credRepo.On("Upsert", mock.Anything, refreshed).Return(nil)

	tm := newTokenManager(credRepo, driver)
	cred, err := tm.EnsureUsable(context.Background(), "user-1", model.PlatformFacebook)

	require.NoError(t, err)
	require.Equal(t, "tok-live", cred.AccessToken)
}

func TestTokenManager_RefreshFailureSurfacesWithoutPersisting(t *testing.T) {
	credRepo := new(mockCredentialRepo)
	driver := &mockDriver{platform: model.PlatformThreads}
	expires := testNow.Add(time.Hour)
	stored := &model.Credential{UserID: "user-1", Platform: model.PlatformThreads, AccessToken: "tok", ExpiresAt: &expires}

	credRepo.On("GetByProvider", mock.Anything, "user-1", model.PlatformThreads).Return(stored, nil)
	driver.On("RefreshCredential", mock.Anything, stored).
		Return(nil, model.NewPublishError(model.ErrRefreshFailed, "token refresh failed, please reconnect your account"))

	tm := newTokenManager(credRepo, driver)
	_, err := tm.EnsureUsable(context.Background(), "user-1", model.PlatformThreads)

	require.Equal(t, model.ErrRefreshFailed, model.CodeOf(err))
	require.Contains(t, model.MessageOf(err), "reconnect")
	credRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestTokenManager_PersistFailureStillReturnsRefreshedToken(t *testing.T) {
	credRepo := new(mockCredentialRepo)
	driver := &mockDriver{platform: model.PlatformThreads}
	expires := testNow.Add(time.Hour)
	stored := &model.Credential{UserID: "user-1", Platform: model.PlatformThreads, AccessToken: "tok", ExpiresAt: &expires}
	newExpiry := testNow.Add(60 * 24 * time.Hour)
	refreshed := &model.Credential{UserID: "user-1", Platform: model.PlatformThreads, AccessToken: "tok-new", ExpiresAt: &newExpiry}

	credRepo.On("GetByProvider", mock.Anything, "user-1", model.PlatformThreads).Return(stored, nil)
	driver.On("RefreshCredential", mock.Anything, stored).Return(refreshed, nil)
	credRepo.On("Upsert", mock.Anything, refreshed).Return(context.DeadlineExceeded)

	tm := newTokenManager(credRepo, driver)
	cred, err := tm.EnsureUsable(context.Background(), "user-1", model.PlatformThreads)

	require.NoError(t, err)
	require.Equal(t, "tok-new", cred.AccessToken)
}
