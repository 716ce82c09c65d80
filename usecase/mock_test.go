package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"content-studio/domain/model"
)

type mockCredentialRepo struct {
	mock.Mock
}

func (m *mockCredentialRepo) GetByProvider(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error) {
	args := m.Called(ctx, userID, platform)
	if cred := args.Get(0); cred != nil {
		return cred.(*model.Credential), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCredentialRepo) Upsert(ctx context.Context, cred *model.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *mockCredentialRepo) Delete(ctx context.Context, userID string, platform model.Platform) error {
	args := m.Called(ctx, userID, platform)
	return args.Error(0)
}

type mockDriver struct {
	mock.Mock
	platform model.Platform
}

func (m *mockDriver) Platform() model.Platform { return m.platform }

func (m *mockDriver) Publish(ctx context.Context, cred *model.Credential, post model.Post) (string, error) {
	args := m.Called(ctx, cred, post)
	return args.String(0), args.Error(1)
}

func (m *mockDriver) Comment(ctx context.Context, cred *model.Credential, postID, text string) (string, error) {
	args := m.Called(ctx, cred, postID, text)
	return args.String(0), args.Error(1)
}

func (m *mockDriver) RefreshCredential(ctx context.Context, cred *model.Credential) (*model.Credential, error) {
	args := m.Called(ctx, cred)
	if refreshed := args.Get(0); refreshed != nil {
		return refreshed.(*model.Credential), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPublishRecordRepo struct {
	mock.Mock
}

func (m *mockPublishRecordRepo) UpsertResults(ctx context.Context, requestID, userID string, results []model.PublishResult) error {
	args := m.Called(ctx, requestID, userID, results)
	return args.Error(0)
}

func (m *mockPublishRecordRepo) GetHistory(ctx context.Context, userID string, limit int) ([]*model.PublishRecord, error) {
	args := m.Called(ctx, userID, limit)
	if records := args.Get(0); records != nil {
		return records.([]*model.PublishRecord), args.Error(1)
	}
	return nil, args.Error(1)
}
