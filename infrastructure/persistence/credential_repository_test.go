package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"content-studio/domain/model"
)

func TestCredentialRepository_GetByProvider(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &CredentialRepository{db: db}

	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	expires := now.Add(60 * 24 * time.Hour)
	pageID := "page-42"
	pageName := "My Page"
	tokenType := "page"

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, platform, account_id, access_token, refresh_token, expires_at, scopes, page_id, page_name, token_type, created_at, updated_at FROM platform_credentials WHERE user_id=$1 AND platform=$2`)).
		WithArgs("user-1", model.PlatformFacebook).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "platform", "account_id", "access_token", "refresh_token", "expires_at", "scopes", "page_id", "page_name", "token_type", "created_at", "updated_at"}).
			AddRow(int64(7), "user-1", "facebook", "acct-9", "tok-abc", "", expires, "pages_manage_posts", pageID, pageName, tokenType, now, now))

	cred, err := repo.GetByProvider(context.Background(), "user-1", model.PlatformFacebook)
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, int64(7), cred.ID)
	require.Equal(t, model.PlatformFacebook, cred.Platform)
	require.Equal(t, "acct-9", cred.AccountID)
	require.Equal(t, "tok-abc", cred.AccessToken)
	require.NotNil(t, cred.ExpiresAt)
	require.Equal(t, expires, *cred.ExpiresAt)
	require.Equal(t, pageID, *cred.PageID)
	require.Equal(t, pageName, *cred.PageName)
	require.Equal(t, tokenType, *cred.TokenType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_GetByProvider_NotConnected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &CredentialRepository{db: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, platform, account_id, access_token, refresh_token, expires_at, scopes, page_id, page_name, token_type, created_at, updated_at FROM platform_credentials WHERE user_id=$1 AND platform=$2`)).
		WithArgs("user-1", model.PlatformThreads).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	cred, err := repo.GetByProvider(context.Background(), "user-1", model.PlatformThreads)
	require.NoError(t, err)
	require.Nil(t, cred)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &CredentialRepository{db: db}

	expires := time.Now().Add(60 * 24 * time.Hour).UTC()
	cred := &model.Credential{
		UserID:      "user-1",
		Platform:    model.PlatformThreads,
		AccountID:   "th-account",
		AccessToken: "tok-new",
		ExpiresAt:   &expires,
		Scopes:      "threads_basic,threads_content_publish",
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO platform_credentials`)).
		WithArgs("user-1", model.PlatformThreads, "th-account", "tok-new", "", sqlmock.AnyArg(), cred.Scopes, nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Upsert(context.Background(), cred))
	require.False(t, cred.CreatedAt.IsZero())
	require.False(t, cred.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &CredentialRepository{db: db}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM platform_credentials WHERE user_id=$1 AND platform=$2`)).
		WithArgs("user-1", model.PlatformFacebook).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "user-1", model.PlatformFacebook))
	require.NoError(t, mock.ExpectationsWereMet())
}
