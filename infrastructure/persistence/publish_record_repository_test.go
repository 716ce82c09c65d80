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

func TestPublishRecordRepository_UpsertResults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &PublishRecordRepository{db: db}

	results := []model.PublishResult{
		{Platform: model.PlatformThreads, Success: true, PostID: "p1"},
		{Platform: model.PlatformFacebook, Success: false, ErrorCode: "REFRESH_FAILED", ErrorMessage: "token refresh failed, please reconnect your account"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO publish_records`)).
		WithArgs("req-1", "user-1", model.PlatformThreads, "success",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO publish_records`)).
		WithArgs("req-1", "user-1", model.PlatformFacebook, "failed",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpsertResults(context.Background(), "req-1", "user-1", results))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishRecordRepository_GetHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &PublishRecordRepository{db: db}

	now := time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, request_id, user_id, platform, status, post_id, error_code, error_message, page_name, attempt_count, created_at, updated_at FROM publish_records WHERE user_id=$1 ORDER BY updated_at DESC LIMIT $2`)).
		WithArgs("user-1", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "user_id", "platform", "status", "post_id", "error_code", "error_message", "page_name", "attempt_count", "created_at", "updated_at"}).
			AddRow(int64(3), "req-1", "user-1", "threads", "success", "p1", nil, nil, nil, 1, now, now))

	list, err := repo.GetHistory(context.Background(), "user-1", 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, model.PlatformThreads, list[0].Platform)
	require.Equal(t, "success", list[0].Status)
	require.NotNil(t, list[0].PostID)
	require.Equal(t, "p1", *list[0].PostID)
	require.Nil(t, list[0].ErrorMessage)
	require.NoError(t, mock.ExpectationsWereMet())
}
