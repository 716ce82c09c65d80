package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"content-studio/domain/model"
	"content-studio/domain/repository"
)

// PublishRecordRepositoryMSSQL is the SQL Server implementation of the
// publish-record store, used in production (Azure SQL).
type PublishRecordRepositoryMSSQL struct{ db *sql.DB }

func NewPublishRecordRepositoryMSSQL(db *sql.DB) repository.IPublishRecord {
	return &PublishRecordRepositoryMSSQL{db: db}
}

// EnsurePublishSchemaMSSQL creates the publish_records table for SQL Server if it does not exist.
func EnsurePublishSchemaMSSQL(db *sql.DB) error {
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.publish_records') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[publish_records] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        request_id NVARCHAR(64) NOT NULL,
        user_id NVARCHAR(128) NOT NULL,
        platform NVARCHAR(64) NOT NULL,
        status NVARCHAR(32) NOT NULL,
        post_id NVARCHAR(255) NULL,
        error_code NVARCHAR(64) NULL,
        error_message NVARCHAR(MAX) NULL,
        page_name NVARCHAR(255) NULL,
        attempt_count INT NOT NULL DEFAULT 1,
        created_at DATETIME2 NOT NULL,
        updated_at DATETIME2 NOT NULL
    );
    CREATE UNIQUE INDEX UX_publish_records_key ON dbo.[publish_records](user_id, platform);
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create publish_records (mssql): %w", err)
	}
	return nil
}

func (r *PublishRecordRepositoryMSSQL) UpsertResults(ctx context.Context, requestID, userID string, results []model.PublishResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	now := time.Now().UTC()
	// MERGE upsert by (user_id, platform)
	q := `MERGE dbo.[publish_records] AS target
USING (VALUES (@p1, @p2)) AS src(user_id, platform)
ON target.user_id = src.user_id AND target.platform = src.platform
WHEN MATCHED THEN UPDATE SET
    request_id=@p3,
    status=@p4,
    post_id=@p5,
    error_code=@p6,
    error_message=@p7,
    page_name=@p8,
    attempt_count=target.attempt_count + 1,
    updated_at=@p9
WHEN NOT MATCHED THEN
    INSERT (request_id, user_id, platform, status, post_id, error_code, error_message, page_name, attempt_count, created_at, updated_at)
    VALUES (@p3, @p1, @p2, @p4, @p5, @p6, @p7, @p8, 1, @p9, @p9);`
	for _, res := range results {
		status := "failed"
		if res.Success {
			status = "success"
		}
		var postID, errCode, errMsg, pageName sql.NullString
		if res.PostID != "" {
			postID = sql.NullString{String: res.PostID, Valid: true}
		}
		if res.ErrorCode != "" {
			errCode = sql.NullString{String: res.ErrorCode, Valid: true}
		}
		if res.ErrorMessage != "" {
			errMsg = sql.NullString{String: res.ErrorMessage, Valid: true}
		}
		if res.PageName != "" {
			pageName = sql.NullString{String: res.PageName, Valid: true}
		}
		if _, err = tx.ExecContext(ctx, q, userID, string(res.Platform), requestID, status, postID, errCode, errMsg, pageName, now); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

func (r *PublishRecordRepositoryMSSQL) GetHistory(ctx context.Context, userID string, limit int) ([]*model.PublishRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT TOP (@p2) id, request_id, user_id, platform, status, post_id, error_code, error_message, page_name, attempt_count, created_at, updated_at FROM dbo.[publish_records] WHERE user_id=@p1 ORDER BY updated_at DESC`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.PublishRecord
	for rows.Next() {
		rec := &model.PublishRecord{}
		var postID, errCode, errMsg, pageName sql.NullString
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.UserID, &rec.Platform, &rec.Status, &postID, &errCode, &errMsg, &pageName, &rec.AttemptCount, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if postID.Valid {
			rec.PostID = &postID.String
		}
		if errCode.Valid {
			rec.ErrorCode = &errCode.String
		}
		if errMsg.Valid {
			rec.ErrorMessage = &errMsg.String
		}
		if pageName.Valid {
			rec.PageName = &pageName.String
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
