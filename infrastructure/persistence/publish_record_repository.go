package persistence

import (
	"context"
	"database/sql"
	"time"

	"content-studio/domain/model"
	"content-studio/domain/repository"
)

// PublishRecordRepository persists per-platform publish outcomes on PostgreSQL.
type PublishRecordRepository struct{ db *sql.DB }

func NewPublishRecordRepository(db *sql.DB) repository.IPublishRecord {
	return &PublishRecordRepository{db: db}
}

func (r *PublishRecordRepository) UpsertResults(ctx context.Context, requestID, userID string, results []model.PublishResult) error {
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
	q := `INSERT INTO publish_records (request_id, user_id, platform, status, post_id, error_code, error_message, page_name, attempt_count, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,1,$9,$9)
	      ON CONFLICT (user_id, platform) DO UPDATE SET
	        request_id=EXCLUDED.request_id,
	        status=EXCLUDED.status,
	        post_id=EXCLUDED.post_id,
	        error_code=EXCLUDED.error_code,
	        error_message=EXCLUDED.error_message,
	        page_name=EXCLUDED.page_name,
	        attempt_count=publish_records.attempt_count + 1,
	        updated_at=EXCLUDED.updated_at`
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
		if _, err = tx.ExecContext(ctx, q, requestID, userID, res.Platform, status, postID, errCode, errMsg, pageName, now); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

func (r *PublishRecordRepository) GetHistory(ctx context.Context, userID string, limit int) ([]*model.PublishRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, request_id, user_id, platform, status, post_id, error_code, error_message, page_name, attempt_count, created_at, updated_at FROM publish_records WHERE user_id=$1 ORDER BY updated_at DESC LIMIT $2`, userID, limit)
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
