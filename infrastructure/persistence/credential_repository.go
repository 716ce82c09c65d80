package persistence

import (
	"context"
	"database/sql"
	"time"

	"content-studio/domain/model"
	"content-studio/domain/repository"
)

// CredentialRepository implements the credential store on PostgreSQL.
type CredentialRepository struct{ db *sql.DB }

func NewCredentialRepository(db *sql.DB) repository.ICredential {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Upsert(ctx context.Context, c *model.Credential) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	q := `INSERT INTO platform_credentials (user_id, platform, account_id, access_token, refresh_token, expires_at, scopes, page_id, page_name, token_type, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		  ON CONFLICT (user_id, platform, account_id) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			expires_at=EXCLUDED.expires_at,
			scopes=EXCLUDED.scopes,
			page_id=EXCLUDED.page_id,
			page_name=EXCLUDED.page_name,
			token_type=EXCLUDED.token_type,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, c.UserID, c.Platform, c.AccountID, c.AccessToken, c.RefreshToken, c.ExpiresAt, c.Scopes, c.PageID, c.PageName, c.TokenType, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CredentialRepository) GetByProvider(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, platform, account_id, access_token, refresh_token, expires_at, scopes, page_id, page_name, token_type, created_at, updated_at FROM platform_credentials WHERE user_id=$1 AND platform=$2`, userID, platform)
	cred := &model.Credential{}
	var exp sql.NullTime
	var pageID, pageName, tokenType sql.NullString
	if err := row.Scan(&cred.ID, &cred.UserID, &cred.Platform, &cred.AccountID, &cred.AccessToken, &cred.RefreshToken, &exp, &cred.Scopes, &pageID, &pageName, &tokenType, &cred.CreatedAt, &cred.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if exp.Valid {
		cred.ExpiresAt = &exp.Time
	}
	if pageID.Valid {
		v := pageID.String
		cred.PageID = &v
	}
	if pageName.Valid {
		v := pageName.String
		cred.PageName = &v
	}
	if tokenType.Valid {
		v := tokenType.String
		cred.TokenType = &v
	}
	return cred, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, userID string, platform model.Platform) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM platform_credentials WHERE user_id=$1 AND platform=$2`, userID, platform)
	return err
}
