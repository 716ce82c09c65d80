package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"content-studio/domain/model"
	"content-studio/domain/repository"
)

// CredentialRepositoryMSSQL is the SQL Server implementation of the
// credential store, used in production (Azure SQL).
type CredentialRepositoryMSSQL struct{ db *sql.DB }

func NewCredentialRepositoryMSSQL(db *sql.DB) repository.ICredential {
	return &CredentialRepositoryMSSQL{db: db}
}

// EnsureCredentialSchemaMSSQL creates the platform_credentials table for SQL Server if it does not exist.
func EnsureCredentialSchemaMSSQL(db *sql.DB) error {
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.platform_credentials') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[platform_credentials] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        user_id NVARCHAR(128) NOT NULL,
        platform NVARCHAR(64) NOT NULL,
        account_id NVARCHAR(128) NOT NULL,
        access_token NVARCHAR(MAX) NOT NULL,
        refresh_token NVARCHAR(MAX) NULL,
        expires_at DATETIME2 NULL,
        scopes NVARCHAR(MAX) NOT NULL,
        page_id NVARCHAR(128) NULL,
        page_name NVARCHAR(255) NULL,
        token_type NVARCHAR(32) NULL,
        created_at DATETIME2 NOT NULL,
        updated_at DATETIME2 NOT NULL
    );
    CREATE UNIQUE INDEX UX_platform_credentials_key ON dbo.[platform_credentials](user_id, platform, account_id);
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create platform_credentials (mssql): %w", err)
	}
	return nil
}

func (r *CredentialRepositoryMSSQL) Upsert(ctx context.Context, c *model.Credential) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	// Normalize nullable values for the MSSQL driver
	var exp sql.NullTime
	if c.ExpiresAt != nil {
		exp.Valid = true
		exp.Time = *c.ExpiresAt
	}
	var pageID sql.NullString
	if c.PageID != nil {
		pageID.Valid = true
		pageID.String = *c.PageID
	}
	var pageName sql.NullString
	if c.PageName != nil {
		pageName.Valid = true
		pageName.String = *c.PageName
	}
	var tokenType sql.NullString
	if c.TokenType != nil {
		tokenType.Valid = true
		tokenType.String = *c.TokenType
	}
	// MERGE upsert by (user_id, platform, account_id)
	q := `MERGE dbo.[platform_credentials] AS target
USING (VALUES (@p1, @p2, @p3)) AS src(user_id, platform, account_id)
ON target.user_id = src.user_id AND target.platform = src.platform AND target.account_id = src.account_id
WHEN MATCHED THEN UPDATE SET
    access_token=@p4,
    refresh_token=@p5,
    expires_at=@p6,
    scopes=@p7,
    page_id=@p8,
    page_name=@p9,
    token_type=@p10,
    updated_at=@p12
WHEN NOT MATCHED THEN
    INSERT (user_id, platform, account_id, access_token, refresh_token, expires_at, scopes, page_id, page_name, token_type, created_at, updated_at)
    VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7,@p8,@p9,@p10,@p11,@p12);`
	_, err := r.db.ExecContext(ctx, q,
		c.UserID, string(c.Platform), c.AccountID,
		c.AccessToken,
		c.RefreshToken,
		exp,
		c.Scopes,
		pageID,
		pageName,
		tokenType,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *CredentialRepositoryMSSQL) GetByProvider(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, platform, account_id, access_token, refresh_token, expires_at, scopes, page_id, page_name, token_type, created_at, updated_at FROM dbo.[platform_credentials] WHERE user_id=@p1 AND platform=@p2`, userID, string(platform))
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

func (r *CredentialRepositoryMSSQL) Delete(ctx context.Context, userID string, platform model.Platform) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dbo.[platform_credentials] WHERE user_id=@p1 AND platform=@p2`, userID, string(platform))
	return err
}
