package model

import "time"

// Platform identifies a supported social publishing platform.
type Platform string

const (
	PlatformThreads  Platform = "threads"
	PlatformFacebook Platform = "facebook"
)

// ParsePlatform normalizes a platform tag coming from a request body.
func ParsePlatform(s string) (Platform, bool) {
	switch Platform(s) {
	case PlatformThreads:
		return PlatformThreads, true
	case PlatformFacebook:
		return PlatformFacebook, true
	}
	return "", false
}

// Credential stores platform OAuth credentials for one linked external account.
// At most one row exists per (user_id, platform, account_id); upserts converge
// on that key.
type Credential struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	Platform     Platform   `json:"platform"`
	AccountID    string     `json:"account_id"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Scopes       string     `json:"scopes"`
	PageID       *string    `json:"page_id,omitempty"`
	PageName     *string    `json:"page_name,omitempty"`
	TokenType    *string    `json:"token_type,omitempty"` // user | page
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ExpiringSoon reports whether the access token expires within the buffer.
// A credential without an expiry timestamp never expires from our point of
// view, so it is never routed through the refresh path.
func (c *Credential) ExpiringSoon(now time.Time, buffer time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Before(now.Add(buffer))
}
