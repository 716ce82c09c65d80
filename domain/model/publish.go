package model

import (
	"net/url"
	"strings"
	"time"
)

// MediaKind classifies post content for the platforms' media pipelines.
type MediaKind string

const (
	MediaKindText  MediaKind = "TEXT"
	MediaKindImage MediaKind = "IMAGE"
	MediaKindVideo MediaKind = "VIDEO"
)

// InferMediaKind derives the media kind from the media URL extension.
// An empty URL means a text-only post.
func InferMediaKind(mediaURL string) MediaKind {
	if mediaURL == "" {
		return MediaKindText
	}
	lower := strings.ToLower(mediaURL)
	// Strip query string before looking at the extension
	if idx := strings.IndexByte(lower, '?'); idx != -1 {
		lower = lower[:idx]
	}
	for _, ext := range []string{".mp4", ".mov", ".m4v", ".webm"} {
		if strings.HasSuffix(lower, ext) {
			return MediaKindVideo
		}
	}
	return MediaKindImage
}

// ValidMediaURL reports whether the media URL is an externally fetchable
// HTTP(S) URL. Local paths, blob: and data: URLs are rejected before any
// network call; upload to public hosting is the caller's job.
func ValidMediaURL(mediaURL string) bool {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Post is the flattened content handed to a platform driver.
type Post struct {
	Text      string
	MediaURL  string
	MediaKind MediaKind
}

// PublishTarget selects one platform (and, where the platform requires it,
// a sub-target such as a Facebook page).
type PublishTarget struct {
	Platform Platform `json:"platform"`
	PageID   string   `json:"page_id,omitempty"`
}

// PublishResult is the uniform per-platform outcome record. The orchestrator
// produces exactly one of these for every requested target, success or not.
type PublishResult struct {
	Platform       Platform `json:"platform"`
	Success        bool     `json:"success"`
	PostID         string   `json:"post_id,omitempty"`
	ErrorCode      string   `json:"error_code,omitempty"`
	ErrorMessage   string   `json:"error_message,omitempty"`
	PageID         string   `json:"page_id,omitempty"`
	PageName       string   `json:"page_name,omitempty"`
	CommentID      string   `json:"comment_id,omitempty"`
	CommentWarning string   `json:"comment_warning,omitempty"`
}

// Overall is the three-way aggregate classification of a fan-out publish.
type Overall string

const (
	OverallAllSuccess     Overall = "all_success"
	OverallPartialSuccess Overall = "partial_success"
	OverallAllFailure     Overall = "all_failure"
)

// ClassifyResults folds per-platform results into the aggregate outcome.
func ClassifyResults(results []PublishResult) Overall {
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	switch succeeded {
	case 0:
		return OverallAllFailure
	case len(results):
		return OverallAllSuccess
	default:
		return OverallPartialSuccess
	}
}

// PublishRecord is the latest persisted state of a publish attempt per
// (user, platform) row within one orchestrated request.
type PublishRecord struct {
	ID           int64     `json:"id"`
	RequestID    string    `json:"request_id"`
	UserID       string    `json:"user_id"`
	Platform     Platform  `json:"platform"`
	Status       string    `json:"status"` // success | failed
	PostID       *string   `json:"post_id,omitempty"`
	ErrorCode    *string   `json:"error_code,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	PageName     *string   `json:"page_name,omitempty"`
	AttemptCount int       `json:"attempt_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublishAudit is an append-only log entry for one platform attempt.
type PublishAudit struct {
	RequestID    string    `json:"request_id" bson:"request_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	Platform     Platform  `json:"platform" bson:"platform"`
	Status       string    `json:"status" bson:"status"`
	PostID       *string   `json:"post_id,omitempty" bson:"post_id,omitempty"`
	ErrorCode    *string   `json:"error_code,omitempty" bson:"error_code,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty" bson:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
