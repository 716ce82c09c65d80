package dto

import "content-studio/domain/model"

// PublishRequest is the inbound body of POST /api/publish.
type PublishRequest struct {
	Targets     []model.PublishTarget `json:"targets" binding:"required"`
	Text        string                `json:"text" binding:"required"`
	MediaURL    string                `json:"media_url,omitempty"`
	CommentText string                `json:"comment_text,omitempty"`
}

// PublishResponse carries the aggregate classification plus one result per
// requested target.
type PublishResponse struct {
	RequestID string                `json:"request_id"`
	Overall   model.Overall         `json:"overall"`
	Results   []model.PublishResult `json:"results"`
}

// PlatformCapability describes one supported platform for the capability
// listing endpoint.
type PlatformCapability struct {
	Platform        model.Platform `json:"platform"`
	RequiresPage    bool           `json:"requires_page"`
	SupportsComment bool           `json:"supports_comment"`
	MediaKinds      []string       `json:"media_kinds"`
}
