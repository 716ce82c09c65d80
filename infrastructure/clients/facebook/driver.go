package facebook

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"content-studio/domain/model"
	"content-studio/domain/repository"
)

// Driver publishes to Facebook pages directly: feed endpoint for text-only
// posts, photos endpoint when a media URL is present. Publication is
// synchronous, no container polling is involved.
type Driver struct {
	client        *Client
	appID         string
	tokenValidity time.Duration
	now           func() time.Time
}

func NewDriver(client *Client, appID string, tokenValidity time.Duration) repository.IPublishDriver {
	return &Driver{
		client:        client,
		appID:         appID,
		tokenValidity: tokenValidity,
		now:           time.Now,
	}
}

func (d *Driver) Platform() model.Platform {
	return model.PlatformFacebook
}

func (d *Driver) Publish(ctx context.Context, cred *model.Credential, post model.Post) (string, error) {
	pageID := cred.AccountID
	if cred.PageID != nil && *cred.PageID != "" {
		pageID = *cred.PageID
	}
	if pageID == "" {
		return "", model.NewPublishError(model.ErrPublishFailed, "no page selected for this account")
	}

	var postID string
	var err error
	if post.MediaKind == model.MediaKindText {
		postID, err = d.client.PostToFeed(ctx, pageID, cred.AccessToken, post.Text)
	} else {
		postID, err = d.client.PostPhoto(ctx, pageID, cred.AccessToken, post.MediaURL, post.Text)
	}
	if err != nil {
		return "", model.WrapPublishError(model.ErrPublishFailed, err, "failed to publish to page")
	}
	return postID, nil
}

func (d *Driver) Comment(ctx context.Context, cred *model.Credential, postID, text string) (string, error) {
	commentID, err := d.client.Comment(ctx, postID, cred.AccessToken, text)
	if err != nil {
		if isForeignPostError(err) {
			return "", model.WrapPublishError(model.ErrCannotReplyToForeignPost, err, "cannot comment on a post owned by another account")
		}
		return "", model.WrapPublishError(model.ErrPublishFailed, err, "failed to post comment")
	}
	return commentID, nil
}

func (d *Driver) RefreshCredential(ctx context.Context, cred *model.Credential) (*model.Credential, error) {
	token, expiresIn, err := d.client.ExchangeToken(ctx, d.appID, cred.AccessToken)
	if err != nil {
		return nil, model.WrapPublishError(model.ErrRefreshFailed, err, "token refresh failed, please reconnect your account")
	}
	validity := d.tokenValidity
	if expiresIn > 0 {
		validity = expiresIn
	}
	expires := d.now().Add(validity).UTC()
	refreshed := *cred
	refreshed.AccessToken = token
	refreshed.ExpiresAt = &expires
	return &refreshed, nil
}

func isForeignPostError(err error) bool {
	var graphErr *GraphError
	if !errors.As(err, &graphErr) {
		return false
	}
	if graphErr.StatusCode == http.StatusForbidden {
		return true
	}
	msg := strings.ToLower(graphErr.Message)
	return strings.Contains(msg, "not authorized") || strings.Contains(msg, "permission")
}
