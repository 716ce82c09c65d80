package threads

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"content-studio/domain/model"
	"content-studio/domain/repository"
	"content-studio/infrastructure/logger"
)

// Driver publishes to Threads via the container protocol: create a media
// container, wait for server-side processing, then publish it.
type Driver struct {
	client        *Client
	poller        *Poller
	tokenValidity time.Duration
	now           func() time.Time
}

func NewDriver(client *Client, poller *Poller, tokenValidity time.Duration) repository.IPublishDriver {
	return &Driver{
		client:        client,
		poller:        poller,
		tokenValidity: tokenValidity,
		now:           time.Now,
	}
}

func (d *Driver) Platform() model.Platform {
	return model.PlatformThreads
}

func (d *Driver) Publish(ctx context.Context, cred *model.Credential, post model.Post) (string, error) {
	containerID, err := d.client.CreateContainer(ctx, cred.AccountID, cred.AccessToken, post)
	if err != nil {
		return "", model.WrapPublishError(model.ErrContainerCreateFailed, err, "failed to create media container")
	}
	logger.GetLogger().WithField("container_id", containerID).WithField("media_kind", post.MediaKind).Info("Container created")

	if err := d.waitFinished(ctx, cred, containerID, post.MediaKind); err != nil {
		return "", err
	}

	postID, err := d.client.PublishContainer(ctx, cred.AccountID, cred.AccessToken, containerID)
	if err != nil {
		return "", model.WrapPublishError(model.ErrPublishFailed, err, "failed to publish container")
	}
	return postID, nil
}

func (d *Driver) Comment(ctx context.Context, cred *model.Credential, postID, text string) (string, error) {
	containerID, err := d.client.CreateReplyContainer(ctx, cred.AccountID, cred.AccessToken, postID, text)
	if err != nil {
		if isForeignPostError(err) {
			return "", model.WrapPublishError(model.ErrCannotReplyToForeignPost, err, "cannot reply to a post owned by another account")
		}
		return "", model.WrapPublishError(model.ErrContainerCreateFailed, err, "failed to create reply container")
	}

	if err := d.waitFinished(ctx, cred, containerID, model.MediaKindText); err != nil {
		return "", err
	}

	commentID, err := d.client.PublishContainer(ctx, cred.AccountID, cred.AccessToken, containerID)
	if err != nil {
		if isForeignPostError(err) {
			return "", model.WrapPublishError(model.ErrCannotReplyToForeignPost, err, "cannot reply to a post owned by another account")
		}
		return "", model.WrapPublishError(model.ErrPublishFailed, err, "failed to publish reply")
	}
	return commentID, nil
}

func (d *Driver) RefreshCredential(ctx context.Context, cred *model.Credential) (*model.Credential, error) {
	token, expiresIn, err := d.client.RefreshToken(ctx, cred.AccessToken)
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

func (d *Driver) waitFinished(ctx context.Context, cred *model.Credential, containerID string, kind model.MediaKind) error {
	err := d.poller.WaitFinished(ctx, containerID, kind, func(ctx context.Context) (ContainerState, string, error) {
		return d.client.ContainerStatus(ctx, containerID, cred.AccessToken)
	})
	if err == nil {
		return nil
	}
	var errored *ErrContainerErrored
	if errors.As(err, &errored) {
		return model.WrapPublishError(model.ErrContainerErrored, err, "media container failed processing")
	}
	var timedOut *ErrContainerTimedOut
	if errors.As(err, &timedOut) {
		return model.WrapPublishError(model.ErrContainerTimedOut, err, "%s", err.Error())
	}
	return model.WrapPublishError(model.ErrPublishFailed, err, "container status check failed")
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
