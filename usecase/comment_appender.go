package usecase

import (
	"context"

	"content-studio/domain/model"
	"content-studio/domain/repository"
	"content-studio/infrastructure/logger"
)

// appendComment attaches the follow-up comment to a freshly published post.
// The post already succeeded at this point, so whatever happens here is a
// warning on the result, never a downgrade to failure.
func appendComment(ctx context.Context, driver repository.IPublishDriver, cred *model.Credential, res *model.PublishResult, text string) {
	if text == "" || !res.Success {
		return
	}
	commentID, err := driver.Comment(ctx, cred, res.PostID, text)
	if err != nil {
		logger.GetLogger().
			WithField("platform", res.Platform).
			WithField("post_id", res.PostID).
			WithField("error", err).
			Warn("Comment append failed")
		res.CommentWarning = string(model.CodeOf(err)) + ": " + model.MessageOf(err)
		return
	}
	res.CommentID = commentID
}
