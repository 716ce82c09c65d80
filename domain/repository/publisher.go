package repository

import (
	"context"

	"content-studio/domain/model"
)

// IPublishDriver adapts one platform family's wire protocol to the uniform
// publish contract. Implementations form a closed set selected by platform
// tag at the orchestrator boundary.
type IPublishDriver interface {
	Platform() model.Platform

	// Publish turns (credential, post) into an external post identifier.
	// Container-style platforms run create, poll and publish internally;
	// direct-style platforms issue a single request. Failures carry a
	// model.PublishError classification.
	Publish(ctx context.Context, cred *model.Credential, post model.Post) (string, error)

	// Comment attaches a dependent reply to a just-created post and returns
	// the comment's external identifier.
	Comment(ctx context.Context, cred *model.Credential, postID, text string) (string, error)

	// RefreshCredential executes the platform-specific token refresh protocol
	// and returns a rewritten credential. It does not persist anything.
	RefreshCredential(ctx context.Context, cred *model.Credential) (*model.Credential, error)
}
