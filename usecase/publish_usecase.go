package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"content-studio/domain/dto"
	"content-studio/domain/model"
	"content-studio/domain/repository"
	"content-studio/infrastructure/cache"
	"content-studio/infrastructure/logger"
	"content-studio/infrastructure/pubsub"
)

// IPublishUsecase orchestrates one post across the selected platforms.
type IPublishUsecase interface {
	Publish(ctx context.Context, userID string, req dto.PublishRequest) (*dto.PublishResponse, error)
	GetHistory(ctx context.Context, userID string, limit int) ([]*model.PublishRecord, error)
	Platforms() []dto.PlatformCapability
}

// IBroadcaster pushes per-platform outcomes to connected SSE subscribers.
type IBroadcaster interface {
	BroadcastPublishStatus(userID, requestID string, res model.PublishResult)
}

type publishUsecase struct {
	tokens         ITokenManager
	drivers        map[model.Platform]repository.IPublishDriver
	records        repository.IPublishRecord
	audits         repository.IPublishAudit
	events         pubsub.IPublishEvents
	pages          cache.IPageCache
	broadcaster    IBroadcaster
	overallTimeout time.Duration
	newRequestID   func() string
}

func NewPublishUsecase(
	tokens ITokenManager,
	drivers map[model.Platform]repository.IPublishDriver,
	records repository.IPublishRecord,
	audits repository.IPublishAudit,
	events pubsub.IPublishEvents,
	pages cache.IPageCache,
	broadcaster IBroadcaster,
	overallTimeout time.Duration,
) IPublishUsecase {
	return &publishUsecase{
		tokens:         tokens,
		drivers:        drivers,
		records:        records,
		audits:         audits,
		events:         events,
		pages:          pages,
		broadcaster:    broadcaster,
		overallTimeout: overallTimeout,
		newRequestID:   newRequestID,
	}
}

func newRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return time.Now().UTC().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(buf)
}

type indexedResult struct {
	index  int
	result model.PublishResult
}

// Publish fans the post out to every requested target concurrently and
// returns exactly one result per target. Platform failures are values in the
// response, not errors; an error return means the request itself was invalid.
func (u *publishUsecase) Publish(ctx context.Context, userID string, req dto.PublishRequest) (*dto.PublishResponse, error) {
	if len(req.Targets) == 0 {
		return nil, errors.New("at least one target is required")
	}
	if req.Text == "" && req.MediaURL == "" {
		return nil, errors.New("post text or media_url is required")
	}
	for _, target := range req.Targets {
		if _, ok := u.drivers[target.Platform]; !ok {
			return nil, errors.New("unsupported platform: " + string(target.Platform))
		}
	}

	requestID := u.newRequestID()
	post := model.Post{
		Text:      req.Text,
		MediaURL:  req.MediaURL,
		MediaKind: model.InferMediaKind(req.MediaURL),
	}

	// Reject unusable media before any credential lookup or network call.
	if req.MediaURL != "" && !model.ValidMediaURL(req.MediaURL) {
		results := make([]model.PublishResult, len(req.Targets))
		for i, target := range req.Targets {
			results[i] = model.PublishResult{
				Platform:     target.Platform,
				PageID:       target.PageID,
				ErrorCode:    string(model.ErrInvalidMediaURL),
				ErrorMessage: "media_url must be a publicly reachable http(s) URL",
			}
		}
		u.finish(userID, requestID, results)
		return &dto.PublishResponse{RequestID: requestID, Overall: model.ClassifyResults(results), Results: results}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, u.overallTimeout)
	defer cancel()

	resultCh := make(chan indexedResult, len(req.Targets))
	for i, target := range req.Targets {
		go func(i int, target model.PublishTarget) {
			resultCh <- indexedResult{index: i, result: u.publishOne(ctx, userID, requestID, target, post, req.CommentText)}
		}(i, target)
	}

	results := make([]model.PublishResult, len(req.Targets))
	done := make([]bool, len(req.Targets))
	remaining := len(req.Targets)
collect:
	for remaining > 0 {
		select {
		case r := <-resultCh:
			results[r.index] = r.result
			done[r.index] = true
			remaining--
		case <-ctx.Done():
			break collect
		}
	}
	for i, target := range req.Targets {
		if done[i] {
			continue
		}
		results[i] = model.PublishResult{
			Platform:     target.Platform,
			PageID:       target.PageID,
			ErrorCode:    string(model.ErrContainerTimedOut),
			ErrorMessage: "publish did not complete within " + u.overallTimeout.String(),
		}
	}

	u.finish(userID, requestID, results)
	return &dto.PublishResponse{RequestID: requestID, Overall: model.ClassifyResults(results), Results: results}, nil
}

func (u *publishUsecase) publishOne(ctx context.Context, userID, requestID string, target model.PublishTarget, post model.Post, commentText string) model.PublishResult {
	res := model.PublishResult{Platform: target.Platform, PageID: target.PageID}

	cred, err := u.tokens.EnsureUsable(ctx, userID, target.Platform)
	if err != nil {
		res.ErrorCode = string(model.CodeOf(err))
		res.ErrorMessage = model.MessageOf(err)
		u.broadcast(userID, requestID, res)
		return res
	}

	cred, err = u.resolvePage(ctx, userID, cred, target)
	if err != nil {
		res.ErrorCode = string(model.CodeOf(err))
		res.ErrorMessage = model.MessageOf(err)
		u.broadcast(userID, requestID, res)
		return res
	}
	if cred.PageID != nil {
		res.PageID = *cred.PageID
	}
	if cred.PageName != nil {
		res.PageName = *cred.PageName
	}

	driver := u.drivers[target.Platform]
	postID, err := driver.Publish(ctx, cred, post)
	if err != nil {
		res.ErrorCode = string(model.CodeOf(err))
		res.ErrorMessage = model.MessageOf(err)
		u.broadcast(userID, requestID, res)
		return res
	}
	res.Success = true
	res.PostID = postID

	appendComment(ctx, driver, cred, &res, commentText)
	u.broadcast(userID, requestID, res)
	return res
}

// resolvePage swaps in the page-scoped credential when the request targets a
// specific page other than the stored default. An explicitly requested page
// that cannot be resolved fails the target; falling back to the default page
// would publish somewhere the user did not select.
func (u *publishUsecase) resolvePage(ctx context.Context, userID string, cred *model.Credential, target model.PublishTarget) (*model.Credential, error) {
	if target.Platform != model.PlatformFacebook || target.PageID == "" {
		return cred, nil
	}
	if cred.PageID != nil && *cred.PageID == target.PageID {
		return cred, nil
	}
	if u.pages == nil {
		return nil, model.NewPublishError(model.ErrPublishFailed, "requested page %s not available, reconnect facebook", target.PageID)
	}
	pages, err := u.pages.GetPages(ctx, userID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Page cache lookup failed")
		return nil, model.WrapPublishError(model.ErrPublishFailed, err, "requested page %s not available, reconnect facebook", target.PageID)
	}
	for _, p := range pages {
		if p.ID == target.PageID {
			selected := *cred
			pageID, pageName := p.ID, p.Name
			selected.PageID = &pageID
			selected.PageName = &pageName
			if p.AccessToken != "" {
				selected.AccessToken = p.AccessToken
			}
			return &selected, nil
		}
	}
	return nil, model.NewPublishError(model.ErrPublishFailed, "requested page %s not available, reconnect facebook", target.PageID)
}

// finish persists the outcome and emits side effects. The request context may
// already be expired here, so persistence gets its own deadline.
func (u *publishUsecase) finish(userID, requestID string, results []model.PublishResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if u.records != nil {
		if err := u.records.UpsertResults(ctx, requestID, userID, results); err != nil {
			logger.GetLogger().WithField("error", err).Error("Failed to persist publish records")
		}
	}
	if u.audits != nil {
		if err := u.audits.Append(ctx, buildAudits(requestID, userID, results)); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to append publish audit")
		}
	}
	if u.events != nil {
		event := pubsub.PublishEvent{
			RequestID: requestID,
			UserID:    userID,
			Overall:   string(model.ClassifyResults(results)),
			Results:   results,
			EmittedAt: time.Now().UTC(),
		}
		if err := u.events.PublishCompleted(ctx, event); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to emit publish event")
		}
	}
}

func buildAudits(requestID, userID string, results []model.PublishResult) []*model.PublishAudit {
	now := time.Now().UTC()
	audits := make([]*model.PublishAudit, 0, len(results))
	for _, r := range results {
		status := "failed"
		if r.Success {
			status = "success"
		}
		audit := &model.PublishAudit{
			RequestID: requestID,
			UserID:    userID,
			Platform:  r.Platform,
			Status:    status,
			CreatedAt: now,
		}
		if r.PostID != "" {
			postID := r.PostID
			audit.PostID = &postID
		}
		if r.ErrorCode != "" {
			code, msg := r.ErrorCode, r.ErrorMessage
			audit.ErrorCode = &code
			audit.ErrorMessage = &msg
		}
		audits = append(audits, audit)
	}
	return audits
}

func (u *publishUsecase) broadcast(userID, requestID string, res model.PublishResult) {
	if u.broadcaster != nil {
		u.broadcaster.BroadcastPublishStatus(userID, requestID, res)
	}
}

func (u *publishUsecase) GetHistory(ctx context.Context, userID string, limit int) ([]*model.PublishRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.records.GetHistory(ctx, userID, limit)
}

func (u *publishUsecase) Platforms() []dto.PlatformCapability {
	caps := make([]dto.PlatformCapability, 0, len(u.drivers))
	if _, ok := u.drivers[model.PlatformThreads]; ok {
		caps = append(caps, dto.PlatformCapability{
			Platform:        model.PlatformThreads,
			RequiresPage:    false,
			SupportsComment: true,
			MediaKinds:      []string{"TEXT", "IMAGE", "VIDEO"},
		})
	}
	if _, ok := u.drivers[model.PlatformFacebook]; ok {
		caps = append(caps, dto.PlatformCapability{
			Platform:        model.PlatformFacebook,
			RequiresPage:    true,
			SupportsComment: true,
			MediaKinds:      []string{"TEXT", "IMAGE"},
		})
	}
	return caps
}
