package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"content-studio/domain/model"
	"content-studio/domain/repository"
	"content-studio/infrastructure/cache"
	"content-studio/infrastructure/logger"
)

type IConnectionHandler interface {
	List(ctx *gin.Context)
	Disconnect(ctx *gin.Context)
}

type ConnectionHandler struct {
	credRepo  repository.ICredential
	pageCache cache.IPageCache
}

func NewConnectionHandler(credRepo repository.ICredential, pageCache cache.IPageCache) IConnectionHandler {
	return &ConnectionHandler{credRepo: credRepo, pageCache: pageCache}
}

type connectionStatus struct {
	Platform  model.Platform `json:"platform"`
	Connected bool           `json:"connected"`
	AccountID string         `json:"account_id,omitempty"`
	PageID    string         `json:"page_id,omitempty"`
	PageName  string         `json:"page_name,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// List reports the connection state of every supported platform for the user.
func (h *ConnectionHandler) List(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	connections := make([]connectionStatus, 0, 2)
	for _, platform := range []model.Platform{model.PlatformThreads, model.PlatformFacebook} {
		status := connectionStatus{Platform: platform}
		cred, err := h.credRepo.GetByProvider(ctx.Request.Context(), userID, platform)
		if err != nil {
			logger.GetLogger().WithField("platform", platform).WithField("error", err).Warn("Connection lookup failed")
		}
		if cred != nil {
			status.Connected = true
			status.AccountID = cred.AccountID
			status.ExpiresAt = cred.ExpiresAt
			if cred.PageID != nil {
				status.PageID = *cred.PageID
			}
			if cred.PageName != nil {
				status.PageName = *cred.PageName
			}
		}
		connections = append(connections, status)
	}
	ctx.JSON(http.StatusOK, gin.H{"connections": connections})
}

// Disconnect removes the stored credential for a platform.
func (h *ConnectionHandler) Disconnect(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	platform, ok := model.ParsePlatform(ctx.Param("platform"))
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unsupported platform"})
		return
	}
	if err := h.credRepo.Delete(ctx.Request.Context(), userID, platform); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// the cached page list belongs to the deleted credential
	if platform == model.PlatformFacebook && h.pageCache != nil {
		if err := h.pageCache.Invalidate(ctx.Request.Context(), userID); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to invalidate page cache")
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"disconnected": true, "platform": platform})
}
