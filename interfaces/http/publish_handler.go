package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"content-studio/domain/dto"
	"content-studio/domain/model"
	"content-studio/infrastructure/logger"
	"content-studio/usecase"
)

type IPublishHandler interface {
	Publish(ctx *gin.Context)
	GetHistory(ctx *gin.Context)
	GetPlatforms(ctx *gin.Context)
}

type PublishHandler struct {
	publishUsecase usecase.IPublishUsecase
}

func NewPublishHandler(publishUsecase usecase.IPublishUsecase) IPublishHandler {
	return &PublishHandler{publishUsecase: publishUsecase}
}

// Publish fans a post out to the requested platforms. Per-platform failures
// are reported inside the response body; the HTTP status reflects only the
// validity of the request itself.
func (h *PublishHandler) Publish(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	var req dto.PublishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.publishUsecase.Publish(ctx.Request.Context(), userID, req)
	if err != nil {
		logger.GetLogger().WithField("user_id", userID).WithField("error", err.Error()).Warn("publish request rejected")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, res)
}

func (h *PublishHandler) GetHistory(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	limit := 20
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	records, err := h.publishUsecase.GetHistory(ctx.Request.Context(), userID, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []*model.PublishRecord{}
	}
	ctx.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *PublishHandler) GetPlatforms(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"platforms": h.publishUsecase.Platforms()})
}
