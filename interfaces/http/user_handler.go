package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"content-studio/domain/model"
	"content-studio/infrastructure/logger"
	"content-studio/infrastructure/utils"
	"content-studio/usecase"
)

type IUserHandler interface {
	Login(c *gin.Context)
	Register(c *gin.Context)
}

type UserHandler struct {
	userUsecase usecase.IUserUsecase
}

func NewUserHandler(userUsecase usecase.IUserUsecase) IUserHandler {
	return &UserHandler{userUsecase: userUsecase}
}

func (userHandler *UserHandler) Login(c *gin.Context) {
	var req model.ReqLogin
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to bind login request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res := userHandler.userUsecase.Login(c.Request.Context(), req)
	c.JSON(http.StatusOK, res)
}

func (userHandler *UserHandler) Register(c *gin.Context) {
	var req model.ReqRegister
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to bind register request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Password = utils.MD5Hash(req.Password)

	res := userHandler.userUsecase.Register(c.Request.Context(), req)
	c.JSON(http.StatusOK, res)
}
