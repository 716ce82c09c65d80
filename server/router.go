package server

import (
	"net/http"
	"time"

	"content-studio/domain/repository"
	"content-studio/infrastructure/realtime"
	httpHandler "content-studio/interfaces/http"
	"content-studio/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	publishHandler httpHandler.IPublishHandler,
	connectionHandler httpHandler.IConnectionHandler,
	threadsOAuthHandler httpHandler.IThreadsOAuthHandler,
	facebookOAuthHandler httpHandler.IFacebookOAuthHandler,
	publishHub *realtime.Hub,
	userRepository repository.IUser,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:4201", "https://localhost:4200", "https://localhost:4201"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("api")
	api.Use(middleware.Auth(userRepository))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)

	healthz := func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthz)
	router.POST("/healthz", healthz)

	// OAuth connect routes
	if threadsOAuthHandler != nil {
		router.GET("/auth/threads", threadsOAuthHandler.GetAuthURL)
		router.GET("/auth/threads/callback", threadsOAuthHandler.Callback)
		api.GET("/threads/status", threadsOAuthHandler.Status)
	}
	if facebookOAuthHandler != nil {
		router.GET("/auth/facebook", facebookOAuthHandler.GetAuthURL)
		router.GET("/auth/facebook/callback", facebookOAuthHandler.Callback)
		api.GET("/facebook/status", facebookOAuthHandler.Status)
		api.GET("/facebook/pages", facebookOAuthHandler.ListPages)
		api.POST("/facebook/select-page", facebookOAuthHandler.SelectPage)
	}

	if publishHandler != nil {
		api.POST("/publish", publishHandler.Publish)
		api.GET("/publish/history", publishHandler.GetHistory)
		api.GET("/publish/platforms", publishHandler.GetPlatforms)
	} else {
		// Fallback when persistence is unavailable so the UI gets a clear error
		api.POST("/publish", func(ctx *gin.Context) {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "publishing not available - database not configured"})
		})
	}

	if publishHub != nil {
		api.GET("/publish/stream", publishHub.Serve)
	}

	if connectionHandler != nil {
		api.GET("/connections", connectionHandler.List)
		api.DELETE("/connections/:platform", connectionHandler.Disconnect)
	}

	return router
}
