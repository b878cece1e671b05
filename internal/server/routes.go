package server

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"dikenang-service/internal/comment"
	"dikenang-service/internal/middleware"
	"dikenang-service/internal/notification"
	"dikenang-service/internal/post"
	"dikenang-service/internal/realtime"
	"dikenang-service/internal/relationship"
	"dikenang-service/internal/user"
	"dikenang-service/internal/vote"
)

type handlerSet struct {
	user         *user.Handler
	post         *post.Handler
	vote         *vote.Handler
	comment      *comment.Handler
	relationship *relationship.Handler
	notification *notification.Handler
	realtime     *realtime.Handler
}

// setupRoutes configures all the routes for the application
func setupRoutes(router *gin.Engine, h *handlerSet, auth *middleware.AuthMiddleware, rateLimit *middleware.RateLimitMiddleware) {
	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check route
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authGroup := public.Group("/auth")
		authGroup.Use(rateLimit.RateLimit(20, time.Minute))
		{
			authGroup.POST("/register", h.user.Register)
			authGroup.POST("/login", h.user.Login)
		}
	}

	// Protected routes (require JWT authentication)
	protected := router.Group("/api/v1")
	protected.Use(auth.RequireAuth())
	{
		users := protected.Group("/users")
		{
			users.GET("/profile", h.user.GetProfile)
			users.PUT("/profile", h.user.UpdateProfile)
			users.GET("/:id/badges", h.user.GetBadges)
		}

		posts := protected.Group("/posts")
		{
			posts.POST("", h.post.CreatePost)
			posts.GET("", h.post.GetPublicFeed)
			posts.GET("/memories", h.post.GetRelationshipFeed)
			posts.GET("/:id", h.post.GetPost)
			posts.DELETE("/:id", h.post.DeletePost)

			posts.POST("/:id/upvote", h.vote.AddUpvote)
			posts.DELETE("/:id/upvote", h.vote.RemoveUpvote)
			posts.POST("/:id/downvote", h.vote.AddDownvote)
			posts.DELETE("/:id/downvote", h.vote.RemoveDownvote)
			posts.GET("/:id/votes", h.vote.GetTallies)

			posts.POST("/:id/comments", h.comment.Create)
			posts.GET("/:id/comments", h.comment.ListByPost)
		}

		protected.DELETE("/comments/:id", h.comment.Delete)

		relationships := protected.Group("/relationships")
		{
			relationships.GET("", h.relationship.Get)
			relationships.DELETE("", h.relationship.Unlink)
			relationships.POST("/invites", h.relationship.Invite)
			relationships.GET("/invites", h.relationship.PendingInvites)
			relationships.POST("/invites/:id/accept", h.relationship.Accept)
			relationships.POST("/invites/:id/decline", h.relationship.Decline)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", h.notification.List)
			notifications.PUT("/:id/read", h.notification.MarkRead)
		}
	}

	// WebSocket route authenticates via query token since browsers
	// cannot set headers on the upgrade request.
	ws := router.Group("/api/v1")
	ws.Use(auth.RequireAuthQuery())
	ws.GET("/ws", h.realtime.Serve)
}
