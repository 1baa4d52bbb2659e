package main

import (
	"fmt"
	"log"
	"net/http"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/config"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/handler"
	"socialnet/backend/internal/logger"
	"socialnet/backend/internal/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Swagger imports
	_ "socialnet/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
	logger.InitLogger()
}

// @title           Socialnet API
// @version         1.0
// @description     This is the API for the Socialnet service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	router := gin.Default()
	router.Use(monitoring.Middleware())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
			authRoutes.POST("/refresh", handler.RefreshToken)
			authRoutes.POST("/logout", auth.AuthMiddleware(), handler.LogoutUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", handler.SearchUsers) // Must be before /:id
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.PATCH("/me", handler.UpdateMe)
		}

		// Public profile cards work without a token; visibility rules still apply.
		publicUserRoutes := apiV1.Group("/users")
		publicUserRoutes.Use(auth.OptionalAuthMiddleware())
		{
			publicUserRoutes.GET("/:id", handler.GetUserByID)
		}

		// Friendship routes (protected)
		friendRoutes := apiV1.Group("/friends")
		friendRoutes.Use(auth.AuthMiddleware())
		{
			friendRoutes.POST("/send_request", handler.SendFriendRequest)
			friendRoutes.POST("/:id/respond", handler.RespondFriendRequest)
			friendRoutes.GET("/friends", handler.GetFriends)
			friendRoutes.GET("/received_requests", handler.GetReceivedRequests)
			friendRoutes.GET("/sent_requests", handler.GetSentRequests)
			friendRoutes.GET("/:id/mutual_friends", handler.GetMutualFriends)
			friendRoutes.GET("/suggestions", handler.GetFriendSuggestions)
			friendRoutes.DELETE("/:id/unfriend", handler.Unfriend)
			friendRoutes.POST("/:id/block", handler.BlockUser)
			friendRoutes.DELETE("/:id/unblock", handler.UnblockUser)
		}

		// Post routes (protected)
		postRoutes := apiV1.Group("/posts")
		postRoutes.Use(auth.AuthMiddleware())
		{
			postRoutes.POST("", handler.CreatePost)
			postRoutes.GET("", handler.ListPosts)
			postRoutes.GET("/timeline", handler.GetTimeline)
			postRoutes.GET("/my_posts", handler.GetMyPosts)
			postRoutes.PATCH("/:id", handler.UpdatePost)
			postRoutes.DELETE("/:id", handler.DeletePost)
			postRoutes.POST("/:id/comments", handler.CreateComment)
		}

		// Public posts and their comments are readable without a token.
		publicPostRoutes := apiV1.Group("/posts")
		publicPostRoutes.Use(auth.OptionalAuthMiddleware())
		{
			publicPostRoutes.GET("/:id", handler.GetPostByID)
			publicPostRoutes.GET("/:id/comments", handler.ListComments)
		}

		// Comment routes (protected)
		commentRoutes := apiV1.Group("/comments")
		commentRoutes.Use(auth.AuthMiddleware())
		{
			commentRoutes.GET("/:id/replies", handler.GetReplies)
			commentRoutes.PATCH("/:id", handler.UpdateComment)
			commentRoutes.DELETE("/:id", handler.DeleteComment)
		}

		// Reaction routes (protected)
		reactionRoutes := apiV1.Group("")
		reactionRoutes.Use(auth.AuthMiddleware())
		{
			reactionRoutes.POST("/like/:subjectType/:id", handler.ToggleReaction)
			reactionRoutes.GET("/likes/:subjectType/:id", handler.GetReactions)
			reactionRoutes.GET("/check/:subjectType/:id", handler.CheckUserReaction)
		}

		// Notification routes (protected)
		notificationRoutes := apiV1.Group("/notifications")
		notificationRoutes.Use(auth.AuthMiddleware())
		{
			notificationRoutes.GET("", handler.ListNotifications)
			notificationRoutes.GET("/counts", handler.GetNotificationCounts)
			notificationRoutes.GET("/stream", handler.StreamNotifications)
			notificationRoutes.POST("/:id/read", handler.MarkNotificationRead)
			notificationRoutes.POST("/:id/seen", handler.MarkNotificationSeen)
			notificationRoutes.POST("/mark-all-read", handler.MarkAllNotificationsRead)
			notificationRoutes.POST("/mark-all-seen", handler.MarkAllNotificationsSeen)
			notificationRoutes.GET("/preferences", handler.GetPreferences)
			notificationRoutes.PATCH("/preferences", handler.UpdatePreferences)
		}
	}

	fmt.Printf("Server is running on %s\n", config.AppConfig.ListenAddr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(config.AppConfig.ListenAddr))
}
