package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"testing"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/config"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"
	"socialnet/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTest points the package globals at an isolated in-memory database and
// returns a router with the API routes registered.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	config.AppConfig = &config.Config{JWTSecret: "test-secret"}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	gin.SetMode(gin.TestMode)
	router := gin.New()

	apiV1 := router.Group("/api/v1")

	authRoutes := apiV1.Group("/auth")
	authRoutes.POST("/register", RegisterUser)
	authRoutes.POST("/login", LoginUser)
	authRoutes.POST("/refresh", RefreshToken)
	authRoutes.POST("/logout", auth.AuthMiddleware(), LogoutUser)

	userRoutes := apiV1.Group("/users")
	userRoutes.Use(auth.AuthMiddleware())
	userRoutes.GET("/me", GetMe)
	userRoutes.PATCH("/me", UpdateMe)

	publicUserRoutes := apiV1.Group("/users")
	publicUserRoutes.Use(auth.OptionalAuthMiddleware())
	publicUserRoutes.GET("/:id", GetUserByID)

	friendRoutes := apiV1.Group("/friends")
	friendRoutes.Use(auth.AuthMiddleware())
	friendRoutes.POST("/send_request", SendFriendRequest)
	friendRoutes.POST("/:id/respond", RespondFriendRequest)
	friendRoutes.GET("/friends", GetFriends)
	friendRoutes.GET("/received_requests", GetReceivedRequests)
	friendRoutes.GET("/sent_requests", GetSentRequests)
	friendRoutes.GET("/:id/mutual_friends", GetMutualFriends)
	friendRoutes.GET("/suggestions", GetFriendSuggestions)
	friendRoutes.DELETE("/:id/unfriend", Unfriend)
	friendRoutes.POST("/:id/block", BlockUser)
	friendRoutes.DELETE("/:id/unblock", UnblockUser)

	postRoutes := apiV1.Group("/posts")
	postRoutes.Use(auth.AuthMiddleware())
	postRoutes.POST("", CreatePost)
	postRoutes.GET("", ListPosts)
	postRoutes.GET("/timeline", GetTimeline)
	postRoutes.GET("/my_posts", GetMyPosts)
	postRoutes.PATCH("/:id", UpdatePost)
	postRoutes.DELETE("/:id", DeletePost)
	postRoutes.POST("/:id/comments", CreateComment)

	publicPostRoutes := apiV1.Group("/posts")
	publicPostRoutes.Use(auth.OptionalAuthMiddleware())
	publicPostRoutes.GET("/:id", GetPostByID)
	publicPostRoutes.GET("/:id/comments", ListComments)

	commentRoutes := apiV1.Group("/comments")
	commentRoutes.Use(auth.AuthMiddleware())
	commentRoutes.GET("/:id/replies", GetReplies)
	commentRoutes.PATCH("/:id", UpdateComment)
	commentRoutes.DELETE("/:id", DeleteComment)

	reactionRoutes := apiV1.Group("")
	reactionRoutes.Use(auth.AuthMiddleware())
	reactionRoutes.POST("/like/:subjectType/:id", ToggleReaction)
	reactionRoutes.GET("/likes/:subjectType/:id", GetReactions)
	reactionRoutes.GET("/check/:subjectType/:id", CheckUserReaction)

	notificationRoutes := apiV1.Group("/notifications")
	notificationRoutes.Use(auth.AuthMiddleware())
	notificationRoutes.GET("", ListNotifications)
	notificationRoutes.GET("/counts", GetNotificationCounts)
	notificationRoutes.POST("/:id/read", MarkNotificationRead)
	notificationRoutes.POST("/:id/seen", MarkNotificationSeen)
	notificationRoutes.POST("/mark-all-read", MarkAllNotificationsRead)
	notificationRoutes.POST("/mark-all-seen", MarkAllNotificationsSeen)
	notificationRoutes.GET("/preferences", GetPreferences)
	notificationRoutes.PATCH("/preferences", UpdatePreferences)

	return router
}

// performRequest runs one request through the router, marshalling body as JSON
// and attaching the token as a Bearer header when non-empty.
func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

// decodeBody unmarshals a recorded JSON response into out.
func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}

// seedUser inserts a user directly and returns it with a valid access token.
func seedUser(t *testing.T, name string) (models.User, string) {
	t.Helper()

	user := models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, database.DB.Create(&user).Error)

	tokens, err := jwt.GenerateTokenPair(user.ID)
	require.NoError(t, err)
	return user, tokens.Access
}

// seedFriends inserts an accepted edge between two users.
func seedFriends(t *testing.T, requesterID, addresseeID uint) {
	t.Helper()
	require.NoError(t, database.DB.Create(&models.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.StatusAccepted,
	}).Error)
}

// itoa formats an ID for use in a URL path.
func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// seedPost inserts a post directly.
func seedPost(t *testing.T, authorID uint, privacy models.PostPrivacy) models.Post {
	t.Helper()

	post := models.Post{
		AuthorID: authorID,
		Content:  "hello",
		PostType: models.PostTypeText,
		Privacy:  privacy,
	}
	require.NoError(t, database.DB.Create(&post).Error)
	return post
}
