package handler

import (
	"net/http"
	"strconv"
	"time"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/monitoring"
	"socialnet/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username string `json:"username" binding:"required" example:"testuser"`
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"testuser"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// RefreshInput defines the structure for refreshing a token pair.
type RefreshInput struct {
	Refresh string `json:"refresh" binding:"required"`
}

// UpdateProfileInput defines the editable profile fields.
type UpdateProfileInput struct {
	Bio               *string                   `json:"bio"`
	ProfilePictureURL *string                   `json:"profile_picture_url"`
	CoverPhotoURL     *string                   `json:"cover_photo_url"`
	DateOfBirth       *time.Time                `json:"date_of_birth"`
	PhoneNumber       *string                   `json:"phone_number"`
	Website           *string                   `json:"website"`
	Location          *string                   `json:"location"`
	Work              *string                   `json:"work"`
	Education         *string                   `json:"education"`
	ProfileVisibility *models.ProfileVisibility `json:"profile_visibility"`
}

// PublicUserResponse defines the structure for a user's public profile card.
// Extended fields are only populated when the target's visibility admits the viewer.
type PublicUserResponse struct {
	ID           uint                     `json:"id" example:"1"`
	Username     string                   `json:"username" example:"testuser"`
	Bio          string                   `json:"bio,omitempty"`
	Location     string                   `json:"location,omitempty"`
	Work         string                   `json:"work,omitempty"`
	Education    string                   `json:"education,omitempty"`
	Website      string                   `json:"website,omitempty"`
	IsOnline     bool                     `json:"is_online"`
	FriendsCount int64                    `json:"friends_count"`
	Relation     *models.FriendshipStatus `json:"relation,omitempty"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID                uint                     `json:"id" example:"1"`
	Username          string                   `json:"username" example:"testuser"`
	Email             string                   `json:"email" example:"test@example.com"`
	Bio               string                   `json:"bio"`
	ProfilePictureURL string                   `json:"profile_picture_url"`
	CoverPhotoURL     string                   `json:"cover_photo_url"`
	DateOfBirth       *time.Time               `json:"date_of_birth"`
	PhoneNumber       string                   `json:"phone_number"`
	Website           string                   `json:"website"`
	Location          string                   `json:"location"`
	Work              string                   `json:"work"`
	Education         string                   `json:"education"`
	ProfileVisibility models.ProfileVisibility `json:"profile_visibility"`
	FriendsCount      int64                    `json:"friends_count"`
	PendingRequests   int64                    `json:"pending_requests"`
}

// AuthResponse bundles a user profile with a fresh token pair.
type AuthResponse struct {
	User   PrivateUserResponse `json:"user"`
	Tokens jwt.TokenPair       `json:"tokens"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an access+refresh token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("username = ? OR email = ?", input.Username, input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		LastSeen:     time.Now(),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	tokens, err := jwt.GenerateTokenPair(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	monitoring.RegisterSuccess.Inc()
	logrus.WithField("user_id", user.ID).Info("user registered")

	c.JSON(http.StatusCreated, AuthResponse{
		User:   buildPrivateUserResponse(user),
		Tokens: *tokens,
	})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with username/email and password, and returns a new token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("username = ? OR email = ?", input.Login, input.Login).First(&user).Error; err != nil {
		monitoring.LoginFailure.WithLabelValues("unknown_user").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		monitoring.LoginFailure.WithLabelValues("bad_password").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokens, err := jwt.GenerateTokenPair(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	database.DB.Model(&user).Updates(map[string]interface{}{
		"is_online": true,
		"last_seen": time.Now(),
	})

	monitoring.LoginSuccess.Inc()

	c.JSON(http.StatusOK, AuthResponse{
		User:   buildPrivateUserResponse(user),
		Tokens: *tokens,
	})
}

// RefreshToken godoc
// @Summary      Refresh tokens
// @Description  Exchanges a valid refresh token for a new access+refresh pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RefreshInput true "Refresh token"
// @Success      200  {object}  jwt.TokenPair
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse "Invalid refresh token"
// @Router       /auth/refresh [post]
func RefreshToken(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := jwt.ParseToken(input.Refresh, "refresh")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
		return
	}

	tokens, err := jwt.GenerateTokenPair(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// LogoutUser godoc
// @Summary      Log out
// @Description  Marks the current user as offline.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string "{"message": "Logged out successfully"}"
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/logout [post]
func LogoutUser(c *gin.Context) {
	userID, _ := c.Get("userID")

	database.DB.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_online": false,
		"last_seen": time.Now(),
	})

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// endregion

// region --- User Handlers ---

// GetMe godoc
// @Summary      Get current user's profile
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	userID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, userID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// UpdateMe godoc
// @Summary      Update current user's profile
// @Description  Applies partial updates to the authenticated user's profile fields.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateProfileInput true "Profile fields"
// @Success      200  {object}  PrivateUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me [patch]
func UpdateMe(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	updates := map[string]interface{}{}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.ProfilePictureURL != nil {
		updates["profile_picture_url"] = *input.ProfilePictureURL
	}
	if input.CoverPhotoURL != nil {
		updates["cover_photo_url"] = *input.CoverPhotoURL
	}
	if input.DateOfBirth != nil {
		updates["date_of_birth"] = *input.DateOfBirth
	}
	if input.PhoneNumber != nil {
		updates["phone_number"] = *input.PhoneNumber
	}
	if input.Website != nil {
		updates["website"] = *input.Website
	}
	if input.Location != nil {
		updates["location"] = *input.Location
	}
	if input.Work != nil {
		updates["work"] = *input.Work
	}
	if input.Education != nil {
		updates["education"] = *input.Education
	}
	if input.ProfileVisibility != nil {
		switch *input.ProfileVisibility {
		case models.VisibilityPublic, models.VisibilityFriends, models.VisibilityPrivate:
			updates["profile_visibility"] = *input.ProfileVisibility
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile visibility"})
			return
		}
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
	}

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches for users by username with pagination.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query for username"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(20)
// @Success      200   {object}  PaginatedResponse[PublicUserResponse]
// @Failure      401   {object}  ErrorResponse
// @Router       /users [get]
func SearchUsers(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	searchQuery := c.Query("q")
	page, limit := pageParams(c)

	query := database.DB.Model(&models.User{}).Where("id <> ?", viewerID)
	if searchQuery != "" {
		query = query.Where("username ILIKE ?", "%"+searchQuery+"%")
	}

	result, err := Paginate[models.User](query.Order("username ASC"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	userResponses := make([]PublicUserResponse, 0, len(result.Data))
	for _, user := range result.Data {
		userResponses = append(userResponses, buildPublicUserResponse(user, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, PaginatedResponse[PublicUserResponse]{Data: userResponses, Meta: result.Meta})
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Description  Retrieves the public profile card for a specific user, respecting their visibility setting.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  PublicUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func GetUserByID(c *gin.Context) {
	viewerID := currentUserID(c)
	targetUserID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if viewerID != 0 && viewerID == targetUserID {
		GetMe(c)
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, targetUserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, buildPublicUserResponse(targetUser, viewerID))
}

// endregion

// region --- Helpers ---

func buildPublicUserResponse(targetUser models.User, viewerID uint) PublicUserResponse {
	var friendsCount int64
	database.DB.Model(&models.Friendship{}).Where(
		"(requester_id = ? OR addressee_id = ?) AND status = ?",
		targetUser.ID, targetUser.ID, models.StatusAccepted,
	).Count(&friendsCount)

	response := PublicUserResponse{
		ID:           targetUser.ID,
		Username:     targetUser.Username,
		IsOnline:     targetUser.IsOnline,
		FriendsCount: friendsCount,
	}

	friendship, err := models.GetFriendship(database.DB, viewerID, targetUser.ID)
	if err == nil && friendship != nil {
		response.Relation = &friendship.Status
	}

	// Extended profile fields follow the target's visibility setting.
	visible := targetUser.ProfileVisibility == models.VisibilityPublic
	if !visible && targetUser.ProfileVisibility == models.VisibilityFriends {
		visible, _ = models.AreFriends(database.DB, viewerID, targetUser.ID)
	}
	if visible {
		response.Bio = targetUser.Bio
		response.Location = targetUser.Location
		response.Work = targetUser.Work
		response.Education = targetUser.Education
		response.Website = targetUser.Website
	}

	return response
}

func buildPrivateUserResponse(user models.User) PrivateUserResponse {
	var friendsCount, pendingRequests int64
	database.DB.Model(&models.Friendship{}).Where(
		"(requester_id = ? OR addressee_id = ?) AND status = ?",
		user.ID, user.ID, models.StatusAccepted,
	).Count(&friendsCount)
	database.DB.Model(&models.Friendship{}).Where(
		"addressee_id = ? AND status = ?", user.ID, models.StatusPending,
	).Count(&pendingRequests)

	return PrivateUserResponse{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		Bio:               user.Bio,
		ProfilePictureURL: user.ProfilePictureURL,
		CoverPhotoURL:     user.CoverPhotoURL,
		DateOfBirth:       user.DateOfBirth,
		PhoneNumber:       user.PhoneNumber,
		Website:           user.Website,
		Location:          user.Location,
		Work:              user.Work,
		Education:         user.Education,
		ProfileVisibility: user.ProfileVisibility,
		FriendsCount:      friendsCount,
		PendingRequests:   pendingRequests,
	}
}

// currentUserID returns the authenticated user's ID, or zero for anonymous
// requests behind the optional auth middleware.
func currentUserID(c *gin.Context) uint {
	if userID, exists := c.Get("userID"); exists {
		return userID.(uint)
	}
	return 0
}

// parseIDParam parses a numeric path parameter, writing a 400 response when invalid.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return 0, false
	}
	return uint(id), true
}

// endregion
