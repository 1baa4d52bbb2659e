package handler

import (
	"errors"
	"net/http"
	"strconv"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

// SendFriendRequestInput identifies the user to send a request to.
type SendFriendRequestInput struct {
	UserID uint `json:"user_id" binding:"required"`
}

// RespondInput carries the addressee's decision on a pending request.
type RespondInput struct {
	Action string `json:"action" binding:"required,oneof=accept decline"`
}

// FriendshipResponse describes one friendship edge.
type FriendshipResponse struct {
	ID          uint                    `json:"id"`
	RequesterID uint                    `json:"requester_id"`
	AddresseeID uint                    `json:"addressee_id"`
	Requester   *PublicUserResponse     `json:"requester,omitempty"`
	Addressee   *PublicUserResponse     `json:"addressee,omitempty"`
	Status      models.FriendshipStatus `json:"status"`
}

func newFriendshipResponse(friendship models.Friendship, viewerID uint) FriendshipResponse {
	response := FriendshipResponse{
		ID:          friendship.ID,
		RequesterID: friendship.RequesterID,
		AddresseeID: friendship.AddresseeID,
		Status:      friendship.Status,
	}
	if friendship.Requester.ID != 0 {
		requester := buildPublicUserResponse(friendship.Requester, viewerID)
		response.Requester = &requester
	}
	if friendship.Addressee.ID != 0 {
		addressee := buildPublicUserResponse(friendship.Addressee, viewerID)
		response.Addressee = &addressee
	}
	return response
}

// endregion

// region --- Friendship Handlers ---

// SendFriendRequest godoc
// @Summary      Send friend request
// @Description  Creates a pending friendship edge toward another user.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SendFriendRequestInput true "Target user"
// @Success      201  {object}  FriendshipResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "Relation already exists"
// @Failure      500  {object}  ErrorResponse
// @Router       /friends/send_request [post]
func SendFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input SendFriendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if viewerID.(uint) == input.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot send request to yourself"})
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, input.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	existing, err := models.GetFriendship(database.DB, viewerID.(uint), input.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check relation"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Relation already exists"})
		return
	}

	friendship := models.Friendship{
		RequesterID: viewerID.(uint),
		AddresseeID: input.UserID,
		Status:      models.StatusPending,
	}
	if err := database.DB.Create(&friendship).Error; err != nil {
		// The unique index only backstops a same-direction duplicate racing
		// past the existence check; mutual requests in opposite directions
		// both insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Relation already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send request"})
		return
	}

	notify(notifyParams{
		RecipientID: input.UserID,
		SenderID:    viewerID.(uint),
		Type:        models.NotifyFriendRequest,
		Title:       "New friend request",
		Message:     "You have a new friend request",
	})

	c.JSON(http.StatusCreated, newFriendshipResponse(friendship, viewerID.(uint)))
}

// RespondFriendRequest godoc
// @Summary      Respond to a friend request
// @Description  Accepts or declines a pending request addressed to the current user.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Friendship ID"
// @Param        input body      RespondInput true  "accept or decline"
// @Success      200   {object}  FriendshipResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse "Pending request not found"
// @Router       /friends/{id}/respond [post]
func RespondFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	friendshipID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input RespondInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var friendship models.Friendship
	err := database.DB.Where(
		"id = ? AND addressee_id = ? AND status = ?",
		friendshipID, viewerID, models.StatusPending,
	).First(&friendship).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pending request not found"})
		return
	}

	newStatus := models.StatusDeclined
	if input.Action == "accept" {
		newStatus = models.StatusAccepted
	}

	if err := database.DB.Model(&friendship).Update("status", newStatus).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to respond to request"})
		return
	}

	if newStatus == models.StatusAccepted {
		notify(notifyParams{
			RecipientID: friendship.RequesterID,
			SenderID:    viewerID.(uint),
			Type:        models.NotifyFriendAccept,
			Title:       "Friend request accepted",
			Message:     "Your friend request was accepted",
		})
	}

	c.JSON(http.StatusOK, newFriendshipResponse(friendship, viewerID.(uint)))
}

// GetFriends godoc
// @Summary      List friends
// @Description  Returns every user connected to the current user by an accepted edge.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PublicUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/friends [get]
func GetFriends(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	friends, err := models.Friends(database.DB, viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	responses := make([]PublicUserResponse, 0, len(friends))
	for _, friend := range friends {
		responses = append(responses, buildPublicUserResponse(friend, viewerID.(uint)))
	}
	c.JSON(http.StatusOK, responses)
}

// GetReceivedRequests godoc
// @Summary      List received friend requests
// @Description  Returns pending requests addressed to the current user, newest first.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   FriendshipResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/received_requests [get]
func GetReceivedRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var requests []models.Friendship
	err := database.DB.Where("addressee_id = ? AND status = ?", viewerID, models.StatusPending).
		Preload("Requester").Order("created_at DESC").Find(&requests).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	responses := make([]FriendshipResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, newFriendshipResponse(request, viewerID.(uint)))
	}
	c.JSON(http.StatusOK, responses)
}

// GetSentRequests godoc
// @Summary      List sent friend requests
// @Description  Returns pending requests sent by the current user, newest first.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   FriendshipResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/sent_requests [get]
func GetSentRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var requests []models.Friendship
	err := database.DB.Where("requester_id = ? AND status = ?", viewerID, models.StatusPending).
		Preload("Addressee").Order("created_at DESC").Find(&requests).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	responses := make([]FriendshipResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, newFriendshipResponse(request, viewerID.(uint)))
	}
	c.JSON(http.StatusOK, responses)
}

// GetMutualFriends godoc
// @Summary      List mutual friends
// @Description  Returns the intersection of the current user's and another user's friend sets.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Other user ID"
// @Success      200  {array}   PublicUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /friends/{id}/mutual_friends [get]
func GetMutualFriends(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	otherUserID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var otherUser models.User
	if err := database.DB.First(&otherUser, otherUserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	mutual, err := models.MutualFriends(database.DB, viewerID.(uint), otherUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch mutual friends"})
		return
	}

	responses := make([]PublicUserResponse, 0, len(mutual))
	for _, friend := range mutual {
		responses = append(responses, buildPublicUserResponse(friend, viewerID.(uint)))
	}
	c.JSON(http.StatusOK, responses)
}

// GetFriendSuggestions godoc
// @Summary      Friend suggestions
// @Description  Returns friends-of-friends with no existing relation to the current user.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        limit query     int  false  "Maximum suggestions" default(10)
// @Success      200   {array}   PublicUserResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /friends/suggestions [get]
func GetFriendSuggestions(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	suggestions, err := models.FriendSuggestions(database.DB, viewerID.(uint), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suggestions"})
		return
	}

	responses := make([]PublicUserResponse, 0, len(suggestions))
	for _, suggestion := range suggestions {
		responses = append(responses, buildPublicUserResponse(suggestion, viewerID.(uint)))
	}
	c.JSON(http.StatusOK, responses)
}

// Unfriend godoc
// @Summary      Remove a friend
// @Description  Deletes the accepted edge between the current user and another user.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Friend user ID"
// @Success      200  {object}  map[string]string "{"message": "Friend removed"}"
// @Failure      400  {object}  ErrorResponse "Not friends"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /friends/{id}/unfriend [delete]
func Unfriend(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	friendUserID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var friendUser models.User
	if err := database.DB.First(&friendUser, friendUserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := models.Unfriend(database.DB, viewerID.(uint), friendUserID); err != nil {
		if errors.Is(err, models.ErrNotFriends) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You are not friends with this user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove friend"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}

// BlockUser godoc
// @Summary      Block a user
// @Description  Upserts the edge to blocked with the current user as requester, overwriting any prior state.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID to block"
// @Success      200  {object}  map[string]string "{"message": "User blocked"}"
// @Failure      400  {object}  ErrorResponse "Cannot block yourself"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /friends/{id}/block [post]
func BlockUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if viewerID.(uint) == targetUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot block yourself"})
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, targetUserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	friendship, err := models.GetFriendship(database.DB, viewerID.(uint), targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch relation"})
		return
	}

	if friendship != nil {
		// Blocker becomes the requester, whatever the prior direction.
		err = database.DB.Model(friendship).Updates(map[string]interface{}{
			"requester_id": viewerID.(uint),
			"addressee_id": targetUserID,
			"status":       models.StatusBlocked,
		}).Error
	} else {
		err = database.DB.Create(&models.Friendship{
			RequesterID: viewerID.(uint),
			AddresseeID: targetUserID,
			Status:      models.StatusBlocked,
		}).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to block user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User blocked"})
}

// UnblockUser godoc
// @Summary      Unblock a user
// @Description  Deletes the blocked edge where the current user is the blocker.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID to unblock"
// @Success      200  {object}  map[string]string "{"message": "User unblocked"}"
// @Failure      400  {object}  ErrorResponse "User is not blocked"
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/{id}/unblock [delete]
func UnblockUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := models.Unblock(database.DB, viewerID.(uint), targetUserID); err != nil {
		if errors.Is(err, models.ErrNotBlocked) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User is not blocked"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unblock user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unblocked"})
}

// endregion
