package handler

import (
	"io"
	"net/http"
	"time"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/hub"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// region --- DTOs ---

// NotificationResponse describes one notification.
type NotificationResponse struct {
	ID          uint                    `json:"id"`
	SenderID    *uint                   `json:"sender_id,omitempty"`
	Type        models.NotificationType `json:"type"`
	Title       string                  `json:"title"`
	Message     string                  `json:"message"`
	SubjectType *models.SubjectType     `json:"subject_type,omitempty"`
	SubjectID   *uint                   `json:"subject_id,omitempty"`
	IsRead      bool                    `json:"is_read"`
	IsSeen      bool                    `json:"is_seen"`
	CreatedAt   time.Time               `json:"created_at"`
}

func newNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          notification.ID,
		SenderID:    notification.SenderID,
		Type:        notification.Type,
		Title:       notification.Title,
		Message:     notification.Message,
		SubjectType: notification.SubjectType,
		SubjectID:   notification.SubjectID,
		IsRead:      notification.IsRead,
		IsSeen:      notification.IsSeen,
		CreatedAt:   notification.CreatedAt,
	}
}

// NotificationCountsResponse reports the recipient's notification tallies.
type NotificationCountsResponse struct {
	TotalCount  int64 `json:"total_count"`
	UnreadCount int64 `json:"unread_count"`
	UnseenCount int64 `json:"unseen_count"`
}

// UpdatePreferencesInput defines the editable preference switches.
type UpdatePreferencesInput struct {
	EmailPostLikes      *bool `json:"email_post_likes"`
	EmailComments       *bool `json:"email_comments"`
	EmailFriendRequests *bool `json:"email_friend_requests"`
	EmailMentions       *bool `json:"email_mentions"`
	PushPostLikes       *bool `json:"push_post_likes"`
	PushComments        *bool `json:"push_comments"`
	PushFriendRequests  *bool `json:"push_friend_requests"`
	PushMentions        *bool `json:"push_mentions"`
	InAppPostLikes      *bool `json:"inapp_post_likes"`
	InAppComments       *bool `json:"inapp_comments"`
	InAppFriendRequests *bool `json:"inapp_friend_requests"`
	InAppMentions       *bool `json:"inapp_mentions"`
}

// PreferencesResponse mirrors the stored preference row.
type PreferencesResponse struct {
	EmailPostLikes      bool `json:"email_post_likes"`
	EmailComments       bool `json:"email_comments"`
	EmailFriendRequests bool `json:"email_friend_requests"`
	EmailMentions       bool `json:"email_mentions"`
	PushPostLikes       bool `json:"push_post_likes"`
	PushComments        bool `json:"push_comments"`
	PushFriendRequests  bool `json:"push_friend_requests"`
	PushMentions        bool `json:"push_mentions"`
	InAppPostLikes      bool `json:"inapp_post_likes"`
	InAppComments       bool `json:"inapp_comments"`
	InAppFriendRequests bool `json:"inapp_friend_requests"`
	InAppMentions       bool `json:"inapp_mentions"`
}

func newPreferencesResponse(prefs models.NotificationPreference) PreferencesResponse {
	return PreferencesResponse{
		EmailPostLikes:      prefs.EmailPostLikes,
		EmailComments:       prefs.EmailComments,
		EmailFriendRequests: prefs.EmailFriendRequests,
		EmailMentions:       prefs.EmailMentions,
		PushPostLikes:       prefs.PushPostLikes,
		PushComments:        prefs.PushComments,
		PushFriendRequests:  prefs.PushFriendRequests,
		PushMentions:        prefs.PushMentions,
		InAppPostLikes:      prefs.InAppPostLikes,
		InAppComments:       prefs.InAppComments,
		InAppFriendRequests: prefs.InAppFriendRequests,
		InAppMentions:       prefs.InAppMentions,
	}
}

// endregion

// region --- Notification creation ---

// notifyParams names the fields of a notification to be created.
type notifyParams struct {
	RecipientID uint
	SenderID    uint
	Type        models.NotificationType
	Title       string
	Message     string
	SubjectType models.SubjectType
	SubjectID   uint
}

// notify creates a notification if the recipient's in-app preferences allow
// it and publishes it to any open notification streams. Failures are logged
// and swallowed; notification delivery never fails the triggering request.
func notify(params notifyParams) {
	prefs, err := models.GetOrCreatePreferences(database.DB, params.RecipientID)
	if err != nil {
		logrus.WithError(err).Warn("failed to load notification preferences")
		return
	}
	if !prefs.WantsInApp(params.Type) {
		return
	}

	notification := models.Notification{
		RecipientID: params.RecipientID,
		Type:        params.Type,
		Title:       params.Title,
		Message:     params.Message,
	}
	if params.SenderID != 0 {
		senderID := params.SenderID
		notification.SenderID = &senderID
	}
	if params.SubjectType != "" {
		subjectType := params.SubjectType
		subjectID := params.SubjectID
		notification.SubjectType = &subjectType
		notification.SubjectID = &subjectID
	}

	if err := database.DB.Create(&notification).Error; err != nil {
		logrus.WithError(err).Warn("failed to create notification")
		return
	}

	monitoring.NotificationsCreated.WithLabelValues(string(params.Type)).Inc()

	hub.GlobalHub.Publish(params.RecipientID, hub.Event{
		Type:    "notification",
		Payload: newNotificationResponse(notification),
	})
}

// endregion

// region --- Notification Handlers ---

// ListNotifications godoc
// @Summary      List notifications
// @Description  Returns the current user's notifications, newest first, with optional type and read filters.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        type    query     string  false  "Filter by notification type"
// @Param        is_read query     bool    false  "Filter by read status"
// @Param        page    query     int     false  "Page number" default(1)
// @Param        limit   query     int     false  "Items per page" default(20)
// @Success      200     {object}  PaginatedResponse[NotificationResponse]
// @Failure      401     {object}  ErrorResponse
// @Router       /notifications [get]
func ListNotifications(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	page, limit := pageParams(c)

	query := database.DB.Model(&models.Notification{}).Where("recipient_id = ?", viewerID)

	if notificationType := c.Query("type"); notificationType != "" {
		query = query.Where("type = ?", notificationType)
	}
	if isRead := c.Query("is_read"); isRead != "" {
		query = query.Where("is_read = ?", isRead == "true")
	}

	result, err := Paginate[models.Notification](query.Order("created_at DESC"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	responses := make([]NotificationResponse, 0, len(result.Data))
	for _, notification := range result.Data {
		responses = append(responses, newNotificationResponse(notification))
	}
	c.JSON(http.StatusOK, PaginatedResponse[NotificationResponse]{Data: responses, Meta: result.Meta})
}

// GetNotificationCounts godoc
// @Summary      Notification counts
// @Description  Returns total, unread and unseen notification counts for the current user.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  NotificationCountsResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /notifications/counts [get]
func GetNotificationCounts(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var counts NotificationCountsResponse
	database.DB.Model(&models.Notification{}).Where("recipient_id = ?", viewerID).Count(&counts.TotalCount)
	database.DB.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", viewerID, false).Count(&counts.UnreadCount)
	database.DB.Model(&models.Notification{}).Where("recipient_id = ? AND is_seen = ?", viewerID, false).Count(&counts.UnseenCount)

	c.JSON(http.StatusOK, counts)
}

// MarkNotificationRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  map[string]string "{"status": "notification marked as read"}"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Notification not found"
// @Router       /notifications/{id}/read [post]
func MarkNotificationRead(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	notificationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, viewerID).
		Update("is_read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "notification marked as read"})
}

// MarkNotificationSeen godoc
// @Summary      Mark a notification seen
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  map[string]string "{"status": "notification marked as seen"}"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Notification not found"
// @Router       /notifications/{id}/seen [post]
func MarkNotificationSeen(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	notificationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, viewerID).
		Update("is_seen", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "notification marked as seen"})
}

// MarkAllNotificationsRead godoc
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{} "{"status": "...", "updated_count": 3}"
// @Failure      401  {object}  ErrorResponse
// @Router       /notifications/mark-all-read [post]
func MarkAllNotificationsRead(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	result := database.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", viewerID, false).
		Update("is_read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "all notifications marked as read",
		"updated_count": result.RowsAffected,
	})
}

// MarkAllNotificationsSeen godoc
// @Summary      Mark all notifications seen
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{} "{"status": "...", "updated_count": 3}"
// @Failure      401  {object}  ErrorResponse
// @Router       /notifications/mark-all-seen [post]
func MarkAllNotificationsSeen(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	result := database.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_seen = ?", viewerID, false).
		Update("is_seen", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "all notifications marked as seen",
		"updated_count": result.RowsAffected,
	})
}

// GetPreferences godoc
// @Summary      Get notification preferences
// @Description  Returns the current user's preference switches, creating defaults on first access.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PreferencesResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /notifications/preferences [get]
func GetPreferences(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	prefs, err := models.GetOrCreatePreferences(database.DB, viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}

	c.JSON(http.StatusOK, newPreferencesResponse(*prefs))
}

// UpdatePreferences godoc
// @Summary      Update notification preferences
// @Description  Applies partial updates to the current user's preference switches.
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdatePreferencesInput true "Switches to flip"
// @Success      200  {object}  PreferencesResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /notifications/preferences [patch]
func UpdatePreferences(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input UpdatePreferencesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs, err := models.GetOrCreatePreferences(database.DB, viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}

	updates := map[string]interface{}{}
	setIf := func(column string, value *bool) {
		if value != nil {
			updates[column] = *value
		}
	}
	setIf("email_post_likes", input.EmailPostLikes)
	setIf("email_comments", input.EmailComments)
	setIf("email_friend_requests", input.EmailFriendRequests)
	setIf("email_mentions", input.EmailMentions)
	setIf("push_post_likes", input.PushPostLikes)
	setIf("push_comments", input.PushComments)
	setIf("push_friend_requests", input.PushFriendRequests)
	setIf("push_mentions", input.PushMentions)
	setIf("in_app_post_likes", input.InAppPostLikes)
	setIf("in_app_comments", input.InAppComments)
	setIf("in_app_friend_requests", input.InAppFriendRequests)
	setIf("in_app_mentions", input.InAppMentions)

	if len(updates) > 0 {
		if err := database.DB.Model(prefs).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
			return
		}
	}

	c.JSON(http.StatusOK, newPreferencesResponse(*prefs))
}

// StreamNotifications godoc
// @Summary      Notification stream
// @Description  Server-sent event stream of the current user's notifications as they are created.
// @Tags         notifications
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {string}  string "SSE stream"
// @Failure      401  {object}  ErrorResponse
// @Router       /notifications/stream [get]
func StreamNotifications(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	userID := viewerID.(uint)

	client := make(hub.Client, 16)
	hub.GlobalHub.Subscribe(userID, client)
	defer hub.GlobalHub.Unsubscribe(userID, client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("notification", string(message))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// endregion
