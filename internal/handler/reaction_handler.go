package handler

import (
	"errors"
	"net/http"
	"time"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/monitoring"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// ToggleReactionInput carries the sentiment being toggled.
type ToggleReactionInput struct {
	ReactionType models.ReactionKind `json:"reaction_type" binding:"required"`
}

// ToggleReactionResponse reports the outcome of a toggle.
type ToggleReactionResponse struct {
	Liked      bool                 `json:"liked"`
	Reaction   *models.ReactionKind `json:"reaction"`
	LikesCount int64                `json:"likes_count"`
}

// ReactionEntry describes one user's reaction in a grouped listing.
type ReactionEntry struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupedReactionsResponse lists reactions on a subject grouped by kind.
type GroupedReactionsResponse struct {
	Reactions  map[models.ReactionKind][]ReactionEntry `json:"reactions"`
	TotalCount int64                                   `json:"total_count"`
}

// UserReactionResponse reports the current user's reaction on a subject.
type UserReactionResponse struct {
	Liked    bool                 `json:"liked"`
	Reaction *models.ReactionKind `json:"reaction"`
}

// endregion

// subjectFromPath reads and validates the subjectType/id path pair.
func subjectFromPath(c *gin.Context) (models.SubjectType, uint, bool) {
	subjectType := models.SubjectType(c.Param("subjectType"))
	if !models.ValidSubjectType(subjectType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject type"})
		return "", 0, false
	}

	subjectID, ok := parseIDParam(c, "id")
	if !ok {
		return "", 0, false
	}
	return subjectType, subjectID, true
}

// region --- Reaction Handlers ---

// ToggleReaction godoc
// @Summary      Toggle a reaction
// @Description  Creates, removes or switches the current user's reaction on a subject. Repeating the same kind removes it.
// @Tags         reactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        subjectType path      string              true  "Subject type (post or comment)"
// @Param        id          path      int                 true  "Subject ID"
// @Param        input       body      ToggleReactionInput true  "Reaction kind"
// @Success      200  {object}  ToggleReactionResponse
// @Failure      400  {object}  ErrorResponse "Unknown subject type, invalid kind, or deleted subject"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Subject not found"
// @Router       /like/{subjectType}/{id} [post]
func ToggleReaction(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	subjectType, subjectID, ok := subjectFromPath(c)
	if !ok {
		return
	}

	var input ToggleReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidReactionKind(input.ReactionType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reaction type"})
		return
	}

	result, err := models.ToggleReaction(database.DB, viewerID.(uint), subjectType, subjectID, input.ReactionType)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSubjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		case errors.Is(err, models.ErrSubjectDeleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot react to deleted content"})
		case errors.Is(err, models.ErrUnknownSubjectType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject type"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle reaction"})
		}
		return
	}

	monitoring.ReactionsToggled.WithLabelValues(string(subjectType)).Inc()

	// Notify the subject's author on a fresh or switched reaction.
	if result.Liked {
		notifyReaction(viewerID.(uint), subjectType, subjectID)
	}

	var likesCount int64
	database.DB.Model(&models.Reaction{}).Where(
		"subject_type = ? AND subject_id = ?", subjectType, subjectID,
	).Count(&likesCount)

	c.JSON(http.StatusOK, ToggleReactionResponse{
		Liked:      result.Liked,
		Reaction:   result.Reaction,
		LikesCount: likesCount,
	})
}

// GetReactions godoc
// @Summary      List reactions on a subject
// @Description  Returns the reactions on a subject grouped by kind, newest first within each group.
// @Tags         reactions
// @Produce      json
// @Security     BearerAuth
// @Param        subjectType path      string  true  "Subject type (post or comment)"
// @Param        id          path      int     true  "Subject ID"
// @Success      200  {object}  GroupedReactionsResponse
// @Failure      400  {object}  ErrorResponse "Unknown subject type"
// @Failure      401  {object}  ErrorResponse
// @Router       /likes/{subjectType}/{id} [get]
func GetReactions(c *gin.Context) {
	subjectType, subjectID, ok := subjectFromPath(c)
	if !ok {
		return
	}

	var reactions []models.Reaction
	err := database.DB.Preload("User").
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("created_at DESC").Find(&reactions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reactions"})
		return
	}

	grouped := make(map[models.ReactionKind][]ReactionEntry)
	for _, reaction := range reactions {
		grouped[reaction.Kind] = append(grouped[reaction.Kind], ReactionEntry{
			UserID:    reaction.UserID,
			Username:  reaction.User.Username,
			CreatedAt: reaction.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, GroupedReactionsResponse{
		Reactions:  grouped,
		TotalCount: int64(len(reactions)),
	})
}

// CheckUserReaction godoc
// @Summary      Current user's reaction
// @Description  Reports whether the current user has reacted to a subject, and with which kind.
// @Tags         reactions
// @Produce      json
// @Security     BearerAuth
// @Param        subjectType path      string  true  "Subject type (post or comment)"
// @Param        id          path      int     true  "Subject ID"
// @Success      200  {object}  UserReactionResponse
// @Failure      400  {object}  ErrorResponse "Unknown subject type"
// @Failure      401  {object}  ErrorResponse
// @Router       /check/{subjectType}/{id} [get]
func CheckUserReaction(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	subjectType, subjectID, ok := subjectFromPath(c)
	if !ok {
		return
	}

	reaction, err := models.UserReaction(database.DB, viewerID.(uint), subjectType, subjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check reaction"})
		return
	}

	response := UserReactionResponse{}
	if reaction != nil {
		response.Liked = true
		response.Reaction = &reaction.Kind
	}
	c.JSON(http.StatusOK, response)
}

// endregion

// notifyReaction sends a like notification to the subject's author,
// skipping self-reactions.
func notifyReaction(actorID uint, subjectType models.SubjectType, subjectID uint) {
	var authorID uint
	var notificationType models.NotificationType
	var title string

	switch subjectType {
	case models.SubjectPost:
		var post models.Post
		if err := database.DB.Select("author_id").First(&post, subjectID).Error; err != nil {
			return
		}
		authorID = post.AuthorID
		notificationType = models.NotifyPostLike
		title = "New reaction on your post"
	case models.SubjectComment:
		var comment models.Comment
		if err := database.DB.Select("author_id").First(&comment, subjectID).Error; err != nil {
			return
		}
		authorID = comment.AuthorID
		notificationType = models.NotifyCommentLike
		title = "New reaction on your comment"
	default:
		return
	}

	if authorID == actorID {
		return
	}

	notify(notifyParams{
		RecipientID: authorID,
		SenderID:    actorID,
		Type:        notificationType,
		Title:       title,
		Message:     "Someone reacted to your content",
		SubjectType: subjectType,
		SubjectID:   subjectID,
	})
}
