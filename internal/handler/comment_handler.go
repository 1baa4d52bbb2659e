package handler

import (
	"errors"
	"net/http"
	"time"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// CreateCommentInput defines the structure for creating a comment.
type CreateCommentInput struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateCommentInput defines the editable comment fields.
type UpdateCommentInput struct {
	Content string `json:"content" binding:"required"`
}

// CommentResponse describes a comment.
type CommentResponse struct {
	ID         uint      `json:"id"`
	PostID     uint      `json:"post_id"`
	AuthorID   uint      `json:"author_id"`
	Author     string    `json:"author"`
	Content    string    `json:"content"`
	ParentID   *uint     `json:"parent_id,omitempty"`
	LikesCount int64     `json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:         comment.ID,
		PostID:     comment.PostID,
		AuthorID:   comment.AuthorID,
		Author:     comment.Author.Username,
		Content:    comment.Content,
		ParentID:   comment.ParentID,
		LikesCount: comment.LikesCount,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}
}

// endregion

// region --- Comment Handlers ---

// CreateComment godoc
// @Summary      Comment on a post
// @Description  Creates a comment, optionally as a reply to another comment on the same post.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Post ID"
// @Param        input body      CreateCommentInput true  "Comment content"
// @Success      201   {object}  CommentResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Not allowed to view this post"
// @Failure      404   {object}  ErrorResponse "Post not found"
// @Router       /posts/{id}/comments [post]
func CreateComment(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input CreateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := database.DB.Where("id = ? AND is_deleted = ?", postID, false).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	visible, err := models.CanViewPost(database.DB, viewerID.(uint), &post)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check visibility"})
		return
	}
	if !visible {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to comment on this post"})
		return
	}

	comment := models.Comment{
		PostID:   postID,
		AuthorID: viewerID.(uint),
		Content:  input.Content,
		ParentID: input.ParentID,
	}

	if err := models.CreateComment(database.DB, &comment); err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyComment),
			errors.Is(err, models.ErrCommentTooLong),
			errors.Is(err, models.ErrParentWrongPost),
			errors.Is(err, models.ErrParentUnavailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		}
		return
	}

	database.DB.Preload("Author").First(&comment, comment.ID)

	// Notify the post author, and the parent comment author on replies.
	if post.AuthorID != viewerID.(uint) {
		notify(notifyParams{
			RecipientID: post.AuthorID,
			SenderID:    viewerID.(uint),
			Type:        models.NotifyPostComment,
			Title:       "New comment on your post",
			Message:     comment.Author.Username + " commented on your post",
			SubjectType: models.SubjectPost,
			SubjectID:   post.ID,
		})
	}
	if comment.ParentID != nil {
		var parent models.Comment
		if err := database.DB.First(&parent, *comment.ParentID).Error; err == nil {
			if parent.AuthorID != viewerID.(uint) && parent.AuthorID != post.AuthorID {
				notify(notifyParams{
					RecipientID: parent.AuthorID,
					SenderID:    viewerID.(uint),
					Type:        models.NotifyCommentReply,
					Title:       "New reply to your comment",
					Message:     comment.Author.Username + " replied to your comment",
					SubjectType: models.SubjectComment,
					SubjectID:   parent.ID,
				})
			}
		}
	}

	c.JSON(http.StatusCreated, newCommentResponse(comment))
}

// ListComments godoc
// @Summary      List comments on a post
// @Description  Returns top-level comments of a post, newest first, paginated.
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  true   "Post ID"
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(20)
// @Success      200   {object}  PaginatedResponse[CommentResponse]
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Not allowed to view this post"
// @Failure      404   {object}  ErrorResponse "Post not found"
// @Router       /posts/{id}/comments [get]
func ListComments(c *gin.Context) {
	viewerID := currentUserID(c)
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, limit := pageParams(c)

	var post models.Post
	if err := database.DB.Where("id = ? AND is_deleted = ?", postID, false).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	visible, err := models.CanViewPost(database.DB, viewerID, &post)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check visibility"})
		return
	}
	if !visible {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to view this post"})
		return
	}

	query := database.DB.Model(&models.Comment{}).Where(
		"post_id = ? AND parent_id IS NULL AND is_deleted = ?", postID, false,
	)

	result, err := Paginate[models.Comment](query.Preload("Author").Order("created_at DESC"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	responses := make([]CommentResponse, 0, len(result.Data))
	for _, comment := range result.Data {
		responses = append(responses, newCommentResponse(comment))
	}
	c.JSON(http.StatusOK, PaginatedResponse[CommentResponse]{Data: responses, Meta: result.Meta})
}

// GetReplies godoc
// @Summary      List replies to a comment
// @Description  Returns the non-deleted replies of a comment, oldest first.
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Comment ID"
// @Success      200  {array}   CommentResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Comment not found"
// @Router       /comments/{id}/replies [get]
func GetReplies(c *gin.Context) {
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var comment models.Comment
	if err := database.DB.Where("id = ? AND is_deleted = ?", commentID, false).First(&comment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	var replies []models.Comment
	err := database.DB.Preload("Author").
		Where("parent_id = ? AND is_deleted = ?", commentID, false).
		Order("created_at ASC").Find(&replies).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve replies"})
		return
	}

	responses := make([]CommentResponse, 0, len(replies))
	for _, reply := range replies {
		responses = append(responses, newCommentResponse(reply))
	}
	c.JSON(http.StatusOK, responses)
}

// UpdateComment godoc
// @Summary      Update a comment
// @Description  Edits a comment's content. Only the author may edit.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Comment ID"
// @Param        input body      UpdateCommentInput true  "New content"
// @Success      200   {object}  CommentResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Only the author can edit"
// @Failure      404   {object}  ErrorResponse "Comment not found"
// @Router       /comments/{id} [patch]
func UpdateComment(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.Comment
	if err := database.DB.Where("id = ? AND is_deleted = ?", commentID, false).First(&comment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.AuthorID != viewerID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own comments"})
		return
	}

	updated := comment
	updated.Content = input.Content
	if err := updated.ValidateContent(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := database.DB.Model(&comment).Update("content", input.Content).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	database.DB.Preload("Author").First(&comment, comment.ID)
	c.JSON(http.StatusOK, newCommentResponse(comment))
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Description  Soft-deletes a comment and recomputes the post's comment count. Only the author may delete.
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Comment ID"
// @Success      204  "No Content"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Only the author can delete"
// @Failure      404  {object}  ErrorResponse "Comment not found"
// @Router       /comments/{id} [delete]
func DeleteComment(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var comment models.Comment
	if err := database.DB.Where("id = ? AND is_deleted = ?", commentID, false).First(&comment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.AuthorID != viewerID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own comments"})
		return
	}

	if err := models.SoftDeleteComment(database.DB, &comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.Status(http.StatusNoContent)
}

// endregion
