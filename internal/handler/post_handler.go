package handler

import (
	"net/http"
	"strings"
	"time"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/monitoring"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// PostMediaInput describes one attachment on a new post.
type PostMediaInput struct {
	MediaType models.MediaType `json:"media_type" binding:"required,oneof=image video"`
	URL       string           `json:"url" binding:"required"`
	Caption   string           `json:"caption"`
	Order     int              `json:"order"`
}

// CreatePostInput defines the structure for creating a post.
type CreatePostInput struct {
	Content      string             `json:"content"`
	PostType     models.PostType    `json:"post_type" binding:"omitempty,oneof=text image video link"`
	Privacy      models.PostPrivacy `json:"privacy" binding:"omitempty,oneof=public friends private"`
	Location     string             `json:"location"`
	Media        []PostMediaInput   `json:"media"`
	TaggedUserID []uint             `json:"tagged_user_ids"`
}

// UpdatePostInput defines the editable post fields.
type UpdatePostInput struct {
	Content  *string             `json:"content"`
	Privacy  *models.PostPrivacy `json:"privacy" binding:"omitempty,oneof=public friends private"`
	Location *string             `json:"location"`
}

// PostMediaResponse describes one attachment on a post.
type PostMediaResponse struct {
	ID        uint             `json:"id"`
	MediaType models.MediaType `json:"media_type"`
	URL       string           `json:"url"`
	Caption   string           `json:"caption,omitempty"`
	Order     int              `json:"order"`
}

// PostResponse describes a post with its engagement counters.
type PostResponse struct {
	ID            uint                `json:"id"`
	AuthorID      uint                `json:"author_id"`
	Author        string              `json:"author"`
	Content       string              `json:"content"`
	PostType      models.PostType     `json:"post_type"`
	Privacy       models.PostPrivacy  `json:"privacy"`
	Location      string              `json:"location,omitempty"`
	LikesCount    int64               `json:"likes_count"`
	CommentsCount int64               `json:"comments_count"`
	Media         []PostMediaResponse `json:"media"`
	TaggedUserIDs []uint              `json:"tagged_user_ids"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func newPostResponse(post models.Post) PostResponse {
	media := make([]PostMediaResponse, 0, len(post.Media))
	for _, m := range post.Media {
		media = append(media, PostMediaResponse{
			ID:        m.ID,
			MediaType: m.MediaType,
			URL:       m.URL,
			Caption:   m.Caption,
			Order:     m.Order,
		})
	}

	taggedIDs := make([]uint, 0, len(post.Tags))
	for _, tag := range post.Tags {
		taggedIDs = append(taggedIDs, tag.UserID)
	}

	return PostResponse{
		ID:            post.ID,
		AuthorID:      post.AuthorID,
		Author:        post.Author.Username,
		Content:       post.Content,
		PostType:      post.PostType,
		Privacy:       post.Privacy,
		Location:      post.Location,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		Media:         media,
		TaggedUserIDs: taggedIDs,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
}

// endregion

// region --- Post Handlers ---

// CreatePost godoc
// @Summary      Create a post
// @Description  Creates a post with optional media attachments and tagged users.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreatePostInput true "Post content"
// @Success      201  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /posts [post]
func CreatePost(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(input.Content) == "" && len(input.Media) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post must have content or media"})
		return
	}

	post := models.Post{
		AuthorID: viewerID.(uint),
		Content:  input.Content,
		PostType: models.PostTypeText,
		Privacy:  models.PrivacyFriends,
		Location: input.Location,
	}
	if input.PostType != "" {
		post.PostType = input.PostType
	}
	if input.Privacy != "" {
		post.Privacy = input.Privacy
	}

	for _, m := range input.Media {
		post.Media = append(post.Media, models.PostMedia{
			MediaType: m.MediaType,
			URL:       m.URL,
			Caption:   m.Caption,
			Order:     m.Order,
		})
	}
	for _, taggedID := range input.TaggedUserID {
		if taggedID == viewerID.(uint) {
			continue
		}
		post.Tags = append(post.Tags, models.PostTag{UserID: taggedID})
	}

	if err := database.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	database.DB.Preload("Author").First(&post, post.ID)
	monitoring.PostsCreated.Inc()

	c.JSON(http.StatusCreated, newPostResponse(post))
}

// ListPosts godoc
// @Summary      List posts
// @Description  Returns non-deleted posts visible to the current user, newest first, paginated.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(20)
// @Success      200   {object}  PaginatedResponse[PostResponse]
// @Failure      401   {object}  ErrorResponse
// @Router       /posts [get]
func ListPosts(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	page, limit := pageParams(c)

	friendIDs, err := models.FriendIDs(database.DB, viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	// Visibility is part of the query so the page and its total agree.
	query := database.DB.Model(&models.Post{}).Where("is_deleted = ?", false)
	if len(friendIDs) > 0 {
		query = query.Where(
			"privacy = ? OR author_id = ? OR (privacy = ? AND author_id IN ?)",
			models.PrivacyPublic, viewerID, models.PrivacyFriends, friendIDs,
		)
	} else {
		query = query.Where("privacy = ? OR author_id = ?", models.PrivacyPublic, viewerID)
	}
	query = query.Preload("Author").Preload("Media").Preload("Tags").Order("created_at DESC")

	result, err := Paginate[models.Post](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posts"})
		return
	}

	responses := make([]PostResponse, 0, len(result.Data))
	for _, post := range result.Data {
		responses = append(responses, newPostResponse(post))
	}

	c.JSON(http.StatusOK, PaginatedResponse[PostResponse]{Data: responses, Meta: result.Meta})
}

// GetTimeline godoc
// @Summary      Timeline
// @Description  Returns public posts, own posts, and friends-only posts by accepted friends, newest first.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        limit query     int  false  "Maximum posts" default(20)
// @Success      200   {array}   PostResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /posts/timeline [get]
func GetTimeline(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	_, limit := pageParams(c)

	friendIDs, err := models.FriendIDs(database.DB, viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	query := database.DB.Where("is_deleted = ?", false)
	if len(friendIDs) > 0 {
		query = query.Where(
			"privacy = ? OR author_id = ? OR (privacy = ? AND author_id IN ?)",
			models.PrivacyPublic, viewerID, models.PrivacyFriends, friendIDs,
		)
	} else {
		query = query.Where("privacy = ? OR author_id = ?", models.PrivacyPublic, viewerID)
	}

	var posts []models.Post
	err = query.Preload("Author").Preload("Media").Preload("Tags").
		Order("created_at DESC").Limit(limit).Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve timeline"})
		return
	}

	responses := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, newPostResponse(post))
	}
	c.JSON(http.StatusOK, responses)
}

// GetMyPosts godoc
// @Summary      Current user's posts
// @Description  Returns the current user's non-deleted posts, newest first, paginated.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(20)
// @Success      200   {object}  PaginatedResponse[PostResponse]
// @Failure      401   {object}  ErrorResponse
// @Router       /posts/my_posts [get]
func GetMyPosts(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	page, limit := pageParams(c)

	query := database.DB.Model(&models.Post{}).Where("author_id = ? AND is_deleted = ?", viewerID, false).
		Preload("Author").Preload("Media").Preload("Tags").Order("created_at DESC")

	result, err := Paginate[models.Post](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posts"})
		return
	}

	responses := make([]PostResponse, 0, len(result.Data))
	for _, post := range result.Data {
		responses = append(responses, newPostResponse(post))
	}
	c.JSON(http.StatusOK, PaginatedResponse[PostResponse]{Data: responses, Meta: result.Meta})
}

// GetPostByID godoc
// @Summary      Get a post
// @Description  Returns a single post, gated by its privacy setting.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not allowed to view this post"
// @Failure      404  {object}  ErrorResponse "Post not found"
// @Router       /posts/{id} [get]
func GetPostByID(c *gin.Context) {
	viewerID := currentUserID(c)
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var post models.Post
	err := database.DB.Preload("Author").Preload("Media").Preload("Tags").
		Where("id = ? AND is_deleted = ?", postID, false).First(&post).Error
	if err != nil {
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

	c.JSON(http.StatusOK, newPostResponse(post))
}

// UpdatePost godoc
// @Summary      Update a post
// @Description  Applies partial updates to a post. Only the author may update.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Post ID"
// @Param        input body      UpdatePostInput true  "Fields to update"
// @Success      200   {object}  PostResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Only the author can edit"
// @Failure      404   {object}  ErrorResponse "Post not found"
// @Router       /posts/{id} [patch]
func UpdatePost(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := database.DB.Where("id = ? AND is_deleted = ?", postID, false).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.AuthorID != viewerID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own posts"})
		return
	}

	updates := map[string]interface{}{}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if input.Privacy != nil {
		updates["privacy"] = *input.Privacy
	}
	if input.Location != nil {
		updates["location"] = *input.Location
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&post).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
			return
		}
	}

	database.DB.Preload("Author").Preload("Media").Preload("Tags").First(&post, post.ID)
	c.JSON(http.StatusOK, newPostResponse(post))
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Soft-deletes a post. Only the author may delete.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      204  "No Content"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Only the author can delete"
// @Failure      404  {object}  ErrorResponse "Post not found"
// @Router       /posts/{id} [delete]
func DeletePost(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var post models.Post
	if err := database.DB.Where("id = ? AND is_deleted = ?", postID, false).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.AuthorID != viewerID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own posts"})
		return
	}

	if err := database.DB.Model(&post).Update("is_deleted", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.Status(http.StatusNoContent)
}

// endregion
