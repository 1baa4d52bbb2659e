package handler

import (
	"net/http"
	"testing"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_WithMediaAndTags(t *testing.T) {
	router := setupTest(t)
	author, authorToken := seedUser(t, "author")
	tagged, _ := seedUser(t, "tagged")

	resp := performRequest(t, router, http.MethodPost, "/api/v1/posts", CreatePostInput{
		Content:  "beach day",
		PostType: models.PostTypeImage,
		Privacy:  models.PrivacyPublic,
		Location: "Copenhagen",
		Media: []PostMediaInput{
			{MediaType: models.MediaImage, URL: "https://cdn.example.com/1.jpg", Order: 0},
			{MediaType: models.MediaImage, URL: "https://cdn.example.com/2.jpg", Order: 1},
		},
		TaggedUserID: []uint{tagged.ID, author.ID},
	}, authorToken)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created PostResponse
	decodeBody(t, resp, &created)
	assert.Equal(t, author.ID, created.AuthorID)
	assert.Equal(t, "author", created.Author)
	assert.Equal(t, models.PostTypeImage, created.PostType)
	assert.Len(t, created.Media, 2)
	// Self-tags are dropped.
	assert.Equal(t, []uint{tagged.ID}, created.TaggedUserIDs)
}

func TestCreatePost_RequiresContentOrMedia(t *testing.T) {
	router := setupTest(t)
	_, authorToken := seedUser(t, "author")

	resp := performRequest(t, router, http.MethodPost, "/api/v1/posts", CreatePostInput{
		Content: "   ",
	}, authorToken)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Media alone is enough.
	resp = performRequest(t, router, http.MethodPost, "/api/v1/posts", CreatePostInput{
		Media: []PostMediaInput{{MediaType: models.MediaImage, URL: "https://cdn.example.com/1.jpg"}},
	}, authorToken)
	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestGetPostByID_PrivacyGating(t *testing.T) {
	router := setupTest(t)
	author, authorToken := seedUser(t, "author")
	friend, friendToken := seedUser(t, "friend")
	_, strangerToken := seedUser(t, "stranger")
	seedFriends(t, author.ID, friend.ID)

	friendsPost := seedPost(t, author.ID, models.PrivacyFriends)
	privatePost := seedPost(t, author.ID, models.PrivacyPrivate)

	cases := []struct {
		name  string
		post  models.Post
		token string
		want  int
	}{
		{"friends post for friend", friendsPost, friendToken, http.StatusOK},
		{"friends post for stranger", friendsPost, strangerToken, http.StatusForbidden},
		{"friends post anonymous", friendsPost, "", http.StatusForbidden},
		{"private post for friend", privatePost, friendToken, http.StatusForbidden},
		{"private post for author", privatePost, authorToken, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := performRequest(t, router, http.MethodGet, "/api/v1/posts/"+itoa(tc.post.ID), nil, tc.token)
			assert.Equal(t, tc.want, resp.Code, resp.Body.String())
		})
	}
}

func TestUpdatePost_AuthorOnly(t *testing.T) {
	router := setupTest(t)
	author, authorToken := seedUser(t, "author")
	_, otherToken := seedUser(t, "other")
	post := seedPost(t, author.ID, models.PrivacyPublic)

	newContent := "edited"
	resp := performRequest(t, router, http.MethodPatch, "/api/v1/posts/"+itoa(post.ID), UpdatePostInput{
		Content: &newContent,
	}, otherToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	var unchanged models.Post
	require.NoError(t, database.DB.First(&unchanged, post.ID).Error)
	assert.Equal(t, "hello", unchanged.Content)

	privacy := models.PrivacyPrivate
	resp = performRequest(t, router, http.MethodPatch, "/api/v1/posts/"+itoa(post.ID), UpdatePostInput{
		Content: &newContent,
		Privacy: &privacy,
	}, authorToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated models.Post
	require.NoError(t, database.DB.First(&updated, post.ID).Error)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, models.PrivacyPrivate, updated.Privacy)
}

func TestDeletePost_HidesPost(t *testing.T) {
	router := setupTest(t)
	author, authorToken := seedUser(t, "author")
	_, otherToken := seedUser(t, "other")
	post := seedPost(t, author.ID, models.PrivacyPublic)

	resp := performRequest(t, router, http.MethodDelete, "/api/v1/posts/"+itoa(post.ID), nil, otherToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = performRequest(t, router, http.MethodDelete, "/api/v1/posts/"+itoa(post.ID), nil, authorToken)
	require.Equal(t, http.StatusNoContent, resp.Code)

	// The post no longer resolves, even for the author.
	resp = performRequest(t, router, http.MethodGet, "/api/v1/posts/"+itoa(post.ID), nil, authorToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// But the row survives as a soft delete.
	var kept models.Post
	require.NoError(t, database.DB.First(&kept, post.ID).Error)
	assert.True(t, kept.IsDeleted)
}

func TestGetTimeline_Composition(t *testing.T) {
	router := setupTest(t)
	viewer, viewerToken := seedUser(t, "viewer")
	friend, _ := seedUser(t, "friend")
	stranger, _ := seedUser(t, "stranger")
	seedFriends(t, viewer.ID, friend.ID)

	own := seedPost(t, viewer.ID, models.PrivacyPrivate)
	friendsOnly := seedPost(t, friend.ID, models.PrivacyFriends)
	public := seedPost(t, stranger.ID, models.PrivacyPublic)
	hidden := seedPost(t, stranger.ID, models.PrivacyFriends)

	resp := performRequest(t, router, http.MethodGet, "/api/v1/posts/timeline", nil, viewerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var timeline []PostResponse
	decodeBody(t, resp, &timeline)

	ids := make([]uint, 0, len(timeline))
	for _, post := range timeline {
		ids = append(ids, post.ID)
	}
	assert.Contains(t, ids, own.ID)
	assert.Contains(t, ids, friendsOnly.ID)
	assert.Contains(t, ids, public.ID)
	assert.NotContains(t, ids, hidden.ID)
}

func TestListPosts_TotalMatchesVisiblePosts(t *testing.T) {
	router := setupTest(t)
	viewer, viewerToken := seedUser(t, "viewer")
	friend, _ := seedUser(t, "friend")
	stranger, _ := seedUser(t, "stranger")
	seedFriends(t, viewer.ID, friend.ID)

	seedPost(t, viewer.ID, models.PrivacyPrivate)
	seedPost(t, friend.ID, models.PrivacyFriends)
	seedPost(t, stranger.ID, models.PrivacyPublic)
	seedPost(t, stranger.ID, models.PrivacyFriends)
	seedPost(t, stranger.ID, models.PrivacyPrivate)

	resp := performRequest(t, router, http.MethodGet, "/api/v1/posts", nil, viewerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var page PaginatedResponse[PostResponse]
	decodeBody(t, resp, &page)
	require.Len(t, page.Data, 3)
	assert.EqualValues(t, 3, page.Meta.TotalItems)
	for _, post := range page.Data {
		if post.AuthorID == stranger.ID {
			assert.Equal(t, models.PrivacyPublic, post.Privacy, "post %d", post.ID)
		}
	}
}

func TestListPosts_Paging(t *testing.T) {
	router := setupTest(t)
	author, token := seedUser(t, "author")

	for i := 0; i < 5; i++ {
		seedPost(t, author.ID, models.PrivacyPublic)
	}

	resp := performRequest(t, router, http.MethodGet, "/api/v1/posts?page=2&limit=2", nil, token)
	require.Equal(t, http.StatusOK, resp.Code)

	var page PaginatedResponse[PostResponse]
	decodeBody(t, resp, &page)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 2, page.Meta.CurrentPage)
	assert.EqualValues(t, 5, page.Meta.TotalItems)
	assert.Equal(t, 3, page.Meta.TotalPages)
}

func TestGetMyPosts_OnlyOwnLivePosts(t *testing.T) {
	router := setupTest(t)
	viewer, viewerToken := seedUser(t, "viewer")
	other, _ := seedUser(t, "other")

	mine := seedPost(t, viewer.ID, models.PrivacyPublic)
	deleted := seedPost(t, viewer.ID, models.PrivacyPublic)
	require.NoError(t, database.DB.Model(&deleted).Update("is_deleted", true).Error)
	seedPost(t, other.ID, models.PrivacyPublic)

	resp := performRequest(t, router, http.MethodGet, "/api/v1/posts/my_posts", nil, viewerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var page PaginatedResponse[PostResponse]
	decodeBody(t, resp, &page)
	require.Len(t, page.Data, 1)
	assert.Equal(t, mine.ID, page.Data[0].ID)
	assert.EqualValues(t, 1, page.Meta.TotalItems)
}
