package handler

import (
	"net/http"
	"testing"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"
	"socialnet/backend/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_RegisterLoginRefresh(t *testing.T) {
	router := setupTest(t)

	resp := performRequest(t, router, http.MethodPost, "/api/v1/auth/register", RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var registered AuthResponse
	decodeBody(t, resp, &registered)
	assert.Equal(t, "alice", registered.User.Username)
	assert.NotEmpty(t, registered.Tokens.Access)
	assert.NotEmpty(t, registered.Tokens.Refresh)

	// The access token works against a protected route.
	resp = performRequest(t, router, http.MethodGet, "/api/v1/users/me", nil, registered.Tokens.Access)
	require.Equal(t, http.StatusOK, resp.Code)

	var me PrivateUserResponse
	decodeBody(t, resp, &me)
	assert.Equal(t, registered.User.ID, me.ID)
	assert.Equal(t, "alice@example.com", me.Email)

	// Logging in by username works, and by email too.
	resp = performRequest(t, router, http.MethodPost, "/api/v1/auth/login", LoginInput{
		Login: "alice", Password: "password123",
	}, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = performRequest(t, router, http.MethodPost, "/api/v1/auth/login", LoginInput{
		Login: "alice@example.com", Password: "password123",
	}, "")
	require.Equal(t, http.StatusOK, resp.Code)

	var loggedIn AuthResponse
	decodeBody(t, resp, &loggedIn)

	// The refresh token yields a fresh pair.
	resp = performRequest(t, router, http.MethodPost, "/api/v1/auth/refresh", RefreshInput{
		Refresh: loggedIn.Tokens.Refresh,
	}, "")
	require.Equal(t, http.StatusOK, resp.Code)

	var refreshed jwt.TokenPair
	decodeBody(t, resp, &refreshed)
	assert.NotEmpty(t, refreshed.Access)
	assert.NotEmpty(t, refreshed.Refresh)
}

func TestAuth_RegisterDuplicate(t *testing.T) {
	router := setupTest(t)

	input := RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}
	resp := performRequest(t, router, http.MethodPost, "/api/v1/auth/register", input, "")
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = performRequest(t, router, http.MethodPost, "/api/v1/auth/register", input, "")
	assert.Equal(t, http.StatusConflict, resp.Code)

	// Same email under a new username is still a conflict.
	input.Username = "alice2"
	resp = performRequest(t, router, http.MethodPost, "/api/v1/auth/register", input, "")
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestAuth_LoginFailures(t *testing.T) {
	router := setupTest(t)

	resp := performRequest(t, router, http.MethodPost, "/api/v1/auth/register", RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = performRequest(t, router, http.MethodPost, "/api/v1/auth/login", LoginInput{
		Login: "nobody", Password: "password123",
	}, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = performRequest(t, router, http.MethodPost, "/api/v1/auth/login", LoginInput{
		Login: "alice", Password: "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuth_ProtectedRouteRequiresToken(t *testing.T) {
	router := setupTest(t)

	resp := performRequest(t, router, http.MethodGet, "/api/v1/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = performRequest(t, router, http.MethodGet, "/api/v1/users/me", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuth_RefreshRejectsAccessToken(t *testing.T) {
	router := setupTest(t)
	_, token := seedUser(t, "alice")

	resp := performRequest(t, router, http.MethodPost, "/api/v1/auth/refresh", RefreshInput{
		Refresh: token,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUpdateMe_PartialUpdate(t *testing.T) {
	router := setupTest(t)
	user, token := seedUser(t, "alice")

	bio := "hello there"
	visibility := models.VisibilityPublic
	resp := performRequest(t, router, http.MethodPatch, "/api/v1/users/me", UpdateProfileInput{
		Bio:               &bio,
		ProfileVisibility: &visibility,
	}, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated models.User
	require.NoError(t, database.DB.First(&updated, user.ID).Error)
	assert.Equal(t, "hello there", updated.Bio)
	assert.Equal(t, models.VisibilityPublic, updated.ProfileVisibility)
	// Untouched fields keep their values.
	assert.Equal(t, user.Email, updated.Email)
}

func TestUpdateMe_RejectsInvalidVisibility(t *testing.T) {
	router := setupTest(t)
	_, token := seedUser(t, "alice")

	bad := models.ProfileVisibility("everyone")
	resp := performRequest(t, router, http.MethodPatch, "/api/v1/users/me", UpdateProfileInput{
		ProfileVisibility: &bad,
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetUserByID_VisibilityGating(t *testing.T) {
	router := setupTest(t)
	target, _ := seedUser(t, "target")
	_, strangerToken := seedUser(t, "stranger")
	friend, friendToken := seedUser(t, "friend")
	seedFriends(t, target.ID, friend.ID)

	require.NoError(t, database.DB.Model(&models.User{}).Where("id = ?", target.ID).Updates(map[string]interface{}{
		"bio":                "secret bio",
		"profile_visibility": models.VisibilityFriends,
	}).Error)

	urlPath := "/api/v1/users/" + itoa(target.ID)

	// A stranger gets the card without extended fields.
	resp := performRequest(t, router, http.MethodGet, urlPath, nil, strangerToken)
	require.Equal(t, http.StatusOK, resp.Code)
	var card PublicUserResponse
	decodeBody(t, resp, &card)
	assert.Equal(t, "target", card.Username)
	assert.Empty(t, card.Bio)
	assert.Nil(t, card.Relation)

	// A friend sees the extended fields and the relation.
	resp = performRequest(t, router, http.MethodGet, urlPath, nil, friendToken)
	require.Equal(t, http.StatusOK, resp.Code)
	decodeBody(t, resp, &card)
	assert.Equal(t, "secret bio", card.Bio)
	require.NotNil(t, card.Relation)
	assert.Equal(t, models.StatusAccepted, *card.Relation)
	assert.EqualValues(t, 1, card.FriendsCount)

	// Anonymous requests work too, without extended fields.
	resp = performRequest(t, router, http.MethodGet, urlPath, nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	card = PublicUserResponse{}
	decodeBody(t, resp, &card)
	assert.Empty(t, card.Bio)
}

func TestGetUserByID_NotFound(t *testing.T) {
	router := setupTest(t)
	_, token := seedUser(t, "alice")

	resp := performRequest(t, router, http.MethodGet, "/api/v1/users/99999", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
