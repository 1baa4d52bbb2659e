package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment_RecountsPost(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "author")
	post := createPost(t, db, author.ID, PrivacyPublic)

	first := Comment{PostID: post.ID, AuthorID: author.ID, Content: "first"}
	require.NoError(t, CreateComment(db, &first))

	second := Comment{PostID: post.ID, AuthorID: author.ID, Content: "second"}
	require.NoError(t, CreateComment(db, &second))

	var refreshed Post
	require.NoError(t, db.First(&refreshed, post.ID).Error)
	assert.EqualValues(t, 2, refreshed.CommentsCount)

	require.NoError(t, SoftDeleteComment(db, &first))

	require.NoError(t, db.First(&refreshed, post.ID).Error)
	assert.EqualValues(t, 1, refreshed.CommentsCount)

	var deleted Comment
	require.NoError(t, db.First(&deleted, first.ID).Error)
	assert.True(t, deleted.IsDeleted)
}

func TestCreateComment_ContentValidation(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "author")
	post := createPost(t, db, author.ID, PrivacyPublic)

	blank := Comment{PostID: post.ID, AuthorID: author.ID, Content: "   "}
	require.ErrorIs(t, CreateComment(db, &blank), ErrEmptyComment)

	long := Comment{PostID: post.ID, AuthorID: author.ID, Content: strings.Repeat("x", MaxCommentLength+1)}
	require.ErrorIs(t, CreateComment(db, &long), ErrCommentTooLong)

	atLimit := Comment{PostID: post.ID, AuthorID: author.ID, Content: strings.Repeat("x", MaxCommentLength)}
	require.NoError(t, CreateComment(db, &atLimit))
}

func TestCreateComment_ParentConstraints(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "author")
	post := createPost(t, db, author.ID, PrivacyPublic)
	other := createPost(t, db, author.ID, PrivacyPublic)

	parent := Comment{PostID: post.ID, AuthorID: author.ID, Content: "parent"}
	require.NoError(t, CreateComment(db, &parent))

	reply := Comment{PostID: post.ID, AuthorID: author.ID, Content: "reply", ParentID: &parent.ID}
	require.NoError(t, CreateComment(db, &reply))

	// Parent must belong to the same post.
	crossPost := Comment{PostID: other.ID, AuthorID: author.ID, Content: "reply", ParentID: &parent.ID}
	require.ErrorIs(t, CreateComment(db, &crossPost), ErrParentWrongPost)

	// A missing parent is rejected.
	missing := uint(99999)
	orphan := Comment{PostID: post.ID, AuthorID: author.ID, Content: "reply", ParentID: &missing}
	require.ErrorIs(t, CreateComment(db, &orphan), ErrParentUnavailable)

	// A soft-deleted parent cannot take new replies.
	require.NoError(t, SoftDeleteComment(db, &parent))
	late := Comment{PostID: post.ID, AuthorID: author.ID, Content: "reply", ParentID: &parent.ID}
	require.ErrorIs(t, CreateComment(db, &late), ErrParentUnavailable)

	// Existing replies survive the parent's deletion.
	var kept Comment
	require.NoError(t, db.First(&kept, reply.ID).Error)
	assert.False(t, kept.IsDeleted)
}

func TestCanViewPost_PrivacyLevels(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "author")
	friend := createUser(t, db, "friend")
	stranger := createUser(t, db, "stranger")
	befriend(t, db, author.ID, friend.ID)

	public := createPost(t, db, author.ID, PrivacyPublic)
	friendsOnly := createPost(t, db, author.ID, PrivacyFriends)
	private := createPost(t, db, author.ID, PrivacyPrivate)

	cases := []struct {
		name     string
		viewerID uint
		post     *Post
		want     bool
	}{
		{"public visible to anonymous", 0, &public, true},
		{"public visible to stranger", stranger.ID, &public, true},
		{"friends hidden from anonymous", 0, &friendsOnly, false},
		{"friends hidden from stranger", stranger.ID, &friendsOnly, false},
		{"friends visible to friend", friend.ID, &friendsOnly, true},
		{"friends visible to author", author.ID, &friendsOnly, true},
		{"private hidden from friend", friend.ID, &private, false},
		{"private visible to author", author.ID, &private, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CanViewPost(db, tc.viewerID, tc.post)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
