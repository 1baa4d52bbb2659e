package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// MaxCommentLength is the upper bound on comment content.
const MaxCommentLength = 1000

var (
	ErrEmptyComment      = errors.New("comment content cannot be empty")
	ErrCommentTooLong    = errors.New("comment content is too long")
	ErrParentWrongPost   = errors.New("parent comment must belong to same post")
	ErrParentUnavailable = errors.New("parent comment not found or deleted")
)

// Comment is a comment on a post. Nesting is flat-table: a reply carries its
// parent's ID and trees are reconstructed by indexed lookup.
type Comment struct {
	gorm.Model
	PostID   uint   `gorm:"not null;index:idx_post_created"`
	AuthorID uint   `gorm:"not null;index"`
	Content  string `gorm:"size:1000;not null"`
	ParentID *uint  `gorm:"index"`

	LikesCount int64 `gorm:"not null;default:0"`

	IsDeleted bool `gorm:"not null;default:false"`

	Author User `gorm:"foreignKey:AuthorID"`
}

// ValidateContent enforces the non-blank and length constraints.
func (c *Comment) ValidateContent() error {
	if strings.TrimSpace(c.Content) == "" {
		return ErrEmptyComment
	}
	if len(c.Content) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}

// CreateComment validates and stores a comment, then recomputes the owning
// post's cached comment count. A parent, when given, must be a live comment
// on the same post.
func CreateComment(db *gorm.DB, comment *Comment) error {
	if err := comment.ValidateContent(); err != nil {
		return err
	}

	if comment.ParentID != nil {
		var parent Comment
		err := db.First(&parent, *comment.ParentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrParentUnavailable
		}
		if err != nil {
			return err
		}
		if parent.IsDeleted {
			return ErrParentUnavailable
		}
		if parent.PostID != comment.PostID {
			return ErrParentWrongPost
		}
	}

	if err := db.Create(comment).Error; err != nil {
		return err
	}
	return RecountPostComments(db, comment.PostID)
}

// SoftDeleteComment flags a comment as deleted and recomputes the post's
// cached comment count.
func SoftDeleteComment(db *gorm.DB, comment *Comment) error {
	if err := db.Model(comment).Update("is_deleted", true).Error; err != nil {
		return err
	}
	return RecountPostComments(db, comment.PostID)
}

// RecountPostComments overwrites the post's cached comment count with a live
// count of its non-deleted comments. Like RecountLikes, the recount is not in
// the same transaction as the triggering write; the cache is eventually
// consistent and self-heals on the next mutation.
func RecountPostComments(db *gorm.DB, postID uint) error {
	var count int64
	err := db.Model(&Comment{}).Where(
		"post_id = ? AND is_deleted = ?", postID, false,
	).Count(&count).Error
	if err != nil {
		return err
	}
	return db.Model(&Post{}).Where("id = ?", postID).Update("comments_count", count).Error
}
