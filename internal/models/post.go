package models

import "gorm.io/gorm"

// PostType distinguishes the primary kind of content a post carries.
type PostType string

const (
	PostTypeText  PostType = "text"
	PostTypeImage PostType = "image"
	PostTypeVideo PostType = "video"
	PostTypeLink  PostType = "link"
)

// PostPrivacy controls who can view a post.
type PostPrivacy string

const (
	PrivacyPublic  PostPrivacy = "public"
	PrivacyFriends PostPrivacy = "friends"
	PrivacyPrivate PostPrivacy = "private"
)

// Post represents a post on a user's feed. The likes and comments counts are
// cached derivations of the reaction and comment tables, recomputed on every
// mutation of those tables.
type Post struct {
	gorm.Model
	AuthorID uint        `gorm:"not null;index:idx_author_created"`
	Content  string      `gorm:"type:text"`
	PostType PostType    `gorm:"size:20;not null;default:'text'"`
	Privacy  PostPrivacy `gorm:"size:30;not null;default:'friends';index:idx_privacy_created"`
	Location string      `gorm:"size:100"`

	LikesCount    int64 `gorm:"not null;default:0"`
	CommentsCount int64 `gorm:"not null;default:0"`

	IsDeleted bool `gorm:"not null;default:false"`

	Author User        `gorm:"foreignKey:AuthorID"`
	Media  []PostMedia `gorm:"foreignKey:PostID"`
	Tags   []PostTag   `gorm:"foreignKey:PostID"`
}

// MediaType distinguishes image and video attachments.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// PostMedia is an attachment (image or video) on a post.
type PostMedia struct {
	gorm.Model
	PostID    uint      `gorm:"not null;index"`
	MediaType MediaType `gorm:"size:15;not null"`
	URL       string    `gorm:"size:512;not null"`
	Caption   string    `gorm:"size:500"`
	Order     int       `gorm:"not null;default:0"`
}

// PostTag marks a user as tagged in a post.
type PostTag struct {
	gorm.Model
	PostID uint `gorm:"not null;uniqueIndex:idx_post_user"`
	UserID uint `gorm:"not null;uniqueIndex:idx_post_user"`

	User User `gorm:"foreignKey:UserID"`
}

// CanViewPost checks whether a viewer is allowed to see a post. The author
// always can; public posts are open to everyone; private posts only to the
// author; friends-only posts require an accepted edge between the two users.
func CanViewPost(db *gorm.DB, viewerID uint, post *Post) (bool, error) {
	if post.AuthorID == viewerID {
		return true, nil
	}

	switch post.Privacy {
	case PrivacyPublic:
		return true, nil
	case PrivacyPrivate:
		return false, nil
	case PrivacyFriends:
		return AreFriends(db, viewerID, post.AuthorID)
	}
	return false, nil
}
