package models

import (
	"errors"

	"gorm.io/gorm"
)

// NotificationType classifies what a notification is about.
type NotificationType string

const (
	NotifyPostLike      NotificationType = "post_like"
	NotifyPostComment   NotificationType = "post_comment"
	NotifyCommentLike   NotificationType = "comment_like"
	NotifyCommentReply  NotificationType = "comment_reply"
	NotifyFriendRequest NotificationType = "friend_request"
	NotifyFriendAccept  NotificationType = "friend_accept"
)

// Notification is a fire-and-forget message addressed to a recipient,
// optionally referencing a subject row. Only the read/seen flags mutate
// after creation.
type Notification struct {
	gorm.Model
	RecipientID uint             `gorm:"not null;index:idx_recipient_created;index:idx_recipient_read"`
	SenderID    *uint            `gorm:"index"`
	Type        NotificationType `gorm:"size:20;not null;index"`
	Title       string           `gorm:"size:255;not null"`
	Message     string           `gorm:"type:text"`

	SubjectType *SubjectType `gorm:"size:50"`
	SubjectID   *uint

	IsRead bool `gorm:"not null;default:false;index:idx_recipient_read"`
	IsSeen bool `gorm:"not null;default:false"`

	Recipient User  `gorm:"foreignKey:RecipientID"`
	Sender    *User `gorm:"foreignKey:SenderID"`
}

// NotificationPreference holds one user's delivery switches per channel and
// notification category. A row is created lazily with all flags on.
type NotificationPreference struct {
	gorm.Model
	UserID uint `gorm:"not null;uniqueIndex"`

	EmailPostLikes      bool `gorm:"not null;default:true"`
	EmailComments       bool `gorm:"not null;default:true"`
	EmailFriendRequests bool `gorm:"not null;default:true"`
	EmailMentions       bool `gorm:"not null;default:true"`

	PushPostLikes      bool `gorm:"not null;default:true"`
	PushComments       bool `gorm:"not null;default:true"`
	PushFriendRequests bool `gorm:"not null;default:true"`
	PushMentions       bool `gorm:"not null;default:true"`

	InAppPostLikes      bool `gorm:"not null;default:true"`
	InAppComments       bool `gorm:"not null;default:true"`
	InAppFriendRequests bool `gorm:"not null;default:true"`
	InAppMentions       bool `gorm:"not null;default:true"`
}

// GetOrCreatePreferences loads the user's preference row, creating it with
// defaults on first access.
func GetOrCreatePreferences(db *gorm.DB, userID uint) (*NotificationPreference, error) {
	var prefs NotificationPreference
	err := db.Where("user_id = ?", userID).First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prefs = NotificationPreference{
			UserID:              userID,
			EmailPostLikes:      true,
			EmailComments:       true,
			EmailFriendRequests: true,
			EmailMentions:       true,
			PushPostLikes:       true,
			PushComments:        true,
			PushFriendRequests:  true,
			PushMentions:        true,
			InAppPostLikes:      true,
			InAppComments:       true,
			InAppFriendRequests: true,
			InAppMentions:       true,
		}
		if err := db.Create(&prefs).Error; err != nil {
			return nil, err
		}
		return &prefs, nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// WantsInApp reports whether the user has in-app delivery enabled for the
// given notification type.
func (p *NotificationPreference) WantsInApp(notificationType NotificationType) bool {
	switch notificationType {
	case NotifyPostLike, NotifyCommentLike:
		return p.InAppPostLikes
	case NotifyPostComment, NotifyCommentReply:
		return p.InAppComments
	case NotifyFriendRequest, NotifyFriendAccept:
		return p.InAppFriendRequests
	}
	return true
}
