package models

import (
	"time"

	"gorm.io/gorm"
)

// ProfileVisibility controls who can see a user's extended profile.
type ProfileVisibility string

const (
	VisibilityPublic  ProfileVisibility = "public"
	VisibilityFriends ProfileVisibility = "friends"
	VisibilityPrivate ProfileVisibility = "private"
)

// User represents a user in the system.
type User struct {
	gorm.Model
	Username     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	// Profile information
	Bio               string `gorm:"size:500"`
	ProfilePictureURL string `gorm:"size:512"`
	CoverPhotoURL     string `gorm:"size:512"`
	DateOfBirth       *time.Time
	PhoneNumber       string `gorm:"size:15"`
	Website           string `gorm:"size:512"`
	Location          string `gorm:"size:100"`
	Work              string `gorm:"size:100"`
	Education         string `gorm:"size:100"`

	ProfileVisibility ProfileVisibility `gorm:"size:20;not null;default:'friends'"`

	IsOnline bool
	LastSeen time.Time
}
