package models

import (
	"errors"

	"gorm.io/gorm"
)

// ReactionKind is the fixed set of sentiments a user can attach to a subject.
type ReactionKind string

const (
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionHaha  ReactionKind = "haha"
	ReactionWow   ReactionKind = "wow"
	ReactionSad   ReactionKind = "sad"
	ReactionAngry ReactionKind = "angry"
)

// ValidReactionKind reports whether the given kind is one of the known sentiments.
func ValidReactionKind(kind ReactionKind) bool {
	switch kind {
	case ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry:
		return true
	}
	return false
}

// Reaction records a user's single sentiment toward a subject. The composite
// unique index enforces at most one reaction per (user, subject).
type Reaction struct {
	gorm.Model
	UserID      uint         `gorm:"not null;uniqueIndex:idx_user_subject;index"`
	SubjectType SubjectType  `gorm:"size:50;not null;uniqueIndex:idx_user_subject;index:idx_subject"`
	SubjectID   uint         `gorm:"not null;uniqueIndex:idx_user_subject;index:idx_subject"`
	Kind        ReactionKind `gorm:"size:20;not null"`

	User User `gorm:"foreignKey:UserID"`
}

// ToggleResult describes the outcome of a reaction toggle.
type ToggleResult struct {
	Liked    bool
	Reaction *ReactionKind
}

// ToggleReaction applies the toggle semantics for a user's reaction on a
// subject: no existing reaction creates one, repeating the same kind removes
// it, and a different kind updates the row in place. The subject's cached
// likes count is recomputed afterwards.
func ToggleReaction(db *gorm.DB, userID uint, subjectType SubjectType, subjectID uint, kind ReactionKind) (*ToggleResult, error) {
	if err := ResolveSubject(db, subjectType, subjectID); err != nil {
		return nil, err
	}

	var existing Reaction
	err := db.Where(
		"user_id = ? AND subject_type = ? AND subject_id = ?",
		userID, subjectType, subjectID,
	).First(&existing).Error

	result := &ToggleResult{}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		reaction := Reaction{
			UserID:      userID,
			SubjectType: subjectType,
			SubjectID:   subjectID,
			Kind:        kind,
		}
		if err := db.Create(&reaction).Error; err != nil {
			return nil, err
		}
		result.Liked = true
		result.Reaction = &kind

	case err != nil:
		return nil, err

	case existing.Kind == kind:
		// Same reaction - remove it (unlike).
		if err := db.Unscoped().Delete(&existing).Error; err != nil {
			return nil, err
		}
		result.Liked = false

	default:
		// Different reaction - update it.
		if err := db.Model(&existing).Update("kind", kind).Error; err != nil {
			return nil, err
		}
		result.Liked = true
		result.Reaction = &kind
	}

	if err := RecountLikes(db, subjectType, subjectID); err != nil {
		return nil, err
	}
	return result, nil
}

// RecountLikes overwrites the subject's cached likes count with a live count
// of its reaction rows. The recount is not transactional with the triggering
// write; a concurrent writer can leave the cache stale until the next toggle.
func RecountLikes(db *gorm.DB, subjectType SubjectType, subjectID uint) error {
	var count int64
	err := db.Model(&Reaction{}).Where(
		"subject_type = ? AND subject_id = ?", subjectType, subjectID,
	).Count(&count).Error
	if err != nil {
		return err
	}

	switch subjectType {
	case SubjectPost:
		return db.Model(&Post{}).Where("id = ?", subjectID).Update("likes_count", count).Error
	case SubjectComment:
		return db.Model(&Comment{}).Where("id = ?", subjectID).Update("likes_count", count).Error
	}
	return ErrUnknownSubjectType
}

// UserReaction returns the user's current reaction on a subject, or nil.
func UserReaction(db *gorm.DB, userID uint, subjectType SubjectType, subjectID uint) (*Reaction, error) {
	var reaction Reaction
	err := db.Where(
		"user_id = ? AND subject_type = ? AND subject_id = ?",
		userID, subjectType, subjectID,
	).First(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}
