package models

import (
	"errors"

	"gorm.io/gorm"
)

// SubjectType tags the kind of row a reaction or notification points at.
// Only types present in the registry below are valid.
type SubjectType string

const (
	SubjectPost    SubjectType = "post"
	SubjectComment SubjectType = "comment"
)

var (
	ErrUnknownSubjectType = errors.New("unknown subject type")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrSubjectDeleted     = errors.New("subject has been deleted")
)

// SubjectState is what a loader reports about a subject row.
type SubjectState struct {
	Exists    bool
	IsDeleted bool
}

// subjectLoader resolves a subject ID to its current state.
type subjectLoader func(db *gorm.DB, id uint) (SubjectState, error)

// subjectRegistry is the allow-list of reactable/notifiable subject kinds.
var subjectRegistry = map[SubjectType]subjectLoader{
	SubjectPost: func(db *gorm.DB, id uint) (SubjectState, error) {
		var post Post
		err := db.Select("is_deleted").First(&post, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SubjectState{}, nil
		}
		if err != nil {
			return SubjectState{}, err
		}
		return SubjectState{Exists: true, IsDeleted: post.IsDeleted}, nil
	},
	SubjectComment: func(db *gorm.DB, id uint) (SubjectState, error) {
		var comment Comment
		err := db.Select("is_deleted").First(&comment, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SubjectState{}, nil
		}
		if err != nil {
			return SubjectState{}, err
		}
		return SubjectState{Exists: true, IsDeleted: comment.IsDeleted}, nil
	},
}

// ValidSubjectType reports whether the given tag is in the registry.
func ValidSubjectType(subjectType SubjectType) bool {
	_, ok := subjectRegistry[subjectType]
	return ok
}

// ResolveSubject checks that a subject exists and is not soft-deleted.
// It returns ErrUnknownSubjectType, ErrSubjectNotFound or ErrSubjectDeleted
// when the subject cannot accept a mutation.
func ResolveSubject(db *gorm.DB, subjectType SubjectType, subjectID uint) error {
	loader, ok := subjectRegistry[subjectType]
	if !ok {
		return ErrUnknownSubjectType
	}

	state, err := loader(db, subjectID)
	if err != nil {
		return err
	}
	if !state.Exists {
		return ErrSubjectNotFound
	}
	if state.IsDeleted {
		return ErrSubjectDeleted
	}
	return nil
}
