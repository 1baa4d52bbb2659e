package models

import (
	"errors"

	"gorm.io/gorm"
)

// FriendshipStatus defines the state of a relationship between two users.
type FriendshipStatus string

const (
	// StatusPending means a friend request has been sent but not yet answered.
	StatusPending FriendshipStatus = "pending"

	// StatusAccepted means the friend request was accepted, and the users are now friends.
	StatusAccepted FriendshipStatus = "accepted"

	// StatusDeclined means the addressee turned the request down.
	StatusDeclined FriendshipStatus = "declined"

	// StatusBlocked means the requester has blocked the addressee.
	StatusBlocked FriendshipStatus = "blocked"
)

var (
	ErrSelfFriendship = errors.New("users cannot send friend requests to themselves")
	ErrNotFriends     = errors.New("users are not friends")
	ErrNotBlocked     = errors.New("user is not blocked")
)

// Friendship represents the relationship between two users. The row is directed
// (requester sent the request to addressee) but an accepted row means the two
// users are friends regardless of direction. At most one row exists per pair.
type Friendship struct {
	gorm.Model
	RequesterID uint             `gorm:"not null;uniqueIndex:idx_requester_addressee;index"`
	AddresseeID uint             `gorm:"not null;uniqueIndex:idx_requester_addressee;index"`
	Status      FriendshipStatus `gorm:"type:varchar(20);not null;default:'pending';index"`

	Requester User `gorm:"foreignKey:RequesterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Addressee User `gorm:"foreignKey:AddresseeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// BeforeSave rejects self-referencing edges.
func (f *Friendship) BeforeSave(_ *gorm.DB) error {
	if f.RequesterID == f.AddresseeID {
		return ErrSelfFriendship
	}
	return nil
}

// GetFriendship returns the edge between two users in either direction,
// or nil if none exists.
func GetFriendship(db *gorm.DB, userA, userB uint) (*Friendship, error) {
	var friendship Friendship
	err := db.Where(
		"(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
		userA, userB, userB, userA,
	).First(&friendship).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

// AreFriends reports whether an accepted edge connects the two users.
func AreFriends(db *gorm.DB, userA, userB uint) (bool, error) {
	var count int64
	err := db.Model(&Friendship{}).Where(
		"((requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)) AND status = ?",
		userA, userB, userB, userA, StatusAccepted,
	).Count(&count).Error
	return count > 0, err
}

// FriendIDs returns the IDs of every user connected to userID by an accepted
// edge, in either direction. The result never contains userID itself.
func FriendIDs(db *gorm.DB, userID uint) ([]uint, error) {
	var edges []Friendship
	err := db.Where(
		"(requester_id = ? OR addressee_id = ?) AND status = ?",
		userID, userID, StatusAccepted,
	).Find(&edges).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(edges))
	for _, edge := range edges {
		if edge.RequesterID == userID {
			ids = append(ids, edge.AddresseeID)
		} else {
			ids = append(ids, edge.RequesterID)
		}
	}
	return ids, nil
}

// Friends returns the user rows for every friend of userID.
func Friends(db *gorm.DB, userID uint) ([]User, error) {
	ids, err := FriendIDs(db, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []User{}, nil
	}

	var users []User
	if err := db.Where("id IN ?", ids).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Unfriend removes the accepted edge between two users. It returns
// ErrNotFriends when no accepted edge connects them.
func Unfriend(db *gorm.DB, userA, userB uint) error {
	friendship, err := GetFriendship(db, userA, userB)
	if err != nil {
		return err
	}
	if friendship == nil || friendship.Status != StatusAccepted {
		return ErrNotFriends
	}
	return db.Unscoped().Delete(friendship).Error
}

// Unblock removes a blocked edge where blockerID is the requester. It returns
// ErrNotBlocked when no such edge exists; an edge blocked in the other
// direction does not count.
func Unblock(db *gorm.DB, blockerID, targetID uint) error {
	var friendship Friendship
	err := db.Where(
		"requester_id = ? AND addressee_id = ? AND status = ?",
		blockerID, targetID, StatusBlocked,
	).First(&friendship).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotBlocked
	}
	if err != nil {
		return err
	}
	return db.Unscoped().Delete(&friendship).Error
}

// MutualFriendIDs returns the intersection of the two users' friend sets.
func MutualFriendIDs(db *gorm.DB, userA, userB uint) ([]uint, error) {
	friendsOfA, err := FriendIDs(db, userA)
	if err != nil {
		return nil, err
	}
	friendsOfB, err := FriendIDs(db, userB)
	if err != nil {
		return nil, err
	}

	setA := make(map[uint]bool, len(friendsOfA))
	for _, id := range friendsOfA {
		setA[id] = true
	}

	var mutual []uint
	for _, id := range friendsOfB {
		if setA[id] {
			mutual = append(mutual, id)
		}
	}
	return mutual, nil
}

// MutualFriends returns the user rows for every mutual friend of the two users.
func MutualFriends(db *gorm.DB, userA, userB uint) ([]User, error) {
	ids, err := MutualFriendIDs(db, userA, userB)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []User{}, nil
	}

	var users []User
	if err := db.Where("id IN ?", ids).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FriendSuggestions returns friends-of-friends of userID, excluding the user
// themselves, their current friends, and anyone already sharing an edge with
// them in any status. Candidates are ordered by ID for a stable result.
func FriendSuggestions(db *gorm.DB, userID uint, limit int) ([]User, error) {
	friendIDs, err := FriendIDs(db, userID)
	if err != nil {
		return nil, err
	}
	if len(friendIDs) == 0 {
		return []User{}, nil
	}

	friendSet := make(map[uint]bool, len(friendIDs))
	for _, id := range friendIDs {
		friendSet[id] = true
	}

	// Collect friends of each friend.
	var edges []Friendship
	err = db.Where(
		"(requester_id IN ? OR addressee_id IN ?) AND status = ?",
		friendIDs, friendIDs, StatusAccepted,
	).Find(&edges).Error
	if err != nil {
		return nil, err
	}

	candidateSet := make(map[uint]bool)
	for _, edge := range edges {
		for _, id := range []uint{edge.RequesterID, edge.AddresseeID} {
			if id != userID && !friendSet[id] {
				candidateSet[id] = true
			}
		}
	}
	if len(candidateSet) == 0 {
		return []User{}, nil
	}

	// Exclude anyone who already shares an edge with the user, whatever its status.
	var existingEdges []Friendship
	err = db.Where("requester_id = ? OR addressee_id = ?", userID, userID).Find(&existingEdges).Error
	if err != nil {
		return nil, err
	}
	for _, edge := range existingEdges {
		delete(candidateSet, edge.RequesterID)
		delete(candidateSet, edge.AddresseeID)
	}
	if len(candidateSet) == 0 {
		return []User{}, nil
	}

	candidateIDs := make([]uint, 0, len(candidateSet))
	for id := range candidateSet {
		candidateIDs = append(candidateIDs, id)
	}

	var users []User
	if err := db.Where("id IN ?", candidateIDs).Order("id ASC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
