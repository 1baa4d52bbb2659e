package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database and migrates the schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&User{}, &Friendship{}, &Post{}, &PostMedia{}, &PostTag{},
		&Comment{}, &Reaction{}, &Notification{}, &NotificationPreference{},
	)
	require.NoError(t, err)

	return db
}

// createUser inserts a user with a unique username/email derived from name.
func createUser(t *testing.T, db *gorm.DB, name string) User {
	t.Helper()

	user := User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// createPost inserts a post by the given author.
func createPost(t *testing.T, db *gorm.DB, authorID uint, privacy PostPrivacy) Post {
	t.Helper()

	post := Post{
		AuthorID: authorID,
		Content:  "hello",
		PostType: PostTypeText,
		Privacy:  privacy,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

// befriend creates an accepted edge between two users.
func befriend(t *testing.T, db *gorm.DB, requesterID, addresseeID uint) {
	t.Helper()

	require.NoError(t, db.Create(&Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      StatusAccepted,
	}).Error)
}
