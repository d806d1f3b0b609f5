package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/study-companion/internal/model"
)

// newTestDB opens a fresh in-memory database with the schema applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createUser inserts an account directly through the repository.
func createUser(t *testing.T, db *DB, name, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$04$test",
		Role:         role,
	}
	if err := NewUserRepo(db).Create(context.Background(), u); err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
	return u
}

// createVideo inserts a catalog entry directly through the repository.
func createVideo(t *testing.T, db *DB, videoID int, title string) *model.Video {
	t.Helper()
	v := &model.Video{VideoID: videoID, Title: title}
	if err := NewVideoRepo(db).Create(context.Background(), v); err != nil {
		t.Fatalf("creating video %d: %v", videoID, err)
	}
	return v
}
