// Package repository defines the storage interfaces consumed by the service
// layer. Services depend on these interfaces, never on a concrete database —
// the sqlite subpackage provides the real implementation and tests provide
// in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/study-companion/internal/model"
)

// UserRepository stores account records.
type UserRepository interface {
	// Create inserts a new account, assigning ID and CreatedAt. A duplicate
	// email surfaces as apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error
	// GetByID returns the account with the given ID, or apperror.ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail returns the account with the given email, or apperror.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// Update persists name and profile changes for an existing account.
	Update(ctx context.Context, user *model.User) error
	// FirstByRole returns the earliest-created account holding the role, or
	// apperror.ErrNotFound if none exists. Used by the student send-path
	// fallback to resolve "the instructor".
	FirstByRole(ctx context.Context, role model.Role) (*model.User, error)
	// ListByRole returns all accounts holding the role, oldest first.
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
}

// MessageRepository stores the flat message log. Messages are append-only.
type MessageRepository interface {
	// Create inserts a message, assigning ID and CreatedAt. Both endpoints
	// must already be resolved.
	Create(ctx context.Context, msg *model.Message) error
	// ListBetween returns every message exchanged between the two accounts
	// (either direction), ordered by creation time ascending.
	ListBetween(ctx context.Context, userA, userB string) ([]model.Message, error)
	// ListForUser returns every message the account sent or received,
	// ordered by creation time ascending.
	ListForUser(ctx context.Context, userID string) ([]model.Message, error)
}

// VideoRepository stores the video catalog. Videos are addressed by their
// small integer VideoID, not the storage ID.
type VideoRepository interface {
	// List returns the whole catalog ordered by VideoID ascending.
	List(ctx context.Context) ([]model.Video, error)
	// GetByVideoID returns the video, or apperror.ErrNotFound.
	GetByVideoID(ctx context.Context, videoID int) (*model.Video, error)
	// Create inserts a video, assigning ID and timestamps. A duplicate
	// VideoID surfaces as apperror.ErrConflict.
	Create(ctx context.Context, video *model.Video) error
	// Update persists changes to the video addressed by video.VideoID.
	Update(ctx context.Context, video *model.Video) error
	// Delete removes the video, or returns apperror.ErrNotFound.
	Delete(ctx context.Context, videoID int) error
}

// ReflectionFilter narrows a ListAll query. Zero values mean "no filter".
type ReflectionFilter struct {
	VideoID *int
	UserID  string
}

// ReflectionRepository stores reflections, at most one per (user, video).
type ReflectionRepository interface {
	// GetByUserAndVideo returns the reflection for the pair, or
	// apperror.ErrNotFound.
	GetByUserAndVideo(ctx context.Context, userID string, videoID int) (*model.VideoReflection, error)
	// Upsert inserts the reflection or, if one already exists for
	// (UserID, VideoID), replaces its responses, cached title and UpdatedAt
	// in place. The compound unique index makes this atomic: two concurrent
	// first submissions leave exactly one row. The struct is refreshed with
	// the stored row on return.
	Upsert(ctx context.Context, reflection *model.VideoReflection) error
	// ListByUser returns the account's reflections, newest submission first,
	// optionally filtered by video.
	ListByUser(ctx context.Context, userID string, videoID *int) ([]model.VideoReflection, error)
	// ListAll returns reflections matching the filter, newest submission
	// first, each populated with its owner's account summary.
	ListAll(ctx context.Context, filter ReflectionFilter) ([]model.ReflectionWithUser, error)
}
