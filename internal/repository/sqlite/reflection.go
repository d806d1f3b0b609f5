package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/study-companion/internal/apperror"
	"github.com/sakif/study-companion/internal/model"
	"github.com/sakif/study-companion/internal/repository"
)

// ReflectionRepo implements repository.ReflectionRepository on the shared
// connection.
type ReflectionRepo struct {
	db *DB
}

// NewReflectionRepo creates a ReflectionRepo backed by db.
func NewReflectionRepo(db *DB) *ReflectionRepo {
	return &ReflectionRepo{db: db}
}

var _ repository.ReflectionRepository = (*ReflectionRepo)(nil)

// GetByUserAndVideo returns the reflection for the (user, video) pair.
// Returns apperror.ErrNotFound if the user hasn't submitted one.
func (s *ReflectionRepo) GetByUserAndVideo(ctx context.Context, userID string, videoID int) (*model.VideoReflection, error) {
	var (
		r         model.VideoReflection
		responses string
	)

	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, video_id, video_title, responses, submitted_at, updated_at
		 FROM reflections WHERE user_id = ? AND video_id = ?`,
		userID, videoID,
	).Scan(&r.ID, &r.UserID, &r.VideoID, &r.VideoTitle, &responses, &r.SubmittedAt, &r.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("لم يتم العثور على إجابة لهذا الفيديو")
		}
		return nil, fmt.Errorf("sqlite: getting reflection: %w", err)
	}

	if err := json.Unmarshal([]byte(responses), &r.Responses); err != nil {
		return nil, fmt.Errorf("sqlite: decoding responses for reflection %s: %w", r.ID, err)
	}

	return &r, nil
}

// Upsert writes the reflection for (UserID, VideoID), creating the row on
// first submission and replacing responses, cached title and updated_at on
// resubmission.
//
// ON CONFLICT is what makes the concurrent-create race safe: two requests
// can both find no existing row and both insert — the loser's INSERT turns
// into an UPDATE against the compound unique index instead of failing or
// duplicating. submitted_at keeps the winner's value.
//
// The stored row is read back afterwards so the caller gets the canonical
// ID and timestamps whichever path was taken.
func (s *ReflectionRepo) Upsert(ctx context.Context, reflection *model.VideoReflection) error {
	responses, err := json.Marshal(reflection.Responses)
	if err != nil {
		return fmt.Errorf("sqlite: encoding responses: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.conn.ExecContext(ctx,
		`INSERT INTO reflections (id, user_id, video_id, video_title, responses, submitted_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, video_id) DO UPDATE SET
		 	responses   = excluded.responses,
		 	video_title = excluded.video_title,
		 	updated_at  = excluded.updated_at`,
		xid.New().String(),
		reflection.UserID,
		reflection.VideoID,
		reflection.VideoTitle,
		string(responses),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting reflection for user %s video %d: %w",
			reflection.UserID, reflection.VideoID, err)
	}

	stored, err := s.GetByUserAndVideo(ctx, reflection.UserID, reflection.VideoID)
	if err != nil {
		return fmt.Errorf("sqlite: reading back reflection: %w", err)
	}
	*reflection = *stored

	return nil
}

// ListByUser returns the account's reflections, newest submission first,
// optionally narrowed to one video.
func (s *ReflectionRepo) ListByUser(ctx context.Context, userID string, videoID *int) ([]model.VideoReflection, error) {
	query := `SELECT id, user_id, video_id, video_title, responses, submitted_at, updated_at
	          FROM reflections WHERE user_id = ?`
	args := []any{userID}
	if videoID != nil {
		query += ` AND video_id = ?`
		args = append(args, *videoID)
	}
	query += ` ORDER BY submitted_at DESC, id DESC`

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reflections for user %s: %w", userID, err)
	}
	defer rows.Close()

	reflections := []model.VideoReflection{}
	for rows.Next() {
		var (
			r         model.VideoReflection
			responses string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.VideoID, &r.VideoTitle, &responses, &r.SubmittedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning reflection row: %w", err)
		}
		if err := json.Unmarshal([]byte(responses), &r.Responses); err != nil {
			return nil, fmt.Errorf("sqlite: decoding responses for reflection %s: %w", r.ID, err)
		}
		reflections = append(reflections, r)
	}

	return reflections, rows.Err()
}

// ListAll returns reflections matching the filter, newest submission first,
// joined with each owner's account summary for the instructor's review view.
func (s *ReflectionRepo) ListAll(ctx context.Context, filter repository.ReflectionFilter) ([]model.ReflectionWithUser, error) {
	query := `SELECT r.id, r.user_id, r.video_id, r.video_title, r.responses, r.submitted_at, r.updated_at,
	                 u.id, u.name, u.email, u.role
	          FROM reflections r
	          JOIN users u ON u.id = r.user_id`
	where := []string{}
	args := []any{}
	if filter.VideoID != nil {
		where = append(where, `r.video_id = ?`)
		args = append(args, *filter.VideoID)
	}
	if filter.UserID != "" {
		where = append(where, `r.user_id = ?`)
		args = append(args, filter.UserID)
	}
	for i, clause := range where {
		if i == 0 {
			query += ` WHERE ` + clause
		} else {
			query += ` AND ` + clause
		}
	}
	query += ` ORDER BY r.submitted_at DESC, r.id DESC`

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing all reflections: %w", err)
	}
	defer rows.Close()

	results := []model.ReflectionWithUser{}
	for rows.Next() {
		var (
			rw        model.ReflectionWithUser
			responses string
			role      string
		)
		if err := rows.Scan(
			&rw.ID, &rw.UserID, &rw.VideoID, &rw.VideoTitle, &responses, &rw.SubmittedAt, &rw.UpdatedAt,
			&rw.User.ID, &rw.User.Name, &rw.User.Email, &role,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning reflection row: %w", err)
		}
		rw.User.Role = model.Role(role)
		if err := json.Unmarshal([]byte(responses), &rw.Responses); err != nil {
			return nil, fmt.Errorf("sqlite: decoding responses for reflection %s: %w", rw.ID, err)
		}
		results = append(results, rw)
	}

	return results, rows.Err()
}
