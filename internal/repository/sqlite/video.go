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

// VideoRepo implements repository.VideoRepository on the shared connection.
type VideoRepo struct {
	db *DB
}

// NewVideoRepo creates a VideoRepo backed by db.
func NewVideoRepo(db *DB) *VideoRepo {
	return &VideoRepo{db: db}
}

var _ repository.VideoRepository = (*VideoRepo)(nil)

const videoColumns = `id, video_id, title, description, video_url, thumbnail, week_number, form_schema, created_at, updated_at`

// List returns the whole catalog ordered by the client-facing VideoID.
func (r *VideoRepo) List(ctx context.Context) ([]model.Video, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+videoColumns+` FROM videos ORDER BY video_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing videos: %w", err)
	}
	defer rows.Close()

	videos := []model.Video{}
	for rows.Next() {
		v, err := scanVideo(rows.Scan)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}

	return videos, rows.Err()
}

// GetByVideoID returns the video with the given integer identity.
// Returns apperror.ErrNotFound if it doesn't exist.
func (r *VideoRepo) GetByVideoID(ctx context.Context, videoID int) (*model.Video, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE video_id = ?`, videoID,
	)
	v, err := scanVideo(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("الفيديو غير موجود")
		}
		return nil, err
	}
	return v, nil
}

// Create inserts a catalog entry. The UNIQUE index on video_id backs the
// duplicate-identity Conflict.
func (r *VideoRepo) Create(ctx context.Context, video *model.Video) error {
	video.ID = xid.New().String()
	now := time.Now().UTC()
	video.CreatedAt = now
	video.UpdatedAt = now

	schema, err := json.Marshal(video.FormSchema)
	if err != nil {
		return fmt.Errorf("sqlite: encoding form schema: %w", err)
	}

	_, err = r.db.conn.ExecContext(ctx,
		`INSERT INTO videos (id, video_id, title, description, video_url, thumbnail, week_number, form_schema, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID,
		video.VideoID,
		video.Title,
		video.Description,
		video.VideoURL,
		video.Thumbnail,
		video.WeekNumber,
		string(schema),
		video.CreatedAt,
		video.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("الفيديو موجود بالفعل")
		}
		return fmt.Errorf("sqlite: inserting video %d: %w", video.VideoID, err)
	}

	return nil
}

// Update persists changes to the video addressed by video.VideoID and
// refreshes UpdatedAt.
func (r *VideoRepo) Update(ctx context.Context, video *model.Video) error {
	video.UpdatedAt = time.Now().UTC()

	schema, err := json.Marshal(video.FormSchema)
	if err != nil {
		return fmt.Errorf("sqlite: encoding form schema: %w", err)
	}

	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE videos SET title = ?, description = ?, video_url = ?, thumbnail = ?,
		        week_number = ?, form_schema = ?, updated_at = ?
		 WHERE video_id = ?`,
		video.Title,
		video.Description,
		video.VideoURL,
		video.Thumbnail,
		video.WeekNumber,
		string(schema),
		video.UpdatedAt,
		video.VideoID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating video %d: %w", video.VideoID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of video %d: %w", video.VideoID, err)
	}
	if affected == 0 {
		return apperror.NotFound("الفيديو غير موجود")
	}

	return nil
}

// Delete removes a catalog entry by its integer identity.
func (r *VideoRepo) Delete(ctx context.Context, videoID int) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM videos WHERE video_id = ?`, videoID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting video %d: %w", videoID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of video %d: %w", videoID, err)
	}
	if affected == 0 {
		return apperror.NotFound("الفيديو غير موجود")
	}

	return nil
}

// scanVideo reads one video row via the given Scan function, decoding the
// form schema JSON column.
func scanVideo(scan func(...any) error) (*model.Video, error) {
	var (
		v      model.Video
		schema string
	)
	err := scan(&v.ID, &v.VideoID, &v.Title, &v.Description, &v.VideoURL, &v.Thumbnail,
		&v.WeekNumber, &schema, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(schema), &v.FormSchema); err != nil {
		return nil, fmt.Errorf("sqlite: decoding form schema for video %d: %w", v.VideoID, err)
	}
	return &v, nil
}
