package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/study-companion/internal/apperror"
	"github.com/sakif/study-companion/internal/model"
	"github.com/sakif/study-companion/internal/repository"
)

// VideoService handles the catalog CRUD. Reads are public; mutations are
// instructor-gated at the routing layer.
type VideoService struct {
	videos repository.VideoRepository
	logger *slog.Logger
}

// NewVideoService creates a VideoService.
func NewVideoService(videos repository.VideoRepository, logger *slog.Logger) *VideoService {
	return &VideoService{
		videos: videos,
		logger: logger,
	}
}

// VideoUpdate carries the optional fields of a catalog update. Zero values
// mean "keep the existing value"; FormSchema is replaced only when non-nil.
type VideoUpdate struct {
	Title       string
	Description string
	VideoURL    string
	Thumbnail   string
	WeekNumber  int
	FormSchema  []model.FormField
}

// List returns the whole catalog ordered by video identity.
func (s *VideoService) List(ctx context.Context) ([]model.Video, error) {
	videos, err := s.videos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/video: listing videos: %w", err)
	}
	return videos, nil
}

// GetByVideoID returns one catalog entry or NotFound.
func (s *VideoService) GetByVideoID(ctx context.Context, videoID int) (*model.Video, error) {
	video, err := s.videos.GetByVideoID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return video, nil
}

// Create adds a catalog entry. The integer videoId must be positive, the
// title non-empty, and every form field must carry one of the four known
// kinds. A duplicate videoId is a Conflict.
func (s *VideoService) Create(ctx context.Context, video *model.Video) (*model.Video, error) {
	if video.VideoID <= 0 {
		return nil, apperror.ValidationFailed("videoId", "معرف الفيديو مطلوب")
	}
	if strings.TrimSpace(video.Title) == "" {
		return nil, apperror.ValidationFailed("title", "عنوان الفيديو مطلوب")
	}
	if err := validateFormSchema(video.FormSchema); err != nil {
		return nil, err
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("service/video: creating video %d: %w", video.VideoID, err)
	}

	s.logger.Info("video created",
		slog.Int("videoID", video.VideoID),
		slog.String("title", video.Title),
	)

	return video, nil
}

// Update applies a partial update to the catalog entry with the given
// identity: each provided field replaces the stored one, absent fields keep
// their values, and a provided form schema replaces the old one in full.
func (s *VideoService) Update(ctx context.Context, videoID int, in VideoUpdate) (*model.Video, error) {
	video, err := s.videos.GetByVideoID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Title) != "" {
		video.Title = in.Title
	}
	if in.Description != "" {
		video.Description = in.Description
	}
	if in.VideoURL != "" {
		video.VideoURL = in.VideoURL
	}
	if in.Thumbnail != "" {
		video.Thumbnail = in.Thumbnail
	}
	if in.WeekNumber != 0 {
		video.WeekNumber = in.WeekNumber
	}
	if in.FormSchema != nil {
		if err := validateFormSchema(in.FormSchema); err != nil {
			return nil, err
		}
		video.FormSchema = in.FormSchema
	}

	if err := s.videos.Update(ctx, video); err != nil {
		s.logger.Error("failed to update video",
			slog.Int("videoID", videoID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/video: updating video %d: %w", videoID, err)
	}

	s.logger.Info("video updated", slog.Int("videoID", videoID))

	return video, nil
}

// Delete removes a catalog entry, or returns NotFound.
func (s *VideoService) Delete(ctx context.Context, videoID int) error {
	if err := s.videos.Delete(ctx, videoID); err != nil {
		return err
	}

	s.logger.Info("video deleted", slog.Int("videoID", videoID))
	return nil
}

// validateFormSchema checks every descriptor carries a known field kind.
func validateFormSchema(schema []model.FormField) error {
	for _, f := range schema {
		if !model.ValidFieldKind(f.Type) {
			return apperror.ValidationFailed("formSchema",
				fmt.Sprintf("نوع الحقل غير صالح: %s", f.Type))
		}
	}
	return nil
}
