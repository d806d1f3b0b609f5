package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/study-companion/internal/apperror"
	"github.com/sakif/study-companion/internal/auth"
	"github.com/sakif/study-companion/internal/model"
	"github.com/sakif/study-companion/internal/repository"
)

// ReflectionService manages per-video reflection submissions.
//
// The central rule is one reflection per (user, video): the first submission
// creates the record, every later one replaces its responses wholesale. The
// compound unique constraint in the store is what guarantees this under
// concurrency — see Submit.
type ReflectionService struct {
	reflections repository.ReflectionRepository
	videos      repository.VideoRepository
	logger      *slog.Logger
}

// NewReflectionService creates a ReflectionService.
func NewReflectionService(
	reflections repository.ReflectionRepository,
	videos repository.VideoRepository,
	logger *slog.Logger,
) *ReflectionService {
	return &ReflectionService{
		reflections: reflections,
		videos:      videos,
		logger:      logger,
	}
}

// Submit upserts the principal's reflection for a video.
//
// The returned bool is true when this submission created the record (the
// handler answers 201) and false when it replaced an existing one (200).
//
// Semantics:
//   - the video title is snapshotted from the catalog; a catalog miss caches
//     an empty title and is NOT an error — reflections may outlive or
//     predate their video entry
//   - responses are replaced wholesale: answers missing from the new
//     submission are dropped, not merged
//   - the created/updated decision comes from a pre-read; the write itself
//     is an atomic upsert, so two concurrent first submissions still leave
//     exactly one record (both may report "created", content is
//     last-write-wins)
func (s *ReflectionService) Submit(ctx context.Context, principal auth.Principal, videoID int, responses map[string]model.AnswerValue) (*model.VideoReflection, bool, error) {
	if videoID == 0 || responses == nil {
		return nil, false, apperror.ValidationFailed("", "معرف الفيديو والإجابات مطلوبة")
	}

	videoTitle := ""
	if video, err := s.videos.GetByVideoID(ctx, videoID); err == nil {
		videoTitle = video.Title
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, false, fmt.Errorf("service/reflection: looking up video %d: %w", videoID, err)
	}

	created := false
	if _, err := s.reflections.GetByUserAndVideo(ctx, principal.ID, videoID); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, false, fmt.Errorf("service/reflection: checking existing reflection: %w", err)
		}
		created = true
	}

	reflection := &model.VideoReflection{
		UserID:     principal.ID,
		VideoID:    videoID,
		VideoTitle: videoTitle,
		Responses:  responses,
	}

	if err := s.reflections.Upsert(ctx, reflection); err != nil {
		s.logger.Error("failed to save reflection",
			slog.String("userID", principal.ID),
			slog.Int("videoID", videoID),
			slog.String("error", err.Error()),
		)
		return nil, false, fmt.Errorf("service/reflection: saving reflection: %w", err)
	}

	s.logger.Info("reflection saved",
		slog.String("userID", principal.ID),
		slog.Int("videoID", videoID),
		slog.Bool("created", created),
	)

	return reflection, created, nil
}

// ListOwn returns the principal's reflections, newest first, optionally
// filtered to one video.
func (s *ReflectionService) ListOwn(ctx context.Context, principal auth.Principal, videoID *int) ([]model.VideoReflection, error) {
	reflections, err := s.reflections.ListByUser(ctx, principal.ID, videoID)
	if err != nil {
		return nil, fmt.Errorf("service/reflection: listing reflections for %s: %w", principal.ID, err)
	}
	return reflections, nil
}

// GetByVideo returns the principal's reflection for one video, or NotFound
// if they haven't submitted one.
func (s *ReflectionService) GetByVideo(ctx context.Context, principal auth.Principal, videoID int) (*model.VideoReflection, error) {
	reflection, err := s.reflections.GetByUserAndVideo(ctx, principal.ID, videoID)
	if err != nil {
		return nil, err
	}
	return reflection, nil
}

// ListAll returns reflections across all students, populated with account
// summaries, for the instructor's review view. The handler role-gates it.
func (s *ReflectionService) ListAll(ctx context.Context, filter repository.ReflectionFilter) ([]model.ReflectionWithUser, error) {
	reflections, err := s.reflections.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service/reflection: listing all reflections: %w", err)
	}
	return reflections, nil
}
