package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/study-companion/internal/apperror"
	"github.com/sakif/study-companion/internal/auth"
	"github.com/sakif/study-companion/internal/model"
	"github.com/sakif/study-companion/internal/repository"
	"github.com/sakif/study-companion/internal/service"
)

// ReflectionHandler exposes the reflection endpoints.
type ReflectionHandler struct {
	reflections *service.ReflectionService
	logger      *slog.Logger
}

// NewReflectionHandler creates a ReflectionHandler.
func NewReflectionHandler(reflections *service.ReflectionService, logger *slog.Logger) *ReflectionHandler {
	return &ReflectionHandler{reflections: reflections, logger: logger}
}

// HandleSubmit creates or replaces the caller's reflection for a video.
//
// HTTP: POST /api/reflections
// Body: {videoId, responses} — responses maps form-field ids to scalar
// answers. 201 on first submission for the (user, video) pair, 200 when an
// existing reflection was replaced.
func (h *ReflectionHandler) HandleSubmit(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	var req struct {
		VideoID   int                          `json:"videoId"`
		Responses map[string]model.AnswerValue `json:"responses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "معرف الفيديو والإجابات مطلوبة"))
		return
	}

	reflection, created, err := h.reflections.Submit(r.Context(), principal, req.VideoID, req.Responses)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, reflection)
}

// HandleListOwn returns the caller's reflections, newest first.
//
// HTTP: GET /api/reflections?videoId=...
func (h *ReflectionHandler) HandleListOwn(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	videoID, err := optionalVideoIDQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	reflections, err := h.reflections.ListOwn(r.Context(), principal, videoID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reflections)
}

// HandleGetByVideo returns the caller's reflection for one video, or 404.
//
// HTTP: GET /api/reflections/{videoId}
func (h *ReflectionHandler) HandleGetByVideo(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	raw := chi.URLParam(r, "videoId")
	videoID, err := strconv.Atoi(raw)
	if err != nil || videoID <= 0 {
		writeError(w, apperror.ValidationFailed("videoId", "معرف الفيديو غير صالح"))
		return
	}

	reflection, err := h.reflections.GetByVideo(r.Context(), principal, videoID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reflection)
}

// HandleListAll returns all students' reflections, populated with account
// summaries.
//
// HTTP: GET /api/reflections/all?videoId=...&userId=... (instructor only)
func (h *ReflectionHandler) HandleListAll(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	videoID, err := optionalVideoIDQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	reflections, err := h.reflections.ListAll(r.Context(), repository.ReflectionFilter{
		VideoID: videoID,
		UserID:  r.URL.Query().Get("userId"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reflections)
}

// optionalVideoIDQuery parses the videoId query parameter if present.
func optionalVideoIDQuery(r *http.Request) (*int, error) {
	raw := r.URL.Query().Get("videoId")
	if raw == "" {
		return nil, nil
	}
	videoID, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperror.ValidationFailed("videoId", "معرف الفيديو غير صالح")
	}
	return &videoID, nil
}
