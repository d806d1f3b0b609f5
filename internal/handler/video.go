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
	"github.com/sakif/study-companion/internal/service"
)

// VideoHandler exposes the catalog endpoints. Reads are public, mutations
// run behind the instructor role gate.
type VideoHandler struct {
	videos *service.VideoService
	logger *slog.Logger
}

// NewVideoHandler creates a VideoHandler.
func NewVideoHandler(videos *service.VideoService, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{videos: videos, logger: logger}
}

// HandleList returns the whole catalog.
//
// HTTP: GET /api/videos (public)
func (h *VideoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videos.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, videos)
}

// HandleGetByID returns one catalog entry.
//
// HTTP: GET /api/videos/{id} (public) — {id} is the integer videoId.
func (h *VideoHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	videoID, err := videoIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	video, err := h.videos.GetByVideoID(r.Context(), videoID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, video)
}

// HandleCreate adds a catalog entry.
//
// HTTP: POST /api/videos (instructor only)
// 201 with the created video; 409 on a duplicate videoId.
func (h *VideoHandler) HandleCreate(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	var req struct {
		VideoID     int               `json:"videoId"`
		Title       string            `json:"title"`
		Description string            `json:"description"`
		VideoURL    string            `json:"videoUrl"`
		Thumbnail   string            `json:"thumbnail"`
		WeekNumber  int               `json:"weekNumber"`
		FormSchema  []model.FormField `json:"formSchema"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "بيانات الفيديو غير صالحة"))
		return
	}

	video, err := h.videos.Create(r.Context(), &model.Video{
		VideoID:     req.VideoID,
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Thumbnail:   req.Thumbnail,
		WeekNumber:  req.WeekNumber,
		FormSchema:  req.FormSchema,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, video)
}

// HandleUpdate applies a partial update to a catalog entry.
//
// HTTP: PUT /api/videos/{id} (instructor only)
func (h *VideoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	videoID, err := videoIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		VideoURL    string            `json:"videoUrl"`
		Thumbnail   string            `json:"thumbnail"`
		WeekNumber  int               `json:"weekNumber"`
		FormSchema  []model.FormField `json:"formSchema"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "بيانات الفيديو غير صالحة"))
		return
	}

	video, err := h.videos.Update(r.Context(), videoID, service.VideoUpdate{
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Thumbnail:   req.Thumbnail,
		WeekNumber:  req.WeekNumber,
		FormSchema:  req.FormSchema,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, video)
}

// HandleDelete removes a catalog entry.
//
// HTTP: DELETE /api/videos/{id} (instructor only)
func (h *VideoHandler) HandleDelete(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	videoID, err := videoIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.videos.Delete(r.Context(), videoID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "تم حذف الفيديو بنجاح"})
}

// videoIDParam parses the {id} URL parameter as the integer video identity.
func videoIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	videoID, err := strconv.Atoi(raw)
	if err != nil || videoID <= 0 {
		return 0, apperror.ValidationFailed("id", "معرف الفيديو غير صالح")
	}
	return videoID, nil
}
