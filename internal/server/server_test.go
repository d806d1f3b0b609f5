package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/study-companion/internal/auth"
	"github.com/sakif/study-companion/internal/model"
	sqliteRepo "github.com/sakif/study-companion/internal/repository/sqlite"
)

// newTestServer builds a full server against an in-memory database.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := New(Config{
		Port:      0,
		DBPath:    ":memory:",
		JWTSecret: "test-secret-at-least-16-chars!!",
	}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.db.Close() })
	return s
}

// seedInstructor inserts an instructor account directly, the way the seed
// command does, and returns the account with its plaintext password.
func seedInstructor(t *testing.T, s *Server) *model.User {
	t.Helper()
	hash, err := auth.NewPasswordServiceForTest(4).Hash("instructor-pw")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	u := &model.User{
		Name:         "المشرف",
		Email:        "instructor@app.com",
		PasswordHash: hash,
		Role:         model.RoleInstructor,
	}
	if err := sqliteRepo.NewUserRepo(s.db).Create(context.Background(), u); err != nil {
		t.Fatalf("seeding instructor: %v", err)
	}
	return u
}

// do performs a request against the router and decodes the JSON body into
// out (when out is non-nil).
func do(t *testing.T, s *Server, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decoding response %s: %v", rec.Body.String(), err)
		}
	}
	return rec
}

// register creates a student through the API and returns its token and ID.
func register(t *testing.T, s *Server, name, email string) (token, id string) {
	t.Helper()
	var resp map[string]any
	rec := do(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "student-pw",
	}, &resp)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	return resp["token"].(string), resp["_id"].(string)
}

// login authenticates through the API and returns the token.
func login(t *testing.T, s *Server, email, password string) string {
	t.Helper()
	var resp map[string]any
	rec := do(t, s, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	return resp["token"].(string)
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	s := newTestServer(t)

	var resp map[string]any
	rec := do(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     "أحمد",
		"email":    "Ahmed@App.com",
		"password": "secret123",
		"profile":  map[string]any{"age": 17, "state": "الجزائر"},
	}, &resp)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ahmed@app.com", resp["email"])
	assert.Equal(t, "student", resp["role"])
	assert.NotEmpty(t, resp["token"])
	// the password never appears in any response, hashed or not
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "secret123")

	// duplicate email
	rec = do(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     "other",
		"email":    "ahmed@app.com",
		"password": "pw",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// wrong password
	rec = do(t, s, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "ahmed@app.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := login(t, s, "ahmed@app.com", "secret123")

	// partial profile update merges instead of replacing
	var updated map[string]any
	rec = do(t, s, http.MethodPut, "/api/auth/profile", token, map[string]any{
		"profile": map[string]any{
			"age":   18,
			"needs": map[string]any{"timeMgmt": true},
		},
	}, &updated)
	assert.Equal(t, http.StatusOK, rec.Code)

	var profile map[string]any
	rec = do(t, s, http.MethodGet, "/api/auth/profile", token, nil, &profile)
	assert.Equal(t, http.StatusOK, rec.Code)
	p := profile["profile"].(map[string]any)
	assert.Equal(t, float64(18), p["age"])
	assert.Equal(t, "الجزائر", p["state"], "untouched field must survive the merge")
	assert.Equal(t, true, p["needs"].(map[string]any)["timeMgmt"])
}

func TestProfileRequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/auth/profile", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/auth/profile", "garbage-token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMessagingFlow(t *testing.T) {
	s := newTestServer(t)
	seedInstructor(t, s)

	studentToken, studentID := register(t, s, "طالب", "student@app.com")
	instructorToken := login(t, s, "instructor@app.com", "instructor-pw")

	// student sends without naming a recipient: routed to the instructor
	var sent map[string]any
	rec := do(t, s, http.MethodPost, "/api/messages", studentToken, map[string]any{
		"text": "عندي سؤال",
	}, &sent)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, studentID, sent["sender"])
	assert.Equal(t, "طالب", sent["senderName"])
	assert.Equal(t, "student", sent["senderRole"])

	// instructor replies to the student explicitly
	rec = do(t, s, http.MethodPost, "/api/messages", instructorToken, map[string]any{
		"text":        "تفضل",
		"recipientId": studentID,
	}, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// instructor without a recipient is a validation error
	rec = do(t, s, http.MethodPost, "/api/messages", instructorToken, map[string]any{
		"text": "إلى من؟",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// student sees the whole thread, oldest first
	var thread []map[string]any
	rec = do(t, s, http.MethodGet, "/api/messages", studentToken, nil, &thread)
	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.Len(t, thread, 2) {
		assert.Equal(t, "عندي سؤال", thread[0]["text"])
		assert.Equal(t, "تفضل", thread[1]["text"])
	}

	// instructor without a target gets an empty list
	var none []map[string]any
	rec = do(t, s, http.MethodGet, "/api/messages", instructorToken, nil, &none)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, none)

	// instructor with a target gets that student's thread
	var targeted []map[string]any
	rec = do(t, s, http.MethodGet, "/api/messages?userId="+studentID, instructorToken, nil, &targeted)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, targeted, 2)

	// conversations list is instructor-only
	rec = do(t, s, http.MethodGet, "/api/messages/conversations", studentToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var students []map[string]any
	rec = do(t, s, http.MethodGet, "/api/messages/conversations", instructorToken, nil, &students)
	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.Len(t, students, 1) {
		assert.Equal(t, "student@app.com", students[0]["email"])
	}
}

func TestSendMessageWithoutInstructor(t *testing.T) {
	s := newTestServer(t)
	studentToken, _ := register(t, s, "طالب", "student@app.com")

	rec := do(t, s, http.MethodPost, "/api/messages", studentToken, map[string]any{
		"text": "مرحبا",
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVideoCatalogFlow(t *testing.T) {
	s := newTestServer(t)
	seedInstructor(t, s)

	studentToken, _ := register(t, s, "طالب", "student@app.com")
	instructorToken := login(t, s, "instructor@app.com", "instructor-pw")

	// reads are public
	var empty []map[string]any
	rec := do(t, s, http.MethodGet, "/api/videos", "", nil, &empty)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, empty)

	// mutations are instructor-only
	body := map[string]any{
		"videoId":    1,
		"title":      "إدارة الوقت",
		"weekNumber": 1,
		"formSchema": []map[string]any{
			{"id": "q1", "type": "text", "label": "سؤال"},
		},
	}
	rec = do(t, s, http.MethodPost, "/api/videos", studentToken, body, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/videos", "", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/videos", instructorToken, body, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// duplicate videoId
	rec = do(t, s, http.MethodPost, "/api/videos", instructorToken, body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var video map[string]any
	rec = do(t, s, http.MethodGet, "/api/videos/1", "", nil, &video)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "إدارة الوقت", video["title"])

	rec = do(t, s, http.MethodGet, "/api/videos/not-a-number", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// partial update keeps absent fields
	rec = do(t, s, http.MethodPut, "/api/videos/1", instructorToken, map[string]any{
		"title": "عنوان جديد",
	}, &video)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "عنوان جديد", video["title"])
	assert.Equal(t, float64(1), video["weekNumber"])

	rec = do(t, s, http.MethodDelete, "/api/videos/1", studentToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/videos/1", instructorToken, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/videos/1", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReflectionFlow(t *testing.T) {
	s := newTestServer(t)
	seedInstructor(t, s)

	studentToken, studentID := register(t, s, "طالب", "student@app.com")
	otherToken, _ := register(t, s, "آخر", "other@app.com")
	instructorToken := login(t, s, "instructor@app.com", "instructor-pw")

	rec := do(t, s, http.MethodPost, "/api/videos", instructorToken, map[string]any{
		"videoId": 1,
		"title":   "إدارة الوقت",
	}, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// first submission creates
	var reflection map[string]any
	rec = do(t, s, http.MethodPost, "/api/reflections", studentToken, map[string]any{
		"videoId":   1,
		"responses": map[string]any{"q1": "جيد", "q2": 4, "q3": true},
	}, &reflection)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "إدارة الوقت", reflection["videoTitle"])

	// resubmission replaces and answers are not merged
	rec = do(t, s, http.MethodPost, "/api/reflections", studentToken, map[string]any{
		"videoId":   1,
		"responses": map[string]any{"q4": "بديل"},
	}, &reflection)
	assert.Equal(t, http.StatusOK, rec.Code)
	responses := reflection["responses"].(map[string]any)
	assert.NotContains(t, responses, "q1")
	assert.Equal(t, "بديل", responses["q4"])

	// non-scalar answers are rejected
	rec = do(t, s, http.MethodPost, "/api/reflections", studentToken, map[string]any{
		"videoId":   1,
		"responses": map[string]any{"q1": map[string]any{"nested": true}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// own answer for one video
	rec = do(t, s, http.MethodGet, "/api/reflections/1", studentToken, nil, &reflection)
	assert.Equal(t, http.StatusOK, rec.Code)

	// another student has no answer for it
	rec = do(t, s, http.MethodGet, "/api/reflections/1", otherToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// own listing
	var own []map[string]any
	rec = do(t, s, http.MethodGet, "/api/reflections", studentToken, nil, &own)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, own, 1)

	// the review listing is instructor-only and populates the account
	rec = do(t, s, http.MethodGet, "/api/reflections/all", studentToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var all []map[string]any
	rec = do(t, s, http.MethodGet, "/api/reflections/all", instructorToken, nil, &all)
	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.Len(t, all, 1) {
		user := all[0]["user"].(map[string]any)
		assert.Equal(t, studentID, user["_id"])
		assert.Equal(t, "طالب", user["name"])
	}

	// filtered review listing
	rec = do(t, s, http.MethodGet, fmt.Sprintf("/api/reflections/all?videoId=1&userId=%s", studentID), instructorToken, nil, &all)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, all, 1)
}

func TestRootBanner(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Study Companion API"))
}
