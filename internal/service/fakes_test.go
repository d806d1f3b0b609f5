package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/study-companion/internal/apperror"
	"github.com/sakif/study-companion/internal/auth"
	"github.com/sakif/study-companion/internal/model"
	"github.com/sakif/study-companion/internal/repository"
)

// In-memory fakes for the repository interfaces, shared by the service
// tests in this package. Fakes (not a mock framework) keep the tests
// dependency-free and readable — what each fake does is right here.

// testLogger returns a logger that only surfaces errors, to keep test
// output quiet.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testTokens returns a TokenService with a fixed test secret.
func testTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// fakeUserRepo
// =========================================================================

type fakeUserRepo struct {
	list []*model.User // insertion order, which doubles as creation order
	seq  int
	// set to a non-nil error to simulate a store failure
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{}
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.list {
		if u.Email == user.Email {
			return apperror.Conflict("البريد الإلكتروني مسجل بالفعل")
		}
	}
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	user.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	copied := *user
	f.list = append(f.list, &copied)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.list {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("المستخدم غير موجود")
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.list {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("المستخدم غير موجود")
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	for i, u := range f.list {
		if u.ID == user.ID {
			copied := *user
			f.list[i] = &copied
			return nil
		}
	}
	return apperror.NotFound("المستخدم غير موجود")
}

func (f *fakeUserRepo) FirstByRole(ctx context.Context, role model.Role) (*model.User, error) {
	for _, u := range f.list {
		if u.Role == role {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("المستخدم غير موجود")
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	users := []model.User{}
	for _, u := range f.list {
		if u.Role == role {
			users = append(users, *u)
		}
	}
	return users, nil
}

// addUser seeds an account directly, bypassing validation.
func (f *fakeUserRepo) addUser(t *testing.T, name, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: email, PasswordHash: "x", Role: role}
	if err := f.Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return u
}

// principalFor builds the Principal the auth middleware would produce for u.
func principalFor(u *model.User) auth.Principal {
	return auth.Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// =========================================================================
// fakeMessageRepo
// =========================================================================

type fakeMessageRepo struct {
	msgs      []*model.Message
	seq       int
	createErr error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

var _ repository.MessageRepository = (*fakeMessageRepo)(nil)

func (f *fakeMessageRepo) Create(ctx context.Context, msg *model.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	msg.ID = fmt.Sprintf("msg-%d", f.seq)
	msg.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	copied := *msg
	f.msgs = append(f.msgs, &copied)
	return nil
}

func (f *fakeMessageRepo) ListBetween(ctx context.Context, userA, userB string) ([]model.Message, error) {
	out := []model.Message{}
	for _, m := range f.msgs {
		if (m.SenderID == userA && m.RecipientID == userB) || (m.SenderID == userB && m.RecipientID == userA) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) ListForUser(ctx context.Context, userID string) ([]model.Message, error) {
	out := []model.Message{}
	for _, m := range f.msgs {
		if m.SenderID == userID || m.RecipientID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

// =========================================================================
// fakeVideoRepo
// =========================================================================

type fakeVideoRepo struct {
	videos map[int]*model.Video
	order  []int
	seq    int
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[int]*model.Video)}
}

var _ repository.VideoRepository = (*fakeVideoRepo)(nil)

func (f *fakeVideoRepo) List(ctx context.Context) ([]model.Video, error) {
	out := []model.Video{}
	for _, id := range f.order {
		out = append(out, *f.videos[id])
	}
	return out, nil
}

func (f *fakeVideoRepo) GetByVideoID(ctx context.Context, videoID int) (*model.Video, error) {
	v, ok := f.videos[videoID]
	if !ok {
		return nil, apperror.NotFound("الفيديو غير موجود")
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVideoRepo) Create(ctx context.Context, video *model.Video) error {
	if _, ok := f.videos[video.VideoID]; ok {
		return apperror.Conflict("الفيديو موجود بالفعل")
	}
	f.seq++
	video.ID = fmt.Sprintf("video-%d", f.seq)
	now := time.Now()
	video.CreatedAt = now
	video.UpdatedAt = now
	copied := *video
	f.videos[video.VideoID] = &copied
	f.order = append(f.order, video.VideoID)
	return nil
}

func (f *fakeVideoRepo) Update(ctx context.Context, video *model.Video) error {
	if _, ok := f.videos[video.VideoID]; !ok {
		return apperror.NotFound("الفيديو غير موجود")
	}
	copied := *video
	f.videos[video.VideoID] = &copied
	return nil
}

func (f *fakeVideoRepo) Delete(ctx context.Context, videoID int) error {
	if _, ok := f.videos[videoID]; !ok {
		return apperror.NotFound("الفيديو غير موجود")
	}
	delete(f.videos, videoID)
	for i, id := range f.order {
		if id == videoID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

// =========================================================================
// fakeReflectionRepo
// =========================================================================

type reflectionKey struct {
	userID  string
	videoID int
}

type fakeReflectionRepo struct {
	byKey map[reflectionKey]*model.VideoReflection
	order []reflectionKey // insertion order (oldest first)
	seq   int
	// summaries for ListAll population, keyed by user ID
	users map[string]model.UserSummary
}

func newFakeReflectionRepo() *fakeReflectionRepo {
	return &fakeReflectionRepo{
		byKey: make(map[reflectionKey]*model.VideoReflection),
		users: make(map[string]model.UserSummary),
	}
}

var _ repository.ReflectionRepository = (*fakeReflectionRepo)(nil)

func (f *fakeReflectionRepo) GetByUserAndVideo(ctx context.Context, userID string, videoID int) (*model.VideoReflection, error) {
	r, ok := f.byKey[reflectionKey{userID, videoID}]
	if !ok {
		return nil, apperror.NotFound("لم يتم العثور على إجابة لهذا الفيديو")
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReflectionRepo) Upsert(ctx context.Context, reflection *model.VideoReflection) error {
	key := reflectionKey{reflection.UserID, reflection.VideoID}
	now := time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	if existing, ok := f.byKey[key]; ok {
		existing.Responses = reflection.Responses
		existing.VideoTitle = reflection.VideoTitle
		existing.UpdatedAt = now
		*reflection = *existing
		return nil
	}
	f.seq++
	reflection.ID = fmt.Sprintf("reflection-%d", f.seq)
	reflection.SubmittedAt = now
	reflection.UpdatedAt = now
	copied := *reflection
	f.byKey[key] = &copied
	f.order = append(f.order, key)
	return nil
}

func (f *fakeReflectionRepo) ListByUser(ctx context.Context, userID string, videoID *int) ([]model.VideoReflection, error) {
	out := []model.VideoReflection{}
	// newest first
	for i := len(f.order) - 1; i >= 0; i-- {
		key := f.order[i]
		if key.userID != userID {
			continue
		}
		if videoID != nil && key.videoID != *videoID {
			continue
		}
		out = append(out, *f.byKey[key])
	}
	return out, nil
}

func (f *fakeReflectionRepo) ListAll(ctx context.Context, filter repository.ReflectionFilter) ([]model.ReflectionWithUser, error) {
	out := []model.ReflectionWithUser{}
	for i := len(f.order) - 1; i >= 0; i-- {
		key := f.order[i]
		if filter.VideoID != nil && key.videoID != *filter.VideoID {
			continue
		}
		if filter.UserID != "" && key.userID != filter.UserID {
			continue
		}
		out = append(out, model.ReflectionWithUser{
			VideoReflection: *f.byKey[key],
			User:            f.users[key.userID],
		})
	}
	return out, nil
}
