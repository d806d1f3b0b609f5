// Package main seeds the database with the instructor account and the video
// catalog. Safe to run repeatedly: the instructor is skipped if the email
// already exists, and videos are upserted by their integer identity.
//
// Usage:
//
//	DB_PATH=data/study.db SEED_INSTRUCTOR_PASSWORD=... go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/sakif/study-companion/internal/apperror"
	"github.com/sakif/study-companion/internal/auth"
	"github.com/sakif/study-companion/internal/model"
	sqliteRepo "github.com/sakif/study-companion/internal/repository/sqlite"
	"github.com/sakif/study-companion/internal/service"
)

const instructorEmail = "instructor@app.com"

// videoCatalog is the week-by-week program content, including each video's
// reflection form schema.
var videoCatalog = []model.Video{
	{
		VideoID:     1,
		WeekNumber:  1,
		Title:       "الأسبوع 1: مقدمة في فهم القلق",
		Description: "تعرف على آليات القلق ولماذا نشعر به وكيف يؤثر على أدائنا الدراسي.",
		VideoURL:    "https://drive.google.com/file/d/1x45h7daH5Ud142WLG2gDAK0VUoCprtu1/preview",
		Thumbnail:   "https://images.unsplash.com/photo-1470252649378-9c29740c9fa8?q=80&w=600&auto=format&fit=crop",
		FormSchema: []model.FormField{
			{
				ID:       "q_mood_before",
				Type:     model.FieldScale,
				Label:    "كيف تشعر الآن قبل مشاهدة الفيديو؟",
				Min:      1,
				Max:      10,
				MinLabel: "توتر شديد",
				MaxLabel: "هدوء تام",
			},
			{
				ID:          "q_key_takeaway",
				Type:        model.FieldText,
				Label:       "ما هي أهم فكرة تعلمتها من الفيديو؟",
				Placeholder: "اكتب إجابتك هنا...",
			},
			{
				ID:          "q_apply",
				Type:        model.FieldTextarea,
				Label:       "كيف يمكنك تطبيق ما تعلمته في دراستك هذا الأسبوع؟",
				Placeholder: "مشاركتك تساعدنا في دعمك...",
			},
		},
	},
	{
		VideoID:     2,
		WeekNumber:  2,
		Title:       "الأسبوع 2: تقنيات التنفس والاسترخاء",
		Description: "تمارين عملية لتهدئة الأعصاب قبل وأثناء الامتحان.",
		VideoURL:    "https://drive.google.com/file/d/1x45h7daH5Ud142WLG2gDAK0VUoCprtu1/preview",
		Thumbnail:   "https://images.unsplash.com/photo-1506126613408-eca07ce68773?q=80&w=600&auto=format&fit=crop",
		FormSchema: []model.FormField{
			{
				ID:    "q_practice",
				Type:  model.FieldRadio,
				Label: "هل قمت بتجربة تمرين التنفس أثناء الفيديو؟",
				Options: []model.FormOption{
					{Value: "yes", Label: "نعم"},
					{Value: "no", Label: "لا"},
				},
			},
			{
				ID:          "q_feeling_after",
				Type:        model.FieldText,
				Label:       "صف شعورك بكلمة واحدة بعد التمرين.",
				Placeholder: "مثال: أهدأ، مسترخي...",
			},
		},
	},
	{
		VideoID:     3,
		WeekNumber:  3,
		Title:       "الأسبوع 3: إدارة الوقت والتخطيط",
		Description: "استراتيجيات عملية لتنظيم وقتك وتحديد الأولويات.",
		VideoURL:    "https://drive.google.com/file/d/1x45h7daH5Ud142WLG2gDAK0VUoCprtu1/preview",
		Thumbnail:   "https://images.unsplash.com/photo-1506126613408-eca07ce68773?q=80&w=600&auto=format&fit=crop",
		FormSchema: []model.FormField{
			{
				ID:    "q_practice",
				Type:  model.FieldRadio,
				Label: "هل قمت بتجربة تمرين التنفس أثناء الفيديو؟",
				Options: []model.FormOption{
					{Value: "yes", Label: "نعم"},
					{Value: "no", Label: "لا"},
				},
			},
			{
				ID:          "q_feeling_after",
				Type:        model.FieldText,
				Label:       "صف شعورك بكلمة واحدة بعد التمرين.",
				Placeholder: "مثال: أهدأ، مسترخي...",
			},
		},
	},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	dbPath := "data/study.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	db, err := sqliteRepo.New(dbPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	if err := seedInstructor(ctx, sqliteRepo.NewUserRepo(db), logger); err != nil {
		logger.Error("failed to seed instructor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := seedVideos(ctx, sqliteRepo.NewVideoRepo(db), logger); err != nil {
		logger.Error("failed to seed videos", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// seedInstructor creates the instructor account unless it already exists.
func seedInstructor(ctx context.Context, users *sqliteRepo.UserRepo, logger *slog.Logger) error {
	if _, err := users.GetByEmail(ctx, instructorEmail); err == nil {
		logger.Info("instructor account already exists", slog.String("email", instructorEmail))
		return nil
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	password := os.Getenv("SEED_INSTRUCTOR_PASSWORD")
	if password == "" {
		password = "password123"
	}

	hash, err := auth.NewPasswordService().Hash(password)
	if err != nil {
		return err
	}

	instructor := &model.User{
		Name:         "المشرف الأكاديمي",
		Email:        instructorEmail,
		PasswordHash: hash,
		Role:         model.RoleInstructor,
		Profile: model.Profile{
			Age:    35,
			Gender: "male",
			State:  "الجزائر",
			Branch: "علم النفس",
		},
	}

	if err := users.Create(ctx, instructor); err != nil {
		return err
	}

	logger.Info("instructor account created",
		slog.String("userID", instructor.ID),
		slog.String("email", instructorEmail),
	)
	return nil
}

// seedVideos upserts the catalog by videoId: existing entries are updated
// in place, missing ones are created.
func seedVideos(ctx context.Context, repo *sqliteRepo.VideoRepo, logger *slog.Logger) error {
	videos := service.NewVideoService(repo, logger)

	for _, v := range videoCatalog {
		video := v
		_, err := repo.GetByVideoID(ctx, video.VideoID)
		switch {
		case err == nil:
			_, err = videos.Update(ctx, video.VideoID, service.VideoUpdate{
				Title:       video.Title,
				Description: video.Description,
				VideoURL:    video.VideoURL,
				Thumbnail:   video.Thumbnail,
				WeekNumber:  video.WeekNumber,
				FormSchema:  video.FormSchema,
			})
		case errors.Is(err, apperror.ErrNotFound):
			_, err = videos.Create(ctx, &video)
		}
		if err != nil {
			return err
		}
		logger.Info("video seeded", slog.Int("videoID", video.VideoID), slog.String("title", video.Title))
	}

	return nil
}
