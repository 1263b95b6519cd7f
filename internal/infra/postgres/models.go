package postgres

import (
	"time"

	"github.com/uptrace/bun"
	"learning-service/internal/domain"
)

// bun row models for the catalog tables written by the seeding pipeline.

type moduleRow struct {
	bun.BaseModel `bun:"table:modules"`

	ID                int64     `bun:"id,pk,autoincrement"`
	Title             string    `bun:"title,notnull"`
	Description       string    `bun:"description,notnull"`
	Order             int       `bun:"order,notnull"`
	CharacterVideoURL string    `bun:"character_video_url,nullzero"`
	Overview          string    `bun:"overview,nullzero"`
	Objectives        []string  `bun:"objectives,array"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type resourceRow struct {
	bun.BaseModel `bun:"table:resources"`

	ID        int64     `bun:"id,pk,autoincrement"`
	ModuleID  int64     `bun:"module_id,notnull"`
	Type      string    `bun:"type,notnull"`
	Title     string    `bun:"title,notnull"`
	Order     int       `bun:"order,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type videoRow struct {
	bun.BaseModel `bun:"table:videos"`

	ID           int64             `bun:"id,pk,autoincrement"`
	ResourceID   int64             `bun:"resource_id,notnull"`
	VideoURL     string            `bun:"video_url,notnull"`
	Duration     string            `bun:"duration,nullzero"`
	ThumbnailURL string            `bun:"thumbnail_url,nullzero"`
	Subtitles    []domain.Subtitle `bun:"subtitles,type:jsonb"`
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID                  int64 `bun:"id,pk,autoincrement"`
	ResourceID          int64 `bun:"resource_id,notnull"`
	PassingScore        int   `bun:"passing_score,notnull"`
	QuestionsPerAttempt int   `bun:"questions_per_attempt,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:quiz_questions"`

	ID                   int64    `bun:"id,pk,autoincrement"`
	QuizID               int64    `bun:"quiz_id,notnull"`
	Question             string   `bun:"question,notnull"`
	Options              []string `bun:"options,array"`
	CorrectAnswer        int      `bun:"correct_answer,notnull"`
	Hint                 string   `bun:"hint,nullzero"`
	CorrectExplanation   string   `bun:"correct_explanation,nullzero"`
	IncorrectExplanation string   `bun:"incorrect_explanation,nullzero"`
}

type flashcardRow struct {
	bun.BaseModel `bun:"table:flashcards"`

	ID         int64  `bun:"id,pk,autoincrement"`
	ResourceID int64  `bun:"resource_id,notnull"`
	Question   string `bun:"question,notnull"`
	Answer     string `bun:"answer,notnull"`
	Order      int    `bun:"order,notnull"`
}

type slidesRow struct {
	bun.BaseModel `bun:"table:slides"`

	ID         int64  `bun:"id,pk,autoincrement"`
	ResourceID int64  `bun:"resource_id,notnull"`
	PDFURL     string `bun:"pdf_url,notnull"`
	PageCount  *int   `bun:"page_count"`
}

type infographicRow struct {
	bun.BaseModel `bun:"table:infographics"`

	ID           int64  `bun:"id,pk,autoincrement"`
	ResourceID   int64  `bun:"resource_id,notnull"`
	ImageURL     string `bun:"image_url,notnull"`
	ThumbnailURL string `bun:"thumbnail_url,nullzero"`
	Order        int    `bun:"order,notnull"`
}

type reportRow struct {
	bun.BaseModel `bun:"table:reports"`

	ID         int64  `bun:"id,pk,autoincrement"`
	ResourceID int64  `bun:"resource_id,notnull"`
	Content    string `bun:"content,notnull"`
	Order      int    `bun:"order,notnull"`
}

type audioRow struct {
	bun.BaseModel `bun:"table:audio_files"`

	ID         int64             `bun:"id,pk,autoincrement"`
	ResourceID int64             `bun:"resource_id,notnull"`
	AudioURL   string            `bun:"audio_url,notnull"`
	Duration   string            `bun:"duration,nullzero"`
	Subtitles  []domain.Subtitle `bun:"subtitles,type:jsonb"`
	Order      int               `bun:"order,notnull"`
}

type gameRow struct {
	bun.BaseModel `bun:"table:games"`

	ID         int64         `bun:"id,pk,autoincrement"`
	ResourceID int64         `bun:"resource_id,notnull"`
	GridSize   int           `bun:"grid_size,notnull"`
	Clues      []domain.Clue `bun:"clues,type:jsonb"`
}
