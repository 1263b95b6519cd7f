package app

import (
	"context"
	"time"

	"learning-service/internal/domain"
)

// QuizStore persists quizzes and their attempts.
type QuizStore interface {
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	// ModuleIDForQuiz resolves quiz -> resource -> module.
	ModuleIDForQuiz(ctx context.Context, quizID int64) (int64, error)
	CreateAttempt(ctx context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error)
	ListAttempts(ctx context.Context, userID, quizID int64) ([]domain.QuizAttempt, error)
}

// QuestionLoader fetches the full question bank of a quiz from the backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, quizID int64) ([]domain.Question, error)
}

// QuestionBank serves question banks, usually from a cache in front of a QuestionLoader.
type QuestionBank interface {
	Questions(ctx context.Context, quizID int64) ([]domain.Question, error)
}

// ProgressStore persists per (user, module) completion rows.
type ProgressStore interface {
	// MarkComplete upserts a completed row stamped at and reports whether this call
	// performed the transition to completed.
	MarkComplete(ctx context.Context, userID, moduleID int64, at time.Time) (bool, error)
	IsCompleted(ctx context.Context, userID, moduleID int64) (bool, error)
	CompletedModuleIDs(ctx context.Context, userID int64) ([]int64, error)
	CountModules(ctx context.Context) (int, error)
}

// UserStore persists learners.
type UserStore interface {
	// FindOrCreateUser returns the user named lastName, creating it with zero tokens.
	FindOrCreateUser(ctx context.Context, lastName string) (domain.User, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	// IncrementKnowledgeTokens atomically adds n and returns the new balance.
	IncrementKnowledgeTokens(ctx context.Context, userID int64, n int) (int, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// SearchStore persists and queries the module content index.
type SearchStore interface {
	// SearchContent returns fragments of the module whose text contains query,
	// case-insensitively, joined with their resource.
	SearchContent(ctx context.Context, moduleID int64, query string, limit int) ([]domain.SearchMatch, error)
	InsertContent(ctx context.Context, content domain.SearchableContent) (domain.SearchableContent, error)
	DeleteModuleContent(ctx context.Context, moduleID int64) (int64, error)
}

// CatalogStore reads modules, resources and their typed payloads.
type CatalogStore interface {
	ListModules(ctx context.Context) ([]domain.Module, error)
	GetModule(ctx context.Context, id int64) (domain.Module, error)
	ListResources(ctx context.Context, moduleID int64) ([]domain.Resource, error)
	GetVideo(ctx context.Context, resourceID int64) (domain.Video, error)
	GetQuizByResource(ctx context.Context, resourceID int64) (domain.Quiz, error)
	ListFlashcards(ctx context.Context, resourceID int64) ([]domain.Flashcard, error)
	GetSlides(ctx context.Context, resourceID int64) (domain.Slides, error)
	ListInfographics(ctx context.Context, resourceID int64) ([]domain.Infographic, error)
	ListReports(ctx context.Context, resourceID int64) ([]domain.Report, error)
	ListAudio(ctx context.Context, resourceID int64) ([]domain.AudioFile, error)
	GetGame(ctx context.Context, resourceID int64) (domain.Game, error)
}
