package app

import (
	"context"
	"fmt"

	"learning-service/internal/domain"
)

// CatalogService serves the read-only course content.
type CatalogService struct {
	store    CatalogStore
	progress *ProgressService
}

func NewCatalogService(store CatalogStore, progress *ProgressService) *CatalogService {
	return &CatalogService{store: store, progress: progress}
}

// ListModules returns all modules ordered by position, flagged with the user's completion.
func (s *CatalogService) ListModules(ctx context.Context, userID int64) ([]domain.ModuleSummary, error) {
	modules, err := s.store.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	summary, err := s.progress.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	done := make(map[int64]struct{}, len(summary.CompletedModules))
	for _, id := range summary.CompletedModules {
		done[id] = struct{}{}
	}

	out := make([]domain.ModuleSummary, 0, len(modules))
	for _, m := range modules {
		_, completed := done[m.ID]
		out = append(out, domain.ModuleSummary{Module: m, Completed: completed})
	}
	return out, nil
}

// GetModule returns the module with its resources.
func (s *CatalogService) GetModule(ctx context.Context, id int64) (domain.ModuleDetail, error) {
	module, err := s.store.GetModule(ctx, id)
	if err != nil {
		return domain.ModuleDetail{}, err
	}
	resources, err := s.store.ListResources(ctx, id)
	if err != nil {
		return domain.ModuleDetail{}, fmt.Errorf("list resources: %w", err)
	}
	if resources == nil {
		resources = []domain.Resource{}
	}
	return domain.ModuleDetail{Module: module, Resources: resources}, nil
}

func (s *CatalogService) Video(ctx context.Context, resourceID int64) (domain.Video, error) {
	return s.store.GetVideo(ctx, resourceID)
}

func (s *CatalogService) Quiz(ctx context.Context, resourceID int64) (domain.Quiz, error) {
	return s.store.GetQuizByResource(ctx, resourceID)
}

func (s *CatalogService) Flashcards(ctx context.Context, resourceID int64) ([]domain.Flashcard, error) {
	return nonNil(s.store.ListFlashcards(ctx, resourceID))
}

func (s *CatalogService) Slides(ctx context.Context, resourceID int64) (domain.Slides, error) {
	return s.store.GetSlides(ctx, resourceID)
}

func (s *CatalogService) Infographics(ctx context.Context, resourceID int64) ([]domain.Infographic, error) {
	return nonNil(s.store.ListInfographics(ctx, resourceID))
}

func (s *CatalogService) Reports(ctx context.Context, resourceID int64) ([]domain.Report, error) {
	return nonNil(s.store.ListReports(ctx, resourceID))
}

func (s *CatalogService) Audio(ctx context.Context, resourceID int64) ([]domain.AudioFile, error) {
	return nonNil(s.store.ListAudio(ctx, resourceID))
}

func (s *CatalogService) Game(ctx context.Context, resourceID int64) (domain.Game, error) {
	return s.store.GetGame(ctx, resourceID)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []T{}, nil
	}
	return items, nil
}
