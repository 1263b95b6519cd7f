package app

import (
	"context"
	"fmt"
	"time"

	"learning-service/internal/domain"
)

// ProgressService tracks module completion per learner.
type ProgressService struct {
	store ProgressStore
	now   func() time.Time
}

func NewProgressService(store ProgressStore) *ProgressService {
	return &ProgressService{store: store, now: time.Now}
}

// GetProgress summarizes completed modules against the module total.
func (s *ProgressService) GetProgress(ctx context.Context, userID int64) (domain.ProgressSummary, error) {
	completed, err := s.store.CompletedModuleIDs(ctx, userID)
	if err != nil {
		return domain.ProgressSummary{}, fmt.Errorf("completed modules: %w", err)
	}
	total, err := s.store.CountModules(ctx)
	if err != nil {
		return domain.ProgressSummary{}, fmt.Errorf("count modules: %w", err)
	}
	if completed == nil {
		completed = []int64{}
	}
	return domain.ProgressSummary{
		TotalModules:     total,
		CompletedCount:   len(completed),
		Progress:         percent(len(completed), total),
		CompletedModules: completed,
	}, nil
}

// MarkComplete records the module as completed. It is idempotent and reports true only
// for the call that moved the row to completed.
func (s *ProgressService) MarkComplete(ctx context.Context, userID, moduleID int64) (bool, error) {
	newly, err := s.store.MarkComplete(ctx, userID, moduleID, s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark module %d complete: %w", moduleID, err)
	}
	return newly, nil
}

func (s *ProgressService) IsCompleted(ctx context.Context, userID, moduleID int64) (bool, error) {
	return s.store.IsCompleted(ctx, userID, moduleID)
}
