package app

import (
	"context"
	"fmt"
	"strings"

	"learning-service/internal/domain"
)

const (
	DefaultSearchLimit   = 50
	DefaultContextLength = 100
)

// SearchService searches indexed module content and maintains the index.
type SearchService struct {
	store         SearchStore
	limit         int
	contextLength int
}

// NewSearchService builds a search service; non-positive limits fall back to the defaults.
func NewSearchService(store SearchStore, limit, contextLength int) *SearchService {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if contextLength <= 0 {
		contextLength = DefaultContextLength
	}
	return &SearchService{store: store, limit: limit, contextLength: contextLength}
}

// SearchInModule returns the fragments of the module containing query, each with a snippet.
// A blank query yields an empty result.
func (s *SearchService) SearchInModule(ctx context.Context, moduleID int64, query string) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.SearchResult{}, nil
	}

	matches, err := s.store.SearchContent(ctx, moduleID, query, s.limit)
	if err != nil {
		return nil, fmt.Errorf("search module %d: %w", moduleID, err)
	}

	results := make([]domain.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, domain.SearchResult{
			ID:            m.Content.ID,
			ResourceID:    m.Content.ResourceID,
			ResourceTitle: m.ResourceTitle,
			ResourceType:  m.ResourceType,
			ContentType:   m.Content.ContentType,
			MatchedText:   ExtractSnippet(m.Content.ContentText, query, s.contextLength),
			Timestamp:     m.Content.Timestamp,
		})
	}
	return results, nil
}

// IndexContent appends a searchable fragment to the module index.
func (s *SearchService) IndexContent(ctx context.Context, moduleID, resourceID int64, contentType domain.ContentType, text string, timestamp *int) error {
	switch contentType {
	case domain.ContentReport, domain.ContentVideoSubtitle, domain.ContentAudioSubtitle:
	default:
		return fmt.Errorf("%w: unknown content type %q", domain.ErrInvalidInput, contentType)
	}
	_, err := s.store.InsertContent(ctx, domain.SearchableContent{
		ModuleID:    moduleID,
		ResourceID:  resourceID,
		ContentType: contentType,
		ContentText: text,
		Timestamp:   timestamp,
	})
	if err != nil {
		return fmt.Errorf("index content: %w", err)
	}
	return nil
}

// DeleteModuleIndex removes every fragment of the module and returns how many were removed.
func (s *SearchService) DeleteModuleIndex(ctx context.Context, moduleID int64) (int64, error) {
	n, err := s.store.DeleteModuleContent(ctx, moduleID)
	if err != nil {
		return 0, fmt.Errorf("delete module %d index: %w", moduleID, err)
	}
	return n, nil
}
