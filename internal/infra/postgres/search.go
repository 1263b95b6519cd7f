package postgres

import (
	"context"
	"fmt"

	"learning-service/internal/domain"
)

func (s *Store) SearchContent(ctx context.Context, moduleID int64, query string, limit int) ([]domain.SearchMatch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT sc.id, sc.module_id, sc.resource_id, sc.content_type::text, sc.content_text, sc."timestamp", sc.created_at,
		       r.title, r.type::text
		FROM searchable_content sc
		JOIN resources r ON r.id = sc.resource_id
		WHERE sc.module_id = $1 AND sc.content_text ILIKE $2
		ORDER BY sc.id
		LIMIT $3`, moduleID, containsPattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search content: %w", err)
	}
	defer rows.Close()

	matches := []domain.SearchMatch{}
	for rows.Next() {
		var (
			m            domain.SearchMatch
			contentType  string
			resourceType string
		)
		if err := rows.Scan(&m.Content.ID, &m.Content.ModuleID, &m.Content.ResourceID, &contentType,
			&m.Content.ContentText, &m.Content.Timestamp, &m.Content.CreatedAt, &m.ResourceTitle, &resourceType); err != nil {
			return nil, fmt.Errorf("scan search match: %w", err)
		}
		m.Content.ContentType = domain.ContentType(contentType)
		m.ResourceType = domain.ResourceType(resourceType)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Store) InsertContent(ctx context.Context, c domain.SearchableContent) (domain.SearchableContent, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO searchable_content (module_id, resource_id, content_type, content_text, "timestamp")
		VALUES ($1, $2, $3::content_type, $4, $5)
		RETURNING id, created_at`,
		c.ModuleID, c.ResourceID, string(c.ContentType), c.ContentText, c.Timestamp).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.SearchableContent{}, fmt.Errorf("%w: module %d or resource %d", domain.ErrNotFound, c.ModuleID, c.ResourceID)
		}
		return domain.SearchableContent{}, fmt.Errorf("insert content: %w", err)
	}
	return c, nil
}

func (s *Store) DeleteModuleContent(ctx context.Context, moduleID int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM searchable_content WHERE module_id = $1`, moduleID)
	if err != nil {
		return 0, fmt.Errorf("delete content: %w", err)
	}
	return tag.RowsAffected(), nil
}
