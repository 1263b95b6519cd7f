package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"learning-service/internal/domain"
)

const moduleColumns = `id, title, description, "order", COALESCE(character_video_url, ''),
	COALESCE(overview, ''), objectives, created_at, updated_at`

func scanModule(row pgx.Row, m *domain.Module) error {
	return row.Scan(&m.ID, &m.Title, &m.Description, &m.Order, &m.CharacterVideoURL,
		&m.Overview, &m.Objectives, &m.CreatedAt, &m.UpdatedAt)
}

func (s *Store) ListModules(ctx context.Context) ([]domain.Module, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY "order"`)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	modules := []domain.Module{}
	for rows.Next() {
		var m domain.Module
		if err := scanModule(rows, &m); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

func (s *Store) GetModule(ctx context.Context, id int64) (domain.Module, error) {
	var m domain.Module
	if err := scanModule(s.pool.QueryRow(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id), &m); err != nil {
		return domain.Module{}, wrapNoRows(err, "module", id)
	}
	return m, nil
}

func (s *Store) ListResources(ctx context.Context, moduleID int64) ([]domain.Resource, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, module_id, type::text, title, "order", created_at
		FROM resources WHERE module_id = $1 ORDER BY "order", id`, moduleID)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	resources := []domain.Resource{}
	for rows.Next() {
		var (
			r   domain.Resource
			typ string
		)
		if err := rows.Scan(&r.ID, &r.ModuleID, &typ, &r.Title, &r.Order, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		r.Type = domain.ResourceType(typ)
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

func (s *Store) GetVideo(ctx context.Context, resourceID int64) (domain.Video, error) {
	var (
		v    domain.Video
		subs []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, resource_id, video_url, COALESCE(duration, ''), COALESCE(thumbnail_url, ''), subtitles
		FROM videos WHERE resource_id = $1 ORDER BY id LIMIT 1`, resourceID).
		Scan(&v.ID, &v.ResourceID, &v.VideoURL, &v.Duration, &v.ThumbnailURL, &subs)
	if err != nil {
		return domain.Video{}, wrapNoRows(err, "video for resource", resourceID)
	}
	if err := json.Unmarshal(subs, &v.Subtitles); err != nil {
		return domain.Video{}, fmt.Errorf("decode subtitles: %w", err)
	}
	return v, nil
}

func (s *Store) GetQuizByResource(ctx context.Context, resourceID int64) (domain.Quiz, error) {
	var q domain.Quiz
	err := s.pool.QueryRow(ctx, `
		SELECT id, resource_id, passing_score, questions_per_attempt, created_at
		FROM quizzes WHERE resource_id = $1`, resourceID).
		Scan(&q.ID, &q.ResourceID, &q.PassingScore, &q.QuestionsPerAttempt, &q.CreatedAt)
	if err != nil {
		return domain.Quiz{}, wrapNoRows(err, "quiz for resource", resourceID)
	}
	return q, nil
}

func (s *Store) ListFlashcards(ctx context.Context, resourceID int64) ([]domain.Flashcard, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, resource_id, question, answer, "order"
		FROM flashcards WHERE resource_id = $1 ORDER BY "order", id`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}
	defer rows.Close()

	cards := []domain.Flashcard{}
	for rows.Next() {
		var c domain.Flashcard
		if err := rows.Scan(&c.ID, &c.ResourceID, &c.Question, &c.Answer, &c.Order); err != nil {
			return nil, fmt.Errorf("scan flashcard: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (s *Store) GetSlides(ctx context.Context, resourceID int64) (domain.Slides, error) {
	var sl domain.Slides
	err := s.pool.QueryRow(ctx, `
		SELECT id, resource_id, pdf_url, page_count
		FROM slides WHERE resource_id = $1 ORDER BY id LIMIT 1`, resourceID).
		Scan(&sl.ID, &sl.ResourceID, &sl.PDFURL, &sl.PageCount)
	if err != nil {
		return domain.Slides{}, wrapNoRows(err, "slides for resource", resourceID)
	}
	return sl, nil
}

func (s *Store) ListInfographics(ctx context.Context, resourceID int64) ([]domain.Infographic, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, resource_id, image_url, COALESCE(thumbnail_url, ''), "order"
		FROM infographics WHERE resource_id = $1 ORDER BY "order", id`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list infographics: %w", err)
	}
	defer rows.Close()

	items := []domain.Infographic{}
	for rows.Next() {
		var g domain.Infographic
		if err := rows.Scan(&g.ID, &g.ResourceID, &g.ImageURL, &g.ThumbnailURL, &g.Order); err != nil {
			return nil, fmt.Errorf("scan infographic: %w", err)
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

func (s *Store) ListReports(ctx context.Context, resourceID int64) ([]domain.Report, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, resource_id, content, "order"
		FROM reports WHERE resource_id = $1 ORDER BY "order", id`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []domain.Report{}
	for rows.Next() {
		var r domain.Report
		if err := rows.Scan(&r.ID, &r.ResourceID, &r.Content, &r.Order); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *Store) ListAudio(ctx context.Context, resourceID int64) ([]domain.AudioFile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, resource_id, audio_url, COALESCE(duration, ''), subtitles, "order"
		FROM audio_files WHERE resource_id = $1 ORDER BY "order", id`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list audio: %w", err)
	}
	defer rows.Close()

	files := []domain.AudioFile{}
	for rows.Next() {
		var (
			a    domain.AudioFile
			subs []byte
		)
		if err := rows.Scan(&a.ID, &a.ResourceID, &a.AudioURL, &a.Duration, &subs, &a.Order); err != nil {
			return nil, fmt.Errorf("scan audio: %w", err)
		}
		if err := json.Unmarshal(subs, &a.Subtitles); err != nil {
			return nil, fmt.Errorf("decode subtitles: %w", err)
		}
		files = append(files, a)
	}
	return files, rows.Err()
}

func (s *Store) GetGame(ctx context.Context, resourceID int64) (domain.Game, error) {
	var (
		g     domain.Game
		clues []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, resource_id, grid_size, clues
		FROM games WHERE resource_id = $1 ORDER BY id LIMIT 1`, resourceID).
		Scan(&g.ID, &g.ResourceID, &g.GridSize, &clues)
	if err != nil {
		return domain.Game{}, wrapNoRows(err, "game for resource", resourceID)
	}
	if err := json.Unmarshal(clues, &g.Clues); err != nil {
		return domain.Game{}, fmt.Errorf("decode clues: %w", err)
	}
	return g, nil
}
