package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"learning-service/internal/domain"
)

// OpenBun opens a bun handle over pgdriver for migrations and catalog writes.
func OpenBun(url string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// CatalogWriter inserts and removes whole modules for the seeding pipeline.
type CatalogWriter struct {
	db *bun.DB
}

func NewCatalogWriter(db *bun.DB) *CatalogWriter {
	return &CatalogWriter{db: db}
}

// ModuleIDByOrder reports the module occupying the given position, if any.
func (w *CatalogWriter) ModuleIDByOrder(ctx context.Context, order int) (int64, bool, error) {
	var id int64
	err := w.db.NewSelect().
		Model((*moduleRow)(nil)).
		Column("id").
		Where(`"order" = ?`, order).
		Limit(1).
		Scan(ctx, &id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find module by order %d: %w", order, err)
	}
	return id, true, nil
}

// DeleteModule removes a module; the schema cascades to resources, payloads, progress and index rows.
func (w *CatalogWriter) DeleteModule(ctx context.Context, id int64) error {
	res, err := w.db.NewDelete().Model((*moduleRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete module %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: module %d", domain.ErrNotFound, id)
	}
	return nil
}

// InsertModule writes the bundle in one transaction. Resource positions follow the
// bundle's field order.
func (w *CatalogWriter) InsertModule(ctx context.Context, b domain.ModuleBundle) (domain.SeededModule, error) {
	var seeded domain.SeededModule
	err := w.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		seeded, err = insertModule(ctx, tx, b)
		return err
	})
	if err != nil {
		return domain.SeededModule{}, err
	}
	return seeded, nil
}

// ReplaceModule drops module id with its index rows and inserts the bundle in the same
// transaction, so a failed insert keeps the old module.
func (w *CatalogWriter) ReplaceModule(ctx context.Context, id int64, b domain.ModuleBundle) (domain.SeededModule, error) {
	var seeded domain.SeededModule
	err := w.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().TableExpr("searchable_content").Where("module_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete module %d index: %w", id, err)
		}
		res, err := tx.NewDelete().Model((*moduleRow)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete module %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: module %d", domain.ErrNotFound, id)
		}
		seeded, err = insertModule(ctx, tx, b)
		return err
	})
	if err != nil {
		return domain.SeededModule{}, err
	}
	return seeded, nil
}

func insertModule(ctx context.Context, tx bun.Tx, b domain.ModuleBundle) (domain.SeededModule, error) {
	module := &moduleRow{
		Title:             b.Module.Title,
		Description:       b.Module.Description,
		Order:             b.Module.Order,
		CharacterVideoURL: b.Module.CharacterVideoURL,
		Overview:          b.Module.Overview,
		Objectives:        b.Module.Objectives,
	}
	if module.Objectives == nil {
		module.Objectives = []string{}
	}
	if _, err := tx.NewInsert().Model(module).Returning("*").Exec(ctx); err != nil {
		return domain.SeededModule{}, fmt.Errorf("insert module: %w", err)
	}

	seeded := domain.SeededModule{ModuleID: module.ID}
	ins := &bundleInserter{tx: tx, moduleID: module.ID, seeded: &seeded}
	if err := ins.insertAll(ctx, b); err != nil {
		return domain.SeededModule{}, err
	}
	return seeded, nil
}

type bundleInserter struct {
	tx       bun.Tx
	moduleID int64
	order    int
	seeded   *domain.SeededModule
}

func (i *bundleInserter) resource(ctx context.Context, t domain.ResourceType, title string) (int64, error) {
	i.order++
	row := &resourceRow{ModuleID: i.moduleID, Type: string(t), Title: title, Order: i.order}
	if _, err := i.tx.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		return 0, fmt.Errorf("insert %s resource: %w", t, err)
	}
	i.seeded.Resources = append(i.seeded.Resources, domain.Resource{
		ID: row.ID, ModuleID: row.ModuleID, Type: t, Title: row.Title, Order: row.Order, CreatedAt: row.CreatedAt,
	})
	return row.ID, nil
}

func (i *bundleInserter) insert(ctx context.Context, kind string, model interface{}) error {
	if _, err := i.tx.NewInsert().Model(model).Exec(ctx); err != nil {
		return fmt.Errorf("insert %s: %w", kind, err)
	}
	return nil
}

func (i *bundleInserter) insertAll(ctx context.Context, b domain.ModuleBundle) error {
	for _, tv := range b.Videos {
		rid, err := i.resource(ctx, domain.ResourceVideo, tv.Title)
		if err != nil {
			return err
		}
		subs := tv.Video.Subtitles
		if subs == nil {
			subs = []domain.Subtitle{}
		}
		if err := i.insert(ctx, "video", &videoRow{
			ResourceID: rid, VideoURL: tv.Video.VideoURL, Duration: tv.Video.Duration,
			ThumbnailURL: tv.Video.ThumbnailURL, Subtitles: subs,
		}); err != nil {
			return err
		}
		i.seeded.VideoResources = append(i.seeded.VideoResources, rid)
	}

	if b.Quiz != nil {
		rid, err := i.resource(ctx, domain.ResourceQuiz, domain.TitleQuiz)
		if err != nil {
			return err
		}
		quiz := &quizRow{ResourceID: rid, PassingScore: b.Quiz.Quiz.PassingScore, QuestionsPerAttempt: b.Quiz.Quiz.QuestionsPerAttempt}
		if _, err := i.tx.NewInsert().Model(quiz).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		if len(b.Quiz.Questions) > 0 {
			rows := make([]questionRow, 0, len(b.Quiz.Questions))
			for _, q := range b.Quiz.Questions {
				rows = append(rows, questionRow{
					QuizID: quiz.ID, Question: q.Question, Options: q.Options, CorrectAnswer: q.CorrectAnswer,
					Hint: q.Hint, CorrectExplanation: q.CorrectExplanation, IncorrectExplanation: q.IncorrectExplanation,
				})
			}
			if err := i.insert(ctx, "quiz questions", &rows); err != nil {
				return err
			}
		}
	}

	if len(b.Flashcards) > 0 {
		rid, err := i.resource(ctx, domain.ResourceFlashcard, domain.TitleFlashcards)
		if err != nil {
			return err
		}
		rows := make([]flashcardRow, 0, len(b.Flashcards))
		for _, c := range b.Flashcards {
			rows = append(rows, flashcardRow{ResourceID: rid, Question: c.Question, Answer: c.Answer, Order: c.Order})
		}
		if err := i.insert(ctx, "flashcards", &rows); err != nil {
			return err
		}
	}

	if b.Slides != nil {
		rid, err := i.resource(ctx, domain.ResourceSlides, domain.TitleSlides)
		if err != nil {
			return err
		}
		if err := i.insert(ctx, "slides", &slidesRow{ResourceID: rid, PDFURL: b.Slides.PDFURL, PageCount: b.Slides.PageCount}); err != nil {
			return err
		}
	}

	if len(b.Infographics) > 0 {
		rid, err := i.resource(ctx, domain.ResourceInfographics, domain.TitleInfographics)
		if err != nil {
			return err
		}
		rows := make([]infographicRow, 0, len(b.Infographics))
		for _, g := range b.Infographics {
			rows = append(rows, infographicRow{ResourceID: rid, ImageURL: g.ImageURL, ThumbnailURL: g.ThumbnailURL, Order: g.Order})
		}
		if err := i.insert(ctx, "infographics", &rows); err != nil {
			return err
		}
	}

	if len(b.Reports) > 0 {
		rid, err := i.resource(ctx, domain.ResourceReport, domain.TitleReports)
		if err != nil {
			return err
		}
		rows := make([]reportRow, 0, len(b.Reports))
		for _, r := range b.Reports {
			rows = append(rows, reportRow{ResourceID: rid, Content: r.Content, Order: r.Order})
		}
		if err := i.insert(ctx, "reports", &rows); err != nil {
			return err
		}
		i.seeded.ReportResource = rid
	}

	if len(b.Audio) > 0 {
		rid, err := i.resource(ctx, domain.ResourceAudio, domain.TitleAudio)
		if err != nil {
			return err
		}
		rows := make([]audioRow, 0, len(b.Audio))
		for _, a := range b.Audio {
			subs := a.Subtitles
			if subs == nil {
				subs = []domain.Subtitle{}
			}
			rows = append(rows, audioRow{ResourceID: rid, AudioURL: a.AudioURL, Duration: a.Duration, Subtitles: subs, Order: a.Order})
		}
		if err := i.insert(ctx, "audio files", &rows); err != nil {
			return err
		}
		i.seeded.AudioResource = rid
	}

	if b.Game != nil {
		rid, err := i.resource(ctx, domain.ResourceGame, domain.TitleGame)
		if err != nil {
			return err
		}
		clues := b.Game.Clues
		if clues == nil {
			clues = []domain.Clue{}
		}
		if err := i.insert(ctx, "game", &gameRow{ResourceID: rid, GridSize: b.Game.GridSize, Clues: clues}); err != nil {
			return err
		}
	}
	return nil
}
