package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0001_create_catalog.sql
var createCatalogSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createCatalogSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `
DROP TABLE IF EXISTS games, audio_files, reports, infographics, slides, flashcards,
	quiz_questions, quizzes, videos, resources, modules;
DROP TYPE IF EXISTS resource_type;`)
			return err
		},
	)
}
