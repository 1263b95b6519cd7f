package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"learning-service/internal/domain"
)

// CatalogWriter persists whole modules.
type CatalogWriter interface {
	ModuleIDByOrder(ctx context.Context, order int) (int64, bool, error)
	InsertModule(ctx context.Context, bundle domain.ModuleBundle) (domain.SeededModule, error)
	// ReplaceModule atomically swaps module id, its index rows included, for the bundle.
	ReplaceModule(ctx context.Context, id int64, bundle domain.ModuleBundle) (domain.SeededModule, error)
	DeleteModule(ctx context.Context, id int64) error
}

// Indexer appends fragments to the module search index.
type Indexer interface {
	IndexContent(ctx context.Context, moduleID, resourceID int64, contentType domain.ContentType, text string, timestamp *int) error
}

// Summary counts the outcome of a seeding run.
type Summary struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Seeder loads module definition files into the catalog and builds the search index.
type Seeder struct {
	writer CatalogWriter
	index  Indexer
	force  bool
}

func NewSeeder(writer CatalogWriter, index Indexer, force bool) *Seeder {
	return &Seeder{writer: writer, index: index, force: force}
}

// Run seeds every definition file in dir. A bad file is logged and counted, it does not stop the run.
func (s *Seeder) Run(ctx context.Context, dir string) (Summary, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		slog.Warn("no module files found", "dir", dir)
		return Summary{}, nil
	}
	slog.Info("seeding modules", "dir", dir, "files", len(files), "force", s.force)

	var sum Summary
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		f, err := LoadFile(path)
		if err != nil {
			sum.Failed++
			slog.Error("invalid module file", "file", path, "error", err)
			continue
		}
		inserted, err := s.SeedModule(ctx, f)
		switch {
		case err != nil:
			sum.Failed++
			slog.Error("seeding module failed", "file", path, "order", f.Order, "error", err)
		case inserted:
			sum.Inserted++
		default:
			sum.Skipped++
		}
	}
	slog.Info("seeding finished", "inserted", sum.Inserted, "skipped", sum.Skipped, "failed", sum.Failed)
	return sum, nil
}

// SeedModule inserts one module and indexes its subtitles and reports. It reports false
// when a module with the same order exists and force is off.
func (s *Seeder) SeedModule(ctx context.Context, f ModuleFile) (bool, error) {
	existing, found, err := s.writer.ModuleIDByOrder(ctx, f.Order)
	if err != nil {
		return false, err
	}
	if found && !s.force {
		slog.Warn("module order already exists, skipping", "order", f.Order, "title", f.Title)
		return false, nil
	}

	bundle := f.Bundle()
	var seeded domain.SeededModule
	if found {
		slog.Info("replacing module", "order", f.Order, "module_id", existing)
		seeded, err = s.writer.ReplaceModule(ctx, existing, bundle)
		if err != nil {
			return false, fmt.Errorf("replace module %d: %w", existing, err)
		}
	} else {
		seeded, err = s.writer.InsertModule(ctx, bundle)
		if err != nil {
			return false, err
		}
	}

	if err := s.indexModule(ctx, bundle, seeded); err != nil {
		// leave no half-indexed module behind so a rerun retries it
		if derr := s.writer.DeleteModule(ctx, seeded.ModuleID); derr != nil {
			err = errors.Join(err, derr)
		}
		return false, fmt.Errorf("index module %q: %w", f.Title, err)
	}

	slog.Info("module seeded", "module_id", seeded.ModuleID, "title", f.Title, "order", f.Order, "resources", len(seeded.Resources))
	return true, nil
}

func (s *Seeder) indexModule(ctx context.Context, b domain.ModuleBundle, seeded domain.SeededModule) error {
	for i, tv := range b.Videos {
		if i >= len(seeded.VideoResources) {
			break
		}
		for _, sub := range tv.Video.Subtitles {
			if err := s.index.IndexContent(ctx, seeded.ModuleID, seeded.VideoResources[i], domain.ContentVideoSubtitle, sub.Text, startSecond(sub)); err != nil {
				return err
			}
		}
	}
	for _, r := range b.Reports {
		if err := s.index.IndexContent(ctx, seeded.ModuleID, seeded.ReportResource, domain.ContentReport, r.Content, nil); err != nil {
			return err
		}
	}
	for _, a := range b.Audio {
		for _, sub := range a.Subtitles {
			if err := s.index.IndexContent(ctx, seeded.ModuleID, seeded.AudioResource, domain.ContentAudioSubtitle, sub.Text, startSecond(sub)); err != nil {
				return err
			}
		}
	}
	return nil
}

func startSecond(sub domain.Subtitle) *int {
	ts := int(math.Floor(sub.Start))
	return &ts
}
