package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"learning-service/internal/app"
	"learning-service/internal/domain"
	"learning-service/internal/infra/memory"
)

func TestGetProgressWithoutModules(t *testing.T) {
	progress := app.NewProgressService(memory.NewStore())
	summary, err := progress.GetProgress(context.Background(), 1)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if summary.TotalModules != 0 || summary.Progress != 0 || summary.CompletedModules == nil {
		t.Fatalf("unexpected empty summary %+v", summary)
	}
}

func TestGetProgressRoundsPercentage(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	var first int64
	for order := 1; order <= 3; order++ {
		seeded, err := store.InsertModule(ctx, bundle(order, 80, 5))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if order == 1 {
			first = seeded.ModuleID
		}
	}
	progress := app.NewProgressService(store)

	newly, err := progress.MarkComplete(ctx, 5, first)
	if err != nil || !newly {
		t.Fatalf("expected first completion, got %v %v", newly, err)
	}
	newly, _ = progress.MarkComplete(ctx, 5, first)
	if newly {
		t.Fatalf("repeat completion must not be new")
	}

	summary, _ := progress.GetProgress(ctx, 5)
	if summary.TotalModules != 3 || summary.CompletedCount != 1 || summary.Progress != 33 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(summary.CompletedModules) != 1 || summary.CompletedModules[0] != first {
		t.Fatalf("unexpected completed modules %v", summary.CompletedModules)
	}
}

func TestMarkCompleteUnknownModule(t *testing.T) {
	progress := app.NewProgressService(memory.NewStore())
	if _, err := progress.MarkComplete(context.Background(), 1, 77); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearchInModule(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seeded, err := store.InsertModule(ctx, bundle(1, 80, 5))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	var reportID int64
	for _, r := range seeded.Resources {
		if r.Type == domain.ResourceReport {
			reportID = r.ID
		}
	}
	search := app.NewSearchService(store, 2, 20)

	ts := 42
	texts := []string{"Cells divide by mitosis.", "Mitochondria make ATP for the cell.", "Unrelated text", "MITOSIS again"}
	for i, text := range texts {
		var stamp *int
		if i == 1 {
			stamp = &ts
		}
		if err := search.IndexContent(ctx, seeded.ModuleID, reportID, domain.ContentReport, text, stamp); err != nil {
			t.Fatalf("index: %v", err)
		}
	}

	blank, err := search.SearchInModule(ctx, seeded.ModuleID, "   ")
	if err != nil || len(blank) != 0 {
		t.Fatalf("blank query must return nothing, got %v %v", blank, err)
	}

	results, err := search.SearchInModule(ctx, seeded.ModuleID, "mito")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected limit of 2 results, got %d", len(results))
	}
	if results[0].ResourceTitle != domain.TitleReports || results[0].ResourceType != domain.ResourceReport {
		t.Fatalf("missing resource join: %+v", results[0])
	}
	if results[1].Timestamp == nil || *results[1].Timestamp != 42 {
		t.Fatalf("expected timestamp to carry through: %+v", results[1])
	}
	if !strings.Contains(strings.ToLower(results[1].MatchedText), "mito") {
		t.Fatalf("snippet should contain the match: %q", results[1].MatchedText)
	}

	none, err := search.SearchInModule(ctx, seeded.ModuleID, "xyz-no-match")
	if err != nil {
		t.Fatalf("search no match: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", none)
	}

	other, _ := search.SearchInModule(ctx, seeded.ModuleID+1000, "mito")
	if len(other) != 0 {
		t.Fatalf("search must be scoped to the module")
	}

	n, err := search.DeleteModuleIndex(ctx, seeded.ModuleID)
	if err != nil || n != 4 {
		t.Fatalf("expected 4 deleted, got %d %v", n, err)
	}
}

func TestIndexContentRejectsUnknownType(t *testing.T) {
	search := app.NewSearchService(memory.NewStore(), 0, 0)
	err := search.IndexContent(context.Background(), 1, 1, domain.ContentType("pdf"), "x", nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	users := app.NewUserService(memory.NewStore(), stubTokens{})

	for _, name := range []string{"", " a ", strings.Repeat("x", 256)} {
		if _, err := users.Login(ctx, name); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %q, got %v", name, err)
		}
	}

	first, err := users.Login(ctx, "  Hopper ")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if first.User.LastName != "Hopper" || first.Token != "token-Hopper" {
		t.Fatalf("unexpected session %+v", first)
	}
	again, _ := users.Login(ctx, "Hopper")
	if again.User.ID != first.User.ID {
		t.Fatalf("login must reuse the existing user")
	}

	if _, err := users.AwardTokens(ctx, first.User.ID, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected zero award to be rejected, got %v", err)
	}
	balance, err := users.AwardTokens(ctx, first.User.ID, 2)
	if err != nil || balance != 2 {
		t.Fatalf("expected balance 2, got %d %v", balance, err)
	}
}

func TestCatalogListModulesFlagsCompletion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	second, _ := store.InsertModule(ctx, bundle(2, 80, 5))
	first, _ := store.InsertModule(ctx, bundle(1, 80, 5))
	progress := app.NewProgressService(store)
	catalog := app.NewCatalogService(store, progress)

	if _, err := progress.MarkComplete(ctx, 9, second.ModuleID); err != nil {
		t.Fatalf("mark: %v", err)
	}
	modules, err := catalog.ListModules(ctx, 9)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(modules) != 2 || modules[0].ID != first.ModuleID {
		t.Fatalf("modules must be ordered by position: %+v", modules)
	}
	if modules[0].Completed || !modules[1].Completed {
		t.Fatalf("unexpected completion flags: %+v", modules)
	}

	detail, err := catalog.GetModule(ctx, first.ModuleID)
	if err != nil {
		t.Fatalf("get module: %v", err)
	}
	if len(detail.Resources) != 2 || detail.Resources[0].Type != domain.ResourceQuiz {
		t.Fatalf("unexpected resources %+v", detail.Resources)
	}
	if _, err := catalog.GetModule(ctx, 12345); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	cards, err := catalog.Flashcards(ctx, detail.Resources[0].ID)
	if err != nil || cards == nil || len(cards) != 0 {
		t.Fatalf("expected empty non-nil flashcards, got %v %v", cards, err)
	}
	if _, err := catalog.Game(ctx, detail.Resources[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected missing game, got %v", err)
	}
	quiz, err := catalog.Quiz(ctx, detail.Resources[0].ID)
	if err != nil || quiz.PassingScore != 80 {
		t.Fatalf("unexpected quiz %+v %v", quiz, err)
	}
}
