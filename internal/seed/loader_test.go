package seed

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"learning-service/internal/domain"
)

func TestListFilesSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.json", "notes.txt", "c.YML"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if got := strings.Join(names, ","); got != "a.json,b.yaml,c.YML" {
		t.Fatalf("unexpected files %s", got)
	}
}

func TestLoadFileJSON(t *testing.T) {
	f, err := LoadFile(filepath.Join("testdata", "01_cells.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b := f.Bundle()
	if b.Module.Order != 1 || b.Module.Title != "Cells" || len(b.Module.Objectives) != 2 {
		t.Fatalf("unexpected module %+v", b.Module)
	}
	if b.Quiz == nil || b.Quiz.Quiz.PassingScore != 60 || b.Quiz.Quiz.QuestionsPerAttempt != domain.DefaultQuestionsPerAttempt {
		t.Fatalf("unexpected quiz %+v", b.Quiz)
	}
	if len(b.Videos) != 1 || len(b.Videos[0].Video.Subtitles) != 2 || b.Videos[0].Video.Duration != "4:12" {
		t.Fatalf("unexpected videos %+v", b.Videos)
	}
	if b.Flashcards[0].Order != 1 || b.Reports[0].Order != 1 || b.Audio[0].Order != 1 {
		t.Fatalf("list items should be numbered from 1")
	}
	if b.Slides == nil || b.Slides.PageCount == nil || *b.Slides.PageCount != 12 {
		t.Fatalf("unexpected slides %+v", b.Slides)
	}
	if b.Game == nil || len(b.Game.Clues) != 1 || b.Game.Clues[0].Answer != "ATP" {
		t.Fatalf("unexpected game %+v", b.Game)
	}
}

func TestLoadFileYAMLAppliesDefaults(t *testing.T) {
	f, err := LoadFile(filepath.Join("testdata", "02_genetics.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b := f.Bundle()
	if b.Module.Title != "Genetics" || b.Module.Order != 2 {
		t.Fatalf("unexpected module %+v", b.Module)
	}
	if b.Quiz.Quiz.PassingScore != domain.DefaultPassingScore || b.Quiz.Quiz.QuestionsPerAttempt != domain.DefaultQuestionsPerAttempt {
		t.Fatalf("expected quiz defaults, got %+v", b.Quiz.Quiz)
	}
	if b.Quiz.Questions[0].CorrectAnswer != 1 || len(b.Quiz.Questions[0].Options) != 3 {
		t.Fatalf("unexpected question %+v", b.Quiz.Questions[0])
	}
	if b.Slides != nil || b.Game != nil {
		t.Fatalf("absent resources must stay nil")
	}
}

func TestDecodeRejectsInvalidModules(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing title", `{"order": 1, "resources": {}}`},
		{"not an object", `[1, 2]`},
		{"bad video url", `{"order": 1, "title": "x", "resources": {"videos": [{"title": "v", "videoUrl": "nope"}]}}`},
		{"empty quiz", `{"order": 1, "title": "x", "resources": {"quiz": {"questions": []}}}`},
		{"single option", `{"order": 1, "title": "x", "resources": {"quiz": {"questions": [{"question": "q", "options": ["a"], "correctAnswer": 0}]}}}`},
		{"answer out of range", `{"order": 1, "title": "x", "resources": {"quiz": {"questions": [{"question": "q", "options": ["a", "b"], "correctAnswer": 2}]}}}`},
		{"passing score above 100", `{"order": 1, "title": "x", "resources": {"quiz": {"passingScore": 101, "questions": [{"question": "q", "options": ["a", "b"], "correctAnswer": 0}]}}}`},
		{"bad clue direction", `{"order": 1, "title": "x", "resources": {"game": {"gridSize": 5, "clues": [{"number": 1, "direction": "diagonal", "clue": "c", "answer": "a", "startRow": 0, "startCol": 0}]}}}`},
		{"subtitle ends before start", `{"order": 1, "title": "x", "resources": {"videos": [{"title": "v", "videoUrl": "https://x.test/v.mp4", "subtitles": [{"start": 5, "end": 2, "text": "t"}]}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("module.json", []byte(tt.raw))
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.File != "module.json" || len(verr.Problems) == 0 {
				t.Fatalf("expected validation error naming the file, got %v", err)
			}
		})
	}
}

func TestLoadFileRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("order: [1\ntitle: x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
