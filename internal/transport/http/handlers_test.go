package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"learning-service/internal/app"
	"learning-service/internal/auth"
	"learning-service/internal/domain"
	"learning-service/internal/infra/memory"
)

type testServer struct {
	t         *testing.T
	srv       *fiber.App
	store     *memory.Store
	moduleID  int64
	quizID    int64
	resources map[domain.ResourceType]int64
	questions []domain.Question
}

func newTestServer(t *testing.T, checks map[string]Pinger) *testServer {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	seeded, err := store.InsertModule(ctx, domain.ModuleBundle{
		Module: domain.Module{Title: "Cells", Order: 1, Objectives: []string{"Name organelles"}},
		Videos: []domain.TitledVideo{
			{Title: "Intro", Video: domain.Video{VideoURL: "https://cdn.example.com/v.mp4", Subtitles: []domain.Subtitle{{Start: 4.5, End: 6, Text: "Mitochondria make ATP."}}}},
		},
		Quiz: &domain.QuizBundle{
			Quiz: domain.Quiz{PassingScore: 80, QuestionsPerAttempt: 5},
			Questions: []domain.Question{
				{Question: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: 1, CorrectExplanation: "Arithmetic."},
				{Question: "Powerhouse of the cell?", Options: []string{"Nucleus", "Mitochondria"}, CorrectAnswer: 1, CorrectExplanation: "ATP."},
			},
		},
		Flashcards: []domain.Flashcard{{Question: "ATP?", Answer: "Energy", Order: 1}},
		Reports:    []domain.Report{{Content: "Mitochondria produce ATP.", Order: 1}},
	})
	if err != nil {
		t.Fatalf("insert module: %v", err)
	}

	ts := &testServer{t: t, store: store, moduleID: seeded.ModuleID, resources: map[domain.ResourceType]int64{}}
	for _, r := range seeded.Resources {
		ts.resources[r.Type] = r.ID
	}
	quiz, err := store.GetQuizByResource(ctx, ts.resources[domain.ResourceQuiz])
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	ts.quizID = quiz.ID
	if ts.questions, err = store.LoadQuestions(ctx, quiz.ID); err != nil {
		t.Fatalf("questions: %v", err)
	}

	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	search := app.NewSearchService(store, 0, 0)
	at := 4
	if err := search.IndexContent(ctx, seeded.ModuleID, seeded.VideoResources[0], domain.ContentVideoSubtitle, "Mitochondria make ATP.", &at); err != nil {
		t.Fatalf("index: %v", err)
	}

	users := app.NewUserService(store, issuer)
	progress := app.NewProgressService(store)
	svc := Services{
		Users:    users,
		Catalog:  app.NewCatalogService(store, progress),
		Search:   search,
		Quizzes:  app.NewQuizService(store, memory.NewQuestionCache(store, time.Minute), progress, users),
		Progress: progress,
	}
	ts.srv = NewServer(svc, issuer, checks)
	return ts
}

func (ts *testServer) do(method, path, body, token string) (*http.Response, []byte) {
	ts.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.srv.Test(req, -1)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func (ts *testServer) login(name string) string {
	ts.t.Helper()
	resp, raw := ts.do(http.MethodPost, "/auth/login", fmt.Sprintf(`{"lastName": %q}`, name), "")
	if resp.StatusCode != http.StatusOK {
		ts.t.Fatalf("login status %d: %s", resp.StatusCode, raw)
	}
	var out loginResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		ts.t.Fatalf("decode login: %v", err)
	}
	return out.Token
}

func (ts *testServer) allCorrect() string {
	parts := make([]string, 0, len(ts.questions))
	for _, q := range ts.questions {
		parts = append(parts, fmt.Sprintf(`"%d": %d`, q.ID, q.CorrectAnswer))
	}
	return `{"answers": {` + strings.Join(parts, ", ") + `}}`
}

func TestHealthAndRequestID(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, raw := ts.do(http.MethodGet, "/healthz", "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", resp.StatusCode, raw)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := ts.srv.Test(req, -1)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if got := resp.Header.Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}

func TestReadyReportsFailingDependency(t *testing.T) {
	ts := newTestServer(t, map[string]Pinger{
		"postgres": pingFunc(func(context.Context) error { return nil }),
		"redis":    pingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	resp, raw := ts.do(http.MethodGet, "/readyz", "", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(raw), "redis") || strings.Contains(string(raw), "postgres") {
		t.Fatalf("expected only redis reported, got %s", raw)
	}

	ok := newTestServer(t, map[string]Pinger{"postgres": pingFunc(func(context.Context) error { return nil })})
	if resp, _ := ok.do(http.MethodGet, "/readyz", "", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ready, got %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, token := range []string{"", "garbage"} {
		resp, raw := ts.do(http.MethodGet, "/modules", "", token)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("token %q: expected 401, got %d", token, resp.StatusCode)
		}
		var body errorBody
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		if body.StatusCode != 401 || body.Error != "Unauthorized" || body.Message == "" {
			t.Fatalf("unexpected error body %+v", body)
		}
	}
}

func TestRouteAuthScope(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, path := range []string{"/auth/me", "/modules/1", "/resources/videos/1", "/quizzes/1/questions", "/users/me/progress"} {
		if resp, _ := ts.do(http.MethodGet, path, "", ""); resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without token, got %d", path, resp.StatusCode)
		}
	}

	resp, raw := ts.do(http.MethodGet, "/nope", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown path: expected 404, got %d %s", resp.StatusCode, raw)
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.StatusCode != 404 || body.Error != "Not Found" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestLoginAndMe(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, raw := ts.do(http.MethodPost, "/auth/login", `{"lastName": "  Curie "}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d: %s", resp.StatusCode, raw)
	}
	var out loginResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.User.LastName != "Curie" || out.User.ID == 0 || out.Token == "" {
		t.Fatalf("unexpected login response %+v", out)
	}
	if strings.Contains(string(raw), "createdAt") {
		t.Fatalf("login should expose the short user view: %s", raw)
	}

	resp, raw = ts.do(http.MethodGet, "/auth/me", "", out.Token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status %d", resp.StatusCode)
	}
	var me userView
	_ = json.Unmarshal(raw, &me)
	if me.ID != out.User.ID || me.LastName != "Curie" {
		t.Fatalf("unexpected me %+v", me)
	}
}

func TestLoginRejectsBadInput(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, body := range []string{`{"lastName": ""}`, `{"lastName": "x"}`, `{not json`, `{"lastName": 7}`} {
		resp, raw := ts.do(http.MethodPost, "/auth/login", body, "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d %s", body, resp.StatusCode, raw)
		}
	}
}

func TestModulesAndResources(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login("Franklin")

	resp, raw := ts.do(http.MethodGet, "/modules", "", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("modules status %d", resp.StatusCode)
	}
	var modules []domain.ModuleSummary
	_ = json.Unmarshal(raw, &modules)
	if len(modules) != 1 || modules[0].Completed {
		t.Fatalf("unexpected modules %+v", modules)
	}

	resp, raw = ts.do(http.MethodGet, fmt.Sprintf("/modules/%d", ts.moduleID), "", token)
	var detail domain.ModuleDetail
	_ = json.Unmarshal(raw, &detail)
	if resp.StatusCode != http.StatusOK || len(detail.Resources) != 4 {
		t.Fatalf("unexpected module detail %d %s", resp.StatusCode, raw)
	}

	if resp, _ := ts.do(http.MethodGet, "/modules/999", "", token); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if resp, _ := ts.do(http.MethodGet, "/modules/abc", "", token); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	resp, raw = ts.do(http.MethodGet, fmt.Sprintf("/resources/flashcards/%d", ts.resources[domain.ResourceFlashcard]), "", token)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), "Energy") {
		t.Fatalf("unexpected flashcards %d %s", resp.StatusCode, raw)
	}
	resp, raw = ts.do(http.MethodGet, fmt.Sprintf("/resources/quizzes/%d", ts.resources[domain.ResourceQuiz]), "", token)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), `"passingScore":80`) {
		t.Fatalf("unexpected quiz %d %s", resp.StatusCode, raw)
	}
	// the module has no slides
	if resp, _ := ts.do(http.MethodGet, fmt.Sprintf("/resources/slides/%d", ts.resources[domain.ResourceVideo]), "", token); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing slides, got %d", resp.StatusCode)
	}
	resp, raw = ts.do(http.MethodGet, fmt.Sprintf("/resources/audio/%d", ts.resources[domain.ResourceVideo]), "", token)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("expected empty audio list, got %d %s", resp.StatusCode, raw)
	}
}

func TestSearchRoute(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login("Franklin")

	resp, raw := ts.do(http.MethodGet, fmt.Sprintf("/modules/%d/search?q=atp", ts.moduleID), "", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search status %d", resp.StatusCode)
	}
	var results []domain.SearchResult
	_ = json.Unmarshal(raw, &results)
	if len(results) != 1 || results[0].Timestamp == nil || *results[0].Timestamp != 4 || results[0].ResourceTitle != "Intro" {
		t.Fatalf("unexpected results %s", raw)
	}

	_, raw = ts.do(http.MethodGet, fmt.Sprintf("/modules/%d/search?q=", ts.moduleID), "", token)
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("expected empty result for blank query, got %s", raw)
	}
}

func TestQuizQuestionsHideAnswers(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login("Franklin")

	resp, raw := ts.do(http.MethodGet, fmt.Sprintf("/quizzes/%d/questions", ts.quizID), "", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("questions status %d", resp.StatusCode)
	}
	if strings.Contains(string(raw), "correctAnswer") || strings.Contains(string(raw), "Explanation") {
		t.Fatalf("questions leaked answers: %s", raw)
	}
	var qs []domain.PublicQuestion
	_ = json.Unmarshal(raw, &qs)
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if resp, _ := ts.do(http.MethodGet, "/quizzes/999/questions", "", token); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSubmitAttemptRewardsOnce(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login("Franklin")
	path := fmt.Sprintf("/quizzes/%d/attempts", ts.quizID)

	for i := 0; i < 2; i++ {
		resp, raw := ts.do(http.MethodPost, path, ts.allCorrect(), token)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("attempt %d status %d: %s", i, resp.StatusCode, raw)
		}
		var result domain.AttemptResult
		_ = json.Unmarshal(raw, &result)
		if result.Score != 100 || !result.Passed || len(result.Feedback) != 2 {
			t.Fatalf("unexpected result %+v", result)
		}
	}

	resp, raw := ts.do(http.MethodGet, "/users/me/progress", "", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("progress status %d", resp.StatusCode)
	}
	var progress progressResponse
	_ = json.Unmarshal(raw, &progress)
	if progress.KnowledgeTokens != 1 || progress.CompletedCount != 1 || progress.Progress != 100 {
		t.Fatalf("unexpected progress %s", raw)
	}

	_, raw = ts.do(http.MethodGet, path, "", token)
	var attempts []domain.QuizAttempt
	_ = json.Unmarshal(raw, &attempts)
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %s", raw)
	}

	_, raw = ts.do(http.MethodGet, "/modules", "", token)
	if !strings.Contains(string(raw), `"completed":true`) {
		t.Fatalf("expected module flagged completed: %s", raw)
	}
}

func TestSubmitAttemptRejectsMalformedAnswers(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login("Franklin")
	path := fmt.Sprintf("/quizzes/%d/attempts", ts.quizID)
	first := ts.questions[0].ID

	bodies := []string{
		`{"answers": {"abc": 1}}`,
		`{"answers": {"-4": 1}}`,
		fmt.Sprintf(`{"answers": {"%d": 1.5}}`, first),
		fmt.Sprintf(`{"answers": {"%d": 9}}`, first),
		`{"answers": {"999999": 0}}`,
		`{"answers": {}}`,
		`{}`,
		`not json`,
	}
	for _, body := range bodies {
		resp, raw := ts.do(http.MethodPost, path, body, token)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d %s", body, resp.StatusCode, raw)
		}
	}

	_, raw := ts.do(http.MethodGet, path, "", token)
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("rejected submissions must not be recorded: %s", raw)
	}
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }
