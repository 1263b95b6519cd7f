package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"learning-service/internal/domain"
)

// Store is an in-process implementation of every persistence port, used by tests and DB-less runs.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	clock  func() time.Time

	users     map[int64]domain.User
	modules   map[int64]domain.Module
	resources map[int64]domain.Resource
	videos    map[int64]domain.Video
	quizzes   map[int64]domain.Quiz
	questions map[int64][]domain.Question
	attempts  []domain.QuizAttempt
	cards     map[int64][]domain.Flashcard
	slides    map[int64]domain.Slides
	graphics  map[int64][]domain.Infographic
	reports   map[int64][]domain.Report
	audio     map[int64][]domain.AudioFile
	games     map[int64]domain.Game
	progress  map[progressKey]domain.ModuleProgress
	content   []domain.SearchableContent
}

type progressKey struct {
	userID   int64
	moduleID int64
}

func NewStore() *Store {
	return &Store{
		clock:     time.Now,
		users:     make(map[int64]domain.User),
		modules:   make(map[int64]domain.Module),
		resources: make(map[int64]domain.Resource),
		videos:    make(map[int64]domain.Video),
		quizzes:   make(map[int64]domain.Quiz),
		questions: make(map[int64][]domain.Question),
		cards:     make(map[int64][]domain.Flashcard),
		slides:    make(map[int64]domain.Slides),
		graphics:  make(map[int64][]domain.Infographic),
		reports:   make(map[int64][]domain.Report),
		audio:     make(map[int64][]domain.AudioFile),
		games:     make(map[int64]domain.Game),
		progress:  make(map[progressKey]domain.ModuleProgress),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%w: %s %d", domain.ErrNotFound, kind, id)
}

// Users

func (s *Store) FindOrCreateUser(_ context.Context, lastName string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.LastName == lastName {
			return u, nil
		}
	}
	now := s.clock().UTC()
	u := domain.User{ID: s.id(), LastName: lastName, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, notFound("user", id)
	}
	return u, nil
}

func (s *Store) IncrementKnowledgeTokens(_ context.Context, userID int64, n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return 0, notFound("user", userID)
	}
	u.KnowledgeTokens += n
	u.UpdatedAt = s.clock().UTC()
	s.users[userID] = u
	return u.KnowledgeTokens, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Quizzes

func (s *Store) GetQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, notFound("quiz", quizID)
	}
	return q, nil
}

func (s *Store) LoadQuestions(_ context.Context, quizID int64) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return nil, notFound("quiz", quizID)
	}
	src := s.questions[quizID]
	out := make([]domain.Question, len(src))
	copy(out, src)
	return out, nil
}

func (s *Store) ModuleIDForQuiz(_ context.Context, quizID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[quizID]
	if !ok {
		return 0, notFound("quiz", quizID)
	}
	r, ok := s.resources[q.ResourceID]
	if !ok {
		return 0, notFound("resource", q.ResourceID)
	}
	return r.ModuleID, nil
}

func (s *Store) CreateAttempt(_ context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.ID = s.id()
	s.attempts = append(s.attempts, attempt)
	return attempt, nil
}

func (s *Store) ListAttempts(_ context.Context, userID, quizID int64) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.QuizAttempt{}
	for _, a := range s.attempts {
		if a.UserID == userID && a.QuizID == quizID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Progress

func (s *Store) MarkComplete(_ context.Context, userID, moduleID int64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.modules[moduleID]; !ok {
		return false, notFound("module", moduleID)
	}
	key := progressKey{userID: userID, moduleID: moduleID}
	row, ok := s.progress[key]
	if !ok {
		row = domain.ModuleProgress{ID: s.id(), UserID: userID, ModuleID: moduleID}
	}
	newly := !row.Completed
	stamp := at
	row.Completed = true
	row.CompletedAt = &stamp
	s.progress[key] = row
	return newly, nil
}

func (s *Store) IsCompleted(_ context.Context, userID, moduleID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress[progressKey{userID: userID, moduleID: moduleID}].Completed, nil
}

func (s *Store) CompletedModuleIDs(_ context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []int64{}
	for key, row := range s.progress {
		if key.userID == userID && row.Completed {
			out = append(out, key.moduleID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *Store) CountModules(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.modules), nil
}

// Search

func (s *Store) SearchContent(_ context.Context, moduleID int64, query string, limit int) ([]domain.SearchMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(query)
	out := []domain.SearchMatch{}
	for _, c := range s.content {
		if c.ModuleID != moduleID || !strings.Contains(strings.ToLower(c.ContentText), needle) {
			continue
		}
		r, ok := s.resources[c.ResourceID]
		if !ok {
			continue
		}
		out = append(out, domain.SearchMatch{Content: c, ResourceTitle: r.Title, ResourceType: r.Type})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) InsertContent(_ context.Context, content domain.SearchableContent) (domain.SearchableContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.modules[content.ModuleID]; !ok {
		return domain.SearchableContent{}, notFound("module", content.ModuleID)
	}
	if _, ok := s.resources[content.ResourceID]; !ok {
		return domain.SearchableContent{}, notFound("resource", content.ResourceID)
	}
	content.ID = s.id()
	content.CreatedAt = s.clock().UTC()
	s.content = append(s.content, content)
	return content, nil
}

func (s *Store) DeleteModuleContent(_ context.Context, moduleID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteContentLocked(func(c domain.SearchableContent) bool { return c.ModuleID == moduleID }), nil
}

func (s *Store) deleteContentLocked(match func(domain.SearchableContent) bool) int64 {
	kept := s.content[:0]
	var removed int64
	for _, c := range s.content {
		if match(c) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.content = kept
	return removed
}

// Catalog

func (s *Store) ListModules(_ context.Context) ([]domain.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Module, 0, len(s.modules))
	for _, m := range s.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *Store) GetModule(_ context.Context, id int64) (domain.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.modules[id]
	if !ok {
		return domain.Module{}, notFound("module", id)
	}
	return m, nil
}

func (s *Store) ListResources(_ context.Context, moduleID int64) ([]domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Resource{}
	for _, r := range s.resources {
		if r.ModuleID == moduleID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *Store) GetVideo(_ context.Context, resourceID int64) (domain.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.videos[resourceID]
	if !ok {
		return domain.Video{}, notFound("video for resource", resourceID)
	}
	return v, nil
}

func (s *Store) GetQuizByResource(_ context.Context, resourceID int64) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.quizzes {
		if q.ResourceID == resourceID {
			return q, nil
		}
	}
	return domain.Quiz{}, notFound("quiz for resource", resourceID)
}

func (s *Store) ListFlashcards(_ context.Context, resourceID int64) ([]domain.Flashcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Flashcard{}, s.cards[resourceID]...), nil
}

func (s *Store) GetSlides(_ context.Context, resourceID int64) (domain.Slides, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.slides[resourceID]
	if !ok {
		return domain.Slides{}, notFound("slides for resource", resourceID)
	}
	return sl, nil
}

func (s *Store) ListInfographics(_ context.Context, resourceID int64) ([]domain.Infographic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Infographic{}, s.graphics[resourceID]...), nil
}

func (s *Store) ListReports(_ context.Context, resourceID int64) ([]domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Report{}, s.reports[resourceID]...), nil
}

func (s *Store) ListAudio(_ context.Context, resourceID int64) ([]domain.AudioFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AudioFile{}, s.audio[resourceID]...), nil
}

func (s *Store) GetGame(_ context.Context, resourceID int64) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[resourceID]
	if !ok {
		return domain.Game{}, notFound("game for resource", resourceID)
	}
	return g, nil
}

// Seeding

// ModuleIDByOrder reports the module occupying the given position, if any.
func (s *Store) ModuleIDByOrder(_ context.Context, order int) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.modules {
		if m.Order == order {
			return m.ID, true, nil
		}
	}
	return 0, false, nil
}

// InsertModule stores a whole bundle; resource positions follow the bundle's field order.
func (s *Store) InsertModule(_ context.Context, b domain.ModuleBundle) (domain.SeededModule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOrderLocked(b.Module.Order, 0); err != nil {
		return domain.SeededModule{}, err
	}
	return s.insertModuleLocked(b), nil
}

// ReplaceModule swaps the module at id for the bundle under one lock. On error nothing changes.
func (s *Store) ReplaceModule(_ context.Context, id int64, b domain.ModuleBundle) (domain.SeededModule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.modules[id]; !ok {
		return domain.SeededModule{}, notFound("module", id)
	}
	if err := s.checkOrderLocked(b.Module.Order, id); err != nil {
		return domain.SeededModule{}, err
	}
	s.deleteModuleLocked(id)
	return s.insertModuleLocked(b), nil
}

func (s *Store) checkOrderLocked(order int, except int64) error {
	for _, m := range s.modules {
		if m.Order == order && m.ID != except {
			return fmt.Errorf("%w: module order %d already taken", domain.ErrInvalidState, order)
		}
	}
	return nil
}

func (s *Store) insertModuleLocked(b domain.ModuleBundle) domain.SeededModule {
	now := s.clock().UTC()
	module := b.Module
	module.ID = s.id()
	module.CreatedAt, module.UpdatedAt = now, now
	s.modules[module.ID] = module

	seeded := domain.SeededModule{ModuleID: module.ID}
	order := 0
	addResource := func(t domain.ResourceType, title string) domain.Resource {
		order++
		r := domain.Resource{ID: s.id(), ModuleID: module.ID, Type: t, Title: title, Order: order, CreatedAt: now}
		s.resources[r.ID] = r
		seeded.Resources = append(seeded.Resources, r)
		return r
	}

	for _, tv := range b.Videos {
		r := addResource(domain.ResourceVideo, tv.Title)
		v := tv.Video
		v.ID, v.ResourceID = s.id(), r.ID
		s.videos[r.ID] = v
		seeded.VideoResources = append(seeded.VideoResources, r.ID)
	}
	if b.Quiz != nil {
		r := addResource(domain.ResourceQuiz, domain.TitleQuiz)
		q := b.Quiz.Quiz
		q.ID, q.ResourceID, q.CreatedAt = s.id(), r.ID, now
		s.quizzes[q.ID] = q
		for _, question := range b.Quiz.Questions {
			question.ID, question.QuizID = s.id(), q.ID
			s.questions[q.ID] = append(s.questions[q.ID], question)
		}
	}
	if len(b.Flashcards) > 0 {
		r := addResource(domain.ResourceFlashcard, domain.TitleFlashcards)
		for _, c := range b.Flashcards {
			c.ID, c.ResourceID = s.id(), r.ID
			s.cards[r.ID] = append(s.cards[r.ID], c)
		}
	}
	if b.Slides != nil {
		r := addResource(domain.ResourceSlides, domain.TitleSlides)
		sl := *b.Slides
		sl.ID, sl.ResourceID = s.id(), r.ID
		s.slides[r.ID] = sl
	}
	if len(b.Infographics) > 0 {
		r := addResource(domain.ResourceInfographics, domain.TitleInfographics)
		for _, g := range b.Infographics {
			g.ID, g.ResourceID = s.id(), r.ID
			s.graphics[r.ID] = append(s.graphics[r.ID], g)
		}
	}
	if len(b.Reports) > 0 {
		r := addResource(domain.ResourceReport, domain.TitleReports)
		for _, rep := range b.Reports {
			rep.ID, rep.ResourceID = s.id(), r.ID
			s.reports[r.ID] = append(s.reports[r.ID], rep)
		}
		seeded.ReportResource = r.ID
	}
	if len(b.Audio) > 0 {
		r := addResource(domain.ResourceAudio, domain.TitleAudio)
		for _, a := range b.Audio {
			a.ID, a.ResourceID = s.id(), r.ID
			s.audio[r.ID] = append(s.audio[r.ID], a)
		}
		seeded.AudioResource = r.ID
	}
	if b.Game != nil {
		r := addResource(domain.ResourceGame, domain.TitleGame)
		g := *b.Game
		g.ID, g.ResourceID = s.id(), r.ID
		s.games[r.ID] = g
	}
	return seeded
}

// DeleteModule removes the module and everything that belongs to it.
func (s *Store) DeleteModule(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.modules[id]; !ok {
		return notFound("module", id)
	}
	s.deleteModuleLocked(id)
	return nil
}

func (s *Store) deleteModuleLocked(id int64) {
	delete(s.modules, id)
	for rid, r := range s.resources {
		if r.ModuleID != id {
			continue
		}
		delete(s.resources, rid)
		delete(s.videos, rid)
		delete(s.cards, rid)
		delete(s.slides, rid)
		delete(s.graphics, rid)
		delete(s.reports, rid)
		delete(s.audio, rid)
		delete(s.games, rid)
		for qid, q := range s.quizzes {
			if q.ResourceID != rid {
				continue
			}
			delete(s.quizzes, qid)
			delete(s.questions, qid)
			kept := s.attempts[:0]
			for _, a := range s.attempts {
				if a.QuizID != qid {
					kept = append(kept, a)
				}
			}
			s.attempts = kept
		}
	}
	for key := range s.progress {
		if key.moduleID == id {
			delete(s.progress, key)
		}
	}
	s.deleteContentLocked(func(c domain.SearchableContent) bool { return c.ModuleID == id })
}
