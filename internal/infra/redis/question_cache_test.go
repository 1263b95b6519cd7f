package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"learning-service/internal/domain"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{questions: sampleQuestions()}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute)

	qs, err := cache.Questions(context.Background(), 7)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:7:questions") {
		t.Fatalf("expected bank stored under quiz:7:questions")
	}
	if ttl := mr.TTL("quiz:7:questions"); ttl < time.Minute || ttl > 66*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, err := cache.Questions(context.Background(), 7)
	if err != nil {
		t.Fatalf("cached questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(cached) != len(qs) || cached[0].CorrectAnswer != qs[0].CorrectAnswer || cached[1].Options[1] != "Paris" {
		t.Fatalf("cached bank differs: %+v", cached)
	}
}

func TestQuestionCacheExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{questions: sampleQuestions()}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute)

	_, _ = cache.Questions(context.Background(), 7)
	mr.FastForward(2 * time.Minute)
	_, _ = cache.Questions(context.Background(), 7)
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}

	if err := cache.Invalidate(context.Background(), 7); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.Questions(context.Background(), 7)
	if loader.calls != 3 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestQuestionCacheRecoversFromCorruptEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	_ = mr.Set("quiz:7:questions", "{not json")

	loader := &countingLoader{questions: sampleQuestions()}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute)
	qs, err := cache.Questions(context.Background(), 7)
	if err != nil || len(qs) != 2 {
		t.Fatalf("expected fallback to loader, got %v %v", qs, err)
	}
}

func TestQuestionCacheLoaderError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{err: domain.ErrNotFound}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute)
	if _, err := cache.Questions(context.Background(), 9); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("quiz:9:questions") {
		t.Fatalf("errors must not be cached")
	}
}

type countingLoader struct {
	questions []domain.Question
	err       error
	calls     int
}

func (l *countingLoader) LoadQuestions(_ context.Context, _ int64) ([]domain.Question, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.questions, nil
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, QuizID: 7, Question: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: 1, CorrectExplanation: "Four."},
		{ID: 2, QuizID: 7, Question: "Capital of France?", Options: []string{"Lyon", "Paris"}, CorrectAnswer: 1, CorrectExplanation: "Paris."},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func TestQuestionCacheZeroTTLDisablesCaching(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{questions: sampleQuestions()}
	cache := NewQuestionCache(newClient(mr), loader, 0)
	for i := 0; i < 2; i++ {
		if _, err := cache.Questions(context.Background(), 7); err != nil {
			t.Fatalf("questions: %v", err)
		}
	}
	if loader.calls != 2 || mr.Exists("quiz:7:questions") {
		t.Fatalf("expected no caching with zero ttl, loader calls=%d", loader.calls)
	}
}
