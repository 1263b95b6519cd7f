package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"learning-service/internal/domain"
)

// QuestionLoader fetches a quiz's question bank from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, quizID int64) ([]domain.Question, error)
}

// QuestionCache caches question banks in Redis and falls back to a loader on cache miss.
// Banks are stored as JSON: SET quiz:{quizID}:questions [...] EX ttl
// A non-positive ttl disables caching.
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (c *QuestionCache) Questions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	key := questionsKey(quizID)
	if qs, ok := c.get(ctx, key); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := c.get(ctx, key); ok {
			return qs, nil
		}

		qs, err := c.loader.LoadQuestions(ctx, quizID)
		if err != nil {
			return nil, err
		}

		if c.ttl <= 0 {
			return qs, nil
		}
		payload, err := json.Marshal(qs)
		if err != nil {
			return nil, fmt.Errorf("encode questions: %w", err)
		}
		if err := c.client.Set(ctx, key, payload, c.ttlWithJitter()).Err(); err != nil {
			slog.Warn("question cache write failed", "quiz_id", quizID, "error", err)
		}
		return qs, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load questions for quiz %d: %w", quizID, err)
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached bank for a quiz.
func (c *QuestionCache) Invalidate(ctx context.Context, quizID int64) error {
	return c.client.Del(ctx, questionsKey(quizID)).Err()
}

// Ping reports whether Redis is reachable.
func (c *QuestionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *QuestionCache) get(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("question cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var qs []domain.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		slog.Warn("question cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return qs, true
}

func questionsKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":questions"
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
