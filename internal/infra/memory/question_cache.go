package memory

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"learning-service/internal/domain"
)

// QuestionLoader fetches a quiz's question bank from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, quizID int64) ([]domain.Question, error)
}

// QuestionCache caches question banks with TTL to avoid repeated DB hits.
type QuestionCache struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[int64]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int64]cachedQuestions),
	}
}

func (c *QuestionCache) Questions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	if qs, ok := c.lookup(quizID, c.clock()); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		now := c.clock()
		if qs, ok := c.lookup(quizID, now); ok {
			return qs, nil
		}

		qs, err := c.loader.LoadQuestions(ctx, quizID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedQuestions{
			questions: qs,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load questions for quiz %d: %w", quizID, err)
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached bank for a quiz.
func (c *QuestionCache) Invalidate(quizID int64) {
	c.mu.Lock()
	delete(c.cache, quizID)
	c.mu.Unlock()
}

func (c *QuestionCache) lookup(quizID int64, now time.Time) ([]domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[quizID]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return entry.questions, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
