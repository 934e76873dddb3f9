// Package cache keeps published quizzes in memory for the public endpoints.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

const (
	DefaultQuizCacheSize = 256
	DefaultQuizCacheTTL  = 30 * time.Second
)

// QuizCache is an LRU of published quizzes keyed by slug. Entries expire
// after ttl and are deep copies, so callers can never mutate the cached value.
type QuizCache struct {
	cache *expirable.LRU[string, *entity.Quiz]
}

func NewQuizCache(size int, ttl time.Duration) *QuizCache {
	if size <= 0 {
		size = DefaultQuizCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultQuizCacheTTL
	}
	return &QuizCache{cache: expirable.NewLRU[string, *entity.Quiz](size, nil, ttl)}
}

func (c *QuizCache) Get(slug string) (*entity.Quiz, bool) {
	q, ok := c.cache.Get(slug)
	if !ok {
		return nil, false
	}
	return q.Clone(), true
}

func (c *QuizCache) Add(q *entity.Quiz) {
	c.cache.Add(q.Slug, q.Clone())
}

func (c *QuizCache) Remove(slug string) {
	c.cache.Remove(slug)
}

func (c *QuizCache) Len() int {
	return c.cache.Len()
}
