package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-tutor-bot/internal/app"
	"quiz-tutor-bot/internal/domain"
)

// TopicCache wraps a question bank and caches its topic list with a TTL
// to avoid hitting the database on every menu render. Random fetches
// pass straight through. The menu is re-derived at selection time from
// the same cache, so render and selection see an identical ordering
// within one TTL window.
type TopicCache struct {
	bank  app.QuestionBank
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu        sync.RWMutex
	topics    []string
	expiresAt time.Time
}

func NewTopicCache(bank app.QuestionBank, ttl time.Duration) *TopicCache {
	return &TopicCache{
		bank:  bank,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *TopicCache) ListTopics(ctx context.Context) ([]string, error) {
	now := c.clock()

	c.mu.RLock()
	if c.topics != nil && c.expiresAt.After(now) {
		topics := c.topics
		c.mu.RUnlock()
		return topics, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("topics", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.topics != nil && c.expiresAt.After(now) {
			topics := c.topics
			c.mu.RUnlock()
			return topics, nil
		}
		c.mu.RUnlock()

		topics, err := c.bank.ListTopics(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.topics = topics
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return topics, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (c *TopicCache) FetchRandom(ctx context.Context, topic string) (domain.Question, error) {
	return c.bank.FetchRandom(ctx, topic)
}

func (c *TopicCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
