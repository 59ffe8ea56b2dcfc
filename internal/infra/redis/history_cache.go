package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"ordinal-quest-service/internal/app"
	"ordinal-quest-service/internal/domain"
)

// HistoryCache caches recent-history reads in Redis in front of a durable repository.
// Lists are stored as JSON under ordinal:history:{gen}:{limit}; every successful Create bumps
// ordinal:history:gen so older lists are never read again and simply expire.
// Redis errors are not fatal: reads fall through to the repository.
type HistoryCache struct {
	client *redis.Client
	next   app.SessionRepository
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewHistoryCache(client *redis.Client, next app.SessionRepository, ttl time.Duration) *HistoryCache {
	return &HistoryCache{
		client: client,
		next:   next,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *HistoryCache) Create(ctx context.Context, rec domain.NewGameSession, completedAt time.Time) (domain.GameSession, error) {
	stored, err := c.next.Create(ctx, rec, completedAt)
	if err != nil {
		return domain.GameSession{}, err
	}
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		log.Warn().Err(err).Msg("invalidate history cache")
	}
	return stored, nil
}

func (c *HistoryCache) Recent(ctx context.Context, limit int) ([]domain.GameSession, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("history cache unavailable")
		return c.next.Recent(ctx, limit)
	}
	key := historyKey(gen, limit)
	if records, ok := c.cached(ctx, key); ok {
		return records, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if records, ok := c.cached(ctx, key); ok {
			return records, nil
		}
		records, err := c.next.Recent(ctx, limit)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(records); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.GameSession), nil
}

const generationKey = "ordinal:history:gen"

func historyKey(gen string, limit int) string {
	return "ordinal:history:" + gen + ":" + strconv.Itoa(limit)
}

func (c *HistoryCache) generation(ctx context.Context) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

func (c *HistoryCache) cached(ctx context.Context, key string) ([]domain.GameSession, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var records []domain.GameSession
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false
	}
	if records == nil {
		records = []domain.GameSession{}
	}
	return records, true
}

func (c *HistoryCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
