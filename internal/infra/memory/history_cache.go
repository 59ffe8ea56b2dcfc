package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ordinal-quest-service/internal/app"
	"ordinal-quest-service/internal/domain"
)

// HistoryCache caches Recent results per limit with TTL and drops them whenever a new record
// is appended, so readers never see a list older than the last successful save.
type HistoryCache struct {
	next  app.SessionRepository
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	gen   uint64
	cache map[int]cachedHistory
}

type cachedHistory struct {
	records   []domain.GameSession
	gen       uint64
	expiresAt time.Time
}

func NewHistoryCache(next app.SessionRepository, ttl time.Duration) *HistoryCache {
	return &HistoryCache{
		next:  next,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[int]cachedHistory),
	}
}

func (c *HistoryCache) Create(ctx context.Context, rec domain.NewGameSession, completedAt time.Time) (domain.GameSession, error) {
	stored, err := c.next.Create(ctx, rec, completedAt)
	if err != nil {
		return domain.GameSession{}, err
	}
	c.mu.Lock()
	c.gen++
	c.cache = make(map[int]cachedHistory)
	c.mu.Unlock()
	return stored, nil
}

func (c *HistoryCache) Recent(ctx context.Context, limit int) ([]domain.GameSession, error) {
	if records, ok := c.lookup(limit); ok {
		return records, nil
	}

	result, err, _ := c.sf.Do(strconv.Itoa(limit), func() (interface{}, error) {
		if records, ok := c.lookup(limit); ok {
			return records, nil
		}
		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		records, err := c.next.Recent(ctx, limit)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// a Create that raced with the load already invalidated this generation
		if c.gen == gen {
			c.cache[limit] = cachedHistory{
				records:   records,
				gen:       gen,
				expiresAt: c.clock().Add(c.ttlWithJitter()),
			}
		}
		c.mu.Unlock()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(result.([]domain.GameSession)), nil
}

func (c *HistoryCache) lookup(limit int) ([]domain.GameSession, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[limit]
	if !ok || entry.gen != c.gen || !entry.expiresAt.After(now) {
		return nil, false
	}
	return clone(entry.records), true
}

func (c *HistoryCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func clone(records []domain.GameSession) []domain.GameSession {
	out := make([]domain.GameSession, len(records))
	copy(out, records)
	return out
}
