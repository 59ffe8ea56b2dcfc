package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// GameRegistry is a Redis-aware implementation of app.GameRegistry.
// Notes:
//   - Counts come from the local map; each session lives on the instance that owns its socket.
//   - Redis holds a liveness marker per game so operators can see games across instances
//     (KEYS ordinal:game:*). Markers expire on their own if an instance dies.
type GameRegistry struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	games  map[string]struct{}
}

func NewGameRegistry(client *redis.Client, ttl time.Duration) *GameRegistry {
	return &GameRegistry{
		client: client,
		ttl:    ttl,
		games:  make(map[string]struct{}),
	}
}

func (r *GameRegistry) Register(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[gameID] = struct{}{}
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), r.key(gameID), "1", r.ttl).Err()
}

func (r *GameRegistry) Unregister(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[gameID]; !ok {
		return
	}
	delete(r.games, gameID)
	_ = r.client.Del(context.Background(), r.key(gameID)).Err()
}

func (r *GameRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

func (r *GameRegistry) key(gameID string) string {
	return "ordinal:game:" + gameID
}
