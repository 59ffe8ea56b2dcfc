package memory

import "sync"

// GameRegistry is an in-memory implementation of app.GameRegistry.
type GameRegistry struct {
	mu    sync.RWMutex
	games map[string]struct{}
}

func NewGameRegistry() *GameRegistry {
	return &GameRegistry{games: make(map[string]struct{})}
}

func (r *GameRegistry) Register(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[gameID] = struct{}{}
}

func (r *GameRegistry) Unregister(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, gameID)
}

func (r *GameRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
