package app

import (
	"sync"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
	"github.com/rs/zerolog/log"
)

// SessionRegistry maps live connections to the display name they chose.
// Entries exist only between SetName and Release.
type SessionRegistry struct {
	mu       sync.RWMutex
	names    map[core.ConnID]domain.DisplayName
	fallback domain.DisplayName
}

func NewSessionRegistry(fallback domain.DisplayName) *SessionRegistry {
	if fallback == "" {
		fallback = domain.AnonymousName
	}
	return &SessionRegistry{
		names:    make(map[core.ConnID]domain.DisplayName),
		fallback: fallback,
	}
}

func (r *SessionRegistry) Set(id core.ConnID, name domain.DisplayName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[id] = name
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Str("name", string(name)).Msg("name set")
}

// Lookup reports the registered name, if any.
func (r *SessionRegistry) Lookup(id core.ConnID) (domain.DisplayName, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[id]
	return name, ok
}

// Name returns the registered name or the fallback.
func (r *SessionRegistry) Name(id core.ConnID) domain.DisplayName {
	if name, ok := r.Lookup(id); ok {
		return name
	}
	return r.fallback
}

// Release drops the entry for id and returns the name it held.
func (r *SessionRegistry) Release(id core.ConnID) (domain.DisplayName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.names[id]
	delete(r.names, id)
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Bool("named", ok).Msg("released")
	return name, ok
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
