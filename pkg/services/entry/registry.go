package entry

import (
	"sync"

	"github.com/google/uuid"
)

// Registry keeps the open entry sessions of the web API keyed by id.
// Every session shares the same dependencies.
type Registry struct {
	mu       sync.Mutex
	deps     Dependencies
	opts     Options
	sessions map[string]*Orchestrator
}

func NewRegistry(deps Dependencies, opts Options) *Registry {
	return &Registry{
		deps:     deps,
		opts:     opts,
		sessions: make(map[string]*Orchestrator),
	}
}

// Create registers a new, not yet opened session
func (r *Registry) Create() (string, *Orchestrator) {
	id := uuid.NewString()
	session := NewOrchestrator(r.deps, r.opts)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = session
	return id, session
}

func (r *Registry) Get(id string) (*Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	return session, ok
}

// Remove closes the session and forgets it
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		session.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close closes every session
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Orchestrator)
	r.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
