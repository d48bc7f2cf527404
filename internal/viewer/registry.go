package viewer

import "sync"

// DefaultRegistryLimit bounds how many reports stay loaded at once.
const DefaultRegistryLimit = 8

// Registry keeps the live sessions of a server. Adding past the limit
// closes the session added first.
type Registry struct {
	mu       sync.Mutex
	limit    int
	sessions map[string]*Session
	order    []string // ids in the order they were added
}

// NewRegistry creates a Registry holding at most limit sessions.
func NewRegistry(limit int) *Registry {
	if limit <= 0 {
		limit = DefaultRegistryLimit
	}
	return &Registry{limit: limit, sessions: make(map[string]*Session)}
}

// Add registers s and returns the sessions evicted to make room.
func (r *Registry) Add(s *Session) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; ok {
		r.forget(s.ID)
	}
	r.sessions[s.ID] = s
	r.order = append(r.order, s.ID)
	var evicted []*Session
	for len(r.order) > r.limit {
		x := r.sessions[r.order[0]]
		r.forget(x.ID)
		x.Close()
		evicted = append(evicted, x)
	}
	return evicted
}

// forget drops id from the registry without closing it. r.mu must be held.
func (r *Registry) forget(id string) {
	delete(r.sessions, id)
	for i, x := range r.order {
		if x == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove closes and forgets a session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.forget(id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll closes every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.order = nil
	r.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
