package server

import "sync"

// Registry assigns notification ids and tracks open sessions.
//
// Ids start at 1 and grow by one per new notification. Wrapping around
// after 2^32-1 notifications is not handled.
type Registry struct {
	mu       sync.Mutex
	last     uint32
	sessions map[uint32]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: map[uint32]*Session{},
	}
}

// NextID reserves a fresh id.
func (r *Registry) NextID() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextLocked()
}

func (r *Registry) nextLocked() uint32 {
	r.last++
	return r.last
}

// open registers the session built for the assigned id. When replacesID
// names an open session, that session is superseded and its id reused.
func (r *Registry) open(replacesID uint32, build func(id uint32) *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := replacesID
	old, replacing := r.sessions[replacesID]
	if replacesID == 0 || !replacing {
		id = r.nextLocked()
	}
	s := build(id)
	r.sessions[id] = s
	if replacing {
		old.replace()
	}
	return s
}

// retire drops s once it decided to close. It returns false if a
// replacement already took over its id; the replacement then owns the id
// and s must end without a signal. A retired id is never reused by open.
func (r *Registry) retire(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[s.ID()] != s {
		return false
	}
	delete(r.sessions, s.ID())
	return true
}

// Get returns the open session for id.
func (r *Registry) Get(id uint32) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
