package game

import "sync"

// Registry is the process-wide room table. Room identifiers are opaque
// strings; a session is created lazily on first join and removed once both
// player slots are free.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for roomID, creating it when the room has
// not been seen before. Concurrent first joins to the same room get the same
// session.
func (that *Registry) GetOrCreate(roomID string) *Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[roomID]
	if !ok {
		session = NewSession(roomID)
		that.sessions[roomID] = session
	}

	return session
}

// Get returns the session for roomID if one exists.
func (that *Registry) Get(roomID string) (*Session, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[roomID]

	return session, ok
}

// Remove deletes the room from the table. Removing an unknown room is a no-op.
func (that *Registry) Remove(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, roomID)
}

// RemoveIfEmpty deletes the room only when both its player slots are free.
// The check and the delete happen under the registry lock and the session is
// marked closed in the same step, so a concurrent join either seats its
// player first (the room stays) or finds the session closed and retries
// against a fresh one. Reports whether the room was removed.
func (that *Registry) RemoveIfEmpty(roomID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[roomID]
	if !ok {
		return false
	}

	if !session.closeIfEmpty() {
		return false
	}

	delete(that.sessions, roomID)

	return true
}

// Len returns the number of live rooms.
func (that *Registry) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.sessions)
}
