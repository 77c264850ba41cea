package chat

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a StateStore backed by in-process maps, for single-instance
// deployments and tests. Expiry is driven by the periodic sweeper.
type MemoryStore struct {
	mu       sync.Mutex
	states   map[string]State
	sessions map[string]SideSession
	recent   map[string]time.Time

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states:   make(map[string]State),
		sessions: make(map[string]SideSession),
		recent:   make(map[string]time.Time),
		now:      time.Now,
	}
}

// State returns the requester's conversation state, or nil when absent.
func (s *MemoryStore) State(_ context.Context, requesterID string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.states[requesterID]; ok {
		return &st, nil
	}
	return nil, nil
}

// SaveState stores the requester's conversation state.
func (s *MemoryStore) SaveState(_ context.Context, requesterID string, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[requesterID] = *st
	return nil
}

// ClearState destroys the requester's conversation state.
func (s *MemoryStore) ClearState(_ context.Context, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, requesterID)
	return nil
}

// Session returns the requester's side session, or nil when absent.
func (s *MemoryStore) Session(_ context.Context, requesterID string) (*SideSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[requesterID]; ok {
		return &sess, nil
	}
	return nil, nil
}

// SaveSession stores the requester's side session.
func (s *MemoryStore) SaveSession(_ context.Context, requesterID string, sess *SideSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[requesterID] = *sess
	return nil
}

// ClearSession destroys the requester's side session.
func (s *MemoryStore) ClearSession(_ context.Context, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, requesterID)
	return nil
}

// MarkRecentBooking records the post-booking suppression marker.
func (s *MemoryStore) MarkRecentBooking(_ context.Context, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent[requesterID] = s.now()
	return nil
}

// ConsumeRecentBooking reports whether an unexpired marker existed and clears it.
func (s *MemoryStore) ConsumeRecentBooking(_ context.Context, requesterID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts, ok := s.recent[requesterID]
	if !ok {
		return false, nil
	}
	delete(s.recent, requesterID)
	return s.now().Sub(ts) <= RecentBookingTTL, nil
}

// ExpireStates drops conversation states idle since before olderThan.
func (s *MemoryStore) ExpireStates(_ context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, st := range s.states {
		if st.LastContactAt.Before(olderThan) {
			delete(s.states, id)
			expired++
		}
	}
	return expired, nil
}

// ExpireSessions drops idle side sessions and returns the affected requesters.
func (s *MemoryStore) ExpireSessions(_ context.Context, olderThan time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []string
	for id, sess := range s.sessions {
		if sess.LastContactAt.Before(olderThan) {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	return expired, nil
}
