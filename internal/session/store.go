package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/histweather/histweather/internal/address"
	"github.com/histweather/histweather/internal/geo"
)

var (
	// ErrNotFound is returned when no session exists for a given id.
	ErrNotFound = errors.New("no such search session")
)

// Session binds one interactive address-input widget to its server-side
// Searcher. Results flow through a latest-wins mailbox so a waiting client
// always sees the outcome of the newest keystroke.
type Session struct {
	ID       string
	Searcher *address.Searcher

	results chan []address.Candidate

	mu       sync.Mutex
	lastSeen time.Time
	selected *address.Selection
}

// push delivers a result emission, replacing any undelivered older one.
func (s *Session) push(candidates []address.Candidate) {
	for {
		select {
		case s.results <- candidates:
			return
		default:
			select {
			case <-s.results:
			default:
			}
		}
	}
}

// Await blocks until the next result emission or the timeout. The bool is
// false on timeout, which callers treat as "still searching".
func (s *Session) Await(timeout time.Duration) ([]address.Candidate, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case candidates := <-s.results:
		return candidates, true
	case <-timer.C:
		return nil, false
	}
}

// Touch records client activity for idle expiry.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) recordSelection(sel address.Selection) {
	s.mu.Lock()
	s.selected = &sel
	s.mu.Unlock()
}

// Selected returns the finalized choice, if any.
func (s *Session) Selected() *address.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Store is a concurrency-safe registry of live search sessions with idle
// expiry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl      time.Duration
	geocoder address.Geocoder
	opts     []address.Option
}

// NewStore creates a Store. Sessions idle longer than ttl are removed by
// PurgeExpired. The options are applied to every session's Searcher.
func NewStore(geocoder address.Geocoder, ttl time.Duration, opts ...address.Option) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		geocoder: geocoder,
		opts:     opts,
	}
}

// Create opens a new session. The reference coordinate, when non-nil, seeds
// proximity ranking for the session's searches.
func (st *Store) Create(reference *geo.Coordinate) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		results:  make(chan []address.Candidate, 1),
		lastSeen: time.Now(),
	}

	s.Searcher = address.NewSearcher(st.geocoder, address.Sinks{
		Results:  s.push,
		Selected: s.recordSelection,
		Error: func(err error) {
			log.Printf("session %s: address lookup failed: %v", s.ID, err)
		},
	}, st.opts...)
	s.Searcher.SetReference(reference)

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	return s
}

// Get returns the session for id, refreshing its idle timer.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	s.Touch()
	return s, nil
}

// PurgeExpired closes and removes sessions idle past the TTL, returning how
// many were removed.
func (st *Store) PurgeExpired() int {
	cutoff := time.Now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		s.mu.Lock()
		expired := s.lastSeen.Before(cutoff)
		s.mu.Unlock()

		if expired {
			s.Searcher.Close()
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
