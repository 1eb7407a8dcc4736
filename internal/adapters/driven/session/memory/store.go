// Package memory provides the in-process conversation context store.
//
// Sessions are held in a map keyed by caller-supplied session ID. Each
// session carries its own mutex, so concurrent exchanges on different
// sessions never contend; appends to the same session are serialized.
// A janitor goroutine evicts sessions idle past their TTL so the map
// cannot grow without bound over the process lifetime.
package memory

import (
	"sync"
	"time"

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
	"github.com/bayani-labs/lakbay/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

// Default eviction configuration.
const (
	// DefaultTTL is how long an idle session survives.
	DefaultTTL = 30 * time.Minute

	// DefaultSweepInterval is how often idle sessions are purged.
	DefaultSweepInterval = 5 * time.Minute
)

// session is one conversation's bounded history.
type session struct {
	mu         sync.Mutex
	turns      []domain.ConversationTurn
	lastAccess time.Time
}

// Store holds per-session conversation history.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	maxTurns int
	ttl      time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a session store bounded to maxTurns per session (rounded
// down to an even count; zero or negative means domain.DefaultMaxTurns).
// If ttl is positive a janitor evicts sessions idle longer than ttl,
// checking every sweep interval.
func New(maxTurns int, ttl, sweep time.Duration) *Store {
	if maxTurns <= 0 {
		maxTurns = domain.DefaultMaxTurns
	}
	if maxTurns%2 != 0 {
		maxTurns--
	}
	if sweep <= 0 {
		sweep = DefaultSweepInterval
	}

	s := &Store{
		sessions: make(map[string]*session),
		maxTurns: maxTurns,
		ttl:      ttl,
		stop:     make(chan struct{}),
	}

	if ttl > 0 {
		go s.janitor(sweep)
	}
	return s
}

// Context returns the session's turns in order, oldest first.
func (s *Store) Context(sessionID string) []domain.ConversationTurn {
	s.mu.RLock()
	sess := s.sessions[sessionID]
	s.mu.RUnlock()

	if sess == nil {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastAccess = time.Now()

	turns := make([]domain.ConversationTurn, len(sess.turns))
	copy(turns, sess.turns)
	return turns
}

// AppendExchange appends one user turn and one assistant turn atomically,
// then drops the oldest pairs until the bound holds.
func (s *Store) AppendExchange(sessionID, userText, assistantText string) {
	sess := s.getOrCreate(sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastAccess = time.Now()

	sess.turns = append(sess.turns,
		domain.ConversationTurn{Role: domain.RoleUser, Text: userText},
		domain.ConversationTurn{Role: domain.RoleAssistant, Text: assistantText},
	)

	if excess := len(sess.turns) - s.maxTurns; excess > 0 {
		// Turns arrive in pairs and maxTurns is even, so excess is too.
		kept := make([]domain.ConversationTurn, s.maxTurns)
		copy(kept, sess.turns[excess:])
		sess.turns = kept
	}
}

// Len returns the current number of turns for the session.
func (s *Store) Len(sessionID string) int {
	s.mu.RLock()
	sess := s.sessions[sessionID]
	s.mu.RUnlock()

	if sess == nil {
		return 0
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return len(sess.turns)
}

// Close stops the janitor goroutine.
func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// getOrCreate returns the session, creating it on first use.
func (s *Store) getOrCreate(sessionID string) *session {
	s.mu.RLock()
	sess := s.sessions[sessionID]
	s.mu.RUnlock()
	if sess != nil {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess = s.sessions[sessionID]; sess == nil {
		sess = &session{lastAccess: time.Now()}
		s.sessions[sessionID] = sess
	}
	return sess
}

// janitor periodically evicts sessions idle past the TTL.
func (s *Store) janitor(sweep time.Duration) {
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

// evictIdle removes sessions whose last access is older than the TTL.
func (s *Store) evictIdle() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastAccess.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			logger.Debug("Evicted idle session %s", id)
		}
	}
}
