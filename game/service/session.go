package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/warpgame/game/engine"
)

// Session represents an active game session. The game and its history are
// only touched while holding the session's lock, so different sessions never
// contend with each other.
type Session struct {
	ID        string
	ConfigID  string
	Config    *engine.GameConfig
	CreatedAt time.Time

	lastAccessed atomic.Int64

	mu      sync.Mutex
	game    engine.Engine
	history []HistoryEntry
}

// CommitFunc is called with the new state and the recorded entry after a
// successful action, while the session lock is still held.
type CommitFunc func(state *engine.State, entry *HistoryEntry)

// NewSession wraps a freshly created game.
func NewSession(id, configID string, config *engine.GameConfig, game engine.Engine) *Session {
	now := time.Now()
	s := &Session{
		ID:        id,
		ConfigID:  configID,
		Config:    config,
		CreatedAt: now,
		game:      game,
	}
	s.lastAccessed.Store(now.UnixNano())
	return s
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.lastAccessed.Store(time.Now().UnixNano())
}

// LastAccessedAt reports when the session was last used.
func (s *Session) LastAccessedAt() time.Time {
	return time.Unix(0, s.lastAccessed.Load())
}

// View runs fn with exclusive access to the game. fn must not keep g.
func (s *Session) View(fn func(g engine.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.game)
}

// Snapshot returns the current game state.
func (s *Session) Snapshot() *engine.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// Act runs fn with exclusive access to the game. When fn reports success the
// entry it filled in is stamped and appended to the history, then commit (if
// not nil) runs before the lock is released, so commits for one session happen
// in action order. The returned state is taken under the same lock.
func (s *Session) Act(action string, fn func(g engine.Engine, e *HistoryEntry) (bool, error), commit CommitFunc) (bool, *engine.State, *HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := HistoryEntry{
		Action: action,
		Turn:   s.game.Turn(),
		Color:  s.game.ActiveColor(),
	}
	ok, err := fn(s.game, &entry)
	if err != nil {
		return false, nil, nil, err
	}
	state := s.game.Snapshot()
	if !ok {
		return false, state, nil, nil
	}

	entry.ID = uuid.NewString()
	entry.Seq = len(s.history) + 1
	entry.Version = s.game.Version()
	entry.Timestamp = time.Now()
	s.history = append(s.history, entry)
	if commit != nil {
		commit(state, &entry)
	}
	return true, state, &entry, nil
}

// History returns a copy of the recorded actions, oldest first.
func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]HistoryEntry(nil), s.history...)
}
