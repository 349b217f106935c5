// internal/store/store.go
//
// Session persistence interface plus the in-memory implementation.
// The session manager calls Save only at session-boundary transitions
// (created, variant selected, terminal), never per turn, to bound I/O.
//
// Characteristics of the memory store:
//   - Keyed by conversation ID, one session each.
//   - Concurrency-safe via RWMutex.
//   - Stores deep copies so callers cannot alias internal state.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"wordweave/internal/game"
)

// ErrNotFound means no session is persisted for the conversation.
var ErrNotFound = errors.New("session not found")

// Result is the frozen outcome of a terminal session, kept for score
// reporting and leaderboards.
type Result struct {
	ConversationID string
	SessionID      string
	Variant        game.Variant
	Score          int
	Turns          int
	Hints          int
	Skips          int
	Status         game.Status
	Daily          bool
	Date           string // YYYY-MM-DD, UTC
	FinishedAt     time.Time
}

// LeaderboardRow is one ranked entry of a leaderboard query.
type LeaderboardRow struct {
	ConversationID string       `json:"conversationId"`
	Variant        game.Variant `json:"variant"`
	Score          int          `json:"score"`
	Turns          int          `json:"turns"`
}

// Store persists sessions and terminal results. Implementations may be
// backed by memory (this package) or SQLite (sqlite.go).
type Store interface {
	// Load retrieves the persisted session for a conversation.
	// Returns ErrNotFound if none exists.
	Load(ctx context.Context, conversationID string) (*game.Session, error)

	// Save persists or replaces the session for a conversation.
	Save(ctx context.Context, conversationID string, s *game.Session) error

	// RecordResult stores a terminal session's outcome for leaderboards.
	// Recording the same session twice is a no-op.
	RecordResult(ctx context.Context, r Result) error

	// DailyLeaderboard ranks daily-mode results for one date.
	DailyLeaderboard(ctx context.Context, date string, limit int) ([]LeaderboardRow, error)

	// TopScores ranks all results by final score.
	TopScores(ctx context.Context, limit int) ([]LeaderboardRow, error)
}

// memory is the map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
	results  []Result
	recorded map[string]bool // session IDs already recorded
}

// NewMemoryStore constructs an in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		sessions: make(map[string]*game.Session),
		recorded: make(map[string]bool),
	}
}

func (m *memory) Load(_ context.Context, conversationID string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[conversationID]; ok {
		return s.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *memory) Save(_ context.Context, conversationID string, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[conversationID] = s.Clone()
	return nil
}

func (m *memory) RecordResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recorded[r.SessionID] {
		return nil
	}
	m.recorded[r.SessionID] = true
	m.results = append(m.results, r)
	return nil
}

func (m *memory) DailyLeaderboard(_ context.Context, date string, limit int) ([]LeaderboardRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return rank(m.results, limit, func(r Result) bool { return r.Daily && r.Date == date })
}

func (m *memory) TopScores(_ context.Context, limit int) ([]LeaderboardRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return rank(m.results, limit, func(Result) bool { return true })
}

// rank filters and orders results by score desc, then turns asc.
func rank(results []Result, limit int, keep func(Result) bool) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 20
	}
	out := []LeaderboardRow{}
	for _, r := range results {
		if keep(r) {
			out = append(out, LeaderboardRow{
				ConversationID: r.ConversationID,
				Variant:        r.Variant,
				Score:          r.Score,
				Turns:          r.Turns,
			})
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && better(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func better(a, b LeaderboardRow) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Turns < b.Turns
}
