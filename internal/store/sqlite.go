// internal/store/sqlite.go
//
// SQLite-backed Store. Sessions are persisted as JSON snapshots keyed by
// conversation ID (one live session per conversation, upserted at boundary
// transitions); terminal results get their own rows for leaderboards.
// Schema lives in sql/001_init.sql, applied by the migration runner at
// startup.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"wordweave/internal/game"
)

// SQLite implements Store over a *sql.DB opened with the sqlite3 driver.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an already-opened database handle.
func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

func (s *SQLite) Load(ctx context.Context, conversationID string) (*game.Session, error) {
	var snapshot string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM sessions WHERE conversation_id=?`, conversationID,
	).Scan(&snapshot)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess game.Session
	if err := json.Unmarshal([]byte(snapshot), &sess); err != nil {
		return nil, fmt.Errorf("decode session snapshot: %w", err)
	}
	if sess.Used == nil {
		sess.Used = map[string]bool{}
	}
	// The evolving constraint fields are a cache; recompute rather than
	// trusting a possibly stale snapshot.
	sess.Constraint = game.Derive(sess.Variant, sess.History, sess.TurnCount, sess.Constraint)
	return &sess, nil
}

func (s *SQLite) Save(ctx context.Context, conversationID string, sess *game.Session) error {
	snapshot, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (conversation_id, session_id, status, variant, daily, score, snapshot, updated_at)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			session_id=excluded.session_id,
			status=excluded.status,
			variant=excluded.variant,
			daily=excluded.daily,
			score=excluded.score,
			snapshot=excluded.snapshot,
			updated_at=excluded.updated_at`,
		conversationID, sess.ID, string(sess.Status), string(sess.Variant),
		boolInt(sess.Daily), sess.Score, string(snapshot),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLite) RecordResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO results
			(session_id, conversation_id, variant, score, turns, hints, skips, status, daily, date, finished_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		r.SessionID, r.ConversationID, string(r.Variant), r.Score, r.Turns,
		r.Hints, r.Skips, string(r.Status), boolInt(r.Daily), r.Date,
		r.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

func (s *SQLite) DailyLeaderboard(ctx context.Context, date string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryRows(ctx, `
		SELECT conversation_id, variant, score, turns
		FROM results
		WHERE daily=1 AND date=?
		ORDER BY score DESC, turns ASC, finished_at ASC
		LIMIT ?`, date, limit)
}

func (s *SQLite) TopScores(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryRows(ctx, `
		SELECT conversation_id, variant, score, turns
		FROM results
		ORDER BY score DESC, turns ASC, finished_at ASC
		LIMIT ?`, limit)
}

func (s *SQLite) queryRows(ctx context.Context, q string, args ...any) ([]LeaderboardRow, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}
	defer rows.Close()

	out := []LeaderboardRow{}
	for rows.Next() {
		var r LeaderboardRow
		var variant string
		if err := rows.Scan(&r.ConversationID, &variant, &r.Score, &r.Turns); err != nil {
			return nil, err
		}
		r.Variant = game.Variant(variant)
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
