// internal/daily/daily.go
//
// Deterministic per-date seeding for daily-challenge sessions: every
// conversation that starts a daily game on the same date gets the same
// seed word (and, for Alphabet Sprint, the same letter), so the per-date
// leaderboard compares like with like.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Index returns a deterministic index in [0, n) for a date using
// HMAC(salt, dateKey).
func Index(salt, dateKey string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(dateKey))
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n))
}
