package daily_test

import (
	"testing"
	"time"

	"wordweave/internal/daily"
)

func TestDateKeyIsUTC(t *testing.T) {
	// 23:30 in UTC+5 is 18:30 UTC the same day; 02:00 in UTC-5 is 07:00
	// UTC the same day. Both must key on the UTC date.
	east := time.Date(2024, 3, 1, 1, 30, 0, 0, time.FixedZone("east", 5*3600))
	if got := daily.DateKey(east); got != "2024-02-29" {
		t.Errorf("DateKey = %q, want 2024-02-29", got)
	}
	utc := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := daily.DateKey(utc); got != "2024-03-01" {
		t.Errorf("DateKey = %q, want 2024-03-01", got)
	}
}

func TestIndexDeterministicAndInRange(t *testing.T) {
	a := daily.Index("salt", "2024-03-01", 100)
	b := daily.Index("salt", "2024-03-01", 100)
	if a != b {
		t.Fatalf("index not deterministic: %d vs %d", a, b)
	}
	if a < 0 || a >= 100 {
		t.Fatalf("index out of range: %d", a)
	}
	if daily.Index("salt", "x", 0) != 0 {
		t.Error("n <= 0 must yield 0")
	}
}

func TestIndexVariesWithInputs(t *testing.T) {
	base := daily.Index("salt", "2024-03-01", 1_000_000)
	if daily.Index("other-salt", "2024-03-01", 1_000_000) == base &&
		daily.Index("salt", "2024-03-02", 1_000_000) == base {
		t.Error("index ignores both salt and date")
	}
}
