package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"wordweave/internal/game"
	"wordweave/internal/store"
)

func TestMemoryLoadMissing(t *testing.T) {
	m := store.NewMemoryStore()
	if _, err := m.Load(context.Background(), "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemorySaveLoadIsolation(t *testing.T) {
	m := store.NewMemoryStore()
	ctx := context.Background()

	s := game.NewSession("s1", time.Now())
	s.Append("apple")
	if err := m.Save(ctx, "conv", s); err != nil {
		t.Fatal(err)
	}

	// Mutating the original after Save must not leak into the store.
	s.Append("elk")
	got, err := m.Load(ctx, "conv")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.History) != 1 {
		t.Errorf("stored history = %v, want the snapshot at Save time", got.History)
	}

	// Mutating a loaded copy must not leak either.
	got.Append("koala")
	again, err := m.Load(ctx, "conv")
	if err != nil {
		t.Fatal(err)
	}
	if len(again.History) != 1 {
		t.Errorf("loaded copy aliases store state: %v", again.History)
	}
}

func TestMemoryRecordResultDedupes(t *testing.T) {
	m := store.NewMemoryStore()
	ctx := context.Background()

	r := store.Result{ConversationID: "conv", SessionID: "s1", Variant: game.VariantChain, Score: 5, Date: "2024-03-01"}
	if err := m.RecordResult(ctx, r); err != nil {
		t.Fatal(err)
	}
	r.Score = 99
	if err := m.RecordResult(ctx, r); err != nil {
		t.Fatal(err)
	}

	rows, err := m.TopScores(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Score != 5 {
		t.Fatalf("duplicate session recorded: %v", rows)
	}
}

func TestMemoryLeaderboards(t *testing.T) {
	m := store.NewMemoryStore()
	ctx := context.Background()

	results := []store.Result{
		{ConversationID: "a", SessionID: "s1", Variant: game.VariantChain, Score: 10, Turns: 12, Daily: true, Date: "2024-03-01"},
		{ConversationID: "b", SessionID: "s2", Variant: game.VariantChain, Score: 10, Turns: 8, Daily: true, Date: "2024-03-01"},
		{ConversationID: "c", SessionID: "s3", Variant: game.VariantLadder, Score: 30, Turns: 7, Daily: false, Date: "2024-03-01"},
		{ConversationID: "d", SessionID: "s4", Variant: game.VariantChain, Score: 4, Turns: 5, Daily: true, Date: "2024-02-29"},
	}
	for _, r := range results {
		if err := m.RecordResult(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	// Daily board: only daily results for the date, score desc then turns asc.
	rows, err := m.DailyLeaderboard(ctx, "2024-03-01", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("daily rows = %v, want 2", rows)
	}
	if rows[0].ConversationID != "b" || rows[1].ConversationID != "a" {
		t.Errorf("tie must break on fewer turns: %v", rows)
	}

	// Top scores: everything, best first, limit respected.
	rows, err = m.TopScores(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].ConversationID != "c" {
		t.Errorf("top rows = %v, want c first", rows)
	}
}
