package store_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"wordweave/internal/game"
	"wordweave/internal/store"
)

// newTestDB opens a throwaway SQLite file and applies the schema.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "sql", "001_init.sql"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func TestSQLiteSaveLoadRoundTrip(t *testing.T) {
	st := store.NewSQLite(newTestDB(t))
	ctx := context.Background()

	if _, err := st.Load(ctx, "conv"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s := game.NewSession("s1", time.Now().UTC())
	s.Variant = game.VariantLadder
	s.Status = game.StatusActive
	s.Append("cat")
	s.Append("cart")
	s.Score = 3
	s.TurnCount = 1
	s.Constraint = game.Derive(s.Variant, s.History, s.TurnCount, game.Constraint{})
	if err := st.Save(ctx, "conv", s); err != nil {
		t.Fatal(err)
	}

	got, err := st.Load(ctx, "conv")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "s1" || got.Score != 3 || len(got.History) != 2 {
		t.Fatalf("round trip lost state: %+v", got)
	}
	if !got.Used["cart"] {
		t.Error("used set lost in round trip")
	}
	// Evolving constraint fields are recomputed on load.
	if got.Constraint.RequiredLength != 5 || got.Constraint.PrevWord != "cart" {
		t.Errorf("constraint not rederived: %+v", got.Constraint)
	}
}

func TestSQLiteSaveUpserts(t *testing.T) {
	st := store.NewSQLite(newTestDB(t))
	ctx := context.Background()

	s := game.NewSession("s1", time.Now().UTC())
	if err := st.Save(ctx, "conv", s); err != nil {
		t.Fatal(err)
	}
	s.Score = 42
	s.Status = game.StatusCompleted
	if err := st.Save(ctx, "conv", s); err != nil {
		t.Fatal(err)
	}

	got, err := st.Load(ctx, "conv")
	if err != nil {
		t.Fatal(err)
	}
	if got.Score != 42 || got.Status != game.StatusCompleted {
		t.Fatalf("upsert did not replace: %+v", got)
	}
}

func TestSQLiteResultsAndLeaderboards(t *testing.T) {
	st := store.NewSQLite(newTestDB(t))
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	results := []store.Result{
		{ConversationID: "a", SessionID: "s1", Variant: game.VariantChain, Score: 10, Turns: 12, Status: game.StatusCompleted, Daily: true, Date: "2024-03-01", FinishedAt: at},
		{ConversationID: "b", SessionID: "s2", Variant: game.VariantChain, Score: 10, Turns: 8, Status: game.StatusCompleted, Daily: true, Date: "2024-03-01", FinishedAt: at},
		{ConversationID: "c", SessionID: "s3", Variant: game.VariantLadder, Score: 30, Turns: 7, Status: game.StatusCompleted, Daily: false, Date: "2024-03-01", FinishedAt: at},
	}
	for _, r := range results {
		if err := st.RecordResult(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	// Same session again is ignored, not an error.
	dup := results[0]
	dup.Score = 99
	if err := st.RecordResult(ctx, dup); err != nil {
		t.Fatal(err)
	}

	rows, err := st.DailyLeaderboard(ctx, "2024-03-01", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].ConversationID != "b" {
		t.Fatalf("daily rows = %v", rows)
	}
	if rows[1].Score != 10 {
		t.Errorf("duplicate overwrote the original: %v", rows)
	}

	rows, err = st.TopScores(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0].ConversationID != "c" {
		t.Fatalf("top rows = %v", rows)
	}
}
