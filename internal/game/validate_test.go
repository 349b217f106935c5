package game_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"wordweave/internal/game"
)

// fakeDict is an in-memory DictionaryClient for tests.
type fakeDict struct {
	known map[string]string // word -> definition ("" means no definition)
	fails int               // remaining calls that return ErrUnavailable
	calls int
}

func (d *fakeDict) Exists(_ context.Context, word string) (bool, error) {
	d.calls++
	if d.fails > 0 {
		d.fails--
		return false, game.ErrUnavailable
	}
	_, ok := d.known[word]
	return ok, nil
}

func (d *fakeDict) Define(_ context.Context, word string) (string, error) {
	def, ok := d.known[word]
	if !ok || def == "" {
		return "", game.ErrNotFound
	}
	return def, nil
}

// fakeEmbed is an in-memory EmbeddingClient for tests.
type fakeEmbed struct {
	sims      map[string]float64 // "a|b" -> similarity (symmetric)
	neighbors map[string][]game.Neighbor
	random    []string // served in order by RandomWord
	randIdx   int
}

func (e *fakeEmbed) Similarity(_ context.Context, a, b string) (float64, error) {
	if s, ok := e.sims[a+"|"+b]; ok {
		return s, nil
	}
	if s, ok := e.sims[b+"|"+a]; ok {
		return s, nil
	}
	return 0, game.ErrUnknownWord
}

func (e *fakeEmbed) Neighbors(_ context.Context, word string, k int) ([]game.Neighbor, error) {
	nbs, ok := e.neighbors[word]
	if !ok {
		return nil, game.ErrUnknownWord
	}
	if len(nbs) > k {
		nbs = nbs[:k]
	}
	return nbs, nil
}

func (e *fakeEmbed) RandomWord(_ context.Context, filter func(string) bool) (string, error) {
	for ; e.randIdx < len(e.random); e.randIdx++ {
		w := e.random[e.randIdx]
		if filter == nil || filter(w) {
			e.randIdx++
			return w, nil
		}
	}
	return "", game.ErrNotFound
}

// activeSession builds a mid-game session for a variant with the given
// history, seed word first.
func activeSession(v game.Variant, history ...string) *game.Session {
	s := game.NewSession("test-session", time.Now())
	s.Variant = v
	s.Status = game.StatusActive
	for _, w := range history {
		s.Append(w)
	}
	var fixed game.Constraint
	if v == game.VariantSprint && len(history) > 0 {
		fixed.Letter = string([]rune(history[0])[0])
	}
	s.Constraint = game.Derive(v, s.History, s.TurnCount, fixed)
	return s
}

func deps(d *fakeDict, e *fakeEmbed) game.Deps {
	return game.Deps{Dict: d, Embed: e, SimilarityThreshold: 0.8}
}

func TestValidateChain(t *testing.T) {
	dict := &fakeDict{known: map[string]string{"apple": "", "elephant": "", "banana": ""}}
	s := activeSession(game.VariantChain, "apple")

	v, err := game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "Elephant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Accepted || v.Word != "elephant" {
		t.Fatalf("expected elephant accepted, got %+v", v)
	}
	if v.Next.NextLetter != "t" {
		t.Errorf("next constraint letter = %q, want t", v.Next.NextLetter)
	}

	v, err = game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "banana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Accepted || v.Reason != game.ReasonWrongStartLetter {
		t.Fatalf("expected wrong_start_letter, got %+v", v)
	}
}

func TestValidateExistenceAndUniqueness(t *testing.T) {
	dict := &fakeDict{known: map[string]string{"apple": "", "elk": ""}}
	s := activeSession(game.VariantChain, "apple")

	cases := []struct {
		word string
		want game.Reason
	}{
		{"zzzzzz", game.ReasonNotAWord},   // not in dictionary
		{"not a word", game.ReasonNotAWord},
		{"apple", game.ReasonAlreadyUsed}, // uniqueness beats the chain rule
	}
	for _, c := range cases {
		v, err := game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, c.word)
		if err != nil {
			t.Fatalf("Validate(%q): %v", c.word, err)
		}
		if v.Accepted || v.Reason != c.want {
			t.Errorf("Validate(%q) = %+v, want reason %s", c.word, v, c.want)
		}
	}
}

func TestValidateDictionaryFailure(t *testing.T) {
	dict := &fakeDict{known: map[string]string{}, fails: 1}
	s := activeSession(game.VariantChain, "apple")

	_, err := game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "elk")
	if !errors.Is(err, game.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	// The failure must not have consumed the word.
	if s.Used["elk"] {
		t.Error("failed validation must not mutate the used set")
	}
}

func TestValidateLadder(t *testing.T) {
	dict := &fakeDict{known: map[string]string{"cat": "", "cart": "", "crate": "", "go": "", "lanterns": ""}}
	s := activeSession(game.VariantLadder, "cat")

	if s.Constraint.RequiredLength != 4 {
		t.Fatalf("required length after 3-letter seed = %d, want 4", s.Constraint.RequiredLength)
	}

	v, err := game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "go")
	if err != nil {
		t.Fatal(err)
	}
	if v.Accepted || v.Reason != game.ReasonWrongLength {
		t.Fatalf("expected wrong_length, got %+v", v)
	}

	v, err = game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "cart")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Accepted || v.Win {
		t.Fatalf("expected plain acceptance, got %+v", v)
	}
	if v.Next.RequiredLength != 5 {
		t.Errorf("next required length = %d, want 5", v.Next.RequiredLength)
	}
}

func TestValidateLadderWin(t *testing.T) {
	dict := &fakeDict{known: map[string]string{"lanterns": ""}}
	s := activeSession(game.VariantLadder, "cat", "cart", "crate", "stream", "lantern")

	if s.Constraint.RequiredLength != 8 {
		t.Fatalf("required length = %d, want 8", s.Constraint.RequiredLength)
	}
	v, err := game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "lanterns")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Accepted || !v.Win {
		t.Fatalf("expected winning acceptance at max length, got %+v", v)
	}
}

func TestValidateScramble(t *testing.T) {
	dict := &fakeDict{known: map[string]string{"apple": "", "elephant": "", "echo": ""}}
	s := activeSession(game.VariantScramble, "apple")

	if s.Constraint.Overlap != 1 {
		t.Fatalf("initial overlap = %d, want 1", s.Constraint.Overlap)
	}

	// elephant starts with e and shares a, l, e with apple.
	v, err := game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "elephant")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Accepted {
		t.Fatalf("expected elephant accepted, got %+v", v)
	}

	// Tighten the overlap requirement; echo shares only e.
	s.Constraint.Overlap = 3
	v, err = game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "echo")
	if err != nil {
		t.Fatal(err)
	}
	if v.Accepted || v.Reason != game.ReasonPatternMismatch {
		t.Fatalf("expected pattern_mismatch, got %+v", v)
	}
}

func TestValidateSynonym(t *testing.T) {
	dict := &fakeDict{known: map[string]string{"happy": "", "yare": "", "yucky": "", "yonder": ""}}
	embed := &fakeEmbed{sims: map[string]float64{
		"yare|happy":  0.85,
		"yucky|happy": 0.2,
	}}
	s := activeSession(game.VariantSynonym, "happy")

	v, err := game.Validate(context.Background(), deps(dict, embed), s, "yare")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Accepted || v.Similarity != 0.85 {
		t.Fatalf("expected acceptance with similarity, got %+v", v)
	}

	v, err = game.Validate(context.Background(), deps(dict, embed), s, "yucky")
	if err != nil {
		t.Fatal(err)
	}
	if v.Accepted || v.Reason != game.ReasonNotSynonymEnough {
		t.Fatalf("expected not_synonym_enough, got %+v", v)
	}

	// Outside the embedding vocabulary counts as not close enough,
	// not as a dependency failure.
	v, err = game.Validate(context.Background(), deps(dict, embed), s, "yonder")
	if err != nil {
		t.Fatal(err)
	}
	if v.Accepted || v.Reason != game.ReasonNotSynonymEnough {
		t.Fatalf("expected not_synonym_enough for unknown word, got %+v", v)
	}
}

func TestValidateSprint(t *testing.T) {
	dict := &fakeDict{known: map[string]string{"apple": "", "apricot": "", "banana": ""}}
	s := activeSession(game.VariantSprint, "apple")

	v, err := game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "apricot")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Accepted {
		t.Fatalf("expected apricot accepted, got %+v", v)
	}

	v, err = game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "banana")
	if err != nil {
		t.Fatal(err)
	}
	if v.Accepted || v.Reason != game.ReasonWrongLetter {
		t.Fatalf("expected wrong_letter, got %+v", v)
	}
}

func TestValidateForbidden(t *testing.T) {
	dict := &fakeDict{known: map[string]string{"apple": "", "echo": "", "ego": ""}}
	s := activeSession(game.VariantForbidden, "apple")
	s.Constraint.Forbidden = []string{"c"}

	v, err := game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "echo")
	if err != nil {
		t.Fatal(err)
	}
	if v.Accepted || v.Reason != game.ReasonForbiddenLetter {
		t.Fatalf("expected contains_forbidden_letter, got %+v", v)
	}

	v, err = game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "ego")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Accepted {
		t.Fatalf("expected ego accepted, got %+v", v)
	}
	if len(v.Next.Forbidden) != 1 || v.Next.Forbidden[0] != "c" {
		t.Errorf("forbidden set must carry over, got %v", v.Next.Forbidden)
	}
}

func TestValidateNormalizesBeforeChecking(t *testing.T) {
	dict := &fakeDict{known: map[string]string{"eclair": ""}}
	s := activeSession(game.VariantChain, "apple")

	v, err := game.Validate(context.Background(), deps(dict, &fakeEmbed{}), s, "  Éclair ")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Accepted || v.Word != "eclair" {
		t.Fatalf("expected folded acceptance, got %+v", v)
	}
}
