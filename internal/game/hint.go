// internal/game/hint.go
//
// Hint engine: suggest a legal, unused word without committing it.
// Algorithm: take the top-K embedding neighbors of the most recent word,
// filter through the same constraint check Validate uses plus uniqueness,
// then re-check existence defensively (embedding vocabularies can diverge
// from the dictionary). Hints are best-effort: one lookup attempt, no
// retries, and the session's hint counter advances whether or not a
// suggestion is found.

package game

import (
	"context"
	"errors"
	"fmt"

	"wordweave/internal/words"
)

// ErrNoHint means no candidate survived filtering.
var ErrNoHint = errors.New("no hint available")

// DefaultHintTopK is how many neighbors to consider per hint.
const DefaultHintTopK = 10

// Suggestion is a hint surfaced to the player. It is never a member of the
// session's used set and always passes the active variant's validator.
type Suggestion struct {
	Word       string
	Definition string
	Similarity float64
}

// HintEngine combines the embedding index with the validation pipeline.
type HintEngine struct {
	Dict      DictionaryClient
	Embed     EmbeddingClient
	TopK      int
	Threshold float64 // synonym acceptance threshold, same as validation
}

// Hint returns a suggestion for the session's next turn. It never mutates
// history, the used set, or score. Returns ErrNoHint when nothing
// qualifies and wraps ErrUnavailable when the embedding lookup fails.
func (h *HintEngine) Hint(ctx context.Context, s *Session) (Suggestion, error) {
	k := h.TopK
	if k <= 0 {
		k = DefaultHintTopK
	}

	source := s.LastWord()
	if source == "" {
		w, err := h.Embed.RandomWord(ctx, nil)
		if err != nil {
			return Suggestion{}, fmt.Errorf("hint seed: %w", err)
		}
		source = w
	}

	nbs, err := h.Embed.Neighbors(ctx, source, k)
	if err != nil {
		return Suggestion{}, fmt.Errorf("hint neighbors of %q: %w", source, err)
	}

	for _, nb := range nbs {
		cand := words.Normalize(nb.Word)
		if cand == "" || s.Used[cand] {
			continue
		}
		reason, _, err := CheckConstraint(ctx, h.Embed, s.Variant, s.Constraint, cand, h.Threshold)
		if err != nil || reason != "" {
			continue
		}
		if ok, err := h.Dict.Exists(ctx, cand); err != nil || !ok {
			continue
		}
		def, _ := h.Dict.Define(ctx, cand) // best effort
		return Suggestion{Word: cand, Definition: def, Similarity: nb.Similarity}, nil
	}
	return Suggestion{}, ErrNoHint
}
