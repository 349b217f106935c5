// internal/game/validate.go
//
// Turn validation pipeline. Checks run in a fixed order and short-circuit
// on the first failure:
//   1. Existence   — the word is real (dictionary).
//   2. Uniqueness  — the normalized word has not been played this session.
//   3. Variant     — the active variant's own rule.
//
// Existence and uniqueness come first so rejection messages stay
// unambiguous and embedding lookups only run for variants that need them.

package game

import (
	"context"
	"errors"
	"fmt"

	"wordweave/internal/words"
)

// Deps bundles the external collaborators validation may consult.
type Deps struct {
	Dict                DictionaryClient
	Embed               EmbeddingClient
	SimilarityThreshold float64 // synonym acceptance threshold
}

// Verdict is the outcome of validating one candidate word.
type Verdict struct {
	Accepted   bool
	Reason     Reason     // set when rejected
	Word       string     // normalized form, set when accepted
	Next       Constraint // constraint after this word, set when accepted
	Win        bool       // variant win condition met by this word
	Similarity float64    // synonym variant: similarity to the previous word
}

// Validate runs the full pipeline for the session's active variant.
// A returned error means a dependency failed (wraps ErrUnavailable);
// a Verdict with Accepted == false is an ordinary game rejection.
func Validate(ctx context.Context, deps Deps, s *Session, raw string) (Verdict, error) {
	norm := words.Normalize(raw)
	if !words.IsWordy(norm) {
		return Verdict{Reason: ReasonNotAWord}, nil
	}

	ok, err := deps.Dict.Exists(ctx, norm)
	if err != nil {
		return Verdict{}, fmt.Errorf("existence check for %q: %w", norm, err)
	}
	if !ok {
		return Verdict{Reason: ReasonNotAWord}, nil
	}

	if s.Used[norm] {
		return Verdict{Reason: ReasonAlreadyUsed}, nil
	}

	reason, sim, err := CheckConstraint(ctx, deps.Embed, s.Variant, s.Constraint, norm, deps.SimilarityThreshold)
	if err != nil {
		return Verdict{}, err
	}
	if reason != "" {
		return Verdict{Reason: reason}, nil
	}

	next := Derive(s.Variant, append(s.History[:len(s.History):len(s.History)], norm), s.TurnCount+1, s.Constraint)
	win := s.Variant == VariantLadder && len([]rune(norm)) >= s.Constraint.MaxLength
	return Verdict{Accepted: true, Word: norm, Next: next, Win: win, Similarity: sim}, nil
}

// CheckConstraint applies only the variant rule (pipeline step 3) to an
// already-normalized word. The hint engine shares this with Validate so a
// suggestion can never fail the validator it came from. An empty Reason
// means the word passes.
func CheckConstraint(ctx context.Context, embed EmbeddingClient, v Variant, c Constraint, norm string, threshold float64) (Reason, float64, error) {
	switch v {
	case VariantChain:
		if !startsWith(norm, c.NextLetter) {
			return ReasonWrongStartLetter, 0, nil
		}

	case VariantLadder:
		if len([]rune(norm)) != c.RequiredLength {
			return ReasonWrongLength, 0, nil
		}

	case VariantScramble:
		if !startsWith(norm, c.NextLetter) {
			return ReasonWrongStartLetter, 0, nil
		}
		if words.SharedLetterCount(norm, c.PrevWord) < c.Overlap {
			return ReasonPatternMismatch, 0, nil
		}

	case VariantSynonym:
		if !startsWith(norm, c.NextLetter) {
			return ReasonWrongStartLetter, 0, nil
		}
		sim, err := embed.Similarity(ctx, norm, c.PrevWord)
		if err != nil {
			if errors.Is(err, ErrUnknownWord) {
				// Outside the embedding vocabulary: cannot be close enough.
				return ReasonNotSynonymEnough, 0, nil
			}
			return "", 0, fmt.Errorf("similarity %q~%q: %w", norm, c.PrevWord, err)
		}
		if sim < threshold {
			return ReasonNotSynonymEnough, sim, nil
		}
		return "", sim, nil

	case VariantSprint:
		if !startsWith(norm, c.Letter) {
			return ReasonWrongLetter, 0, nil
		}

	case VariantForbidden:
		if !startsWith(norm, c.NextLetter) {
			return ReasonWrongStartLetter, 0, nil
		}
		if words.ContainsAny(norm, runesOf(c.Forbidden)) {
			return ReasonForbiddenLetter, 0, nil
		}
	}
	return "", 0, nil
}

func startsWith(w, letter string) bool {
	return letter == "" || string(words.FirstLetter(w)) == letter
}

func runesOf(letters []string) []rune {
	out := make([]rune, 0, len(letters))
	for _, l := range letters {
		out = append(out, words.FirstLetter(l))
	}
	return out
}
