// internal/game/constraint.go
//
// Constraint derivation. The evolving part of a session's constraint is a
// pure fold over (variant, history, turnCount); cached values can always be
// recomputed here, e.g. after rehydrating a session from storage.

package game

import "wordweave/internal/words"

const (
	// LadderStartLength is the length of the seed word in Word Ladder.
	LadderStartLength = 3
	// LadderMaxLength wins the game when a word of this length is accepted.
	LadderMaxLength = 8
	// scrambleOverlapCap bounds the scramble difficulty ramp.
	scrambleOverlapCap = 4
)

// ScrambleOverlap is the number of distinct letters a scramble word must
// share with the previous word. Difficulty ramps with play.
func ScrambleOverlap(turnCount int) int {
	n := 1 + turnCount/4
	if n > scrambleOverlapCap {
		n = scrambleOverlapCap
	}
	return n
}

// Derive recomputes the evolving constraint fields from history, keeping
// the fixed fields (sprint letter, forbidden set, ladder max) from fixed.
func Derive(v Variant, history []string, turnCount int, fixed Constraint) Constraint {
	c := Constraint{
		Letter:    fixed.Letter,
		Forbidden: fixed.Forbidden,
		MaxLength: fixed.MaxLength,
	}
	if v == VariantLadder && c.MaxLength == 0 {
		c.MaxLength = LadderMaxLength
	}
	if len(history) == 0 {
		if v == VariantLadder {
			c.RequiredLength = LadderStartLength
		}
		return c
	}

	prev := words.Normalize(history[len(history)-1])
	c.PrevWord = prev

	switch v {
	case VariantChain, VariantScramble, VariantSynonym, VariantForbidden:
		c.NextLetter = string(words.LastLetter(prev))
	}
	if v == VariantScramble {
		c.Overlap = ScrambleOverlap(turnCount)
	}
	if v == VariantLadder {
		c.RequiredLength = len([]rune(prev)) + 1
	}
	return c
}
