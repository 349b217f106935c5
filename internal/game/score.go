// internal/game/score.go
//
// Scoring. Applied only to accepted turns; rejections never touch score.
// Base +1 per word plus a variant bonus, so score is non-decreasing.

package game

// sprintStreakDiv: one bonus point per this many consecutive accepted words.
const sprintStreakDiv = 5

// synonymBonusAt grants an extra point for especially close synonyms.
const synonymBonusAt = 0.9

// ScoreDelta computes the score change for an accepted word.
// streak counts consecutive accepted words including this one; sim is the
// embedding similarity for the synonym variant (0 otherwise).
func ScoreDelta(v Variant, word string, c Constraint, streak int, sim float64) int {
	delta := 1
	switch v {
	case VariantLadder:
		if n := len([]rune(word)) - LadderStartLength; n > 0 {
			delta += n
		}
	case VariantSprint:
		delta += streak / sprintStreakDiv
	case VariantScramble:
		delta += c.Overlap
	case VariantSynonym:
		if sim >= synonymBonusAt {
			delta++
		}
	case VariantForbidden:
		delta++
	}
	return delta
}

// SkipDelta is the score change for a skipped turn. Zero for every
// variant; kept as a function so a penalty rule stays a one-line change.
func SkipDelta(Variant) int { return 0 }
