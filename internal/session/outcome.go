// internal/session/outcome.go
//
// Structured outcomes returned to the transport layer, plus the
// player-facing message helpers. The transport renders these; the engine
// never talks to a chat surface directly.

package session

import (
	"fmt"
	"strings"

	"wordweave/internal/game"
)

// Outcome is the result of one intent, ready for the transport to render.
type Outcome struct {
	ConversationID string       `json:"conversationId"`
	Status         game.Status  `json:"status"`
	Variant        game.Variant `json:"variant,omitempty"`
	Accepted       bool         `json:"accepted,omitempty"`
	Reason         game.Reason  `json:"reason,omitempty"`
	Word           string       `json:"word,omitempty"`
	Definition     string       `json:"definition,omitempty"`
	Hint           string       `json:"hint,omitempty"`
	Score          int          `json:"score"`
	Delta          int          `json:"delta,omitempty"`
	Turns          int          `json:"turns"`
	Hints          int          `json:"hints"`
	Skips          int          `json:"skips"`
	History        []string     `json:"history,omitempty"`
	Won            bool         `json:"won,omitempty"`
	Done           bool         `json:"done,omitempty"`
	Message        string       `json:"message,omitempty"`
}

// snapshot fills the session-derived fields of an Outcome.
func snapshot(conversationID string, s *game.Session) Outcome {
	return Outcome{
		ConversationID: conversationID,
		Status:         s.Status,
		Variant:        s.Variant,
		Score:          s.Score,
		Turns:          s.TurnCount,
		Hints:          s.HintCount,
		Skips:          s.SkipCount,
		History:        append([]string(nil), s.History...),
	}
}

// prompt describes the next turn's constraint to the player.
func prompt(s *game.Session) string {
	c := s.Constraint
	switch s.Variant {
	case game.VariantChain:
		return fmt.Sprintf("Now give a word starting with %q.", c.NextLetter)
	case game.VariantLadder:
		return fmt.Sprintf("Now give a word of exactly %d letters.", c.RequiredLength)
	case game.VariantScramble:
		return fmt.Sprintf("Now give a word starting with %q that shares at least %d letter(s) with %q.",
			c.NextLetter, c.Overlap, c.PrevWord)
	case game.VariantSynonym:
		return fmt.Sprintf("Now give a word starting with %q with a meaning close to %q.",
			c.NextLetter, c.PrevWord)
	case game.VariantSprint:
		return fmt.Sprintf("Now give a word starting with %q.", c.Letter)
	case game.VariantForbidden:
		return fmt.Sprintf("Now give a word starting with %q avoiding the letters [%s].",
			c.NextLetter, strings.Join(c.Forbidden, " "))
	}
	return ""
}

// rejectionMessage explains a rejection so the player can correct it.
func rejectionMessage(r game.Reason, c game.Constraint) string {
	switch r {
	case game.ReasonNotAWord:
		return "I don't recognize that word. Please try another."
	case game.ReasonAlreadyUsed:
		return "That word has already been used this game."
	case game.ReasonWrongStartLetter:
		return fmt.Sprintf("Your word must start with %q.", c.NextLetter)
	case game.ReasonWrongLength:
		return fmt.Sprintf("Your word must be exactly %d letters long.", c.RequiredLength)
	case game.ReasonPatternMismatch:
		return fmt.Sprintf("Your word must share at least %d letter(s) with %q.", c.Overlap, c.PrevWord)
	case game.ReasonWrongLetter:
		return fmt.Sprintf("Your word must start with %q.", c.Letter)
	case game.ReasonForbiddenLetter:
		return fmt.Sprintf("Your word contains a forbidden letter [%s].", strings.Join(c.Forbidden, " "))
	case game.ReasonNotSynonymEnough:
		return fmt.Sprintf("Your word isn't close enough in meaning to %q.", c.PrevWord)
	}
	return "That word doesn't fit the current rules."
}

// variantMenu lists playable variants for the selection prompt.
func variantMenu() string {
	names := make([]string, 0, 6)
	for _, v := range game.Variants() {
		names = append(names, fmt.Sprintf("%s (%s)", v.Title(), v))
	}
	return "Choose a game: " + strings.Join(names, ", ")
}
