// internal/game/types.go
//
// Core type definitions for the word-game engine.
// Defines:
//   - Variant: the closed set of six game rule-sets.
//   - Status:  lifecycle states of a session.
//   - Reason:  typed rejection reasons surfaced to the player.
//   - Constraint: variant-specific rule parameters that evolve during play.
//   - Session: full state of one conversation's game.

package game

import (
	"time"

	"wordweave/internal/words"
)

// Variant identifies one of the six game rule-sets. The set is closed:
// validators, scorers, and seeding all dispatch on this tag.
type Variant string

const (
	VariantChain     Variant = "chain"     // next word starts with the previous word's last letter
	VariantLadder    Variant = "ladder"    // word length grows by one each turn
	VariantScramble  Variant = "scramble"  // chain rule plus letter overlap with the previous word
	VariantSynonym   Variant = "synonym"   // chain rule plus semantic similarity to the previous word
	VariantSprint    Variant = "sprint"    // every word starts with one fixed letter
	VariantForbidden Variant = "forbidden" // chain rule, certain letters may never appear
)

// Variants lists every playable variant in menu order.
func Variants() []Variant {
	return []Variant{
		VariantChain, VariantLadder, VariantScramble,
		VariantSynonym, VariantSprint, VariantForbidden,
	}
}

// variantAliases maps accepted spellings to variants, including the
// long-form names used by older clients.
var variantAliases = map[string]Variant{
	"chain":             VariantChain,
	"word_chain":        VariantChain,
	"ladder":            VariantLadder,
	"word_ladder":       VariantLadder,
	"scramble":          VariantScramble,
	"last_letter":       VariantScramble,
	"synonym":           VariantSynonym,
	"synonym_string":    VariantSynonym,
	"sprint":            VariantSprint,
	"alphabet_sprint":   VariantSprint,
	"forbidden":         VariantForbidden,
	"forbidden_letters": VariantForbidden,
}

// ParseVariant resolves a user-supplied variant name.
func ParseVariant(name string) (Variant, bool) {
	v, ok := variantAliases[words.Normalize(name)]
	return v, ok
}

// Title returns the display name of a variant.
func (v Variant) Title() string {
	switch v {
	case VariantChain:
		return "Word Chain"
	case VariantLadder:
		return "Word Ladder"
	case VariantScramble:
		return "Last Letter Scramble"
	case VariantSynonym:
		return "Synonym String"
	case VariantSprint:
		return "Alphabet Sprint"
	case VariantForbidden:
		return "Forbidden Letters"
	}
	return string(v)
}

// Status is the lifecycle state of a session.
type Status string

const (
	StatusAwaitingVariant Status = "awaiting_variant"
	StatusActive          Status = "active"
	StatusCompleted       Status = "completed"
	StatusAbandoned       Status = "abandoned"
	StatusExpired         Status = "expired"
)

// Terminal reports whether no further play is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned || s == StatusExpired
}

// Reason is a typed, user-facing rejection reason. Rejections never mutate
// session state; the reason tells the player how to correct their word.
type Reason string

const (
	ReasonNotAWord         Reason = "not_a_word"
	ReasonAlreadyUsed      Reason = "already_used"
	ReasonWrongStartLetter Reason = "wrong_start_letter"
	ReasonWrongLength      Reason = "wrong_length"
	ReasonPatternMismatch  Reason = "pattern_mismatch"
	ReasonWrongLetter      Reason = "wrong_letter"
	ReasonForbiddenLetter  Reason = "contains_forbidden_letter"
	ReasonNotSynonymEnough Reason = "not_synonym_enough"
)

// Constraint carries the variant-specific rule parameters. The evolving
// fields (NextLetter, PrevWord, RequiredLength, Overlap) are a cache over
// (variant, history) and can always be recomputed with Derive; the fixed
// fields (Letter, Forbidden, MaxLength) are set once at variant selection.
type Constraint struct {
	NextLetter     string   `json:"nextLetter,omitempty"`     // chain-style: required first letter
	PrevWord       string   `json:"prevWord,omitempty"`       // normalized previous word
	RequiredLength int      `json:"requiredLength,omitempty"` // ladder: exact length of the next word
	MaxLength      int      `json:"maxLength,omitempty"`      // ladder: length that wins the game
	Overlap        int      `json:"overlap,omitempty"`        // scramble: distinct letters shared with PrevWord
	Letter         string   `json:"letter,omitempty"`         // sprint: the fixed letter
	Forbidden      []string `json:"forbidden,omitempty"`      // forbidden letters, single-rune strings
}

// Session is the persistent unit of play for one conversation.
// Invariants:
//   - History and Used stay in sync: every history entry's normalized form
//     is in Used and nothing else is.
//   - While Status == StatusActive, Variant is non-empty.
type Session struct {
	ID           string          `json:"id"`
	Variant      Variant         `json:"variant,omitempty"`
	History      []string        `json:"history"`
	Used         map[string]bool `json:"used"`
	Constraint   Constraint      `json:"constraint"`
	Score        int             `json:"score"`
	TurnCount    int             `json:"turnCount"`
	HintCount    int             `json:"hintCount"`
	SkipCount    int             `json:"skipCount"`
	Streak       int             `json:"streak"` // consecutive accepted words, reset by skip
	Daily        bool            `json:"daily,omitempty"`
	Status       Status          `json:"status"`
	StartedAt    time.Time       `json:"startedAt"`
	LastActivity time.Time       `json:"lastActivity"`
}

// NewSession constructs a fresh session awaiting variant selection.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		History:      []string{},
		Used:         map[string]bool{},
		Status:       StatusAwaitingVariant,
		StartedAt:    now,
		LastActivity: now,
	}
}

// LastWord returns the normalized most recent word, or "" if none.
func (s *Session) LastWord() string {
	if len(s.History) == 0 {
		return ""
	}
	return words.Normalize(s.History[len(s.History)-1])
}

// Append records an accepted word in history and the used set.
func (s *Session) Append(word string) {
	s.History = append(s.History, word)
	s.Used[words.Normalize(word)] = true
}

// Clone returns a deep copy, so stores and status snapshots never alias
// live session state.
func (s *Session) Clone() *Session {
	cp := *s
	cp.History = append([]string(nil), s.History...)
	cp.Used = make(map[string]bool, len(s.Used))
	for w := range s.Used {
		cp.Used[w] = true
	}
	cp.Constraint.Forbidden = append([]string(nil), s.Constraint.Forbidden...)
	return &cp
}

// PlayerTurns counts accepted player words (the seed word is the engine's).
func (s *Session) PlayerTurns() int {
	if len(s.History) == 0 {
		return 0
	}
	return len(s.History) - 1
}
