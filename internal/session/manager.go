// internal/session/manager.go
//
// SessionManager: owns the conversation→session registry and drives the
// session state machine. One intent at a time per session; unrelated
// conversations never contend.
//
// Concurrency model:
//   - A registry mutex guards only the map of entries.
//   - Each entry has its own mutex, held for the full duration of one
//     intent including external lookups, so concurrent intents on the same
//     session queue up rather than interleave.
//   - The idle sweeper snapshots entry pointers first, then locks entries
//     one at a time, so it never stalls the whole registry.
//
// Persistence happens at session-boundary transitions only (created,
// variant selected, terminal) — never per turn.

package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"wordweave/internal/daily"
	"wordweave/internal/game"
	"wordweave/internal/store"
	"wordweave/internal/words"
)

// Config carries the tunables. Zero values fall back to defaults.
type Config struct {
	SimilarityThreshold float64       // synonym acceptance, default 0.8
	HintTopK            int           // neighbors considered per hint, default 10
	IdleExpiry          time.Duration // default 30m
	SweepInterval       time.Duration // default 1m
	LookupTimeout       time.Duration // per external call, default 5s
	ExistsRetries       int           // extra attempts for existence checks, default 2
	RetryBackoff        time.Duration // first retry delay, doubles, default 150ms
	DailySalt           string        // deterministic daily seeds
	Clock               func() time.Time
}

func (c Config) withDefaults() Config {
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = 0.8
	}
	if c.HintTopK == 0 {
		c.HintTopK = game.DefaultHintTopK
	}
	if c.IdleExpiry == 0 {
		c.IdleExpiry = 30 * time.Minute
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = time.Minute
	}
	if c.LookupTimeout == 0 {
		c.LookupTimeout = 5 * time.Second
	}
	if c.ExistsRetries == 0 {
		c.ExistsRetries = 2
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = 150 * time.Millisecond
	}
	if c.DailySalt == "" {
		c.DailySalt = "local_dev_salt"
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// VocabLister is implemented by embedding clients that can enumerate
// their vocabulary deterministically; required for daily-mode seeds.
type VocabLister interface {
	VocabSize() int
	WordAt(i int) string
}

// entry pairs a session with its exclusivity lock.
type entry struct {
	mu     sync.Mutex
	loaded bool // store lookup attempted
	sess   *game.Session
}

// Manager is the engine facade the transport layer talks to.
type Manager struct {
	cfg   Config
	dict  retryingDict
	embed game.EmbeddingClient
	store store.Store

	mu      sync.Mutex
	entries map[string]*entry
}

// NewManager wires the engine together.
func NewManager(cfg Config, dict game.DictionaryClient, embed game.EmbeddingClient, st store.Store) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		cfg: cfg,
		dict: retryingDict{
			inner:   dict,
			retries: cfg.ExistsRetries,
			backoff: cfg.RetryBackoff,
			timeout: cfg.LookupTimeout,
		},
		embed:   embed,
		store:   st,
		entries: make(map[string]*entry),
	}
}

// entryFor returns (creating if needed) the registry entry for a
// conversation. Callers must lock the entry before touching its session.
func (m *Manager) entryFor(conversationID string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[conversationID]
	if !ok {
		e = &entry{}
		m.entries[conversationID] = e
	}
	return e
}

// hydrate performs the one-time store lookup for an entry.
// Must be called with the entry locked.
func (m *Manager) hydrate(ctx context.Context, conversationID string, e *entry) {
	if e.loaded {
		return
	}
	e.loaded = true
	s, err := m.store.Load(ctx, conversationID)
	switch {
	case err == nil:
		e.sess = s
	case errors.Is(err, store.ErrNotFound):
	default:
		log.Warn().Err(err).Str("conversation", conversationID).Msg("session load failed")
	}
}

// terminalErr maps a terminal status to its protocol error.
func terminalErr(s *game.Session) error {
	if s.Status == game.StatusExpired {
		return ErrSessionExpired
	}
	return ErrSessionCompleted
}

// Start creates a session awaiting variant selection. A terminal session
// is replaced; a live one must be stopped first. Calling Start again while
// still awaiting selection just re-prompts.
func (m *Manager) Start(ctx context.Context, conversationID string, dailyMode bool) (Outcome, error) {
	e := m.entryFor(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()
	m.hydrate(ctx, conversationID, e)

	now := m.cfg.Clock()
	if e.sess != nil && !e.sess.Status.Terminal() {
		if e.sess.Status == game.StatusAwaitingVariant {
			e.sess.LastActivity = now
			out := snapshot(conversationID, e.sess)
			out.Message = variantMenu()
			return out, nil
		}
		return Outcome{}, fmt.Errorf("%w: a game is in progress, stop it first", ErrInvalidIntent)
	}

	s := game.NewSession(uuid.NewString(), now)
	s.Daily = dailyMode
	e.sess = s
	m.persist(ctx, conversationID, s)
	log.Info().Str("conversation", conversationID).Str("session", s.ID).Bool("daily", dailyMode).Msg("session started")

	out := snapshot(conversationID, s)
	out.Message = variantMenu()
	return out, nil
}

// SelectVariant moves AwaitingVariant → Active, seeding history with the
// variant's starting word.
func (m *Manager) SelectVariant(ctx context.Context, conversationID, name string) (Outcome, error) {
	e := m.entryFor(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()
	m.hydrate(ctx, conversationID, e)

	s := e.sess
	if s == nil {
		return Outcome{}, ErrSessionNotFound
	}
	if s.Status.Terminal() {
		return Outcome{}, terminalErr(s)
	}
	if s.Status != game.StatusAwaitingVariant {
		return Outcome{}, fmt.Errorf("%w: variant already selected", ErrInvalidIntent)
	}
	v, ok := game.ParseVariant(name)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}

	seed, fixed, err := m.seed(ctx, v, s.Daily)
	if err != nil {
		return Outcome{}, err
	}

	s.Variant = v
	s.Status = game.StatusActive
	s.Append(seed)
	s.Constraint = game.Derive(v, s.History, s.TurnCount, fixed)
	s.LastActivity = m.cfg.Clock()
	m.persist(ctx, conversationID, s)
	log.Info().Str("conversation", conversationID).Str("variant", string(v)).Str("seed", seed).Msg("variant selected")

	out := snapshot(conversationID, s)
	out.Word = seed
	if def, err := m.dict.Define(ctx, seed); err == nil {
		out.Definition = def
	}
	out.Message = fmt.Sprintf("%s! First word: %q. %s", v.Title(), seed, prompt(s))
	return out, nil
}

// Submit runs one word through the validation pipeline. Rejections leave
// the session untouched except for the activity timestamp.
func (m *Manager) Submit(ctx context.Context, conversationID, word string) (Outcome, error) {
	e := m.entryFor(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()
	m.hydrate(ctx, conversationID, e)

	s, err := m.activeSession(e)
	if err != nil {
		return Outcome{}, err
	}
	s.LastActivity = m.cfg.Clock()

	deps := game.Deps{Dict: m.dict, Embed: m.embed, SimilarityThreshold: m.cfg.SimilarityThreshold}
	verdict, err := game.Validate(ctx, deps, s, word)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		return Outcome{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if !verdict.Accepted {
		log.Debug().Str("conversation", conversationID).Str("word", word).Str("reason", string(verdict.Reason)).Msg("word rejected")
		out := snapshot(conversationID, s)
		out.Reason = verdict.Reason
		out.Message = rejectionMessage(verdict.Reason, s.Constraint)
		return out, nil
	}

	before := s.Constraint
	s.Append(verdict.Word)
	s.Streak++
	s.TurnCount++
	delta := game.ScoreDelta(s.Variant, verdict.Word, before, s.Streak, verdict.Similarity)
	s.Score += delta
	s.Constraint = verdict.Next

	out := snapshot(conversationID, s)
	out.Accepted = true
	out.Word = verdict.Word
	out.Delta = delta
	if def, err := m.dict.Define(ctx, verdict.Word); err == nil {
		out.Definition = def
	}

	if verdict.Win {
		s.Status = game.StatusCompleted
		m.finish(ctx, conversationID, s)
		out.Status = s.Status
		out.Won = true
		out.Done = true
		out.Message = fmt.Sprintf("A %d-letter word tops the ladder — you win! Final score: %d.", len([]rune(verdict.Word)), s.Score)
		return out, nil
	}
	out.Message = prompt(s)
	return out, nil
}

// Hint asks the hint engine for a legal, unused suggestion. The hint
// counter advances whether or not one is found; history and score are
// never touched.
func (m *Manager) Hint(ctx context.Context, conversationID string) (Outcome, error) {
	e := m.entryFor(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()
	m.hydrate(ctx, conversationID, e)

	s, err := m.activeSession(e)
	if err != nil {
		return Outcome{}, err
	}
	s.LastActivity = m.cfg.Clock()
	s.HintCount++

	engine := &game.HintEngine{
		Dict:      m.dict,
		Embed:     m.embed,
		TopK:      m.cfg.HintTopK,
		Threshold: m.cfg.SimilarityThreshold,
	}
	sugg, err := engine.Hint(ctx, s)
	if err != nil {
		if errors.Is(err, game.ErrNoHint) || errors.Is(err, game.ErrUnknownWord) || errors.Is(err, game.ErrNotFound) {
			out := snapshot(conversationID, s)
			out.Message = "I can't think of anything right now. " + prompt(s)
			return out, nil
		}
		return Outcome{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	out := snapshot(conversationID, s)
	out.Hint = sugg.Word
	out.Definition = sugg.Definition
	out.Message = fmt.Sprintf("You could try %q.", sugg.Word)
	return out, nil
}

// Skip passes the turn: counters advance, the constraint stays put, and
// the variant's skip delta (zero by default) applies.
func (m *Manager) Skip(ctx context.Context, conversationID string) (Outcome, error) {
	e := m.entryFor(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()
	m.hydrate(ctx, conversationID, e)

	s, err := m.activeSession(e)
	if err != nil {
		return Outcome{}, err
	}
	s.LastActivity = m.cfg.Clock()
	s.SkipCount++
	s.TurnCount++
	s.Streak = 0
	s.Score += game.SkipDelta(s.Variant)

	out := snapshot(conversationID, s)
	out.Message = "Turn skipped. " + prompt(s)
	return out, nil
}

// Stop ends the game: Completed if the player got any word in, otherwise
// Abandoned (including stop before variant selection).
func (m *Manager) Stop(ctx context.Context, conversationID string) (Outcome, error) {
	e := m.entryFor(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()
	m.hydrate(ctx, conversationID, e)

	s := e.sess
	if s == nil {
		return Outcome{}, ErrSessionNotFound
	}
	if s.Status.Terminal() {
		return Outcome{}, terminalErr(s)
	}

	if s.Status == game.StatusActive && s.PlayerTurns() > 0 {
		s.Status = game.StatusCompleted
	} else {
		s.Status = game.StatusAbandoned
	}
	s.LastActivity = m.cfg.Clock()
	m.finish(ctx, conversationID, s)

	out := snapshot(conversationID, s)
	out.Done = true
	if s.Status == game.StatusCompleted {
		out.Message = fmt.Sprintf("Game over! Final score: %d. Chain: %s", s.Score, strings.Join(s.History, " → "))
	} else {
		out.Message = "Game abandoned. Use start to play again."
	}
	return out, nil
}

// Status reports the session without mutating it. Allowed on terminal
// sessions; that is how final scores are read back.
func (m *Manager) Status(ctx context.Context, conversationID string) (Outcome, error) {
	e := m.entryFor(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()
	m.hydrate(ctx, conversationID, e)

	s := e.sess
	if s == nil {
		return Outcome{}, ErrSessionNotFound
	}
	out := snapshot(conversationID, s)
	switch {
	case s.Status == game.StatusActive:
		out.Message = prompt(s)
	case s.Status.Terminal():
		out.Done = true
		out.Message = fmt.Sprintf("Final score: %d.", s.Score)
	default:
		out.Message = variantMenu()
	}
	return out, nil
}

// activeSession returns the entry's session iff it can take a turn.
func (m *Manager) activeSession(e *entry) (*game.Session, error) {
	s := e.sess
	if s == nil {
		return nil, ErrSessionNotFound
	}
	if s.Status.Terminal() {
		return nil, terminalErr(s)
	}
	if s.Status != game.StatusActive {
		return nil, fmt.Errorf("%w: choose a game variant first", ErrInvalidIntent)
	}
	return s, nil
}

// ----------------------------- seeding -------------------------------------

// seed picks the starting word and fixed constraint fields for a variant.
// Daily mode derives both deterministically from the date.
func (m *Manager) seed(ctx context.Context, v game.Variant, dailyMode bool) (string, game.Constraint, error) {
	var fixed game.Constraint
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		var filter func(string) bool
		switch v {
		case game.VariantLadder:
			fixed.MaxLength = game.LadderMaxLength
			filter = func(w string) bool { return len([]rune(w)) == game.LadderStartLength }
		case game.VariantForbidden:
			letter := m.forbiddenLetter(dailyMode, attempt)
			fixed.Forbidden = []string{letter}
			filter = func(w string) bool { return !strings.Contains(w, letter) }
		}

		word, err := m.pickWord(ctx, dailyMode, filter)
		if err != nil {
			lastErr = err
			continue
		}
		if v == game.VariantSprint {
			fixed.Letter = string(words.FirstLetter(word))
		}
		return word, fixed, nil
	}
	return "", fixed, fmt.Errorf("%w: could not pick a starting word: %v", ErrServiceUnavailable, lastErr)
}

// pickWord samples a vocabulary word: deterministically by date in daily
// mode (scanning forward from the date's index until filter passes),
// randomly otherwise.
func (m *Manager) pickWord(ctx context.Context, dailyMode bool, filter func(string) bool) (string, error) {
	if dailyMode {
		if vl, ok := m.embed.(VocabLister); ok {
			n := vl.VocabSize()
			start := daily.Index(m.cfg.DailySalt, daily.DateKey(m.cfg.Clock()), n)
			for i := 0; i < n; i++ {
				w := vl.WordAt((start + i) % n)
				if filter == nil || filter(w) {
					return w, nil
				}
			}
			return "", game.ErrNotFound
		}
	}
	ctx, cancel := context.WithTimeout(ctx, m.cfg.LookupTimeout)
	defer cancel()
	return m.embed.RandomWord(ctx, filter)
}

// forbiddenLetter draws the letter to ban, deterministic for daily mode.
func (m *Manager) forbiddenLetter(dailyMode bool, attempt int) string {
	if dailyMode {
		i := daily.Index(m.cfg.DailySalt, daily.DateKey(m.cfg.Clock())+"#forbidden", 26)
		return string(rune('a' + (i+attempt)%26))
	}
	return string(rune('a' + (rand.Intn(26)+attempt)%26))
}

// ---------------------------- persistence ----------------------------------

// persist saves a boundary snapshot; failures are logged, not fatal, so a
// flaky store never blocks play.
func (m *Manager) persist(ctx context.Context, conversationID string, s *game.Session) {
	if err := m.store.Save(ctx, conversationID, s); err != nil {
		log.Warn().Err(err).Str("conversation", conversationID).Msg("session save failed")
	}
}

// finish persists a terminal session and records its result for
// leaderboards (abandoned games and variant-less expiries are not ranked).
func (m *Manager) finish(ctx context.Context, conversationID string, s *game.Session) {
	m.persist(ctx, conversationID, s)
	if s.Status == game.StatusAbandoned || s.Variant == "" {
		return
	}
	now := m.cfg.Clock()
	err := m.store.RecordResult(ctx, store.Result{
		ConversationID: conversationID,
		SessionID:      s.ID,
		Variant:        s.Variant,
		Score:          s.Score,
		Turns:          s.TurnCount,
		Hints:          s.HintCount,
		Skips:          s.SkipCount,
		Status:         s.Status,
		Daily:          s.Daily,
		Date:           daily.DateKey(now),
		FinishedAt:     now,
	})
	if err != nil {
		log.Warn().Err(err).Str("conversation", conversationID).Msg("result record failed")
	}
	log.Info().Str("conversation", conversationID).Str("status", string(s.Status)).Int("score", s.Score).Msg("session finished")
}

// ---------------------------- idle sweep -----------------------------------

// SweepIdle expires sessions idle past the threshold. Returns how many
// sessions it expired. Terminal entries older than the threshold are also
// evicted from the in-memory registry; the store keeps their snapshot.
func (m *Manager) SweepIdle(ctx context.Context) int {
	now := m.cfg.Clock()

	m.mu.Lock()
	type pair struct {
		id string
		e  *entry
	}
	list := make([]pair, 0, len(m.entries))
	for id, e := range m.entries {
		list = append(list, pair{id, e})
	}
	m.mu.Unlock()

	expired := 0
	var evict []string
	for _, p := range list {
		p.e.mu.Lock()
		s := p.e.sess
		switch {
		case s == nil:
			evict = append(evict, p.id)
		case !s.Status.Terminal() && now.Sub(s.LastActivity) > m.cfg.IdleExpiry:
			s.Status = game.StatusExpired
			m.finish(ctx, p.id, s)
			expired++
		case s.Status.Terminal() && now.Sub(s.LastActivity) > m.cfg.IdleExpiry:
			evict = append(evict, p.id)
		}
		p.e.mu.Unlock()
	}

	if len(evict) > 0 {
		m.mu.Lock()
		for _, id := range evict {
			delete(m.entries, id)
		}
		m.mu.Unlock()
	}
	return expired
}

// RunSweeper loops SweepIdle until ctx is cancelled.
func (m *Manager) RunSweeper(ctx context.Context) {
	t := time.NewTicker(m.cfg.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.SweepIdle(ctx); n > 0 {
				log.Info().Int("expired", n).Msg("idle sessions expired")
			}
		}
	}
}
