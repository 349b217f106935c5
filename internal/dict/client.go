// internal/dict/client.go
//
// Dictionary lookups backing the engine's DictionaryClient port.
// Responsibilities:
//   - Query a dictionaryapi.dev-style HTTP endpoint for existence and
//     short definitions.
//   - Cache answers (positive and not-found) in a size-capped map so a
//     long session does not hammer the backend with repeat lookups.
//
// Environment:
//   DICTIONARY_API_URL   base URL (default https://api.dictionaryapi.dev/api/v2/entries/en)
//   DICTIONARY_API_KEY   optional key appended as ?key=...
//
// Failure mapping:
//   404            → definitive "not a word"
//   other non-200  → game.ErrUnavailable (transient, retryable by callers)
//   transport error → game.ErrUnavailable

package dict

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"wordweave/internal/game"
	"wordweave/internal/words"
)

const (
	// DefaultBaseURL is the free dictionary API used when none is configured.
	DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

	defaultTimeout = 5 * time.Second
	cacheCap       = 10_000
)

// entry is one cached lookup result. Unavailable results are never cached.
type entry struct {
	exists     bool
	definition string
}

// Client talks to the dictionary API. Safe for concurrent use.
type Client struct {
	base string
	key  string
	http *http.Client

	mu    sync.Mutex
	cache map[string]entry
}

// NewClient constructs a Client. base defaults to DefaultBaseURL; key is
// optional.
func NewClient(base, key string) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		base:  base,
		key:   key,
		http:  &http.Client{Timeout: defaultTimeout},
		cache: make(map[string]entry),
	}
}

// Exists reports whether word has a dictionary entry.
func (c *Client) Exists(ctx context.Context, word string) (bool, error) {
	e, err := c.fetch(ctx, word)
	if err != nil {
		return false, err
	}
	return e.exists, nil
}

// Define returns a short "(part of speech): definition" line for word.
func (c *Client) Define(ctx context.Context, word string) (string, error) {
	e, err := c.fetch(ctx, word)
	if err != nil {
		return "", err
	}
	if !e.exists || e.definition == "" {
		return "", fmt.Errorf("define %q: %w", word, game.ErrNotFound)
	}
	return e.definition, nil
}

// apiEntry mirrors the slice-of-entries shape the dictionary API returns.
type apiEntry struct {
	Word     string `json:"word"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
		} `json:"definitions"`
	} `json:"meanings"`
}

func (c *Client) fetch(ctx context.Context, word string) (entry, error) {
	norm := words.Normalize(word)

	c.mu.Lock()
	if e, ok := c.cache[norm]; ok {
		c.mu.Unlock()
		return e, nil
	}
	c.mu.Unlock()

	u := c.base + "/" + url.PathEscape(norm)
	if c.key != "" {
		u += "?key=" + url.QueryEscape(c.key)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entry{}, fmt.Errorf("dictionary request: %w", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return entry{}, fmt.Errorf("dictionary lookup %q: %w", norm, game.ErrUnavailable)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		e := entry{exists: false}
		c.put(norm, e)
		return e, nil
	case res.StatusCode != http.StatusOK:
		log.Warn().Int("status", res.StatusCode).Str("word", norm).Msg("dictionary backend error")
		return entry{}, fmt.Errorf("dictionary lookup %q: status %d: %w", norm, res.StatusCode, game.ErrUnavailable)
	}

	var body []apiEntry
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return entry{}, fmt.Errorf("dictionary lookup %q: decode: %w", norm, game.ErrUnavailable)
	}
	e := entry{exists: true, definition: firstDefinition(body)}
	c.put(norm, e)
	return e, nil
}

// firstDefinition picks the first definition of the first meaning.
func firstDefinition(body []apiEntry) string {
	for _, ae := range body {
		for _, m := range ae.Meanings {
			for _, d := range m.Definitions {
				if d.Definition == "" {
					continue
				}
				if m.PartOfSpeech != "" {
					return "(" + m.PartOfSpeech + ") " + d.Definition
				}
				return d.Definition
			}
		}
	}
	return ""
}

// put stores a result, evicting an arbitrary entry once the cap is hit.
func (c *Client) put(word string, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cache) >= cacheCap {
		for k := range c.cache {
			delete(c.cache, k)
			break
		}
	}
	c.cache[word] = e
}
