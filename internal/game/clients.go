// internal/game/clients.go
//
// Ports to the two slow external collaborators. The engine consumes these
// interfaces; implementations live in internal/dict and internal/embed.
// Tests substitute in-package fakes.

package game

import (
	"context"
	"errors"
)

// Dependency errors. Unavailable is transient and retryable; the others
// are definitive answers.
var (
	ErrUnavailable = errors.New("lookup service unavailable")
	ErrNotFound    = errors.New("word not found")
	ErrUnknownWord = errors.New("word not in embedding vocabulary")
)

// DictionaryClient answers existence and definition lookups.
type DictionaryClient interface {
	// Exists reports whether word is a real word.
	// Returns ErrUnavailable on backend failure.
	Exists(ctx context.Context, word string) (bool, error)

	// Define returns a short definition for word.
	// Returns ErrNotFound if the word has no entry, ErrUnavailable on failure.
	Define(ctx context.Context, word string) (string, error)
}

// Neighbor is one candidate from a nearest-neighbor lookup.
type Neighbor struct {
	Word       string
	Similarity float64
}

// EmbeddingClient answers semantic-similarity queries over a fixed
// vocabulary.
type EmbeddingClient interface {
	// Neighbors returns up to k words most similar to word, best first.
	// Returns ErrUnknownWord if word is not in the vocabulary,
	// ErrUnavailable on backend failure.
	Neighbors(ctx context.Context, word string, k int) ([]Neighbor, error)

	// Similarity returns the similarity score of two words in [−1, 1].
	Similarity(ctx context.Context, a, b string) (float64, error)

	// RandomWord samples a vocabulary word satisfying filter.
	// A nil filter accepts everything. Returns ErrNotFound when nothing
	// in the vocabulary matches.
	RandomWord(ctx context.Context, filter func(string) bool) (string, error)
}
