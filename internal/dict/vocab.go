// internal/dict/vocab.go
//
// Offline dictionary backed by the embedding vocabulary. Used when
// DICTIONARY_OFFLINE is set or no network dictionary is reachable in
// development: any word the embedding index knows counts as real.
// Definitions are not available in this mode.

package dict

import (
	"context"
	"fmt"

	"wordweave/internal/embed"
	"wordweave/internal/game"
)

// VocabClient answers existence checks from an embedding index.
type VocabClient struct {
	Index *embed.Index
}

// NewVocabClient wraps an embedding index as a DictionaryClient.
func NewVocabClient(ix *embed.Index) *VocabClient {
	return &VocabClient{Index: ix}
}

// Exists reports whether the embedding vocabulary contains word.
func (v *VocabClient) Exists(_ context.Context, word string) (bool, error) {
	return v.Index.Contains(word), nil
}

// Define always reports not-found; the vocabulary carries no definitions.
func (v *VocabClient) Define(_ context.Context, word string) (string, error) {
	return "", fmt.Errorf("define %q: %w", word, game.ErrNotFound)
}
