// internal/embed/index.go
//
// Word-embedding index backing the engine's EmbeddingClient port.
// Responsibilities:
//   - Load a word2vec-style text file (word followed by float components),
//     from an environment-provided path or a small embedded default.
//   - Bucket vectors by first letter for cheap constrained scans.
//   - Cosine similarity, k-nearest-neighbor lookup, vocabulary sampling.
//
// File format:
//   one word per line, then its vector components, whitespace-separated.
//   Malformed lines are skipped with a warning.
//
// Environment:
//   EMBEDDINGS_FILE=/path/to/word2vec.txt   (falls back to embedded default)

package embed

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"wordweave/internal/game"
	"wordweave/internal/words"
)

//go:embed default_small_vectors.txt
var embeddedVectors string

// Index is an in-memory embedding table. Read-only after construction, so
// safe for concurrent use without locking.
type Index struct {
	dim     int
	buckets map[rune]map[string][]float64
	vocab   []string // sorted, for deterministic daily seeds
}

// Load reads an embeddings file from disk.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open embeddings: %w", err)
	}
	defer f.Close()
	ix, err := Parse(f)
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", path).Int("words", len(ix.vocab)).Int("dim", ix.dim).Msg("embeddings loaded")
	return ix, nil
}

// LoadEmbedded builds the index from the small compiled-in default,
// enough to run the server with no configuration.
func LoadEmbedded() (*Index, error) {
	return Parse(strings.NewReader(embeddedVectors))
}

// Parse builds an Index from word2vec-style text.
func Parse(r io.Reader) (*Index, error) {
	ix := &Index{buckets: make(map[rune]map[string][]float64)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		word := words.Normalize(fields[0])
		if word == "" {
			continue
		}
		vec := make([]float64, 0, len(fields)-1)
		ok := true
		for _, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				log.Warn().Str("word", word).Msg("skipping malformed embedding line")
				ok = false
				break
			}
			vec = append(vec, x)
		}
		if !ok {
			continue
		}
		if ix.dim == 0 {
			ix.dim = len(vec)
		} else if len(vec) != ix.dim {
			log.Warn().Str("word", word).Int("dim", len(vec)).Msg("skipping embedding with mismatched dimension")
			continue
		}
		first := words.FirstLetter(word)
		bucket, exists := ix.buckets[first]
		if !exists {
			bucket = make(map[string][]float64)
			ix.buckets[first] = bucket
		}
		if _, dup := bucket[word]; !dup {
			ix.vocab = append(ix.vocab, word)
		}
		bucket[word] = vec
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read embeddings: %w", err)
	}
	if len(ix.vocab) == 0 {
		return nil, fmt.Errorf("embeddings: empty vocabulary")
	}
	sort.Strings(ix.vocab)
	return ix, nil
}

// Contains reports whether word is in the vocabulary.
func (ix *Index) Contains(word string) bool {
	_, ok := ix.lookup(words.Normalize(word))
	return ok
}

// VocabSize returns the number of distinct words loaded.
func (ix *Index) VocabSize() int { return len(ix.vocab) }

// WordAt returns the i-th word of the sorted vocabulary.
// Used for deterministic daily seeds.
func (ix *Index) WordAt(i int) string { return ix.vocab[i] }

// Similarity returns the cosine similarity of two vocabulary words.
func (ix *Index) Similarity(_ context.Context, a, b string) (float64, error) {
	va, ok := ix.lookup(words.Normalize(a))
	if !ok {
		return 0, fmt.Errorf("%q: %w", a, game.ErrUnknownWord)
	}
	vb, ok := ix.lookup(words.Normalize(b))
	if !ok {
		return 0, fmt.Errorf("%q: %w", b, game.ErrUnknownWord)
	}
	return cosine(va, vb), nil
}

// Neighbors returns up to k vocabulary words most similar to word,
// best first. The word itself is excluded.
func (ix *Index) Neighbors(_ context.Context, word string, k int) ([]game.Neighbor, error) {
	norm := words.Normalize(word)
	ref, ok := ix.lookup(norm)
	if !ok {
		return nil, fmt.Errorf("%q: %w", word, game.ErrUnknownWord)
	}
	if k <= 0 {
		return nil, nil
	}
	out := make([]game.Neighbor, 0, k+1)
	for _, bucket := range ix.buckets {
		for w, vec := range bucket {
			if w == norm {
				continue
			}
			out = append(out, game.Neighbor{Word: w, Similarity: cosine(ref, vec)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// RandomWord samples a uniformly random vocabulary word passing filter
// (reservoir sampling; nil filter accepts everything).
func (ix *Index) RandomWord(_ context.Context, filter func(string) bool) (string, error) {
	var pick string
	n := 0
	for _, w := range ix.vocab {
		if filter != nil && !filter(w) {
			continue
		}
		n++
		if rand.Intn(n) == 0 {
			pick = w
		}
	}
	if n == 0 {
		return "", fmt.Errorf("vocabulary sample: %w", game.ErrNotFound)
	}
	return pick, nil
}

func (ix *Index) lookup(norm string) ([]float64, bool) {
	bucket, ok := ix.buckets[words.FirstLetter(norm)]
	if !ok {
		return nil, false
	}
	v, ok := bucket[norm]
	return v, ok
}

// cosine computes cosine similarity; mismatched or zero vectors score 0.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
