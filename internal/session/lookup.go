// internal/session/lookup.go
//
// Dictionary wrapper applying the engine's failure policy: every external
// call gets a bounded timeout, and existence checks — which acceptance
// hinges on — retry a few times with doubling backoff when the backend is
// unavailable. Definitions and hint lookups stay single-attempt; they are
// best-effort.

package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"wordweave/internal/game"
)

// retryingDict decorates a DictionaryClient with the retry policy.
type retryingDict struct {
	inner   game.DictionaryClient
	retries int
	backoff time.Duration
	timeout time.Duration
}

func (d retryingDict) Exists(ctx context.Context, word string) (bool, error) {
	var lastErr error
	wait := d.backoff
	for attempt := 0; attempt <= d.retries; attempt++ {
		if attempt > 0 {
			log.Debug().Str("word", word).Int("attempt", attempt).Msg("retrying existence check")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return false, ctx.Err()
			}
			wait *= 2
		}
		ok, err := d.call(ctx, word)
		if err == nil {
			return ok, nil
		}
		if !errors.Is(err, game.ErrUnavailable) {
			return false, err
		}
		lastErr = err
	}
	return false, lastErr
}

func (d retryingDict) call(ctx context.Context, word string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.inner.Exists(ctx, word)
}

// Define is single-attempt: a missing definition never blocks play.
func (d retryingDict) Define(ctx context.Context, word string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.inner.Define(ctx, word)
}
