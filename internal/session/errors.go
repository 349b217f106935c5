// internal/session/errors.go
//
// Protocol and dependency errors surfaced by the session manager.
// Validation rejections are NOT errors: they come back inside an Outcome
// with a typed reason, so the transport can tell "wrong word" apart from
// "try again later".

package session

import "errors"

var (
	// ErrSessionNotFound: no session exists for the conversation.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidIntent: the intent is not valid for the session's current
	// state (e.g. submitting a word before choosing a variant). A
	// programming/usage error at the boundary, never retried.
	ErrInvalidIntent = errors.New("intent not valid for session state")

	// ErrSessionCompleted / ErrSessionExpired: the session is terminal;
	// only status queries are allowed.
	ErrSessionCompleted = errors.New("session already finished")
	ErrSessionExpired   = errors.New("session expired")

	// ErrUnknownVariant: the variant name did not parse.
	ErrUnknownVariant = errors.New("unknown game variant")

	// ErrServiceUnavailable: a dictionary/embedding dependency stayed
	// unavailable after bounded retries. Transient; the caller may retry
	// the whole intent. Session state is unchanged.
	ErrServiceUnavailable = errors.New("lookup service unavailable")
)
