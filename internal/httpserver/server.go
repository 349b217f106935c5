// internal/httpserver/server.go
//
// HTTP wiring for the word-game engine.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", POST /conversation.
//   - Conversation endpoints (require a conversation token): /session/*.
//   - Leaderboard endpoints: GET /leaderboard, GET /leaderboard/top.
//   - JWT + cookie handling for conversation identity.
//
// Notes:
//   - A "conversation" is one player channel; its token is an HS256 JWT
//     carrying the conversation id. Tokens are accepted from either the
//     Authorization header or a cookie.
//   - Rule rejections are HTTP 200 with accepted:false — only protocol
//     misuse and infrastructure trouble surface as non-2xx.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"wordweave/internal/session"
	"wordweave/internal/store"
)

// Server bundles the router, the session manager, and the result store.
type Server struct {
	r       *chi.Mux
	mgr     *session.Manager
	results store.Store
}

// New constructs a Server, installs middleware, and registers routes.
func New(mgr *session.Manager, results store.Store) *Server {
	s := &Server{r: chi.NewRouter(), mgr: mgr, results: results}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(30 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordweave","endpoints":["/health","POST /conversation","POST /session/start","POST /session/variant","POST /session/word","POST /session/hint","POST /session/skip","POST /session/stop","GET /session/status","GET /leaderboard","GET /leaderboard/top"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Conversation bootstrap — no token needed.
	s.r.Post("/conversation", s.handleNewConversation)

	// Session endpoints — require a conversation token.
	s.r.Route("/session", func(r chi.Router) {
		r.Use(s.requireConversation())
		r.Post("/start", s.handleStart)
		r.Post("/variant", s.handleVariant)
		r.Post("/word", s.handleWord)
		r.Post("/hint", s.handleHint)
		r.Post("/skip", s.handleSkip)
		r.Post("/stop", s.handleStop)
		r.Get("/status", s.handleStatus)
	})

	// Leaderboards — public.
	s.r.Get("/leaderboard", s.handleDailyLeaderboard)
	s.r.Get("/leaderboard/top", s.handleTopScores)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --------------------------- conversations ---------------------------------

type conversationRes struct {
	ConversationID string `json:"conversationId"`
	Token          string `json:"token"`
}

// handleNewConversation mints a conversation id and its token, and sets
// the token cookie so browser clients work without header plumbing.
func (s *Server) handleNewConversation(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	tok, exp, err := signToken(id)
	if err != nil {
		log.Error().Err(err).Msg("sign conversation token")
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	s.setTokenCookie(w, tok, exp)
	_ = json.NewEncoder(w).Encode(conversationRes{ConversationID: id, Token: tok})
}

// signToken creates an HS256 JWT carrying the conversation id.
// Expiry is configurable via TOKEN_EXPIRES_DAYS (default 30).
func signToken(conversationID string) (string, time.Time, error) {
	days := 30
	if v := os.Getenv("TOKEN_EXPIRES_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}
	exp := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"cid": conversationID,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	})
	ss, err := t.SignedString([]byte(getEnv("JWT_SECRET", "dev_secret_change_me")))
	return ss, exp, err
}

// setTokenCookie writes the conversation token cookie.
func (s *Server) setTokenCookie(w http.ResponseWriter, token string, exp time.Time) {
	name := getEnv("COOKIE_NAME", "wordweave_token")
	secure := os.Getenv("NODE_ENV") == "production"
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a token from Authorization header or the cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(getEnv("COOKIE_NAME", "wordweave_token")); err == nil {
		return c.Value
	}
	return ""
}

// ctxConvKey is the context key type for the conversation id.
type ctxConvKey struct{}

// requireConversation enforces a valid conversation token and injects the
// conversation id into request context.
func (s *Server) requireConversation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerOrCookie(r)
			if tokenStr == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(getEnv("JWT_SECRET", "dev_secret_change_me")), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			cid, _ := claims["cid"].(string)
			if cid == "" {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxConvKey{}, cid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// conversationID pulls the id placed by requireConversation.
func conversationID(r *http.Request) string {
	cid, _ := r.Context().Value(ctxConvKey{}).(string)
	return cid
}

// ------------------------------ sessions -----------------------------------

type startReq struct {
	Daily bool `json:"daily"`
}
type variantReq struct {
	Variant string `json:"variant"`
}
type wordReq struct {
	Word string `json:"word"`
}

// handleStart creates a session awaiting variant selection.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	out, err := s.mgr.Start(r.Context(), conversationID(r), req.Daily)
	s.reply(w, out, err)
}

// handleVariant selects the game variant and seeds the first word.
func (s *Server) handleVariant(w http.ResponseWriter, r *http.Request) {
	var req variantReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	out, err := s.mgr.SelectVariant(r.Context(), conversationID(r), req.Variant)
	s.reply(w, out, err)
}

// handleWord submits one word for validation.
func (s *Server) handleWord(w http.ResponseWriter, r *http.Request) {
	var req wordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	out, err := s.mgr.Submit(r.Context(), conversationID(r), req.Word)
	s.reply(w, out, err)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	out, err := s.mgr.Hint(r.Context(), conversationID(r))
	s.reply(w, out, err)
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	out, err := s.mgr.Skip(r.Context(), conversationID(r))
	s.reply(w, out, err)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	out, err := s.mgr.Stop(r.Context(), conversationID(r))
	s.reply(w, out, err)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	out, err := s.mgr.Status(r.Context(), conversationID(r))
	s.reply(w, out, err)
}

// reply maps manager errors to statuses and encodes the outcome.
// Rule rejections arrive as a nil error with accepted:false and pass
// through as HTTP 200.
func (s *Server) reply(w http.ResponseWriter, out session.Outcome, err error) {
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, statusFor(err))
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}

// statusFor translates engine errors into HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrUnknownVariant):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrInvalidIntent),
		errors.Is(err, session.ErrSessionCompleted),
		errors.Is(err, session.ErrSessionExpired):
		return http.StatusConflict
	case errors.Is(err, session.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ---------------------------- leaderboards ---------------------------------

// handleDailyLeaderboard lists the day's best daily-mode results.
// ?date=YYYY-MM-DD (default today, UTC), ?limit=N (default 20, max 100).
func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, `{"error":"bad_date"}`, http.StatusBadRequest)
		return
	}
	rows, err := s.results.DailyLeaderboard(r.Context(), date, limitParam(r))
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard query")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"date": date, "rows": rows})
}

// handleTopScores lists the all-time best results across variants.
func (s *Server) handleTopScores(w http.ResponseWriter, r *http.Request) {
	rows, err := s.results.TopScores(r.Context(), limitParam(r))
	if err != nil {
		log.Error().Err(err).Msg("top scores query")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"rows": rows})
}

// limitParam parses ?limit with a sane default and cap.
func limitParam(r *http.Request) int {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}
	return limit
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
