// main.go
//
// Entry point for the word-game server.
// Responsibilities:
//   - Environment loading (.env) and log level.
//   - Embedding index (file or built-in fallback) and dictionary client.
//   - SQLite open + migrations, or in-memory store when DATABASE_PATH=memory.
//   - Session manager + idle sweeper + HTTP server startup.

package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordweave/internal/dict"
	"wordweave/internal/embed"
	"wordweave/internal/game"
	"wordweave/internal/httpserver"
	"wordweave/internal/session"
	"wordweave/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// Embedding index: file if configured, built-in vocabulary otherwise.
	var idx *embed.Index
	var err error
	if path := os.Getenv("EMBEDDINGS_FILE"); path != "" {
		idx, err = embed.Load(path)
	} else {
		idx, err = embed.LoadEmbedded()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load embeddings")
	}
	log.Info().Int("vocab", idx.VocabSize()).Msg("embedding index ready")

	// Dictionary: remote API, or the embedding vocabulary for offline play.
	var dc game.DictionaryClient
	if os.Getenv("DICTIONARY_OFFLINE") == "true" {
		dc = dict.NewVocabClient(idx)
		log.Info().Msg("dictionary: offline (embedding vocabulary)")
	} else {
		dc = dict.NewClient(getEnv("DICTIONARY_API_URL", dict.DefaultBaseURL), os.Getenv("DICTIONARY_API_KEY"))
	}

	// Store: SQLite by default, in-memory when requested.
	var st store.Store
	if dsn := getEnv("DATABASE_PATH", "./data/wordweave.db"); dsn == "memory" {
		st = store.NewMemoryStore()
	} else {
		db, err := openDB(dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		if err := migrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		st = store.NewSQLite(db)
	}

	mgr := session.NewManager(session.Config{
		SimilarityThreshold: envFloat("SIMILARITY_THRESHOLD", 0),
		HintTopK:            envInt("HINT_TOP_K", 0),
		IdleExpiry:          time.Duration(envInt("IDLE_EXPIRY_MINUTES", 0)) * time.Minute,
		DailySalt:           os.Getenv("DAILY_SALT"),
	}, dc, idx, st)
	go mgr.RunSweeper(context.Background())

	srv := httpserver.New(mgr, st)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting wordweave server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
