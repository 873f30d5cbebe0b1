package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rawblock/feltledger/internal/api"
	"github.com/rawblock/feltledger/internal/db"
	"github.com/rawblock/feltledger/internal/feed"
	"github.com/rawblock/feltledger/internal/recorder"
	"github.com/rawblock/feltledger/internal/store"
)

const snapshotInterval = 10 * time.Second

func main() {
	log.Println("Starting feltledger ledger engine...")

	// ─── Environment Variables ──────────────────────────────────────────
	// All are optional: DATABASE_URL enables Postgres persistence and PORT
	// defaults to 5339. internal/api reads its own (API_AUTH_TOKEN,
	// ALLOWED_ORIGINS, BOUNDARY_STRICT_MODE, GIN_MODE).
	// ────────────────────────────────────────────────────────────────────

	st := store.New(store.DefaultConfig())
	rec := recorder.New(st, recorder.DefaultConfig())

	var dbConn *db.PostgresStore
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		conn, err := db.Connect(dbURL)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL, continuing without durable persistence. Error: %v", err)
		} else {
			dbConn = conn
			defer dbConn.Close()
			if err := dbConn.InitSchema(); err != nil {
				log.Printf("Warning: DB schema init failed: %v", err)
			}
			if settlements, timeFees, err := dbConn.LoadDedupKeys(context.Background()); err != nil {
				log.Printf("Warning: failed to warm-load dedup keys: %v", err)
			} else {
				rec.ImportDedupKeys(settlements, timeFees)
				log.Printf("Warm-loaded %d settlement and %d time-fee dedup keys", len(settlements), len(timeFees))
			}
		}
	} else {
		log.Println("DATABASE_URL not set — running without durable persistence (in-memory store only)")
	}

	hub := feed.NewHub()
	go hub.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if dbConn != nil {
		go runSnapshotLoop(ctx, dbConn, st, rec)
	}

	r := api.SetupRouter(st, rec, hub)

	port := getEnvOrDefault("PORT", "5339")

	srvErrCh := make(chan error, 1)
	go func() {
		log.Printf("Ledger engine listening on :%s\n", port)
		srvErrCh <- r.Run(":" + port)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErrCh:
		log.Fatalf("server stopped: %v", err)
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
		cancel()
		if dbConn != nil {
			flushSnapshot(context.Background(), dbConn, st, rec)
		}
	}
}

// runSnapshotLoop periodically mirrors the store's current state and the
// recorder's dedup keys into Postgres, for durability and external
// reporting. The live in-memory store is never reloaded from this mirror on
// restart — internal/db exists to serve downstream consumers a durable copy,
// not to resume the append chain itself.
func runSnapshotLoop(ctx context.Context, dbConn *db.PostgresStore, st *store.Store, rec *recorder.Recorder) {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := dbConn.SaveSnapshot(ctx, st.Export()); err != nil {
				log.Printf("Warning: snapshot persist failed: %v", err)
			}
			settlements, timeFees := rec.ExportDedupKeys()
			if err := dbConn.SaveDedupKeys(ctx, settlements, timeFees); err != nil {
				log.Printf("Warning: dedup key persist failed: %v", err)
			}
		}
	}
}

func flushSnapshot(ctx context.Context, dbConn *db.PostgresStore, st *store.Store, rec *recorder.Recorder) {
	if err := dbConn.SaveSnapshot(ctx, st.Export()); err != nil {
		log.Printf("Warning: final snapshot persist failed: %v", err)
	}
	settlements, timeFees := rec.ExportDedupKeys()
	if err := dbConn.SaveDedupKeys(ctx, settlements, timeFees); err != nil {
		log.Printf("Warning: final dedup key persist failed: %v", err)
	}
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
