// Package http exposes the tracker's query and mutation operations over a
// small JSON API. Balance and report reads are served from a TTL-bounded LRU
// that is purged on every mutation.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/services"
)

// Ledger is the port the handlers mutate and query through. It is satisfied
// by services.LedgerService (SQLite + AMQP) and store.MemoryLedger.
type Ledger interface {
	RecordTransaction(ctx context.Context, t core.Transaction, categoryName string) (core.Transaction, error)
	RemoveTransaction(ctx context.Context, id int64) (bool, error)
	CreateCategory(ctx context.Context, name string, limit *core.Money) (core.BudgetCategory, error)
	RemoveCategory(ctx context.Context, name string) (bool, error)
	WriteCheckpoint(ctx context.Context, date core.Date, amount core.Money) error
	Snapshot(ctx context.Context) (core.Snapshot, error)
}

type Server struct {
	ledger Ledger

	balanceCache *cache.LRUCache[balanceResponse]
	reportCache  *cache.LRUCache[services.SpendingReport]

	started time.Time
}

// NewServer builds the HTTP server around a ledger backend.
func NewServer(addr string, ledger Ledger) *http.Server {
	s := &Server{
		ledger:       ledger,
		balanceCache: cache.NewLRUCache[balanceResponse](256, 5*time.Minute),
		reportCache:  cache.NewLRUCache[services.SpendingReport](256, 5*time.Minute),
		started:      time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/v1/balance", s.handleBalance)
	mux.HandleFunc("GET /api/v1/report", s.handleReport)
	mux.HandleFunc("POST /api/v1/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/v1/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/v1/categories", s.handleCreateCategory)
	mux.HandleFunc("DELETE /api/v1/categories/{name}", s.handleDeleteCategory)
	mux.HandleFunc("POST /api/v1/checkpoints", s.handleSetCheckpoint)

	return &http.Server{
		Addr:    addr,
		Handler: logRequests(mux),
	}
}

// invalidate drops cached reads after any mutation.
func (s *Server) invalidate() {
	s.balanceCache.Purge()
	s.reportCache.Purge()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
