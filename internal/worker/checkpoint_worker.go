// Package worker contains the checkpoint materializer run by
// cmd/checkpoint-worker. Periodically recording today's projected balance as
// a checkpoint keeps future projection windows short, since the simulation
// only walks days between the anchor checkpoint and the target date.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

// Ledger is the slice of the ledger port the worker needs: read a snapshot,
// write a checkpoint.
type Ledger interface {
	Snapshot(ctx context.Context) (core.Snapshot, error)
	WriteCheckpoint(ctx context.Context, date core.Date, amount core.Money) error
}

// CheckpointWorker projects the balance for a given day and stores it as a
// checkpoint through the ledger.
type CheckpointWorker struct {
	ledger Ledger
}

func NewCheckpointWorker(ledger Ledger) *CheckpointWorker {
	return &CheckpointWorker{ledger: ledger}
}

// MaterializeCheckpoint projects the balance up to day and writes it as the
// checkpoint for that date. The projection runs over a snapshot taken before
// the write, so the new checkpoint never feeds its own computation.
func (w *CheckpointWorker) MaterializeCheckpoint(ctx context.Context, day core.Date) error {
	snap, err := w.ledger.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	balance := services.NewProjector(snap).ProjectBalance(day)

	if err := w.ledger.WriteCheckpoint(ctx, day, balance); err != nil {
		return fmt.Errorf("materialize checkpoint: %w", err)
	}

	slog.InfoContext(ctx, "Materialized balance checkpoint",
		"date", day.String(),
		"amount_cents", balance.Cents,
		"transactions", len(snap.Transactions))
	return nil
}

// Run materializes a checkpoint immediately and then on every tick until the
// context is cancelled.
func (w *CheckpointWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.MaterializeCheckpoint(ctx, core.Today(time.Now())); err != nil {
		slog.ErrorContext(ctx, "Checkpoint materialization failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.MaterializeCheckpoint(ctx, core.Today(time.Now())); err != nil {
				slog.ErrorContext(ctx, "Checkpoint materialization failed", "error", err)
			}
		}
	}
}
