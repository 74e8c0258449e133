package services

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// LedgerService orchestrates mutations across SQLite and AMQP. Writes land
// in SQLite first; event publication is best-effort and never fails the
// request once the row is stored.
type LedgerService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewLedgerService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// RecordTransaction saves a transaction and publishes a recorded event.
func (s *LedgerService) RecordTransaction(ctx context.Context, t core.Transaction, categoryName string) (core.Transaction, error) {
	stored, err := s.storage.CreateTransaction(ctx, t, categoryName)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publish(ctx, func() error {
		return s.amqpClient.PublishTransactionRecorded(ctx, stored.ID)
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", stored.ID, "error", err)
	}

	return stored, nil
}

// RemoveTransaction deletes a transaction and publishes a deleted event.
// Returns false when the ID is unknown.
func (s *LedgerService) RemoveTransaction(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.storage.DeleteTransaction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	if !deleted {
		return false, nil
	}

	if err := s.publish(ctx, func() error {
		return s.amqpClient.PublishTransactionDeleted(ctx, id)
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete event",
			"id", id, "error", err)
	}

	return true, nil
}

// CreateCategory stores a budget category.
func (s *LedgerService) CreateCategory(ctx context.Context, name string, limit *core.Money) (core.BudgetCategory, error) {
	return s.storage.CreateCategory(ctx, name, limit)
}

// RemoveCategory deletes a category, leaving its transactions uncategorized.
func (s *LedgerService) RemoveCategory(ctx context.Context, name string) (bool, error) {
	return s.storage.DeleteCategory(ctx, name)
}

// WriteCheckpoint upserts a balance checkpoint and publishes an event.
func (s *LedgerService) WriteCheckpoint(ctx context.Context, date core.Date, amount core.Money) error {
	if err := s.storage.SetCheckpoint(ctx, date, amount); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}

	if err := s.publish(ctx, func() error {
		return s.amqpClient.PublishCheckpointWritten(ctx, date.String())
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to publish checkpoint event",
			"date", date.String(), "error", err)
	}

	return nil
}

// Snapshot loads the current store contents for the engines.
func (s *LedgerService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	return s.storage.LoadSnapshot(ctx)
}

func (s *LedgerService) publish(ctx context.Context, fn func() error) error {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not configured, skipping event")
		return nil
	}
	return fn()
}

// Close closes both storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
