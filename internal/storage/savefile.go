package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bilancio/internal/core"
)

const saveFormatVersion = "1.0"

// SaveFiles reads and writes named JSON snapshots of the store under a saves
// directory. Transaction IDs survive the round trip; transactions reference
// their category by name so the document stays hand-editable.
type SaveFiles struct {
	dir string
}

type (
	saveDocument struct {
		Metadata     saveMetadata        `json:"metadata"`
		Categories   []categoryRecord    `json:"categories"`
		Transactions []transactionRecord `json:"transactions"`
		Checkpoints  []checkpointRecord  `json:"checkpoints"`
	}

	saveMetadata struct {
		Version string `json:"version"`
		Created string `json:"created"`
	}

	categoryRecord struct {
		Name         string  `json:"name"`
		MonthlyLimit *string `json:"monthly_limit"`
	}

	transactionRecord struct {
		ID          int64     `json:"id"`
		Amount      string    `json:"amount"`
		Kind        string    `json:"kind"`
		Date        core.Date `json:"date"`
		Recurring   bool      `json:"recurring"`
		Interval    string    `json:"interval"`
		Description string    `json:"description"`
		Category    *string   `json:"category"`
	}

	checkpointRecord struct {
		Date   core.Date `json:"date"`
		Amount string    `json:"amount"`
	}
)

func NewSaveFiles(dir string) *SaveFiles {
	return &SaveFiles{dir: dir}
}

// Save writes the snapshot as <name>.json, creating the saves directory on
// first use.
func (f *SaveFiles) Save(name string, snap core.Snapshot) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("create saves directory: %w", err)
	}

	doc := saveDocument{
		Metadata: saveMetadata{
			Version: saveFormatVersion,
			Created: time.Now().UTC().Format("2006-01-02"),
		},
		Categories:   make([]categoryRecord, 0, len(snap.Categories)),
		Transactions: make([]transactionRecord, 0, len(snap.Transactions)),
		Checkpoints:  make([]checkpointRecord, 0, len(snap.Checkpoints)),
	}

	names := make(map[int64]string, len(snap.Categories))
	for _, c := range snap.Categories {
		names[c.ID] = c.Name
		rec := categoryRecord{Name: c.Name}
		if c.MonthlyLimit != nil {
			limit := c.MonthlyLimit.String()
			rec.MonthlyLimit = &limit
		}
		doc.Categories = append(doc.Categories, rec)
	}

	for _, t := range snap.Transactions {
		rec := transactionRecord{
			ID:          t.ID,
			Amount:      t.Amount.String(),
			Kind:        string(t.Kind),
			Date:        t.OccurredOn,
			Recurring:   t.Recurring,
			Interval:    string(t.Interval),
			Description: t.Description,
		}
		if name, ok := names[t.CategoryID]; ok && t.CategoryID != 0 {
			rec.Category = &name
		}
		doc.Transactions = append(doc.Transactions, rec)
	}

	for _, cp := range snap.Checkpoints {
		doc.Checkpoints = append(doc.Checkpoints, checkpointRecord{
			Date:   cp.Date,
			Amount: cp.Amount.String(),
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal save document: %w", err)
	}
	if err := os.WriteFile(f.path(name), data, 0644); err != nil {
		return fmt.Errorf("write save file: %w", err)
	}
	return nil
}

// Load reads <name>.json back into a snapshot, rebuilding category IDs and
// membership lists from the name references.
func (f *SaveFiles) Load(name string) (core.Snapshot, error) {
	var snap core.Snapshot

	data, err := os.ReadFile(f.path(name))
	if err != nil {
		return snap, fmt.Errorf("read save file: %w", err)
	}
	var doc saveDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return snap, fmt.Errorf("decode save file: %w", err)
	}

	catIDs := make(map[string]int64, len(doc.Categories))
	for i, rec := range doc.Categories {
		cat := core.BudgetCategory{ID: int64(i) + 1, Name: rec.Name}
		if rec.MonthlyLimit != nil {
			cents, err := core.ParseDecimalToCents(*rec.MonthlyLimit)
			if err != nil {
				return core.Snapshot{}, fmt.Errorf("category %q monthly limit: %w", rec.Name, err)
			}
			cat.MonthlyLimit = &core.Money{Cents: cents}
		}
		catIDs[rec.Name] = cat.ID
		snap.Categories = append(snap.Categories, cat)
	}

	for _, rec := range doc.Transactions {
		cents, err := core.ParseDecimalToCents(rec.Amount)
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("transaction %d amount: %w", rec.ID, err)
		}
		t := core.Transaction{
			ID:          rec.ID,
			Amount:      core.Money{Cents: cents},
			Kind:        core.TransactionKind(rec.Kind),
			OccurredOn:  rec.Date,
			Recurring:   rec.Recurring,
			Interval:    core.RecurrenceInterval(rec.Interval),
			Description: rec.Description,
		}
		if !t.Recurring {
			t.Interval = core.None
		}
		if rec.Category != nil {
			id, ok := catIDs[*rec.Category]
			if !ok {
				return core.Snapshot{}, fmt.Errorf("transaction %d references unknown category %q", rec.ID, *rec.Category)
			}
			t.CategoryID = id
		}
		if err := t.Validate(); err != nil {
			return core.Snapshot{}, fmt.Errorf("transaction %d: %w", rec.ID, err)
		}
		snap.Transactions = append(snap.Transactions, t)
	}

	// Rebuild membership lists after all transactions are known.
	members := make(map[int64][]int64)
	for _, t := range snap.Transactions {
		if t.CategoryID != 0 {
			members[t.CategoryID] = append(members[t.CategoryID], t.ID)
		}
	}
	for i := range snap.Categories {
		snap.Categories[i].TransactionIDs = members[snap.Categories[i].ID]
	}

	for _, rec := range doc.Checkpoints {
		cents, err := core.ParseSignedDecimalToCents(rec.Amount)
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("checkpoint %s amount: %w", rec.Date, err)
		}
		snap.Checkpoints = append(snap.Checkpoints, core.BalanceCheckpoint{
			Date:   rec.Date,
			Amount: core.Money{Cents: cents},
		})
	}

	return snap, nil
}

// List returns the available save names, without the .json extension.
func (f *SaveFiles) List() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read saves directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names, nil
}

func (f *SaveFiles) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}
