package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func sampleSnapshot() core.Snapshot {
	limit := core.Money{Cents: 25000}
	return core.Snapshot{
		Categories: []core.BudgetCategory{
			{ID: 1, Name: "Food", MonthlyLimit: &limit, TransactionIDs: []int64{1}},
			{ID: 2, Name: "Rent", TransactionIDs: nil},
		},
		Transactions: []core.Transaction{
			{
				ID:          1,
				Amount:      core.Money{Cents: 1250},
				Kind:        core.Expense,
				OccurredOn:  core.NewDate(2023, 4, 2),
				Description: "groceries",
				CategoryID:  1,
			},
			{
				ID:         5,
				Amount:     core.Money{Cents: 100000},
				Kind:       core.Income,
				OccurredOn: core.NewDate(2023, 4, 1),
				Recurring:  true,
				Interval:   core.Monthly,
			},
		},
		Checkpoints: []core.BalanceCheckpoint{
			{Date: core.NewDate(2023, 3, 31), Amount: core.Money{Cents: -5000}},
		},
	}
}

func TestSaveFiles_RoundTrip(t *testing.T) {
	saves := NewSaveFiles(t.TempDir())

	require.NoError(t, saves.Save("main", sampleSnapshot()))

	loaded, err := saves.Load("main")
	require.NoError(t, err)

	require.Len(t, loaded.Transactions, 2)
	assert.Equal(t, int64(1), loaded.Transactions[0].ID)
	assert.Equal(t, int64(5), loaded.Transactions[1].ID)
	assert.Equal(t, int64(1250), loaded.Transactions[0].Amount.Cents)
	assert.Equal(t, "groceries", loaded.Transactions[0].Description)
	assert.True(t, loaded.Transactions[1].Recurring)
	assert.Equal(t, core.Monthly, loaded.Transactions[1].Interval)

	require.Len(t, loaded.Categories, 2)
	assert.Equal(t, "Food", loaded.Categories[0].Name)
	require.NotNil(t, loaded.Categories[0].MonthlyLimit)
	assert.Equal(t, int64(25000), loaded.Categories[0].MonthlyLimit.Cents)
	assert.Equal(t, []int64{1}, loaded.Categories[0].TransactionIDs)
	assert.Empty(t, loaded.Categories[1].TransactionIDs)

	require.Len(t, loaded.Checkpoints, 1)
	assert.Equal(t, int64(-5000), loaded.Checkpoints[0].Amount.Cents)
	assert.Equal(t, "2023-03-31", loaded.Checkpoints[0].Date.String())
}

func TestSaveFiles_DocumentShape(t *testing.T) {
	dir := t.TempDir()
	saves := NewSaveFiles(dir)
	require.NoError(t, saves.Save("shape", sampleSnapshot()))

	data, err := os.ReadFile(filepath.Join(dir, "shape.json"))
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"metadata", "categories", "transactions", "checkpoints"} {
		assert.Contains(t, doc, key)
	}

	var meta map[string]string
	require.NoError(t, json.Unmarshal(doc["metadata"], &meta))
	assert.Equal(t, "1.0", meta["version"])
	assert.NotEmpty(t, meta["created"])
}

func TestSaveFiles_UnknownCategoryRejected(t *testing.T) {
	dir := t.TempDir()
	doc := `{
  "metadata": {"version": "1.0", "created": "2023-04-01"},
  "categories": [],
  "transactions": [
    {"id": 1, "amount": "10.00", "kind": "expense", "date": "2023-04-01",
     "recurring": false, "interval": "", "description": "", "category": "Ghost"}
  ],
  "checkpoints": []
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(doc), 0644))

	_, err := NewSaveFiles(dir).Load("broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestSaveFiles_LoadMissing(t *testing.T) {
	_, err := NewSaveFiles(t.TempDir()).Load("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveFiles_List(t *testing.T) {
	dir := t.TempDir()
	saves := NewSaveFiles(dir)

	names, err := saves.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, saves.Save("alpha", core.Snapshot{}))
	require.NoError(t, saves.Save("beta", core.Snapshot{}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	names, err = saves.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)
}

func TestSaveFiles_ListMissingDir(t *testing.T) {
	names, err := NewSaveFiles(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Nil(t, names)
}
