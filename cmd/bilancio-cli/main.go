// Command bilancio-cli works against JSON save files: it loads the named
// save into the in-memory store, runs one operation, and writes the save
// back when the operation mutated anything.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/alecthomas/kong"

	"bilancio/internal/core"
	googleexport "bilancio/internal/export/google"
	"bilancio/internal/services"
	"bilancio/internal/storage"
	"bilancio/internal/store"
)

var cli struct {
	SavesDir string `help:"Directory holding JSON save files." default:"saves" env:"SAVES_DIR"`
	Name     string `help:"Save file to operate on." default:"default"`

	Add        addCmd        `cmd:"" help:"Record an income or expense transaction."`
	Balance    balanceCmd    `cmd:"" help:"Project the balance on a date."`
	Report     reportCmd     `cmd:"" help:"Aggregate spending for a day, month, or year."`
	Category   categoryCmd   `cmd:"" help:"Manage budget categories."`
	Checkpoint checkpointCmd `cmd:"" help:"Record a balance checkpoint."`
	Delete     deleteCmd     `cmd:"" help:"Delete transactions by ID or by filter."`
	Saves      savesCmd      `cmd:"" help:"List available save files."`
}

// app carries the loaded store and the save-file codec into commands.
type app struct {
	store *store.Store
	saves *storage.SaveFiles
	name  string
	today core.Date
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("bilancio-cli"),
		kong.Description("Personal income/expense tracker with balance projection."))

	a := &app{
		store: store.New(),
		saves: storage.NewSaveFiles(cli.SavesDir),
		name:  cli.Name,
		today: core.Today(time.Now()),
	}
	if snap, err := a.saves.Load(cli.Name); err == nil {
		a.store.ReplaceAll(snap)
	} else if !errors.Is(err, os.ErrNotExist) {
		ctx.FatalIfErrorf(err)
	}

	ctx.FatalIfErrorf(ctx.Run(a))
}

func (a *app) persist() error {
	if err := a.saves.Save(a.name, a.store.Snapshot()); err != nil {
		return fmt.Errorf("save %q: %w", a.name, err)
	}
	return nil
}

type addCmd struct {
	Amount   string `arg:"" help:"Positive decimal amount, e.g. 12.34."`
	Kind     string `arg:"" enum:"income,expense" help:"Transaction kind."`
	Category string `help:"Budget category name (created on first use)."`
	Date     string `help:"Occurrence date YYYY-MM-DD (default today)."`
	Recur    string `help:"Recurrence interval: daily, weekly, monthly, or yearly." placeholder:"INTERVAL"`
	Desc     string `help:"Free-text description."`
}

func (c *addCmd) Run(a *app) error {
	cents, err := core.ParseDecimalToCents(c.Amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", c.Amount, err)
	}
	date := a.today
	if c.Date != "" {
		if date, err = core.ParseDate(c.Date); err != nil {
			return fmt.Errorf("date %q: %w", c.Date, err)
		}
	}

	t := core.Transaction{
		Amount:      core.Money{Cents: cents},
		Kind:        core.TransactionKind(c.Kind),
		OccurredOn:  date,
		Recurring:   c.Recur != "",
		Interval:    core.RecurrenceInterval(c.Recur),
		Description: c.Desc,
	}
	stored, err := a.store.AddTransaction(t, c.Category)
	if err != nil {
		return err
	}
	if err := a.persist(); err != nil {
		return err
	}

	fmt.Printf("Added %s of %s on %s (id %d)", stored.Kind, stored.Amount, stored.OccurredOn, stored.ID)
	if stored.Recurring {
		fmt.Printf(", recurring %s", stored.Interval)
	}
	fmt.Println()
	return nil
}

type balanceCmd struct {
	Date string `arg:"" optional:"" help:"Target date YYYY-MM-DD (default today)."`
}

func (c *balanceCmd) Run(a *app) error {
	target := a.today
	if c.Date != "" {
		var err error
		if target, err = core.ParseDate(c.Date); err != nil {
			return fmt.Errorf("date %q: %w", c.Date, err)
		}
	}

	balance := services.NewProjector(a.store.Snapshot()).ProjectBalance(target)
	fmt.Printf("Projected balance on %s: %s\n", target, balance)
	return nil
}

type reportCmd struct {
	Day        int  `help:"Day of month to report on."`
	Month      int  `help:"Month to report on (1-12)."`
	Year       int  `help:"Year to report on."`
	Categories bool `help:"Include the per-category breakdown."`
	Export     bool `help:"Also append the report to the configured Google Sheet."`
}

func (c *reportCmd) Run(a *app) error {
	window := services.ResolveWindow(c.Day, c.Month, c.Year, a.today)
	report := services.NewReporter(a.store.Snapshot()).Aggregate(window)

	fmt.Printf("%s report for %s\n", window.Kind, report.Window)
	fmt.Printf("  Income:   %s\n", report.Totals.Income)
	fmt.Printf("  Expenses: %s\n", report.Totals.Expense)
	fmt.Printf("  Net:      %s\n", report.Totals.Net)

	if c.Categories {
		names := make([]string, 0, len(report.ByCategory))
		for name := range report.ByCategory {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("By category:")
		for _, name := range names {
			t := report.ByCategory[name]
			fmt.Printf("  %s: net %s (income %s, expense %s)\n", name, t.Net, t.Income, t.Expense)
		}
	}

	if c.Export {
		exporter, err := googleexport.NewFromEnv(context.Background())
		if err != nil {
			return fmt.Errorf("sheets exporter: %w", err)
		}
		if err := exporter.WriteReport(context.Background(), report); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		fmt.Println("Report exported to Google Sheets")
	}
	return nil
}

type categoryCmd struct {
	Add    categoryAddCmd    `cmd:"" help:"Add a budget category."`
	List   categoryListCmd   `cmd:"" help:"List budget categories."`
	Delete categoryDeleteCmd `cmd:"" help:"Delete a budget category."`
}

type categoryAddCmd struct {
	CatName string `arg:"" name:"name" help:"Category name."`
	Limit   string `help:"Optional monthly limit, e.g. 250.00."`
}

func (c *categoryAddCmd) Run(a *app) error {
	var limit *core.Money
	if c.Limit != "" {
		cents, err := core.ParseDecimalToCents(c.Limit)
		if err != nil {
			return fmt.Errorf("limit %q: %w", c.Limit, err)
		}
		limit = &core.Money{Cents: cents}
	}
	cat, err := a.store.AddCategory(c.CatName, limit)
	if err != nil {
		return err
	}
	if err := a.persist(); err != nil {
		return err
	}
	fmt.Printf("Added category %s (id %d)\n", cat.Name, cat.ID)
	return nil
}

type categoryListCmd struct{}

func (c *categoryListCmd) Run(a *app) error {
	snap := a.store.Snapshot()
	if len(snap.Categories) == 0 {
		fmt.Println("No categories defined")
		return nil
	}
	for _, cat := range snap.Categories {
		limit := "no limit"
		if cat.MonthlyLimit != nil {
			limit = cat.MonthlyLimit.String()
		}
		fmt.Printf("  %s: %s (%d transactions)\n", cat.Name, limit, len(cat.TransactionIDs))
	}
	return nil
}

type categoryDeleteCmd struct {
	CatName string `arg:"" name:"name" help:"Category name."`
}

func (c *categoryDeleteCmd) Run(a *app) error {
	if !a.store.DeleteCategory(c.CatName) {
		return fmt.Errorf("category not found: %s", c.CatName)
	}
	if err := a.persist(); err != nil {
		return err
	}
	fmt.Printf("Deleted category %s\n", c.CatName)
	return nil
}

type checkpointCmd struct {
	Date   string `arg:"" help:"Checkpoint date YYYY-MM-DD."`
	Amount string `arg:"" help:"Balance at the end of that date; may be negative."`
}

func (c *checkpointCmd) Run(a *app) error {
	date, err := core.ParseDate(c.Date)
	if err != nil {
		return fmt.Errorf("date %q: %w", c.Date, err)
	}
	cents, err := core.ParseSignedDecimalToCents(c.Amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", c.Amount, err)
	}
	a.store.SetCheckpoint(date, core.Money{Cents: cents})
	if err := a.persist(); err != nil {
		return err
	}
	fmt.Printf("Checkpoint set: %s = %s\n", date, core.Money{Cents: cents})
	return nil
}

type deleteCmd struct {
	ID       int64  `help:"Delete a single transaction by ID."`
	Amount   string `help:"Filter: exact amount."`
	Kind     string `help:"Filter: income or expense." enum:",income,expense"`
	From     string `help:"Filter: start date YYYY-MM-DD."`
	To       string `help:"Filter: end date YYYY-MM-DD."`
	Category string `help:"Filter: category name."`
}

func (c *deleteCmd) Run(a *app) error {
	if c.ID > 0 {
		if !a.store.DeleteTransaction(c.ID) {
			return fmt.Errorf("transaction not found: %d", c.ID)
		}
		if err := a.persist(); err != nil {
			return err
		}
		fmt.Printf("Deleted transaction %d\n", c.ID)
		return nil
	}

	var filter store.TransactionFilter
	if c.Amount != "" {
		cents, err := core.ParseDecimalToCents(c.Amount)
		if err != nil {
			return fmt.Errorf("amount %q: %w", c.Amount, err)
		}
		filter.Amount = &core.Money{Cents: cents}
	}
	if c.Kind != "" {
		kind := core.TransactionKind(c.Kind)
		filter.Kind = &kind
	}
	if c.From != "" {
		from, err := core.ParseDate(c.From)
		if err != nil {
			return fmt.Errorf("from %q: %w", c.From, err)
		}
		filter.From = &from
	}
	if c.To != "" {
		to, err := core.ParseDate(c.To)
		if err != nil {
			return fmt.Errorf("to %q: %w", c.To, err)
		}
		filter.To = &to
	}
	if c.Category != "" {
		filter.Category = &c.Category
	}
	if filter == (store.TransactionFilter{}) {
		return fmt.Errorf("specify --id or at least one filter")
	}

	n := a.store.DeleteTransactionsMatching(filter)
	if err := a.persist(); err != nil {
		return err
	}
	fmt.Printf("Deleted %d transactions\n", n)
	return nil
}

type savesCmd struct{}

func (c *savesCmd) Run(a *app) error {
	names, err := a.saves.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No save files available")
		return nil
	}
	for _, name := range names {
		fmt.Println("  " + name)
	}
	return nil
}
