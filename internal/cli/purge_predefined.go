package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/frenchmaster/internal/config"
	"github.com/mrlokans/frenchmaster/internal/database"
	"github.com/mrlokans/frenchmaster/internal/database/records"
	"github.com/mrlokans/frenchmaster/internal/entities"
	"github.com/mrlokans/frenchmaster/internal/maintenance"
)

// PurgePredefinedCommand deletes shipped records that were persisted into
// the content tables.
type PurgePredefinedCommand struct {
	DatabasePath string
	Categories   []string
	DryRun       bool
	Verbose      bool
	JSON         bool

	out io.Writer
}

func NewPurgePredefinedCommand() *PurgePredefinedCommand {
	return &PurgePredefinedCommand{out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *PurgePredefinedCommand) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("purge-predefined", pflag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringSliceVarP(&cmd.Categories, "category", "c", nil, "Category to purge (repeatable; default all)")
	fs.BoolVarP(&cmd.DryRun, "dry-run", "n", false, "Report what would be deleted without deleting")
	fs.BoolVarP(&cmd.Verbose, "verbose", "v", false, "List every matched id")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the report as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s purge-predefined [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete bundled records (ids word-N, verb-N, sentence-N, number-N, fallback-wN\n")
		fmt.Fprintf(os.Stderr, "or flagged predefined) from the content tables. Learner records are kept.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s purge-predefined --dry-run\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s purge-predefined --category verb --category word\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the purge. A running server keeps serving its cache until
// its next refresh.
func (cmd *PurgePredefinedCommand) Run() error {
	categories, err := parseCategories(cmd.Categories)
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, purgeErr := maintenance.NewPurger(records.NewRepository(db.DB)).Purge(ctx, categories, cmd.DryRun)

	if cmd.JSON {
		if err := writeJSON(cmd.out, report); err != nil {
			return err
		}
	} else {
		printReport(cmd.out, report, cmd.Verbose)
	}

	if purgeErr != nil {
		return fmt.Errorf("purge finished with errors: %w", purgeErr)
	}
	return nil
}

func parseCategories(raw []string) ([]entities.Category, error) {
	var categories []entities.Category
	for _, r := range raw {
		c, err := entities.ParseCategory(r)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// openDatabase opens an existing database file. A missing file is an error
// here, unlike the server which creates it.
func openDatabase(path string) (*database.Database, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("database %s: %w", abs, err)
	}
	return database.NewDatabase(abs, database.WithLogLevel(logger.Error))
}

func printReport(w io.Writer, report maintenance.Report, verbose bool) {
	mode := "purge"
	if report.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(w, "Predefined records (%s)\n", mode)
	fmt.Fprintf(w, "%-10s %8s %8s %8s %8s\n", "table", "scanned", "matched", "deleted", "failed")
	for _, c := range report.Categories {
		fmt.Fprintf(w, "%-10s %8d %8d %8d %8d\n", c.Category.Table(), c.Scanned, c.Matched, c.Deleted, c.Failed)
		if c.Error != "" {
			fmt.Fprintf(w, "  error: %s\n", c.Error)
		}
		if verbose {
			for _, id := range c.IDs {
				fmt.Fprintf(w, "  - %s\n", id)
			}
		}
	}
	fmt.Fprintf(w, "total: matched=%d deleted=%d failed=%d (%s)\n",
		report.TotalMatched(), report.TotalDeleted(), report.TotalFailed(),
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
