package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/mrlokans/frenchmaster/internal/config"
	"github.com/mrlokans/frenchmaster/internal/database/records"
	"github.com/mrlokans/frenchmaster/internal/maintenance"
)

// ErrPredefinedRemaining is returned by verify-store when predefined rows
// are still present.
var ErrPredefinedRemaining = errors.New("predefined records remain in the store")

// VerifyStoreCommand checks that no predefined rows are left after a purge.
type VerifyStoreCommand struct {
	DatabasePath string
	Categories   []string
	Verbose      bool
	JSON         bool

	out io.Writer
}

func NewVerifyStoreCommand() *VerifyStoreCommand {
	return &VerifyStoreCommand{out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *VerifyStoreCommand) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("verify-store", pflag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringSliceVarP(&cmd.Categories, "category", "c", nil, "Category to check (repeatable; default all)")
	fs.BoolVarP(&cmd.Verbose, "verbose", "v", false, "List every remaining id")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the report as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s verify-store [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Count predefined records left in the content tables.\n")
		fmt.Fprintf(os.Stderr, "Exits non-zero when any remain.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *VerifyStoreCommand) Run() error {
	categories, err := parseCategories(cmd.Categories)
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := maintenance.NewPurger(records.NewRepository(db.DB)).Verify(categories)
	if cmd.JSON {
		if jsonErr := writeJSON(cmd.out, report); jsonErr != nil {
			return jsonErr
		}
	} else {
		printReport(cmd.out, report, cmd.Verbose)
	}
	if err != nil {
		return err
	}

	if n := report.TotalMatched(); n > 0 {
		return fmt.Errorf("%w: %d", ErrPredefinedRemaining, n)
	}
	if !cmd.JSON {
		fmt.Fprintln(cmd.out, "store is clean")
	}
	return nil
}
