package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/helpcomp/firefly-iii-gnucash-importer/firefly"
	"github.com/helpcomp/firefly-iii-gnucash-importer/gnucash"
	"github.com/rs/zerolog/log"
)

var errTransactionsNotImplemented = errors.New("importing GnuCash transactions is not implemented")

type AccountListCmd struct {
	Fmt string `name:"fmt" help:"Output format (${enum})." enum:"py,json" default:"py"`
}

func (c *AccountListCmd) Run(ctx context.Context, app *App) error {
	accounts, err := app.op.Fetch(ctx)
	if err != nil {
		return err
	}
	return writeAccounts(app.out, c.Fmt, accounts)
}

type AccountDeleteCmd struct {
	Which  string `arg:"" enum:"all,imported" help:"Which accounts to delete (${enum})."`
	DryRun bool   `help:"Log what would be deleted without deleting anything."`
}

func (c *AccountDeleteCmd) Run(ctx context.Context, app *App) error {
	var (
		n   int
		err error
	)
	switch c.Which {
	case deleteAll:
		n, err = app.op.DeleteAll(ctx, c.DryRun)
	case deleteImported:
		n, err = app.op.DeleteImported(ctx, c.DryRun)
	default:
		return fmt.Errorf("unknown delete target %q", c.Which)
	}
	log.Info().Int("Deleted", n).Bool("DryRun", c.DryRun).Msg("Account deletion finished")
	return err
}

type ImportCmd struct {
	GnucashAccounts     ImportAccountsCmd     `cmd:"" name:"gnucash-accounts" help:"Create Firefly accounts from a GnuCash account tree CSV export."`
	GnucashTransactions ImportTransactionsCmd `cmd:"" name:"gnucash-transactions" help:"Import GnuCash transactions (not implemented)."`
}

type ImportAccountsCmd struct {
	File    string `arg:"" type:"existingfile" help:"GnuCash account tree CSV export."`
	DoClear bool   `negatable:"" help:"Delete previously imported accounts before importing."`
}

func (c *ImportAccountsCmd) Run(ctx context.Context, app *App) error {
	paymentDate, err := app.cfg.PaymentDate()
	if err != nil {
		return err
	}
	tr := gnucash.NewTranslator(gnucash.Options{
		SkipNames:       app.cfg.Import.SkipNames,
		DefaultCurrency: app.cfg.Import.DefaultCurrency,
		PaymentDate:     paymentDate,
	})

	summary, err := app.op.ImportAccounts(ctx, tr, c.File, c.DoClear)
	log.Info().
		Int("Read", summary.Read).
		Int("Skipped", summary.Skipped).
		Int("Existing", summary.Existing).
		Int("Created", summary.Created).
		Int("Cleared", summary.Cleared).
		Msg("Account import finished")
	return err
}

type ImportTransactionsCmd struct {
	File string `arg:"" type:"existingfile" help:"GnuCash transactions CSV export."`
}

func (c *ImportTransactionsCmd) Run() error {
	return errTransactionsNotImplemented
}

func writeAccounts(w io.Writer, format string, accounts []firefly.Account) error {
	switch format {
	case fmtJSON:
		if accounts == nil {
			accounts = []firefly.Account{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(accounts)
	case fmtPy:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTYPE\tROLE\tCURRENCY\tBALANCE\tIMPORTED\tNAME\tGNUCASH")
		for _, a := range accounts {
			source := ""
			if a.Metadata != nil {
				source = a.Metadata.FullName
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				a.ID,
				a.Attributes.Type,
				a.Attributes.Role,
				a.Attributes.CurrencyCode,
				a.Attributes.CurrentBalance.StringFixed(2),
				strconv.FormatBool(a.Imported()),
				a.Attributes.Name,
				source,
			)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
