package main

import (
	"context"
	"fmt"

	"github.com/helpcomp/firefly-iii-gnucash-importer/firefly"
	"github.com/helpcomp/firefly-iii-gnucash-importer/gnucash"
	"github.com/rs/zerolog/log"
)

// Operator runs account operations against a Firefly server.
type Operator struct {
	ff *firefly.Firefly
}

func NewOperator(ff *firefly.Firefly) *Operator {
	return &Operator{ff: ff}
}

// Fetch refetches every account, replacing the cached list.
func (o *Operator) Fetch(ctx context.Context) ([]firefly.Account, error) {
	accounts, err := o.ff.RefreshAccounts(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("Count", len(accounts.Accounts)).Msg("Fetched accounts")
	return accounts.Accounts, nil
}

// List returns the cached accounts, fetching them on first use.
func (o *Operator) List(ctx context.Context) ([]firefly.Account, error) {
	accounts, err := o.ff.CachedAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return accounts.Accounts, nil
}

// Create posts a translated account.
func (o *Operator) Create(ctx context.Context, req firefly.AccountRequest) (firefly.Account, error) {
	acct, err := o.ff.CreateAccount(ctx, req)
	if err != nil {
		return firefly.Account{}, err
	}
	log.Info().
		Str("Type", acct.Attributes.Type).
		Str("Name", acct.Attributes.Name).
		Str("ID", acct.ID).
		Msg("Created account")
	return acct, nil
}

// ImportAccounts creates a Firefly account for every importable row of the
// export at path. Accounts that already exist with the same name and type
// are left alone, so an interrupted import can be resumed.
func (o *Operator) ImportAccounts(ctx context.Context, tr *gnucash.Translator, path string, doClear bool) (ImportSummary, error) {
	var summary ImportSummary

	if doClear {
		n, err := o.DeleteImported(ctx, false)
		summary.Cleared = n
		if err != nil {
			return summary, err
		}
	}

	before := len(tr.Accounts)
	if err := tr.LoadAccountsCSV(path); err != nil {
		return summary, err
	}
	rows := tr.Accounts[before:]
	summary.Read = len(rows)

	for _, acc := range rows {
		req, err := tr.ConvertAccount(acc)
		if err != nil {
			return summary, fmt.Errorf("translating %s: %w", acc.FullName, err)
		}
		if req == nil {
			summary.Skipped++
			continue
		}

		existing, found, err := FindAccount(ctx, o.ff, req.Type, req.Name)
		if err != nil {
			return summary, err
		}
		if found {
			log.Info().
				Str("Type", req.Type).
				Str("Name", req.Name).
				Str("ID", existing.ID).
				Msg("Account already exists, skipping")
			summary.Existing++
			continue
		}

		if _, err := o.Create(ctx, *req); err != nil {
			return summary, err
		}
		summary.Created++
	}

	return summary, nil
}
