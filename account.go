package main

import (
	"context"

	"github.com/helpcomp/firefly-iii-gnucash-importer/firefly"
)

// FindAccount looks an account up by type and name in the cached account
// list. found is false when no such account exists.
func FindAccount(ctx context.Context, ff *firefly.Firefly, accountType, name string) (account firefly.Account, found bool, err error) {
	accounts, err := ff.CachedAccounts(ctx)
	if err != nil {
		return firefly.Account{}, false, err
	}

	acct, ok := accounts.AccountsByName[firefly.AccountKey{Type: accountType, Name: name}]
	return acct, ok, nil
}
