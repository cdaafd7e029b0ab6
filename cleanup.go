package main

import (
	"context"

	"github.com/helpcomp/firefly-iii-gnucash-importer/firefly"
	"github.com/rs/zerolog/log"
)

// DeleteImported deletes every account whose notes carry the import marker
// and returns how many were deleted. Accounts are fetched first unless a
// list is already cached.
func (o *Operator) DeleteImported(ctx context.Context, dryRun bool) (int, error) {
	log.Debug().Msg("Checking for imported accounts")
	return o.deleteAccounts(ctx, firefly.Account.Imported, dryRun)
}

// DeleteAll deletes every account on the server.
func (o *Operator) DeleteAll(ctx context.Context, dryRun bool) (int, error) {
	return o.deleteAccounts(ctx, func(firefly.Account) bool { return true }, dryRun)
}

func (o *Operator) deleteAccounts(ctx context.Context, match func(firefly.Account) bool, dryRun bool) (int, error) {
	accounts, err := o.List(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, acct := range accounts {
		if !match(acct) {
			log.Info().Str("Type", acct.Attributes.Type).Str("Name", acct.Attributes.Name).Str("ID", acct.ID).Msg("Skipping account")
			continue
		}

		if dryRun {
			log.Info().Str("Type", acct.Attributes.Type).Str("Name", acct.Attributes.Name).Str("ID", acct.ID).Msg("Would delete account [DryRun]")
			continue
		}

		log.Info().Str("Type", acct.Attributes.Type).Str("Name", acct.Attributes.Name).Str("ID", acct.ID).Msg("Deleting account")
		if err := o.ff.DeleteAccount(ctx, acct.ID); err != nil {
			o.ff.InvalidateAccounts()
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}
