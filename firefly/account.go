package firefly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const accountsPath = "accounts"

const (
	AcctTypeAsset     = "asset"
	AcctTypeExpense   = "expense"
	AcctTypeRevenue   = "revenue"
	AcctTypeLiability = "liability"
)

const (
	RoleDefaultAsset    = "defaultAsset"
	RoleCashWalletAsset = "cashWalletAsset"
	RoleCCAsset         = "ccAsset"

	// CreditCardMonthlyFull is the only credit card type Firefly III accepts.
	CreditCardMonthlyFull = "monthlyFull"
)

type Account struct {
	ID         string            `json:"id"`
	Attributes AccountAttributes `json:"attributes"`
	Metadata   *ImportMetadata   `json:"metadata,omitempty"`
}

type AccountAttributes struct {
	Active          bool            `json:"active"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Role            string          `json:"account_role,omitempty"`
	CurrencyCode    string          `json:"currency_code"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	IncludeNetWorth bool            `json:"include_net_worth"`
	Notes           string          `json:"notes"`
}

// Imported reports whether the account was created by the importer.
func (a Account) Imported() bool {
	return strings.Contains(a.Attributes.Notes, ImportMarker)
}

// AccountRequest is the body of a create-account request.
type AccountRequest struct {
	Name               string `json:"name"`
	Type               string `json:"type"`
	Role               string `json:"account_role,omitempty"`
	CurrencyCode       string `json:"currency_code"`
	IncludeNetWorth    bool   `json:"include_net_worth"`
	Active             bool   `json:"active"`
	Notes              string `json:"notes"`
	CreditCardType     string `json:"credit_card_type,omitempty"`
	MonthlyPaymentDate string `json:"monthly_payment_date,omitempty"`
}

// ParseAccount decodes one element of an accounts data array, including
// the metadata block embedded in its notes.
func ParseAccount(raw json.RawMessage) (Account, error) {
	var acct Account
	if err := json.Unmarshal(raw, &acct); err != nil {
		return Account{}, fmt.Errorf("decoding account: %w", err)
	}
	md, err := ParseMetadata(acct.Attributes.Notes)
	if err != nil {
		log.Warn().Err(err).Str("ID", acct.ID).Str("Name", acct.Attributes.Name).Msg("Ignoring unreadable import metadata")
		return acct, nil
	}
	acct.Metadata = md
	return acct, nil
}

// ListAccounts pages through all accounts of the given type ("" for all).
func (f *Firefly) ListAccounts(ctx context.Context, accountType string) ([]Account, error) {
	if accountType == "" {
		accountType = "all"
	}
	data, err := f.GetPaged(ctx, accountsPath, url.Values{"type": {accountType}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Accounts: %w", err)
	}

	results := make([]Account, 0, len(data))
	for _, raw := range data {
		acct, err := ParseAccount(raw)
		if err != nil {
			return nil, err
		}
		results = append(results, acct)
	}
	return results, nil
}

// CreateAccount posts a new account and returns it as stored by the server.
func (f *Firefly) CreateAccount(ctx context.Context, req AccountRequest) (Account, error) {
	var result struct {
		Data json.RawMessage `json:"data"`
	}
	if err := f.Post(ctx, accountsPath, req, &result); err != nil {
		return Account{}, fmt.Errorf("could not create account %q: %w", req.Name, err)
	}
	if len(result.Data) == 0 {
		return Account{}, fmt.Errorf("could not create account %q: empty response", req.Name)
	}
	acct, err := ParseAccount(result.Data)
	if err != nil {
		return Account{}, err
	}
	if acct.ID == "" {
		return Account{}, fmt.Errorf("could not create account %q: no ID returned", req.Name)
	}
	f.addCachedAccount(acct)
	return acct, nil
}

// DeleteAccount deletes an account by its ID.
func (f *Firefly) DeleteAccount(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("missing Account ID")
	}
	if err := f.Delete(ctx, accountsPath+"/"+id); err != nil {
		return fmt.Errorf("could not delete account %s: %w", id, err)
	}
	f.removeCachedAccount(id)
	return nil
}
