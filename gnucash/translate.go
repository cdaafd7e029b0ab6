package gnucash

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/helpcomp/firefly-iii-gnucash-importer/firefly"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

var (
	ErrNotImplemented   = errors.New("not implemented")
	ErrUnknownType      = errors.New("unknown GnuCash account type")
	ErrDuplicateAccount = errors.New("account already translated")
)

const (
	TypeAsset     = "ASSET"
	TypeCash      = "CASH"
	TypeBank      = "BANK"
	TypeCredit    = "CREDIT"
	TypeExpense   = "EXPENSE"
	TypeIncome    = "INCOME"
	TypeLiability = "LIABILITY"
	TypeEquity    = "EQUITY"
)

var typeMap = map[string]string{
	TypeAsset:     firefly.AcctTypeAsset,
	TypeCash:      firefly.AcctTypeAsset,
	TypeBank:      firefly.AcctTypeAsset,
	TypeExpense:   firefly.AcctTypeExpense,
	TypeIncome:    firefly.AcctTypeRevenue,
	TypeLiability: firefly.AcctTypeLiability,
	TypeCredit:    firefly.AcctTypeAsset,
}

var roleMap = map[string]string{
	TypeAsset:  firefly.RoleDefaultAsset,
	TypeCash:   firefly.RoleCashWalletAsset,
	TypeBank:   firefly.RoleDefaultAsset,
	TypeCredit: firefly.RoleCCAsset,
}

// DefaultSkipNames are the top-level category accounts of a default GnuCash
// book. They only group other accounts and are never imported.
var DefaultSkipNames = []string{
	"Assets",
	"Liabilities",
	"Income",
	"Expenses",
	"Current Assets",
}

const DefaultCurrency = "EUR"

type Options struct {
	SkipNames       []string
	DefaultCurrency string
	// PaymentDate is the monthly payment date given to credit card accounts.
	// Zero means the first day of the current month.
	PaymentDate time.Time
}

// Translator maps GnuCash accounts onto Firefly III accounts and remembers
// every translation it made.
type Translator struct {
	Accounts   []Account
	AccountMap map[string]firefly.AccountRequest

	skipNames   []string
	currency    string
	paymentDate time.Time
}

func NewTranslator(opts Options) *Translator {
	t := &Translator{
		AccountMap:  make(map[string]firefly.AccountRequest),
		skipNames:   opts.SkipNames,
		currency:    opts.DefaultCurrency,
		paymentDate: opts.PaymentDate,
	}
	if t.skipNames == nil {
		t.skipNames = DefaultSkipNames
	}
	if t.currency == "" {
		t.currency = DefaultCurrency
	}
	if t.paymentDate.IsZero() {
		now := time.Now()
		t.paymentDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// LoadAccountsCSV appends the accounts of an export to t.Accounts.
func (t *Translator) LoadAccountsCSV(path string) error {
	accounts, err := LoadAccountsCSV(path)
	if err != nil {
		return err
	}
	t.Accounts = append(t.Accounts, accounts...)
	return nil
}

// ConvertAccount translates acc. It returns nil, nil for accounts that are
// not imported: top-level categories, equity and accounts without a parent.
func (t *Translator) ConvertAccount(acc Account) (*firefly.AccountRequest, error) {
	if slices.Contains(t.skipNames, acc.Name) {
		log.Info().Str("Name", acc.FullName).Msg("Skipping top-level account")
		return nil, nil
	}
	if acc.Type == TypeEquity {
		log.Info().Str("Name", acc.FullName).Msg("Skipping equity account")
		return nil, nil
	}

	newType, ok := typeMap[acc.Type]
	if !ok {
		return nil, fmt.Errorf("%w %q (account %s)", ErrUnknownType, acc.Type, acc.FullName)
	}

	segments := strings.Split(acc.FullName, NameSeparator)
	if len(segments) <= 1 {
		log.Info().Str("Name", acc.FullName).Msg("Skipping account without parent")
		return nil, nil
	}
	name := strings.Join(segments[1:], NameSeparator)

	if newType == firefly.AcctTypeLiability {
		return nil, fmt.Errorf("liability account %s: %w", acc.FullName, ErrNotImplemented)
	}

	notes, err := firefly.ImportNotes(joinText(acc.Description, acc.Notes), firefly.ImportMetadata{
		FullName: acc.FullName,
		Code:     acc.Code,
		Type:     acc.Type,
	})
	if err != nil {
		return nil, err
	}

	currency := acc.Symbol
	if currency == "" {
		currency = t.currency
	}

	req := firefly.AccountRequest{
		Name:            name,
		Type:            newType,
		CurrencyCode:    currency,
		IncludeNetWorth: true,
		Active:          !acc.Hidden,
		Notes:           notes,
	}
	if newType == firefly.AcctTypeAsset {
		req.Role = roleMap[acc.Type]
	}
	if req.Role == firefly.RoleCCAsset {
		req.CreditCardType = firefly.CreditCardMonthlyFull
		req.MonthlyPaymentDate = t.paymentDate.Format(time.DateOnly)
	}

	if _, ok := t.AccountMap[acc.FullName]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAccount, acc.FullName)
	}
	t.AccountMap[acc.FullName] = req

	return &req, nil
}

func joinText(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
