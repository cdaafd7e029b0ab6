package gnucash

import (
	"strings"
	"testing"
	"time"

	"github.com/helpcomp/firefly-iii-gnucash-importer/firefly"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paymentDate = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func newTestTranslator() *Translator {
	return NewTranslator(Options{PaymentDate: paymentDate})
}

func TestConvertAccountSkipsNonImportable(t *testing.T) {
	tests := map[string]Account{
		"top-level name":  {Type: TypeAsset, FullName: "Assets", Name: "Assets"},
		"current assets":  {Type: TypeAsset, FullName: "Assets:Current Assets", Name: "Current Assets"},
		"liabilities":     {Type: TypeLiability, FullName: "Liabilities", Name: "Liabilities"},
		"equity":          {Type: TypeEquity, FullName: "Equity:Opening Balances", Name: "Opening Balances"},
		"no parent":       {Type: TypeBank, FullName: "Checking", Name: "Checking"},
		"no parent, cash": {Type: TypeCash, FullName: "Wallet", Name: "Wallet"},
	}
	for name, acc := range tests {
		t.Run(name, func(t *testing.T) {
			tr := newTestTranslator()
			req, err := tr.ConvertAccount(acc)
			require.NoError(t, err)
			assert.Nil(t, req)
			assert.Empty(t, tr.AccountMap)
		})
	}
}

func TestConvertAccountDropsFirstSegment(t *testing.T) {
	tests := []struct {
		acc      Account
		wantName string
		wantType string
		wantRole string
	}{
		{Account{Type: TypeBank, FullName: "Assets:Current Assets:Checking", Name: "Checking"}, "Current Assets:Checking", firefly.AcctTypeAsset, firefly.RoleDefaultAsset},
		{Account{Type: TypeAsset, FullName: "Assets:House", Name: "House"}, "House", firefly.AcctTypeAsset, firefly.RoleDefaultAsset},
		{Account{Type: TypeCash, FullName: "Assets:Wallet", Name: "Wallet"}, "Wallet", firefly.AcctTypeAsset, firefly.RoleCashWalletAsset},
		{Account{Type: TypeExpense, FullName: "Expenses:Auto:Fuel", Name: "Fuel"}, "Auto:Fuel", firefly.AcctTypeExpense, ""},
		{Account{Type: TypeIncome, FullName: "Income:Salary", Name: "Salary"}, "Salary", firefly.AcctTypeRevenue, ""},
	}
	for _, tt := range tests {
		t.Run(tt.acc.FullName, func(t *testing.T) {
			req, err := newTestTranslator().ConvertAccount(tt.acc)
			require.NoError(t, err)
			require.NotNil(t, req)
			assert.Equal(t, tt.wantName, req.Name)
			assert.Equal(t, tt.wantType, req.Type)
			assert.Equal(t, tt.wantRole, req.Role)
			assert.Empty(t, req.CreditCardType)
		})
	}
}

func TestConvertAccountNotes(t *testing.T) {
	tr := newTestTranslator()
	req, err := tr.ConvertAccount(Account{
		Type:        TypeBank,
		FullName:    "Assets:Checking",
		Name:        "Checking",
		Code:        "1010",
		Description: "Main account",
		Notes:       "Opened 2019",
		Symbol:      "CHF",
	})
	require.NoError(t, err)
	require.NotNil(t, req)

	assert.True(t, strings.HasPrefix(req.Notes, "Main account\n\nOpened 2019\n\n"+firefly.ImportMarker))
	md, err := firefly.ParseMetadata(req.Notes)
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, firefly.ImportMetadata{FullName: "Assets:Checking", Code: "1010", Type: TypeBank}, *md)

	assert.Equal(t, "CHF", req.CurrencyCode)
	assert.True(t, req.IncludeNetWorth)
	assert.True(t, req.Active)
	assert.Equal(t, *req, tr.AccountMap["Assets:Checking"])
}

func TestConvertAccountCurrencyFallback(t *testing.T) {
	req, err := NewTranslator(Options{DefaultCurrency: "USD"}).ConvertAccount(Account{Type: TypeExpense, FullName: "Expenses:Rent", Name: "Rent"})
	require.NoError(t, err)
	assert.Equal(t, "USD", req.CurrencyCode)

	req, err = newTestTranslator().ConvertAccount(Account{Type: TypeExpense, FullName: "Expenses:Rent", Name: "Rent"})
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, req.CurrencyCode)
}

func TestConvertAccountCreditCard(t *testing.T) {
	req, err := newTestTranslator().ConvertAccount(Account{Type: TypeCredit, FullName: "Assets:Visa", Name: "Visa", Hidden: true})
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, firefly.AcctTypeAsset, req.Type)
	assert.Equal(t, firefly.RoleCCAsset, req.Role)
	assert.Equal(t, firefly.CreditCardMonthlyFull, req.CreditCardType)
	assert.Equal(t, "2024-03-01", req.MonthlyPaymentDate)
	assert.False(t, req.Active)
}

func TestConvertAccountLiabilityNotImplemented(t *testing.T) {
	_, err := newTestTranslator().ConvertAccount(Account{Type: TypeLiability, FullName: "Liabilities:Mortgage", Name: "Mortgage"})
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestConvertAccountUnknownType(t *testing.T) {
	_, err := newTestTranslator().ConvertAccount(Account{Type: "STOCK", FullName: "Assets:Broker:ACME", Name: "ACME"})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestConvertAccountDuplicate(t *testing.T) {
	tr := newTestTranslator()
	acc := Account{Type: TypeExpense, FullName: "Expenses:Rent", Name: "Rent"}

	_, err := tr.ConvertAccount(acc)
	require.NoError(t, err)
	_, err = tr.ConvertAccount(acc)
	assert.ErrorIs(t, err, ErrDuplicateAccount)
	assert.Len(t, tr.AccountMap, 1)
}

func TestConvertAccountCustomSkipNames(t *testing.T) {
	tr := NewTranslator(Options{SkipNames: []string{"Spending"}})

	req, err := tr.ConvertAccount(Account{Type: TypeExpense, FullName: "Root:Spending", Name: "Spending"})
	require.NoError(t, err)
	assert.Nil(t, req)

	req, err = tr.ConvertAccount(Account{Type: TypeAsset, FullName: "Assets:Current Assets", Name: "Current Assets"})
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "Current Assets", req.Name)
}

func TestTranslateExport(t *testing.T) {
	tr := newTestTranslator()
	require.NoError(t, tr.LoadAccountsCSV("testdata/accounts.csv"))

	var names []string
	for _, acc := range tr.Accounts {
		req, err := tr.ConvertAccount(acc)
		require.NoError(t, err)
		if req != nil {
			names = append(names, req.Name)
		}
	}

	assert.Equal(t, []string{
		"Current Assets:Checking Account",
		"Current Assets:Cash in Wallet",
		"Visa",
		"Groceries",
		"Auto:Fuel",
		"Salary",
	}, names)
	assert.Len(t, tr.AccountMap, 6)
}
