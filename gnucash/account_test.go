package gnucash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAccountsCSV(t *testing.T) {
	accounts, err := LoadAccountsCSV("testdata/accounts.csv")
	require.NoError(t, err)
	require.Len(t, accounts, 12)

	checking := accounts[2]
	assert.Equal(t, TypeBank, checking.Type)
	assert.Equal(t, "Assets:Current Assets:Checking Account", checking.FullName)
	assert.Equal(t, "Checking Account", checking.Name)
	assert.Equal(t, "1010", checking.Code)
	assert.Equal(t, "EUR", checking.Symbol)
	assert.Equal(t, "CURRENCY", checking.Namespace)
	assert.False(t, checking.Hidden)
	assert.False(t, checking.Placeholder)
	assert.Equal(t, "Assets:Current Assets", checking.Parent())

	assert.Equal(t, "Coins, mostly", accounts[3].Notes)
	assert.True(t, accounts[4].Hidden)
	assert.True(t, accounts[0].Placeholder)
	assert.Equal(t, "", accounts[0].Parent())
}

func TestReadAccountsColumnOrder(t *testing.T) {
	in := "\ufeffSymbol,Account Name,Type,Full Account Name\n" +
		"CHF,Rent,expense,Expenses:Rent\n" +
		",,,\n"
	accounts, err := ReadAccounts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, Account{Type: TypeExpense, FullName: "Expenses:Rent", Name: "Rent", Symbol: "CHF"}, accounts[0])
}

func TestReadAccountsMissingColumn(t *testing.T) {
	_, err := ReadAccounts(strings.NewReader("Type,Account Name,Symbol\nBANK,Checking,EUR\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Full Account Name"`)
}

func TestReadAccountsEmpty(t *testing.T) {
	_, err := ReadAccounts(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoadAccountsCSVMissingFile(t *testing.T) {
	_, err := LoadAccountsCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
