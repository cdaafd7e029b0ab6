// Package gnucash reads GnuCash account tree exports and translates them
// into Firefly III accounts.
package gnucash

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
)

// Column names of GnuCash's "Export Account Tree to CSV".
const (
	ColType        = "Type"
	ColFullName    = "Full Account Name"
	ColName        = "Account Name"
	ColCode        = "Account Code"
	ColDescription = "Description"
	ColColor       = "Account Color"
	ColNotes       = "Notes"
	ColSymbol      = "Symbol"
	ColNamespace   = "Namespace"
	ColHidden      = "Hidden"
	ColTaxInfo     = "Tax Info"
	ColPlaceholder = "Placeholder"
)

var requiredColumns = []string{ColType, ColFullName, ColName, ColSymbol}

// NameSeparator separates the segments of a qualified account name.
const NameSeparator = ":"

// Account is one row of the export, identified by its full name.
type Account struct {
	Type        string
	FullName    string
	Name        string
	Code        string
	Description string
	Color       string
	Notes       string
	Symbol      string
	Namespace   string
	Hidden      bool
	TaxInfo     bool
	Placeholder bool
}

// Parent returns the qualified name of the parent account, or "" for a
// top-level account.
func (a Account) Parent() string {
	i := strings.LastIndex(a.FullName, NameSeparator)
	if i < 0 {
		return ""
	}
	return a.FullName[:i]
}

// LoadAccountsCSV reads an account tree export from disk.
func LoadAccountsCSV(path string) (accounts []Account, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	accounts, err = ReadAccounts(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return accounts, nil
}

// ReadAccounts parses an account tree export. Columns are matched by header
// name.
func ReadAccounts(r io.Reader) ([]Account, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty account export")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv header: %w", err)
	}
	headerMap := generateHeaderMap(header)
	for _, col := range requiredColumns {
		if _, ok := headerMap[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var accounts []Account
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv row %d: %w", row, err)
		}
		if isBlank(record) {
			continue
		}
		get := func(col string) string {
			i, ok := headerMap[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		accounts = append(accounts, Account{
			Type:        strings.ToUpper(strings.TrimSpace(get(ColType))),
			FullName:    get(ColFullName),
			Name:        get(ColName),
			Code:        get(ColCode),
			Description: get(ColDescription),
			Color:       get(ColColor),
			Notes:       get(ColNotes),
			Symbol:      strings.TrimSpace(get(ColSymbol)),
			Namespace:   get(ColNamespace),
			Hidden:      parseFlag(get(ColHidden)),
			TaxInfo:     parseFlag(get(ColTaxInfo)),
			Placeholder: parseFlag(get(ColPlaceholder)),
		})
	}
	return accounts, nil
}

func generateHeaderMap(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		// Excel likes to prefix exports with a byte order mark.
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		m[h] = i
	}
	return m
}

// parseFlag reads GnuCash's T/F booleans.
func parseFlag(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "T", "TRUE", "Y", "YES", "1":
		return true
	}
	return false
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
