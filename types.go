package main

const AppName = "firefly-iii-gnucash-importer"
const AppDesc = "Migrates a GnuCash chart of accounts into Firefly III through its REST API, tagging every created account so a later run can remove and re-create them."

// Output formats of account-list.
const (
	fmtPy   = "py"
	fmtJSON = "json"
)

// Targets of account-delete.
const (
	deleteAll      = "all"
	deleteImported = "imported"
)

// ImportSummary counts what an account import did.
type ImportSummary struct {
	Read     int // rows in the export
	Skipped  int // rows the translator does not import
	Existing int // already present on the server
	Created  int
	Cleared  int // imported accounts deleted before the import
}
