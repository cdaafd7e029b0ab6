package prom

import (
	"context"
	"sync"

	"github.com/helpcomp/firefly-iii-gnucash-importer/firefly"
	"github.com/prometheus/client_golang/prometheus"
)

// AccountLister is the part of the Firefly client the exporter reads from.
type AccountLister interface {
	RefreshAccounts(ctx context.Context) (firefly.AccountCache, error)
}

type Exporter struct {
	Accounts       *prometheus.Desc
	AccountBalance *prometheus.Desc
	ScrapeErrors   *prometheus.Desc
	Up             *prometheus.Desc
	ff             AccountLister
	scrapeErrors   float64
	mu             sync.Mutex // Serializes scrapes
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.Accounts
	ch <- e.AccountBalance
	ch <- e.ScrapeErrors
	ch <- e.Up
}

func NewExporter(namespace string, ff AccountLister) *Exporter {
	return &Exporter{
		Accounts: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"account",
				"count",
			),
			"How many accounts exist, by type and whether they were imported from GnuCash",
			[]string{"type", "imported"},
			nil,
		),
		AccountBalance: prometheusAccountStatsDesc(
			namespace,
			"balance",
			"Balance for the given account",
		),
		ScrapeErrors: prometheusFireflyStatsDesc(
			namespace,
			"scrape_errors",
			"Count of failed account scrapes",
		),
		Up: prometheusFireflyStatsDesc(
			namespace,
			"up",
			"Whether the last account scrape succeeded",
		),
		ff: ff,
	}
}

func prometheusAccountStatsDesc(namespace string, metric string, help string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(
			namespace,
			"account",
			metric,
		),
		help,
		[]string{"account_id", "account_name", "type", "imported"},
		nil,
	)
}

func prometheusFireflyStatsDesc(namespace string, metric string, help string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(
			namespace,
			"status",
			metric,
		),
		help,
		[]string{},
		nil,
	)
}
