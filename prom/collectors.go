package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

const scrapeTimeout = 20 * time.Second

type accountCountKey struct {
	Type     string
	Imported bool
}

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	accounts, err := e.ff.RefreshAccounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Could not scrape accounts")
		e.scrapeErrors++
		ch <- prometheus.MustNewConstMetric(e.ScrapeErrors, prometheus.CounterValue, e.scrapeErrors)
		ch <- prometheus.MustNewConstMetric(e.Up, prometheus.GaugeValue, 0)
		return
	}

	counts := make(map[accountCountKey]int)
	for _, account := range accounts.Accounts {
		imported := account.Imported()
		counts[accountCountKey{Type: account.Attributes.Type, Imported: imported}]++

		// Account Balance
		ch <- prometheus.MustNewConstMetric(
			e.AccountBalance,
			prometheus.GaugeValue,
			account.Attributes.CurrentBalance.InexactFloat64(),
			account.ID, account.Attributes.Name, account.Attributes.Type, strconv.FormatBool(imported),
		)
	}

	for key, n := range counts {
		ch <- prometheus.MustNewConstMetric(
			e.Accounts,
			prometheus.GaugeValue,
			float64(n),
			key.Type, strconv.FormatBool(key.Imported),
		)
	}

	ch <- prometheus.MustNewConstMetric(e.ScrapeErrors, prometheus.CounterValue, e.scrapeErrors)
	ch <- prometheus.MustNewConstMetric(e.Up, prometheus.GaugeValue, 1)
}
