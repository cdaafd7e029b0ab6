package prom

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/helpcomp/firefly-iii-gnucash-importer/firefly"
	"github.com/helpcomp/firefly-iii-gnucash-importer/fireflytest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIStats(t *testing.T) {
	s := NewAPIStats("test")
	s.ObserveRequest(http.MethodGet, "accounts", 200, time.Millisecond, nil)
	s.ObserveRequest(http.MethodDelete, "accounts/12", 204, time.Millisecond, nil)
	s.ObserveRequest(http.MethodDelete, "/accounts/13", 404, time.Millisecond, errors.New("not found"))

	assert.Equal(t, 1.0, testutil.ToFloat64(s.APICalls.WithLabelValues("GET", "accounts", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.APICalls.WithLabelValues("DELETE", "accounts", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.APIErrors.WithLabelValues("DELETE", "accounts")))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.APIErrors.WithLabelValues("GET", "accounts")))
}

func TestExporterCountsAccounts(t *testing.T) {
	srv := fireflytest.NewServer()
	defer srv.Close()
	srv.Add(fireflytest.Account{Name: "Checking", Type: firefly.AcctTypeAsset, CurrentBalance: "100.25", Notes: firefly.ImportMarker})
	srv.Add(fireflytest.Account{Name: "Savings", Type: firefly.AcctTypeAsset, CurrentBalance: "5"})
	srv.Add(fireflytest.Account{Name: "Food", Type: firefly.AcctTypeExpense, Notes: "x " + firefly.ImportMarker})

	ff := firefly.New(srv.Client(), fireflytest.Token, srv.URL)
	e := NewExporter("test", ff)

	expected := `
# HELP test_account_count How many accounts exist, by type and whether they were imported from GnuCash
# TYPE test_account_count gauge
test_account_count{imported="false",type="asset"} 1
test_account_count{imported="true",type="asset"} 1
test_account_count{imported="true",type="expense"} 1
# HELP test_status_up Whether the last account scrape succeeded
# TYPE test_status_up gauge
test_status_up 1
`
	require.NoError(t, testutil.CollectAndCompare(e, strings.NewReader(expected), "test_account_count", "test_status_up"))

	balance := `
# HELP test_account_balance Balance for the given account
# TYPE test_account_balance gauge
test_account_balance{account_id="1",account_name="Checking",imported="true",type="asset"} 100.25
test_account_balance{account_id="2",account_name="Savings",imported="false",type="asset"} 5
test_account_balance{account_id="3",account_name="Food",imported="true",type="expense"} 0
`
	require.NoError(t, testutil.CollectAndCompare(e, strings.NewReader(balance), "test_account_balance"))
}

func TestExporterScrapeFailure(t *testing.T) {
	srv := fireflytest.NewServer()
	defer srv.Close()
	ff := firefly.New(srv.Client(), "wrong", srv.URL)
	e := NewExporter("test", ff)

	expected := `
# HELP test_status_up Whether the last account scrape succeeded
# TYPE test_status_up gauge
test_status_up 0
`
	require.NoError(t, testutil.CollectAndCompare(e, strings.NewReader(expected), "test_status_up"))
}

type fakePinger struct {
	about firefly.About
	err   error
}

func (p fakePinger) About(context.Context) (firefly.About, error) { return p.about, p.err }

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(fakePinger{about: firefly.About{Version: "6.1.0", APIVersion: "2.0.14"}}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","firefly_version":"6.1.0","api_version":"2.0.14"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	HealthHandler(fakePinger{err: errors.New("connection refused")}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":503,"error":"Firefly unreachable: connection refused"}`, rec.Body.String())
}
