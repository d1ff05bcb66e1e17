package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/user/atmos-energy/internal/adapter/atmos"
	"github.com/user/atmos-energy/internal/adapter/atmos/portaltest"
	"github.com/user/atmos-energy/internal/config"
)

func newTestServer(t *testing.T, portal *portaltest.Portal, mutate func(*config.Config)) *httptest.Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Username = portal.Username
	cfg.Password = portal.Password
	cfg.Settings.BaseURL = portal.URL
	cfg.Settings.Timeout = 5 * time.Second
	if mutate != nil {
		mutate(cfg)
	}

	metrics := NewMetrics()
	client := atmos.NewClient(
		atmos.WithBaseURL(cfg.Settings.BaseURL),
		atmos.WithTimeout(cfg.Settings.Timeout),
		atmos.WithTransport(metrics.InstrumentTransport(http.DefaultTransport)),
		atmos.WithClock(func() time.Time { return time.Date(2025, 12, 10, 12, 0, 0, 0, time.UTC) }),
	)

	srv := httptest.NewServer(NewServer(client, cfg, metrics, nil, "").Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, portaltest.New(t), nil)

	var body map[string]string
	resp := getJSON(t, srv.URL+"/api/v1/health", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
}

func TestServer_Usage_CachesPerMonthCount(t *testing.T) {
	portal := portaltest.New(t)
	portal.DefaultWorkbook = portaltest.MustWorkbook(t, portaltest.DailyRows(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), 5, 1))
	srv := newTestServer(t, portal, nil)

	var first usageResponse
	resp := getJSON(t, srv.URL+"/api/v1/usage?months=2", &first)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	require.Equal(t, 2, first.Months)
	require.Len(t, first.Readings, 5)
	require.Equal(t, 1, portal.Logouts())

	var second usageResponse
	resp = getJSON(t, srv.URL+"/api/v1/usage?months=2", &second)
	require.Equal(t, "HIT", resp.Header.Get("X-Cache"))
	require.Equal(t, first.Readings, second.Readings)
	require.Len(t, portal.Downloads(), 2)

	resp = getJSON(t, srv.URL+"/api/v1/usage?months=1", nil)
	require.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	require.Len(t, portal.Downloads(), 3)
}

func TestServer_Usage_CacheDisabled(t *testing.T) {
	portal := portaltest.New(t)
	portal.DefaultWorkbook = portaltest.MustWorkbook(t, portaltest.DailyRows(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), 3, 1))
	srv := newTestServer(t, portal, func(cfg *config.Config) { cfg.Settings.CacheTTL = 0 })

	getJSON(t, srv.URL+"/api/v1/usage", nil)
	resp := getJSON(t, srv.URL+"/api/v1/usage", nil)
	require.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	require.Equal(t, []string{"Current", "Current"}, portal.Downloads())
}

func TestServer_Usage_ZeroTimeoutSetting(t *testing.T) {
	portal := portaltest.New(t)
	portal.DefaultWorkbook = portaltest.MustWorkbook(t, portaltest.DailyRows(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), 2, 1))
	srv := newTestServer(t, portal, func(cfg *config.Config) { cfg.Settings.Timeout = 0 })

	var body usageResponse
	resp := getJSON(t, srv.URL+"/api/v1/usage?months=1", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Readings, 2)
}

func TestServer_Usage_BadMonths(t *testing.T) {
	portal := portaltest.New(t)
	srv := newTestServer(t, portal, nil)

	for _, q := range []string{"abc", "-1", "37"} {
		var body errorResponse
		resp := getJSON(t, srv.URL+"/api/v1/usage?months="+q, &body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		require.NotEmpty(t, body.Error)
	}
	require.Zero(t, portal.Requests())
}

func TestServer_Usage_PortalFailure(t *testing.T) {
	portal := portaltest.New(t)
	srv := newTestServer(t, portal, func(cfg *config.Config) { cfg.Password = "wrong" })

	var body errorResponse
	resp := getJSON(t, srv.URL+"/api/v1/usage?months=1", &body)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Contains(t, body.Error, "credentials rejected")
	require.Empty(t, portal.Downloads())
}

func TestServer_Metrics(t *testing.T) {
	portal := portaltest.New(t)
	portal.DefaultWorkbook = portaltest.MustWorkbook(t, portaltest.DailyRows(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), 3, 1))
	srv := newTestServer(t, portal, nil)

	getJSON(t, srv.URL+"/api/v1/usage?months=1", nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	body := string(raw)
	require.Contains(t, body, "atmos_portal_requests_total")
	require.Contains(t, body, `atmos_usage_requests_total{cache="miss",result="success"} 1`)
	require.Contains(t, body, "atmos_last_fetch_readings 3")
}
