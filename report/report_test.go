package report

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hush/session"
	"hush/store"
	"hush/zone"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleRecord(id string, start time.Time, green, total, drops int) session.Record {
	return session.Record{
		ID:               id,
		StartTime:        start,
		EndTime:          start.Add(time.Duration(total) * time.Second),
		TotalDuration:    total,
		GreenZoneTime:    green,
		PeakIntensity:    70,
		DropCount:        drops,
		ConsistencyScore: session.ConsistencyScore(drops, green),
		Transitions: []session.Event{
			{State: zone.Low, Time: start.Add(time.Second), Intensity: 12},
			{State: zone.Optimal, Time: start.Add(2 * time.Second), Intensity: 40},
			{State: zone.Danger, Time: start.Add(5 * time.Second), Intensity: 90},
			{State: zone.Optimal, Time: start.Add(6 * time.Second), Intensity: 60},
		},
	}
}

func seeded(t *testing.T) *store.Memory {
	t.Helper()
	st := store.NewMemory()
	require.NoError(t, st.SaveSession(sampleRecord("a", t0, 30, 60, 2)))
	require.NoError(t, st.SaveSession(sampleRecord("b", t0.Add(time.Hour), 45, 60, 1)))
	return st
}

func TestRenderIncludesCharts(t *testing.T) {
	recs := []session.Record{sampleRecord("b", t0.Add(time.Hour), 45, 60, 1), sampleRecord("a", t0, 30, 60, 2)}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, recs, store.Aggregate(recs)))
	html := buf.String()
	assert.Contains(t, html, "Latest session")
	assert.Contains(t, html, "History")
	assert.Contains(t, html, "OPTIMAL")
	assert.Contains(t, html, "hush report")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil, store.Stats{}))
	assert.Contains(t, buf.String(), "Totals")
	assert.NotContains(t, buf.String(), "Latest session")
}

func TestHistoryLineOldestFirst(t *testing.T) {
	recs := []session.Record{sampleRecord("b", t0.Add(time.Hour), 45, 60, 1), sampleRecord("a", t0, 30, 60, 2)}
	line := HistoryLine(recs)
	require.Len(t, line.MultiSeries, 2)
	data := line.MultiSeries[0].Data.([]opts.LineData)
	require.Len(t, data, 2)
	assert.Equal(t, 50, data[0].Value)
	assert.Equal(t, 75, data[1].Value)
	assert.Equal(t, "b", recs[0].ID, "input order untouched")
}

func TestSessionsEndpoint(t *testing.T) {
	srv := NewServer("", seeded(t))
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got []session.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, zone.Danger, got[0].Transitions[2].State)
}

func TestSessionByID(t *testing.T) {
	h := NewServer("", seeded(t)).Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/sessions/a", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var rec session.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, 30, rec.GreenZoneTime)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/sessions/zzz", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEmptySessionsIsArray(t *testing.T) {
	rr := httptest.NewRecorder()
	NewServer("", store.NewMemory()).Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestStatsEndpoint(t *testing.T) {
	rr := httptest.NewRecorder()
	NewServer("", seeded(t)).Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Count          int             `json:"count"`
		AvgSuccessRate float64         `json:"avg_success_rate"`
		TotalTime      int             `json:"total_time"`
		Best           *session.Record `json:"best_session"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Count)
	assert.InDelta(t, 62.5, got.AvgSuccessRate, 1e-9)
	assert.Equal(t, 120, got.TotalTime)
	require.NotNil(t, got.Best)
	assert.Equal(t, "b", got.Best.ID)
}

func TestStoreUnavailable(t *testing.T) {
	h := NewServer("", store.Unavailable{}).Handler()
	for _, path := range []string{"/", "/api/sessions", "/api/stats"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code, path)
	}
}

func TestPreflight(t *testing.T) {
	rr := httptest.NewRecorder()
	NewServer("", store.NewMemory()).Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/stats", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "GET")
}

func TestReportPage(t *testing.T) {
	rr := httptest.NewRecorder()
	NewServer("", seeded(t)).Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "echarts")
}

func TestServeListenerShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := NewServer(ln.Addr().String(), seeded(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
