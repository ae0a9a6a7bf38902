package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"log-risk-analyzer/internal/analyzer"
	"log-risk-analyzer/internal/config"
	"log-risk-analyzer/internal/decision"
	"log-risk-analyzer/internal/metrics"
	"log-risk-analyzer/internal/model"
	"log-risk-analyzer/internal/storage"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	err       error
	calls     int64
	gotBucket string
	gotKey    string
}

func (f *fakeRunner) Run(_ context.Context, bucket, key string) (model.Report, error) {
	atomic.AddInt64(&f.calls, 1)
	f.gotBucket, f.gotKey = bucket, key
	if f.err != nil {
		return model.Report{}, f.err
	}
	analysis := model.AnalysisResult{RiskLevel: model.RiskMedium, RootCause: "disk", RecommendedActions: []string{}}
	return model.Report{OK: true, Bucket: bucket, Key: key, Analysis: analysis, Decision: decision.Decide(analysis)}, nil
}

func testCfg() config.Config {
	return config.Config{
		LogBucket:    "default-bucket",
		LogKey:       "system.log",
		TriggerRate:  1000,
		TriggerBurst: 1000,
	}
}

func TestHandleAnalyze_Success(t *testing.T) {
	fr := &fakeRunner{}
	h := NewHandler(testCfg(), metrics.New(), fr)

	rec := httptest.NewRecorder()
	h.HandleAnalyze(rec, httptest.NewRequest(http.MethodPost, "/analyze", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "default-bucket", fr.gotBucket)
	assert.Equal(t, "system.log", fr.gotKey)

	var rep model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.True(t, rep.OK)
	assert.Equal(t, model.ActionSimulatedAlert, rep.Decision.ActionTaken)
	assert.Equal(t, model.PriorityP2, rep.Decision.Priority)
}

func TestHandleAnalyze_QueryOverrides(t *testing.T) {
	fr := &fakeRunner{}
	h := NewHandler(testCfg(), metrics.New(), fr)

	rec := httptest.NewRecorder()
	h.HandleAnalyze(rec, httptest.NewRequest(http.MethodGet, "/analyze?bucket=other&key=app%2Fnight.log.gz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "other", fr.gotBucket)
	assert.Equal(t, "app/night.log.gz", fr.gotKey)
}

func TestHandleAnalyze_MethodNotAllowed(t *testing.T) {
	fr := &fakeRunner{}
	h := NewHandler(testCfg(), metrics.New(), fr)

	rec := httptest.NewRecorder()
	h.HandleAnalyze(rec, httptest.NewRequest(http.MethodDelete, "/analyze", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.EqualValues(t, 0, atomic.LoadInt64(&fr.calls))
}

func TestHandleAnalyze_FailureStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"configuration", &analyzer.ConfigurationError{Field: "OPENAI_API_KEY"}, http.StatusInternalServerError, "configuration"},
		{"not found", &storage.Error{Op: "get", Bucket: "b", Key: "k", Err: fmt.Errorf("%w: NoSuchKey", storage.ErrNotFound)}, http.StatusNotFound, "storage"},
		{"storage", &storage.Error{Op: "get", Bucket: "b", Key: "k", Err: fmt.Errorf("AccessDenied")}, http.StatusBadGateway, "storage"},
		{"transport", &analyzer.TransportError{StatusCode: 503, Body: "down"}, http.StatusBadGateway, "transport"},
		{"protocol", &analyzer.ProtocolError{Reason: "completion has no choices"}, http.StatusBadGateway, "protocol"},
		{"content", &analyzer.ContentError{Content: "sorry"}, http.StatusBadGateway, "content"},
		{"internal", fmt.Errorf("unexpected"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(testCfg(), metrics.New(), &fakeRunner{err: tt.err})

			rec := httptest.NewRecorder()
			h.HandleAnalyze(rec, httptest.NewRequest(http.MethodPost, "/analyze", nil))

			assert.Equal(t, tt.status, rec.Code)

			var body failureResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.OK)
			assert.Equal(t, tt.kind, body.Kind)
			assert.Equal(t, tt.err.Error(), body.Error)
		})
	}
}

func TestHandleAnalyze_RateLimited(t *testing.T) {
	cfg := testCfg()
	cfg.TriggerRate = 0.001
	cfg.TriggerBurst = 1

	m := metrics.New()
	fr := &fakeRunner{}
	h := NewHandler(cfg, m, fr)

	first := httptest.NewRecorder()
	h.HandleAnalyze(first, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.HandleAnalyze(second, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), `"kind":"rate_limited"`)

	assert.EqualValues(t, 1, atomic.LoadInt64(&fr.calls))
	assert.EqualValues(t, 2, atomic.LoadInt64(&m.HTTPRequestsTotal))
	assert.EqualValues(t, 1, atomic.LoadInt64(&m.HTTPRequestsRateLimitedTotal))
}

func TestHandleMetrics(t *testing.T) {
	m := metrics.New()
	atomic.AddInt64(&m.InvocationsTotal, 3)
	h := NewHandler(testCfg(), m, &fakeRunner{})

	rec := httptest.NewRecorder()
	h.HandleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rec.Body.String(), "invocations_total=3\n")
}
