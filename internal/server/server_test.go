package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/verdict/internal/analyzer"
	"github.com/harrison/verdict/internal/config"
	"github.com/harrison/verdict/internal/metrics"
	"github.com/harrison/verdict/internal/models"
)

const nullPointerRequest = `{
	"statusMessage": "Runtime Error",
	"errorMessage": "TypeError: Cannot read properties of undefined (reading 'length') at line 2",
	"code": "function f(a) {\n  return a.b.length;\n}",
	"language": "javascript",
	"problemId": "two-sum"
}`

func newTestServer(t *testing.T) (*Server, *analyzer.Service, *metrics.Collector) {
	t.Helper()
	collector, err := metrics.NewCollector()
	require.NoError(t, err)

	svc := analyzer.NewService()
	svc.Metrics = collector

	cfg := config.DefaultConfig().Server
	return New(cfg, svc, nil, collector), svc, collector
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rr
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv, svc, _ := newTestServer(t)
	h := srv.Handler()

	rr := do(t, h, http.MethodPost, "/analyze", nullPointerRequest)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.ErrorTypeRuntime, resp.Analysis.ErrorType)
	assert.Equal(t, models.PatternNullPointer, resp.Analysis.ErrorPattern)
	require.NotNil(t, resp.Analysis.LineNumber)
	assert.Equal(t, 2, *resp.Analysis.LineNumber)
	assert.Equal(t, "two-sum", resp.Analysis.ProblemID())
	assert.NotNil(t, resp.SimilarExamples)
	assert.Empty(t, resp.SimilarExamples)

	b, ok := svc.Store.Bucket(models.PatternNullPointer)
	require.True(t, ok)
	assert.Equal(t, 1, b.Count)
}

func TestAnalyzeReturnsSimilarExamples(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	do(t, h, http.MethodPost, "/analyze", `{"statusMessage":"Runtime Error","errorMessage":"x is null","code":"","language":"python"}`)
	rr := do(t, h, http.MethodPost, "/analyze", nullPointerRequest)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"x is null"}, resp.SimilarExamples)
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	rr := do(t, h, http.MethodPost, "/analyze", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid JSON request")

	big := `{"code":"` + strings.Repeat("a", maxRequestBytes) + `"}`
	rr = do(t, h, http.MethodPost, "/analyze", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	rr = do(t, h, http.MethodGet, "/analyze", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestPatternsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	do(t, h, http.MethodPost, "/analyze", nullPointerRequest)
	do(t, h, http.MethodPost, "/analyze", nullPointerRequest)
	do(t, h, http.MethodPost, "/analyze", `{"statusMessage":"Time Limit Exceeded","code":"while(true){}","language":"c"}`)

	rr := do(t, h, http.MethodGet, "/patterns", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp PatternsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "null_pointer", resp.Patterns[0].Pattern)
	assert.Equal(t, 2, resp.Patterns[0].Count)
	assert.Equal(t, []string{"two-sum"}, resp.Patterns[0].Problems)
	assert.Equal(t, "infinite_loop", resp.Patterns[1].Pattern)

	rr = do(t, h, http.MethodGet, "/patterns?limit=1", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	rr = do(t, h, http.MethodGet, "/patterns?limit=-2", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSimilarEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	do(t, h, http.MethodPost, "/analyze", `{"statusMessage":"Runtime Error","errorMessage":"a is null","language":"java"}`)
	do(t, h, http.MethodPost, "/analyze", `{"statusMessage":"Runtime Error","errorMessage":"b is null","language":"java"}`)

	rr := do(t, h, http.MethodGet, "/similar?pattern=null_pointer&exclude=a+is+null", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp SimilarResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.PatternNullPointer, resp.Pattern)
	assert.Equal(t, []string{"b is null"}, resp.Examples)

	rr = do(t, h, http.MethodGet, "/similar?pattern=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	rr := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)

	do(t, h, http.MethodPost, "/analyze", nullPointerRequest)

	rr = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `verdict_analyses_total{category="VARIABLE_MANAGEMENT",pattern="NULL_POINTER",type="RUNTIME"} 1`)
	assert.Contains(t, body, `verdict_http_requests_total{method="POST",path="POST /analyze",status="200"} 1`)
	assert.Contains(t, body, `verdict_publish_total{result="ok"} 1`)
}

func TestHandlerWithoutMetrics(t *testing.T) {
	srv := New(config.DefaultConfig().Server, analyzer.NewService(), nil, nil)
	rr := do(t, srv.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServeAndShutdown(t *testing.T) {
	srv, _, _ := newTestServer(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
