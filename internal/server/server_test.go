package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(config.Default(), symdiff.New(), zap.NewNop())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postTool(t *testing.T, url, body string) (*http.Response, symdiff.ToolResponse) {
	t.Helper()
	res, err := http.Post(url+"/tool", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var out symdiff.ToolResponse
	if res.StatusCode == http.StatusOK {
		require.NoError(t, sonic.Unmarshal(raw, &out))
	}
	return res, out
}

func TestToolEndpoint(t *testing.T) {
	ts := newTestServer(t)

	res, out := postTool(t, ts.URL, `{"tool":"diff","params":{"expr":"x^2"}}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Empty(t, out.Error)
	assert.Equal(t, "2*x", out.Result)

	_, err := uuid.Parse(res.Header.Get(RequestIDHeader))
	assert.NoError(t, err)

	res, out = postTool(t, ts.URL, `{"tool":"derive","params":{"expr":"x^3","point":{"x":2}}}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 12.0, out.Result)

	res, out = postTool(t, ts.URL, `{"tool":"diff","params":{"expr":"2++3"}}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "2++3\n  ^", out.Error)
}

func TestToolEndpointRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t)

	res, _ := postTool(t, ts.URL, `{"tool":`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = postTool(t, ts.URL, `{"params":{}}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err := http.Get(ts.URL + "/tool")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestToolEndpointLimitsBody(t *testing.T) {
	s := New(config.Default(), symdiff.New(), zap.NewNop())
	huge := `{"tool":"diff","params":{"expr":"` + strings.Repeat("x+", maxBodyBytes) + `x"}}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(huge))
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "request body too large")
}

func TestRequestIDIsPropagated(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.NewString()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, id, res.Header.Get(RequestIDHeader))

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.NotEqual(t, "not-a-uuid", res.Header.Get(RequestIDHeader))
}

func TestHealthAndSchema(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	var health map[string]string
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, sonic.Unmarshal(raw, &health))
	assert.Equal(t, "ok", health["status"])

	res, err = http.Get(ts.URL + "/schema")
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err = io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, symdiff.MCPToolSpec(), string(raw))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	postTool(t, ts.URL, `{"tool":"diff","params":{"expr":"x^2"}}`)
	postTool(t, ts.URL, `{"tool":"no_such_tool"}`)

	res, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, `symdiff_tool_calls_total{status="ok",tool="diff"} 1`)
	assert.Contains(t, body, `symdiff_tool_calls_total{status="error",tool="unknown"} 1`)
	assert.Contains(t, body, `symdiff_http_requests_total{method="POST",path="/tool",status="200"} 2`)
	assert.NotContains(t, body, "no_such_tool")
}

func TestMetricsRegistriesAreIndependent(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.RecordToolCall("diff", "ok", 0)

	families, err := b.Registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		assert.NotEqual(t, "symdiff_tool_calls_total", f.GetName())
	}
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Server.RateLimit = 0.001
	cfg.Server.RateBurst = 1
	s := New(cfg, symdiff.New(), zap.NewNop())

	codes := make([]int, 2)
	for i := range codes {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(`{"tool":"diff","params":{"expr":"x"}}`))
		s.Handler().ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	cfg := config.Default()
	cfg.Server.AllowOrigins = []string{"https://notebook.example.com"}
	s := New(cfg, symdiff.New(), zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/schema", nil)
	req.Header.Set("Origin", "https://notebook.example.com")
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://notebook.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/schema", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestToolTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ToolTimeout = time.Nanosecond
	s := New(cfg, symdiff.New(), zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(`{"tool":"diff","params":{"expr":"sin(x)*x^2"}}`))
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out symdiff.ToolResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "context deadline exceeded", out.Error)
}

func TestSchemaIsStable(t *testing.T) {
	s := New(config.Default(), symdiff.New(), zap.NewNop())
	var bodies []string
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		bodies = append(bodies, rec.Body.String())
	}
	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}
}
