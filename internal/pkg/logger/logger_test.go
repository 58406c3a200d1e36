package logger

import (
	"bytes"
	"context"
	"io"
	log "log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestContextHandlerAddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&ContextHandler{log.NewJSONHandler(&buf, nil)})

	l.InfoContext(WithTraceID(context.Background(), "t-1"), "hello")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "t-1", out[TraceIDKey])
}

func TestRemoteFilterDropsUntracedInfo(t *testing.T) {
	var local, remote bytes.Buffer
	h := &ContextHandler{&TeeHandler{handlers: []log.Handler{
		log.NewJSONHandler(&local, nil),
		&RemoteFilterHandler{next: log.NewJSONHandler(&remote, nil)},
	}}}
	l := log.New(h)

	l.Info("startup")
	assert.NotZero(t, local.Len())
	assert.Zero(t, remote.Len())

	l.InfoContext(WithTraceID(context.Background(), "t-2"), "traced")
	assert.Contains(t, remote.String(), "t-2")

	remote.Reset()
	l.Error("boom")
	assert.Contains(t, remote.String(), "boom")
}

func TestNewTraceIDPrefix(t *testing.T) {
	assert.Regexp(t, `^job-score-refresh-[0-9a-f-]{36}$`, NewTraceID("job-score-refresh"))
	assert.Len(t, NewTraceID(""), 36)
}

func TestFormatAccess(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/copilot/query", nil)
	line := formatAccess(gin.LogFormatterParams{
		Request:    req.WithContext(WithTraceID(req.Context(), "t-3")),
		TimeStamp:  time.Unix(0, 0),
		StatusCode: 200,
		Latency:    time.Millisecond,
		Method:     "GET",
		Path:       "/api/copilot/query",
	})

	var out accessLog
	require.NoError(t, json.Unmarshal([]byte(line), &out))
	assert.Equal(t, "t-3", out.TraceID)
	assert.Equal(t, 200, out.Status)
	assert.Equal(t, "GIN_ACCESS", out.Msg)
}

func TestMongoTarget(t *testing.T) {
	raw, err := bson.Marshal(bson.D{{Key: "find", Value: "copilot_rating"}, {Key: "filter", Value: bson.D{}}})
	require.NoError(t, err)
	assert.Equal(t, "copilot_rating", mongoTarget("find", raw))
	assert.Equal(t, "", mongoTarget("update", raw))
}

type stubRoundTripper struct {
	status int
	body   string
}

func (s stubRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return &http.Response{StatusCode: s.status, Body: io.NopCloser(strings.NewReader(s.body))}, nil
}

func TestESTransportKeepsBodiesReadable(t *testing.T) {
	tr := &ESTransport{Transport: stubRoundTripper{status: 500, body: `{"error":"shard failure"}`}}
	req := httptest.NewRequest("POST", "/copilot_stages/_search", strings.NewReader(`{"size":1}`))

	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"error":"shard failure"}`, string(b))

	reqBody, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"size":1}`, string(reqBody))
}
