package logger

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"time"
)

const (
	esBodyLimit     = 1000
	esSlowThreshold = 500 * time.Millisecond
)

// ESTransport 记录关卡检索请求，响应体只在失败时读取
type ESTransport struct {
	Transport http.RoundTripper
}

func truncateBody(b []byte) string {
	if len(b) > esBodyLimit {
		return string(b[:esBodyLimit]) + "...[truncated]"
	}
	return string(b)
}

func peekBody(body io.ReadCloser) ([]byte, io.ReadCloser) {
	if body == nil || body == http.NoBody {
		return nil, body
	}
	b, _ := io.ReadAll(body)
	_ = body.Close()
	return b, io.NopCloser(bytes.NewReader(b))
}

func (t *ESTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	start := time.Now()

	var reqBody []byte
	reqBody, req.Body = peekBody(req.Body)

	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)

	fields := []any{
		log.String("method", req.Method),
		log.String("path", req.URL.Path),
		log.Duration("latency", elapsed),
		log.String("req_body", truncateBody(reqBody)),
	}

	if err != nil {
		log.ErrorContext(ctx, "ES_QUERY_ERROR", append(fields, log.Any("err", err))...)
		return nil, err
	}
	fields = append(fields, log.Int("status", resp.StatusCode))

	// 404 表示索引缺失，由调用方按未命中处理
	switch {
	case resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound:
		var resBody []byte
		resBody, resp.Body = peekBody(resp.Body)
		log.ErrorContext(ctx, "ES_QUERY_FAILED", append(fields, log.String("res_body", truncateBody(resBody)))...)
	case elapsed > esSlowThreshold:
		log.WarnContext(ctx, "ES_QUERY_SLOW", fields...)
	default:
		log.DebugContext(ctx, "ES_QUERY", fields...)
	}
	return resp, nil
}
