package logger

import (
	"CopilotHub/internal/api/config"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

type accessLog struct {
	Time        string `json:"time"`
	Level       string `json:"level"`
	Msg         string `json:"msg"`
	TraceID     string `json:"trace_id"`
	LogToken    string `json:"log_token,omitempty"`
	TargetIndex string `json:"target_index,omitempty"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	ClientIP    string `json:"client_ip"`
	Status      int    `json:"status"`
	Latency     string `json:"latency"`
	Error       string `json:"error,omitempty"`
}

func formatAccess(p gin.LogFormatterParams) string {
	entry := accessLog{
		Time:     p.TimeStamp.Format(time.RFC3339),
		Level:    "INFO",
		Msg:      "GIN_ACCESS",
		Method:   p.Method,
		Path:     p.Path,
		ClientIP: p.ClientIP,
		Status:   p.StatusCode,
		Latency:  p.Latency.String(),
		Error:    p.ErrorMessage,
	}
	if id, ok := p.Keys[TraceIDKey].(string); ok {
		entry.TraceID = id
	} else if p.Request != nil {
		entry.TraceID = TraceID(p.Request.Context())
	}
	if config.Cfg != nil {
		entry.LogToken = config.Cfg.Logstash.Token
		entry.TargetIndex = config.Cfg.Logstash.Index
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return ""
	}
	return string(b) + "\n"
}

// SetupGin 访问日志写入 LogWriter，与业务日志同一出口
func SetupGin(r *gin.Engine) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    LogWriter,
		Formatter: formatAccess,
		SkipPaths: []string{"/api/ping"},
	}))
	r.Use(gin.Recovery())
}
