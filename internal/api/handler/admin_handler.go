package handler

import (
	"CopilotHub/internal/api/dto"
	"CopilotHub/internal/pkg/response"
	"context"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

// ScoreRefresher 同步执行一次热度刷新
type ScoreRefresher interface {
	Execute(ctx context.Context) (*dto.ScoreRefreshReport, error)
}

type AdminHandler struct {
	refresher ScoreRefresher
}

func NewAdminHandler(refresher ScoreRefresher) *AdminHandler {
	return &AdminHandler{refresher: refresher}
}

// RefreshScore 管理员手动触发热度刷新，客户端断开不会中断本次刷新
func (s *AdminHandler) RefreshScore(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	report, err := s.refresher.Execute(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	log.InfoContext(ctx, "manual score refresh finished", "updated", report.Updated, "failed", report.Failed)
	response.Success(c, report)
}
