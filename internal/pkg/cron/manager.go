package cron

import (
	"CopilotHub/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

const defaultScoreRefreshSpec = "0 12 23 * * *"

type Manager struct {
	engine           *cron.Cron
	scoreRefreshJob  *job.ScoreRefreshJob
	scoreRefreshSpec string
}

// NewCronManager 秒级 cron 表达式，任务 panic 时恢复并写入 slog
func NewCronManager(scoreRefreshJob *job.ScoreRefreshJob, scoreRefreshSpec string) *Manager {
	if scoreRefreshSpec == "" {
		scoreRefreshSpec = defaultScoreRefreshSpec
	}
	cronLogger := cron.PrintfLogger(log.NewLogLogger(log.Default().Handler(), log.LevelError))
	return &Manager{
		engine: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		scoreRefreshJob:  scoreRefreshJob,
		scoreRefreshSpec: scoreRefreshSpec,
	}
}

// InitCron 注册并启动全部定时任务
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	mgr.Start()
	return nil
}

func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.scoreRefreshSpec, s.scoreRefreshJob); err != nil {
		return err
	}
	log.Info("热度刷新任务已注册", "spec", s.scoreRefreshSpec)
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
