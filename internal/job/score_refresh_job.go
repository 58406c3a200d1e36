package job

import (
	"CopilotHub/internal/api/dto"
	"CopilotHub/internal/pkg/cache"
	"CopilotHub/internal/pkg/consts"
	"CopilotHub/internal/pkg/logger"
	"CopilotHub/internal/pkg/rating"
	"CopilotHub/internal/pkg/scoring"
	"CopilotHub/internal/repository"
	"CopilotHub/internal/service"
	"context"
	log "log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const defaultWindowDays = 7

// ScoreRefreshJob 每日刷新作业热度值
type ScoreRefreshJob struct {
	copilotRepo  repository.CopilotRepo
	ratingRepo   repository.RatingRepo
	migrator     service.LegacyRatingMigrator
	listingCache cache.ListingCache
	window       time.Duration
	now          func() time.Time
	mu           sync.Mutex
}

func NewScoreRefreshJob(
	copilotRepo repository.CopilotRepo,
	ratingRepo repository.RatingRepo,
	migrator service.LegacyRatingMigrator,
	listingCache cache.ListingCache,
	windowDays int,
) *ScoreRefreshJob {
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	return &ScoreRefreshJob{
		copilotRepo:  copilotRepo,
		ratingRepo:   ratingRepo,
		migrator:     migrator,
		listingCache: listingCache,
		window:       time.Duration(windowDays) * 24 * time.Hour,
		now:          time.Now,
	}
}

func (s *ScoreRefreshJob) Run() {
	ctx := logger.WithTraceID(context.Background(), logger.NewTraceID("job-score-refresh"))
	report, err := s.Execute(ctx)
	if err != nil {
		log.ErrorContext(ctx, "score refresh aborted", "err", err)
		return
	}
	log.InfoContext(ctx, "score refresh finished",
		"total", report.Total,
		"migrated", report.Migrated,
		"updated", report.Updated,
		"failed", report.Failed,
		"elapsed", report.Elapsed,
	)
}

// Execute 迁移旧评分后按近期评价重算全部作业热度，同一时刻只允许一次运行
func (s *ScoreRefreshJob) Execute(ctx context.Context) (*dto.ScoreRefreshReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	copilots, err := s.copilotRepo.GetActiveCopilots(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load active copilots")
	}
	report := &dto.ScoreRefreshReport{Total: len(copilots)}
	if len(copilots) == 0 {
		report.Elapsed = s.now().Sub(start)
		return report, nil
	}

	ids := make([]int64, 0, len(copilots))
	keys := make([]string, 0, len(copilots))
	for _, c := range copilots {
		ids = append(ids, c.CopilotID)
		keys = append(keys, strconv.FormatInt(c.CopilotID, 10))
	}

	migrated, failed, err := s.migrator.MigrateBatch(ctx, ids)
	if err != nil {
		log.ErrorContext(ctx, "legacy rating batch migration skipped", "err", err)
	}
	report.Migrated = migrated
	report.Failed = failed

	since := start.Add(-s.window)
	likes, err := s.ratingRepo.CountSince(ctx, consts.RatingSubjectCopilot, keys, rating.Like, since)
	if err != nil {
		return nil, errors.Wrap(err, "count recent likes")
	}
	dislikes, err := s.ratingRepo.CountSince(ctx, consts.RatingSubjectCopilot, keys, rating.Dislike, since)
	if err != nil {
		return nil, errors.Wrap(err, "count recent dislikes")
	}

	for i, c := range copilots {
		window := rating.Aggregate{Likes: 1}
		if n, ok := likes[keys[i]]; ok {
			window.Likes = n
		}
		window.Dislikes = dislikes[keys[i]]

		hot := scoring.HotScore(c.UploadTime, start, c.Views, window)
		if err = s.copilotRepo.UpdateHotScore(ctx, c.CopilotID, hot); err != nil {
			report.Failed++
			log.ErrorContext(ctx, "update hot score failed", "copilot_id", c.CopilotID, "err", err)
			continue
		}
		report.Updated++
	}

	if err = s.listingCache.InvalidateAll(ctx, cache.DimensionHot); err != nil {
		log.ErrorContext(ctx, "invalidate hot listing cache failed", "err", err)
	}
	report.Elapsed = s.now().Sub(start)
	return report, nil
}
