package service

import (
	"CopilotHub/internal/model"
	"CopilotHub/internal/pkg/consts"
	"CopilotHub/internal/pkg/mongo"
	"CopilotHub/internal/pkg/rating"
	redisutil "CopilotHub/internal/pkg/redis"
	"CopilotHub/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// MigrationResult 一次迁移的结果，Migrated 为 false 时其余字段无意义
type MigrationResult struct {
	Migrated       bool
	TriggerApplied bool
	Counts         rating.Aggregate
	RatingLevel    int
	RatingRatio    float64
}

// LegacyRatingMigrator 将旧版评分数组迁移为逐用户评分记录，每个作业至多一次
type LegacyRatingMigrator interface {
	Migrate(ctx context.Context, copilotID int64, trigger *rating.Trigger) (*MigrationResult, error)
	MigrateBatch(ctx context.Context, copilotIDs []int64) (migrated, failed int, err error)
}

type MigratorOptions struct {
	LockTTL   time.Duration
	LockRetry int
}

type legacyRatingMigratorImpl struct {
	legacyRepo  mongo.CopilotRatingRepo
	ratingRepo  repository.RatingRepo
	copilotRepo repository.CopilotRepo
	rdb         redis.Cmdable
	opts        MigratorOptions
}

func NewLegacyRatingMigrator(
	legacyRepo mongo.CopilotRatingRepo,
	ratingRepo repository.RatingRepo,
	copilotRepo repository.CopilotRepo,
	rdb redis.Cmdable,
	opts MigratorOptions,
) LegacyRatingMigrator {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}
	if opts.LockRetry <= 0 {
		opts.LockRetry = 10
	}
	return &legacyRatingMigratorImpl{
		legacyRepo:  legacyRepo,
		ratingRepo:  ratingRepo,
		copilotRepo: copilotRepo,
		rdb:         rdb,
		opts:        opts,
	}
}

// Migrate 作业存在未迁移的旧版评分时执行迁移，否则直接返回
func (s *legacyRatingMigratorImpl) Migrate(ctx context.Context, copilotID int64, trigger *rating.Trigger) (*MigrationResult, error) {
	doc, err := s.legacyRepo.FindUnconsumed(ctx, copilotID)
	if err != nil {
		return nil, storeErr(err, "find legacy rating")
	}
	if !s.classify(doc).NeedsMigration() {
		return &MigrationResult{}, nil
	}
	return s.migrateLocked(ctx, copilotID, trigger, s.opts.LockRetry)
}

// MigrateBatch 批量迁移，单个作业失败只记录日志
func (s *legacyRatingMigratorImpl) MigrateBatch(ctx context.Context, copilotIDs []int64) (int, int, error) {
	docs, err := s.legacyRepo.FindUnconsumedByIDs(ctx, copilotIDs)
	if err != nil {
		return 0, 0, errors.Wrap(err, "find legacy ratings")
	}

	var migrated, failed int
	for _, doc := range docs {
		res, err := s.migrateLocked(ctx, doc.CopilotID, nil, 1)
		if err != nil {
			failed++
			log.ErrorContext(ctx, "legacy rating migration failed", "copilot_id", doc.CopilotID, "err", err)
			continue
		}
		if res.Migrated {
			migrated++
		}
	}
	return migrated, failed, nil
}

func (s *legacyRatingMigratorImpl) classify(doc *mongo.CopilotRatingModel) rating.State {
	if doc == nil {
		return rating.Classify(nil)
	}
	return rating.Classify(doc.ToBlob())
}

func (s *legacyRatingMigratorImpl) migrateLocked(ctx context.Context, copilotID int64, trigger *rating.Trigger, retry int) (*MigrationResult, error) {
	lockKey := consts.CopilotMigrateLock + strconv.FormatInt(copilotID, 10)
	lockVal := uuid.NewString()

	ok, err := redisutil.TryLock(ctx, s.rdb, lockKey, lockVal, s.opts.LockTTL, retry)
	if err != nil {
		return nil, storeErr(err, "acquire migrate lock")
	}
	if !ok {
		return nil, ErrMigrationBusy
	}
	defer func() {
		if err := redisutil.UnLock(context.WithoutCancel(ctx), s.rdb, lockKey, lockVal); err != nil {
			log.WarnContext(ctx, "release migrate lock failed", "copilot_id", copilotID, "err", err)
		}
	}()

	// 持锁后重新读取，其他实例可能已经完成迁移
	doc, err := s.legacyRepo.FindUnconsumed(ctx, copilotID)
	if err != nil {
		return nil, storeErr(err, "reload legacy rating")
	}
	state := s.classify(doc)
	if !state.NeedsMigration() {
		return &MigrationResult{}, nil
	}

	plan := rating.PlanMigration(*state.Blob, trigger)
	if err = s.commit(ctx, plan); err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "legacy rating migrated",
		"copilot_id", copilotID,
		"records", len(plan.Records),
		"likes", plan.Counts.Likes,
		"dislikes", plan.Counts.Dislikes,
	)
	return &MigrationResult{
		Migrated:       true,
		TriggerApplied: plan.TriggerApplied,
		Counts:         plan.Counts,
		RatingLevel:    plan.RatingLevel,
		RatingRatio:    plan.RatingRatio,
	}, nil
}

// commit 先写评分记录与计数，最后才标记旧数据已消费
func (s *legacyRatingMigratorImpl) commit(ctx context.Context, plan rating.Plan) error {
	key := strconv.FormatInt(plan.CopilotID, 10)
	records := make([]*model.Rating, 0, len(plan.Records))
	for _, e := range plan.Records {
		records = append(records, &model.Rating{
			Type:     consts.RatingSubjectCopilot,
			Key:      key,
			UserID:   e.UserID,
			Rating:   e.Rating,
			RateTime: e.RateTime,
		})
	}

	if _, err := s.ratingRepo.InsertIgnore(ctx, records); err != nil {
		return storeErr(err, "insert migrated ratings")
	}
	if err := s.copilotRepo.UpdateLegacyRating(ctx, plan.CopilotID, plan.Counts, plan.RatingRatio, plan.RatingLevel); err != nil {
		return storeErr(err, "write migrated counts")
	}

	consumed, err := s.legacyRepo.MarkConsumed(ctx, plan.CopilotID)
	if err != nil {
		return storeErr(err, "mark legacy rating consumed")
	}
	if !consumed {
		log.WarnContext(ctx, "legacy rating already consumed by another migration", "copilot_id", plan.CopilotID)
	}
	return nil
}
