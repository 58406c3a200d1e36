package service

import (
	"CopilotHub/internal/pkg/consts"
	"CopilotHub/internal/pkg/rating"
	"CopilotHub/internal/pkg/scoring"
	"CopilotHub/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"
)

type RatingService interface {
	RateCopilot(ctx context.Context, actorKey string, copilotID int64, ratingStr string) error
	GetUserRating(ctx context.Context, actorKey string, copilotID int64) (rating.Type, error)
	GetUserRatings(ctx context.Context, actorKey string, copilotIDs []int64) (map[int64]rating.Type, error)
}

type ratingServiceImpl struct {
	ratingRepo  repository.RatingRepo
	copilotRepo repository.CopilotRepo
	migrator    LegacyRatingMigrator
	now         func() time.Time
}

func NewRatingService(ratingRepo repository.RatingRepo, copilotRepo repository.CopilotRepo, migrator LegacyRatingMigrator) RatingService {
	return &ratingServiceImpl{
		ratingRepo:  ratingRepo,
		copilotRepo: copilotRepo,
		migrator:    migrator,
		now:         time.Now,
	}
}

// RateCopilot 提交评分，计数始终以写入后的评分记录重新统计
func (s *ratingServiceImpl) RateCopilot(ctx context.Context, actorKey string, copilotID int64, ratingStr string) error {
	if actorKey == "" || copilotID <= 0 {
		return ErrParamInvalid
	}
	r, err := rating.Parse(ratingStr)
	if err != nil {
		return ErrRatingInvalid
	}

	copilot, err := s.copilotRepo.GetActiveCopilot(ctx, copilotID)
	if err != nil {
		return storeErr(err, "get copilot")
	}
	if copilot == nil {
		return ErrCopilotNotFound
	}

	now := s.now()
	res, err := s.migrator.Migrate(ctx, copilotID, &rating.Trigger{UserID: actorKey, Rating: r, RateTime: now})
	if err != nil {
		return err
	}

	key := strconv.FormatInt(copilotID, 10)
	prior, err := s.ratingRepo.UpsertRating(ctx, consts.RatingSubjectCopilot, key, actorKey, r, now)
	if err != nil {
		return storeErr(err, "upsert rating")
	}
	if prior == r && !res.Migrated {
		return nil
	}

	agg, err := s.ratingRepo.Aggregate(ctx, consts.RatingSubjectCopilot, key)
	if err != nil {
		return storeErr(err, "aggregate ratings")
	}
	score := scoring.Compute(agg)
	if err = s.copilotRepo.UpdateRating(ctx, copilotID, agg, score.Ratio, score.Level); err != nil {
		return storeErr(err, "update copilot rating")
	}

	log.InfoContext(ctx, "copilot rated",
		"copilot_id", copilotID,
		"rating", r.String(),
		"prior", prior.String(),
		"migrated", res.Migrated,
		"likes", agg.Likes,
		"dislikes", agg.Dislikes,
	)
	return nil
}

func (s *ratingServiceImpl) GetUserRating(ctx context.Context, actorKey string, copilotID int64) (rating.Type, error) {
	if actorKey == "" {
		return rating.None, nil
	}
	r, err := s.ratingRepo.FindUserRating(ctx, consts.RatingSubjectCopilot, strconv.FormatInt(copilotID, 10), actorKey)
	if err != nil {
		return rating.None, storeErr(err, "find user rating")
	}
	return r, nil
}

// GetUserRatings 批量查询当前访问者的评价，缺失的作业不出现在结果中
func (s *ratingServiceImpl) GetUserRatings(ctx context.Context, actorKey string, copilotIDs []int64) (map[int64]rating.Type, error) {
	out := make(map[int64]rating.Type, len(copilotIDs))
	if actorKey == "" || len(copilotIDs) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(copilotIDs))
	for _, id := range copilotIDs {
		keys = append(keys, strconv.FormatInt(id, 10))
	}
	byKey, err := s.ratingRepo.FindUserRatings(ctx, consts.RatingSubjectCopilot, keys, actorKey)
	if err != nil {
		return nil, storeErr(err, "find user ratings")
	}
	for k, r := range byKey {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		out[id] = r
	}
	return out, nil
}
