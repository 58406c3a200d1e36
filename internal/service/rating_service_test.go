package service

import (
	"CopilotHub/internal/model"
	"CopilotHub/internal/pkg/rating"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRatingServiceFixture(t *testing.T) (*migratorFixture, RatingService) {
	f := newMigratorFixture(t, legacyDoc(20002))
	svc := NewRatingService(f.ratings, f.copilots, f.migrator)
	clock := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.(*ratingServiceImpl).now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return f, svc
}

func TestRateCopilot_RecountsAfterEachWrite(t *testing.T) {
	ctx := context.Background()
	f, svc := newRatingServiceFixture(t)
	seedCopilot(t, f.db, &model.Copilot{CopilotID: 20001, UploaderID: 1})

	require.NoError(t, svc.RateCopilot(ctx, "u1", 20001, "Like"))
	require.NoError(t, svc.RateCopilot(ctx, "u2", 20001, "like"))
	require.NoError(t, svc.RateCopilot(ctx, "u3", 20001, "DISLIKE"))

	c, err := f.copilots.GetCopilot(ctx, 20001)
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.LikeCount)
	assert.Equal(t, int64(1), c.DislikeCount)
	assert.InDelta(t, 0.7, c.RatingRatio, 1e-9)
	assert.Equal(t, 7, c.RatingLevel)

	// 同一用户反复改评，只保留最后一次
	require.NoError(t, svc.RateCopilot(ctx, "u1", 20001, "Dislike"))
	require.NoError(t, svc.RateCopilot(ctx, "u1", 20001, "None"))
	c, err = f.copilots.GetCopilot(ctx, 20001)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.LikeCount)
	assert.Equal(t, int64(1), c.DislikeCount)
	assert.InDelta(t, 0.5, c.RatingRatio, 1e-9)
	assert.Equal(t, 5, c.RatingLevel)

	r, err := svc.GetUserRating(ctx, "u1", 20001)
	require.NoError(t, err)
	assert.Equal(t, rating.None, r)
}

func TestRateCopilot_SameRatingIsNoop(t *testing.T) {
	ctx := context.Background()
	f, svc := newRatingServiceFixture(t)
	seedCopilot(t, f.db, &model.Copilot{CopilotID: 20001, UploaderID: 1})

	require.NoError(t, svc.RateCopilot(ctx, "u1", 20001, "Like"))
	// 人为篡改计数，重复评分不应触发重新统计
	require.NoError(t, f.db.Model(&model.Copilot{}).Where("copilot_id = ?", 20001).Update("like_count", 42).Error)
	require.NoError(t, svc.RateCopilot(ctx, "u1", 20001, "Like"))

	c, err := f.copilots.GetCopilot(ctx, 20001)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.LikeCount)
}

func TestRateCopilot_Rejections(t *testing.T) {
	ctx := context.Background()
	f, svc := newRatingServiceFixture(t)
	seedCopilot(t, f.db, &model.Copilot{CopilotID: 20001, UploaderID: 1})
	seedCopilot(t, f.db, &model.Copilot{CopilotID: 20009, UploaderID: 1, IsDeleted: true})

	assert.ErrorIs(t, svc.RateCopilot(ctx, "u1", 20001, "Love"), ErrRatingInvalid)
	assert.ErrorIs(t, svc.RateCopilot(ctx, "u1", 30000, "Like"), ErrCopilotNotFound)
	assert.ErrorIs(t, svc.RateCopilot(ctx, "u1", 20009, "Like"), ErrCopilotNotFound)
	assert.ErrorIs(t, svc.RateCopilot(ctx, "", 20001, "Like"), ErrParamInvalid)

	total, err := f.ratings.TotalCount(ctx, "COPILOT", "20001")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRateCopilot_MigratesLegacyWithTrigger(t *testing.T) {
	ctx := context.Background()
	f, svc := newRatingServiceFixture(t)
	seedCopilot(t, f.db, &model.Copilot{CopilotID: 20002, UploaderID: 1})

	// u3 旧评价为 Dislike，改为 Like
	require.NoError(t, svc.RateCopilot(ctx, "u3", 20002, "Like"))
	assert.True(t, f.legacy.consumed(20002))

	c, err := f.copilots.GetCopilot(ctx, 20002)
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.LikeCount)
	assert.Equal(t, int64(0), c.DislikeCount)
	assert.InDelta(t, 1.0, c.RatingRatio, 1e-9)
	assert.Equal(t, 10, c.RatingLevel)
}

func TestGetUserRatings(t *testing.T) {
	ctx := context.Background()
	f, svc := newRatingServiceFixture(t)
	for _, id := range []int64{20001, 20003} {
		seedCopilot(t, f.db, &model.Copilot{CopilotID: id, UploaderID: 1})
	}
	require.NoError(t, svc.RateCopilot(ctx, "u1", 20001, "Like"))
	require.NoError(t, svc.RateCopilot(ctx, "u1", 20003, "Dislike"))
	require.NoError(t, svc.RateCopilot(ctx, "u2", 20001, "Dislike"))

	got, err := svc.GetUserRatings(ctx, "u1", []int64{20001, 20003, 20004})
	require.NoError(t, err)
	assert.Equal(t, map[int64]rating.Type{20001: rating.Like, 20003: rating.Dislike}, got)

	empty, err := svc.GetUserRatings(ctx, "", []int64{20001})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
