package repository

import (
	"CopilotHub/internal/model"
	"CopilotHub/internal/pkg/rating"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const subject = "COPILOT"

func TestRatingRepo_UpsertRatingKeepsSingleRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepo(newTestDB(t))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	prior, err := repo.UpsertRating(ctx, subject, "20001", "7", rating.Like, now)
	require.NoError(t, err)
	assert.Equal(t, rating.None, prior)

	prior, err = repo.UpsertRating(ctx, subject, "20001", "7", rating.Dislike, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, rating.Like, prior)

	prior, err = repo.UpsertRating(ctx, subject, "20001", "7", rating.Like, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, rating.Dislike, prior)

	total, err := repo.TotalCount(ctx, subject, "20001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	likes, err := repo.CountByRating(ctx, subject, "20001", rating.Like)
	require.NoError(t, err)
	assert.Equal(t, int64(1), likes)

	got, err := repo.FindUserRating(ctx, subject, "20001", "7")
	require.NoError(t, err)
	assert.Equal(t, rating.Like, got)
}

func TestRatingRepo_UpsertRatingOlderWriteLoses(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepo(newTestDB(t))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.UpsertRating(ctx, subject, "20001", "7", rating.Like, now)
	require.NoError(t, err)
	_, err = repo.UpsertRating(ctx, subject, "20001", "7", rating.Dislike, now.Add(-time.Hour))
	require.NoError(t, err)

	got, err := repo.FindUserRating(ctx, subject, "20001", "7")
	require.NoError(t, err)
	assert.Equal(t, rating.Like, got)
}

func TestRatingRepo_AggregateAndNoneRecords(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepo(newTestDB(t))
	now := time.Now().UTC()

	for user, r := range map[string]rating.Type{"1": rating.Like, "2": rating.Like, "3": rating.Dislike, "4": rating.None} {
		_, err := repo.UpsertRating(ctx, subject, "20002", user, r, now)
		require.NoError(t, err)
	}

	agg, err := repo.Aggregate(ctx, subject, "20002")
	require.NoError(t, err)
	assert.Equal(t, rating.Aggregate{Likes: 2, Dislikes: 1}, agg)

	total, err := repo.TotalCount(ctx, subject, "20002")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	missing, err := repo.FindUserRating(ctx, subject, "20002", "404")
	require.NoError(t, err)
	assert.Equal(t, rating.None, missing)
}

func TestRatingRepo_InsertIgnoreIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepo(newTestDB(t))
	now := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	build := func() []*model.Rating {
		return []*model.Rating{
			{Type: subject, Key: "20003", UserID: "1", Rating: rating.Like, RateTime: now},
			{Type: subject, Key: "20003", UserID: "2", Rating: rating.Dislike, RateTime: now},
		}
	}

	n, err := repo.InsertIgnore(ctx, build())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.InsertIgnore(ctx, build())
	require.NoError(t, err)

	agg, err := repo.Aggregate(ctx, subject, "20003")
	require.NoError(t, err)
	assert.Equal(t, rating.Aggregate{Likes: 1, Dislikes: 1}, agg)
}

func TestRatingRepo_CountSinceGroupsByKey(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepo(newTestDB(t))
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	since := now.AddDate(0, 0, -7)

	_, err := repo.InsertIgnore(ctx, []*model.Rating{
		{Type: subject, Key: "1", UserID: "a", Rating: rating.Like, RateTime: now},
		{Type: subject, Key: "1", UserID: "b", Rating: rating.Like, RateTime: now.AddDate(0, 0, -1)},
		{Type: subject, Key: "1", UserID: "c", Rating: rating.Like, RateTime: now.AddDate(0, 0, -30)},
		{Type: subject, Key: "1", UserID: "d", Rating: rating.Dislike, RateTime: now},
		{Type: subject, Key: "2", UserID: "a", Rating: rating.Like, RateTime: now},
	})
	require.NoError(t, err)

	likes, err := repo.CountSince(ctx, subject, []string{"1", "2", "3"}, rating.Like, since)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 2, "2": 1}, likes)

	dislikes, err := repo.CountSince(ctx, subject, []string{"1", "2", "3"}, rating.Dislike, since)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 1}, dislikes)

	ratings, err := repo.FindUserRatings(ctx, subject, []string{"1", "2"}, "d")
	require.NoError(t, err)
	assert.Equal(t, map[string]rating.Type{"1": rating.Dislike}, ratings)
}
