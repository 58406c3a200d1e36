package rating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2023, 4, 1, 8, 0, 0, 0, time.UTC)

func TestParse(t *testing.T) {
	for in, want := range map[string]Type{"Like": Like, "like": Like, " DISLIKE ": Dislike, "None": None, "": None} {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := Parse("Love")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestFromLegacy(t *testing.T) {
	assert.Equal(t, Like, FromLegacy("Like"))
	assert.Equal(t, Dislike, FromLegacy("Dislike"))
	assert.Equal(t, None, FromLegacy("like"))
	assert.Equal(t, 2, Dislike.Display())
}

func TestTallyKeepsLatestPerUser(t *testing.T) {
	events := []Event{
		{UserID: "1", Rating: Like, RateTime: t0},
		{UserID: "2", Rating: Dislike, RateTime: t0},
		{UserID: "1", Rating: Dislike, RateTime: t0.Add(time.Minute)},
		{UserID: "3", Rating: Like, RateTime: t0},
		{UserID: "3", Rating: None, RateTime: t0.Add(-time.Minute)},
	}

	agg := Tally(events)
	assert.Equal(t, Aggregate{Likes: 1, Dislikes: 2}, agg)

	latest := Latest(events)
	require.Len(t, latest, 3)
	assert.Equal(t, Dislike, latest[0].Rating)
	assert.Equal(t, Like, latest[2].Rating)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Normalized, Classify(nil).Kind)
	assert.Equal(t, Migrated, Classify(&LegacyBlob{Consumed: true}).Kind)

	st := Classify(&LegacyBlob{CopilotID: 20001})
	assert.Equal(t, Legacy, st.Kind)
	assert.True(t, st.NeedsMigration())
}

func legacyBlob() LegacyBlob {
	return LegacyBlob{
		CopilotID: 20001,
		Entries: []Event{
			{UserID: "u1", Rating: Like, RateTime: t0},
			{UserID: "u2", Rating: Like, RateTime: t0},
			{UserID: "u3", Rating: Dislike, RateTime: t0},
		},
		RatingLevel: 7,
		RatingRatio: 0.7,
	}
}

func TestPlanMigrationWithoutTrigger(t *testing.T) {
	plan := PlanMigration(legacyBlob(), nil)

	assert.Equal(t, int64(20001), plan.CopilotID)
	assert.Len(t, plan.Records, 3)
	assert.Equal(t, Aggregate{Likes: 2, Dislikes: 1}, plan.Counts)
	assert.Equal(t, 7, plan.RatingLevel)
	assert.Equal(t, 0.7, plan.RatingRatio)
	assert.False(t, plan.TriggerApplied)
}

func TestPlanMigrationTriggerChangesExistingEntry(t *testing.T) {
	now := t0.Add(time.Hour)
	plan := PlanMigration(legacyBlob(), &Trigger{UserID: "u3", Rating: Like, RateTime: now})

	assert.Equal(t, Aggregate{Likes: 3, Dislikes: 0}, plan.Counts)
	require.Len(t, plan.Records, 3)
	assert.Equal(t, Event{UserID: "u3", Rating: Like, RateTime: now}, plan.Records[2])
	assert.True(t, plan.TriggerApplied)
}

func TestPlanMigrationTriggerNewUser(t *testing.T) {
	plan := PlanMigration(legacyBlob(), &Trigger{UserID: "10.0.0.1", Rating: Dislike, RateTime: t0})

	assert.Equal(t, Aggregate{Likes: 2, Dislikes: 2}, plan.Counts)
	assert.Len(t, plan.Records, 4)
}

func TestPlanMigrationTriggerSameValue(t *testing.T) {
	plan := PlanMigration(legacyBlob(), &Trigger{UserID: "u1", Rating: Like, RateTime: t0.Add(time.Hour)})

	assert.Equal(t, Aggregate{Likes: 2, Dislikes: 1}, plan.Counts)
	assert.Equal(t, t0, plan.Records[0].RateTime)
}

func TestPlanMigrationClampsNegativeCounts(t *testing.T) {
	agg := Aggregate{Likes: 0, Dislikes: 1}.Add(Like, -1).Clamp()
	assert.Equal(t, Aggregate{Likes: 0, Dislikes: 1}, agg)

	blob := LegacyBlob{CopilotID: 1, Entries: []Event{{UserID: "u1", Rating: None, RateTime: t0}}}
	plan := PlanMigration(blob, &Trigger{UserID: "u1", Rating: Dislike, RateTime: t0})
	assert.Equal(t, Aggregate{Likes: 0, Dislikes: 1}, plan.Counts)
}

func TestPlanMigrationIsDeterministic(t *testing.T) {
	first := PlanMigration(legacyBlob(), nil)
	second := PlanMigration(legacyBlob(), nil)
	assert.Equal(t, first, second)
}
