package kafka

import (
	"CopilotHub/internal/api/config"
	"CopilotHub/internal/pkg/cache"
	"context"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) (*CopilotHandler, cache.ListingCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})
	t.Cleanup(func() { _ = rdb.Close() })
	lc := cache.NewListingCache(rdb)
	return NewCopilotHandler(lc), lc
}

func cached(t *testing.T, lc cache.ListingCache, dim cache.Dimension) bool {
	t.Helper()
	_, hit, err := lc.Get(context.Background(), dim, "fp")
	require.NoError(t, err)
	return hit
}

func TestCopilotHandler_SoftDeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	h, lc := newHandler(t)
	for _, dim := range cache.Dimensions {
		require.NoError(t, lc.Put(ctx, dim, "fp", []byte("{}"), []int64{20001}))
	}

	msg := &sarama.ConsumerMessage{Value: []byte(`{
		"table": "copilots",
		"type": "UPDATE",
		"data": [{"copilot_id": "20001", "is_deleted": "1"}],
		"old": [{"is_deleted": "0"}]
	}`)}
	require.NoError(t, h.logic(ctx, msg))

	for _, dim := range cache.Dimensions {
		assert.False(t, cached(t, lc, dim), dim)
	}
}

func TestCopilotHandler_IgnoresUnrelatedChanges(t *testing.T) {
	ctx := context.Background()
	h, lc := newHandler(t)
	require.NoError(t, lc.Put(ctx, cache.DimensionHot, "fp", []byte("{}"), []int64{20001}))

	for _, raw := range []string{
		`{"table": "copilots", "type": "UPDATE", "data": [{"copilot_id": "20001", "is_deleted": "0", "views": "3"}], "old": [{"views": "2"}]}`,
		`{"table": "copilots", "type": "INSERT", "data": [{"copilot_id": "20001", "is_deleted": "0"}]}`,
		`{"table": "copilots", "type": "UPDATE", "data": [{"copilot_id": "20002", "is_deleted": "1"}], "old": [{"is_deleted": "0"}]}`,
	} {
		require.NoError(t, h.logic(ctx, &sarama.ConsumerMessage{Value: []byte(raw)}))
	}
	assert.True(t, cached(t, lc, cache.DimensionHot))

	err := h.logic(ctx, &sarama.ConsumerMessage{Value: []byte(`{"table": "users", "type": "DELETE", "data": [{"id": "1"}]}`)})
	assert.ErrorIs(t, err, ErrTableMismatch)
	assert.True(t, skippable(err))

	err = h.logic(ctx, &sarama.ConsumerMessage{Value: []byte(`not json`)})
	assert.True(t, skippable(err))
}

func TestCopilotHandler_HardDeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	h, lc := newHandler(t)
	require.NoError(t, lc.Put(ctx, cache.DimensionViews, "fp", []byte("{}"), []int64{20001}))

	msg := &sarama.ConsumerMessage{Value: []byte(`{"table": "copilots", "type": "DELETE", "data": [{"copilot_id": "20001", "is_deleted": "0"}]}`)}
	require.NoError(t, h.logic(ctx, msg))
	assert.False(t, cached(t, lc, cache.DimensionViews))
}

func TestNextBackoffCapped(t *testing.T) {
	d := retryBase
	for i := 0; i < 10; i++ {
		d = nextBackoff(d)
	}
	assert.Equal(t, retryMax, d)
	assert.Equal(t, 200*time.Millisecond, nextBackoff(retryBase))
}

func TestNewSaramaConfigDefaults(t *testing.T) {
	c := newSaramaConfig(config.KafkaConfig{Consumer: config.ConsumerConfig{SessionTimeout: 30}})

	assert.Equal(t, 30*time.Second, c.Consumer.Group.Session.Timeout)
	assert.Equal(t, 3*time.Second, c.Consumer.Group.Heartbeat.Interval)
	assert.False(t, c.Consumer.Offsets.AutoCommit.Enable)
	assert.False(t, c.Net.SASL.Enable)
	require.NoError(t, c.Validate())
}
