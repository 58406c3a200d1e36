package service

import (
	"CopilotHub/internal/model"
	"CopilotHub/internal/pkg/consts"
	"CopilotHub/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAllocator_EmptyStoreStartsAtFloor(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	_, rdb := newTestRedis(t)
	alloc := NewIDAllocator(rdb, repository.NewCopilotRepo(db))
	require.NoError(t, alloc.Init(ctx))

	id, err := alloc.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(consts.CopilotIDFloor+1), id)
}

func TestIDAllocator_SeedsFromStoreMaxAndNeverLowers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mr, rdb := newTestRedis(t)
	seedCopilot(t, db, &model.Copilot{CopilotID: 25000, UploaderID: 1, IsDeleted: true})
	alloc := NewIDAllocator(rdb, repository.NewCopilotRepo(db))

	require.NoError(t, mr.Set(consts.CopilotIDSeqKey, "26000"))
	require.NoError(t, alloc.Init(ctx))
	id, err := alloc.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(26001), id)

	mr.Del(consts.CopilotIDSeqKey)
	require.NoError(t, alloc.Init(ctx))
	id, err = alloc.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25001), id)
}

func TestIDAllocator_ReseedsWhenSequenceLost(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mr, rdb := newTestRedis(t)
	seedCopilot(t, db, &model.Copilot{CopilotID: 21000, UploaderID: 1})
	alloc := NewIDAllocator(rdb, repository.NewCopilotRepo(db))
	require.NoError(t, alloc.Init(ctx))

	mr.FlushAll()
	id, err := alloc.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(21001), id)
}
