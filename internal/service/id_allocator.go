package service

import (
	"CopilotHub/internal/pkg/consts"
	"CopilotHub/internal/repository"
	"context"
	log "log/slog"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// 计数器只会被抬高，不会被回退
var seedSeqScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if cur < floor then
	redis.call('SET', KEYS[1], floor)
	return floor
end
return cur
`)

// IDAllocator 作业 ID 分配器，基于 Redis 自增序列
type IDAllocator interface {
	Init(ctx context.Context) error
	Next(ctx context.Context) (int64, error)
}

type idAllocatorImpl struct {
	rdb         redis.Cmdable
	copilotRepo repository.CopilotRepo
}

func NewIDAllocator(rdb redis.Cmdable, copilotRepo repository.CopilotRepo) IDAllocator {
	return &idAllocatorImpl{rdb: rdb, copilotRepo: copilotRepo}
}

// Init 以 max(库中最大 ID, CopilotIDFloor) 对齐序列
func (s *idAllocatorImpl) Init(ctx context.Context) error {
	maxID, err := s.copilotRepo.MaxCopilotID(ctx)
	if err != nil {
		return errors.Wrap(err, "query max copilot id")
	}
	seq, err := seedSeqScript.Run(ctx, s.rdb, []string{consts.CopilotIDSeqKey}, max(maxID, consts.CopilotIDFloor)).Int64()
	if err != nil {
		return errors.Wrap(err, "seed copilot id sequence")
	}
	log.InfoContext(ctx, "copilot id sequence ready", "current", seq, "store_max", maxID)
	return nil
}

func (s *idAllocatorImpl) Next(ctx context.Context) (int64, error) {
	id, err := s.rdb.Incr(ctx, consts.CopilotIDSeqKey).Result()
	if err != nil {
		return 0, storeErr(err, "allocate copilot id")
	}
	if id > consts.CopilotIDFloor {
		return id, nil
	}

	// 序列丢失，按库中最大值重新对齐
	log.WarnContext(ctx, "copilot id sequence lost, reseeding", "got", id)
	if err = s.Init(ctx); err != nil {
		return 0, storeErr(err, "reseed copilot id sequence")
	}
	id, err = s.rdb.Incr(ctx, consts.CopilotIDSeqKey).Result()
	if err != nil {
		return 0, storeErr(err, "allocate copilot id")
	}
	return id, nil
}
