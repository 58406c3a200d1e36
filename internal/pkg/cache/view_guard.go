package cache

import (
	"CopilotHub/internal/pkg/consts"
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// 仅在新增成员时刷新过期时间
var markViewScript = redis.NewScript(`
local added = redis.call('SADD', KEYS[1], ARGV[1])
if added == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return added
`)

// ViewGuard 同一访问者在冷却期内对同一作业只计一次浏览
type ViewGuard interface {
	ShouldCountView(ctx context.Context, actorKey string, itemID int64) (bool, error)
}

type ViewGuardImpl struct {
	rdb      redis.Scripter
	cooldown time.Duration
}

func NewViewGuard(rdb redis.Scripter, cooldown time.Duration) ViewGuard {
	if cooldown <= 0 {
		cooldown = time.Hour
	}
	return &ViewGuardImpl{rdb: rdb, cooldown: cooldown}
}

func (s *ViewGuardImpl) ShouldCountView(ctx context.Context, actorKey string, itemID int64) (bool, error) {
	added, err := markViewScript.Run(ctx, s.rdb,
		[]string{consts.ViewGuardKey + actorKey},
		strconv.FormatInt(itemID, 10), s.cooldown.Milliseconds(),
	).Int64()
	if err != nil {
		return false, err
	}
	return added == 1, nil
}
