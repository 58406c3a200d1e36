package cache

import (
	"CopilotHub/internal/pkg/consts"
	redisutil "CopilotHub/internal/pkg/redis"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Dimension 列表排序维度
type Dimension string

const (
	DimensionHot   Dimension = "hot"
	DimensionViews Dimension = "views"
	DimensionID    Dimension = "id"
)

// Dimensions 所有可缓存的维度
var Dimensions = []Dimension{DimensionHot, DimensionViews, DimensionID}

var dimensionTTL = map[Dimension]time.Duration{
	DimensionHot:   24 * time.Hour,
	DimensionViews: time.Hour,
	DimensionID:    5 * time.Minute,
}

// TTLOf 维度的缓存时长，不在白名单内返回 false
func TTLOf(dim Dimension) (time.Duration, bool) {
	ttl, ok := dimensionTTL[dim]
	return ttl, ok
}

// Fingerprint 规范化查询参数的稳定哈希
func Fingerprint(params any) (string, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(xxhash.Sum64(b), 16), nil
}

type ListingCache interface {
	Get(ctx context.Context, dim Dimension, fingerprint string) ([]byte, bool, error)
	Put(ctx context.Context, dim Dimension, fingerprint string, payload []byte, itemIDs []int64) error
	InvalidateIfPresent(ctx context.Context, dim Dimension, itemID int64) (bool, error)
	InvalidateAll(ctx context.Context, dim Dimension) error
}

type ListingCacheImpl struct {
	rdb redis.Cmdable
}

func NewListingCache(rdb redis.Cmdable) ListingCache {
	return &ListingCacheImpl{rdb: rdb}
}

func pageKey(dim Dimension, fingerprint string) string {
	return fmt.Sprintf(consts.HomeCacheKey, dim, fingerprint)
}

func indexKey(dim Dimension) string {
	return fmt.Sprintf(consts.HomeCacheIndexKey, dim)
}

func (s *ListingCacheImpl) Get(ctx context.Context, dim Dimension, fingerprint string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, pageKey(dim, fingerprint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// Put 写入分页结果，并把页内作业 ID 并入维度索引
func (s *ListingCacheImpl) Put(ctx context.Context, dim Dimension, fingerprint string, payload []byte, itemIDs []int64) error {
	ttl, ok := TTLOf(dim)
	if !ok {
		return fmt.Errorf("dimension %q is not cacheable", dim)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, pageKey(dim, fingerprint), payload, ttl)
	if len(itemIDs) > 0 {
		members := make([]interface{}, 0, len(itemIDs))
		for _, id := range itemIDs {
			members = append(members, strconv.FormatInt(id, 10))
		}
		pipe.SAdd(ctx, indexKey(dim), members...)
		pipe.Expire(ctx, indexKey(dim), ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateIfPresent 作业在维度索引中时清空该维度全部缓存
func (s *ListingCacheImpl) InvalidateIfPresent(ctx context.Context, dim Dimension, itemID int64) (bool, error) {
	present, err := s.rdb.SIsMember(ctx, indexKey(dim), strconv.FormatInt(itemID, 10)).Result()
	if err != nil {
		return false, err
	}
	if !present {
		return false, nil
	}
	return true, s.InvalidateAll(ctx, dim)
}

func (s *ListingCacheImpl) InvalidateAll(ctx context.Context, dim Dimension) error {
	_, err := redisutil.DeleteByPattern(ctx, s.rdb, fmt.Sprintf(consts.HomeCachePattern, dim))
	return err
}
