package service

import (
	"CopilotHub/internal/model"
	"CopilotHub/internal/pkg/es"
	"CopilotHub/internal/pkg/mongo"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Copilot{},
		&model.Rating{},
		&model.CopilotComment{},
		&model.User{},
	))
	return db
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// fakeLegacyRepo 内存版旧评分仓库，MarkConsumed 与 Mongo 一样按 delete 条件更新
type fakeLegacyRepo struct {
	mu   sync.Mutex
	docs map[int64]*mongo.CopilotRatingModel
}

func newFakeLegacyRepo(docs ...*mongo.CopilotRatingModel) *fakeLegacyRepo {
	f := &fakeLegacyRepo{docs: make(map[int64]*mongo.CopilotRatingModel)}
	for _, d := range docs {
		f.docs[d.CopilotID] = d
	}
	return f
}

func (f *fakeLegacyRepo) put(doc *mongo.CopilotRatingModel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.CopilotID] = doc
}

func (f *fakeLegacyRepo) FindUnconsumed(_ context.Context, copilotID int64) (*mongo.CopilotRatingModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[copilotID]
	if !ok || d.Delete {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *fakeLegacyRepo) FindUnconsumedByIDs(ctx context.Context, copilotIDs []int64) ([]*mongo.CopilotRatingModel, error) {
	out := make([]*mongo.CopilotRatingModel, 0)
	for _, id := range copilotIDs {
		d, _ := f.FindUnconsumed(ctx, id)
		if d != nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeLegacyRepo) MarkConsumed(_ context.Context, copilotID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[copilotID]
	if !ok || d.Delete {
		return false, nil
	}
	d.Delete = true
	return true, nil
}

func (f *fakeLegacyRepo) consumed(copilotID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[copilotID]
	return ok && d.Delete
}

type MockStageRepo struct {
	mock.Mock
}

func (m *MockStageRepo) FindByLevelIDFuzzy(ctx context.Context, levelID string) (*es.StageES, error) {
	args := m.Called(ctx, levelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*es.StageES), args.Error(1)
}

func (m *MockStageRepo) QueryStageIDsByKeyword(ctx context.Context, keyword string) ([]string, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func seedCopilot(t *testing.T, db *gorm.DB, c *model.Copilot) {
	t.Helper()
	if c.Content == "" {
		c.Content = "{}"
	}
	if c.UploadTime.IsZero() {
		c.UploadTime = time.Now()
	}
	require.NoError(t, db.Create(c).Error)
}
