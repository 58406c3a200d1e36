package repository

import (
	"CopilotHub/internal/model"
	"CopilotHub/internal/pkg/rating"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 500

// RatingRepo 逐用户评分记录，(type, key, user_id) 至多一条
type RatingRepo interface {
	UpsertRating(ctx context.Context, subjectType, key, userID string, r rating.Type, rateTime time.Time) (rating.Type, error)
	CountByRating(ctx context.Context, subjectType, key string, r rating.Type) (int64, error)
	TotalCount(ctx context.Context, subjectType, key string) (int64, error)
	Aggregate(ctx context.Context, subjectType, key string) (rating.Aggregate, error)
	FindUserRating(ctx context.Context, subjectType, key, userID string) (rating.Type, error)
	FindUserRatings(ctx context.Context, subjectType string, keys []string, userID string) (map[string]rating.Type, error)
	InsertIgnore(ctx context.Context, records []*model.Rating) (int64, error)
	CountSince(ctx context.Context, subjectType string, keys []string, r rating.Type, since time.Time) (map[string]int64, error)
}

type RatingRepoImpl struct {
	db *gorm.DB
}

func NewRatingRepo(db *gorm.DB) RatingRepo {
	return &RatingRepoImpl{db: db}
}

// UpsertRating 插入或覆盖评分，返回覆盖前的值。
// 并发覆盖时 rate_time 较新者生效。
func (s *RatingRepoImpl) UpsertRating(ctx context.Context, subjectType, key, userID string, r rating.Type, rateTime time.Time) (rating.Type, error) {
	prior := rating.None
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := &model.Rating{
			Type:     subjectType,
			Key:      key,
			UserID:   userID,
			Rating:   r,
			RateTime: rateTime,
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(record)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var existing model.Rating
		if err := tx.Where("type = ? AND rating_key = ? AND user_id = ?", subjectType, key, userID).
			Take(&existing).Error; err != nil {
			return err
		}
		prior = existing.Rating
		if existing.Rating == r {
			return nil
		}
		return tx.Model(&model.Rating{}).
			Where("id = ? AND rate_time <= ?", existing.ID, rateTime).
			Updates(map[string]interface{}{
				"rating":    r,
				"rate_time": rateTime,
			}).Error
	})
	if err != nil {
		return rating.None, err
	}
	return prior, nil
}

func (s *RatingRepoImpl) CountByRating(ctx context.Context, subjectType, key string, r rating.Type) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Rating{}).
		Where("type = ? AND rating_key = ? AND rating = ?", subjectType, key, r).
		Count(&count).Error
	return count, err
}

// TotalCount 不含 None 的评分数
func (s *RatingRepoImpl) TotalCount(ctx context.Context, subjectType, key string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Rating{}).
		Where("type = ? AND rating_key = ? AND rating <> ?", subjectType, key, rating.None).
		Count(&count).Error
	return count, err
}

// Aggregate 一次分组查询得到点赞与点踩数
func (s *RatingRepoImpl) Aggregate(ctx context.Context, subjectType, key string) (rating.Aggregate, error) {
	var rows []struct {
		Rating rating.Type
		Cnt    int64
	}
	err := s.db.WithContext(ctx).Model(&model.Rating{}).
		Select("rating, COUNT(*) AS cnt").
		Where("type = ? AND rating_key = ?", subjectType, key).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return rating.Aggregate{}, err
	}

	var agg rating.Aggregate
	for _, row := range rows {
		agg = agg.Add(row.Rating, row.Cnt)
	}
	return agg, nil
}

func (s *RatingRepoImpl) FindUserRating(ctx context.Context, subjectType, key, userID string) (rating.Type, error) {
	var record model.Rating
	err := s.db.WithContext(ctx).
		Where("type = ? AND rating_key = ? AND user_id = ?", subjectType, key, userID).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rating.None, nil
		}
		return rating.None, err
	}
	return record.Rating, nil
}

func (s *RatingRepoImpl) FindUserRatings(ctx context.Context, subjectType string, keys []string, userID string) (map[string]rating.Type, error) {
	result := make(map[string]rating.Type, len(keys))
	if len(keys) == 0 || userID == "" {
		return result, nil
	}

	var records []*model.Rating
	err := s.db.WithContext(ctx).
		Select("rating_key", "rating").
		Where("type = ? AND user_id = ? AND rating_key IN ?", subjectType, userID, keys).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		result[r.Key] = r.Rating
	}
	return result, nil
}

// InsertIgnore 批量写入，已存在的 (type, key, user_id) 保持不变
func (s *RatingRepoImpl) InsertIgnore(ctx context.Context, records []*model.Rating) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(records, insertBatchSize)
	return result.RowsAffected, result.Error
}

// CountSince 统计 since 之后各主体某类评分的数量，按 key 分组
func (s *RatingRepoImpl) CountSince(ctx context.Context, subjectType string, keys []string, r rating.Type, since time.Time) (map[string]int64, error) {
	result := make(map[string]int64, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	var rows []model.RatingCount
	err := s.db.WithContext(ctx).Model(&model.Rating{}).
		Select("rating_key, COUNT(*) AS cnt").
		Where("type = ? AND rating_key IN ? AND rating = ? AND rate_time >= ?", subjectType, keys, r, since).
		Group("rating_key").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.Key] = row.Count
	}
	return result, nil
}
