package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CopilotRatingRepo interface {
	FindUnconsumed(ctx context.Context, copilotID int64) (*CopilotRatingModel, error)
	FindUnconsumedByIDs(ctx context.Context, copilotIDs []int64) ([]*CopilotRatingModel, error)
	MarkConsumed(ctx context.Context, copilotID int64) (bool, error)
}

type copilotRatingRepoImpl struct {
	col *mongo.Collection
}

func NewCopilotRatingRepo(db *mongo.Database) CopilotRatingRepo {
	return &copilotRatingRepoImpl{
		col: db.Collection(CopilotRatingCollection),
	}
}

// FindUnconsumed 未迁移的旧版评分，不存在时返回 nil, nil
func (s *copilotRatingRepoImpl) FindUnconsumed(ctx context.Context, copilotID int64) (*CopilotRatingModel, error) {
	var m CopilotRatingModel
	err := s.col.FindOne(ctx, bson.M{"copilotId": copilotID, "delete": false}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// FindUnconsumedByIDs 批量查询，同一作业存在多份时只保留第一份
func (s *copilotRatingRepoImpl) FindUnconsumedByIDs(ctx context.Context, copilotIDs []int64) ([]*CopilotRatingModel, error) {
	if len(copilotIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{"copilotId": bson.M{"$in": copilotIDs}, "delete": false}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var list []*CopilotRatingModel
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(list))
	result := make([]*CopilotRatingModel, 0, len(list))
	for _, m := range list {
		if _, ok := seen[m.CopilotID]; ok {
			continue
		}
		seen[m.CopilotID] = struct{}{}
		result = append(result, m)
	}
	return result, nil
}

// MarkConsumed 条件更新 delete=false -> true，返回是否由本次调用完成
func (s *copilotRatingRepoImpl) MarkConsumed(ctx context.Context, copilotID int64) (bool, error) {
	filter := bson.M{"copilotId": copilotID, "delete": false}
	update := bson.M{"$set": bson.M{"delete": true}}
	result, err := s.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}
