package repository

import (
	"CopilotHub/internal/model"
	"context"

	"gorm.io/gorm"
)

type UserRepo interface {
	GetUsernames(ctx context.Context, ids []uint64) (map[uint64]string, error)
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

// GetUsernames 批量查询用户名，不存在或已注销的用户不在结果中
func (s *UserRepoImpl) GetUsernames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	result := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	users := make([]*model.User, 0, len(ids))
	err := s.db.WithContext(ctx).
		Select("id", "username").
		Where("id IN ? AND is_delete = ?", ids, false).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username != nil {
			result[u.ID] = *u.Username
		}
	}
	return result, nil
}
