package repository

import (
	"CopilotHub/internal/model"
	"context"

	"gorm.io/gorm"
)

type CommentRepo interface {
	CountByCopilotID(ctx context.Context, copilotID int64) (int64, error)
}

type CommentRepoImpl struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) CommentRepo {
	return &CommentRepoImpl{db: db}
}

// CountByCopilotID 未删除的评论数
func (s *CommentRepoImpl) CountByCopilotID(ctx context.Context, copilotID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.CopilotComment{}).
		Where("copilot_id = ? AND is_deleted = ?", copilotID, false).
		Count(&count).Error
	return count, err
}
