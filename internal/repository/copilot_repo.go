package repository

import (
	"CopilotHub/internal/model"
	"CopilotHub/internal/pkg/rating"
	"CopilotHub/internal/pkg/util"
	"context"
	"errors"

	"gorm.io/gorm"
)

// CopilotQuery 列表查询条件，字段均已规范化
type CopilotQuery struct {
	StageNames   []string
	StageKeyword string
	Document     string
	IncludeOpers []string
	ExcludeOpers []string
	UploaderID   *uint64
	OrderColumn  string
	Desc         bool
	Offset       int
	Limit        int
}

type CopilotRepo interface {
	CreateCopilot(ctx context.Context, copilot *model.Copilot) error
	GetCopilot(ctx context.Context, id int64) (*model.Copilot, error)
	GetActiveCopilot(ctx context.Context, id int64) (*model.Copilot, error)
	GetActiveCopilots(ctx context.Context) ([]*model.Copilot, error)
	QueryCopilots(ctx context.Context, q *CopilotQuery) ([]*model.Copilot, int64, error)
	MaxCopilotID(ctx context.Context) (int64, error)
	UpdateContent(ctx context.Context, copilot *model.Copilot) error
	UpdateRating(ctx context.Context, id int64, counts rating.Aggregate, ratio float64, level int) error
	UpdateLegacyRating(ctx context.Context, id int64, counts rating.Aggregate, ratio float64, level int) error
	UpdateHotScore(ctx context.Context, id int64, hotScore float64) error
	IncrViews(ctx context.Context, id int64) error
	SoftDelete(ctx context.Context, id int64) (bool, error)
}

type CopilotRepoImpl struct {
	db *gorm.DB
}

func NewCopilotRepo(db *gorm.DB) CopilotRepo {
	return &CopilotRepoImpl{db: db}
}

func (s *CopilotRepoImpl) CreateCopilot(ctx context.Context, copilot *model.Copilot) error {
	return s.db.WithContext(ctx).Create(copilot).Error
}

func (s *CopilotRepoImpl) GetCopilot(ctx context.Context, id int64) (*model.Copilot, error) {
	var copilot model.Copilot
	err := s.db.WithContext(ctx).Where("copilot_id = ?", id).Take(&copilot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &copilot, nil
}

// GetActiveCopilot 未删除的作业，不存在时返回 nil, nil
func (s *CopilotRepoImpl) GetActiveCopilot(ctx context.Context, id int64) (*model.Copilot, error) {
	var copilot model.Copilot
	err := s.db.WithContext(ctx).Where("copilot_id = ? AND is_deleted = ?", id, false).Take(&copilot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &copilot, nil
}

func (s *CopilotRepoImpl) GetActiveCopilots(ctx context.Context) ([]*model.Copilot, error) {
	copilots := make([]*model.Copilot, 0)
	err := s.db.WithContext(ctx).
		Omit("content").
		Where("is_deleted = ?", false).
		Order("copilot_id").
		Find(&copilots).Error
	return copilots, err
}

func (s *CopilotRepoImpl) QueryCopilots(ctx context.Context, q *CopilotQuery) ([]*model.Copilot, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.Copilot{}).Where("is_deleted = ?", false)

	switch {
	case len(q.StageNames) > 0:
		tx = tx.Where("stage_name IN ?", q.StageNames)
	case q.StageKeyword != "":
		tx = tx.Where("stage_name LIKE ? ESCAPE '!'", util.LikeContains(q.StageKeyword))
	}
	if q.Document != "" {
		pattern := util.LikeContains(q.Document)
		tx = tx.Where("(title LIKE ? ESCAPE '!' OR details LIKE ? ESCAPE '!')", pattern, pattern)
	}
	for _, oper := range q.IncludeOpers {
		tx = tx.Where("opers LIKE ? ESCAPE '!'", util.LikeContains(`"`+oper+`"`))
	}
	for _, oper := range q.ExcludeOpers {
		tx = tx.Where("opers NOT LIKE ? ESCAPE '!'", util.LikeContains(`"`+oper+`"`))
	}
	if q.UploaderID != nil {
		tx = tx.Where("uploader_id = ?", *q.UploaderID)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 || int64(q.Offset) >= total {
		return []*model.Copilot{}, total, nil
	}

	order := q.OrderColumn
	if q.Desc {
		order += " DESC"
	}
	if q.OrderColumn != "copilot_id" {
		order += ", copilot_id DESC"
	}

	copilots := make([]*model.Copilot, 0, q.Limit)
	err := tx.Omit("content").Order(order).Offset(q.Offset).Limit(q.Limit).Find(&copilots).Error
	if err != nil {
		return nil, 0, err
	}
	return copilots, total, nil
}

// MaxCopilotID 包含已删除作业，空表返回 0
func (s *CopilotRepoImpl) MaxCopilotID(ctx context.Context) (int64, error) {
	var maxID int64
	err := s.db.WithContext(ctx).Model(&model.Copilot{}).
		Select("COALESCE(MAX(copilot_id), 0)").
		Scan(&maxID).Error
	return maxID, err
}

func (s *CopilotRepoImpl) UpdateContent(ctx context.Context, copilot *model.Copilot) error {
	result := s.db.WithContext(ctx).Model(&model.Copilot{}).
		Where("copilot_id = ? AND is_deleted = ?", copilot.CopilotID, false).
		Updates(map[string]interface{}{
			"title":      copilot.Title,
			"details":    copilot.Details,
			"stage_name": copilot.StageName,
			"opers":      copilot.Opers,
			"content":    copilot.Content,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateRating 评分提交后回写计数与好评率
func (s *CopilotRepoImpl) UpdateRating(ctx context.Context, id int64, counts rating.Aggregate, ratio float64, level int) error {
	return s.db.WithContext(ctx).Model(&model.Copilot{}).
		Where("copilot_id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"like_count":    counts.Likes,
			"dislike_count": counts.Dislikes,
			"rating_ratio":  ratio,
			"rating_level":  level,
		}).Error
}

// UpdateLegacyRating 迁移时写入，已删除的作业同样需要落库
func (s *CopilotRepoImpl) UpdateLegacyRating(ctx context.Context, id int64, counts rating.Aggregate, ratio float64, level int) error {
	return s.db.WithContext(ctx).Model(&model.Copilot{}).
		Where("copilot_id = ?", id).
		Updates(map[string]interface{}{
			"like_count":    counts.Likes,
			"dislike_count": counts.Dislikes,
			"rating_ratio":  ratio,
			"rating_level":  level,
		}).Error
}

func (s *CopilotRepoImpl) UpdateHotScore(ctx context.Context, id int64, hotScore float64) error {
	return s.db.WithContext(ctx).Model(&model.Copilot{}).
		Where("copilot_id = ?", id).
		Update("hot_score", hotScore).Error
}

func (s *CopilotRepoImpl) IncrViews(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Model(&model.Copilot{}).
		Where("copilot_id = ? AND is_deleted = ?", id, false).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// SoftDelete 返回是否由本次调用完成删除
func (s *CopilotRepoImpl) SoftDelete(ctx context.Context, id int64) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Copilot{}).
		Where("copilot_id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	return result.RowsAffected > 0, result.Error
}
