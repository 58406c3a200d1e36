package model

import (
	"CopilotHub/internal/pkg/rating"
	"time"
)

// Rating 单个用户对某个主体的当前评价，(type, key, user_id) 唯一
type Rating struct {
	ID       uint64      `gorm:"primaryKey"`
	Type     string      `gorm:"type:varchar(32);not null;uniqueIndex:uk_type_key_user,priority:1;index:idx_type_key_time,priority:1"`
	Key      string      `gorm:"column:rating_key;type:varchar(64);not null;uniqueIndex:uk_type_key_user,priority:2;index:idx_type_key_time,priority:2"`
	UserID   string      `gorm:"type:varchar(64);not null;uniqueIndex:uk_type_key_user,priority:3"`
	Rating   rating.Type `gorm:"type:tinyint;not null;default:0"`
	RateTime time.Time   `gorm:"not null;index:idx_type_key_time,priority:3"`
}

func (Rating) TableName() string {
	return "ratings"
}

// RatingCount 按主体分组的计数
type RatingCount struct {
	Key   string `gorm:"column:rating_key"`
	Count int64  `gorm:"column:cnt"`
}
