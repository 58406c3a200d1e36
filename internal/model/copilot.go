package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type Copilot struct {
	CopilotID    int64     `gorm:"primaryKey;autoIncrement:false" json:"copilot_id"`
	UploaderID   uint64    `gorm:"not null;index:idx_uploader_id" json:"uploader_id"`
	Title        string    `gorm:"type:varchar(255)" json:"title"`
	Details      string    `gorm:"type:text" json:"details"`
	StageName    string    `gorm:"type:varchar(128);index:idx_stage_name" json:"stage_name"`
	Opers        OperList  `gorm:"type:json" json:"opers"`
	Content      string    `gorm:"type:mediumtext;not null" json:"content"`
	Views        int64     `gorm:"not null;default:0;index:idx_views" json:"views"`
	LikeCount    int64     `gorm:"not null;default:0" json:"like_count"`
	DislikeCount int64     `gorm:"not null;default:0" json:"dislike_count"`
	RatingLevel  int       `gorm:"not null;default:0" json:"rating_level"`
	RatingRatio  float64   `gorm:"not null;default:0" json:"rating_ratio"`
	HotScore     float64   `gorm:"not null;default:0;index:idx_hot_score" json:"hot_score"`
	UploadTime   time.Time `gorm:"not null" json:"upload_time"`
	IsDeleted    bool      `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Copilot) TableName() string {
	return "copilots"
}

// OperList 作业使用的干员名称
type OperList []string

func (o OperList) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *OperList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*o = nil
		return nil
	case []byte:
		return json.Unmarshal(v, o)
	case string:
		return json.Unmarshal([]byte(v), o)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal OperList value:", value))
	}
}
