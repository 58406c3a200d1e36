package model

import (
	"time"
)

type CopilotComment struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	CopilotID int64     `gorm:"not null;index:idx_copilot_id" json:"copilot_id"`
	UserID    uint64    `gorm:"not null" json:"user_id"`
	Content   string    `gorm:"type:varchar(1000);not null" json:"content"`
	IsDeleted bool      `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CopilotComment) TableName() string {
	return "copilot_comments"
}
