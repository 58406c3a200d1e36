package dto

import "time"

// CopilotInfo 作业展示信息
type CopilotInfo struct {
	ID              int64     `json:"id"`
	UploaderID      uint64    `json:"uploader_id"`
	Uploader        string    `json:"uploader"`
	Title           string    `json:"title"`
	Details         string    `json:"details"`
	StageName       string    `json:"stage_name"`
	Opers           []string  `json:"opers"`
	Content         string    `json:"content,omitempty"`
	Views           int64     `json:"views"`
	HotScore        float64   `json:"hot_score"`
	LikeCount       int64     `json:"like"`
	DislikeCount    int64     `json:"dislike"`
	RatingLevel     int       `json:"rating_level"`
	RatingRatio     float64   `json:"rating_ratio"`
	RatingType      int       `json:"rating_type"`
	NotEnoughRating bool      `json:"not_enough_rating"`
	CommentsCount   int64     `json:"comments_count"`
	UploadTime      time.Time `json:"upload_time"`
	Available       bool      `json:"available"`
}

// CopilotPageInfo 列表分页结果
type CopilotPageInfo struct {
	Total     int64          `json:"total"`
	Page      int            `json:"page"`
	PageCount int64          `json:"page_count"`
	HasNext   bool           `json:"has_next"`
	Data      []*CopilotInfo `json:"data"`
}

// CopilotQueriesReq 列表查询参数
type CopilotQueriesReq struct {
	Page         int    `form:"page" json:"page" binding:"omitempty,min=1,max=100000"`
	Limit        int    `form:"limit" json:"limit" binding:"omitempty,min=1"`
	LevelKeyword string `form:"level_keyword" json:"level_keyword"`
	Operator     string `form:"operator" json:"operator"`
	Document     string `form:"document" json:"document"`
	UploaderID   string `form:"uploader_id" json:"uploader_id"`
	Desc         *bool  `form:"desc" json:"desc"`
	OrderBy      string `form:"order_by" json:"order_by"`
}

// CopilotRatingReq 评分请求
type CopilotRatingReq struct {
	ID     int64  `json:"id" binding:"required,gt=0"`
	Rating string `json:"rating" binding:"required"`
}

// CopilotCUDReq 上传、更新、删除作业
type CopilotCUDReq struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// ScoreRefreshReport 热度刷新任务结果
type ScoreRefreshReport struct {
	Total    int           `json:"total"`
	Migrated int           `json:"migrated"`
	Updated  int           `json:"updated"`
	Failed   int           `json:"failed"`
	Elapsed  time.Duration `json:"elapsed"`
}
