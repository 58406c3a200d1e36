package model

// User 作业上传者，本服务只读取用户名
type User struct {
	ID       uint64  `gorm:"primaryKey"`
	Username *string `gorm:"type:varchar(50);uniqueIndex:idx_username"`
	IsDelete bool    `gorm:"type:tinyint(1);default:0"`
}

func (User) TableName() string {
	return "users"
}
