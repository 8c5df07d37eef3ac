package model

import "time"

// 签到状态
const (
	CheckInStatusPending = "pending"
	CheckInStatusDone    = "done"
	CheckInStatusMissed  = "missed"
)

// CheckIn 用户的定期心理健康签到计划
type CheckIn struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"size:64;not null;index" json:"user_id"`
	CheckInTime time.Time `gorm:"not null;index" json:"check_in_time"`
	Frequency   string    `gorm:"size:32;not null" json:"frequency"` // daily/weekly/monthly/one_time
	Status      string    `gorm:"size:16;not null;default:pending" json:"status"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (CheckIn) TableName() string {
	return "check_ins"
}
