package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashwinyue/aria/internal/model"
)

// JourneyRepository 用户治疗旅程数据访问
type JourneyRepository struct {
	db *gorm.DB
}

// NewJourneyRepository 创建旅程仓库
func NewJourneyRepository(db *gorm.DB) *JourneyRepository {
	return &JourneyRepository{db: db}
}

// Get 获取用户旅程，不存在时返回 gorm.ErrRecordNotFound
func (r *JourneyRepository) Get(userID string) (*model.UserJourney, error) {
	var journey model.UserJourney
	err := r.db.Where("user_id = ?", userID).First(&journey).Error
	if err != nil {
		return nil, err
	}
	return &journey, nil
}

// Save 按 user_id 写入旅程，已存在时更新
func (r *JourneyRepository) Save(journey *model.UserJourney) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"patient_goals", "therapy_type", "therapy_plan", "mental_health_concerns", "last_update",
		}),
	}).Create(journey).Error
}

// Delete 删除用户旅程
func (r *JourneyRepository) Delete(userID string) error {
	return r.db.Delete(&model.UserJourney{}, "user_id = ?", userID).Error
}
