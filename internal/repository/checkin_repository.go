package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/ashwinyue/aria/internal/model"
)

// CheckInRepository 签到计划数据访问
type CheckInRepository struct {
	db *gorm.DB
}

// NewCheckInRepository 创建签到仓库
func NewCheckInRepository(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// Create 创建签到计划
func (r *CheckInRepository) Create(checkIn *model.CheckIn) error {
	return r.db.Create(checkIn).Error
}

// GetByID 获取签到计划
func (r *CheckInRepository) GetByID(id uint) (*model.CheckIn, error) {
	var checkIn model.CheckIn
	err := r.db.First(&checkIn, id).Error
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}

// ListByUser 列出用户的签到计划
func (r *CheckInRepository) ListByUser(userID string) ([]*model.CheckIn, error) {
	var checkIns []*model.CheckIn
	err := r.db.Where("user_id = ?", userID).Order("check_in_time ASC").Find(&checkIns).Error
	return checkIns, err
}

// Update 更新签到计划
func (r *CheckInRepository) Update(checkIn *model.CheckIn) error {
	return r.db.Save(checkIn).Error
}

// Delete 删除签到计划
func (r *CheckInRepository) Delete(id uint) error {
	return r.db.Delete(&model.CheckIn{}, id).Error
}

// MarkMissedBefore 将截止时间之前仍未完成的签到标记为错过，返回更新条数
func (r *CheckInRepository) MarkMissedBefore(cutoff time.Time) (int64, error) {
	result := r.db.Model(&model.CheckIn{}).
		Where("status = ? AND check_in_time < ?", model.CheckInStatusPending, cutoff).
		Update("status", model.CheckInStatusMissed)
	return result.RowsAffected, result.Error
}

// DeleteByUser 删除用户的全部签到计划
func (r *CheckInRepository) DeleteByUser(userID string) error {
	return r.db.Delete(&model.CheckIn{}, "user_id = ?", userID).Error
}
