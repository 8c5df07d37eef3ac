package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashwinyue/aria/internal/model"
)

// SummaryRepository 对话摘要数据访问
type SummaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository 创建摘要仓库
func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Create 创建摘要记录
func (r *SummaryRepository) Create(summary *model.ChatSummary) error {
	return r.db.Create(summary).Error
}

// Upsert 按 (user_id, chat_id) 写入摘要，已存在时更新内容字段
func (r *SummaryRepository) Upsert(summary *model.ChatSummary) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"perceived_mood", "summary_text", "concerns_progress", "updated_at",
		}),
	}).Create(summary).Error
}

// Get 获取指定对话的摘要
func (r *SummaryRepository) Get(userID string, chatID int) (*model.ChatSummary, error) {
	var summary model.ChatSummary
	err := r.db.Where("user_id = ? AND chat_id = ?", userID, chatID).First(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetLatest 获取用户最近一次对话的摘要，无记录时返回 gorm.ErrRecordNotFound
func (r *SummaryRepository) GetLatest(userID string) (*model.ChatSummary, error) {
	var summary model.ChatSummary
	err := r.db.Where("user_id = ?", userID).Order("chat_id DESC").First(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// DeleteByUser 删除用户的全部摘要记录
func (r *SummaryRepository) DeleteByUser(userID string) error {
	return r.db.Delete(&model.ChatSummary{}, "user_id = ?", userID).Error
}
