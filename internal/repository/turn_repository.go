package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/ashwinyue/aria/internal/model"
)

// TurnRepository 对话轮次数据访问
type TurnRepository struct {
	db *gorm.DB
}

// NewTurnRepository 创建轮次仓库
func NewTurnRepository(db *gorm.DB) *TurnRepository {
	return &TurnRepository{db: db}
}

// Append 追加一条轮次记录
// (user_id, chat_id, turn_id) 唯一索引保证同一轮次不会写入两次
func (r *TurnRepository) Append(turn *model.ChatTurn) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	return r.db.Create(turn).Error
}

// Query 按范围查询轮次，按时间升序返回
// current 范围取当前对话，previous 范围恰好取上一个对话（chat_id-1）且不限量，
// all 范围取该用户全部对话；limit > 0 时截取最近的 limit 条
func (r *TurnRepository) Query(userID string, chatID int, scope Scope, limit int) ([]*model.ChatTurn, error) {
	query := r.db.Where("user_id = ?", userID)
	switch scope {
	case ScopeCurrent:
		query = query.Where("chat_id = ?", chatID)
	case ScopePrevious:
		query = query.Where("chat_id = ?", chatID-1)
		limit = 0
	case ScopeAll:
		// 不加 chat_id 过滤
	}

	// 先按时间倒序取最近的记录，再反转为时间升序
	if limit > 0 {
		query = query.Limit(limit)
	}
	var turns []*model.ChatTurn
	err := query.Order("timestamp DESC").Find(&turns).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// LatestTurnID 获取对话中最大的轮次编号，无记录时返回 -1
func (r *TurnRepository) LatestTurnID(userID string, chatID int) (int, error) {
	var turn model.ChatTurn
	err := r.db.Where("user_id = ? AND chat_id = ?", userID, chatID).
		Order("turn_id DESC").
		First(&turn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return -1, nil
		}
		return -1, err
	}
	return turn.TurnID, nil
}

// DeleteByUser 删除用户的全部轮次记录
func (r *TurnRepository) DeleteByUser(userID string) error {
	return r.db.Delete(&model.ChatTurn{}, "user_id = ?", userID).Error
}

// DeleteBefore 删除指定时间之前的轮次记录，返回删除条数
func (r *TurnRepository) DeleteBefore(cutoff time.Time) (int64, error) {
	result := r.db.Delete(&model.ChatTurn{}, "timestamp < ?", cutoff)
	return result.RowsAffected, result.Error
}
