package model

import "time"

// ChatTurn 单次人机交互回合
// (user_id, chat_id, turn_id) 三元组唯一，回合只增不改
type ChatTurn struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	UserID       string    `gorm:"size:64;not null;uniqueIndex:idx_chat_turn_identity,priority:1" json:"user_id"`
	ChatID       int       `gorm:"not null;uniqueIndex:idx_chat_turn_identity,priority:2" json:"chat_id"`
	TurnID       int       `gorm:"not null;uniqueIndex:idx_chat_turn_identity,priority:3" json:"turn_id"`
	HumanMessage string    `gorm:"type:text" json:"human_message"`
	AIMessage    string    `gorm:"type:text" json:"ai_message"`
	Timestamp    time.Time `gorm:"not null;index:idx_chat_turn_timestamp" json:"timestamp"`
}

// ConcernProgress 单项心理困扰的进展变化
type ConcernProgress struct {
	Label string `json:"label"`
	Delta int    `json:"delta"`
}

// ChatSummary 每个 (user_id, chat_id) 会话一行的摘要
// 会话开始时创建空行，finalize 时填充
type ChatSummary struct {
	ID               uint                `gorm:"primaryKey" json:"-"`
	UserID           string              `gorm:"size:64;not null;uniqueIndex:idx_chat_summary_identity,priority:1" json:"user_id"`
	ChatID           int                 `gorm:"not null;uniqueIndex:idx_chat_summary_identity,priority:2" json:"chat_id"`
	PerceivedMood    *string             `gorm:"size:64" json:"perceived_mood"`
	SummaryText      string              `gorm:"type:text" json:"summary_text"`
	ConcernsProgress ConcernProgressList `gorm:"type:jsonb" json:"concerns_progress"`
	CreatedAt        time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (ChatTurn) TableName() string {
	return "chat_turns"
}

func (ChatSummary) TableName() string {
	return "chat_summaries"
}
