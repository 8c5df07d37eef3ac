// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import (
	"time"

	"github.com/ashwinyue/aria/internal/model"
)

// Scope 历史查询范围
type Scope string

const (
	// ScopeAll 用户所有对话的轮次
	ScopeAll Scope = "all"
	// ScopePrevious 当前对话之前所有对话的轮次
	ScopePrevious Scope = "previous"
	// ScopeCurrent 仅当前对话的轮次
	ScopeCurrent Scope = "current"
)

// ParseScope 解析范围字符串，未知值回退为 ScopeCurrent
func ParseScope(s string) Scope {
	switch Scope(s) {
	case ScopeAll, ScopePrevious, ScopeCurrent:
		return Scope(s)
	default:
		return ScopeCurrent
	}
}

// ========== TurnStore 接口 ==========

// TurnStore 对话轮次数据访问接口
// 轮次只追加，不更新
type TurnStore interface {
	Append(turn *model.ChatTurn) error
	Query(userID string, chatID int, scope Scope, limit int) ([]*model.ChatTurn, error)
	LatestTurnID(userID string, chatID int) (int, error)
	DeleteByUser(userID string) error
	DeleteBefore(cutoff time.Time) (int64, error)
}

// ========== SummaryStore 接口 ==========

// SummaryStore 对话摘要数据访问接口
type SummaryStore interface {
	Create(summary *model.ChatSummary) error
	Upsert(summary *model.ChatSummary) error
	Get(userID string, chatID int) (*model.ChatSummary, error)
	GetLatest(userID string) (*model.ChatSummary, error)
	DeleteByUser(userID string) error
}

// ========== JourneyStore 接口 ==========

// JourneyStore 用户治疗旅程数据访问接口
type JourneyStore interface {
	Get(userID string) (*model.UserJourney, error)
	Save(journey *model.UserJourney) error
	Delete(userID string) error
}

// ========== UserStore 接口 ==========

// UserStore 用户数据访问接口
type UserStore interface {
	Create(user *model.User) error
	GetByID(id string) (*model.User, error)
	GetByUsername(username string) (*model.User, error)
	Delete(id string) error
}

// ========== CheckInStore 接口 ==========

// CheckInStore 签到计划数据访问接口
type CheckInStore interface {
	Create(checkIn *model.CheckIn) error
	GetByID(id uint) (*model.CheckIn, error)
	ListByUser(userID string) ([]*model.CheckIn, error)
	Update(checkIn *model.CheckIn) error
	Delete(id uint) error
	MarkMissedBefore(cutoff time.Time) (int64, error)
	DeleteByUser(userID string) error
}

// 确保具体实现满足接口
var (
	_ TurnStore    = (*TurnRepository)(nil)
	_ SummaryStore = (*SummaryRepository)(nil)
	_ JourneyStore = (*JourneyRepository)(nil)
	_ UserStore    = (*UserRepository)(nil)
	_ CheckInStore = (*CheckInRepository)(nil)
)
