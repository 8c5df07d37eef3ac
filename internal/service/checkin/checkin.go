// Package checkin 管理用户的定期心理健康签到
package checkin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ashwinyue/aria/internal/config"
	"github.com/ashwinyue/aria/internal/model"
	"github.com/ashwinyue/aria/internal/repository"
)

// 支持的签到频率
var validFrequencies = map[string]bool{
	"daily":    true,
	"weekly":   true,
	"monthly":  true,
	"one_time": true,
}

// TurnPruner 历史回合清理能力，由生命周期管理器提供
type TurnPruner interface {
	PruneTurns(ctx context.Context) (int64, error)
}

// Service 签到服务
// 除了 CRUD 之外还驱动定时清扫：标记错过的签到、清理过期回合
type Service struct {
	checkIns repository.CheckInStore
	pruner   TurnPruner
	cfg      *config.CheckInConfig
	cron     *cron.Cron
}

// NewService 创建签到服务
func NewService(checkIns repository.CheckInStore, pruner TurnPruner, cfg *config.CheckInConfig) *Service {
	return &Service{
		checkIns: checkIns,
		pruner:   pruner,
		cfg:      cfg,
	}
}

// CreateRequest 创建签到请求
type CreateRequest struct {
	UserID      string    `json:"user_id" binding:"required"`
	CheckInTime time.Time `json:"check_in_time" binding:"required"`
	Frequency   string    `json:"frequency" binding:"required"`
	Notes       string    `json:"notes"`
}

// Create 创建签到计划
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*model.CheckIn, error) {
	if !validFrequencies[req.Frequency] {
		return nil, fmt.Errorf("unsupported frequency: %s", req.Frequency)
	}

	checkIn := &model.CheckIn{
		UserID:      req.UserID,
		CheckInTime: req.CheckInTime,
		Frequency:   req.Frequency,
		Status:      model.CheckInStatusPending,
		Notes:       req.Notes,
	}
	if err := s.checkIns.Create(checkIn); err != nil {
		return nil, fmt.Errorf("create check-in: %w", err)
	}
	return checkIn, nil
}

// List 列出用户的签到计划
func (s *Service) List(ctx context.Context, userID string) ([]*model.CheckIn, error) {
	return s.checkIns.ListByUser(userID)
}

// Complete 完成签到
// 周期性签到在完成后顺延到下一个周期
func (s *Service) Complete(ctx context.Context, id uint, userID string) (*model.CheckIn, error) {
	checkIn, err := s.checkIns.GetByID(id)
	if err != nil {
		return nil, err
	}
	if checkIn.UserID != userID {
		return nil, errors.New("check-in does not belong to user")
	}

	checkIn.Status = model.CheckInStatusDone
	if err := s.checkIns.Update(checkIn); err != nil {
		return nil, fmt.Errorf("update check-in: %w", err)
	}

	if next, ok := nextOccurrence(checkIn.CheckInTime, checkIn.Frequency); ok {
		follow := &model.CheckIn{
			UserID:      checkIn.UserID,
			CheckInTime: next,
			Frequency:   checkIn.Frequency,
			Status:      model.CheckInStatusPending,
			Notes:       checkIn.Notes,
		}
		if err := s.checkIns.Create(follow); err != nil {
			log.Printf("failed to schedule next check-in for %s: %v", checkIn.UserID, err)
		}
	}

	return checkIn, nil
}

// Delete 删除签到计划
func (s *Service) Delete(ctx context.Context, id uint, userID string) error {
	checkIn, err := s.checkIns.GetByID(id)
	if err != nil {
		return err
	}
	if checkIn.UserID != userID {
		return errors.New("check-in does not belong to user")
	}
	return s.checkIns.Delete(id)
}

// Sweep 执行一次清扫：标记错过的签到并清理过期回合
func (s *Service) Sweep(ctx context.Context) {
	missed, err := s.checkIns.MarkMissedBefore(time.Now())
	if err != nil {
		log.Printf("check-in sweep failed: %v", err)
	} else if missed > 0 {
		log.Printf("marked %d check-ins as missed", missed)
	}

	if s.pruner != nil {
		pruned, err := s.pruner.PruneTurns(ctx)
		if err != nil {
			log.Printf("turn pruning failed: %v", err)
		} else if pruned > 0 {
			log.Printf("pruned %d expired chat turns", pruned)
		}
	}
}

// Start 启动定时清扫
func (s *Service) Start() error {
	if !s.cfg.Enabled {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.cfg.SweepCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("schedule check-in sweep: %w", err)
	}

	c.Start()
	s.cron = c
	return nil
}

// Stop 停止定时清扫
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// nextOccurrence 计算下一个签到时间，一次性签到没有下一次
func nextOccurrence(t time.Time, frequency string) (time.Time, bool) {
	switch frequency {
	case "daily":
		return t.AddDate(0, 0, 1), true
	case "weekly":
		return t.AddDate(0, 0, 7), true
	case "monthly":
		return t.AddDate(0, 1, 0), true
	default:
		return time.Time{}, false
	}
}
