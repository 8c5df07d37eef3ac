// Package lifecycle 管理心理支持对话的完整生命周期
// 包括欢迎、逐轮应答、收尾归档和用户数据清除
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/schema"
	"gorm.io/gorm"

	"github.com/ashwinyue/aria/internal/config"
	"github.com/ashwinyue/aria/internal/database"
	"github.com/ashwinyue/aria/internal/model"
	"github.com/ashwinyue/aria/internal/repository"
	"github.com/ashwinyue/aria/internal/service/session"
)

// Responder 生成对用户输入的回复
type Responder interface {
	Respond(ctx context.Context, query string, history []*schema.Message) (string, error)
}

// HistoryAssembler 组装对话历史
// Assemble 返回裁剪后的逐轮上下文，AssembleAll 返回当前对话的全部轮次
type HistoryAssembler interface {
	Assemble(ctx context.Context, userID string, chatID int, scope repository.Scope) ([]*schema.Message, error)
	AssembleAll(ctx context.Context, userID string, chatID int) ([]*schema.Message, error)
}

// Summarizing 对话收尾时的摘要能力
type Summarizing interface {
	Summarize(ctx context.Context, messages []*schema.Message) (string, error)
	ClassifyMood(ctx context.Context, messages []*schema.Message) (*string, error)
	ExtractConcerns(ctx context.Context, messages []*schema.Message, existing []model.MentalHealthConcern) ([]model.ConcernProgress, error)
}

// Manager 对话生命周期管理器
type Manager struct {
	turns      repository.TurnStore
	summaries  repository.SummaryStore
	journeys   repository.JourneyStore
	checkIns   repository.CheckInStore
	users      repository.UserStore
	responder  Responder
	assembler  HistoryAssembler
	summarizer Summarizing
	sessions   *session.Manager
	retrier    *database.Retrier
	cfg        *config.SessionConfig
}

// NewManager 创建生命周期管理器
func NewManager(
	repos *repository.Repositories,
	responder Responder,
	assembler HistoryAssembler,
	summarizer Summarizing,
	sessions *session.Manager,
	retrier *database.Retrier,
	cfg *config.SessionConfig,
) *Manager {
	return &Manager{
		turns:      repos.Turn,
		summaries:  repos.Summary,
		journeys:   repos.Journey,
		checkIns:   repos.CheckIn,
		users:      repos.User,
		responder:  responder,
		assembler:  assembler,
		summarizer: summarizer,
		sessions:   sessions,
		retrier:    retrier,
		cfg:        cfg,
	}
}

// WelcomeResult 欢迎结果
type WelcomeResult struct {
	ChatID  int    `json:"chat_id"`
	Message string `json:"message"`
}

// GetWelcome 开始一次新对话
// 分配新的 chat_id，生成欢迎语并作为第 0 轮落库
func (m *Manager) GetWelcome(ctx context.Context, userID string) (*WelcomeResult, error) {
	firstSession, err := m.ensureJourney(ctx, userID)
	if err != nil {
		return nil, err
	}

	chatID, err := m.nextChatID(userID)
	if err != nil {
		return nil, err
	}

	// 新对话先占位一条空摘要，收尾时再补全内容
	if err := m.retrier.ExecuteWithRetries(ctx, func(ctx context.Context) error {
		return m.summaries.Create(&model.ChatSummary{UserID: userID, ChatID: chatID})
	}); err != nil {
		return nil, fmt.Errorf("create chat summary: %w", err)
	}

	var history []*schema.Message
	if firstSession {
		history = append(history, schema.SystemMessage(onboardingAddendum))
	} else {
		history = append(history, schema.SystemMessage(returningAddendum))
		if prev := m.previousSummary(userID, chatID); prev != "" {
			history = append(history, schema.SystemMessage("Summary of the previous conversation:\n"+prev))
		}
	}

	greeting, err := m.responder.Respond(ctx, welcomeQuery, history)
	if err != nil {
		return nil, fmt.Errorf("generate welcome: %w", err)
	}

	// 欢迎语作为第 0 轮记录，用户侧为空
	if err := m.retrier.ExecuteWithRetries(ctx, func(ctx context.Context) error {
		return m.turns.Append(&model.ChatTurn{
			UserID:    userID,
			ChatID:    chatID,
			TurnID:    0,
			AIMessage: greeting,
			Timestamp: time.Now(),
		})
	}); err != nil {
		return nil, fmt.Errorf("persist welcome turn: %w", err)
	}

	_ = m.sessions.Append(ctx, userID, chatID, schema.AssistantMessage(greeting, nil))

	return &WelcomeResult{ChatID: chatID, Message: greeting}, nil
}

// SendMessage 处理一轮对话
// turnID 为用户正在回应的轮次编号，新回合以 turnID+1 落库
// 只有模型成功产生回复后才会写库
func (m *Manager) SendMessage(ctx context.Context, userID string, chatID int, prompt string, turnID int) (string, error) {
	// 客户端未携带轮次编号时，以库中最新一轮为准
	if turnID < 0 {
		latest, err := m.turns.LatestTurnID(userID, chatID)
		if err != nil {
			return "", fmt.Errorf("load latest turn: %w", err)
		}
		turnID = latest
	}

	scope := repository.ParseScope(m.cfg.HistoryScope)

	history, err := m.assembler.Assemble(ctx, userID, chatID, scope)
	if err != nil {
		return "", fmt.Errorf("assemble history: %w", err)
	}

	// 只看当前对话时，把上一次对话的摘要作为背景注入
	if scope == repository.ScopeCurrent {
		if prev := m.previousSummary(userID, chatID); prev != "" {
			history = append([]*schema.Message{
				schema.SystemMessage("Summary of the previous conversation:\n" + prev),
			}, history...)
		}
	}

	reply, err := m.responder.Respond(ctx, prompt, history)
	if err != nil {
		return "", err
	}

	storedTurnID := turnID + 1
	if err := m.retrier.ExecuteWithRetries(ctx, func(ctx context.Context) error {
		return m.turns.Append(&model.ChatTurn{
			UserID:       userID,
			ChatID:       chatID,
			TurnID:       storedTurnID,
			HumanMessage: prompt,
			AIMessage:    reply,
			Timestamp:    time.Now(),
		})
	}); err != nil {
		return "", fmt.Errorf("persist turn: %w", err)
	}

	_ = m.sessions.Append(ctx, userID, chatID,
		schema.UserMessage(prompt),
		schema.AssistantMessage(reply, nil),
	)

	// 周期性维护：刷新摘要与情绪，失败只记录日志
	if m.cfg.ProcessingStep > 0 && (storedTurnID+1)%m.cfg.ProcessingStep == 0 {
		if err := m.refreshSummary(ctx, userID, chatID); err != nil {
			log.Printf("chat maintenance failed for %s/%d: %v", userID, chatID, err)
		}
	}

	return reply, nil
}

// FinalizeChat 收尾归档一次对话
// 摘要必须覆盖对话的全部轮次，因此不走逐轮裁剪的组装路径
func (m *Manager) FinalizeChat(ctx context.Context, userID string, chatID int) error {
	messages, err := m.assembler.AssembleAll(ctx, userID, chatID)
	if err != nil {
		return fmt.Errorf("assemble history: %w", err)
	}

	summaryText, err := m.summarizer.Summarize(ctx, messages)
	if err != nil {
		return fmt.Errorf("summarize chat: %w", err)
	}

	// 情绪无法判断时记为 NULL，不阻断收尾
	mood, err := m.summarizer.ClassifyMood(ctx, messages)
	if err != nil {
		log.Printf("mood classification failed for %s/%d: %v", userID, chatID, err)
		mood = nil
	}

	var existing []model.MentalHealthConcern
	journey, jerr := m.journeys.Get(userID)
	if jerr == nil {
		existing = journey.MentalHealthConcerns
	}

	progress, err := m.summarizer.ExtractConcerns(ctx, messages, existing)
	if err != nil {
		log.Printf("concern extraction failed for %s/%d: %v", userID, chatID, err)
		progress = nil
	}

	if err := m.retrier.ExecuteWithRetries(ctx, func(ctx context.Context) error {
		return m.summaries.Upsert(&model.ChatSummary{
			UserID:           userID,
			ChatID:           chatID,
			PerceivedMood:    mood,
			SummaryText:      summaryText,
			ConcernsProgress: progress,
		})
	}); err != nil {
		return fmt.Errorf("persist chat summary: %w", err)
	}

	if journey != nil && len(progress) > 0 {
		applyConcernProgress(journey, progress)
		journey.LastUpdate = time.Now()
		if err := m.retrier.ExecuteWithRetries(ctx, func(ctx context.Context) error {
			return m.journeys.Save(journey)
		}); err != nil {
			return fmt.Errorf("update journey: %w", err)
		}
	}

	_ = m.sessions.Clear(ctx, userID, chatID)
	return nil
}

// EraseUserData 删除用户的全部对话数据
func (m *Manager) EraseUserData(ctx context.Context, userID string) error {
	if err := m.retrier.ExecuteWithRetries(ctx, func(ctx context.Context) error {
		if err := m.turns.DeleteByUser(userID); err != nil {
			return err
		}
		if err := m.summaries.DeleteByUser(userID); err != nil {
			return err
		}
		if err := m.checkIns.DeleteByUser(userID); err != nil {
			return err
		}
		return m.journeys.Delete(userID)
	}); err != nil {
		return fmt.Errorf("erase user data: %w", err)
	}

	return m.sessions.ClearUser(ctx, userID)
}

// PruneTurns 清理保留期之外的历史回合，供定时任务调用
func (m *Manager) PruneTurns(ctx context.Context) (int64, error) {
	if m.cfg.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -m.cfg.RetentionDays)

	var pruned int64
	err := m.retrier.ExecuteWithRetries(ctx, func(ctx context.Context) error {
		n, err := m.turns.DeleteBefore(cutoff)
		pruned = n
		return err
	})
	return pruned, err
}

// ensureJourney 确保用户旅程存在，返回是否为首次对话
func (m *Manager) ensureJourney(ctx context.Context, userID string) (bool, error) {
	_, err := m.journeys.Get(userID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("load journey: %w", err)
	}

	journey := &model.UserJourney{UserID: userID, LastUpdate: time.Now()}
	if err := m.retrier.ExecuteWithRetries(ctx, func(ctx context.Context) error {
		return m.journeys.Save(journey)
	}); err != nil {
		return false, fmt.Errorf("create journey: %w", err)
	}
	return true, nil
}

// nextChatID 分配下一个对话编号
// 以最近一条摘要为准；没有摘要记录时从 0 开始
func (m *Manager) nextChatID(userID string) (int, error) {
	latest, err := m.summaries.GetLatest(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load latest summary: %w", err)
	}
	if latest.ChatID < 0 {
		log.Printf("inconsistent chat id %d for user %s, resetting to 0", latest.ChatID, userID)
		return 0, nil
	}
	return latest.ChatID + 1, nil
}

// previousSummary 上一次对话的摘要文本，没有则返回空串
func (m *Manager) previousSummary(userID string, chatID int) string {
	if chatID <= 0 {
		return ""
	}
	prev, err := m.summaries.Get(userID, chatID-1)
	if err != nil {
		return ""
	}
	return prev.SummaryText
}

// refreshSummary 周期性维护：基于全部轮次重算当前对话的摘要与情绪
func (m *Manager) refreshSummary(ctx context.Context, userID string, chatID int) error {
	messages, err := m.assembler.AssembleAll(ctx, userID, chatID)
	if err != nil {
		return err
	}

	summaryText, err := m.summarizer.Summarize(ctx, messages)
	if err != nil {
		return err
	}

	mood, err := m.summarizer.ClassifyMood(ctx, messages)
	if err != nil {
		log.Printf("mood classification failed for %s/%d: %v", userID, chatID, err)
		mood = nil
	}

	return m.retrier.ExecuteWithRetries(ctx, func(ctx context.Context) error {
		return m.summaries.Upsert(&model.ChatSummary{
			UserID:        userID,
			ChatID:        chatID,
			PerceivedMood: mood,
			SummaryText:   summaryText,
		})
	})
}

// applyConcernProgress 将关注点变化合并进旅程
// 已有关注点按 delta 调整严重程度并夹在 [0, 10]，新标签按初始严重程度加入
func applyConcernProgress(journey *model.UserJourney, progress []model.ConcernProgress) {
	for _, p := range progress {
		found := false
		for i := range journey.MentalHealthConcerns {
			if journey.MentalHealthConcerns[i].Label == p.Label {
				journey.MentalHealthConcerns[i].Severity = clampSeverity(journey.MentalHealthConcerns[i].Severity + p.Delta)
				found = true
				break
			}
		}
		if !found {
			journey.MentalHealthConcerns = append(journey.MentalHealthConcerns, model.MentalHealthConcern{
				Label:    p.Label,
				Severity: clampSeverity(p.Delta),
			})
		}
	}
}

func clampSeverity(s int) int {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}
