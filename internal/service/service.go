// Package service 装配业务服务与 eino 组件
package service

import (
	"context"
	"log"

	"github.com/cloudwego/eino/components/embedding"
	ecomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/retriever"
	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/aria/internal/config"
	"github.com/ashwinyue/aria/internal/database"
	"github.com/ashwinyue/aria/internal/repository"
	"github.com/ashwinyue/aria/internal/service/agent"
	"github.com/ashwinyue/aria/internal/service/auth"
	"github.com/ashwinyue/aria/internal/service/checkin"
	"github.com/ashwinyue/aria/internal/service/history"
	"github.com/ashwinyue/aria/internal/service/lifecycle"
	"github.com/ashwinyue/aria/internal/service/material"
	"github.com/ashwinyue/aria/internal/service/session"
)

// Services 服务集合
type Services struct {
	// 业务服务
	Lifecycle *lifecycle.Manager
	Auth      *auth.Service
	CheckIn   *checkin.Service
	Material  *material.Service

	// 配置
	Config     *config.Config
	SessionMgr *session.Manager

	// Eino 组件（直接使用 eino 类型，无封装）
	AllTools  []einotool.BaseTool
	Embedder  embedding.Embedder
	ChatModel ecomodel.ToolCallingChatModel
	Retriever retriever.Retriever
}

// NewServices 创建所有服务
// 参考 eino-examples，使用简单的 newXxx() 函数直接初始化 eino 组件
func NewServices(repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client) (*Services, error) {
	ctx := context.Background()

	sessionMgr := session.NewManager(redisClient)
	retrier := database.NewRetrier(cfg.Database.MaxRetries)

	chatModel, err := newToolCallingChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	embedder := newEmbedder(ctx, cfg)
	es8Ret := newES8Retriever(ctx, cfg, embedder)

	allTools := newTools(ctx, es8Ret)
	log.Printf("Initialized %d tools", len(allTools))

	// 编排器：人设 + 检索上下文 + 工具
	var ragRetriever retriever.Retriever
	if es8Ret != nil {
		ragRetriever = es8Ret
	}
	orchestrator, err := agent.NewOrchestrator(agent.Config{
		Name:          "aria",
		Description:   "A compassionate mental health companion.",
		SystemPrompt:  lifecycle.SystemPrompt,
		TopK:          cfg.Session.RetrievalTopK,
		MaxIterations: cfg.Session.MaxIterations,
	}, chatModel, ragRetriever, allTools)
	if err != nil {
		return nil, err
	}

	assembler := history.NewAssembler(repo.Turn, sessionMgr, &cfg.Session)
	summarizer := history.NewSummarizer(chatModel)

	lifecycleMgr := lifecycle.NewManager(repo, orchestrator, assembler, summarizer, sessionMgr, retrier, &cfg.Session)

	// 资料入库（ES 不可用时该能力缺省）
	var materialSvc *material.Service
	if embedder != nil && cfg.Elastic.Host != "" {
		indexer, err := material.NewES8Indexer(ctx, cfg, embedder)
		if err != nil {
			log.Printf("Warning: failed to create material indexer: %v", err)
			materialSvc = material.NewService(cfg, embedder, nil)
		} else {
			materialSvc = material.NewService(cfg, embedder, indexer)
		}
	} else {
		materialSvc = material.NewService(cfg, embedder, nil)
	}

	checkInSvc := checkin.NewService(repo.CheckIn, lifecycleMgr, &cfg.CheckIn)

	return &Services{
		Lifecycle: lifecycleMgr,
		Auth:      auth.NewService(repo.User, &cfg.Auth),
		CheckIn:   checkInSvc,
		Material:  materialSvc,

		Config:     cfg,
		SessionMgr: sessionMgr,

		AllTools:  allTools,
		Embedder:  embedder,
		ChatModel: chatModel,
		Retriever: ragRetriever,
	}, nil
}
