package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/run-bigpig/nexus/internal/agent"
	"github.com/run-bigpig/nexus/internal/config"
	"github.com/run-bigpig/nexus/internal/feedback"
	"github.com/run-bigpig/nexus/internal/llm"
	"github.com/run-bigpig/nexus/internal/logger"
	"github.com/run-bigpig/nexus/internal/models"
	"github.com/run-bigpig/nexus/internal/persona"
	"github.com/run-bigpig/nexus/internal/realtime"
)

var log = logger.New("Session")

// 错误定义
var (
	ErrNotFound       = errors.New("会话不存在")
	ErrRoundNotFound  = errors.New("轮次不存在")
	ErrNoAgentsChosen = errors.New("未指定专家且未开启自动选择")
	ErrSelection      = errors.New("没有可选的评审专家")
	ErrInvalidMode    = errors.New("无效的执行模式")
	ErrRoundLimit     = errors.New("已达到最大反馈轮数")
)

// CreateRequest 创建会话的入参
// SelectedAgents、Criteria、AutoSelect 三选一；都为空时报错
type CreateRequest struct {
	Idea           models.StartupIdea        `json:"idea"`
	SelectedAgents []string                  `json:"selectedAgents,omitempty"`
	Criteria       *models.SelectionCriteria `json:"criteria,omitempty"`
	AutoSelect     bool                      `json:"autoSelectAgents,omitempty"`
	MaxAgents      int                       `json:"maxAgents,omitempty"`
}

// Service 会话服务：创建会话、驱动反馈轮次、查询与删除
type Service struct {
	settings  config.Settings
	catalog   persona.Catalog
	provider  llm.Provider
	store     Store
	publisher realtime.Publisher
}

// ServiceOption Service 可选配置
type ServiceOption func(*Service)

// WithPublisher 为新建会话接入实时事件推送
func WithPublisher(p realtime.Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithStore 替换默认的内存会话仓库
func WithStore(store Store) ServiceOption {
	return func(s *Service) { s.store = store }
}

// NewService 创建会话服务
func NewService(settings config.Settings, catalog persona.Catalog, provider llm.Provider, opts ...ServiceOption) *Service {
	s := &Service{
		settings: settings,
		catalog:  catalog,
		provider: provider,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = NewMemoryStore()
	}
	return s
}

// CreateSession 创建研究会话
// 专家列表按以下优先级确定：显式 ID 列表（缺失的静默跳过）>
// 显式筛选条件 > 按想法自动选择；最终为空时返回 ErrSelection
func (s *Service) CreateSession(req CreateRequest) (models.SessionInfo, error) {
	personas, err := s.resolvePersonas(req)
	if err != nil {
		return models.SessionInfo{}, err
	}
	if len(personas) == 0 {
		return models.SessionInfo{}, ErrSelection
	}

	container := agent.NewContainer()
	agentIDs := make([]string, 0, len(personas))
	for _, p := range personas {
		container.Register(agent.NewExpertAgent(p, s.provider,
			agent.WithSampling(s.settings.Temperature, s.settings.MaxTokens)))
		agentIDs = append(agentIDs, p.ID)
	}
	// 按选择顺序从注册表取出，构成本会话的固定专家阵容
	agents := container.GetByIDs(agentIDs)

	sessionID := uuid.NewString()
	loopOpts := []feedback.LoopOption{feedback.WithSessionID(sessionID)}
	if s.publisher != nil {
		loopOpts = append(loopOpts, feedback.WithPublisher(s.publisher))
	}
	manager := feedback.NewLoopManager(agents, s.settings.AgentTimeout.Std(), loopOpts...)

	now := time.Now().UTC()
	sess := &Session{
		info: models.SessionInfo{
			SessionID:      sessionID,
			Idea:           req.Idea,
			Status:         models.SessionCreated,
			SelectedAgents: agentIDs,
			CurrentRound:   0,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		agents:  container,
		manager: manager,
	}
	s.store.Put(sess)

	log.Info("session %s created with %d agents", sessionID, container.Len())
	return sess.Info(), nil
}

// GetSession 查询会话视图
func (s *Service) GetSession(sessionID string) (models.SessionInfo, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return models.SessionInfo{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return sess.Info(), nil
}

// DeleteSession 删除会话及其全部历史
func (s *Service) DeleteSession(sessionID string) error {
	if !s.store.Delete(sessionID) {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	log.Info("session %s deleted", sessionID)
	return nil
}

// AgentProfiles 会话参与专家的元信息
func (s *Service) AgentProfiles(sessionID string) ([]models.AgentProfile, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return sess.manager.AgentProfiles(), nil
}

// StartRound 为会话启动一轮反馈，空模式默认并行
func (s *Service) StartRound(ctx context.Context, sessionID, userInput string, mode models.ExecutionMode) (models.FeedbackRound, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return models.FeedbackRound{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if mode == "" {
		mode = models.ModeParallel
	}
	if !mode.Valid() {
		return models.FeedbackRound{}, fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}
	if limit := s.settings.MaxFeedbackRound; limit > 0 && len(sess.manager.Rounds()) >= limit {
		return models.FeedbackRound{}, fmt.Errorf("%w: %d", ErrRoundLimit, limit)
	}

	sess.mu.Lock()
	sess.info.Status = models.SessionInProgress
	sess.info.UpdatedAt = time.Now().UTC()
	idea := sess.info.Idea
	sess.mu.Unlock()

	round, err := sess.manager.ExecuteRound(ctx, idea, userInput, mode)
	if err != nil {
		return models.FeedbackRound{}, err
	}

	sess.mu.Lock()
	sess.info.CurrentRound = round.RoundNumber
	sess.info.UpdatedAt = time.Now().UTC()
	sess.mu.Unlock()

	return round, nil
}

// GetRound 查询指定轮次
func (s *Service) GetRound(sessionID string, roundNumber int) (models.FeedbackRound, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return models.FeedbackRound{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	round, ok := sess.manager.GetRound(roundNumber)
	if !ok {
		return models.FeedbackRound{}, fmt.Errorf("%w: 第 %d 轮", ErrRoundNotFound, roundNumber)
	}
	return round, nil
}

// GetSummary 会话级总结
func (s *Service) GetSummary(sessionID string) (models.SessionSummary, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return models.SessionSummary{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return sess.manager.SessionSummary(), nil
}

func (s *Service) resolvePersonas(req CreateRequest) ([]models.Persona, error) {
	maxAgents := req.MaxAgents
	if maxAgents <= 0 {
		maxAgents = s.settings.MaxAgents
	}

	switch {
	case len(req.SelectedAgents) > 0:
		var personas []models.Persona
		for _, id := range req.SelectedAgents {
			p, err := s.catalog.Get(id)
			if err != nil {
				log.Warn("skipping unknown agent id %s", id)
				continue
			}
			personas = append(personas, p)
		}
		if len(personas) > maxAgents {
			personas = personas[:maxAgents]
		}
		return personas, nil
	case req.Criteria != nil:
		criteria := *req.Criteria
		if criteria.MaxAgents <= 0 {
			criteria.MaxAgents = maxAgents
		}
		return agent.SelectByCriteria(s.catalog.All(), criteria), nil
	case req.AutoSelect:
		return agent.AutoSelect(s.catalog.All(), req.Idea, maxAgents), nil
	default:
		return nil, ErrNoAgentsChosen
	}
}
