package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/run-bigpig/nexus/internal/agent"
	"github.com/run-bigpig/nexus/internal/models"
	"github.com/run-bigpig/nexus/internal/realtime"
)

// LoopManager 管理一个会话内的多轮反馈：轮次编号、历史累积与会话总结。
// 同一会话内的轮次严格串行，内部互斥锁保证并发调用也不会交错
type LoopManager struct {
	sessionID   string
	agents      []agent.Evaluator
	coordinator *Coordinator
	synthesizer Synthesizer
	publisher   realtime.Publisher

	mu     sync.Mutex
	rounds []models.FeedbackRound
}

// LoopOption LoopManager 可选配置
type LoopOption func(*LoopManager)

// WithSessionID 指定会话 ID，默认自动生成
func WithSessionID(id string) LoopOption {
	return func(m *LoopManager) { m.sessionID = id }
}

// WithSynthesizer 替换默认综合器
func WithSynthesizer(s Synthesizer) LoopOption {
	return func(m *LoopManager) { m.synthesizer = s }
}

// WithPublisher 设置实时事件推送
func WithPublisher(p realtime.Publisher) LoopOption {
	return func(m *LoopManager) { m.publisher = p }
}

// NewLoopManager 创建反馈循环管理器
func NewLoopManager(agents []agent.Evaluator, timeout time.Duration, opts ...LoopOption) *LoopManager {
	m := &LoopManager{
		agents:      agents,
		synthesizer: NewSynthesizer(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sessionID == "" {
		m.sessionID = uuid.NewString()
	}
	m.coordinator = NewCoordinator(agents, timeout,
		WithResponseCallback(m.publishResponse),
		WithProgressCallback(m.publishProgress),
	)
	return m
}

// SessionID 会话标识
func (m *LoopManager) SessionID() string {
	return m.sessionID
}

// AgentProfiles 参与专家的元信息
func (m *LoopManager) AgentProfiles() []models.AgentProfile {
	return m.coordinator.Profiles()
}

// ExecuteRound 执行一轮反馈
// 轮次编号从 1 起连续递增；并行模式下第 2 轮起向全部专家提供上一轮的
// 完整响应，串行模式只使用本轮内的渐进上下文。
// 执行或聚合中途失败时本轮标记为 FAILED，已产出的响应保留、综述留空，
// 失败的轮次同样计入历史并占用编号
func (m *LoopManager) ExecuteRound(ctx context.Context, idea models.StartupIdea, userInput string, mode models.ExecutionMode) (models.FeedbackRound, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roundNumber := len(m.rounds) + 1
	round := models.FeedbackRound{
		RoundID:          uuid.NewString(),
		SessionID:        m.sessionID,
		RoundNumber:      roundNumber,
		Status:           models.RoundInProgress,
		UserInput:        userInput,
		AgentResponses:   []models.AgentResponse{},
		ConsensusPoints:  []string{},
		DivergentPoints:  []models.DivergentOpinion{},
		OverallSentiment: models.SentimentNeutral,
		StartedAt:        time.Now().UTC(),
	}

	log.Info("round %d started, session %s, mode %s", roundNumber, m.sessionID, mode)
	m.publish(realtime.Event{
		Type:      realtime.EventRoundStarted,
		SessionID: m.sessionID,
		Round:     roundNumber,
	})

	var previousResponses []models.AgentResponse
	if roundNumber > 1 {
		previousResponses = m.rounds[len(m.rounds)-1].AgentResponses
	}

	var responses []models.AgentResponse
	var err error
	if mode == models.ModeSequential {
		responses, err = m.coordinator.RunSequentialDialogue(ctx, idea, roundNumber, userInput)
	} else {
		responses, err = m.coordinator.RunParallelAnalysis(ctx, idea, roundNumber, userInput, previousResponses)
	}
	round.AgentResponses = responses

	if err == nil {
		var synthesis *models.FeedbackSynthesis
		synthesis, err = m.synthesizer.Synthesize(responses, roundNumber)
		if err == nil {
			round.Synthesis = synthesis
			round.ConsensusPoints = synthesis.ConsensusInsights
			round.DivergentPoints = synthesis.DivergentOpinions
			round.OverallSentiment = synthesis.OverallSentiment
			round.Status = models.RoundCompleted
		}
	}

	if err != nil {
		round.Status = models.RoundFailed
		log.Error("round %d failed: %v", roundNumber, err)
	}
	round.CompletedAt = time.Now().UTC()

	m.rounds = append(m.rounds, round)

	// round_complete 必须携带综述，失败的轮次只报 error 事件
	if round.Status == models.RoundFailed {
		m.publish(realtime.Event{
			Type:      realtime.EventError,
			SessionID: m.sessionID,
			Round:     roundNumber,
			Message:   err.Error(),
		})
	} else {
		m.publish(realtime.Event{
			Type:      realtime.EventRoundComplete,
			SessionID: m.sessionID,
			Round:     roundNumber,
			Synthesis: round.Synthesis,
		})
	}
	return round, nil
}

// RunRounds 连续执行多轮，userInputs 不足时后续轮次不带附加输入
func (m *LoopManager) RunRounds(ctx context.Context, idea models.StartupIdea, numRounds int, userInputs []string, mode models.ExecutionMode) ([]models.FeedbackRound, error) {
	for i := 0; i < numRounds; i++ {
		if err := ctx.Err(); err != nil {
			return m.Rounds(), err
		}
		var userInput string
		if i < len(userInputs) {
			userInput = userInputs[i]
		}
		if _, err := m.ExecuteRound(ctx, idea, userInput, mode); err != nil {
			return m.Rounds(), err
		}
	}
	return m.Rounds(), nil
}

// GetRound 按编号查询轮次
func (m *LoopManager) GetRound(roundNumber int) (models.FeedbackRound, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if roundNumber < 1 || roundNumber > len(m.rounds) {
		return models.FeedbackRound{}, false
	}
	return m.rounds[roundNumber-1], true
}

// Rounds 全部历史轮次的快照
func (m *LoopManager) Rounds() []models.FeedbackRound {
	m.mu.Lock()
	defer m.mu.Unlock()
	rounds := make([]models.FeedbackRound, len(m.rounds))
	copy(rounds, m.rounds)
	return rounds
}

// SessionSummary 跨轮次的会话总结
// 关键洞察为全部轮次共识点的去重结果（保留首次出现顺序，最多 10 条），
// 整体态度取最后一轮；没有任何轮次时返回空总结
func (m *LoopManager) SessionSummary() models.SessionSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	summary := models.SessionSummary{
		SessionID:      m.sessionID,
		TotalRounds:    len(m.rounds),
		TotalAgents:    len(m.agents),
		KeyInsights:    []string{},
		FinalSentiment: models.SentimentNeutral,
		Rounds:         []models.RoundDigest{},
	}
	if len(m.rounds) == 0 {
		return summary
	}

	seen := make(map[string]struct{})
	for _, r := range m.rounds {
		summary.TotalResponses += len(r.AgentResponses)
		for _, point := range r.ConsensusPoints {
			if _, ok := seen[point]; ok {
				continue
			}
			seen[point] = struct{}{}
			if len(summary.KeyInsights) < 10 {
				summary.KeyInsights = append(summary.KeyInsights, point)
			}
		}
		summary.Rounds = append(summary.Rounds, models.RoundDigest{
			RoundNumber: r.RoundNumber,
			AgentCount:  len(r.AgentResponses),
			Sentiment:   r.OverallSentiment,
			Status:      r.Status,
		})
	}
	summary.FinalSentiment = m.rounds[len(m.rounds)-1].OverallSentiment
	return summary
}

func (m *LoopManager) publish(event realtime.Event) {
	if m.publisher != nil {
		m.publisher.Publish(event)
	}
}

func (m *LoopManager) publishResponse(resp models.AgentResponse) {
	m.publish(realtime.Event{
		Type:      realtime.EventAgentComplete,
		SessionID: m.sessionID,
		AgentID:   resp.AgentID,
		AgentName: resp.AgentName,
		Round:     resp.RoundNumber,
		Response:  &resp,
	})
}

func (m *LoopManager) publishProgress(agentID, agentName, phase string) {
	if phase != PhaseStart {
		return
	}
	m.publish(realtime.Event{
		Type:      realtime.EventAgentStart,
		SessionID: m.sessionID,
		AgentID:   agentID,
		AgentName: agentName,
	})
}
