package feedback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/run-bigpig/nexus/internal/agent"
	"github.com/run-bigpig/nexus/internal/logger"
	"github.com/run-bigpig/nexus/internal/models"
)

var log = logger.New("Feedback")

// 超时配置常量
const (
	DefaultAgentTimeout = 30 * time.Second // 单个专家分析的最大时长
)

// ErrAgentTimeout 专家在限定时长内未产出结果
var ErrAgentTimeout = errors.New("专家分析超时")

// ResponseCallback 每产生一条专家响应时调用，用于实时推送
type ResponseCallback func(resp models.AgentResponse)

// ProgressCallback 专家开始/结束事件回调
type ProgressCallback func(agentID, agentName, phase string)

// 进度阶段常量
const (
	PhaseStart = "start"
	PhaseDone  = "done"
	PhaseError = "error"
)

// Coordinator 编排一组固定专家对单个任务的执行
// 两种模式共用同一套超时与失败隔离策略：单个专家失败只丢弃该专家的结果，
// 不向调用方抛错；零成功也是合法的空结果，含义由上层决定
type Coordinator struct {
	agents   []agent.Evaluator
	timeout  time.Duration
	respCb   ResponseCallback
	progress ProgressCallback
}

// CoordinatorOption Coordinator 可选配置
type CoordinatorOption func(*Coordinator)

// WithResponseCallback 设置响应回调
func WithResponseCallback(cb ResponseCallback) CoordinatorOption {
	return func(c *Coordinator) { c.respCb = cb }
}

// WithProgressCallback 设置进度回调
func WithProgressCallback(cb ProgressCallback) CoordinatorOption {
	return func(c *Coordinator) { c.progress = cb }
}

// NewCoordinator 创建协调器
func NewCoordinator(agents []agent.Evaluator, timeout time.Duration, opts ...CoordinatorOption) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultAgentTimeout
	}
	c := &Coordinator{agents: agents, timeout: timeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Profiles 全部专家的简介
func (c *Coordinator) Profiles() []models.AgentProfile {
	profiles := make([]models.AgentProfile, 0, len(c.agents))
	for _, a := range c.agents {
		profiles = append(profiles, a.Profile())
	}
	return profiles
}

// RunParallelAnalysis 并行模式：每个专家一个 goroutine，全部看到同一份
// 只读上下文（上一轮的完整响应列表），互不可见本轮的产出。
// 结果保持专家的原始顺序，只保留成功者
func (c *Coordinator) RunParallelAnalysis(ctx context.Context, idea models.StartupIdea, roundNumber int, userContext string, previousResponses []models.AgentResponse) ([]models.AgentResponse, error) {
	log.Debug("running %d agents in parallel, round %d", len(c.agents), roundNumber)

	results := make([]*models.AgentResponse, len(c.agents))
	var wg sync.WaitGroup

	for i, ev := range c.agents {
		wg.Add(1)
		go func(idx int, ev agent.Evaluator) {
			defer wg.Done()

			c.emitProgress(ev, PhaseStart)
			resp, err := c.runWithTimeout(ctx, ev, idea, roundNumber, userContext, previousResponses)
			if err != nil {
				c.emitProgress(ev, PhaseError)
				log.Error("agent %s failed: %v", ev.ID(), err)
				return
			}
			c.emitProgress(ev, PhaseDone)
			results[idx] = &resp
			c.emitResponse(resp)
		}(i, ev)
	}

	wg.Wait()

	responses := make([]models.AgentResponse, 0, len(c.agents))
	for _, r := range results {
		if r != nil {
			responses = append(responses, *r)
		}
	}
	log.Info("parallel round %d done, %d/%d responses", roundNumber, len(responses), len(c.agents))

	if err := ctx.Err(); err != nil {
		return responses, err
	}
	return responses, nil
}

// RunSequentialDialogue 串行模式：专家按列表顺序依次发言，
// 第 k 位专家可见本轮前 k-1 位已产出的全部响应（渐进式讨论上下文）。
// 单个专家失败后剩余专家继续执行
func (c *Coordinator) RunSequentialDialogue(ctx context.Context, idea models.StartupIdea, roundNumber int, userContext string) ([]models.AgentResponse, error) {
	log.Debug("running %d agents sequentially, round %d", len(c.agents), roundNumber)

	var responses []models.AgentResponse
	for i, ev := range c.agents {
		// 上一位专家耗尽了剩余时间时及时止损
		if err := ctx.Err(); err != nil {
			log.Warn("sequential round cancelled, got %d responses", len(responses))
			return responses, err
		}

		log.Debug("agent %d/%d: %s speaking", i+1, len(c.agents), ev.Name())

		c.emitProgress(ev, PhaseStart)
		peers := make([]models.AgentResponse, len(responses))
		copy(peers, responses)

		resp, err := c.runWithTimeout(ctx, ev, idea, roundNumber, userContext, peers)
		if err != nil {
			c.emitProgress(ev, PhaseError)
			log.Error("agent %s failed: %v", ev.ID(), err)
			continue
		}
		c.emitProgress(ev, PhaseDone)
		responses = append(responses, resp)
		c.emitResponse(resp)
	}

	log.Info("sequential round %d done, %d/%d responses", roundNumber, len(responses), len(c.agents))
	return responses, nil
}

// runWithTimeout 带超时执行单个专家
// 超时后任务被放弃，结果静默丢弃；不重试
func (c *Coordinator) runWithTimeout(ctx context.Context, ev agent.Evaluator, idea models.StartupIdea, roundNumber int, userContext string, peers []models.AgentResponse) (models.AgentResponse, error) {
	agentCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		resp models.AgentResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := ev.Analyze(agentCtx, idea, roundNumber, userContext, peers)
		done <- result{resp: resp, err: err}
	}()

	select {
	case <-agentCtx.Done():
		if errors.Is(agentCtx.Err(), context.DeadlineExceeded) {
			return models.AgentResponse{}, fmt.Errorf("%w: %s after %v", ErrAgentTimeout, ev.Name(), c.timeout)
		}
		return models.AgentResponse{}, agentCtx.Err()
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				return models.AgentResponse{}, fmt.Errorf("%w: %s after %v", ErrAgentTimeout, ev.Name(), c.timeout)
			}
			return models.AgentResponse{}, r.err
		}
		return r.resp, nil
	}
}

func (c *Coordinator) emitResponse(resp models.AgentResponse) {
	if c.respCb != nil {
		c.respCb(resp)
	}
}

func (c *Coordinator) emitProgress(ev agent.Evaluator, phase string) {
	if c.progress != nil {
		c.progress(ev.ID(), ev.Name(), phase)
	}
}
