package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/run-bigpig/nexus/internal/llm"
	"github.com/run-bigpig/nexus/internal/logger"
	"github.com/run-bigpig/nexus/internal/models"
)

var log = logger.New("Agent")

// ErrGeneration 专家的文本生成调用失败
var ErrGeneration = errors.New("专家生成调用失败")

// Evaluator 评审能力接口
// 当前只有 ExpertAgent 一种实现，保留接口以支持将来的变体人设
type Evaluator interface {
	ID() string
	Name() string
	Profile() models.AgentProfile

	// Analyze 对任务做一次评估：构建 prompt、调用生成服务、解析结构化回复
	// peerResponses 为可见的同轮或上一轮响应，可为空
	Analyze(ctx context.Context, idea models.StartupIdea, roundNumber int, userContext string, peerResponses []models.AgentResponse) (models.AgentResponse, error)
}

// HistoryEntry 专家会话内的一条历史记录（轮次与响应的配对）
type HistoryEntry struct {
	Round    int
	Idea     models.StartupIdea
	Response models.AgentResponse
}

// ExpertAgent 绑定一个 Persona 与文本生成服务的专家
// 持有会话级对话历史：只追加，随会话销毁，不被其他组件读取
type ExpertAgent struct {
	persona     models.Persona
	provider    llm.Provider
	parser      ResponseParser
	temperature float32
	maxTokens   int

	mu      sync.Mutex
	history []HistoryEntry
}

var _ Evaluator = &ExpertAgent{}

// Option ExpertAgent 可选配置
type Option func(*ExpertAgent)

// WithParser 替换默认解析器
func WithParser(p ResponseParser) Option {
	return func(a *ExpertAgent) { a.parser = p }
}

// WithSampling 设置生成温度与 token 上限
func WithSampling(temperature float32, maxTokens int) Option {
	return func(a *ExpertAgent) {
		a.temperature = temperature
		a.maxTokens = maxTokens
	}
}

// NewExpertAgent 创建专家
func NewExpertAgent(persona models.Persona, provider llm.Provider, opts ...Option) *ExpertAgent {
	a := &ExpertAgent{
		persona:     persona,
		provider:    provider,
		parser:      SectionParser{},
		temperature: 0.7,
		maxTokens:   2000,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID 专家 ID
func (a *ExpertAgent) ID() string {
	return a.persona.ID
}

// Name 专家名称
func (a *ExpertAgent) Name() string {
	return a.persona.Name
}

// Profile 专家简介
func (a *ExpertAgent) Profile() models.AgentProfile {
	return a.persona.ToProfile()
}

// Analyze 执行一次评估
func (a *ExpertAgent) Analyze(ctx context.Context, idea models.StartupIdea, roundNumber int, userContext string, peerResponses []models.AgentResponse) (models.AgentResponse, error) {
	systemPrompt := a.systemPrompt()
	userPrompt := a.analysisPrompt(idea, roundNumber, userContext, peerResponses)

	raw, err := a.provider.Generate(ctx, systemPrompt, userPrompt, a.temperature, a.maxTokens)
	if err != nil {
		return models.AgentResponse{}, fmt.Errorf("%w: %s: %v", ErrGeneration, a.persona.ID, err)
	}

	// 解析失败不报错：返回带默认值的有效响应
	parsed := a.parser.Parse(raw)

	resp := models.AgentResponse{
		AgentID:          a.persona.ID,
		AgentName:        a.persona.Name,
		RoundNumber:      roundNumber,
		Sentiment:        parsed.Sentiment,
		Summary:          parsed.Summary,
		DetailedFeedback: raw,
		Opportunities:    parsed.Opportunities,
		Concerns:         parsed.Concerns,
		Questions:        parsed.Questions,
		Recommendations:  parsed.Recommendations,
		ConfidenceScore:  clamp01(parsed.ConfidenceScore),
		RespondingTo:     respondingTo(peerResponses),
		Timestamp:        time.Now().UTC(),
	}

	a.mu.Lock()
	a.history = append(a.history, HistoryEntry{Round: roundNumber, Idea: idea, Response: resp})
	a.mu.Unlock()

	log.Debug("agent %s round %d done, feedback len: %d", a.persona.ID, roundNumber, len(raw))
	return resp, nil
}

// History 返回会话内历史的快照
func (a *ExpertAgent) History() []HistoryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]HistoryEntry, len(a.history))
	copy(result, a.history)
	return result
}

// systemPrompt 构建人设 system prompt：身份、背景、专长、洞察
func (a *ExpertAgent) systemPrompt() string {
	p := a.persona
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are %s, %s based in %s.\n\n", p.Name, p.Title, p.Location))
	sb.WriteString("Your Background:\n")
	sb.WriteString(p.Bio + "\n\n")
	sb.WriteString("Your Expertise:\n")
	sb.WriteString(strings.Join(p.Expertise, ", ") + "\n\n")
	sb.WriteString(fmt.Sprintf("Experience: %s in %s\n\n", p.Experience, p.Industry))
	sb.WriteString("Your Key Insights:\n")
	for _, insight := range p.Insights {
		sb.WriteString("- " + insight + "\n")
	}
	sb.WriteString("\nRole: You are evaluating a startup idea as part of a multi-expert panel. ")
	sb.WriteString("Provide honest, professional feedback based on your expertise and experience. ")
	sb.WriteString("Be specific, actionable, and consider both opportunities and risks. ")
	sb.WriteString(fmt.Sprintf("Your perspective represents the %s sector from a %s market viewpoint.\n\n", p.Industry, p.Location))
	sb.WriteString("Communication Style: Professional yet conversational. Use specific examples when possible. ")
	sb.WriteString("Be constructive in criticism and highlight both strengths and areas for improvement.")
	return sb.String()
}

// analysisPrompt 构建任务 prompt：任务描述、轮次、可见的同伴发言与用户补充
func (a *ExpertAgent) analysisPrompt(idea models.StartupIdea, roundNumber int, userContext string, peerResponses []models.AgentResponse) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Startup Idea Analysis Request - Round %d\n\n", roundNumber))
	sb.WriteString(fmt.Sprintf("**Idea Title:** %s\n\n", idea.Title))
	sb.WriteString("**Description:**\n")
	sb.WriteString(idea.Description + "\n\n")
	sb.WriteString(fmt.Sprintf("**Target Market:** %s\n", idea.TargetMarket))
	sb.WriteString(fmt.Sprintf("**Industry:** %s\n", idea.Industry))
	if idea.BusinessModel != "" {
		sb.WriteString(fmt.Sprintf("**Business Model:** %s\n", idea.BusinessModel))
	}
	if idea.Stage != "" {
		sb.WriteString(fmt.Sprintf("**Stage:** %s\n", idea.Stage))
	}
	if len(idea.TechnologyStack) > 0 {
		sb.WriteString(fmt.Sprintf("\n**Technology Stack:** %s\n", strings.Join(idea.TechnologyStack, ", ")))
	}
	if idea.AdditionalContext != "" {
		sb.WriteString("\n**Additional Context:**\n" + idea.AdditionalContext + "\n")
	}
	if userContext != "" {
		sb.WriteString("\n**User's Additional Input:**\n" + userContext + "\n")
	}

	if len(peerResponses) > 0 {
		sb.WriteString("\n\n## Other Expert Opinions:\n")
		for _, r := range peerResponses {
			sb.WriteString(fmt.Sprintf("\n**%s** (%s):\n%s\n", r.AgentName, r.Sentiment, r.Summary))
		}
	}

	sb.WriteString("\n\nPlease provide your analysis in the following structured format:\n\n")
	sb.WriteString("1. **Summary** (2-3 sentences): Your overall assessment of this idea\n\n")
	sb.WriteString("2. **Opportunities** (3-5 points): Specific opportunities you see based on your expertise\n\n")
	sb.WriteString("3. **Concerns** (3-5 points): Specific concerns or challenges you identify\n\n")
	sb.WriteString("4. **Questions** (2-4 questions): Important questions that need to be answered\n\n")
	sb.WriteString("5. **Recommendations** (3-5 points): Specific, actionable recommendations\n\n")
	sb.WriteString("6. **Sentiment**: One of: very_positive, positive, neutral, cautious, negative\n\n")
	sb.WriteString("7. **Confidence Score** (0.0-1.0): How confident are you in your assessment\n\n")
	sb.WriteString("Remember to:\n")
	expertise := a.persona.Expertise
	if len(expertise) > 3 {
		expertise = expertise[:3]
	}
	sb.WriteString(fmt.Sprintf("- Draw on your specific expertise in %s\n", strings.Join(expertise, ", ")))
	sb.WriteString(fmt.Sprintf("- Consider the %s market perspective\n", a.persona.Location))
	sb.WriteString("- Reference relevant trends or examples from your experience\n")
	sb.WriteString("- Be specific and actionable in your feedback\n")
	if roundNumber > 1 {
		sb.WriteString("- Build upon or respond to insights from other experts if relevant\n")
	}
	return sb.String()
}

// respondingTo 记录本次响应针对的同伴专家 ID
func respondingTo(peers []models.AgentResponse) []string {
	if len(peers) == 0 {
		return nil
	}
	ids := make([]string, 0, len(peers))
	for _, r := range peers {
		ids = append(ids, r.AgentID)
	}
	return ids
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
