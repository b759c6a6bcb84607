package models

import "time"

// StartupIdea 待评估的创业想法
type StartupIdea struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	TargetMarket      string   `json:"targetMarket"`
	Industry          string   `json:"industry"`
	BusinessModel     string   `json:"businessModel,omitempty"`
	TechnologyStack   []string `json:"technologyStack,omitempty"`
	Stage             string   `json:"stage,omitempty"`
	AdditionalContext string   `json:"additionalContext,omitempty"`
}

// ExecutionMode 轮次执行模式
type ExecutionMode string

const (
	ModeParallel   ExecutionMode = "parallel"   // 并行独立分析，仅可见上一轮响应
	ModeSequential ExecutionMode = "sequential" // 串行对话，后发言者可见本轮已有发言
)

// Valid 判断是否为合法的执行模式
func (m ExecutionMode) Valid() bool {
	return m == ModeParallel || m == ModeSequential
}

// SessionStatus 研究会话状态
type SessionStatus string

const (
	SessionCreated    SessionStatus = "created"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionFailed     SessionStatus = "failed"
)

// SessionInfo 会话描述信息（对外暴露的会话视图）
type SessionInfo struct {
	SessionID      string        `json:"sessionId"`
	Idea           StartupIdea   `json:"idea"`
	Status         SessionStatus `json:"status"`
	SelectedAgents []string      `json:"selectedAgents"`
	CurrentRound   int           `json:"currentRound"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// SelectionCriteria 专家筛选条件
type SelectionCriteria struct {
	Industry       string   `json:"industry,omitempty"`
	Location       string   `json:"location,omitempty"`
	ExpertiseAreas []string `json:"expertiseAreas,omitempty"`
	MaxAgents      int      `json:"maxAgents"`
}

// RoundDigest 会话摘要中的单轮概览
type RoundDigest struct {
	RoundNumber int         `json:"roundNumber"`
	AgentCount  int         `json:"agentCount"`
	Sentiment   Sentiment   `json:"sentiment"`
	Status      RoundStatus `json:"status"`
}

// SessionSummary 跨轮次的会话级汇总
type SessionSummary struct {
	SessionID      string        `json:"sessionId"`
	TotalRounds    int           `json:"totalRounds"`
	TotalAgents    int           `json:"totalAgents"`
	TotalResponses int           `json:"totalResponses"`
	KeyInsights    []string      `json:"keyInsights"`    // 各轮共识点去重合并，上限 10 条
	FinalSentiment Sentiment     `json:"finalSentiment"` // 最后一轮的整体态度
	Rounds         []RoundDigest `json:"rounds"`
}
