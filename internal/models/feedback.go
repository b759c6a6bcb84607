package models

import "time"

// RoundStatus 反馈轮次状态
type RoundStatus string

const (
	RoundPending    RoundStatus = "pending"
	RoundInProgress RoundStatus = "in_progress"
	RoundCompleted  RoundStatus = "completed"
	RoundFailed     RoundStatus = "failed"
)

// DivergentOpinion 分歧观点：一个乐观方与一个谨慎方的对照
type DivergentOpinion struct {
	Topic      string `json:"topic"`
	ViewpointA string `json:"viewpointA"`
	ViewpointB string `json:"viewpointB"`
}

// FeedbackSynthesis 一轮反馈的聚合结果
type FeedbackSynthesis struct {
	RoundNumber        int                `json:"roundNumber"`
	TotalAgents        int                `json:"totalAgents"`
	ConsensusInsights  []string           `json:"consensusInsights"`
	DivergentOpinions  []DivergentOpinion `json:"divergentOpinions"`
	TopOpportunities   []string           `json:"topOpportunities"`
	TopConcerns        []string           `json:"topConcerns"`
	PriorityQuestions  []string           `json:"priorityQuestions"`
	NextStepsSuggested []string           `json:"nextStepsSuggested"`
	OverallSentiment   Sentiment          `json:"overallSentiment"`
	ConfidenceLevel    string             `json:"confidenceLevel"` // low/medium/high
}

// FeedbackRound 一轮完整的专家反馈
// RoundNumber 从 1 开始，会话内严格递增无间断；
// 完成的轮次一定带有非空 Synthesis，失败的轮次保留已收集的部分响应但 Synthesis 为空
type FeedbackRound struct {
	RoundID          string             `json:"roundId"`
	SessionID        string             `json:"sessionId"`
	RoundNumber      int                `json:"roundNumber"`
	Status           RoundStatus        `json:"status"`
	UserInput        string             `json:"userInput,omitempty"`
	AgentResponses   []AgentResponse    `json:"agentResponses"`
	Synthesis        *FeedbackSynthesis `json:"synthesis,omitempty"`
	ConsensusPoints  []string           `json:"consensusPoints"`
	DivergentPoints  []DivergentOpinion `json:"divergentPoints"`
	OverallSentiment Sentiment          `json:"overallSentiment"`
	StartedAt        time.Time          `json:"startedAt"`
	CompletedAt      time.Time          `json:"completedAt,omitzero"`
}
