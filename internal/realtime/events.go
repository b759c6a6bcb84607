package realtime

import "github.com/run-bigpig/nexus/internal/models"

// 推送事件类型
// round_complete 总是携带本轮综述，失败的轮次以 error 事件收尾
const (
	EventConnected     = "connected"
	EventPing          = "ping"
	EventPong          = "pong"
	EventRoundStarted  = "round_started"
	EventAgentStart    = "agent_start"
	EventAgentChunk    = "agent_chunk"
	EventAgentComplete = "agent_complete"
	EventRoundComplete = "round_complete"
	EventError         = "error"
)

// Event 一条面向前端的推送事件，字段按类型选填
type Event struct {
	Type      string                    `json:"type"`
	SessionID string                    `json:"sessionId,omitempty"`
	AgentID   string                    `json:"agentId,omitempty"`
	AgentName string                    `json:"agentName,omitempty"`
	Round     int                       `json:"round,omitempty"`
	Content   string                    `json:"content,omitempty"`
	Response  *models.AgentResponse     `json:"response,omitempty"`
	Synthesis *models.FeedbackSynthesis `json:"synthesis,omitempty"`
	Message   string                    `json:"message,omitempty"`
}

// Publisher 事件发布接口，由具体传输层实现
type Publisher interface {
	Publish(event Event)
}

// PublisherFunc 函数适配器
type PublisherFunc func(event Event)

// Publish 实现 Publisher
func (f PublisherFunc) Publish(event Event) { f(event) }
