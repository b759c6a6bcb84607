package models

import (
	"strings"
	"time"
)

// Sentiment 专家评估态度，固定五档
type Sentiment string

const (
	SentimentVeryPositive Sentiment = "very_positive"
	SentimentPositive     Sentiment = "positive"
	SentimentNeutral      Sentiment = "neutral"
	SentimentCautious     Sentiment = "cautious"
	SentimentNegative     Sentiment = "negative"
)

// Valid 判断是否为合法的态度值
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentVeryPositive, SentimentPositive, SentimentNeutral, SentimentCautious, SentimentNegative:
		return true
	}
	return false
}

// Score 态度映射到五档整数分值: very_positive=+2 ... negative=-2
func (s Sentiment) Score() int {
	switch s {
	case SentimentVeryPositive:
		return 2
	case SentimentPositive:
		return 1
	case SentimentCautious:
		return -1
	case SentimentNegative:
		return -2
	default:
		return 0
	}
}

// Display 展示用文本，下划线替换为空格: "very_positive" -> "very positive"
func (s Sentiment) Display() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// AgentResponse 单个专家在一轮中产出的结构化反馈（创建后不可变）
type AgentResponse struct {
	AgentID          string    `json:"agentId"`
	AgentName        string    `json:"agentName"`
	RoundNumber      int       `json:"roundNumber"`
	Sentiment        Sentiment `json:"sentiment"`
	Summary          string    `json:"summary"`
	DetailedFeedback string    `json:"detailedFeedback"` // 原始全文
	Opportunities    []string  `json:"opportunities"`
	Concerns         []string  `json:"concerns"`
	Questions        []string  `json:"questions"`
	Recommendations  []string  `json:"recommendations"`
	ConfidenceScore  float64   `json:"confidenceScore"` // [0,1]
	RespondingTo     []string  `json:"respondingTo,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}
