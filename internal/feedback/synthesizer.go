package feedback

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/run-bigpig/nexus/internal/models"
)

// 共识判定的关键词与阈值
var opportunityTerms = []string{"market", "growth", "demand", "innovation", "potential"}

const (
	sentimentConsensusRatio = 0.6 // 态度共识所需的最低占比
	opportunityTermRatio    = 0.5 // 机会关键词出现次数相对专家数的最低占比
	maxConsensusInsights    = 5
	maxTopOpportunities     = 5
	maxTopConcerns          = 5
	maxPriorityQuestions    = 5
	maxNextSteps            = 6
	divergentSummaryLimit   = 100
)

// Synthesizer 把一轮中全部专家响应聚合为单个综述
type Synthesizer interface {
	Synthesize(responses []models.AgentResponse, roundNumber int) (*models.FeedbackSynthesis, error)
}

// ResponseSynthesizer 默认实现，纯函数式：不调用模型、不修改输入，
// 同样的输入永远产出同样的综述
type ResponseSynthesizer struct{}

// NewSynthesizer 创建默认综合器
func NewSynthesizer() *ResponseSynthesizer {
	return &ResponseSynthesizer{}
}

// Synthesize 聚合一轮专家响应
// 空输入返回全空列表的中性综述，不报错
func (s *ResponseSynthesizer) Synthesize(responses []models.AgentResponse, roundNumber int) (*models.FeedbackSynthesis, error) {
	if len(responses) == 0 {
		return &models.FeedbackSynthesis{
			RoundNumber:        roundNumber,
			TotalAgents:        0,
			ConsensusInsights:  []string{},
			DivergentOpinions:  []models.DivergentOpinion{},
			TopOpportunities:   []string{},
			TopConcerns:        []string{},
			PriorityQuestions:  []string{},
			NextStepsSuggested: []string{},
			OverallSentiment:   models.SentimentNeutral,
			ConfidenceLevel:    "low",
		}, nil
	}

	var sum float64
	for _, r := range responses {
		sum += r.ConfidenceScore
	}
	avgConfidence := sum / float64(len(responses))

	return &models.FeedbackSynthesis{
		RoundNumber:        roundNumber,
		TotalAgents:        len(responses),
		ConsensusInsights:  findConsensus(responses),
		DivergentOpinions:  findDivergentOpinions(responses),
		TopOpportunities:   aggregateItems(opportunityLists(responses), maxTopOpportunities),
		TopConcerns:        aggregateItems(concernLists(responses), maxTopConcerns),
		PriorityQuestions:  aggregateItems(questionLists(responses), maxPriorityQuestions),
		NextStepsSuggested: aggregateItems(recommendationLists(responses), maxNextSteps),
		OverallSentiment:   overallSentiment(responses),
		ConfidenceLevel:    confidenceLevel(avgConfidence),
	}, nil
}

// findConsensus 提取专家间的共识：占比达标的主导态度 + 高频机会关键词
func findConsensus(responses []models.AgentResponse) []string {
	consensus := []string{}

	counts := make(map[models.Sentiment]int)
	firstSeen := make(map[models.Sentiment]int)
	for i, r := range responses {
		if _, ok := counts[r.Sentiment]; !ok {
			firstSeen[r.Sentiment] = i
		}
		counts[r.Sentiment]++
	}

	// 平局时取先出现的态度
	var top models.Sentiment
	topCount := -1
	for sentiment, n := range counts {
		if n > topCount || (n == topCount && firstSeen[sentiment] < firstSeen[top]) {
			top = sentiment
			topCount = n
		}
	}

	if float64(topCount) >= float64(len(responses))*sentimentConsensusRatio {
		consensus = append(consensus, fmt.Sprintf(
			"%d out of %d experts are %s about this idea",
			topCount, len(responses), top.Display(),
		))
	}

	var b strings.Builder
	for i, r := range responses {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strings.Join(r.Opportunities, " "))
	}
	allOpportunities := cases.Fold().String(b.String())

	for _, term := range opportunityTerms {
		count := strings.Count(allOpportunities, term)
		if float64(count) >= float64(len(responses))*opportunityTermRatio {
			consensus = append(consensus, fmt.Sprintf(
				"Multiple experts highlight %s-related opportunities", term,
			))
		}
	}

	if len(consensus) > maxConsensusInsights {
		consensus = consensus[:maxConsensusInsights]
	}
	return consensus
}

// findDivergentOpinions 仅在态度显著分化（三种以上不同态度）且
// 乐观与谨慎阵营同时非空时产出一条分歧记录
func findDivergentOpinions(responses []models.AgentResponse) []models.DivergentOpinion {
	divergent := []models.DivergentOpinion{}

	distinct := make(map[models.Sentiment]struct{})
	for _, r := range responses {
		distinct[r.Sentiment] = struct{}{}
	}
	if len(distinct) < 3 {
		return divergent
	}

	var positive, negative *models.AgentResponse
	for i := range responses {
		r := &responses[i]
		switch r.Sentiment {
		case models.SentimentVeryPositive, models.SentimentPositive:
			if positive == nil {
				positive = r
			}
		case models.SentimentNegative, models.SentimentCautious:
			if negative == nil {
				negative = r
			}
		}
	}

	if positive != nil && negative != nil {
		divergent = append(divergent, models.DivergentOpinion{
			Topic:      "Overall Assessment",
			ViewpointA: fmt.Sprintf("%s is optimistic: %s...", positive.AgentName, truncate(positive.Summary, divergentSummaryLimit)),
			ViewpointB: fmt.Sprintf("%s is cautious: %s...", negative.AgentName, truncate(negative.Summary, divergentSummaryLimit)),
		})
	}
	return divergent
}

// aggregateItems 按精确字符串匹配统计频次并降序排名，
// 同频保持首次出现的先后顺序
func aggregateItems(itemLists [][]string, topN int) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, items := range itemLists {
		for _, item := range items {
			if _, ok := counts[item]; !ok {
				firstSeen[item] = order
			}
			counts[item]++
			order++
		}
	}

	ranked := make([]string, 0, len(counts))
	for item := range counts {
		ranked = append(ranked, item)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return firstSeen[ranked[i]] < firstSeen[ranked[j]]
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// overallSentiment 态度按 +2..-2 计分取均值后映射回整体态度
func overallSentiment(responses []models.AgentResponse) models.Sentiment {
	var sum int
	for _, r := range responses {
		sum += r.Sentiment.Score()
	}
	avg := float64(sum) / float64(len(responses))

	switch {
	case avg >= 1.5:
		return models.SentimentVeryPositive
	case avg >= 0.5:
		return models.SentimentPositive
	case avg > -0.5:
		return models.SentimentNeutral
	case avg > -1.5:
		return models.SentimentCautious
	default:
		return models.SentimentNegative
	}
}

// confidenceLevel 平均置信度分桶
func confidenceLevel(avg float64) string {
	switch {
	case avg >= 0.8:
		return "high"
	case avg >= 0.6:
		return "medium"
	default:
		return "low"
	}
}

// truncate 按字符截断，避免在多字节字符中间切断
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func opportunityLists(responses []models.AgentResponse) [][]string {
	lists := make([][]string, 0, len(responses))
	for _, r := range responses {
		lists = append(lists, r.Opportunities)
	}
	return lists
}

func concernLists(responses []models.AgentResponse) [][]string {
	lists := make([][]string, 0, len(responses))
	for _, r := range responses {
		lists = append(lists, r.Concerns)
	}
	return lists
}

func questionLists(responses []models.AgentResponse) [][]string {
	lists := make([][]string, 0, len(responses))
	for _, r := range responses {
		lists = append(lists, r.Questions)
	}
	return lists
}

func recommendationLists(responses []models.AgentResponse) [][]string {
	lists := make([][]string, 0, len(responses))
	for _, r := range responses {
		lists = append(lists, r.Recommendations)
	}
	return lists
}
