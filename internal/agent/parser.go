package agent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/run-bigpig/nexus/internal/models"
)

// ParsedResponse 自由文本解析出的结构化内容
type ParsedResponse struct {
	Summary         string
	Opportunities   []string
	Concerns        []string
	Questions       []string
	Recommendations []string
	Sentiment       models.Sentiment
	ConfidenceScore float64
}

// ResponseParser 专家回复文本解析器
// 基于标记的解析天然脆弱，隔离在接口后面，便于将来换成结构化输出
type ResponseParser interface {
	Parse(raw string) ParsedResponse
}

// DefaultConfidence 未能提取置信度时的默认值
const DefaultConfidence = 0.7

// 解析器内部节名
const (
	secNone = iota
	secSummary
	secOpportunities
	secConcerns
	secQuestions
	secRecommendations
	secSentiment
	secConfidence
)

// 节标记，按行识别；"confidence score" 必须先于 "confidence" 匹配
var sectionMarkers = []struct {
	name string
	sec  int
}{
	{"summary", secSummary},
	{"opportunities", secOpportunities},
	{"concerns", secConcerns},
	{"questions", secQuestions},
	{"recommendations", secRecommendations},
	{"sentiment", secSentiment},
	{"confidence score", secConfidence},
	{"confidence", secConfidence},
}

var numberPattern = regexp.MustCompile(`[0-9]*\.?[0-9]+`)

// SectionParser 按节扫描的默认解析器
// 识别形如 "**Opportunities**"、"3. Concerns:"、"## Summary" 的节标题行，
// 把后续行累积到当前节；列表节只收以 -、•、*、数字开头的行
type SectionParser struct{}

var _ ResponseParser = SectionParser{}

// Parse 解析原始回复文本
// 完全识别失败不是错误：返回空摘要、空列表、NEUTRAL、默认置信度
func (SectionParser) Parse(raw string) ParsedResponse {
	parsed := ParsedResponse{
		Opportunities:   []string{},
		Concerns:        []string{},
		Questions:       []string{},
		Recommendations: []string{},
		Sentiment:       models.SentimentNeutral,
		ConfidenceScore: DefaultConfidence,
	}

	var summary strings.Builder
	current := secNone
	sentimentFound := false
	confidenceFound := false

	for _, rawLine := range strings.Split(raw, "\n") {
		line := strings.TrimSpace(rawLine)

		if sec, rest, ok := detectSection(line); ok {
			current = sec
			// 态度与置信度常直接写在标题行上
			switch sec {
			case secSentiment:
				if !sentimentFound {
					if s, ok := matchSentiment(rest); ok {
						parsed.Sentiment = s
						sentimentFound = true
					}
				}
			case secConfidence:
				if !confidenceFound {
					if v, ok := extractScore(rest); ok {
						parsed.ConfidenceScore = v
						confidenceFound = true
					}
				}
			}
			continue
		}

		if line == "" {
			continue
		}

		switch current {
		case secSummary:
			summary.WriteString(line)
			summary.WriteString(" ")
		case secOpportunities:
			parsed.Opportunities = appendItem(parsed.Opportunities, line)
		case secConcerns:
			parsed.Concerns = appendItem(parsed.Concerns, line)
		case secQuestions:
			parsed.Questions = appendItem(parsed.Questions, line)
		case secRecommendations:
			parsed.Recommendations = appendItem(parsed.Recommendations, line)
		case secSentiment:
			if !sentimentFound {
				if s, ok := matchSentiment(strings.ToLower(line)); ok {
					parsed.Sentiment = s
					sentimentFound = true
				}
			}
		case secConfidence:
			if !confidenceFound {
				if v, ok := extractScore(strings.ToLower(line)); ok {
					parsed.ConfidenceScore = v
					confidenceFound = true
				}
			}
		}
	}

	parsed.Summary = strings.TrimSpace(summary.String())
	return parsed
}

// detectSection 判断一行是否为节标题
// 标题行 = 去掉 markdown 修饰（#、**、编号）后以节名开头，
// 且节名之后只跟分隔符（冒号、括号说明等），避免正文行误判
func detectSection(line string) (sec int, rest string, ok bool) {
	norm := strings.ToLower(strings.TrimSpace(line))
	norm = strings.TrimLeft(norm, "#> ")
	norm = trimLeadingNumbering(norm)
	norm = strings.TrimLeft(norm, "*_ ")

	for _, m := range sectionMarkers {
		if !strings.HasPrefix(norm, m.name) {
			continue
		}
		tail := norm[len(m.name):]
		tail = strings.TrimLeft(tail, "*_ ")
		if tail == "" || strings.HasPrefix(tail, ":") || strings.HasPrefix(tail, "(") {
			return m.sec, norm, true
		}
	}
	return secNone, "", false
}

// trimLeadingNumbering 去掉 "1. "、"2) " 这样的前导编号
func trimLeadingNumbering(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return s
	}
	rest := s[i:]
	if strings.HasPrefix(rest, ".") || strings.HasPrefix(rest, ")") {
		return strings.TrimLeft(rest[1:], " ")
	}
	return s
}

// appendItem 列表节只接收以项目符号开头的行，其余行忽略
func appendItem(items []string, line string) []string {
	c := line[0]
	isBullet := c == '-' || c == '*' || (c >= '0' && c <= '9') || strings.HasPrefix(line, "•")
	if !isBullet {
		return items
	}
	cleaned := strings.TrimLeft(line, "-•*0123456789. ")
	if cleaned == "" {
		return items
	}
	return append(items, cleaned)
}

// matchSentiment 态度关键词匹配，按固定优先级取首个命中
func matchSentiment(text string) (models.Sentiment, bool) {
	switch {
	case strings.Contains(text, "very_positive") || strings.Contains(text, "very positive"):
		return models.SentimentVeryPositive, true
	case strings.Contains(text, "positive"):
		return models.SentimentPositive, true
	case strings.Contains(text, "cautious"):
		return models.SentimentCautious, true
	case strings.Contains(text, "negative"):
		return models.SentimentNegative, true
	}
	return models.SentimentNeutral, false
}

// extractScore 取行内首个数字并夹取到 [0,1]
func extractScore(text string) (float64, bool) {
	m := numberPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v, true
}
