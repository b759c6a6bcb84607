package agent

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/run-bigpig/nexus/internal/models"
)

// fakeProvider 测试用的固定回复生成服务
type fakeProvider struct {
	reply string
	err   error

	lastSystemPrompt string
	lastUserPrompt   string
}

func (f *fakeProvider) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.lastSystemPrompt = systemPrompt
	f.lastUserPrompt = userPrompt
	return f.reply, f.err
}

func (f *fakeProvider) GenerateStream(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield(f.reply, f.err)
	}
}

func testPersona() models.Persona {
	return models.Persona{
		ID:         "ny-1",
		Name:       "Sarah Mitchell",
		Title:      "Venture Capital Partner",
		Location:   "New York",
		Industry:   "Fintech",
		Expertise:  []string{"Series A-C Funding", "Fintech", "B2B SaaS", "Market Analysis"},
		Experience: "15+ years",
		Bio:        "Partner at a top-tier VC firm.",
		Insights:   []string{"Focus on unit economics"},
	}
}

func testIdea() models.StartupIdea {
	return models.StartupIdea{
		Title:           "PayFlow",
		Description:     "Cross-border payment platform for SMEs.",
		TargetMarket:    "Small exporters",
		Industry:        "Fintech",
		BusinessModel:   "SaaS",
		TechnologyStack: []string{"Go", "PostgreSQL"},
		Stage:           "seed",
	}
}

// TestExpertAgentAnalyze 测试专家评估流程
func TestExpertAgentAnalyze(t *testing.T) {
	t.Run("正常评估", func(t *testing.T) {
		provider := &fakeProvider{reply: sampleResponse}
		expert := NewExpertAgent(testPersona(), provider)

		resp, err := expert.Analyze(context.Background(), testIdea(), 1, "", nil)
		require.NoError(t, err)

		assert.Equal(t, "ny-1", resp.AgentID)
		assert.Equal(t, "Sarah Mitchell", resp.AgentName)
		assert.Equal(t, 1, resp.RoundNumber)
		assert.Equal(t, models.SentimentPositive, resp.Sentiment)
		assert.Equal(t, 0.85, resp.ConfidenceScore)
		assert.Equal(t, sampleResponse, resp.DetailedFeedback)
		assert.Nil(t, resp.RespondingTo)
		assert.False(t, resp.Timestamp.IsZero())
	})

	t.Run("prompt包含人设与任务", func(t *testing.T) {
		provider := &fakeProvider{reply: sampleResponse}
		expert := NewExpertAgent(testPersona(), provider)

		_, err := expert.Analyze(context.Background(), testIdea(), 1, "focus on pricing", nil)
		require.NoError(t, err)

		assert.Contains(t, provider.lastSystemPrompt, "Sarah Mitchell")
		assert.Contains(t, provider.lastSystemPrompt, "Venture Capital Partner")
		assert.Contains(t, provider.lastSystemPrompt, "New York")
		assert.Contains(t, provider.lastUserPrompt, "PayFlow")
		assert.Contains(t, provider.lastUserPrompt, "Round 1")
		assert.Contains(t, provider.lastUserPrompt, "focus on pricing")
		assert.NotContains(t, provider.lastUserPrompt, "Other Expert Opinions")
	})

	t.Run("同伴发言进入prompt", func(t *testing.T) {
		provider := &fakeProvider{reply: sampleResponse}
		expert := NewExpertAgent(testPersona(), provider)

		peers := []models.AgentResponse{
			{AgentID: "ldn-1", AgentName: "Victoria Ashworth", Sentiment: models.SentimentCautious, Summary: "Needs regulatory review."},
			{AgentID: "tky-1", AgentName: "Yuki Tanaka", Sentiment: models.SentimentPositive, Summary: "Strong APAC fit."},
		}
		resp, err := expert.Analyze(context.Background(), testIdea(), 2, "", peers)
		require.NoError(t, err)

		assert.Contains(t, provider.lastUserPrompt, "Other Expert Opinions")
		assert.Contains(t, provider.lastUserPrompt, "Victoria Ashworth")
		assert.Contains(t, provider.lastUserPrompt, "Needs regulatory review.")
		assert.Equal(t, []string{"ldn-1", "tky-1"}, resp.RespondingTo)
	})

	t.Run("生成失败返回错误", func(t *testing.T) {
		provider := &fakeProvider{err: errors.New("boom")}
		expert := NewExpertAgent(testPersona(), provider)

		_, err := expert.Analyze(context.Background(), testIdea(), 1, "", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrGeneration)
		assert.Empty(t, expert.History())
	})

	t.Run("解析失败仍返回有效响应", func(t *testing.T) {
		provider := &fakeProvider{reply: "free-form text without any structure"}
		expert := NewExpertAgent(testPersona(), provider)

		resp, err := expert.Analyze(context.Background(), testIdea(), 1, "", nil)
		require.NoError(t, err)

		assert.Equal(t, models.SentimentNeutral, resp.Sentiment)
		assert.Equal(t, DefaultConfidence, resp.ConfidenceScore)
		assert.Equal(t, "free-form text without any structure", resp.DetailedFeedback)
	})

	t.Run("历史随轮次累积", func(t *testing.T) {
		provider := &fakeProvider{reply: sampleResponse}
		expert := NewExpertAgent(testPersona(), provider)

		for round := 1; round <= 3; round++ {
			_, err := expert.Analyze(context.Background(), testIdea(), round, "", nil)
			require.NoError(t, err)
		}

		history := expert.History()
		require.Len(t, history, 3)
		for i, entry := range history {
			assert.Equal(t, i+1, entry.Round)
		}
	})
}

// TestSystemPromptExpertiseLimit 提示词中的专长最多列 3 项
func TestSystemPromptExpertiseLimit(t *testing.T) {
	provider := &fakeProvider{reply: sampleResponse}
	expert := NewExpertAgent(testPersona(), provider)

	_, err := expert.Analyze(context.Background(), testIdea(), 1, "", nil)
	require.NoError(t, err)

	assert.Contains(t, provider.lastUserPrompt, "Series A-C Funding, Fintech, B2B SaaS")
	assert.False(t, strings.Contains(provider.lastUserPrompt, "B2B SaaS, Market Analysis"))
}
