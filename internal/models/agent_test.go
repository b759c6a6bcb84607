package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSentiment 测试态度类型
func TestSentiment(t *testing.T) {
	t.Run("计分", func(t *testing.T) {
		assert.Equal(t, 2, SentimentVeryPositive.Score())
		assert.Equal(t, 1, SentimentPositive.Score())
		assert.Equal(t, 0, SentimentNeutral.Score())
		assert.Equal(t, -1, SentimentCautious.Score())
		assert.Equal(t, -2, SentimentNegative.Score())
	})

	t.Run("显示文本", func(t *testing.T) {
		assert.Equal(t, "very positive", SentimentVeryPositive.Display())
		assert.Equal(t, "neutral", SentimentNeutral.Display())
	})

	t.Run("合法性", func(t *testing.T) {
		assert.True(t, SentimentCautious.Valid())
		assert.False(t, Sentiment("ecstatic").Valid())
	})
}

// TestExecutionMode 测试执行模式
func TestExecutionMode(t *testing.T) {
	assert.True(t, ModeParallel.Valid())
	assert.True(t, ModeSequential.Valid())
	assert.False(t, ExecutionMode("chaotic").Valid())
	assert.False(t, ExecutionMode("").Valid())
}
