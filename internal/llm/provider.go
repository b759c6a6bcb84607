package llm

import (
	"context"
	"errors"
	"iter"
)

// 错误定义
var (
	ErrGeneration = errors.New("文本生成调用失败")
	ErrNoChoices  = errors.New("no choices in provider response")
)

// Provider 文本生成服务抽象
// 核心编排只依赖该接口：一对 system/user prompt 换一段文本
type Provider interface {
	// Generate 非流式生成一段完整文本
	Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error)

	// GenerateStream 流式生成，按片段产出文本
	// 编排主流程不使用，保留给实时推送层
	GenerateStream(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) iter.Seq2[string, error]
}
