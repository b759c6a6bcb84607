package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/sashabaranov/go-openai"

	"github.com/run-bigpig/nexus/internal/logger"
)

var log = logger.New("llm:openai")

var _ Provider = &OpenAIProvider{}

// OpenAIProvider 基于 OpenAI 兼容接口的文本生成服务
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider 创建 OpenAI Provider，baseURL 留空使用官方地址
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate 非流式生成
func (p *OpenAIProvider) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream 流式生成，逐片段产出 delta 文本
func (p *OpenAIProvider) GenerateStream(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Stream:      true,
		})
		if err != nil {
			yield("", fmt.Errorf("%w: %v", ErrGeneration, err))
			return
		}
		defer stream.Close()

		for {
			chunk, err := stream.Recv()
			if errors.Is(err, context.Canceled) {
				return
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					log.Warn("stream interrupted: %v", err)
					yield("", fmt.Errorf("%w: %v", ErrGeneration, err))
				}
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				if !yield(delta, nil) {
					return
				}
			}
		}
	}
}
