package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// TestOpenAIGenerate 测试非流式生成
func TestOpenAIGenerate(t *testing.T) {
	t.Run("返回首个choice内容", func(t *testing.T) {
		var gotReq openai.ChatCompletionRequest
		server := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			resp := openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{
					{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "analysis text"}},
				},
			}
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		})

		p := NewOpenAIProvider("test-key", server.URL+"/v1", "gpt-4o")
		text, err := p.Generate(context.Background(), "you are an expert", "analyze this", 0.7, 500)
		require.NoError(t, err)
		assert.Equal(t, "analysis text", text)

		require.Len(t, gotReq.Messages, 2)
		assert.Equal(t, "system", gotReq.Messages[0].Role)
		assert.Equal(t, "you are an expert", gotReq.Messages[0].Content)
		assert.Equal(t, "user", gotReq.Messages[1].Role)
		assert.Equal(t, "gpt-4o", gotReq.Model)
		assert.Equal(t, 500, gotReq.MaxTokens)
	})

	t.Run("服务端错误包装为生成错误", func(t *testing.T) {
		server := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
		})

		p := NewOpenAIProvider("test-key", server.URL+"/v1", "gpt-4o")
		_, err := p.Generate(context.Background(), "s", "u", 0.7, 500)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrGeneration)
	})

	t.Run("空choices", func(t *testing.T) {
		server := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[]}`))
		})

		p := NewOpenAIProvider("test-key", server.URL+"/v1", "gpt-4o")
		_, err := p.Generate(context.Background(), "s", "u", 0.7, 500)
		assert.ErrorIs(t, err, ErrNoChoices)
	})
}

// TestOpenAIGenerateStream 测试流式生成
func TestOpenAIGenerateStream(t *testing.T) {
	server := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{"Hello", " world"}
		for _, c := range chunks {
			payload, _ := json.Marshal(openai.ChatCompletionStreamResponse{
				Choices: []openai.ChatCompletionStreamChoice{
					{Delta: openai.ChatCompletionStreamChoiceDelta{Content: c}},
				},
			})
			_, _ = w.Write([]byte("data: " + string(payload) + "\n\n"))
		}
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	})

	p := NewOpenAIProvider("test-key", server.URL+"/v1", "gpt-4o")

	var got string
	for delta, err := range p.GenerateStream(context.Background(), "s", "u", 0.7, 500) {
		require.NoError(t, err)
		got += delta
	}
	assert.Equal(t, "Hello world", got)
}
