package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad 测试配置加载优先级
func TestLoad(t *testing.T) {
	t.Run("无文件返回默认值", func(t *testing.T) {
		s, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "openai", s.Provider)
		assert.Equal(t, "gpt-4-turbo-preview", s.OpenAIModel)
		assert.Equal(t, 30*time.Second, s.AgentTimeout.Std())
		assert.Equal(t, 10, s.MaxAgents)
		assert.Equal(t, "INFO", s.LogLevel)
	})

	t.Run("YAML覆盖默认值", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
openaiModel: gpt-4o
agentTimeout: 45s
maxAgents: 6
logLevel: DEBUG
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", s.OpenAIModel)
		assert.Equal(t, 45*time.Second, s.AgentTimeout.Std())
		assert.Equal(t, 6, s.MaxAgents)
		assert.Equal(t, "DEBUG", s.LogLevel)
		// 未出现的字段保持默认
		assert.Equal(t, float32(0.7), s.Temperature)
	})

	t.Run("环境变量覆盖YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("openaiModel: gpt-4o\n"), 0644))

		t.Setenv("NEXUS_OPENAI_MODEL", "gpt-4o-mini")
		t.Setenv("NEXUS_AGENT_TIMEOUT", "90s")

		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", s.OpenAIModel)
		assert.Equal(t, 90*time.Second, s.AgentTimeout.Std())
	})

	t.Run("文件不存在报错", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

// TestValidate 测试配置校验
func TestValidate(t *testing.T) {
	t.Run("默认配置合法", func(t *testing.T) {
		s := Default()
		assert.NoError(t, s.Validate())
	})

	t.Run("非法配置", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*Settings)
		}{
			{"不支持的提供方", func(s *Settings) { s.Provider = "petstore" }},
			{"超时非正数", func(s *Settings) { s.AgentTimeout = 0 }},
			{"专家数过小", func(s *Settings) { s.MaxAgents = 0 }},
			{"温度越界", func(s *Settings) { s.Temperature = 3 }},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				s := Default()
				c.mutate(&s)
				assert.Error(t, s.Validate())
			})
		}
	})
}
