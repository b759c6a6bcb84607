package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration time.Duration 的 YAML 包装，支持 "30s" 这样的字符串写法
type Duration time.Duration

// Std 转换回 time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML 实现 yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Settings 进程级配置
type Settings struct {
	// LLM 服务
	Provider      string  `yaml:"provider"` // 目前仅 openai 兼容接口
	OpenAIAPIKey  string  `yaml:"openaiApiKey"`
	OpenAIBaseURL string  `yaml:"openaiBaseUrl"` // 留空使用官方地址
	OpenAIModel   string  `yaml:"openaiModel"`
	Temperature   float32 `yaml:"temperature"`
	MaxTokens     int     `yaml:"maxTokens"`

	// 评审编排
	AgentTimeout     Duration `yaml:"agentTimeout"`     // 单个专家的最大时长
	MaxAgents        int      `yaml:"maxAgents"`        // 单会话最大专家数
	MaxFeedbackRound int      `yaml:"maxFeedbackRound"` // 最大反馈轮数

	// 日志
	LogLevel string `yaml:"logLevel"`
}

// Default 默认配置
func Default() Settings {
	return Settings{
		Provider:         "openai",
		OpenAIModel:      "gpt-4-turbo-preview",
		Temperature:      0.7,
		MaxTokens:        2000,
		AgentTimeout:     Duration(30 * time.Second),
		MaxAgents:        10,
		MaxFeedbackRound: 5,
		LogLevel:         "INFO",
	}
}

// Load 加载配置：默认值 <- YAML 文件（可选） <- 环境变量
func Load(path string) (Settings, error) {
	s := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("read config error: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parse config error: %w", err)
		}
	}

	s.applyEnv()

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// applyEnv 环境变量覆盖
func (s *Settings) applyEnv() {
	if v := os.Getenv("NEXUS_OPENAI_API_KEY"); v != "" {
		s.OpenAIAPIKey = v
	}
	if v := os.Getenv("NEXUS_OPENAI_BASE_URL"); v != "" {
		s.OpenAIBaseURL = v
	}
	if v := os.Getenv("NEXUS_OPENAI_MODEL"); v != "" {
		s.OpenAIModel = v
	}
	if v := os.Getenv("NEXUS_AGENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			s.AgentTimeout = Duration(d)
		}
	}
	if v := os.Getenv("NEXUS_MAX_AGENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.MaxAgents = n
		}
	}
	if v := os.Getenv("NEXUS_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
}

// Validate 校验配置合法性
func (s *Settings) Validate() error {
	if s.Provider != "openai" {
		return fmt.Errorf("unsupported provider: %s", s.Provider)
	}
	if s.AgentTimeout <= 0 {
		return fmt.Errorf("agentTimeout must be positive, got %v", s.AgentTimeout.Std())
	}
	if s.MaxAgents < 1 {
		return fmt.Errorf("maxAgents must be at least 1, got %d", s.MaxAgents)
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return fmt.Errorf("temperature out of range: %v", s.Temperature)
	}
	return nil
}
