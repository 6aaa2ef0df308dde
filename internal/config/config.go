package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Speech    SpeechConfig
	Storage   StorageConfig
	Knowledge KnowledgeConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	storage := loadStorageConfig()

	knowledge, err := loadKnowledgeConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Speech: speech, Storage: storage, Knowledge: knowledge}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey          string
	AccessKey       string
	SecretKey       string
	Model           string
	MultimodalModel string
	BaseURL         string
	Region          string
	Temperature     *float64
	TopP            *float64
	MaxTokens       *int
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个指定标识的模型实例。
func (c AIConfig) NewChatModel(ctx context.Context, modelID string) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing, provide ARK_API_KEY + AI_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       modelID,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	model := strings.TrimSpace(os.Getenv("AI_MODEL"))
	// 观察到的后端文本与多模态使用同一标识，但选择逻辑保持可配置。
	multimodal := getEnvOrDefault("AI_MULTIMODAL_MODEL", model)

	return AIConfig{
		APIKey:          strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:       strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:       strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:           model,
		MultimodalModel: multimodal,
		BaseURL:         getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:          getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:     temperature,
		TopP:            topP,
		MaxTokens:       maxTokens,
	}, nil
}

// SpeechConfig 描述语音合成与识别后端配置。
type SpeechConfig struct {
	Endpoint    string
	ASREndpoint string
	AccessToken string
	Timeout     int
	Enabled     bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	endpoint := strings.TrimSpace(os.Getenv("SPEECH_TTS_ENDPOINT"))

	accessToken := strings.TrimSpace(os.Getenv("SPEECH_ACCESS_TOKEN"))
	if accessToken == "" {
		// 未单独配置时复用大模型密钥。
		accessToken = strings.TrimSpace(os.Getenv("ARK_API_KEY"))
	}

	return SpeechConfig{
		Endpoint:    endpoint,
		ASREndpoint: strings.TrimSpace(os.Getenv("SPEECH_ASR_ENDPOINT")),
		AccessToken: accessToken,
		Timeout:     timeoutSeconds,
		Enabled:     endpoint != "" && accessToken != "",
	}, nil
}

// StorageConfig 描述持久化记录的存放目录。
type StorageConfig struct {
	DataDir string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		DataDir: getEnvOrDefault("DATA_DIR", "data"),
	}
}

// KnowledgeConfig 描述知识库上下文预算。
type KnowledgeConfig struct {
	ContextBudget int
}

func loadKnowledgeConfig() (KnowledgeConfig, error) {
	budget, err := parseOptionalIntEnv("KNOWLEDGE_CONTEXT_BUDGET")
	if err != nil {
		return KnowledgeConfig{}, err
	}

	// 安全的字符上限，避免超出模型上下文窗口。
	limit := 150000
	if budget != nil {
		if *budget < 1 {
			return KnowledgeConfig{}, fmt.Errorf("KNOWLEDGE_CONTEXT_BUDGET must be positive, got %d", *budget)
		}
		limit = *budget
	}

	return KnowledgeConfig{ContextBudget: limit}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
