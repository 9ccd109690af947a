package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the news service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Feeds     FeedsConfig     `yaml:"feeds"`
	Storage   StorageConfig   `yaml:"storage"`
	Recommend RecommendConfig `yaml:"recommend"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	APIKeys         []string `yaml:"api_keys"` // empty disables auth
}

// DatabaseConfig holds vector index (Redis) connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
}

// LLMConfig holds generative-text provider settings used for
// summarization and insight generation.
type LLMConfig struct {
	APIKey                 string  `yaml:"api_key"`
	BaseURL                string  `yaml:"base_url"`
	Model                  string  `yaml:"model"`
	MaxTokens              int     `yaml:"max_tokens"`
	Temperature            float32 `yaml:"temperature"`
	BatchSize              int     `yaml:"batch_size"`
	RateLimitDelaySec      int     `yaml:"rate_limit_delay_sec"`
	SummaryMinWords        int     `yaml:"summary_min_words"`
	SummaryMaxWords        int     `yaml:"summary_max_words"`
	MaxContentLen          int     `yaml:"max_content_length"`
	ContentCleaningEnabled *bool   `yaml:"content_cleaning_enabled"`
}

// ContentCleaning reports whether HTML cleaning is enabled (default true).
func (c LLMConfig) ContentCleaning() bool {
	return c.ContentCleaningEnabled == nil || *c.ContentCleaningEnabled
}

// RerankConfig holds re-ranking provider settings. An empty APIKey
// disables re-ranking.
type RerankConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// FeedsConfig holds the RSS sources grouped by category.
type FeedsConfig struct {
	Sources            map[string][]string `yaml:"sources"`
	MaxArticlesPerFeed int                 `yaml:"max_articles_per_feed"`
}

// StorageConfig holds on-disk and index storage settings.
type StorageConfig struct {
	RawDir       string `yaml:"raw_dir"`
	ProcessedDir string `yaml:"processed_dir"`
	SeenSetPath  string `yaml:"seen_set_path"`
	KeyPrefix    string `yaml:"key_prefix"`
	Namespace    string `yaml:"namespace"`
}

// RecommendConfig holds similarity-search settings.
type RecommendConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MaxRecommendations  int     `yaml:"max_recommendations"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "embed-english-v3.0"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1024
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 96
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "meta-llama/llama-4-scout-17b-16e-instruct"
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 1000
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.BatchSize <= 0 {
		c.LLM.BatchSize = 20
	}
	if c.LLM.RateLimitDelaySec <= 0 {
		c.LLM.RateLimitDelaySec = 2
	}
	if c.LLM.SummaryMinWords <= 0 {
		c.LLM.SummaryMinWords = 50
	}
	if c.LLM.SummaryMaxWords <= 0 {
		c.LLM.SummaryMaxWords = 70
	}
	if c.LLM.MaxContentLen <= 0 {
		c.LLM.MaxContentLen = 2000
	}
	if c.Rerank.Model == "" {
		c.Rerank.Model = "rerank-english-v3.0"
	}
	if c.Rerank.BaseURL == "" {
		c.Rerank.BaseURL = "https://api.cohere.com"
	}
	if c.Feeds.MaxArticlesPerFeed <= 0 {
		c.Feeds.MaxArticlesPerFeed = 50
	}
	if c.Storage.RawDir == "" {
		c.Storage.RawDir = "./data/raw_news"
	}
	if c.Storage.ProcessedDir == "" {
		c.Storage.ProcessedDir = "./data/processed_news"
	}
	if c.Storage.SeenSetPath == "" {
		c.Storage.SeenSetPath = "./data/seen_articles.json"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "newsai:"
	}
	if c.Storage.Namespace == "" {
		c.Storage.Namespace = "default"
	}
	if c.Recommend.SimilarityThreshold <= 0 {
		c.Recommend.SimilarityThreshold = 0.25
	}
	if c.Recommend.MaxRecommendations <= 0 {
		c.Recommend.MaxRecommendations = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.LLM.SummaryMinWords > c.LLM.SummaryMaxWords {
		return fmt.Errorf("llm.summary_min_words (%d) exceeds llm.summary_max_words (%d)",
			c.LLM.SummaryMinWords, c.LLM.SummaryMaxWords)
	}
	if c.Recommend.SimilarityThreshold > 1 {
		return fmt.Errorf("recommend.similarity_threshold must be at most 1, got %g",
			c.Recommend.SimilarityThreshold)
	}
	for category, urls := range c.Feeds.Sources {
		if len(urls) == 0 {
			return fmt.Errorf("feeds.sources.%s has no URLs", category)
		}
	}
	return nil
}

// TargetSummaryWords is the word count requested from the
// generative-text provider per summary.
func (c *Config) TargetSummaryWords() int {
	return (c.LLM.SummaryMinWords + c.LLM.SummaryMaxWords) / 2
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
