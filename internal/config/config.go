package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Research  ResearchConfig  `yaml:"research" mapstructure:"research"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	Model     string  `yaml:"model" mapstructure:"model"`
	MaxTokens int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RPS       float64 `yaml:"rps" mapstructure:"rps"`
}

// JinaConfig holds Jina AI Reader/Search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// StoreConfig configures the sqlite-backed run history and search cache.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ResearchConfig tunes the per-dimension research loop.
type ResearchConfig struct {
	Retries         int `yaml:"retries" mapstructure:"retries"`
	BackoffSecs     int `yaml:"backoff_secs" mapstructure:"backoff_secs"`
	SearchResults   int `yaml:"search_results" mapstructure:"search_results"`
	SummaryMaxChars int `yaml:"summary_max_chars" mapstructure:"summary_max_chars"`
	MaxSentences    int `yaml:"max_sentences" mapstructure:"max_sentences"`
	KeywordCap      int `yaml:"keyword_cap" mapstructure:"keyword_cap"`
}

// Backoff returns the delay between research loop iterations.
func (r ResearchConfig) Backoff() time.Duration {
	return time.Duration(r.BackoffSecs) * time.Second
}

// RenderConfig configures report output.
type RenderConfig struct {
	OutDir string `yaml:"out_dir" mapstructure:"out_dir"`
}

// ServerConfig configures the read-only report server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DEEPRESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.rps", 2.0)
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("store.path", "deep-research.db")
	v.SetDefault("research.retries", 3)
	v.SetDefault("research.backoff_secs", 2)
	v.SetDefault("research.search_results", 10)
	v.SetDefault("research.summary_max_chars", 5000)
	v.SetDefault("research.max_sentences", 12)
	v.SetDefault("research.keyword_cap", 25)
	v.SetDefault("render.out_dir", ".")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
