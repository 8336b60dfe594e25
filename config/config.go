// Package config loads the JSON configuration file with env overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "RECLETTER"

// Config holds the model credentials and server settings.
type Config struct {
	LLM            LLMConfig     `mapstructure:"llm"`
	ServerAddr     string        `mapstructure:"server_addr"`
	LogLevel       string        `mapstructure:"log_level"`
	Classifier     string        `mapstructure:"classifier"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LLMConfig selects and authenticates the model provider.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("classifier", "salutation")
	v.SetDefault("request_timeout", 60*time.Second)
}

// Load reads path (JSON) when it exists and applies RECLETTER_* env
// overrides. OPENAI_API_KEY is accepted as a fallback for llm.api_key.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", envPrefix+"_LLM_API_KEY", "OPENAI_API_KEY"); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks provider specific requirements.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "mock":
	case "openai":
		if c.LLM.APIKey == "" {
			return errors.New("llm provider openai requires llm.api_key (or OPENAI_API_KEY)")
		}
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if c.LLM.BaseURL == "" {
			return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		if c.LLM.APIKey == "" {
			return errors.New("llm provider deepseek requires llm.api_key")
		}
	case "":
		return errors.New("llm config missing; please set llm.provider/model/api_key in config")
	default:
		return fmt.Errorf("llm provider %s not supported", c.LLM.Provider)
	}
	if c.LLM.Temperature <= 0 {
		return fmt.Errorf("llm.temperature must be positive, got %v", c.LLM.Temperature)
	}
	switch strings.ToLower(c.Classifier) {
	case "", "salutation", "structural":
	default:
		return fmt.Errorf("unknown classifier %q", c.Classifier)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}
	return nil
}
