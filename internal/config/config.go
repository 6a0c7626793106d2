package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CallConfig holds the sampling parameters for one call type.
type CallConfig struct {
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Config holds application configuration
type Config struct {
	Server struct {
		Port      string `yaml:"port"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"server"`

	OpenAI struct {
		APIKey            string        `yaml:"api_key"`
		Model             string        `yaml:"model"`
		BaseURL           string        `yaml:"base_url"`
		MaxRetries        int           `yaml:"max_retries"`
		RetryDelay        time.Duration `yaml:"retry_delay"`
		RequestsPerMinute int           `yaml:"requests_per_minute"`
	} `yaml:"openai"`

	Generation struct {
		Count int        `yaml:"count"`
		Call  CallConfig `yaml:"call"`
	} `yaml:"generation"`

	Labeling struct {
		MaxAttempts int        `yaml:"max_attempts"`
		Call        CallConfig `yaml:"call"`
	} `yaml:"labeling"`

	Baseline  CallConfig `yaml:"baseline"`
	Worksheet struct {
		Call         CallConfig `yaml:"call"`
		TemplatePath string     `yaml:"template_path"`
	} `yaml:"worksheet"`
	Chat CallConfig `yaml:"chat"`

	Paths struct {
		Snippets         string `yaml:"snippets"`
		Labeled          string `yaml:"labeled"`
		LabelingMetrics  string `yaml:"labeling_metrics"`
		Baseline         string `yaml:"baseline"`
		BaselineMetrics  string `yaml:"baseline_metrics"`
		Worksheet        string `yaml:"worksheet"`
		WorksheetMetrics string `yaml:"worksheet_metrics"`
		Evaluation       string `yaml:"evaluation"`
	} `yaml:"paths"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()

	// Expand environment variables in the API key so the file can hold
	// ${OPENAI_API_KEY} instead of the secret itself.
	config.OpenAI.APIKey = os.ExpandEnv(config.OpenAI.APIKey)

	return config, nil
}

// Default returns a configuration with all defaults applied and the API
// key taken from the environment. Used when no config file is given.
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	config.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	return config
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "./web/static"
	}

	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.MaxRetries == 0 {
		c.OpenAI.MaxRetries = 3
	}
	if c.OpenAI.RetryDelay == 0 {
		c.OpenAI.RetryDelay = 2 * time.Second
	}
	if c.OpenAI.RequestsPerMinute == 0 {
		c.OpenAI.RequestsPerMinute = 60
	}

	if c.Generation.Count == 0 {
		c.Generation.Count = 250
	}
	if c.Generation.Call.Temperature == 0 {
		c.Generation.Call.Temperature = 0.8
	}
	if c.Generation.Call.MaxTokens == 0 {
		c.Generation.Call.MaxTokens = 300
	}

	if c.Labeling.MaxAttempts == 0 {
		c.Labeling.MaxAttempts = 3
	}
	if c.Labeling.Call.MaxTokens == 0 {
		c.Labeling.Call.MaxTokens = 10
	}

	if c.Baseline.MaxTokens == 0 {
		c.Baseline.MaxTokens = 200
	}
	if c.Worksheet.Call.MaxTokens == 0 {
		c.Worksheet.Call.MaxTokens = 1000
	}
	if c.Chat.Temperature == 0 {
		c.Chat.Temperature = 0.7
	}
	if c.Chat.MaxTokens == 0 {
		c.Chat.MaxTokens = 1000
	}

	if c.Paths.Snippets == "" {
		c.Paths.Snippets = "data/snippets.csv"
	}
	if c.Paths.Labeled == "" {
		c.Paths.Labeled = "data/labeled.csv"
	}
	if c.Paths.LabelingMetrics == "" {
		c.Paths.LabelingMetrics = "outputs/labeling_metrics.json"
	}
	if c.Paths.Baseline == "" {
		c.Paths.Baseline = "outputs/baseline.csv"
	}
	if c.Paths.BaselineMetrics == "" {
		c.Paths.BaselineMetrics = "outputs/baseline_metrics.json"
	}
	if c.Paths.Worksheet == "" {
		c.Paths.Worksheet = "outputs/worksheet.csv"
	}
	if c.Paths.WorksheetMetrics == "" {
		c.Paths.WorksheetMetrics = "outputs/worksheet_metrics.json"
	}
	if c.Paths.Evaluation == "" {
		c.Paths.Evaluation = "outputs/evaluation_summary.json"
	}

	if c.Database.Path == "" {
		c.Database.Path = "./data/classifications.db"
	}
}
