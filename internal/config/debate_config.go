package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/duelogic/duelogic/internal/models"
)

// ChairConfig declares one debate participant.
type ChairConfig struct {
	Position  string `yaml:"position"`
	Framework string `yaml:"framework"`
	ModelID   string `yaml:"model_id"`
}

// JudgeConfig declares the judge model backing an adjudication orchestrator.
type JudgeConfig struct {
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// DebateConfig is the debate-level configuration consumed by the
// adjudication core. The core only reads it at construction time.
type DebateConfig struct {
	DebateID string `yaml:"debate_id"`
	Topic    string `yaml:"topic"`

	Accountability         string `yaml:"accountability"`
	AllowChairInterrupts   bool   `yaml:"allow_chair_interrupts"`
	AllowArbiterInterrupts bool   `yaml:"allow_arbiter_interrupts"`
	Aggressiveness         int    `yaml:"aggressiveness"`
	CooldownSeconds        int    `yaml:"cooldown_seconds"`
	EnablePersistence      bool   `yaml:"enable_persistence"`

	Judge  JudgeConfig   `yaml:"judge"`
	Chairs []ChairConfig `yaml:"chairs"`

	DatabaseURL string `yaml:"database_url"`
}

// AccountabilityLevel returns the configured level as a typed value.
func (c *DebateConfig) AccountabilityLevel() models.AccountabilityLevel {
	return models.AccountabilityLevel(c.Accountability)
}

// ChairList returns the configured chairs as domain models.
func (c *DebateConfig) ChairList() []models.Chair {
	chairs := make([]models.Chair, 0, len(c.Chairs))
	for _, cc := range c.Chairs {
		chairs = append(chairs, models.Chair{
			Position:  cc.Position,
			Framework: models.Framework(cc.Framework),
			ModelID:   cc.ModelID,
		})
	}
	return chairs
}

// Validate checks the configuration for internal consistency.
func (c *DebateConfig) Validate() error {
	if !c.AccountabilityLevel().Valid() {
		return fmt.Errorf("invalid accountability level: %q", c.Accountability)
	}
	if c.Aggressiveness < 1 || c.Aggressiveness > 5 {
		return fmt.Errorf("aggressiveness must be between 1 and 5, got %d", c.Aggressiveness)
	}
	if c.CooldownSeconds <= 0 {
		return fmt.Errorf("cooldown_seconds must be positive, got %d", c.CooldownSeconds)
	}
	if len(c.Chairs) < 2 {
		return fmt.Errorf("at least 2 chairs are required, got %d", len(c.Chairs))
	}

	seen := make(map[string]bool, len(c.Chairs))
	for i, chair := range c.Chairs {
		if chair.Position == "" {
			return fmt.Errorf("chair %d: position is required", i)
		}
		if seen[chair.Position] {
			return fmt.Errorf("duplicate chair position: %s", chair.Position)
		}
		seen[chair.Position] = true

		valid := false
		for _, f := range models.Frameworks {
			if models.Framework(chair.Framework) == f {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("chair %s: unknown framework %q", chair.Position, chair.Framework)
		}
	}

	return nil
}

// Loader handles loading and managing debate configurations.
type Loader struct {
	configPath string
	config     *DebateConfig
}

// NewLoader creates a debate configuration loader.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load loads the debate configuration from file.
func (l *Loader) Load() (*DebateConfig, error) {
	if l.configPath == "" {
		return nil, fmt.Errorf("configuration path is required")
	}
	if _, err := os.Stat(l.configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file does not exist: %s", l.configPath)
	}

	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return l.LoadFromString(string(data))
}

// LoadFromString loads configuration from a YAML string.
func (l *Loader) LoadFromString(yamlContent string) (*DebateConfig, error) {
	expanded := substituteEnvVars(yamlContent)

	var config DebateConfig
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	l.config = &config
	return &config, nil
}

// GetConfig returns the loaded configuration.
func (l *Loader) GetConfig() *DebateConfig {
	return l.config
}

// Reload reloads the configuration from file.
func (l *Loader) Reload() (*DebateConfig, error) {
	return l.Load()
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// substituteEnvVars replaces ${VAR_NAME} placeholders with environment
// variable values. Unset variables resolve to the empty string.
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(name)
	})
}

func applyDefaults(config *DebateConfig) {
	if config.Accountability == "" {
		config.Accountability = string(models.AccountabilityModerate)
	}
	if config.Aggressiveness == 0 {
		config.Aggressiveness = 3
	}
	if config.CooldownSeconds == 0 {
		config.CooldownSeconds = 30
	}
	if config.Judge.Temperature == 0 {
		config.Judge.Temperature = 0.3
	}
	if config.Judge.MaxTokens == 0 {
		config.Judge.MaxTokens = 1024
	}
}
