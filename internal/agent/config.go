package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelConfig selects the vision model and its sampling knobs.
type ModelConfig struct {
	Type            string   `yaml:"type"`
	Temperature     *float32 `yaml:"temperature"`
	MaxOutputTokens int32    `yaml:"max_output_tokens"`
}

// AgentConfig is the YAML agent definition: prompts, model, and where the
// book photographs live. One YAML file describes one agent setup.
type AgentConfig struct {
	Name         string      `yaml:"name"`
	Model        ModelConfig `yaml:"model"`
	SystemPrompt string      `yaml:"system_prompt"`
	UserPrompt   string      `yaml:"user_prompt"`
	ImageDir     string      `yaml:"image_dir"`
	ResponseMIME string      `yaml:"response_mime_type"`
}

type configFile struct {
	Agent AgentConfig `yaml:"agent"`
}

const defaultUserPrompt = "Analyze the attached book images and produce bibliographic JSON adhering to the provided schema."

// LoadConfig reads an agent definition from a YAML file. The agent block is
// required; prompts get sensible fallbacks.
func LoadConfig(path string) (AgentConfig, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return AgentConfig{}, fmt.Errorf("agent config %s: %w", path, err)
	}

	var parsed configFile
	if err := yaml.Unmarshal(blob, &parsed); err != nil {
		return AgentConfig{}, fmt.Errorf("agent config %s: %w", path, err)
	}

	cfg := parsed.Agent
	if cfg.Model.Type == "" {
		return AgentConfig{}, fmt.Errorf("agent config %s: model type is not specified", path)
	}
	if cfg.UserPrompt == "" {
		cfg.UserPrompt = defaultUserPrompt
	}
	if cfg.ResponseMIME == "" {
		cfg.ResponseMIME = "application/json"
	}
	return cfg, nil
}
