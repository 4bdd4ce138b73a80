package review

import (
	"strings"

	"github.com/temirov/prflow/internal/agents"
)

const (
	agentConfigurationKeyConstant          = "agent"
	modelConfigurationKeyConstant          = "model"
	promptTemplateConfigurationKeyConstant = "prompt_template"
	configurationKeySeparatorConstant      = "."
)

// Configuration captures the tools.review settings. PromptTemplate is a path to a template file.
type Configuration struct {
	Agent          string `mapstructure:"agent"`
	Model          string `mapstructure:"model"`
	PromptTemplate string `mapstructure:"prompt_template"`
}

// DefaultConfiguration returns the baseline review settings.
func DefaultConfiguration() Configuration {
	return Configuration{Agent: agents.AgentCopilot}
}

// DefaultConfigurationValues renders DefaultConfiguration as viper defaults under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + configurationKeySeparatorConstant + agentConfigurationKeyConstant:          defaults.Agent,
		prefix + configurationKeySeparatorConstant + modelConfigurationKeyConstant:          defaults.Model,
		prefix + configurationKeySeparatorConstant + promptTemplateConfigurationKeyConstant: defaults.PromptTemplate,
	}
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.Agent = strings.ToLower(strings.TrimSpace(configuration.Agent))
	if len(sanitized.Agent) == 0 {
		sanitized.Agent = agents.AgentCopilot
	}
	sanitized.Model = strings.TrimSpace(configuration.Model)
	sanitized.PromptTemplate = strings.TrimSpace(configuration.PromptTemplate)
	return sanitized
}
