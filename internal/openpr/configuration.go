package openpr

import (
	"strings"

	"github.com/temirov/prflow/internal/agents"
)

const (
	defaultRemoteNameConstant             = "origin"
	remoteConfigurationKeyConstant        = "remote"
	agentConfigurationKeyConstant         = "agent"
	modelConfigurationKeyConstant         = "model"
	draftConfigurationKeyConstant         = "draft"
	openInBrowserConfigurationKeyConstant = "open_in_browser"
	configurationKeySeparatorConstant     = "."
)

// Configuration captures the tools.open_pr settings.
type Configuration struct {
	Remote        string `mapstructure:"remote"`
	Agent         string `mapstructure:"agent"`
	Model         string `mapstructure:"model"`
	Draft         bool   `mapstructure:"draft"`
	OpenInBrowser bool   `mapstructure:"open_in_browser"`
}

// DefaultConfiguration returns the baseline open-pr settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		Remote: defaultRemoteNameConstant,
		Agent:  agents.AgentCopilot,
	}
}

// DefaultConfigurationValues renders DefaultConfiguration as viper defaults under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	values := map[string]any{
		remoteConfigurationKeyConstant:        defaults.Remote,
		agentConfigurationKeyConstant:         defaults.Agent,
		modelConfigurationKeyConstant:         defaults.Model,
		draftConfigurationKeyConstant:         defaults.Draft,
		openInBrowserConfigurationKeyConstant: defaults.OpenInBrowser,
	}
	prefixedValues := make(map[string]any, len(values))
	for key, value := range values {
		prefixedValues[prefix+configurationKeySeparatorConstant+key] = value
	}
	return prefixedValues
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.Remote = strings.TrimSpace(configuration.Remote)
	if len(sanitized.Remote) == 0 {
		sanitized.Remote = defaultRemoteNameConstant
	}
	sanitized.Agent = strings.ToLower(strings.TrimSpace(configuration.Agent))
	if len(sanitized.Agent) == 0 {
		sanitized.Agent = agents.AgentCopilot
	}
	sanitized.Model = strings.TrimSpace(configuration.Model)
	return sanitized
}
