package squash

import "strings"

const (
	defaultRemoteNameConstant         = "origin"
	remoteConfigurationKeyConstant    = "remote"
	configurationKeySeparatorConstant = "."
)

// Configuration captures the tools.squash settings.
type Configuration struct {
	Remote string `mapstructure:"remote"`
}

// DefaultConfiguration returns the baseline squash settings.
func DefaultConfiguration() Configuration {
	return Configuration{Remote: defaultRemoteNameConstant}
}

// DefaultConfigurationValues renders DefaultConfiguration as viper defaults under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	return map[string]any{
		prefix + configurationKeySeparatorConstant + remoteConfigurationKeyConstant: DefaultConfiguration().Remote,
	}
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.Remote = strings.TrimSpace(configuration.Remote)
	if len(sanitized.Remote) == 0 {
		sanitized.Remote = defaultRemoteNameConstant
	}
	return sanitized
}
