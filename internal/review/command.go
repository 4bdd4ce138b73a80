package review

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/agents"
	flagutils "github.com/temirov/prflow/internal/utils/flags"
	"github.com/temirov/prflow/internal/workflow"
)

const (
	commandUseConstant              = "review [pr-url]"
	commandShortDescriptionConstant = "Ask an AI agent to review a pull request"
	commandLongDescriptionConstant  = "review collects the pull request metadata, commits, and diff, renders them into the review prompt, and streams the agent's answer. Without a URL the pull request of the current branch is reviewed."
	maximumArgumentsConstant        = 1
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the tools.review settings.
type ConfigurationProvider func() Configuration

// AgentSettingsProvider supplies the per-agent settings.
type AgentSettingsProvider func() map[string]agents.Settings

// CommandBuilder assembles the review command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	AgentSettingsProvider        AgentSettingsProvider
	Executor                     workflow.CommandExecutor
	LookPath                     agents.LookPathFunc
}

// Build constructs the review command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(maximumArgumentsConstant),
		RunE:  builder.run,
	}

	flagutils.BindAgentFlags(command, flagutils.AgentFlagValues{Agent: agents.AgentCopilot}, agents.SupportedAgentNames())

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration(command)

	var agentSettings map[string]agents.Settings
	if builder.AgentSettingsProvider != nil {
		agentSettings = builder.AgentSettingsProvider()
	}

	environment, environmentError := workflow.NewEnvironment(workflow.EnvironmentOptions{
		Logger:               builder.resolveLogger(),
		Executor:             builder.Executor,
		HumanReadableLogging: builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider(),
		AgentSettings:        agentSettings,
		LookPath:             builder.LookPath,
		Output:               command.OutOrStdout(),
	})
	if environmentError != nil {
		return environmentError
	}

	service, serviceError := NewService(environment)
	if serviceError != nil {
		return serviceError
	}

	var pullRequestURL string
	if len(arguments) > 0 {
		pullRequestURL = arguments[0]
	}

	_, runError := service.Run(command.Context(), Options{
		RepositoryPath:     workflow.RepositoryPath(command.Context()),
		PullRequestURL:     pullRequestURL,
		Agent:              configuration.Agent,
		Model:              configuration.Model,
		PromptTemplatePath: configuration.PromptTemplate,
	})
	return runError
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	if flagutils.FlagChanged(command, flagutils.AgentFlagName) {
		configuration.Agent = flagutils.FlagValue(command, flagutils.AgentFlagName)
	}
	if flagutils.FlagChanged(command, flagutils.ModelFlagName) {
		configuration.Model = flagutils.FlagValue(command, flagutils.ModelFlagName)
	}
	return configuration.sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	if logger := builder.LoggerProvider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}
