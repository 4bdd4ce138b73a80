package openpr

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/agents"
	"github.com/temirov/prflow/internal/commitmsg"
	"github.com/temirov/prflow/internal/ui"
	"github.com/temirov/prflow/internal/utils"
	flagutils "github.com/temirov/prflow/internal/utils/flags"
	"github.com/temirov/prflow/internal/workflow"
)

const (
	commandUseConstant              = "open-pr"
	commandShortDescriptionConstant = "Commit the current changes on a new branch and open a pull request"
	commandLongDescriptionConstant  = "open-pr commits the staged index (or every working tree change when nothing is staged) on a branch named after the commit message, pushes it, and opens a pull request against the default branch. Without --message an AI agent suggests the message for interactive confirmation."
	messageFlagNameConstant         = "message"
	messageFlagShorthandConstant    = "m"
	messageFlagUsageConstant        = "Commit message; the first line becomes the pull request title"
	draftFlagNameConstant           = "draft"
	draftFlagUsageConstant          = "Open the pull request as a draft"
	webFlagNameConstant             = "web"
	webFlagUsageConstant            = "Open the pull request in the browser afterwards"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the tools.open_pr settings.
type ConfigurationProvider func() Configuration

// AgentSettingsProvider supplies the per-agent settings.
type AgentSettingsProvider func() map[string]agents.Settings

// CommandBuilder assembles the open-pr command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	AgentSettingsProvider        AgentSettingsProvider
	Executor                     workflow.CommandExecutor
	LookPath                     agents.LookPathFunc
	Editor                       commitmsg.MessageEditor
}

// Build constructs the open-pr command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().StringP(messageFlagNameConstant, messageFlagShorthandConstant, "", messageFlagUsageConstant)
	command.Flags().Bool(draftFlagNameConstant, false, draftFlagUsageConstant)
	command.Flags().Bool(webFlagNameConstant, false, webFlagUsageConstant)
	command.Flags().String(flagutils.RemoteFlagName, defaultRemoteNameConstant, flagutils.RemoteFlagUsage)
	flagutils.BindAgentFlags(command, flagutils.AgentFlagValues{Agent: agents.AgentCopilot}, agents.SupportedAgentNames())

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration(command)
	logger := builder.resolveLogger()

	environment, environmentError := workflow.NewEnvironment(workflow.EnvironmentOptions{
		Logger:               logger,
		Executor:             builder.Executor,
		HumanReadableLogging: builder.humanReadableLogging(),
		AgentSettings:        builder.resolveAgentSettings(),
		LookPath:             builder.LookPath,
		Output:               command.OutOrStdout(),
	})
	if environmentError != nil {
		return environmentError
	}

	if _, lookupError := environment.AgentRunner.Registry().Lookup(configuration.Agent); lookupError != nil {
		return utils.NewUsageError(lookupError.Error())
	}

	generator := agents.NewCommitMessageGenerator(environment.AgentRunner, configuration.Agent, configuration.Model)
	deriver, deriverError := commitmsg.NewDeriver(logger, environment.RepositoryManager, generator, builder.resolveEditor(command))
	if deriverError != nil {
		return deriverError
	}

	service, serviceError := NewService(environment, deriver)
	if serviceError != nil {
		return serviceError
	}

	message, _ := command.Flags().GetString(messageFlagNameConstant)
	_, runError := service.Run(command.Context(), Options{
		RepositoryPath: workflow.RepositoryPath(command.Context()),
		Message:        message,
		Remote:         configuration.Remote,
		Draft:          configuration.Draft,
		OpenInBrowser:  configuration.OpenInBrowser,
	})
	return runError
}

// resolveConfiguration overlays explicitly supplied flags on top of the configured values.
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
	if flagutils.FlagChanged(command, flagutils.RemoteFlagName) {
		configuration.Remote = flagutils.FlagValue(command, flagutils.RemoteFlagName)
	}
	if flagutils.FlagChanged(command, draftFlagNameConstant) {
		configuration.Draft, _ = command.Flags().GetBool(draftFlagNameConstant)
	}
	if flagutils.FlagChanged(command, webFlagNameConstant) {
		configuration.OpenInBrowser, _ = command.Flags().GetBool(webFlagNameConstant)
	}

	return configuration.sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveAgentSettings() map[string]agents.Settings {
	if builder.AgentSettingsProvider == nil {
		return nil
	}
	return builder.AgentSettingsProvider()
}

func (builder *CommandBuilder) resolveEditor(command *cobra.Command) commitmsg.MessageEditor {
	if builder.Editor != nil {
		return builder.Editor
	}
	return ui.NewLineEditor(command.InOrStdin(), command.ErrOrStderr())
}
