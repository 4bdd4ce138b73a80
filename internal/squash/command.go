package squash

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	flagutils "github.com/temirov/prflow/internal/utils/flags"
	"github.com/temirov/prflow/internal/workflow"
)

const (
	commandUseConstant              = "squash"
	commandShortDescriptionConstant = "Squash the pull request branch into one commit that credits every author"
	commandLongDescriptionConstant  = "squash rebases the current pull request branch onto the default branch, collapses its commits into a single commit titled after the pull request, adds a Co-authored-by trailer for every other author, and force-pushes with lease. --dry-run prints the plan and changes nothing."
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the tools.squash settings.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the squash command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	Executor                     workflow.CommandExecutor
}

// Build constructs the squash command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	flagutils.BindDryRunFlag(command, false)
	command.Flags().String(flagutils.RemoteFlagName, defaultRemoteNameConstant, flagutils.RemoteFlagUsage)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration(command)

	environment, environmentError := workflow.NewEnvironment(workflow.EnvironmentOptions{
		Logger:               builder.resolveLogger(),
		Executor:             builder.Executor,
		HumanReadableLogging: builder.humanReadableLogging(),
		Output:               command.OutOrStdout(),
	})
	if environmentError != nil {
		return environmentError
	}

	service, serviceError := NewService(environment)
	if serviceError != nil {
		return serviceError
	}

	dryRun, _ := command.Flags().GetBool(flagutils.DryRunFlagName)
	_, runError := service.Run(command.Context(), Options{
		RepositoryPath: workflow.RepositoryPath(command.Context()),
		Remote:         configuration.Remote,
		DryRun:         dryRun,
	})
	return runError
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	if flagutils.FlagChanged(command, flagutils.RemoteFlagName) {
		configuration.Remote = flagutils.FlagValue(command, flagutils.RemoteFlagName)
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

func (builder *CommandBuilder) humanReadableLogging() bool {
	return builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
}
