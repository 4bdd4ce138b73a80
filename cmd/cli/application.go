package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/agents"
	"github.com/temirov/prflow/internal/commitmsg"
	"github.com/temirov/prflow/internal/openpr"
	"github.com/temirov/prflow/internal/review"
	"github.com/temirov/prflow/internal/squash"
	"github.com/temirov/prflow/internal/utils"
	pathutils "github.com/temirov/prflow/internal/utils/path"
	"github.com/temirov/prflow/internal/workflow"
)

const (
	applicationNameConstant                 = "prflow"
	applicationShortDescriptionConstant     = "Open, squash, and review GitHub pull requests from the command line"
	applicationLongDescriptionConstant      = "prflow drives git and the GitHub CLI through three flows: open-pr commits the current changes and opens a pull request, squash collapses a pull request branch into one commit that credits every author, and review asks an AI agent to review a pull request."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level (debug, info, warn, error)."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (console or structured)."
	repositoryFlagNameConstant              = "repository"
	repositoryFlagUsageConstant             = "Path inside the git repository to operate on."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	toolsConfigurationKeyConstant           = "tools"
	openPullRequestConfigurationKeyConstant = toolsConfigurationKeyConstant + ".open_pr"
	squashConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".squash"
	reviewConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".review"
	environmentPrefixConstant               = "PRFLOW"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	repositoryPathFieldConstant             = "repository_path"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	repositoryPathErrorTemplateConstant     = "invalid --repository: %v"
	loggerNotInitializedMessageConstant     = "logger not initialized"

	// ExitCodeSuccess is returned when the command completes.
	ExitCodeSuccess = 0
	// ExitCodeFailure is returned for execution and parse failures.
	ExitCodeFailure = 1
	// ExitCodeUsage is returned for invalid input and declined prompts.
	ExitCodeUsage = 2
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
	Agents map[string]agents.Settings     `mapstructure:"agents"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds per-subcommand configuration.
type ApplicationToolsConfiguration struct {
	OpenPR openpr.Configuration `mapstructure:"open_pr"`
	Squash squash.Configuration `mapstructure:"squash"`
	Review review.Configuration `mapstructure:"review"`
}

// ApplicationOption customizes an Application, mostly for tests.
type ApplicationOption func(*Application)

// WithCommandExecutor routes every git, gh, and agent invocation through executor.
func WithCommandExecutor(executor workflow.CommandExecutor) ApplicationOption {
	return func(application *Application) {
		application.executor = executor
	}
}

// WithAgentLookPath replaces the PATH lookup used to detect agent binaries.
func WithAgentLookPath(lookPath agents.LookPathFunc) ApplicationOption {
	return func(application *Application) {
		application.lookPath = lookPath
	}
}

// WithMessageEditor replaces the interactive commit message editor.
func WithMessageEditor(editor commitmsg.MessageEditor) ApplicationOption {
	return func(application *Application) {
		application.editor = editor
	}
}

// WithConfigurationSearchPaths replaces the directories searched for config.yaml.
func WithConfigurationSearchPaths(searchPaths ...string) ApplicationOption {
	return func(application *Application) {
		application.searchPaths = append([]string{}, searchPaths...)
	}
}

// WithStreams sets the standard streams of the command hierarchy.
func WithStreams(input io.Reader, output io.Writer, errorOutput io.Writer) ApplicationOption {
	return func(application *Application) {
		application.input = input
		application.output = output
		application.errorOutput = errorOutput
	}
}

// WithArguments replaces os.Args[1:] as the command-line arguments.
func WithArguments(arguments ...string) ApplicationOption {
	return func(application *Application) {
		application.arguments = append([]string{}, arguments...)
	}
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	repositoryFlagValue    string
	commandContextAccessor utils.CommandContextAccessor
	repositoryResolver     *pathutils.RepositoryPathResolver
	searchPaths            []string
	executor               workflow.CommandExecutor
	lookPath               agents.LookPathFunc
	editor                 commitmsg.MessageEditor
	input                  io.Reader
	output                 io.Writer
	errorOutput            io.Writer
	arguments              []string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication(options ...ApplicationOption) *Application {
	application := &Application{
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		repositoryResolver:     pathutils.NewRepositoryPathResolver(nil),
		searchPaths:            defaultConfigurationSearchPaths(),
	}
	for _, option := range options {
		if option != nil {
			option(application)
		}
	}

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.searchPaths,
	)
	application.configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetFlagErrorFunc(func(command *cobra.Command, flagError error) error {
		return utils.NewUsageError(flagError.Error())
	})
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.repositoryFlagValue, repositoryFlagNameConstant, defaultConfigurationSearchPathConstant, repositoryFlagUsageConstant)

	if application.input != nil {
		cobraCommand.SetIn(application.input)
	}
	if application.output != nil {
		cobraCommand.SetOut(application.output)
	}
	if application.errorOutput != nil {
		cobraCommand.SetErr(application.errorOutput)
	}
	if application.arguments != nil {
		cobraCommand.SetArgs(application.arguments)
	}

	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	agentSettingsProvider := func() map[string]agents.Settings {
		return application.configuration.Agents
	}

	openPullRequestBuilder := openpr.CommandBuilder{
		LoggerProvider:               loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() openpr.Configuration {
			return application.configuration.Tools.OpenPR
		},
		AgentSettingsProvider: agentSettingsProvider,
		Executor:              application.executor,
		LookPath:              application.lookPath,
		Editor:                application.editor,
	}
	openPullRequestCommand, openPullRequestBuildError := openPullRequestBuilder.Build()
	if openPullRequestBuildError == nil {
		cobraCommand.AddCommand(openPullRequestCommand)
	}

	squashBuilder := squash.CommandBuilder{
		LoggerProvider:               loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() squash.Configuration {
			return application.configuration.Tools.Squash
		},
		Executor: application.executor,
	}
	squashCommand, squashBuildError := squashBuilder.Build()
	if squashBuildError == nil {
		cobraCommand.AddCommand(squashCommand)
	}

	reviewBuilder := review.CommandBuilder{
		LoggerProvider:               loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() review.Configuration {
			return application.configuration.Tools.Review
		},
		AgentSettingsProvider: agentSettingsProvider,
		Executor:              application.executor,
		LookPath:              application.lookPath,
	}
	reviewCommand, reviewBuildError := reviewBuilder.Build()
	if reviewBuildError == nil {
		cobraCommand.AddCommand(reviewCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Configuration returns the configuration resolved by the last execution.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// ExitCode maps an execution error to the process exit status.
func ExitCode(executionError error) int {
	switch {
	case executionError == nil:
		return ExitCodeSuccess
	case utils.IsUsageError(executionError):
		return ExitCodeUsage
	default:
		return ExitCodeFailure
	}
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range openpr.DefaultConfigurationValues(openPullRequestConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range squash.DefaultConfigurationValues(squashConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range review.DefaultConfigurationValues(reviewConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	configurationFilePath, expandError := application.repositoryResolver.ExpandOptional(application.configurationFilePath)
	if expandError != nil {
		return utils.NewUsageError(fmt.Errorf(configurationLoadErrorTemplateConstant, expandError).Error())
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogLevel))),
		utils.LogFormat(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogFormat))),
	)
	if loggerCreationError != nil {
		return utils.NewUsageError(fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError).Error())
	}

	application.logger = logger

	repositoryPath, repositoryError := application.repositoryResolver.Resolve(application.repositoryFlagValue)
	if repositoryError != nil {
		return utils.NewUsageError(fmt.Sprintf(repositoryPathErrorTemplateConstant, repositoryError))
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(repositoryPathFieldConstant, repositoryPath),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithRepositoryPath(updatedContext, repositoryPath)
		command.SetContext(updatedContext)
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func defaultConfigurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, applicationNameConstant))
	}
	return searchPaths
}
