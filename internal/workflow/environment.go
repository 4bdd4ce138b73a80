package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/agents"
	"github.com/temirov/prflow/internal/execshell"
	"github.com/temirov/prflow/internal/githubcli"
	"github.com/temirov/prflow/internal/gitrepo"
	"github.com/temirov/prflow/internal/ui"
	"github.com/temirov/prflow/internal/utils"
)

const (
	// StagePrepareRepository resolves the repository root and the gh default repository.
	StagePrepareRepository = "prepare-repository"

	currentDirectoryConstant              = "."
	upstreamRemoteNameConstant            = "upstream"
	originRemoteNameConstant              = "origin"
	defaultRepositorySetLogConstant       = "Configured gh default repository"
	defaultRepositoryFieldConstant        = "repository"
	remoteFieldConstant                   = "remote"
	missingRemoteErrorTemplateConstant    = "no %s or %s remote configured"
	remoteResolutionErrorTemplateConstant = "resolve default repository from %s: %w"
)

// CommandExecutor runs every external command prflow needs.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteAgent(executionContext context.Context, executable string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// EnvironmentOptions configures NewEnvironment.
type EnvironmentOptions struct {
	Logger               *zap.Logger
	Executor             CommandExecutor
	HumanReadableLogging bool
	AgentSettings        map[string]agents.Settings
	LookPath             agents.LookPathFunc
	Output               io.Writer
}

// Environment exposes shared collaborators to the command flows.
type Environment struct {
	Logger            *zap.Logger
	RepositoryManager *gitrepo.RepositoryManager
	GitHubClient      *githubcli.Client
	AgentRunner       *agents.Runner
	Output            io.Writer
}

// NewEnvironment wires the git, gh, and agent facades over one executor. When options.Executor is nil
// a ShellExecutor over the operating system is created, reporting progress lines in console mode.
func NewEnvironment(options EnvironmentOptions) (*Environment, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	executor := options.Executor
	if executor == nil {
		executorOptions := []execshell.ShellExecutorOption{}
		if options.HumanReadableLogging {
			executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)))
		}
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), executorOptions...)
		if executorError != nil {
			return nil, executorError
		}
		executor = shellExecutor
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return nil, managerError
	}

	gitHubClient, clientError := githubcli.NewClient(executor)
	if clientError != nil {
		return nil, clientError
	}

	registryOptions := []agents.RegistryOption{agents.WithSettings(options.AgentSettings)}
	if options.LookPath != nil {
		registryOptions = append(registryOptions, agents.WithLookPath(options.LookPath))
	}
	registry, registryError := agents.NewRegistry(registryOptions...)
	if registryError != nil {
		return nil, registryError
	}

	agentRunner, runnerError := agents.NewRunner(executor, registry)
	if runnerError != nil {
		return nil, runnerError
	}

	output := options.Output
	if output == nil {
		output = os.Stdout
	}

	return &Environment{
		Logger:            logger,
		RepositoryManager: repositoryManager,
		GitHubClient:      gitHubClient,
		AgentRunner:       agentRunner,
		Output:            output,
	}, nil
}

// PrepareRepository returns the repository root containing workingDirectory and makes sure gh has a
// default repository, preferring the upstream remote over origin.
func (environment *Environment) PrepareRepository(executionContext context.Context, workingDirectory string) (string, error) {
	repositoryRoot, rootError := environment.RepositoryManager.RepositoryRoot(executionContext, workingDirectory)
	if rootError != nil {
		return "", rootError
	}

	configured, viewError := environment.GitHubClient.DefaultRepositoryConfigured(executionContext, repositoryRoot)
	if viewError != nil {
		return "", viewError
	}
	if configured {
		return repositoryRoot, nil
	}

	remotes, remotesError := environment.RepositoryManager.Remotes(executionContext, repositoryRoot)
	if remotesError != nil {
		return "", remotesError
	}
	remoteName, remoteFound := preferredRemote(remotes)
	if !remoteFound {
		return "", fmt.Errorf(missingRemoteErrorTemplateConstant, upstreamRemoteNameConstant, originRemoteNameConstant)
	}

	remoteURL, urlError := environment.RepositoryManager.RemoteURL(executionContext, repositoryRoot, remoteName)
	if urlError != nil {
		return "", urlError
	}
	remoteRepository, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		return "", fmt.Errorf(remoteResolutionErrorTemplateConstant, remoteName, parseError)
	}

	if setError := environment.GitHubClient.SetDefaultRepository(executionContext, repositoryRoot, remoteRepository.NameWithOwner()); setError != nil {
		return "", setError
	}
	environment.Logger.Info(defaultRepositorySetLogConstant,
		zap.String(defaultRepositoryFieldConstant, remoteRepository.NameWithOwner()),
		zap.String(remoteFieldConstant, remoteName),
	)
	return repositoryRoot, nil
}

// RepositoryPath returns the working directory recorded by the root command, or the current directory.
func RepositoryPath(executionContext context.Context) string {
	repositoryPath, found := utils.NewCommandContextAccessor().RepositoryPath(executionContext)
	if !found || len(strings.TrimSpace(repositoryPath)) == 0 {
		return currentDirectoryConstant
	}
	return repositoryPath
}

func preferredRemote(remotes []string) (string, bool) {
	originPresent := false
	for _, remote := range remotes {
		switch remote {
		case upstreamRemoteNameConstant:
			return upstreamRemoteNameConstant, true
		case originRemoteNameConstant:
			originPresent = true
		}
	}
	if originPresent {
		return originRemoteNameConstant, true
	}
	return "", false
}
