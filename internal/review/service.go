package review

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/agents"
	"github.com/temirov/prflow/internal/githubcli"
	"github.com/temirov/prflow/internal/gitrepo"
	"github.com/temirov/prflow/internal/utils"
	pathutils "github.com/temirov/prflow/internal/utils/path"
	"github.com/temirov/prflow/internal/workflow"
)

// Stage names of the review sequence.
const (
	StageResolvePullRequestURL = "resolve-pr-url"
	StageSelectAgent           = "select-agent"
	StageSelectModel           = "select-model"
	StageCollectContext        = "collect-context"
	StageInvokeAgent           = "invoke-agent"
)

const (
	sequenceNameConstant               = "review"
	promptTemplateReadTemplateConstant = "read review prompt template %s: %v"
	missingPullRequestTemplateConstant = "no pull request URL given and branch %q has no open pull request"
	detachedHeadMessageConstant        = "no pull request URL given and HEAD is detached"
	reviewStartedLogMessageConstant    = "Requesting pull request review"
	pullRequestFieldNameConstant       = "pull_request"
	agentFieldNameConstant             = "agent"
	modelFieldNameConstant             = "model"
	environmentMissingMessageConstant  = "review environment not configured"
)

// ErrEnvironmentNotConfigured indicates the service was built without an environment.
var ErrEnvironmentNotConfigured = errors.New(environmentMissingMessageConstant)

// Options configures one review run. An empty PullRequestURL selects the pull request of the current branch.
type Options struct {
	RepositoryPath     string
	PullRequestURL     string
	Agent              string
	Model              string
	PromptTemplatePath string
}

// Result reports the resolved review request and the agent output.
type Result struct {
	Trace          workflow.Trace
	PullRequestURL string
	Agent          string
	Model          string
	Prompt         string
	Review         string
}

// Service runs the review sequence.
type Service struct {
	environment  *workflow.Environment
	pathExpander *pathutils.UserPathExpander
}

// NewService constructs the review service.
func NewService(environment *workflow.Environment) (*Service, error) {
	if environment == nil {
		return nil, ErrEnvironmentNotConfigured
	}
	return &Service{environment: environment, pathExpander: pathutils.NewUserPathExpander()}, nil
}

// Run resolves the pull request and agent, builds the prompt, and streams the agent's review to the environment output.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	run := &reviewRun{service: service, options: options}

	sequence := workflow.NewSequence(sequenceNameConstant, service.environment.Logger,
		workflow.Stage{Name: workflow.StagePrepareRepository, Run: run.prepareRepository},
		workflow.Stage{Name: StageResolvePullRequestURL, Run: run.resolvePullRequestURL},
		workflow.Stage{Name: StageSelectAgent, Run: run.selectAgent},
		workflow.Stage{Name: StageSelectModel, Run: run.selectModel},
		workflow.Stage{Name: StageCollectContext, Run: run.collectContext},
		workflow.Stage{Name: StageInvokeAgent, Run: run.invokeAgent},
	)

	trace, sequenceError := sequence.Run(executionContext)
	run.result.Trace = trace
	return run.result, sequenceError
}

type reviewRun struct {
	service        *Service
	options        Options
	repositoryRoot string
	definition     agents.Definition
	result         Result
}

func (run *reviewRun) environment() *workflow.Environment {
	return run.service.environment
}

func (run *reviewRun) prepareRepository(executionContext context.Context) error {
	repositoryRoot, prepareError := run.environment().PrepareRepository(executionContext, run.options.RepositoryPath)
	if prepareError != nil {
		return prepareError
	}
	run.repositoryRoot = repositoryRoot
	return nil
}

func (run *reviewRun) resolvePullRequestURL(executionContext context.Context) error {
	candidate := strings.TrimSpace(run.options.PullRequestURL)
	if len(candidate) > 0 {
		reference, parseError := githubcli.ParsePullRequestURL(candidate)
		if parseError != nil {
			return utils.NewUsageError(parseError.Error())
		}
		run.result.PullRequestURL = reference.URL()
		return nil
	}

	environment := run.environment()
	branch, branchError := environment.RepositoryManager.CurrentBranch(executionContext, run.repositoryRoot)
	if errors.Is(branchError, gitrepo.ErrDetachedHead) {
		return utils.NewUsageError(detachedHeadMessageConstant)
	}
	if branchError != nil {
		return branchError
	}

	pullRequest, found, findError := environment.GitHubClient.FindOpenPullRequestForBranch(executionContext, run.repositoryRoot, branch)
	if findError != nil {
		return findError
	}
	if !found {
		return utils.NewUsageError(fmt.Sprintf(missingPullRequestTemplateConstant, branch))
	}
	run.result.PullRequestURL = pullRequest.URL
	return nil
}

func (run *reviewRun) selectAgent(context.Context) error {
	registry := run.environment().AgentRunner.Registry()
	if availabilityError := registry.CheckAvailable(run.options.Agent); availabilityError != nil {
		var unknownAgent agents.UnknownAgentError
		var unavailableAgent agents.UnavailableAgentError
		if errors.As(availabilityError, &unknownAgent) || errors.As(availabilityError, &unavailableAgent) {
			return utils.NewUsageError(availabilityError.Error())
		}
		return availabilityError
	}

	definition, lookupError := registry.Lookup(run.options.Agent)
	if lookupError != nil {
		return lookupError
	}
	run.definition = definition
	run.result.Agent = definition.Name
	return nil
}

func (run *reviewRun) selectModel(context.Context) error {
	run.result.Model = strings.TrimSpace(run.options.Model)
	if len(run.result.Model) == 0 {
		run.result.Model = run.definition.DefaultModel(agents.TaskReview)
	}
	return nil
}

func (run *reviewRun) collectContext(executionContext context.Context) error {
	promptTemplate, templateError := run.service.loadPromptTemplate(run.options.PromptTemplatePath)
	if templateError != nil {
		return templateError
	}

	client := run.environment().GitHubClient
	pullRequestURL := run.result.PullRequestURL

	metadata, metadataError := client.PullRequestMetadata(executionContext, run.repositoryRoot, pullRequestURL, nil)
	if metadataError != nil {
		return metadataError
	}
	commits, commitsError := client.ListPullRequestCommits(executionContext, run.repositoryRoot, pullRequestURL)
	if commitsError != nil {
		return commitsError
	}
	diff, diffError := client.PullRequestDiff(executionContext, run.repositoryRoot, pullRequestURL)
	if diffError != nil {
		return diffError
	}

	reviewCommits := make([]agents.ReviewCommit, 0, len(commits))
	for _, commit := range commits {
		reviewCommits = append(reviewCommits, agents.ReviewCommit{Hash: commit.OID, Headline: commit.MessageHeadline})
	}

	prompt, promptError := agents.ReviewPrompt(promptTemplate, agents.ReviewContext{
		PullRequestURL: pullRequestURL,
		Metadata:       metadata,
		Commits:        reviewCommits,
		Diff:           diff,
	})
	if promptError != nil {
		return utils.NewUsageError(promptError.Error())
	}
	run.result.Prompt = prompt
	return nil
}

func (run *reviewRun) invokeAgent(executionContext context.Context) error {
	environment := run.environment()
	environment.Logger.Info(reviewStartedLogMessageConstant,
		zap.String(pullRequestFieldNameConstant, run.result.PullRequestURL),
		zap.String(agentFieldNameConstant, run.result.Agent),
		zap.String(modelFieldNameConstant, run.result.Model),
	)

	response, runError := environment.AgentRunner.Run(executionContext, agents.Request{
		Agent:            run.result.Agent,
		Task:             agents.TaskReview,
		Model:            run.result.Model,
		Prompt:           run.result.Prompt,
		WorkingDirectory: run.repositoryRoot,
		OutputStream:     environment.Output,
	})
	if runError != nil {
		return runError
	}
	run.result.Review = response.Text
	return nil
}

// loadPromptTemplate reads the configured template file. An empty path selects the built-in template.
func (service *Service) loadPromptTemplate(templatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(templatePath)
	if len(trimmedPath) == 0 {
		return agents.DefaultReviewPromptTemplate, nil
	}
	resolvedPath, expandError := service.pathExpander.Expand(trimmedPath)
	if expandError != nil {
		return "", utils.NewUsageError(expandError.Error())
	}
	contents, readError := os.ReadFile(resolvedPath)
	if readError != nil {
		return "", utils.NewUsageError(fmt.Sprintf(promptTemplateReadTemplateConstant, resolvedPath, readError))
	}
	return string(contents), nil
}
