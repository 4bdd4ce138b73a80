package openpr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/commitmsg"
	"github.com/temirov/prflow/internal/githubcli"
	"github.com/temirov/prflow/internal/gitrepo"
	"github.com/temirov/prflow/internal/utils"
	"github.com/temirov/prflow/internal/workflow"
)

// Stage names of the open-pr sequence.
const (
	StageDetermineChangeset = "determine-changeset"
	StageDeriveMessage      = "derive-message"
	StageCreateBranch       = "create-branch"
	StageCommit             = "commit"
	StagePush               = "push"
	StageCreatePullRequest  = "create-pr"
)

const (
	sequenceNameConstant                   = "open-pr"
	noChangesMessageConstant               = "nothing to commit: the working tree has no changes"
	defaultBranchCollisionTemplateConstant = "branch %q is the default branch; use a different commit message"
	localBranchExistsTemplateConstant      = "branch %q already exists locally; use a different commit message or delete the branch"
	remoteBranchExistsTemplateConstant     = "branch %q already exists on %s; use a different commit message or delete the remote branch"
	committingStagedFilesLogConstant       = "Committing staged files as-is"
	stagingChangedFilesLogConstant         = "Staging every working tree change"
	branchCreatedLogConstant               = "Created branch from the default branch"
	pullRequestReusedLogConstant           = "Reusing open pull request"
	pullRequestCreatedLogConstant          = "Created pull request"
	fileCountFieldNameConstant             = "files"
	branchFieldNameConstant                = "branch"
	defaultBranchFieldNameConstant         = "default_branch"
	pullRequestURLFieldNameConstant        = "pull_request"
	pullRequestOutputTemplateConstant      = "%s\n"
	environmentMissingMessageConstant      = "open-pr environment not configured"
	messageDeriverMissingMessageConstant   = "open-pr commit message deriver not configured"
)

// ErrEnvironmentNotConfigured indicates the service was built without an environment.
var ErrEnvironmentNotConfigured = errors.New(environmentMissingMessageConstant)

// ErrDeriverNotConfigured indicates the service was built without a commit message deriver.
var ErrDeriverNotConfigured = errors.New(messageDeriverMissingMessageConstant)

// Options configures one open-pr run.
type Options struct {
	RepositoryPath string
	Message        string
	Remote         string
	Draft          bool
	OpenInBrowser  bool
}

// Result reports what open-pr did.
type Result struct {
	Trace          workflow.Trace
	Message        commitmsg.Message
	BranchName     string
	BaseBranch     string
	StagedAsIs     bool
	PullRequest    githubcli.PullRequest
	ReusedExisting bool
}

// Service runs the open-pr sequence.
type Service struct {
	environment *workflow.Environment
	deriver     *commitmsg.Deriver
}

// NewService constructs the open-pr service.
func NewService(environment *workflow.Environment, deriver *commitmsg.Deriver) (*Service, error) {
	if environment == nil {
		return nil, ErrEnvironmentNotConfigured
	}
	if deriver == nil {
		return nil, ErrDeriverNotConfigured
	}
	return &Service{environment: environment, deriver: deriver}, nil
}

// Run commits, pushes, and opens the pull request. The returned Result always carries the trace,
// including on failure.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	run := &openPullRequestRun{
		environment: service.environment,
		deriver:     service.deriver,
		options:     options,
	}
	if len(strings.TrimSpace(run.options.Remote)) == 0 {
		run.options.Remote = defaultRemoteNameConstant
	}

	sequence := workflow.NewSequence(sequenceNameConstant, service.environment.Logger,
		workflow.Stage{Name: workflow.StagePrepareRepository, Run: run.prepareRepository},
		workflow.Stage{Name: StageDetermineChangeset, Run: run.determineChangeset},
		workflow.Stage{Name: StageDeriveMessage, Run: run.deriveMessage},
		workflow.Stage{Name: StageCreateBranch, Run: run.createBranch},
		workflow.Stage{Name: StageCommit, Run: run.commit},
		workflow.Stage{Name: StagePush, Run: run.push},
		workflow.Stage{Name: StageCreatePullRequest, Run: run.createPullRequest},
	)

	trace, sequenceError := sequence.Run(executionContext)
	run.result.Trace = trace
	return run.result, sequenceError
}

type openPullRequestRun struct {
	environment    *workflow.Environment
	deriver        *commitmsg.Deriver
	options        Options
	repositoryRoot string
	changedFiles   []string
	result         Result
}

func (run *openPullRequestRun) prepareRepository(executionContext context.Context) error {
	repositoryRoot, prepareError := run.environment.PrepareRepository(executionContext, run.options.RepositoryPath)
	if prepareError != nil {
		return prepareError
	}
	run.repositoryRoot = repositoryRoot
	return nil
}

func (run *openPullRequestRun) determineChangeset(executionContext context.Context) error {
	manager := run.environment.RepositoryManager

	stagedFiles, stagedError := manager.StagedFiles(executionContext, run.repositoryRoot)
	if stagedError != nil {
		return stagedError
	}
	if len(stagedFiles) > 0 {
		run.result.StagedAsIs = true
		run.environment.Logger.Info(committingStagedFilesLogConstant, zap.Int(fileCountFieldNameConstant, len(stagedFiles)))
		return nil
	}

	changedFiles, changedError := manager.ChangedFiles(executionContext, run.repositoryRoot)
	if changedError != nil {
		return changedError
	}
	if len(changedFiles) == 0 {
		return utils.NewUsageError(noChangesMessageConstant)
	}
	run.changedFiles = changedFiles
	run.environment.Logger.Info(stagingChangedFilesLogConstant, zap.Int(fileCountFieldNameConstant, len(changedFiles)))
	return nil
}

func (run *openPullRequestRun) deriveMessage(executionContext context.Context) error {
	derivation, deriveError := run.deriver.Derive(executionContext, commitmsg.DeriveRequest{
		ExplicitMessage: run.options.Message,
		RepositoryPath:  run.repositoryRoot,
	})
	if deriveError != nil {
		return deriveError
	}
	run.result.Message = derivation.Message
	run.result.BranchName = derivation.BranchName
	return nil
}

func (run *openPullRequestRun) createBranch(executionContext context.Context) error {
	manager := run.environment.RepositoryManager
	branchName := run.result.BranchName

	defaultBranch, defaultBranchError := run.environment.GitHubClient.DefaultBranch(executionContext, run.repositoryRoot)
	if defaultBranchError != nil {
		return defaultBranchError
	}
	run.result.BaseBranch = defaultBranch
	if branchName == defaultBranch {
		return utils.NewUsageError(fmt.Sprintf(defaultBranchCollisionTemplateConstant, branchName))
	}

	existsLocally, localError := manager.BranchExistsLocally(executionContext, run.repositoryRoot, branchName)
	if localError != nil {
		return localError
	}
	if existsLocally {
		return utils.NewUsageError(fmt.Sprintf(localBranchExistsTemplateConstant, branchName))
	}

	existsRemotely, remoteError := manager.BranchExistsRemotely(executionContext, run.repositoryRoot, run.options.Remote, branchName)
	if remoteError != nil {
		return remoteError
	}
	if existsRemotely {
		return utils.NewUsageError(fmt.Sprintf(remoteBranchExistsTemplateConstant, branchName, run.options.Remote))
	}

	currentBranch, currentBranchError := manager.CurrentBranch(executionContext, run.repositoryRoot)
	if currentBranchError != nil && !errors.Is(currentBranchError, gitrepo.ErrDetachedHead) {
		return currentBranchError
	}
	if currentBranch != defaultBranch {
		if checkoutError := manager.CheckoutBranch(executionContext, run.repositoryRoot, defaultBranch); checkoutError != nil {
			return checkoutError
		}
	}
	if pullError := manager.Pull(executionContext, run.repositoryRoot, true); pullError != nil {
		return pullError
	}
	if createError := manager.CreateBranch(executionContext, run.repositoryRoot, branchName); createError != nil {
		return createError
	}

	run.environment.Logger.Info(branchCreatedLogConstant,
		zap.String(branchFieldNameConstant, branchName),
		zap.String(defaultBranchFieldNameConstant, defaultBranch),
	)
	return nil
}

func (run *openPullRequestRun) commit(executionContext context.Context) error {
	manager := run.environment.RepositoryManager
	if !run.result.StagedAsIs {
		if stageError := manager.StageFiles(executionContext, run.repositoryRoot, run.changedFiles); stageError != nil {
			return stageError
		}
	}
	return manager.Commit(executionContext, run.repositoryRoot, run.result.Message.String())
}

func (run *openPullRequestRun) push(executionContext context.Context) error {
	return run.environment.RepositoryManager.Push(executionContext, run.repositoryRoot, gitrepo.PushOptions{
		Remote:      run.options.Remote,
		Branch:      run.result.BranchName,
		SetUpstream: true,
	})
}

func (run *openPullRequestRun) createPullRequest(executionContext context.Context) error {
	client := run.environment.GitHubClient

	existing, found, findError := client.FindOpenPullRequestForBranch(executionContext, run.repositoryRoot, run.result.BranchName)
	if findError != nil {
		return findError
	}

	if found {
		run.result.PullRequest = existing
		run.result.ReusedExisting = true
		run.environment.Logger.Info(pullRequestReusedLogConstant, zap.String(pullRequestURLFieldNameConstant, existing.URL))
	} else {
		created, createError := client.CreatePullRequest(executionContext, run.repositoryRoot, githubcli.PullRequestCreateOptions{
			Title:      run.result.Message.Title,
			Body:       run.result.Message.Body,
			BaseBranch: run.result.BaseBranch,
			HeadBranch: run.result.BranchName,
			Draft:      run.options.Draft,
		})
		if createError != nil {
			return createError
		}
		run.result.PullRequest = created
		run.environment.Logger.Info(pullRequestCreatedLogConstant, zap.String(pullRequestURLFieldNameConstant, created.URL))
	}

	if run.options.OpenInBrowser {
		if browserError := client.OpenPullRequestInBrowser(executionContext, run.repositoryRoot, run.result.PullRequest.URL); browserError != nil {
			return browserError
		}
	}

	_, writeError := fmt.Fprintf(run.environment.Output, pullRequestOutputTemplateConstant, run.result.PullRequest.URL)
	return writeError
}
