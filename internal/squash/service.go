package squash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/commitmsg"
	"github.com/temirov/prflow/internal/githubcli"
	"github.com/temirov/prflow/internal/gitrepo"
	"github.com/temirov/prflow/internal/utils"
	"github.com/temirov/prflow/internal/workflow"
)

// Stage names of the squash sequence.
const (
	StageVerifyCleanWorktree  = "verify-clean-worktree"
	StageLocateOpenPR         = "locate-open-pr"
	StageResolveDefaultBranch = "resolve-default-branch"
	StageFetchDefaultBranch   = "fetch-default-branch"
	StageListOriginalAuthors  = "list-original-authors"
	StageComposeMessage       = "compose-message"
	StagePreview              = "preview"
	StageRebaseOntoDefault    = "rebase-onto-default"
	StageSquashCommits        = "squash-commits"
	StageForcePush            = "force-push"
)

const (
	sequenceNameConstant               = "squash"
	dirtyWorktreeMessageConstant       = "working tree has uncommitted changes; commit or stash them before squashing"
	detachedHeadMessageConstant        = "HEAD is detached; switch to the pull request branch first"
	missingPullRequestTemplateConstant = "no open pull request for branch %q"
	defaultBranchTemplateConstant      = "you are on the default branch %q; switch to a pull request branch to squash"
	nothingToSquashTemplateConstant    = "Nothing to squash: %s has no commits beyond %s\n"
	previewCommitsHeaderConstant       = "Commits that would be squashed:\n"
	previewCommitLineTemplateConstant  = "%2d. %s %s (by %s)\n"
	previewMessageHeaderConstant       = "\nResulting commit message:\n"
	previewMessageTemplateConstant     = "%s\n"
	previewCoAuthorsTemplateConstant   = "\nCo-authors detected: %d\n"
	previewFooterConstant              = "\nRun without --dry-run to squash.\n"
	shortHashLengthConstant            = 7
	squashedLogMessageConstant         = "Squashed pull request commits"
	nothingToSquashLogMessageConstant  = "Nothing to squash"
	branchFieldNameConstant            = "branch"
	commitCountFieldNameConstant       = "commits"
	coAuthorCountFieldNameConstant     = "co_authors"
	pullRequestFieldNameConstant       = "pull_request"
	environmentMissingMessageConstant  = "squash environment not configured"
)

// ErrEnvironmentNotConfigured indicates the service was built without an environment.
var ErrEnvironmentNotConfigured = errors.New(environmentMissingMessageConstant)

// Options configures one squash run.
type Options struct {
	RepositoryPath string
	Remote         string
	DryRun         bool
}

// Result reports what squash did or, for a dry run, would do.
type Result struct {
	Trace         workflow.Trace
	Branch        string
	DefaultBranch string
	PullRequest   githubcli.PullRequest
	Commits       []gitrepo.Commit
	CoAuthors     []commitmsg.CoAuthor
	Message       string
}

// Service runs the squash sequence.
type Service struct {
	environment *workflow.Environment
}

// NewService constructs the squash service.
func NewService(environment *workflow.Environment) (*Service, error) {
	if environment == nil {
		return nil, ErrEnvironmentNotConfigured
	}
	return &Service{environment: environment}, nil
}

// Run squashes the pull request branch. A dry run stops after printing the preview and changes nothing.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	run := &squashRun{environment: service.environment, options: options}
	if len(strings.TrimSpace(run.options.Remote)) == 0 {
		run.options.Remote = defaultRemoteNameConstant
	}

	stages := []workflow.Stage{
		{Name: workflow.StagePrepareRepository, Run: run.prepareRepository},
		{Name: StageVerifyCleanWorktree, Run: run.verifyCleanWorktree},
		{Name: StageLocateOpenPR, Run: run.locateOpenPullRequest},
		{Name: StageResolveDefaultBranch, Run: run.resolveDefaultBranch},
		{Name: StageFetchDefaultBranch, Run: run.fetchDefaultBranch},
		{Name: StageListOriginalAuthors, Run: run.listOriginalAuthors},
		{Name: StageComposeMessage, Run: run.composeMessage},
	}
	if options.DryRun {
		stages = append(stages, workflow.Stage{Name: StagePreview, Run: run.preview})
	} else {
		stages = append(stages,
			workflow.Stage{Name: StageRebaseOntoDefault, Run: run.rebaseOntoDefault},
			workflow.Stage{Name: StageSquashCommits, Run: run.squashCommits},
			workflow.Stage{Name: StageForcePush, Run: run.forcePush},
		)
	}

	trace, sequenceError := workflow.NewSequence(sequenceNameConstant, service.environment.Logger, stages...).Run(executionContext)
	run.result.Trace = trace
	return run.result, sequenceError
}

type squashRun struct {
	environment    *workflow.Environment
	options        Options
	repositoryRoot string
	result         Result
}

func (run *squashRun) upstreamDefaultBranch() string {
	return gitrepo.RemoteBranchReference(run.options.Remote, run.result.DefaultBranch)
}

func (run *squashRun) prepareRepository(executionContext context.Context) error {
	repositoryRoot, prepareError := run.environment.PrepareRepository(executionContext, run.options.RepositoryPath)
	if prepareError != nil {
		return prepareError
	}
	run.repositoryRoot = repositoryRoot
	return nil
}

func (run *squashRun) verifyCleanWorktree(executionContext context.Context) error {
	cleanError := run.environment.RepositoryManager.CheckCleanWorktree(executionContext, run.repositoryRoot)
	if errors.Is(cleanError, gitrepo.ErrDirtyWorktree) {
		return utils.NewUsageError(dirtyWorktreeMessageConstant)
	}
	return cleanError
}

func (run *squashRun) locateOpenPullRequest(executionContext context.Context) error {
	branch, branchError := run.environment.RepositoryManager.CurrentBranch(executionContext, run.repositoryRoot)
	if errors.Is(branchError, gitrepo.ErrDetachedHead) {
		return utils.NewUsageError(detachedHeadMessageConstant)
	}
	if branchError != nil {
		return branchError
	}
	run.result.Branch = branch

	pullRequest, found, findError := run.environment.GitHubClient.FindOpenPullRequestForBranch(executionContext, run.repositoryRoot, branch)
	if findError != nil {
		return findError
	}
	if !found {
		return utils.NewUsageError(fmt.Sprintf(missingPullRequestTemplateConstant, branch))
	}
	run.result.PullRequest = pullRequest
	return nil
}

func (run *squashRun) resolveDefaultBranch(executionContext context.Context) error {
	defaultBranch, defaultBranchError := run.environment.GitHubClient.DefaultBranch(executionContext, run.repositoryRoot)
	if defaultBranchError != nil {
		return defaultBranchError
	}
	if run.result.Branch == defaultBranch {
		return utils.NewUsageError(fmt.Sprintf(defaultBranchTemplateConstant, defaultBranch))
	}
	run.result.DefaultBranch = defaultBranch
	return nil
}

func (run *squashRun) fetchDefaultBranch(executionContext context.Context) error {
	return run.environment.RepositoryManager.Fetch(executionContext, run.repositoryRoot, run.options.Remote, run.result.DefaultBranch)
}

func (run *squashRun) listOriginalAuthors(executionContext context.Context) error {
	manager := run.environment.RepositoryManager

	mergeBase, mergeBaseError := manager.MergeBase(executionContext, run.repositoryRoot, gitrepo.HeadReference(), run.upstreamDefaultBranch())
	if mergeBaseError != nil {
		return mergeBaseError
	}
	commits, commitsError := manager.CommitsBetween(executionContext, run.repositoryRoot, mergeBase, gitrepo.HeadReference())
	if commitsError != nil {
		return commitsError
	}
	if len(commits) == 0 {
		run.environment.Logger.Info(nothingToSquashLogMessageConstant, zap.String(branchFieldNameConstant, run.result.Branch))
		if _, writeError := fmt.Fprintf(run.environment.Output, nothingToSquashTemplateConstant, run.result.Branch, run.upstreamDefaultBranch()); writeError != nil {
			return writeError
		}
		return workflow.ErrHalt
	}
	run.result.Commits = commits

	committer, identityError := manager.ConfiguredIdentity(executionContext, run.repositoryRoot)
	if identityError != nil {
		return identityError
	}
	run.result.CoAuthors = commitmsg.DistinctCoAuthors(commits, committer)
	return nil
}

func (run *squashRun) composeMessage(context.Context) error {
	run.result.Message = commitmsg.ComposeSquashMessage(run.result.PullRequest.Title, run.result.CoAuthors)
	return nil
}

func (run *squashRun) preview(context.Context) error {
	return writePreview(run.environment.Output, run.result)
}

func (run *squashRun) rebaseOntoDefault(executionContext context.Context) error {
	return run.environment.RepositoryManager.RebaseOnto(executionContext, run.repositoryRoot, run.upstreamDefaultBranch())
}

func (run *squashRun) squashCommits(executionContext context.Context) error {
	manager := run.environment.RepositoryManager

	mergeBase, mergeBaseError := manager.MergeBase(executionContext, run.repositoryRoot, gitrepo.HeadReference(), run.upstreamDefaultBranch())
	if mergeBaseError != nil {
		return mergeBaseError
	}
	if resetError := manager.ResetSoft(executionContext, run.repositoryRoot, mergeBase); resetError != nil {
		return resetError
	}
	return manager.Commit(executionContext, run.repositoryRoot, run.result.Message)
}

func (run *squashRun) forcePush(executionContext context.Context) error {
	pushError := run.environment.RepositoryManager.Push(executionContext, run.repositoryRoot, gitrepo.PushOptions{
		Remote:         run.options.Remote,
		Branch:         run.result.Branch,
		ForceWithLease: true,
	})
	if pushError != nil {
		return pushError
	}
	run.environment.Logger.Info(squashedLogMessageConstant,
		zap.String(branchFieldNameConstant, run.result.Branch),
		zap.Int(commitCountFieldNameConstant, len(run.result.Commits)),
		zap.Int(coAuthorCountFieldNameConstant, len(run.result.CoAuthors)),
		zap.String(pullRequestFieldNameConstant, run.result.PullRequest.URL),
	)
	return nil
}

func writePreview(output io.Writer, result Result) error {
	var builder strings.Builder
	builder.WriteString(previewCommitsHeaderConstant)
	for index, commit := range result.Commits {
		fmt.Fprintf(&builder, previewCommitLineTemplateConstant, index+1, shortHash(commit.Hash), commit.Subject, commit.AuthorName)
	}
	builder.WriteString(previewMessageHeaderConstant)
	fmt.Fprintf(&builder, previewMessageTemplateConstant, result.Message)
	if len(result.CoAuthors) > 0 {
		fmt.Fprintf(&builder, previewCoAuthorsTemplateConstant, len(result.CoAuthors))
	}
	builder.WriteString(previewFooterConstant)

	_, writeError := io.WriteString(output, builder.String())
	return writeError
}

func shortHash(hash string) string {
	if len(hash) <= shortHashLengthConstant {
		return hash
	}
	return hash[:shortHashLengthConstant]
}
