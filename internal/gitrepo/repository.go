package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/prflow/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant         = "git executor not configured"
	repositoryPathRequiredMessageConstant     = "repository path must be provided"
	branchNameRequiredMessageConstant         = "branch name must be provided"
	revisionRequiredMessageConstant           = "revision must be provided"
	commitMessageRequiredMessageConstant      = "commit message must be provided"
	remoteNameRequiredMessageConstant         = "remote name must be provided"
	outputParseErrorTemplateConstant          = "unexpected output from git %s: %s"
	operationErrorTemplateConstant            = "%s: %w"
	gitTerminalPromptEnvironmentNameConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableValue  = "0"
	gitRevParseSubcommandConstant             = "rev-parse"
	gitShowTopLevelFlagConstant               = "--show-toplevel"
	gitStatusSubcommandConstant               = "status"
	gitPorcelainFlagConstant                  = "--porcelain"
	gitNullTerminatedFlagConstant             = "-z"
	gitUntrackedFilesAllFlagConstant          = "--untracked-files=all"
	gitDiffSubcommandConstant                 = "diff"
	gitNameOnlyFlagConstant                   = "--name-only"
	gitCachedFlagConstant                     = "--cached"
	gitAddSubcommandConstant                  = "add"
	gitPathSeparatorArgumentConstant          = "--"
	gitCommitSubcommandConstant               = "commit"
	gitMessageFlagConstant                    = "-m"
	gitCheckoutSubcommandConstant             = "checkout"
	gitNewBranchFlagConstant                  = "-b"
	gitPullSubcommandConstant                 = "pull"
	gitFastForwardOnlyFlagConstant            = "--ff-only"
	gitFetchSubcommandConstant                = "fetch"
	gitPushSubcommandConstant                 = "push"
	gitSetUpstreamFlagConstant                = "-u"
	gitForceWithLeaseFlagConstant             = "--force-with-lease"
	gitBranchSubcommandConstant               = "branch"
	gitShowCurrentFlagConstant                = "--show-current"
	gitListFlagConstant                       = "--list"
	gitLSRemoteSubcommandConstant             = "ls-remote"
	gitHeadsFlagConstant                      = "--heads"
	gitMergeBaseSubcommandConstant            = "merge-base"
	gitLogSubcommandConstant                  = "log"
	gitReverseFlagConstant                    = "--reverse"
	gitCommitLogFormatFlagConstant            = "--format=%H%x1f%an%x1f%ae%x1f%s%x1e"
	gitRevisionRangeTemplateConstant          = "%s..%s"
	gitResetSubcommandConstant                = "reset"
	gitSoftFlagConstant                       = "--soft"
	gitRebaseSubcommandConstant               = "rebase"
	gitConfigSubcommandConstant               = "config"
	gitUserNameKeyConstant                    = "user.name"
	gitUserEmailKeyConstant                   = "user.email"
	gitRemoteSubcommandConstant               = "remote"
	gitHeadReferenceConstant                  = "HEAD"
	remoteReferenceTemplateConstant           = "%s/%s"
	commitRecordSeparatorConstant             = "\x1e"
	commitFieldSeparatorConstant              = "\x1f"
	commitFieldCountConstant                  = 4
	porcelainEntrySeparatorConstant           = "\x00"
	porcelainStatusWidthConstant              = 3
	porcelainRenameStatusConstant             = 'R'
	porcelainCopyStatusConstant               = 'C'
	repositoryRootOperationConstant           = "failed to locate repository root"
	stagedFilesOperationConstant              = "failed to list staged files"
	changedFilesOperationConstant             = "failed to list changed files"
	diffOperationConstant                     = "failed to read diff"
	stageFilesOperationConstant               = "failed to stage files"
	commitOperationTemplateConstant           = "failed to commit in %s"
	checkoutOperationTemplateConstant         = "failed to switch to branch %q"
	createBranchOperationTemplateConstant     = "failed to create branch %q"
	pullOperationConstant                     = "failed to pull latest changes"
	fetchOperationTemplateConstant            = "failed to fetch %s from %s"
	pushOperationTemplateConstant             = "failed to push branch %q to %s"
	currentBranchOperationConstant            = "failed to determine current branch"
	branchLookupOperationTemplateConstant     = "failed to look up branch %q"
	mergeBaseOperationTemplateConstant        = "failed to find merge base of %s and %s"
	commitListOperationTemplateConstant       = "failed to list commits in %s"
	resetOperationTemplateConstant            = "failed to reset to %s"
	rebaseOperationTemplateConstant           = "failed to rebase onto %s"
	worktreeStatusOperationConstant           = "failed to inspect working tree"
	identityOperationConstant                 = "failed to read git identity"
	remotesOperationConstant                  = "failed to list remotes"
	dirtyWorktreeMessageConstant              = "working tree has uncommitted changes"
	detachedHeadMessageConstant               = "HEAD is detached; switch to a branch first"
	emptyMergeBaseMessageConstant             = "no merge base reported"
	malformedCommitRecordTemplateConstant     = "malformed commit record %q"
	malformedStatusEntryTemplateConstant      = "malformed status entry %q"
	missingRenameSourceMessageConstant        = "rename entry without source path"
	configNotFoundExitCodeConstant            = 1
	repositoryManagerMissingMessageConstant   = "repository manager not configured"
	pushBranchRequiredMessageConstant         = "push requires a branch name"
	pushRemoteRequiredMessageConstant         = "push requires a remote name"
	revisionRangeRequiredMessageConstant      = "base and head revisions must be provided"
	branchExistsRemoteRequiredMessageConstant = "remote lookup requires a remote name"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryManagerNotConfigured indicates a nil repository manager was supplied to a consumer.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// ErrDirtyWorktree indicates the working tree contains uncommitted changes.
var ErrDirtyWorktree = errors.New(dirtyWorktreeMessageConstant)

// ErrDetachedHead indicates the repository is not on a branch.
var ErrDetachedHead = errors.New(detachedHeadMessageConstant)

// GitCommandExecutor executes git commands.
type GitCommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// InvalidInputError reports a missing or malformed argument.
type InvalidInputError struct {
	Message string
}

func (inputError InvalidInputError) Error() string {
	return inputError.Message
}

// OutputParseError reports git output that could not be interpreted.
type OutputParseError struct {
	Subcommand string
	Message    string
}

func (parseError OutputParseError) Error() string {
	return fmt.Sprintf(outputParseErrorTemplateConstant, parseError.Subcommand, parseError.Message)
}

// Commit describes a single commit in a revision range.
type Commit struct {
	Hash        string
	AuthorName  string
	AuthorEmail string
	Subject     string
}

// Identity is the configured git user.
type Identity struct {
	Name  string
	Email string
}

// PushOptions controls git push.
type PushOptions struct {
	Remote         string
	Branch         string
	SetUpstream    bool
	ForceWithLease bool
}

// RepositoryManager runs the git operations used by the pull request workflows.
type RepositoryManager struct {
	executor GitCommandExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitCommandExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// RepositoryRoot returns the top-level directory of the repository containing repositoryPath.
func (manager *RepositoryManager) RepositoryRoot(executionContext context.Context, repositoryPath string) (string, error) {
	output, executionError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitShowTopLevelFlagConstant)
	if executionError != nil {
		return "", fmt.Errorf(operationErrorTemplateConstant, repositoryRootOperationConstant, executionError)
	}
	return strings.TrimSpace(output), nil
}

// CheckCleanWorktree returns ErrDirtyWorktree when tracked or untracked changes exist.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) error {
	output, executionError := manager.run(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, worktreeStatusOperationConstant, executionError)
	}
	if len(strings.TrimSpace(output)) > 0 {
		return ErrDirtyWorktree
	}
	return nil
}

// StagedFiles lists paths currently staged in the index.
func (manager *RepositoryManager) StagedFiles(executionContext context.Context, repositoryPath string) ([]string, error) {
	output, executionError := manager.run(executionContext, repositoryPath, gitDiffSubcommandConstant, gitNameOnlyFlagConstant, gitCachedFlagConstant)
	if executionError != nil {
		return nil, fmt.Errorf(operationErrorTemplateConstant, stagedFilesOperationConstant, executionError)
	}
	return splitNonEmptyLines(output), nil
}

// ChangedFiles lists every modified, deleted, or untracked path in the working tree and index.
// Both sides of a rename are reported so that staging them records the rename.
func (manager *RepositoryManager) ChangedFiles(executionContext context.Context, repositoryPath string) ([]string, error) {
	output, executionError := manager.run(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant, gitNullTerminatedFlagConstant, gitUntrackedFilesAllFlagConstant)
	if executionError != nil {
		return nil, fmt.Errorf(operationErrorTemplateConstant, changedFilesOperationConstant, executionError)
	}
	return parsePorcelainStatus(output)
}

// Diff returns the staged diff when stagedOnly is set and the working tree diff otherwise.
func (manager *RepositoryManager) Diff(executionContext context.Context, repositoryPath string, stagedOnly bool) (string, error) {
	arguments := []string{gitDiffSubcommandConstant}
	if stagedOnly {
		arguments = append(arguments, gitCachedFlagConstant)
	}
	output, executionError := manager.run(executionContext, repositoryPath, arguments...)
	if executionError != nil {
		return "", fmt.Errorf(operationErrorTemplateConstant, diffOperationConstant, executionError)
	}
	return output, nil
}

// StageFiles adds the provided paths to the index.
func (manager *RepositoryManager) StageFiles(executionContext context.Context, repositoryPath string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	arguments := append([]string{gitAddSubcommandConstant, gitPathSeparatorArgumentConstant}, paths...)
	if _, executionError := manager.run(executionContext, repositoryPath, arguments...); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, stageFilesOperationConstant, executionError)
	}
	return nil
}

// Commit records the index with the provided message.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, message string) error {
	if len(strings.TrimSpace(message)) == 0 {
		return InvalidInputError{Message: commitMessageRequiredMessageConstant}
	}
	if _, executionError := manager.run(executionContext, repositoryPath, gitCommitSubcommandConstant, gitMessageFlagConstant, message); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, fmt.Sprintf(commitOperationTemplateConstant, repositoryPath), executionError)
	}
	return nil
}

// CheckoutBranch switches to an existing branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	trimmedBranch := strings.TrimSpace(branchName)
	if len(trimmedBranch) == 0 {
		return InvalidInputError{Message: branchNameRequiredMessageConstant}
	}
	if _, executionError := manager.run(executionContext, repositoryPath, gitCheckoutSubcommandConstant, trimmedBranch); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, fmt.Sprintf(checkoutOperationTemplateConstant, trimmedBranch), executionError)
	}
	return nil
}

// CreateBranch creates a branch at HEAD and switches to it.
func (manager *RepositoryManager) CreateBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	trimmedBranch := strings.TrimSpace(branchName)
	if len(trimmedBranch) == 0 {
		return InvalidInputError{Message: branchNameRequiredMessageConstant}
	}
	if _, executionError := manager.run(executionContext, repositoryPath, gitCheckoutSubcommandConstant, gitNewBranchFlagConstant, trimmedBranch); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, fmt.Sprintf(createBranchOperationTemplateConstant, trimmedBranch), executionError)
	}
	return nil
}

// Pull updates the current branch from its upstream.
func (manager *RepositoryManager) Pull(executionContext context.Context, repositoryPath string, fastForwardOnly bool) error {
	arguments := []string{gitPullSubcommandConstant}
	if fastForwardOnly {
		arguments = append(arguments, gitFastForwardOnlyFlagConstant)
	}
	if _, executionError := manager.run(executionContext, repositoryPath, arguments...); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, pullOperationConstant, executionError)
	}
	return nil
}

// Fetch retrieves a single reference from a remote.
func (manager *RepositoryManager) Fetch(executionContext context.Context, repositoryPath string, remoteName string, reference string) error {
	trimmedRemote := strings.TrimSpace(remoteName)
	if len(trimmedRemote) == 0 {
		return InvalidInputError{Message: remoteNameRequiredMessageConstant}
	}
	arguments := []string{gitFetchSubcommandConstant, trimmedRemote}
	if trimmedReference := strings.TrimSpace(reference); len(trimmedReference) > 0 {
		arguments = append(arguments, trimmedReference)
	}
	if _, executionError := manager.run(executionContext, repositoryPath, arguments...); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, fmt.Sprintf(fetchOperationTemplateConstant, reference, trimmedRemote), executionError)
	}
	return nil
}

// Push publishes a branch. ForceWithLease rewrites the remote branch only if it still matches the last fetched state.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, options PushOptions) error {
	trimmedRemote := strings.TrimSpace(options.Remote)
	trimmedBranch := strings.TrimSpace(options.Branch)
	if len(trimmedRemote) == 0 {
		return InvalidInputError{Message: pushRemoteRequiredMessageConstant}
	}
	if len(trimmedBranch) == 0 {
		return InvalidInputError{Message: pushBranchRequiredMessageConstant}
	}

	arguments := []string{gitPushSubcommandConstant}
	if options.SetUpstream {
		arguments = append(arguments, gitSetUpstreamFlagConstant)
	}
	if options.ForceWithLease {
		arguments = append(arguments, gitForceWithLeaseFlagConstant)
	}
	arguments = append(arguments, trimmedRemote, trimmedBranch)

	if _, executionError := manager.run(executionContext, repositoryPath, arguments...); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, fmt.Sprintf(pushOperationTemplateConstant, trimmedBranch, trimmedRemote), executionError)
	}
	return nil
}

// CurrentBranch returns the checked out branch or ErrDetachedHead.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	output, executionError := manager.run(executionContext, repositoryPath, gitBranchSubcommandConstant, gitShowCurrentFlagConstant)
	if executionError != nil {
		return "", fmt.Errorf(operationErrorTemplateConstant, currentBranchOperationConstant, executionError)
	}
	branchName := strings.TrimSpace(output)
	if len(branchName) == 0 {
		return "", ErrDetachedHead
	}
	return branchName, nil
}

// BranchExistsLocally reports whether a local branch with the name exists.
func (manager *RepositoryManager) BranchExistsLocally(executionContext context.Context, repositoryPath string, branchName string) (bool, error) {
	trimmedBranch := strings.TrimSpace(branchName)
	if len(trimmedBranch) == 0 {
		return false, InvalidInputError{Message: branchNameRequiredMessageConstant}
	}
	output, executionError := manager.run(executionContext, repositoryPath, gitBranchSubcommandConstant, gitListFlagConstant, trimmedBranch)
	if executionError != nil {
		return false, fmt.Errorf(operationErrorTemplateConstant, fmt.Sprintf(branchLookupOperationTemplateConstant, trimmedBranch), executionError)
	}
	return len(strings.TrimSpace(output)) > 0, nil
}

// BranchExistsRemotely reports whether the remote advertises a branch with the name.
func (manager *RepositoryManager) BranchExistsRemotely(executionContext context.Context, repositoryPath string, remoteName string, branchName string) (bool, error) {
	trimmedRemote := strings.TrimSpace(remoteName)
	trimmedBranch := strings.TrimSpace(branchName)
	if len(trimmedRemote) == 0 {
		return false, InvalidInputError{Message: branchExistsRemoteRequiredMessageConstant}
	}
	if len(trimmedBranch) == 0 {
		return false, InvalidInputError{Message: branchNameRequiredMessageConstant}
	}
	output, executionError := manager.run(executionContext, repositoryPath, gitLSRemoteSubcommandConstant, gitHeadsFlagConstant, trimmedRemote, trimmedBranch)
	if executionError != nil {
		return false, fmt.Errorf(operationErrorTemplateConstant, fmt.Sprintf(branchLookupOperationTemplateConstant, trimmedBranch), executionError)
	}
	return len(strings.TrimSpace(output)) > 0, nil
}

// MergeBase returns the best common ancestor of two revisions.
func (manager *RepositoryManager) MergeBase(executionContext context.Context, repositoryPath string, firstRevision string, secondRevision string) (string, error) {
	if len(strings.TrimSpace(firstRevision)) == 0 || len(strings.TrimSpace(secondRevision)) == 0 {
		return "", InvalidInputError{Message: revisionRequiredMessageConstant}
	}
	output, executionError := manager.run(executionContext, repositoryPath, gitMergeBaseSubcommandConstant, firstRevision, secondRevision)
	if executionError != nil {
		return "", fmt.Errorf(operationErrorTemplateConstant, fmt.Sprintf(mergeBaseOperationTemplateConstant, firstRevision, secondRevision), executionError)
	}
	mergeBase := strings.TrimSpace(output)
	if len(mergeBase) == 0 {
		return "", OutputParseError{Subcommand: gitMergeBaseSubcommandConstant, Message: emptyMergeBaseMessageConstant}
	}
	return mergeBase, nil
}

// CommitsBetween lists commits reachable from head but not from base, oldest first.
func (manager *RepositoryManager) CommitsBetween(executionContext context.Context, repositoryPath string, baseRevision string, headRevision string) ([]Commit, error) {
	if len(strings.TrimSpace(baseRevision)) == 0 || len(strings.TrimSpace(headRevision)) == 0 {
		return nil, InvalidInputError{Message: revisionRangeRequiredMessageConstant}
	}
	revisionRange := fmt.Sprintf(gitRevisionRangeTemplateConstant, baseRevision, headRevision)
	output, executionError := manager.run(executionContext, repositoryPath, gitLogSubcommandConstant, gitReverseFlagConstant, gitCommitLogFormatFlagConstant, revisionRange)
	if executionError != nil {
		return nil, fmt.Errorf(operationErrorTemplateConstant, fmt.Sprintf(commitListOperationTemplateConstant, revisionRange), executionError)
	}
	return parseCommitLog(output)
}

// ResetSoft moves the branch to revision while keeping the index and working tree.
func (manager *RepositoryManager) ResetSoft(executionContext context.Context, repositoryPath string, revision string) error {
	trimmedRevision := strings.TrimSpace(revision)
	if len(trimmedRevision) == 0 {
		return InvalidInputError{Message: revisionRequiredMessageConstant}
	}
	if _, executionError := manager.run(executionContext, repositoryPath, gitResetSubcommandConstant, gitSoftFlagConstant, trimmedRevision); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, fmt.Sprintf(resetOperationTemplateConstant, trimmedRevision), executionError)
	}
	return nil
}

// RebaseOnto replays the current branch on top of base.
func (manager *RepositoryManager) RebaseOnto(executionContext context.Context, repositoryPath string, base string) error {
	trimmedBase := strings.TrimSpace(base)
	if len(trimmedBase) == 0 {
		return InvalidInputError{Message: revisionRequiredMessageConstant}
	}
	if _, executionError := manager.run(executionContext, repositoryPath, gitRebaseSubcommandConstant, trimmedBase); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, fmt.Sprintf(rebaseOperationTemplateConstant, trimmedBase), executionError)
	}
	return nil
}

// ConfiguredIdentity reads user.name and user.email. Unset keys yield empty values.
func (manager *RepositoryManager) ConfiguredIdentity(executionContext context.Context, repositoryPath string) (Identity, error) {
	name, nameError := manager.readConfigValue(executionContext, repositoryPath, gitUserNameKeyConstant)
	if nameError != nil {
		return Identity{}, nameError
	}
	email, emailError := manager.readConfigValue(executionContext, repositoryPath, gitUserEmailKeyConstant)
	if emailError != nil {
		return Identity{}, emailError
	}
	return Identity{Name: name, Email: email}, nil
}

// Remotes lists configured remote names.
func (manager *RepositoryManager) Remotes(executionContext context.Context, repositoryPath string) ([]string, error) {
	output, executionError := manager.run(executionContext, repositoryPath, gitRemoteSubcommandConstant)
	if executionError != nil {
		return nil, fmt.Errorf(operationErrorTemplateConstant, remotesOperationConstant, executionError)
	}
	return splitNonEmptyLines(output), nil
}

// RemoteBranchReference renders remote/branch.
func RemoteBranchReference(remoteName string, branchName string) string {
	return fmt.Sprintf(remoteReferenceTemplateConstant, remoteName, branchName)
}

// HeadReference is the symbolic name of the checked out commit.
func HeadReference() string {
	return gitHeadReferenceConstant
}

func (manager *RepositoryManager) readConfigValue(executionContext context.Context, repositoryPath string, key string) (string, error) {
	output, executionError := manager.run(executionContext, repositoryPath, gitConfigSubcommandConstant, key)
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) && commandFailure.Result.ExitCode == configNotFoundExitCodeConstant {
			return "", nil
		}
		return "", fmt.Errorf(operationErrorTemplateConstant, identityOperationConstant, executionError)
	}
	return strings.TrimSpace(output), nil
}

func (manager *RepositoryManager) run(executionContext context.Context, repositoryPath string, arguments ...string) (string, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return "", InvalidInputError{Message: repositoryPathRequiredMessageConstant}
	}
	result, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     trimmedPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableValue},
	})
	if executionError != nil {
		return "", executionError
	}
	return result.StandardOutput, nil
}

func splitNonEmptyLines(output string) []string {
	lines := strings.Split(output, "\n")
	values := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		values = append(values, trimmed)
	}
	return values
}

func parseCommitLog(output string) ([]Commit, error) {
	records := strings.Split(output, commitRecordSeparatorConstant)
	commits := make([]Commit, 0, len(records))
	for _, record := range records {
		trimmedRecord := strings.TrimSpace(record)
		if len(trimmedRecord) == 0 {
			continue
		}
		fields := strings.Split(trimmedRecord, commitFieldSeparatorConstant)
		if len(fields) != commitFieldCountConstant || len(strings.TrimSpace(fields[0])) == 0 {
			return nil, OutputParseError{Subcommand: gitLogSubcommandConstant, Message: fmt.Sprintf(malformedCommitRecordTemplateConstant, trimmedRecord)}
		}
		commits = append(commits, Commit{
			Hash:        strings.TrimSpace(fields[0]),
			AuthorName:  strings.TrimSpace(fields[1]),
			AuthorEmail: strings.TrimSpace(fields[2]),
			Subject:     strings.TrimSpace(fields[3]),
		})
	}
	return commits, nil
}

// parsePorcelainStatus reads `git status --porcelain -z` output. Rename and copy
// entries are followed by an extra NUL-terminated field holding the source path.
func parsePorcelainStatus(output string) ([]string, error) {
	entries := strings.Split(output, porcelainEntrySeparatorConstant)
	paths := make([]string, 0, len(entries))
	for index := 0; index < len(entries); index++ {
		entry := entries[index]
		if len(entry) == 0 {
			continue
		}
		if len(entry) <= porcelainStatusWidthConstant {
			return nil, OutputParseError{Subcommand: gitStatusSubcommandConstant, Message: fmt.Sprintf(malformedStatusEntryTemplateConstant, entry)}
		}
		paths = append(paths, entry[porcelainStatusWidthConstant:])

		indexStatus := entry[0]
		if indexStatus == porcelainRenameStatusConstant || indexStatus == porcelainCopyStatusConstant {
			index++
			if index >= len(entries) || len(entries[index]) == 0 {
				return nil, OutputParseError{Subcommand: gitStatusSubcommandConstant, Message: missingRenameSourceMessageConstant}
			}
			if indexStatus == porcelainRenameStatusConstant {
				paths = append(paths, entries[index])
			}
		}
	}
	return paths, nil
}
