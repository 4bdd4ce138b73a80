package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	startMessageTemplateConstant            = "%s in %s"
	successMessageTemplateConstant          = "%s in %s"
	failureMessageTemplateConstant          = "Failed to %s in %s (exit code %d%s)"
	executionFailureMessageTemplateConstant = "Unable to %s in %s: %s"
	standardErrorSuffixTemplateConstant     = ": %s"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	unknownValueLabelConstant               = "unknown"
	unknownFailureMessageConstant           = "unknown error"
	currentBranchLabelConstant              = "the current branch"
	flagPrefixConstant                      = "-"
	emptyStringConstant                     = ""
)

const (
	gitRevParseSubcommandConstant       = "rev-parse"
	gitStatusSubcommandConstant         = "status"
	gitDiffSubcommandConstant           = "diff"
	gitAddSubcommandConstant            = "add"
	gitCommitSubcommandConstant         = "commit"
	gitCheckoutSubcommandConstant       = "checkout"
	gitPullSubcommandConstant           = "pull"
	gitFetchSubcommandConstant          = "fetch"
	gitPushSubcommandConstant           = "push"
	gitBranchSubcommandConstant         = "branch"
	gitLSRemoteSubcommandConstant       = "ls-remote"
	gitMergeBaseSubcommandConstant      = "merge-base"
	gitLogSubcommandConstant            = "log"
	gitResetSubcommandConstant          = "reset"
	gitRebaseSubcommandConstant         = "rebase"
	gitConfigSubcommandConstant         = "config"
	gitRemoteSubcommandConstant         = "remote"
	gitCachedFlagConstant               = "--cached"
	gitNewBranchFlagConstant            = "-b"
	gitMessageFlagConstant              = "-m"
	gitShowCurrentFlagConstant          = "--show-current"
	gitListFlagConstant                 = "--list"
	gitForceWithLeaseFlagConstant       = "--force-with-lease"
	gitSetUpstreamFlagConstant          = "-u"
	gitShowTopLevelFlagConstant         = "--show-toplevel"
	githubRepoSubcommandConstant        = "repo"
	githubPullSubcommandConstant        = "pr"
	githubViewSubcommandConstant        = "view"
	githubCreateSubcommandConstant      = "create"
	githubListSubcommandConstant        = "list"
	githubSetDefaultSubcommandConstant  = "set-default"
	githubTitleFlagConstant             = "--title"
	githubHeadFlagConstant              = "--head"
	githubWebFlagConstant               = "--web"
	githubViewDefaultFlagConstant       = "--view"
	agentModelFlagConstant              = "--model"
	argumentListSeparatorConstant       = ", "
	allChangesLabelConstant             = "all changes"
	filesLabelTemplateConstant          = "%d files"
	agentWithModelLabelTemplateConstant = "%s (%s)"
	subcommandPairSeparatorConstant     = " "
)

// commandDescription holds the three phrasings of one command: in progress, completed, and as an infinitive for failures.
type commandDescription struct {
	progress  string
	completed string
	action    string
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing a command that could not be started.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	var description commandDescription
	switch command.Name {
	case CommandGit:
		description = formatter.describeGit(command.Details.Arguments)
	case CommandGitHub:
		description = formatter.describeGitHub(command.Details.Arguments)
	default:
		description = formatter.describeAgent(command)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startMessageTemplateConstant, description.progress, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(successMessageTemplateConstant, description.completed, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(failureMessageTemplateConstant, description.action, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(executionFailureMessageTemplateConstant, description.action, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGit(arguments []string) commandDescription {
	if len(arguments) == 0 {
		return genericDescription(string(CommandGit))
	}

	subcommand := strings.TrimSpace(arguments[0])
	remaining := arguments[1:]
	positional := positionalArguments(remaining)

	switch subcommand {
	case gitRevParseSubcommandConstant:
		if containsArgument(remaining, gitShowTopLevelFlagConstant) {
			return commandDescription{progress: "Locating repository root", completed: "Located repository root", action: "locate repository root"}
		}
		return describeWithSubject("Resolving", "Resolved", "resolve", valueOrUnknown(firstValue(positional)))
	case gitStatusSubcommandConstant:
		return commandDescription{progress: "Reviewing working tree status", completed: "Collected working tree status", action: "review working tree status"}
	case gitDiffSubcommandConstant:
		if containsArgument(remaining, gitCachedFlagConstant) {
			return commandDescription{progress: "Reading staged changes", completed: "Read staged changes", action: "read staged changes"}
		}
		return commandDescription{progress: "Reading working tree changes", completed: "Read working tree changes", action: "read working tree changes"}
	case gitAddSubcommandConstant:
		return describeWithSubject("Staging", "Staged", "stage", describeFileSet(positional))
	case gitCommitSubcommandConstant:
		message := fmt.Sprintf("%q", firstLine(findFlagValue(remaining, gitMessageFlagConstant)))
		return commandDescription{
			progress:  "Creating commit with message " + message,
			completed: "Created commit with message " + message,
			action:    "create commit with message " + message,
		}
	case gitCheckoutSubcommandConstant:
		if newBranch := findFlagValue(remaining, gitNewBranchFlagConstant); len(newBranch) > 0 {
			return describeWithSubject("Creating branch", "Created branch", "create branch", newBranch)
		}
		return describeWithSubject("Switching to branch", "Switched to branch", "switch to branch", valueOrUnknown(firstValue(positional)))
	case gitPullSubcommandConstant:
		return commandDescription{progress: "Pulling upstream changes", completed: "Pulled upstream changes", action: "pull upstream changes"}
	case gitFetchSubcommandConstant:
		return formatter.describeTransfer("Fetching", "Fetched", "fetch", "from", positional)
	case gitPushSubcommandConstant:
		description := formatter.describeTransfer("Pushing", "Pushed", "push", "to", positional)
		if containsArgument(remaining, gitForceWithLeaseFlagConstant) {
			description.progress = "Force " + lowerFirst(description.progress)
			description.completed = "Force " + lowerFirst(description.completed)
			description.action = "force " + description.action
		}
		if containsArgument(remaining, gitSetUpstreamFlagConstant) {
			description.completed += " and set upstream"
		}
		return description
	case gitBranchSubcommandConstant:
		if containsArgument(remaining, gitShowCurrentFlagConstant) {
			return commandDescription{progress: "Identifying current branch", completed: "Identified current branch", action: "identify current branch"}
		}
		if containsArgument(remaining, gitListFlagConstant) {
			return describeWithSubject("Looking up local branch", "Looked up local branch", "look up local branch", valueOrUnknown(firstValue(positional)))
		}
		return genericDescription(string(CommandGit) + subcommandPairSeparatorConstant + subcommand)
	case gitLSRemoteSubcommandConstant:
		return commandDescription{
			progress:  fmt.Sprintf("Looking up %s on %s", valueOrUnknown(secondValue(positional)), valueOrUnknown(firstValue(positional))),
			completed: fmt.Sprintf("Looked up %s on %s", valueOrUnknown(secondValue(positional)), valueOrUnknown(firstValue(positional))),
			action:    fmt.Sprintf("look up %s on %s", valueOrUnknown(secondValue(positional)), valueOrUnknown(firstValue(positional))),
		}
	case gitMergeBaseSubcommandConstant:
		subject := strings.Join(positional, " and ")
		return describeWithSubject("Finding merge base of", "Found merge base of", "find merge base of", valueOrUnknown(subject))
	case gitLogSubcommandConstant:
		return describeWithSubject("Listing commits in", "Listed commits in", "list commits in", valueOrUnknown(firstValue(positional)))
	case gitResetSubcommandConstant:
		return describeWithSubject("Resetting branch to", "Reset branch to", "reset branch to", valueOrUnknown(firstValue(positional)))
	case gitRebaseSubcommandConstant:
		return describeWithSubject("Rebasing onto", "Rebased onto", "rebase onto", valueOrUnknown(firstValue(positional)))
	case gitConfigSubcommandConstant:
		return describeWithSubject("Reading git configuration", "Read git configuration", "read git configuration", valueOrUnknown(firstValue(positional)))
	case gitRemoteSubcommandConstant:
		return commandDescription{progress: "Listing remotes", completed: "Listed remotes", action: "list remotes"}
	default:
		return genericDescription(string(CommandGit) + subcommandPairSeparatorConstant + subcommand)
	}
}

func (formatter CommandMessageFormatter) describeTransfer(progressVerb string, completedVerb string, actionVerb string, preposition string, positional []string) commandDescription {
	remote := valueOrUnknown(firstValue(positional))
	references := positional
	if len(references) > 0 {
		references = references[1:]
	}
	if len(references) == 0 {
		return commandDescription{
			progress:  fmt.Sprintf("%s %s %s", progressVerb, preposition, remote),
			completed: fmt.Sprintf("%s %s %s", completedVerb, preposition, remote),
			action:    fmt.Sprintf("%s %s %s", actionVerb, preposition, remote),
		}
	}
	joinedReferences := strings.Join(references, argumentListSeparatorConstant)
	return commandDescription{
		progress:  fmt.Sprintf("%s %s %s %s", progressVerb, joinedReferences, preposition, remote),
		completed: fmt.Sprintf("%s %s %s %s", completedVerb, joinedReferences, preposition, remote),
		action:    fmt.Sprintf("%s %s %s %s", actionVerb, joinedReferences, preposition, remote),
	}
}

func (formatter CommandMessageFormatter) describeGitHub(arguments []string) commandDescription {
	if len(arguments) < 2 {
		return genericDescription(string(CommandGitHub) + subcommandPairSeparatorConstant + strings.Join(arguments, subcommandPairSeparatorConstant))
	}

	group := strings.TrimSpace(arguments[0])
	subcommand := strings.TrimSpace(arguments[1])
	remaining := arguments[2:]
	target := firstValue(positionalArguments(remaining))
	if len(target) == 0 {
		target = currentBranchLabelConstant
	}

	switch {
	case group == githubRepoSubcommandConstant && subcommand == githubViewSubcommandConstant:
		return commandDescription{progress: "Retrieving repository details", completed: "Retrieved repository details", action: "retrieve repository details"}
	case group == githubRepoSubcommandConstant && subcommand == githubSetDefaultSubcommandConstant:
		if containsArgument(remaining, githubViewDefaultFlagConstant) {
			return commandDescription{progress: "Checking default repository", completed: "Checked default repository", action: "check default repository"}
		}
		return describeWithSubject("Setting default repository to", "Set default repository to", "set default repository to", valueOrUnknown(target))
	case group == githubPullSubcommandConstant && subcommand == githubCreateSubcommandConstant:
		title := fmt.Sprintf("%q", findFlagValue(remaining, githubTitleFlagConstant))
		return describeWithSubject("Creating pull request", "Created pull request", "create pull request", title)
	case group == githubPullSubcommandConstant && subcommand == githubViewSubcommandConstant:
		if containsArgument(remaining, githubWebFlagConstant) {
			return describeWithSubject("Opening pull request for", "Opened pull request for", "open pull request for", target)
		}
		return describeWithSubject("Loading pull request for", "Loaded pull request for", "load pull request for", target)
	case group == githubPullSubcommandConstant && subcommand == githubListSubcommandConstant:
		head := valueOrUnknown(findFlagValue(remaining, githubHeadFlagConstant))
		return describeWithSubject("Looking for pull requests from", "Looked for pull requests from", "look for pull requests from", head)
	case group == githubPullSubcommandConstant && subcommand == gitDiffSubcommandConstant:
		return describeWithSubject("Downloading diff of", "Downloaded diff of", "download diff of", target)
	default:
		return genericDescription(string(CommandGitHub) + subcommandPairSeparatorConstant + group + subcommandPairSeparatorConstant + subcommand)
	}
}

func (formatter CommandMessageFormatter) describeAgent(command ShellCommand) commandDescription {
	agent := string(command.Name)
	if model := findFlagValue(command.Details.Arguments, agentModelFlagConstant); len(model) > 0 {
		agent = fmt.Sprintf(agentWithModelLabelTemplateConstant, agent, model)
	}
	return describeWithSubject("Waiting for", "Received response from", "get a response from", agent)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmed := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmed) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmed := strings.TrimSpace(standardError)
	if len(trimmed) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmed)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func genericDescription(commandLabel string) commandDescription {
	return commandDescription{
		progress:  "Running " + commandLabel,
		completed: "Completed " + commandLabel,
		action:    "run " + commandLabel,
	}
}

func describeWithSubject(progressPhrase string, completedPhrase string, actionPhrase string, subject string) commandDescription {
	return commandDescription{
		progress:  progressPhrase + subcommandPairSeparatorConstant + subject,
		completed: completedPhrase + subcommandPairSeparatorConstant + subject,
		action:    actionPhrase + subcommandPairSeparatorConstant + subject,
	}
}

func describeFileSet(paths []string) string {
	filtered := make([]string, 0, len(paths))
	for _, path := range paths {
		if path == "--" {
			continue
		}
		filtered = append(filtered, path)
	}
	switch {
	case len(filtered) == 0:
		return allChangesLabelConstant
	case len(filtered) <= 3:
		return strings.Join(filtered, argumentListSeparatorConstant)
	default:
		return fmt.Sprintf(filesLabelTemplateConstant, len(filtered))
	}
}

func positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	skipNext := false
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if skipNext {
			skipNext = false
			continue
		}
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, flagPrefixConstant) {
			skipNext = flagTakesValue(trimmed)
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}

func flagTakesValue(flag string) bool {
	switch flag {
	case gitMessageFlagConstant, gitNewBranchFlagConstant, "--format", "--json", "-q", "--jq", githubTitleFlagConstant, "--body", "--base", githubHeadFlagConstant, "--state", "--limit", "--color", agentModelFlagConstant, "--prompt", "--output-format":
		return true
	default:
		return false
	}
}

func containsArgument(arguments []string, expected string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == expected {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return emptyStringConstant
	}
	return values[0]
}

func secondValue(values []string) string {
	if len(values) < 2 {
		return emptyStringConstant
	}
	return values[1]
}

func valueOrUnknown(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return unknownValueLabelConstant
	}
	return value
}

func firstLine(value string) string {
	if index := strings.IndexByte(value, '\n'); index >= 0 {
		return strings.TrimSpace(value[:index])
	}
	return strings.TrimSpace(value)
}

func lowerFirst(value string) string {
	if len(value) == 0 {
		return value
	}
	return strings.ToLower(value[:1]) + value[1:]
}
