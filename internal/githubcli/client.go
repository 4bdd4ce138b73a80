package githubcli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/temirov/prflow/internal/execshell"
)

const (
	repoSubcommandConstant                   = "repo"
	viewSubcommandConstant                   = "view"
	setDefaultSubcommandConstant             = "set-default"
	pullRequestSubcommandConstant            = "pr"
	createSubcommandConstant                 = "create"
	listSubcommandConstant                   = "list"
	diffSubcommandConstant                   = "diff"
	jsonFlagConstant                         = "--json"
	titleFlagConstant                        = "--title"
	bodyFlagConstant                         = "--body"
	baseFlagConstant                         = "--base"
	headFlagConstant                         = "--head"
	draftFlagConstant                        = "--draft"
	stateFlagConstant                        = "--state"
	webFlagConstant                          = "--web"
	viewDefaultFlagConstant                  = "--view"
	colorNeverFlagConstant                   = "--color=never"
	gitHubPromptEnvironmentNameConstant      = "GH_PROMPT_DISABLED"
	gitHubPromptEnvironmentDisabledValue     = "1"
	openStateConstant                        = "open"
	titleFieldNameConstant                   = "title"
	headBranchFieldNameConstant              = "head_branch"
	baseBranchFieldNameConstant              = "base_branch"
	pullRequestFieldNameConstant             = "pull_request"
	remoteRepositoryFieldNameConstant        = "repository"
	requiredValueMessageConstant             = "value required"
	executorNotConfiguredMessageConstant     = "github cli executor not configured"
	missingPullRequestURLMessageConstant     = "gh did not print a pull request url"
	missingDefaultBranchMessageConstant      = "repository has no default branch"
	pullRequestJSONFieldsConstant            = "number,title,body,url,state,baseRefName,headRefName,author,isDraft"
	pullRequestCommitsJSONFieldsConstant     = "commits"
	repoViewJSONFieldsConstant               = "nameWithOwner,description,url,defaultBranchRef"
	operationErrorMessageTemplateConstant    = "%s operation failed"
	operationErrorWithCauseTemplateConstant  = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant    = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant        = "%s: %s"
	repositoryMetadataOperationNameConstant  = OperationName("ResolveRepoMetadata")
	createPullRequestOperationNameConstant   = OperationName("CreatePullRequest")
	viewPullRequestOperationNameConstant     = OperationName("ViewPullRequest")
	findPullRequestOperationNameConstant     = OperationName("FindOpenPullRequestForBranch")
	listCommitsOperationNameConstant         = OperationName("ListPullRequestCommits")
	pullRequestDiffOperationNameConstant     = OperationName("PullRequestDiff")
	pullRequestMetadataOperationNameConstant = OperationName("PullRequestMetadata")
	openPullRequestOperationNameConstant     = OperationName("OpenPullRequestInBrowser")
	defaultRepositoryOperationNameConstant   = OperationName("DefaultRepository")
)

// ReviewMetadataFields lists the pull request fields collected for a review prompt.
var ReviewMetadataFields = []string{
	"title", "body", "author", "baseRefName", "headRefName", "createdAt", "updatedAt",
	"labels", "assignees", "reviewRequests", "reviews", "comments",
	"additions", "deletions", "changedFiles", "state", "mergeable", "url",
}

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	NameWithOwner string
	Description   string
	URL           string
	DefaultBranch string
}

// PullRequest represents the pull request fields used by the workflows.
type PullRequest struct {
	Number      int
	Title       string
	Body        string
	URL         string
	State       string
	BaseRefName string
	HeadRefName string
	AuthorLogin string
	IsDraft     bool
}

// PullRequestCreateOptions configures CreatePullRequest.
type PullRequestCreateOptions struct {
	Title      string
	Body       string
	BaseBranch string
	HeadBranch string
	Draft      bool
}

// CommitAuthor is one author attached to a pull request commit.
type CommitAuthor struct {
	Name  string
	Email string
	Login string
}

// PullRequestCommit describes one commit listed on a pull request.
type PullRequestCommit struct {
	OID             string
	MessageHeadline string
	Authors         []CommitAuthor
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates gh printed output that could not be decoded.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying decoding error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

type pullRequestResponse struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	URL         string `json:"url"`
	State       string `json:"state"`
	BaseRefName string `json:"baseRefName"`
	HeadRefName string `json:"headRefName"`
	IsDraft     bool   `json:"isDraft"`
	Author      struct {
		Login string `json:"login"`
	} `json:"author"`
}

func (response pullRequestResponse) toPullRequest() PullRequest {
	return PullRequest{
		Number:      response.Number,
		Title:       response.Title,
		Body:        response.Body,
		URL:         response.URL,
		State:       response.State,
		BaseRefName: response.BaseRefName,
		HeadRefName: response.HeadRefName,
		AuthorLogin: response.Author.Login,
		IsDraft:     response.IsDraft,
	}
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// ResolveRepoMetadata retrieves metadata for the repository checked out at repositoryPath.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repositoryPath string) (RepositoryMetadata, error) {
	executionResult, executionError := client.run(executionContext, repositoryPath, repoSubcommandConstant, viewSubcommandConstant, jsonFlagConstant, repoViewJSONFieldsConstant)
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: repositoryMetadataOperationNameConstant, Cause: executionError}
	}

	var response struct {
		NameWithOwner    string `json:"nameWithOwner"`
		Description      string `json:"description"`
		URL              string `json:"url"`
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: repositoryMetadataOperationNameConstant, Cause: decodingError}
	}

	return RepositoryMetadata{
		NameWithOwner: response.NameWithOwner,
		Description:   response.Description,
		URL:           response.URL,
		DefaultBranch: response.DefaultBranchRef.Name,
	}, nil
}

// DefaultBranch returns the default branch of the repository checked out at repositoryPath.
func (client *Client) DefaultBranch(executionContext context.Context, repositoryPath string) (string, error) {
	metadata, metadataError := client.ResolveRepoMetadata(executionContext, repositoryPath)
	if metadataError != nil {
		return "", metadataError
	}
	defaultBranch := strings.TrimSpace(metadata.DefaultBranch)
	if len(defaultBranch) == 0 {
		return "", ResponseDecodingError{Operation: repositoryMetadataOperationNameConstant, Cause: errors.New(missingDefaultBranchMessageConstant)}
	}
	return defaultBranch, nil
}

// CreatePullRequest opens a pull request and returns it as reported by gh.
func (client *Client) CreatePullRequest(executionContext context.Context, repositoryPath string, options PullRequestCreateOptions) (PullRequest, error) {
	title := strings.TrimSpace(options.Title)
	if len(title) == 0 {
		return PullRequest{}, InvalidInputError{FieldName: titleFieldNameConstant, Message: requiredValueMessageConstant}
	}
	headBranch := strings.TrimSpace(options.HeadBranch)
	if len(headBranch) == 0 {
		return PullRequest{}, InvalidInputError{FieldName: headBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	baseBranch := strings.TrimSpace(options.BaseBranch)
	if len(baseBranch) == 0 {
		return PullRequest{}, InvalidInputError{FieldName: baseBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	arguments := []string{
		pullRequestSubcommandConstant,
		createSubcommandConstant,
		titleFlagConstant,
		title,
		bodyFlagConstant,
		options.Body,
		baseFlagConstant,
		baseBranch,
		headFlagConstant,
		headBranch,
	}
	if options.Draft {
		arguments = append(arguments, draftFlagConstant)
	}

	executionResult, executionError := client.run(executionContext, repositoryPath, arguments...)
	if executionError != nil {
		return PullRequest{}, OperationError{Operation: createPullRequestOperationNameConstant, Cause: executionError}
	}

	pullRequestURL := lastNonEmptyLine(executionResult.StandardOutput)
	if len(pullRequestURL) == 0 {
		return PullRequest{}, ResponseDecodingError{Operation: createPullRequestOperationNameConstant, Cause: errors.New(missingPullRequestURLMessageConstant)}
	}
	reference, parseError := ParsePullRequestURL(pullRequestURL)
	if parseError != nil {
		return PullRequest{}, ResponseDecodingError{Operation: createPullRequestOperationNameConstant, Cause: parseError}
	}

	return PullRequest{
		Number:      reference.Number,
		Title:       title,
		Body:        options.Body,
		URL:         pullRequestURL,
		State:       strings.ToUpper(openStateConstant),
		BaseRefName: baseBranch,
		HeadRefName: headBranch,
		IsDraft:     options.Draft,
	}, nil
}

// ViewPullRequest loads a pull request by number, URL, or branch. An empty identifier selects the current branch.
func (client *Client) ViewPullRequest(executionContext context.Context, repositoryPath string, identifier string) (PullRequest, error) {
	arguments := withIdentifier([]string{pullRequestSubcommandConstant, viewSubcommandConstant}, identifier)
	arguments = append(arguments, jsonFlagConstant, pullRequestJSONFieldsConstant)

	executionResult, executionError := client.run(executionContext, repositoryPath, arguments...)
	if executionError != nil {
		return PullRequest{}, OperationError{Operation: viewPullRequestOperationNameConstant, Cause: executionError}
	}

	var response pullRequestResponse
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return PullRequest{}, ResponseDecodingError{Operation: viewPullRequestOperationNameConstant, Cause: decodingError}
	}
	return response.toPullRequest(), nil
}

// FindOpenPullRequestForBranch returns the open pull request whose head is branchName, if any.
func (client *Client) FindOpenPullRequestForBranch(executionContext context.Context, repositoryPath string, branchName string) (PullRequest, bool, error) {
	trimmedBranch := strings.TrimSpace(branchName)
	if len(trimmedBranch) == 0 {
		return PullRequest{}, false, InvalidInputError{FieldName: headBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := client.run(
		executionContext,
		repositoryPath,
		pullRequestSubcommandConstant,
		listSubcommandConstant,
		headFlagConstant,
		trimmedBranch,
		stateFlagConstant,
		openStateConstant,
		jsonFlagConstant,
		pullRequestJSONFieldsConstant,
	)
	if executionError != nil {
		return PullRequest{}, false, OperationError{Operation: findPullRequestOperationNameConstant, Cause: executionError}
	}

	var response []pullRequestResponse
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return PullRequest{}, false, ResponseDecodingError{Operation: findPullRequestOperationNameConstant, Cause: decodingError}
	}
	if len(response) == 0 {
		return PullRequest{}, false, nil
	}
	return response[0].toPullRequest(), true, nil
}

// ListPullRequestCommits returns the commits of a pull request in the order gh reports them.
func (client *Client) ListPullRequestCommits(executionContext context.Context, repositoryPath string, identifier string) ([]PullRequestCommit, error) {
	arguments := withIdentifier([]string{pullRequestSubcommandConstant, viewSubcommandConstant}, identifier)
	arguments = append(arguments, jsonFlagConstant, pullRequestCommitsJSONFieldsConstant)

	executionResult, executionError := client.run(executionContext, repositoryPath, arguments...)
	if executionError != nil {
		return nil, OperationError{Operation: listCommitsOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Commits []struct {
			OID             string `json:"oid"`
			MessageHeadline string `json:"messageHeadline"`
			Authors         []struct {
				Name  string `json:"name"`
				Email string `json:"email"`
				Login string `json:"login"`
			} `json:"authors"`
		} `json:"commits"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return nil, ResponseDecodingError{Operation: listCommitsOperationNameConstant, Cause: decodingError}
	}

	commits := make([]PullRequestCommit, 0, len(response.Commits))
	for _, commitEntry := range response.Commits {
		authors := make([]CommitAuthor, 0, len(commitEntry.Authors))
		for _, authorEntry := range commitEntry.Authors {
			authors = append(authors, CommitAuthor{Name: authorEntry.Name, Email: authorEntry.Email, Login: authorEntry.Login})
		}
		commits = append(commits, PullRequestCommit{OID: commitEntry.OID, MessageHeadline: commitEntry.MessageHeadline, Authors: authors})
	}
	return commits, nil
}

// PullRequestDiff returns the unified diff of a pull request without color codes.
func (client *Client) PullRequestDiff(executionContext context.Context, repositoryPath string, identifier string) (string, error) {
	arguments := withIdentifier([]string{pullRequestSubcommandConstant, diffSubcommandConstant}, identifier)
	arguments = append(arguments, colorNeverFlagConstant)

	executionResult, executionError := client.run(executionContext, repositoryPath, arguments...)
	if executionError != nil {
		return "", OperationError{Operation: pullRequestDiffOperationNameConstant, Cause: executionError}
	}
	return executionResult.StandardOutput, nil
}

// PullRequestMetadata returns the requested fields as decoded JSON values.
func (client *Client) PullRequestMetadata(executionContext context.Context, repositoryPath string, identifier string, fields []string) (map[string]any, error) {
	if len(fields) == 0 {
		fields = ReviewMetadataFields
	}
	arguments := withIdentifier([]string{pullRequestSubcommandConstant, viewSubcommandConstant}, identifier)
	arguments = append(arguments, jsonFlagConstant, strings.Join(fields, ","))

	executionResult, executionError := client.run(executionContext, repositoryPath, arguments...)
	if executionError != nil {
		return nil, OperationError{Operation: pullRequestMetadataOperationNameConstant, Cause: executionError}
	}

	metadata := map[string]any{}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &metadata); decodingError != nil {
		return nil, ResponseDecodingError{Operation: pullRequestMetadataOperationNameConstant, Cause: decodingError}
	}
	return metadata, nil
}

// OpenPullRequestInBrowser opens the pull request page with gh pr view --web.
func (client *Client) OpenPullRequestInBrowser(executionContext context.Context, repositoryPath string, identifier string) error {
	trimmedIdentifier := strings.TrimSpace(identifier)
	if len(trimmedIdentifier) == 0 {
		return InvalidInputError{FieldName: pullRequestFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if _, executionError := client.run(executionContext, repositoryPath, pullRequestSubcommandConstant, viewSubcommandConstant, trimmedIdentifier, webFlagConstant); executionError != nil {
		return OperationError{Operation: openPullRequestOperationNameConstant, Cause: executionError}
	}
	return nil
}

// DefaultRepositoryConfigured reports whether gh repo set-default has been run for the checkout.
func (client *Client) DefaultRepositoryConfigured(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := client.run(executionContext, repositoryPath, repoSubcommandConstant, setDefaultSubcommandConstant, viewDefaultFlagConstant)
	if executionError != nil {
		return false, OperationError{Operation: defaultRepositoryOperationNameConstant, Cause: executionError}
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0, nil
}

// SetDefaultRepository points gh at owner/repository for the checkout.
func (client *Client) SetDefaultRepository(executionContext context.Context, repositoryPath string, nameWithOwner string) error {
	trimmedRepository := strings.TrimSpace(nameWithOwner)
	if len(trimmedRepository) == 0 {
		return InvalidInputError{FieldName: remoteRepositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if _, executionError := client.run(executionContext, repositoryPath, repoSubcommandConstant, setDefaultSubcommandConstant, trimmedRepository); executionError != nil {
		return OperationError{Operation: defaultRepositoryOperationNameConstant, Cause: executionError}
	}
	return nil
}

func (client *Client) run(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	return client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     strings.TrimSpace(repositoryPath),
		EnvironmentVariables: map[string]string{gitHubPromptEnvironmentNameConstant: gitHubPromptEnvironmentDisabledValue},
	})
}

func withIdentifier(arguments []string, identifier string) []string {
	trimmedIdentifier := strings.TrimSpace(identifier)
	if len(trimmedIdentifier) == 0 {
		return arguments
	}
	return append(arguments, trimmedIdentifier)
}

func lastNonEmptyLine(output string) string {
	lines := strings.Split(output, "\n")
	for index := len(lines) - 1; index >= 0; index-- {
		trimmed := strings.TrimSpace(lines[index])
		if len(trimmed) > 0 {
			return trimmed
		}
	}
	return ""
}
