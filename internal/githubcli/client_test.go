package githubcli_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/temirov/prflow/internal/execshell"
	"github.com/temirov/prflow/internal/githubcli"
)

const (
	testRepositoryPathConstant                = "/tmp/repository"
	testResponsesArchivePathConstant          = "gh_responses.txtar"
	testPullRequestURLConstant                = "https://github.com/temirov/prflow/pull/42"
	testHeadBranchConstant                    = "feat-add-thing"
	testBaseBranchConstant                    = "main"
	testPullRequestTitleConstant              = "feat: add thing"
	testResolveSuccessCaseNameConstant        = "resolve_success"
	testResolveDecodeFailureCaseNameConstant  = "resolve_decode_failure"
	testResolveCommandFailureCaseNameConstant = "resolve_command_failure"
	testMissingDefaultBranchCaseNameConstant  = "missing_default_branch"
	testFindExistingCaseNameConstant          = "find_existing"
	testFindMissingCaseNameConstant           = "find_missing"
	testFindDecodeFailureCaseNameConstant     = "find_decode_failure"
)

type stubGitHubExecutor struct {
	executeFunc     func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error)
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executeFunc != nil {
		return executor.executeFunc(executionContext, details)
	}
	return execshell.ExecutionResult{}, nil
}

func respondWith(output string) *stubGitHubExecutor {
	return &stubGitHubExecutor{
		executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
			return execshell.ExecutionResult{StandardOutput: output}, nil
		},
	}
}

func loadResponse(testInstance *testing.T, name string) string {
	testInstance.Helper()
	archive, parseError := txtar.ParseFile(filepath.Join("testdata", testResponsesArchivePathConstant))
	require.NoError(testInstance, parseError)
	for _, file := range archive.Files {
		if file.Name == name {
			return string(file.Data)
		}
	}
	testInstance.Fatalf("response %s not found in archive", name)
	return ""
}

func newClient(testInstance *testing.T, executor *stubGitHubExecutor) *githubcli.Client {
	testInstance.Helper()
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)
	return client
}

func TestNewClientValidation(testInstance *testing.T) {
	testInstance.Run("nil_executor", func(testInstance *testing.T) {
		client, creationError := githubcli.NewClient(nil)
		require.Error(testInstance, creationError)
		require.ErrorIs(testInstance, creationError, githubcli.ErrExecutorNotConfigured)
		require.Nil(testInstance, client)
	})
}

func TestDefaultBranch(testInstance *testing.T) {
	testCases := []struct {
		name           string
		executor       *stubGitHubExecutor
		expectedBranch string
		errorType      any
	}{
		{
			name:           testResolveSuccessCaseNameConstant,
			executor:       respondWith(loadResponse(testInstance, "repo_view.json")),
			expectedBranch: testBaseBranchConstant,
		},
		{
			name:      testResolveDecodeFailureCaseNameConstant,
			executor:  respondWith("not json"),
			errorType: githubcli.ResponseDecodingError{},
		},
		{
			name:      testMissingDefaultBranchCaseNameConstant,
			executor:  respondWith(loadResponse(testInstance, "repo_view_without_default.json")),
			errorType: githubcli.ResponseDecodingError{},
		},
		{
			name: testResolveCommandFailureCaseNameConstant,
			executor: &stubGitHubExecutor{
				executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
					return execshell.ExecutionResult{}, errors.New("gh failure")
				},
			},
			errorType: githubcli.OperationError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client := newClient(testInstance, testCase.executor)
			defaultBranch, branchError := client.DefaultBranch(context.Background(), testRepositoryPathConstant)
			if testCase.errorType != nil {
				require.Error(testInstance, branchError)
				require.IsType(testInstance, testCase.errorType, branchError)
				return
			}
			require.NoError(testInstance, branchError)
			require.Equal(testInstance, testCase.expectedBranch, defaultBranch)

			require.Len(testInstance, testCase.executor.recordedDetails, 1)
			recorded := testCase.executor.recordedDetails[0]
			require.Equal(testInstance, []string{"repo", "view", "--json", "nameWithOwner,description,url,defaultBranchRef"}, recorded.Arguments)
			require.Equal(testInstance, testRepositoryPathConstant, recorded.WorkingDirectory)
			require.Equal(testInstance, "1", recorded.EnvironmentVariables["GH_PROMPT_DISABLED"])
		})
	}
}

func TestCreatePullRequest(testInstance *testing.T) {
	executor := respondWith(loadResponse(testInstance, "pr_create.out"))
	client := newClient(testInstance, executor)

	pullRequest, createError := client.CreatePullRequest(context.Background(), testRepositoryPathConstant, githubcli.PullRequestCreateOptions{
		Title:      testPullRequestTitleConstant,
		Body:       "Adds the thing.",
		BaseBranch: testBaseBranchConstant,
		HeadBranch: testHeadBranchConstant,
		Draft:      true,
	})
	require.NoError(testInstance, createError)
	require.Equal(testInstance, 43, pullRequest.Number)
	require.Equal(testInstance, "https://github.com/temirov/prflow/pull/43", pullRequest.URL)
	require.Equal(testInstance, testPullRequestTitleConstant, pullRequest.Title)

	require.Len(testInstance, executor.recordedDetails, 1)
	require.Equal(testInstance, []string{
		"pr", "create",
		"--title", testPullRequestTitleConstant,
		"--body", "Adds the thing.",
		"--base", testBaseBranchConstant,
		"--head", testHeadBranchConstant,
		"--draft",
	}, executor.recordedDetails[0].Arguments)
}

func TestCreatePullRequestValidationAndOutput(testInstance *testing.T) {
	testCases := []struct {
		name      string
		options   githubcli.PullRequestCreateOptions
		output    string
		errorType any
	}{
		{
			name:      "missing_title",
			options:   githubcli.PullRequestCreateOptions{HeadBranch: testHeadBranchConstant, BaseBranch: testBaseBranchConstant},
			errorType: githubcli.InvalidInputError{},
		},
		{
			name:      "missing_base",
			options:   githubcli.PullRequestCreateOptions{Title: testPullRequestTitleConstant, HeadBranch: testHeadBranchConstant},
			errorType: githubcli.InvalidInputError{},
		},
		{
			name:      "no_url_printed",
			options:   githubcli.PullRequestCreateOptions{Title: testPullRequestTitleConstant, HeadBranch: testHeadBranchConstant, BaseBranch: testBaseBranchConstant},
			output:    "\n",
			errorType: githubcli.ResponseDecodingError{},
		},
		{
			name:      "unexpected_url",
			options:   githubcli.PullRequestCreateOptions{Title: testPullRequestTitleConstant, HeadBranch: testHeadBranchConstant, BaseBranch: testBaseBranchConstant},
			output:    "https://example.com/something\n",
			errorType: githubcli.ResponseDecodingError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client := newClient(testInstance, respondWith(testCase.output))
			_, createError := client.CreatePullRequest(context.Background(), testRepositoryPathConstant, testCase.options)
			require.Error(testInstance, createError)
			require.IsType(testInstance, testCase.errorType, createError)
		})
	}
}

func TestViewPullRequest(testInstance *testing.T) {
	testCases := []struct {
		name              string
		identifier        string
		expectedArguments []string
	}{
		{
			name:              "current_branch",
			identifier:        "",
			expectedArguments: []string{"pr", "view", "--json", "number,title,body,url,state,baseRefName,headRefName,author,isDraft"},
		},
		{
			name:              "explicit_url",
			identifier:        testPullRequestURLConstant,
			expectedArguments: []string{"pr", "view", testPullRequestURLConstant, "--json", "number,title,body,url,state,baseRefName,headRefName,author,isDraft"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := respondWith(loadResponse(testInstance, "pr_view.json"))
			client := newClient(testInstance, executor)

			pullRequest, viewError := client.ViewPullRequest(context.Background(), testRepositoryPathConstant, testCase.identifier)
			require.NoError(testInstance, viewError)
			require.Equal(testInstance, githubcli.PullRequest{
				Number:      42,
				Title:       testPullRequestTitleConstant,
				Body:        "Adds the thing.",
				URL:         testPullRequestURLConstant,
				State:       "OPEN",
				BaseRefName: testBaseBranchConstant,
				HeadRefName: testHeadBranchConstant,
				AuthorLogin: "ada",
			}, pullRequest)
			require.Equal(testInstance, testCase.expectedArguments, executor.recordedDetails[0].Arguments)
		})
	}
}

func TestFindOpenPullRequestForBranch(testInstance *testing.T) {
	testCases := []struct {
		name          string
		output        string
		expectFound   bool
		expectedTitle string
		errorType     any
	}{
		{name: testFindExistingCaseNameConstant, output: loadResponse(testInstance, "pr_list.json"), expectFound: true, expectedTitle: testPullRequestTitleConstant},
		{name: testFindMissingCaseNameConstant, output: loadResponse(testInstance, "pr_list_empty.json")},
		{name: testFindDecodeFailureCaseNameConstant, output: "{", errorType: githubcli.ResponseDecodingError{}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := respondWith(testCase.output)
			client := newClient(testInstance, executor)

			pullRequest, found, findError := client.FindOpenPullRequestForBranch(context.Background(), testRepositoryPathConstant, testHeadBranchConstant)
			if testCase.errorType != nil {
				require.Error(testInstance, findError)
				require.IsType(testInstance, testCase.errorType, findError)
				return
			}
			require.NoError(testInstance, findError)
			require.Equal(testInstance, testCase.expectFound, found)
			require.Equal(testInstance, testCase.expectedTitle, pullRequest.Title)
			require.Equal(testInstance, "pr list --head feat-add-thing --state open --json number,title,body,url,state,baseRefName,headRefName,author,isDraft", strings.Join(executor.recordedDetails[0].Arguments, " "))
		})
	}
}

func TestListPullRequestCommits(testInstance *testing.T) {
	executor := respondWith(loadResponse(testInstance, "pr_commits.json"))
	client := newClient(testInstance, executor)

	commits, listError := client.ListPullRequestCommits(context.Background(), testRepositoryPathConstant, testPullRequestURLConstant)
	require.NoError(testInstance, listError)
	require.Len(testInstance, commits, 2)
	require.Equal(testInstance, "1111111", commits[0].OID)
	require.Equal(testInstance, []githubcli.CommitAuthor{
		{Name: "Grace Hopper", Email: "grace@example.com", Login: "grace"},
		{Name: "Ada Lovelace", Email: "ada@example.com", Login: "ada"},
	}, commits[1].Authors)
	require.Equal(testInstance, []string{"pr", "view", testPullRequestURLConstant, "--json", "commits"}, executor.recordedDetails[0].Arguments)
}

func TestPullRequestDiffAndMetadata(testInstance *testing.T) {
	diffExecutor := respondWith("diff --git a/a.go b/a.go\n")
	diffClient := newClient(testInstance, diffExecutor)
	diff, diffError := diffClient.PullRequestDiff(context.Background(), testRepositoryPathConstant, testPullRequestURLConstant)
	require.NoError(testInstance, diffError)
	require.Equal(testInstance, "diff --git a/a.go b/a.go\n", diff)
	require.Equal(testInstance, []string{"pr", "diff", testPullRequestURLConstant, "--color=never"}, diffExecutor.recordedDetails[0].Arguments)

	metadataExecutor := respondWith(loadResponse(testInstance, "pr_metadata.json"))
	metadataClient := newClient(testInstance, metadataExecutor)
	metadata, metadataError := metadataClient.PullRequestMetadata(context.Background(), testRepositoryPathConstant, testPullRequestURLConstant, nil)
	require.NoError(testInstance, metadataError)
	require.Equal(testInstance, testPullRequestTitleConstant, metadata["title"])
	require.Equal(testInstance, strings.Join(githubcli.ReviewMetadataFields, ","), metadataExecutor.recordedDetails[0].Arguments[4])
}

func TestDefaultRepositoryConfiguration(testInstance *testing.T) {
	unsetClient := newClient(testInstance, respondWith(""))
	configured, viewError := unsetClient.DefaultRepositoryConfigured(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, viewError)
	require.False(testInstance, configured)

	setExecutor := respondWith("temirov/prflow\n")
	setClient := newClient(testInstance, setExecutor)
	configured, viewError = setClient.DefaultRepositoryConfigured(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, viewError)
	require.True(testInstance, configured)

	require.NoError(testInstance, setClient.SetDefaultRepository(context.Background(), testRepositoryPathConstant, "temirov/prflow"))
	require.Equal(testInstance, []string{"repo", "set-default", "temirov/prflow"}, setExecutor.recordedDetails[1].Arguments)

	require.IsType(testInstance, githubcli.InvalidInputError{}, setClient.SetDefaultRepository(context.Background(), testRepositoryPathConstant, " "))
}
