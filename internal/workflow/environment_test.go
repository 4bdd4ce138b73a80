package workflow_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/prflow/internal/execshell/execshelltest"
	"github.com/temirov/prflow/internal/utils"
	"github.com/temirov/prflow/internal/workflow"
)

const (
	environmentRepositoryRootConstant = "/tmp/project"
	revParseCommandConstant           = "git rev-parse --show-toplevel"
	defaultViewCommandConstant        = "gh repo set-default --view"
	remoteListCommandConstant         = "git remote"
)

func TestPrepareRepository(testInstance *testing.T) {
	testCases := []struct {
		name             string
		script           map[string]execshelltest.Response
		expectedCommands []string
		expectError      bool
	}{
		{
			name: "already_configured",
			script: map[string]execshelltest.Response{
				defaultViewCommandConstant: {StandardOutput: "temirov/prflow\n"},
			},
			expectedCommands: []string{revParseCommandConstant, defaultViewCommandConstant},
		},
		{
			name: "prefers_upstream",
			script: map[string]execshelltest.Response{
				remoteListCommandConstant:     {StandardOutput: "origin\nupstream\n"},
				"git remote get-url upstream": {StandardOutput: "git@github.com:upstream-owner/prflow.git\n"},
			},
			expectedCommands: []string{
				revParseCommandConstant,
				defaultViewCommandConstant,
				remoteListCommandConstant,
				"git remote get-url upstream",
				"gh repo set-default upstream-owner/prflow",
			},
		},
		{
			name: "falls_back_to_origin",
			script: map[string]execshelltest.Response{
				remoteListCommandConstant:   {StandardOutput: "origin\n"},
				"git remote get-url origin": {StandardOutput: "https://github.com/fork-owner/prflow.git\n"},
			},
			expectedCommands: []string{
				revParseCommandConstant,
				defaultViewCommandConstant,
				remoteListCommandConstant,
				"git remote get-url origin",
				"gh repo set-default fork-owner/prflow",
			},
		},
		{
			name: "no_known_remote",
			script: map[string]execshelltest.Response{
				remoteListCommandConstant: {StandardOutput: "mirror\n"},
			},
			expectedCommands: []string{revParseCommandConstant, defaultViewCommandConstant, remoteListCommandConstant},
			expectError:      true,
		},
		{
			name: "not_a_repository",
			script: map[string]execshelltest.Response{
				revParseCommandConstant: {ExitCode: 128, StandardError: "fatal: not a git repository"},
			},
			expectedCommands: []string{revParseCommandConstant},
			expectError:      true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recorder := execshelltest.NewRecorder()
			if _, scripted := testCase.script[revParseCommandConstant]; !scripted {
				recorder.Script(revParseCommandConstant, execshelltest.Response{StandardOutput: environmentRepositoryRootConstant + "\n"})
			}
			for commandLine, response := range testCase.script {
				recorder.Script(commandLine, response)
			}
			environment := newTestEnvironment(testInstance, recorder, zap.NewNop())

			root, prepareError := environment.PrepareRepository(context.Background(), environmentRepositoryRootConstant)
			require.Equal(testInstance, testCase.expectedCommands, recorder.CommandLines())
			if testCase.expectError {
				require.Error(testInstance, prepareError)
				return
			}
			require.NoError(testInstance, prepareError)
			require.Equal(testInstance, environmentRepositoryRootConstant, root)
		})
	}
}

func TestPrepareRepositoryLogsConfiguredDefault(testInstance *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	recorder := execshelltest.NewRecorder().
		Script(revParseCommandConstant, execshelltest.Response{StandardOutput: environmentRepositoryRootConstant}).
		Script(remoteListCommandConstant, execshelltest.Response{StandardOutput: "origin"}).
		Script("git remote get-url origin", execshelltest.Response{StandardOutput: "git@github.com:temirov/prflow.git"})
	environment := newTestEnvironment(testInstance, recorder, zap.New(core))

	_, prepareError := environment.PrepareRepository(context.Background(), environmentRepositoryRootConstant)
	require.NoError(testInstance, prepareError)

	entries := logs.FilterMessage("Configured gh default repository").All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, "temirov/prflow", entries[0].ContextMap()["repository"])
	require.Equal(testInstance, "origin", entries[0].ContextMap()["remote"])
}

func TestNewEnvironmentDefaultsOutput(testInstance *testing.T) {
	var output bytes.Buffer
	environment, environmentError := workflow.NewEnvironment(workflow.EnvironmentOptions{Executor: execshelltest.NewRecorder(), Output: &output})
	require.NoError(testInstance, environmentError)
	require.Same(testInstance, &output, environment.Output)
	require.NotNil(testInstance, environment.Logger)
	require.NotNil(testInstance, environment.AgentRunner)
}

func newTestEnvironment(testInstance *testing.T, recorder *execshelltest.Recorder, logger *zap.Logger) *workflow.Environment {
	testInstance.Helper()
	environment, environmentError := workflow.NewEnvironment(workflow.EnvironmentOptions{
		Logger:   logger,
		Executor: recorder,
		Output:   &bytes.Buffer{},
	})
	require.NoError(testInstance, environmentError)
	return environment
}

func TestRepositoryPathFromContext(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()
	require.Equal(testInstance, ".", workflow.RepositoryPath(context.Background()))
	require.Equal(testInstance, "/srv/prflow", workflow.RepositoryPath(accessor.WithRepositoryPath(context.Background(), "/srv/prflow")))
}
