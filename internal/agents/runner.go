package agents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/prflow/internal/execshell"
)

const (
	emptyResponseTemplateConstant = "agent %s returned an empty response"
	agentFailureTemplateConstant  = "agent %s: %w"
)

// ErrAgentExecutorNotConfigured indicates a Runner was built without an executor.
var ErrAgentExecutorNotConfigured = errors.New("agent executor not configured")

// ErrRegistryNotConfigured indicates a Runner was built without a registry.
var ErrRegistryNotConfigured = errors.New("agent registry not configured")

// CommandExecutor runs an agent binary.
type CommandExecutor interface {
	ExecuteAgent(executionContext context.Context, executable string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Request describes one agent invocation.
type Request struct {
	Agent            string
	Task             Task
	Model            string
	Prompt           string
	WorkingDirectory string
	OutputStream     io.Writer
}

// Response is the trimmed agent output along with the resolved invocation.
type Response struct {
	Invocation Invocation
	Text       string
}

// Runner invokes agents from the registry through the shell executor.
type Runner struct {
	executor CommandExecutor
	registry *Registry
}

// NewRunner constructs a Runner.
func NewRunner(executor CommandExecutor, registry *Registry) (*Runner, error) {
	if executor == nil {
		return nil, ErrAgentExecutorNotConfigured
	}
	if registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	return &Runner{executor: executor, registry: registry}, nil
}

// Registry exposes the runner's agent registry.
func (runner *Runner) Registry() *Registry {
	return runner.registry
}

// Run executes the agent once and returns its trimmed standard output. Empty output is an error.
func (runner *Runner) Run(executionContext context.Context, request Request) (Response, error) {
	invocation, invocationError := runner.registry.Invocation(request.Agent, request.Task, request.Model, request.Prompt)
	if invocationError != nil {
		return Response{}, invocationError
	}

	if invocation.Timeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, invocation.Timeout)
		defer cancel()
	}

	result, executionError := runner.executor.ExecuteAgent(executionContext, invocation.Executable, execshell.CommandDetails{
		Arguments:        invocation.Arguments,
		WorkingDirectory: request.WorkingDirectory,
		OutputStream:     request.OutputStream,
	})
	if executionError != nil {
		return Response{}, fmt.Errorf(agentFailureTemplateConstant, invocation.Agent, executionError)
	}

	text := strings.TrimSpace(result.StandardOutput)
	if len(text) == 0 {
		return Response{}, fmt.Errorf(emptyResponseTemplateConstant, invocation.Agent)
	}

	return Response{Invocation: invocation, Text: text}, nil
}

// CommitMessageGenerator asks a single configured agent for commit message suggestions.
type CommitMessageGenerator struct {
	runner *Runner
	agent  string
	model  string
}

// NewCommitMessageGenerator binds a runner to the agent and model chosen for commit messages.
func NewCommitMessageGenerator(runner *Runner, agent string, model string) *CommitMessageGenerator {
	return &CommitMessageGenerator{runner: runner, agent: agent, model: model}
}

// Available reports whether the selected agent binary is installed.
func (generator *CommitMessageGenerator) Available() bool {
	if generator == nil || generator.runner == nil || len(strings.TrimSpace(generator.agent)) == 0 {
		return false
	}
	return generator.runner.registry.Available(generator.agent)
}

// Generate returns the agent's one-line commit message suggestion for diff.
func (generator *CommitMessageGenerator) Generate(executionContext context.Context, repositoryPath string, diff string) (string, error) {
	response, runError := generator.runner.Run(executionContext, Request{
		Agent:            generator.agent,
		Task:             TaskCommitMessage,
		Model:            generator.model,
		Prompt:           CommitMessagePrompt(diff),
		WorkingDirectory: repositoryPath,
	})
	if runError != nil {
		return "", runError
	}
	return response.Text, nil
}
