// Package execshelltest provides a scripted command executor for exercising prflow flows without spawning processes.
package execshelltest

import (
	"context"
	"strings"
	"sync"

	"github.com/temirov/prflow/internal/execshell"
)

// Response is the scripted outcome of one command line.
type Response struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
	Err            error
}

// Call records one executed command.
type Call struct {
	Command execshell.ShellCommand
}

// CommandLine renders the call as "name arg1 arg2".
func (call Call) CommandLine() string {
	return call.Command.CommandLine()
}

// Recorder answers git, gh, and agent invocations from a script keyed by command line.
// Lookups try the full command line first and then progressively shorter prefixes, so
// "git commit" matches "git commit -m title". Unscripted commands succeed with empty output.
type Recorder struct {
	mutex     sync.Mutex
	responses map[string][]Response
	calls     []Call
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{responses: map[string][]Response{}}
}

// Script sets the response for commandLine, replacing anything scripted earlier.
func (recorder *Recorder) Script(commandLine string, response Response) *Recorder {
	return recorder.ScriptSequence(commandLine, response)
}

// ScriptSequence sets responses returned in order for consecutive runs of commandLine. The last one repeats.
func (recorder *Recorder) ScriptSequence(commandLine string, responses ...Response) *Recorder {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	recorder.responses[commandLine] = append([]Response{}, responses...)
	return recorder
}

// ExecuteGit implements the git executor contract.
func (recorder *Recorder) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return recorder.execute(executionContext, execshell.ShellCommand{Name: execshell.CommandGit, Details: details})
}

// ExecuteGitHubCLI implements the gh executor contract.
func (recorder *Recorder) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return recorder.execute(executionContext, execshell.ShellCommand{Name: execshell.CommandGitHub, Details: details})
}

// ExecuteAgent implements the agent executor contract. Scripted output is also written to details.OutputStream.
func (recorder *Recorder) ExecuteAgent(executionContext context.Context, executable string, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return recorder.execute(executionContext, execshell.ShellCommand{Name: execshell.CommandName(executable), Details: details})
}

// Calls returns every recorded call in order.
func (recorder *Recorder) Calls() []Call {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	return append([]Call{}, recorder.calls...)
}

// CommandLines returns the command line of every recorded call in order.
func (recorder *Recorder) CommandLines() []string {
	calls := recorder.Calls()
	commandLines := make([]string, 0, len(calls))
	for _, call := range calls {
		commandLines = append(commandLines, call.CommandLine())
	}
	return commandLines
}

// Ran reports whether any recorded command line starts with prefix.
func (recorder *Recorder) Ran(prefix string) bool {
	for _, commandLine := range recorder.CommandLines() {
		if strings.HasPrefix(commandLine, prefix) {
			return true
		}
	}
	return false
}

func (recorder *Recorder) execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	recorder.mutex.Lock()
	recorder.calls = append(recorder.calls, Call{Command: command})
	response := recorder.lookup(command)
	recorder.mutex.Unlock()

	if contextError := executionContext.Err(); contextError != nil {
		return execshell.ExecutionResult{}, execshell.CommandExecutionError{Command: command, Cause: contextError}
	}
	if response.Err != nil {
		return execshell.ExecutionResult{}, execshell.CommandExecutionError{Command: command, Cause: response.Err}
	}

	result := execshell.ExecutionResult{
		StandardOutput: response.StandardOutput,
		StandardError:  response.StandardError,
		ExitCode:       response.ExitCode,
	}
	if result.ExitCode != 0 {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: command, Result: result}
	}
	if command.Details.OutputStream != nil && len(result.StandardOutput) > 0 {
		_, _ = command.Details.OutputStream.Write([]byte(result.StandardOutput))
	}
	return result, nil
}

func (recorder *Recorder) lookup(command execshell.ShellCommand) Response {
	parts := append([]string{string(command.Name)}, command.Details.Arguments...)
	for length := len(parts); length > 0; length-- {
		key := strings.Join(parts[:length], " ")
		queued, exists := recorder.responses[key]
		if !exists || len(queued) == 0 {
			continue
		}
		response := queued[0]
		if len(queued) > 1 {
			recorder.responses[key] = queued[1:]
		}
		return response
	}
	return Response{}
}
