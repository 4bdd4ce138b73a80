package agents

import (
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/google/shlex"
)

const (
	// AgentCopilot identifies the GitHub Copilot CLI.
	AgentCopilot = "copilot"
	// AgentGemini identifies the Gemini CLI.
	AgentGemini  = "gemini"

	copilotExecutableConstant           = "copilot"
	geminiExecutableConstant            = "gemini"
	copilotCommitModelConstant          = "gpt-5-mini"
	copilotReviewModelConstant          = "gpt-5.2-codex"
	geminiCommitModelConstant           = "gemini-3-flash-preview"
	geminiReviewModelConstant           = "gemini-3-pro-preview"
	silentFlagConstant                  = "--silent"
	modelFlagConstant                   = "--model"
	promptFlagConstant                  = "--prompt"
	sandboxFlagConstant                 = "--sandbox"
	outputFormatFlagConstant            = "--output-format"
	textOutputFormatConstant            = "text"
	unknownAgentErrorTemplateConstant   = "unknown agent %q (supported: %s)"
	unavailableAgentTemplateConstant    = "agent %s is not installed: %s was not found on PATH"
	unknownTaskErrorTemplateConstant    = "unsupported agent task %q"
	extraArgumentsErrorTemplateConstant = "agents.%s.extra_args: %w"
	agentListSeparatorConstant          = ", "
)

// Task identifies what an agent is asked to produce.
type Task string

// Supported agent tasks.
const (
	TaskCommitMessage Task = "commit-message"
	TaskReview        Task = "review"
)

// ErrLookPathNotConfigured indicates a registry was built with a nil PATH lookup.
var ErrLookPathNotConfigured = errors.New("agent path lookup not configured")

// LookPathFunc resolves an executable name to a path.
type LookPathFunc func(executable string) (string, error)

// Settings carries user configuration for a single agent.
type Settings struct {
	ExtraArguments string        `mapstructure:"extra_args"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// Definition describes one supported agent CLI.
type Definition struct {
	Name          string
	Executable    string
	DefaultModels map[Task]string
	arguments     func(task Task, model string, prompt string) []string
}

// DefaultModel returns the model used for task when none is requested.
func (definition Definition) DefaultModel(task Task) string {
	return definition.DefaultModels[task]
}

// Invocation is a fully resolved agent command.
type Invocation struct {
	Agent      string
	Executable string
	Model      string
	Arguments  []string
	Timeout    time.Duration
}

// UnknownAgentError reports an agent name outside the registry.
type UnknownAgentError struct {
	Name      string
	Supported []string
}

func (unknownError UnknownAgentError) Error() string {
	return fmt.Sprintf(unknownAgentErrorTemplateConstant, unknownError.Name, strings.Join(unknownError.Supported, agentListSeparatorConstant))
}

// UnavailableAgentError reports an agent whose binary cannot be found.
type UnavailableAgentError struct {
	Name       string
	Executable string
}

func (unavailableError UnavailableAgentError) Error() string {
	return fmt.Sprintf(unavailableAgentTemplateConstant, unavailableError.Name, unavailableError.Executable)
}

// Registry holds the known agents and their configured settings.
type Registry struct {
	definitions map[string]Definition
	settings    map[string]Settings
	lookPath    LookPathFunc
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithLookPath replaces exec.LookPath, primarily for tests.
func WithLookPath(lookPath LookPathFunc) RegistryOption {
	return func(registry *Registry) {
		registry.lookPath = lookPath
	}
}

// WithSettings applies per-agent configuration keyed by agent name.
func WithSettings(settings map[string]Settings) RegistryOption {
	return func(registry *Registry) {
		for name, agentSettings := range settings {
			registry.settings[strings.ToLower(strings.TrimSpace(name))] = agentSettings
		}
	}
}

// NewRegistry builds the registry of supported agents.
func NewRegistry(options ...RegistryOption) (*Registry, error) {
	registry := &Registry{
		definitions: builtInDefinitions(),
		settings:    map[string]Settings{},
		lookPath:    exec.LookPath,
	}
	for _, option := range options {
		if option != nil {
			option(registry)
		}
	}
	if registry.lookPath == nil {
		return nil, ErrLookPathNotConfigured
	}
	return registry, nil
}

func builtInDefinitions() map[string]Definition {
	return map[string]Definition{
		AgentCopilot: {
			Name:       AgentCopilot,
			Executable: copilotExecutableConstant,
			DefaultModels: map[Task]string{
				TaskCommitMessage: copilotCommitModelConstant,
				TaskReview:        copilotReviewModelConstant,
			},
			arguments: func(task Task, model string, prompt string) []string {
				return []string{silentFlagConstant, modelFlagConstant, model, promptFlagConstant, prompt}
			},
		},
		AgentGemini: {
			Name:       AgentGemini,
			Executable: geminiExecutableConstant,
			DefaultModels: map[Task]string{
				TaskCommitMessage: geminiCommitModelConstant,
				TaskReview:        geminiReviewModelConstant,
			},
			arguments: func(task Task, model string, prompt string) []string {
				if task == TaskReview {
					return []string{modelFlagConstant, model, sandboxFlagConstant, prompt}
				}
				return []string{modelFlagConstant, model, sandboxFlagConstant, outputFormatFlagConstant, textOutputFormatConstant, promptFlagConstant, prompt}
			},
		},
	}
}

// SupportedAgentNames lists the built-in agent names in sorted order.
func SupportedAgentNames() []string {
	return sortedNames(builtInDefinitions())
}

// Names lists the supported agent names in sorted order.
func (registry *Registry) Names() []string {
	return sortedNames(registry.definitions)
}

func sortedNames(definitions map[string]Definition) []string {
	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the definition registered under name.
func (registry *Registry) Lookup(name string) (Definition, error) {
	definition, exists := registry.definitions[strings.ToLower(strings.TrimSpace(name))]
	if !exists {
		return Definition{}, UnknownAgentError{Name: name, Supported: registry.Names()}
	}
	return definition, nil
}

// CheckAvailable verifies the agent is known and its binary is on PATH.
func (registry *Registry) CheckAvailable(name string) error {
	definition, lookupError := registry.Lookup(name)
	if lookupError != nil {
		return lookupError
	}
	if _, pathError := registry.lookPath(definition.Executable); pathError != nil {
		return UnavailableAgentError{Name: definition.Name, Executable: definition.Executable}
	}
	return nil
}

// Available reports whether CheckAvailable succeeds.
func (registry *Registry) Available(name string) bool {
	return registry.CheckAvailable(name) == nil
}

// Invocation resolves the command line for asking agent to perform task with prompt.
// An empty model selects the agent's default model for the task.
func (registry *Registry) Invocation(name string, task Task, model string, prompt string) (Invocation, error) {
	definition, lookupError := registry.Lookup(name)
	if lookupError != nil {
		return Invocation{}, lookupError
	}
	if task != TaskCommitMessage && task != TaskReview {
		return Invocation{}, fmt.Errorf(unknownTaskErrorTemplateConstant, task)
	}

	resolvedModel := strings.TrimSpace(model)
	if len(resolvedModel) == 0 {
		resolvedModel = definition.DefaultModel(task)
	}

	agentSettings := registry.settings[definition.Name]
	extraArguments, splitError := ParseExtraArguments(agentSettings.ExtraArguments)
	if splitError != nil {
		return Invocation{}, fmt.Errorf(extraArgumentsErrorTemplateConstant, definition.Name, splitError)
	}

	standardArguments := definition.arguments(task, resolvedModel, prompt)
	arguments := make([]string, 0, len(extraArguments)+len(standardArguments))
	arguments = append(arguments, extraArguments...)
	arguments = append(arguments, standardArguments...)

	return Invocation{
		Agent:      definition.Name,
		Executable: definition.Executable,
		Model:      resolvedModel,
		Arguments:  arguments,
		Timeout:    agentSettings.Timeout,
	}, nil
}

// ParseExtraArguments splits configured extra arguments using shell quoting rules.
func ParseExtraArguments(rawArguments string) ([]string, error) {
	if len(strings.TrimSpace(rawArguments)) == 0 {
		return nil, nil
	}
	return shlex.Split(rawArguments)
}
