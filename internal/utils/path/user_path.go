package pathutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant               = "~"
	variableMarkerConstant            = "$"
	homeDirectoryErrorTemplate        = "expand %s: home directory unavailable: %v"
	unsetVariableErrorTemplate        = "expand %s: environment variable %s is not set"
	variableReferenceTemplateConstant = "${%s}"
)

// HomeDirectoryLookup returns the current user's home directory.
type HomeDirectoryLookup func() (string, error)

// EnvironmentLookup reports the value of an environment variable and whether it is set.
type EnvironmentLookup func(name string) (string, bool)

// UnsetVariableError reports a $NAME or ${NAME} reference to a variable that is not set.
type UnsetVariableError struct {
	Path     string
	Variable string
}

func (variableError UnsetVariableError) Error() string {
	return fmt.Sprintf(unsetVariableErrorTemplate, variableError.Path, variableError.Variable)
}

// HomeDirectoryError reports a ~ path that could not be expanded.
type HomeDirectoryError struct {
	Path  string
	Cause error
}

func (homeError HomeDirectoryError) Error() string {
	return fmt.Sprintf(homeDirectoryErrorTemplate, homeError.Path, homeError.Cause)
}

func (homeError HomeDirectoryError) Unwrap() error {
	return homeError.Cause
}

// UserPathExpander expands the shorthands people type into --repository, --config, and
// prompt_template values: a leading ~ or ~/ and $NAME or ${NAME} references.
// ~user forms are left alone.
type UserPathExpander struct {
	homeDirectoryLookup HomeDirectoryLookup
	environmentLookup   EnvironmentLookup

	homeOnce           sync.Once
	homeDirectory      string
	homeDirectoryError error
}

// UserPathExpanderOption customizes a UserPathExpander.
type UserPathExpanderOption func(*UserPathExpander)

// WithHomeDirectoryLookup replaces os.UserHomeDir.
func WithHomeDirectoryLookup(lookup HomeDirectoryLookup) UserPathExpanderOption {
	return func(expander *UserPathExpander) {
		if lookup != nil {
			expander.homeDirectoryLookup = lookup
		}
	}
}

// WithEnvironmentLookup replaces os.LookupEnv.
func WithEnvironmentLookup(lookup EnvironmentLookup) UserPathExpanderOption {
	return func(expander *UserPathExpander) {
		if lookup != nil {
			expander.environmentLookup = lookup
		}
	}
}

// NewUserPathExpander builds an expander backed by the process environment.
func NewUserPathExpander(options ...UserPathExpanderOption) *UserPathExpander {
	expander := &UserPathExpander{
		homeDirectoryLookup: os.UserHomeDir,
		environmentLookup:   os.LookupEnv,
	}
	for _, option := range options {
		if option != nil {
			option(expander)
		}
	}
	return expander
}

// Expand trims the candidate and resolves environment references first, then a leading tilde.
// Empty input stays empty.
func (expander *UserPathExpander) Expand(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if expander == nil || len(trimmedPath) == 0 {
		return trimmedPath, nil
	}

	expandedPath, variableError := expander.expandVariables(trimmedPath)
	if variableError != nil {
		return "", variableError
	}
	return expander.expandHome(expandedPath)
}

func (expander *UserPathExpander) expandVariables(candidatePath string) (string, error) {
	if !strings.Contains(candidatePath, variableMarkerConstant) {
		return candidatePath, nil
	}

	var missingVariable string
	expandedPath := os.Expand(candidatePath, func(name string) string {
		value, isSet := expander.environmentLookup(name)
		if !isSet {
			if len(missingVariable) == 0 {
				missingVariable = name
			}
			return fmt.Sprintf(variableReferenceTemplateConstant, name)
		}
		return value
	})
	if len(missingVariable) > 0 {
		return "", UnsetVariableError{Path: candidatePath, Variable: missingVariable}
	}
	return expandedPath, nil
}

func (expander *UserPathExpander) expandHome(candidatePath string) (string, error) {
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath, nil
	}

	remainder := strings.TrimPrefix(candidatePath, tildeSymbolConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return candidatePath, nil
	}

	expander.homeOnce.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryLookup()
		if expander.homeDirectoryError == nil && len(expander.homeDirectory) == 0 {
			expander.homeDirectoryError = os.ErrNotExist
		}
	})
	if expander.homeDirectoryError != nil {
		return "", HomeDirectoryError{Path: candidatePath, Cause: expander.homeDirectoryError}
	}
	if len(remainder) == 0 {
		return expander.homeDirectory, nil
	}
	return filepath.Join(expander.homeDirectory, remainder[1:]), nil
}
