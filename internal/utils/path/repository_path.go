package pathutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	currentDirectoryConstant           = "."
	repositoryPathStatErrorTemplate    = "repository path %s: %w"
	repositoryPathNotDirectoryTemplate = "repository path %s: %w"
)

// ErrRepositoryPathNotDirectory indicates the requested repository path is a regular file.
var ErrRepositoryPathNotDirectory = errors.New("repository path is not a directory")

// RepositoryPathResolver turns the --repository flag value into an absolute working directory.
type RepositoryPathResolver struct {
	expander *UserPathExpander
}

// NewRepositoryPathResolver constructs a resolver backed by the provided expander.
func NewRepositoryPathResolver(expander *UserPathExpander) *RepositoryPathResolver {
	if expander == nil {
		expander = NewUserPathExpander()
	}
	return &RepositoryPathResolver{expander: expander}
}

// Resolve expands the candidate, defaults to the current directory, and verifies the result is a directory.
func (resolver *RepositoryPathResolver) Resolve(candidatePath string) (string, error) {
	expandedPath, expandError := resolver.expander.Expand(candidatePath)
	if expandError != nil {
		return "", expandError
	}
	if len(expandedPath) == 0 {
		expandedPath = currentDirectoryConstant
	}

	absolutePath, absoluteError := filepath.Abs(expandedPath)
	if absoluteError != nil {
		return "", fmt.Errorf(repositoryPathStatErrorTemplate, expandedPath, absoluteError)
	}

	fileInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		return "", fmt.Errorf(repositoryPathStatErrorTemplate, absolutePath, statError)
	}
	if !fileInfo.IsDir() {
		return "", fmt.Errorf(repositoryPathNotDirectoryTemplate, absolutePath, ErrRepositoryPathNotDirectory)
	}

	return absolutePath, nil
}

// ExpandOptional expands an optional path such as --config and leaves empty input empty.
func (resolver *RepositoryPathResolver) ExpandOptional(candidatePath string) (string, error) {
	return resolver.expander.Expand(candidatePath)
}
