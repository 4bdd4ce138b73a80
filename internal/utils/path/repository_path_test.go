package pathutils_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/prflow/internal/utils/path"
)

func TestRepositoryPathResolverResolve(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	projectDirectory := filepath.Join(homeDirectory, "Projects", "prflow")
	require.NoError(testInstance, os.MkdirAll(projectDirectory, 0o755))

	regularFile := filepath.Join(homeDirectory, "notes.txt")
	require.NoError(testInstance, os.WriteFile(regularFile, []byte("notes"), 0o600))

	resolver := pathutils.NewRepositoryPathResolver(pathutils.NewUserPathExpander(
		pathutils.WithHomeDirectoryLookup(func() (string, error) { return homeDirectory, nil }),
		pathutils.WithEnvironmentLookup(func(name string) (string, bool) {
			if name == "PRFLOW_PROJECTS" {
				return filepath.Join(homeDirectory, "Projects"), true
			}
			return "", false
		}),
	))

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	testCases := []struct {
		name          string
		input         string
		expected      string
		expectFailure bool
	}{
		{name: "empty_defaults_to_working_directory", input: "  ", expected: workingDirectory},
		{name: "tilde_expansion", input: "~/Projects/prflow", expected: projectDirectory},
		{name: "environment_reference", input: "${PRFLOW_PROJECTS}/prflow", expected: projectDirectory},
		{name: "unset_environment_reference", input: "$PRFLOW_MISSING/prflow", expectFailure: true},
		{name: "absolute_with_whitespace", input: "\t" + projectDirectory + " ", expected: projectDirectory},
		{name: "missing_directory", input: filepath.Join(homeDirectory, "absent"), expectFailure: true},
		{name: "regular_file", input: regularFile, expectFailure: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolvedPath, resolveError := resolver.Resolve(testCase.input)
			if testCase.expectFailure {
				require.Error(testInstance, resolveError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expected, resolvedPath)
		})
	}
}

func TestRepositoryPathResolverRejectsFiles(testInstance *testing.T) {
	regularFile := filepath.Join(testInstance.TempDir(), "README.md")
	require.NoError(testInstance, os.WriteFile(regularFile, []byte("# readme"), 0o600))

	_, resolveError := pathutils.NewRepositoryPathResolver(nil).Resolve(regularFile)
	require.True(testInstance, errors.Is(resolveError, pathutils.ErrRepositoryPathNotDirectory))
}

func TestRepositoryPathResolverExpandOptional(testInstance *testing.T) {
	resolver := pathutils.NewRepositoryPathResolver(pathutils.NewUserPathExpander(
		pathutils.WithHomeDirectoryLookup(func() (string, error) { return "/home/dev", nil }),
	))

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: " ", expected: ""},
		{name: "tilde", input: "~/.config/prflow/config.yaml", expected: filepath.Join("/home/dev", ".config", "prflow", "config.yaml")},
		{name: "absolute", input: "/etc/prflow.yaml", expected: "/etc/prflow.yaml"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			expandedPath, expandError := resolver.ExpandOptional(testCase.input)
			require.NoError(testInstance, expandError)
			require.Equal(testInstance, testCase.expected, expandedPath)
		})
	}
}
