package utils_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/prflow/internal/utils"
)

func TestIsUsageErrorDetectsWrappedErrors(testInstance *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "direct", err: utils.NewUsageError("commit message is required"), expected: true},
		{name: "wrapped", err: fmt.Errorf("derive-message: %w", utils.NewUsageError("editor declined")), expected: true},
		{name: "unrelated", err: errors.New("push rejected"), expected: false},
		{name: "nil", err: nil, expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, utils.IsUsageError(testCase.err))
		})
	}
}

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, available := accessor.RepositoryPath(nil)
	require.False(testInstance, available)

	executionContext := accessor.WithConfigurationFilePath(nil, "/tmp/config.yaml")
	executionContext = accessor.WithRepositoryPath(executionContext, "/work/prflow")

	configurationFilePath, configurationAvailable := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, configurationAvailable)
	require.Equal(testInstance, "/tmp/config.yaml", configurationFilePath)

	repositoryPath, repositoryAvailable := accessor.RepositoryPath(executionContext)
	require.True(testInstance, repositoryAvailable)
	require.Equal(testInstance, "/work/prflow", repositoryPath)
}
