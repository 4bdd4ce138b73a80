package commitmsg_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/prflow/internal/commitmsg"
	"github.com/temirov/prflow/internal/utils"
)

type stubDiffSource struct {
	stagedDiff   string
	workingDiff  string
	err          error
	stagedOnlies []bool
}

func (source *stubDiffSource) Diff(executionContext context.Context, repositoryPath string, stagedOnly bool) (string, error) {
	source.stagedOnlies = append(source.stagedOnlies, stagedOnly)
	if source.err != nil {
		return "", source.err
	}
	if stagedOnly {
		return source.stagedDiff, nil
	}
	return source.workingDiff, nil
}

type stubGenerator struct {
	available  bool
	suggestion string
	err        error
	diffs      []string
}

func (generator *stubGenerator) Available() bool {
	return generator.available
}

func (generator *stubGenerator) Generate(executionContext context.Context, repositoryPath string, diff string) (string, error) {
	generator.diffs = append(generator.diffs, diff)
	return generator.suggestion, generator.err
}

type stubEditor struct {
	interactive bool
	answers     []string
	err         error
	suggestions []string
	rejections  []error
}

func (editor *stubEditor) Interactive() bool {
	return editor.interactive
}

func (editor *stubEditor) Edit(executionContext context.Context, label string, suggestion string, validate func(string) error) (string, error) {
	editor.suggestions = append(editor.suggestions, suggestion)
	if editor.err != nil {
		return "", editor.err
	}
	for _, answer := range editor.answers {
		candidate := answer
		if len(candidate) == 0 {
			candidate = suggestion
		}
		if validationError := validate(candidate); validationError != nil {
			editor.rejections = append(editor.rejections, validationError)
			continue
		}
		return candidate, nil
	}
	return "", io.EOF
}

func TestDeriverExplicitMessageSkipsPrompting(testInstance *testing.T) {
	diffs := &stubDiffSource{}
	generator := &stubGenerator{available: true}
	editor := &stubEditor{interactive: true}
	deriver, deriverError := commitmsg.NewDeriver(zap.NewNop(), diffs, generator, editor)
	require.NoError(testInstance, deriverError)

	derivation, deriveError := deriver.Derive(context.Background(), commitmsg.DeriveRequest{ExplicitMessage: "feat: add thing"})
	require.NoError(testInstance, deriveError)
	require.Equal(testInstance, "feat: add thing", derivation.Message.Title)
	require.Equal(testInstance, "feat-add-thing", derivation.BranchName)
	require.False(testInstance, derivation.Generated)
	require.Empty(testInstance, diffs.stagedOnlies)
	require.Empty(testInstance, generator.diffs)
	require.Empty(testInstance, editor.suggestions)
}

func TestDeriverRejectsInvalidExplicitMessage(testInstance *testing.T) {
	deriver, deriverError := commitmsg.NewDeriver(nil, &stubDiffSource{}, nil, nil)
	require.NoError(testInstance, deriverError)

	_, deriveError := deriver.Derive(context.Background(), commitmsg.DeriveRequest{ExplicitMessage: "this commit title is definitely going to be far longer than seventy characters"})
	require.Error(testInstance, deriveError)
	require.True(testInstance, utils.IsUsageError(deriveError))
}

func TestDeriverRequiresMessageWithoutTerminal(testInstance *testing.T) {
	testCases := []struct {
		name   string
		editor commitmsg.MessageEditor
	}{
		{name: "no_editor", editor: nil},
		{name: "non_interactive_editor", editor: &stubEditor{interactive: false}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			deriver, deriverError := commitmsg.NewDeriver(nil, &stubDiffSource{}, &stubGenerator{available: true}, testCase.editor)
			require.NoError(testInstance, deriverError)

			_, deriveError := deriver.Derive(context.Background(), commitmsg.DeriveRequest{})
			require.True(testInstance, utils.IsUsageError(deriveError))
			require.Contains(testInstance, deriveError.Error(), "commit message required")
		})
	}
}

func TestDeriverAcceptsGeneratedSuggestion(testInstance *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	diffs := &stubDiffSource{stagedDiff: "", workingDiff: "+unstaged change"}
	generator := &stubGenerator{available: true, suggestion: "Update docs for squash\n"}
	editor := &stubEditor{interactive: true, answers: []string{""}}

	deriver, deriverError := commitmsg.NewDeriver(zap.New(core), diffs, generator, editor)
	require.NoError(testInstance, deriverError)

	derivation, deriveError := deriver.Derive(context.Background(), commitmsg.DeriveRequest{RepositoryPath: "/work/prflow"})
	require.NoError(testInstance, deriveError)
	require.Equal(testInstance, "Update docs for squash", derivation.Message.Title)
	require.Equal(testInstance, "update-docs-for-squash", derivation.BranchName)
	require.True(testInstance, derivation.Generated)

	require.Equal(testInstance, []bool{true, false}, diffs.stagedOnlies)
	require.Equal(testInstance, []string{"+unstaged change"}, generator.diffs)
	require.Equal(testInstance, []string{"Update docs for squash"}, editor.suggestions)
	require.Equal(testInstance, 1, logs.FilterMessage("Generating commit message with AI agent").Len())
}

func TestDeriverPrefersStagedDiff(testInstance *testing.T) {
	diffs := &stubDiffSource{stagedDiff: "+staged", workingDiff: "+unstaged"}
	generator := &stubGenerator{available: true, suggestion: "Stage only"}
	editor := &stubEditor{interactive: true, answers: []string{"Use my own title"}}

	deriver, deriverError := commitmsg.NewDeriver(nil, diffs, generator, editor)
	require.NoError(testInstance, deriverError)

	derivation, deriveError := deriver.Derive(context.Background(), commitmsg.DeriveRequest{})
	require.NoError(testInstance, deriveError)
	require.Equal(testInstance, "Use my own title", derivation.Message.Title)
	require.False(testInstance, derivation.Generated)
	require.Equal(testInstance, []bool{true}, diffs.stagedOnlies)
	require.Equal(testInstance, []string{"+staged"}, generator.diffs)
}

func TestDeriverWithoutAgentOpensEmptyEditor(testInstance *testing.T) {
	diffs := &stubDiffSource{}
	editor := &stubEditor{interactive: true, answers: []string{"", "Manual title"}}

	deriver, deriverError := commitmsg.NewDeriver(nil, diffs, &stubGenerator{available: false}, editor)
	require.NoError(testInstance, deriverError)

	derivation, deriveError := deriver.Derive(context.Background(), commitmsg.DeriveRequest{})
	require.NoError(testInstance, deriveError)
	require.Equal(testInstance, "Manual title", derivation.Message.Title)
	require.Equal(testInstance, []string{""}, editor.suggestions)
	require.Len(testInstance, editor.rejections, 1)
	require.Empty(testInstance, diffs.stagedOnlies)
}

func TestDeriverFailures(testInstance *testing.T) {
	generatorFailure := errors.New("copilot exited with code 1")
	diffFailure := errors.New("git diff failed")

	testCases := []struct {
		name          string
		diffs         *stubDiffSource
		generator     *stubGenerator
		editor        *stubEditor
		expectedError error
		expectUsage   bool
	}{
		{
			name:          "generator_error_propagates",
			diffs:         &stubDiffSource{stagedDiff: "+x"},
			generator:     &stubGenerator{available: true, err: generatorFailure},
			editor:        &stubEditor{interactive: true},
			expectedError: generatorFailure,
		},
		{
			name:          "diff_error_propagates",
			diffs:         &stubDiffSource{err: diffFailure},
			generator:     &stubGenerator{available: true},
			editor:        &stubEditor{interactive: true},
			expectedError: diffFailure,
		},
		{
			name:        "editor_end_of_input_is_usage_error",
			diffs:       &stubDiffSource{},
			generator:   &stubGenerator{available: false},
			editor:      &stubEditor{interactive: true, err: io.EOF},
			expectUsage: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			deriver, deriverError := commitmsg.NewDeriver(nil, testCase.diffs, testCase.generator, testCase.editor)
			require.NoError(testInstance, deriverError)

			_, deriveError := deriver.Derive(context.Background(), commitmsg.DeriveRequest{})
			require.Error(testInstance, deriveError)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, deriveError, testCase.expectedError)
			}
			require.Equal(testInstance, testCase.expectUsage, utils.IsUsageError(deriveError))
		})
	}
}

func TestNewDeriverRequiresDiffSource(testInstance *testing.T) {
	_, deriverError := commitmsg.NewDeriver(nil, nil, nil, nil)
	require.ErrorIs(testInstance, deriverError, commitmsg.ErrDiffSourceNotConfigured)
}
